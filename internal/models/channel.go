package models

// Channel represents one virtual broadcast channel. Channels are static
// configuration loaded at startup and never mutated at runtime.
type Channel struct {
	ID          string `json:"id" mapstructure:"id"`
	Name        string `json:"name" mapstructure:"name"`
	Decade      string `json:"decade" mapstructure:"decade"`
	Kind        string `json:"type" mapstructure:"type"`
	MediaFolder string `json:"mediaFolder" mapstructure:"mediafolder"`
}
