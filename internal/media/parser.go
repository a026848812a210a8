package media

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ParseResult contains metadata extracted from a filename
type ParseResult struct {
	Series      string // extracted series name (empty if not found)
	Season      *int   // season number (nil if not found)
	Episode     *int   // episode number (nil if not found)
	Title       string // display title for non-episodic files
	SeasonalTag string // halloween, christmas, thanksgiving, valentines, or empty
}

// Patterns for matching series/season/episode in filenames
var (
	// "Show Name - S01E01" or "Show Name - S01E01 - Episode Title"
	patternDashFormat = regexp.MustCompile(`(?i)^(.+?)\s*-\s*[Ss](\d+)[Ee](\d+)`)

	// "Show.Name.S01E01" or "Show Name S01E01" or "Show_Name_S01E01"
	patternStandardFormat = regexp.MustCompile(`(?i)^(.+?)[._ ][Ss](\d+)[Ee](\d+)`)

	// "Show.Name.1x01" (alternate format)
	patternAlternateFormat = regexp.MustCompile(`(?i)^(.+?)[._ ](\d+)x(\d+)`)
)

// seasonalKeywords maps filename substrings to seasonal tags
var seasonalKeywords = []struct {
	keyword string
	tag     string
}{
	{"halloween", "halloween"},
	{"horror", "halloween"},
	{"christmas", "christmas"},
	{"xmas", "christmas"},
	{"thanksgiving", "thanksgiving"},
	{"valentine", "valentines"},
}

// ParseFilename extracts series, season/episode and seasonal tagging from a
// filename. Files that do not look episodic get a cleaned-up display title.
func ParseFilename(filename string) ParseResult {
	var result ParseResult

	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	lower := strings.ToLower(filename)
	for _, entry := range seasonalKeywords {
		if strings.Contains(lower, entry.keyword) {
			result.SeasonalTag = entry.tag
			break
		}
	}

	for _, pattern := range []*regexp.Regexp{patternDashFormat, patternStandardFormat, patternAlternateFormat} {
		if matches := pattern.FindStringSubmatch(nameWithoutExt); matches != nil {
			result.Series = cleanName(matches[1])
			result.Season = parseInt(matches[2])
			result.Episode = parseInt(matches[3])
			return result
		}
	}

	result.Title = cleanName(nameWithoutExt)
	return result
}

// cleanName normalizes dots and underscores to spaces and trims whitespace
func cleanName(name string) string {
	name = strings.ReplaceAll(name, ".", " ")
	name = strings.ReplaceAll(name, "_", " ")
	return strings.TrimSpace(strings.Join(strings.Fields(name), " "))
}

// parseInt converts a numeric capture group, returning nil on failure
func parseInt(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
