package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/rerun-tv/rerun/internal/logger"
)

// Timeout for FFprobe execution
const ffprobeTimeout = 30 * time.Second

// Common errors
var (
	ErrFFprobeNotFound = errors.New("ffprobe not found in PATH")
	ErrInvalidFile     = errors.New("invalid or corrupted video file")
	ErrProbeTimeout    = errors.New("ffprobe execution timed out")
)

// probeOutput is the subset of FFprobe's JSON output the scanner needs
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
	} `json:"format"`
}

// ProbeResult holds the probed facts the catalog stores
type ProbeResult struct {
	Duration int64 // whole seconds, rounded down
	FileSize int64 // bytes
}

// CheckFFprobeInstalled checks if FFprobe is available in PATH
func CheckFFprobeInstalled() error {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return ErrFFprobeNotFound
	}
	return nil
}

// ProbeFile runs FFprobe against a file and returns its duration and size.
// Duration becomes the authoritative airing length for scheduling; it is
// never re-derived after scanning.
func ProbeFile(ctx context.Context, filePath string) (*ProbeResult, error) {
	if err := CheckFFprobeInstalled(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, ffprobeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx,
		"ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		filePath,
	)

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrProbeTimeout
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidFile, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	var probed probeOutput
	if err := json.Unmarshal(output, &probed); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	seconds, err := strconv.ParseFloat(probed.Format.Duration, 64)
	if err != nil || seconds <= 0 {
		logger.Log.Warn().
			Str("file_path", filePath).
			Str("duration", probed.Format.Duration).
			Msg("FFprobe reported no usable duration")
		return nil, fmt.Errorf("%w: no duration", ErrInvalidFile)
	}

	size, _ := strconv.ParseInt(probed.Format.Size, 10, 64) // nolint:errcheck // size is informational

	return &ProbeResult{
		Duration: int64(seconds),
		FileSize: size,
	}, nil
}
