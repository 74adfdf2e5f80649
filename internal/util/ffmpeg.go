package util

import (
	"os/exec"
	"strings"
)

const maxErrorLineLength = 200

// ResolveFFmpegPath returns the ffmpeg binary to use. A configured path must
// resolve; otherwise ffmpeg is looked up on PATH. Empty means not found.
func ResolveFFmpegPath(customPath string) string {
	name := "ffmpeg"
	if customPath != "" {
		name = customPath
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return ""
	}
	return path
}

// ExtractLastError returns the last non-empty line of a subprocess's stderr.
func ExtractLastError(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if len(line) > maxErrorLineLength {
			return line[:maxErrorLineLength] + "..."
		}
		return line
	}
	return ""
}
