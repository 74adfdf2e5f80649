// Package capture supplies microphone audio as fixed-size chunks of signed
// 16-bit mono samples, either from a live device or from an audio file.
package capture

import (
	"encoding/binary"
	"errors"
	"strconv"
)

// ErrNoAudioDevice is returned when no audio input device is configured or found.
var ErrNoAudioDevice = errors.New("no audio input device found")

// Source delivers audio in chunks. Read fills the whole slice or fails.
type Source interface {
	Read(samples []int16) error
	Close() error
}

// CaptureConfig defines platform-specific capture settings.
type CaptureConfig struct {
	// Command is the executable name ("arecord" or "ffmpeg").
	Command string

	// DefaultDevice is used when no device is configured.
	DefaultDevice string

	// UsesFFmpeg reports whether Command should be replaced by the resolved ffmpeg path.
	UsesFFmpeg bool

	// BuildArgs returns the capture arguments for a device at the given rate.
	BuildArgs func(device string, sampleRate int) []string
}

// BuildCaptureCommand returns the command and arguments for microphone capture.
func BuildCaptureCommand(device, ffmpegPath string, sampleRate int) (string, []string, error) {
	cfg := platformConfig()
	if device == "" {
		device = cfg.DefaultDevice
	}
	if device == "" || cfg.Command == "" {
		return "", nil, ErrNoAudioDevice
	}
	command := cfg.Command
	if cfg.UsesFFmpeg {
		if ffmpegPath == "" {
			return "", nil, errors.New("ffmpeg not found (required for microphone capture)")
		}
		command = ffmpegPath
	}
	return command, cfg.BuildArgs(device, sampleRate), nil
}

// ffmpegCaptureArgs builds ffmpeg arguments emitting raw s16le mono on stdout.
func ffmpegCaptureArgs(inputFormat, device string, sampleRate int) []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "error",
		"-f", inputFormat,
		"-i", device,
		"-vn",
		"-f", "s16le",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"pipe:1",
	}
}

func decodeS16LE(dst []int16, src []byte) {
	for i := range dst {
		dst[i] = int16(binary.LittleEndian.Uint16(src[i*2:]))
	}
}

func encodeS16LE(dst []byte, src []int16) {
	for i, s := range src {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(s))
	}
}
