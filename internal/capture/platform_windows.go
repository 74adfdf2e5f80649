//go:build windows

package capture

import "strings"

// DirectShow has no stable default device name, so one must be configured.
func platformConfig() CaptureConfig {
	return CaptureConfig{
		Command:    "ffmpeg",
		UsesFFmpeg: true,
		BuildArgs: func(device string, sampleRate int) []string {
			if !strings.HasPrefix(device, "audio=") {
				device = "audio=" + device
			}
			return ffmpegCaptureArgs("dshow", device, sampleRate)
		},
	}
}
