//go:build !linux && !darwin && !windows

package capture

func platformConfig() CaptureConfig {
	return CaptureConfig{
		Command:       "ffmpeg",
		DefaultDevice: "default",
		UsesFFmpeg:    true,
		BuildArgs: func(device string, sampleRate int) []string {
			return ffmpegCaptureArgs("pulse", device, sampleRate)
		},
	}
}
