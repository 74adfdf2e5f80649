//go:build darwin

package capture

func platformConfig() CaptureConfig {
	return CaptureConfig{
		Command:       "ffmpeg",
		DefaultDevice: ":0",
		UsesFFmpeg:    true,
		BuildArgs: func(device string, sampleRate int) []string {
			return ffmpegCaptureArgs("avfoundation", device, sampleRate)
		},
	}
}
