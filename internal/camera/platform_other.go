//go:build !linux && !darwin && !windows

package camera

const defaultDevice = ""

func deviceInputArgs(device string, fps int) []string {
	return []string{"-i", device}
}
