//go:build linux

package camera

import "strconv"

const defaultDevice = "/dev/video0"

func deviceInputArgs(device string, fps int) []string {
	return []string{"-f", "v4l2", "-framerate", strconv.Itoa(fps), "-i", device}
}
