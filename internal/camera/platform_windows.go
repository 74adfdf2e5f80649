//go:build windows

package camera

import (
	"strconv"
	"strings"
)

// DirectShow has no stable default device name, so one must be configured.
const defaultDevice = ""

func deviceInputArgs(device string, fps int) []string {
	if !strings.HasPrefix(device, "video=") {
		device = "video=" + device
	}
	return []string{"-f", "dshow", "-framerate", strconv.Itoa(fps), "-i", device}
}
