//go:build darwin

package camera

const defaultDevice = "0"

// avfoundation rejects frame rates the camera does not advertise; 30 is
// supported by built-in cameras and the fps filter reduces it afterwards.
func deviceInputArgs(device string, _ int) []string {
	return []string{"-f", "avfoundation", "-framerate", "30", "-i", device}
}
