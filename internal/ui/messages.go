package ui

import (
	"image"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const tickInterval = 100 * time.Millisecond

type tickMsg time.Time

type frameMsg struct {
	img *image.RGBA
}

type frameErrMsg struct {
	err error
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// readFrameCmd blocks on the camera. Only one read is in flight at a time, so
// rendering is paced by the camera frame rate.
func readFrameCmd(cam FrameSource) tea.Cmd {
	return func() tea.Msg {
		img, err := cam.ReadFrame()
		if err != nil {
			return frameErrMsg{err: err}
		}
		return frameMsg{img: img}
	}
}
