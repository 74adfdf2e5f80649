package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func isNextSet(msg tea.KeyMsg) bool {
	return msg.String() == " "
}

func isRecalibrate(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "r", "R":
		return true
	}
	return false
}
