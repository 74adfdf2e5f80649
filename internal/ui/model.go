// Package ui runs the render loop: it turns camera frames into glyph art, colours
// it by loudness and handles the keyboard.
package ui

import (
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/glyphcam/internal/glyph"
	"github.com/olivier-w/glyphcam/internal/render"
)

const (
	calibratingText = "Calibrating audio... Please stay quiet"
	meterWidth      = 20
)

// FrameSource yields camera frames. ReadFrame may block until one is ready.
type FrameSource interface {
	ReadFrame() (*image.RGBA, error)
}

// LevelSource is the loudness estimator as seen by the render loop.
type LevelSource interface {
	CurrentLevel() float64
	Calibrating() bool
	TriggerRecalibration()
}

// Options configures a Model.
type Options struct {
	Camera           FrameSource
	Loudness         LevelSource
	Palette          glyph.Palette
	Compositor       *render.Compositor
	StatusColor      render.RGB
	Columns          int
	Rows             int
	RotationInterval time.Duration
	Title            string           // shown in the window title
	Now              func() time.Time // defaults to time.Now
}

// Model is the Bubbletea model for the glyph art view.
type Model struct {
	opts Options
	now  func() time.Time

	setIndex     int
	lastRotation time.Time

	width  int
	height int
	frame  *image.RGBA
	art    string
	level  float64

	spring   harmonica.Spring
	meterPos float64
	meterVel float64
	spinner  spinner.Model
	meter    progress.Model
	status   lipgloss.Style

	err      error
	quitting bool
}

// New creates a Model. The rotation timer starts now.
func New(opts Options) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	bg := opts.Compositor.Theme().Background

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle(opts.StatusColor, bg)

	p := progress.New(
		progress.WithScaledGradient(opts.Compositor.Theme().Dim.Hex(), opts.Compositor.Theme().Bright.Hex()),
		progress.WithoutPercentage(),
		progress.WithWidth(meterWidth),
	)

	return Model{
		opts:         opts,
		now:          now,
		lastRotation: now(),
		spring:       harmonica.NewSpring(harmonica.FPS(int(time.Second/tickInterval)), 6.0, 1.0),
		spinner:      s,
		meter:        p,
		status:       statusStyle(opts.StatusColor, bg),
	}
}

// Err returns the error that stopped the loop, if any.
func (m Model) Err() error { return m.err }

// SetIndex returns the active glyph set.
func (m Model) SetIndex() int { return m.setIndex }

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		readFrameCmd(m.opts.Camera),
		tickCmd(),
		m.spinner.Tick,
		tea.SetWindowTitle(windowTitle(m.opts.Title)),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case isQuit(msg):
			m.quitting = true
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		case isNextSet(msg):
			// Manual changes leave the automatic rotation schedule alone.
			m.setIndex = m.opts.Palette.Next(m.setIndex)
			m.redraw()
		case isRecalibrate(msg):
			m.opts.Loudness.TriggerRecalibration()
		}
		return m, nil

	case frameMsg:
		if m.quitting {
			return m, nil
		}
		m.frame = msg.img
		m.level = m.opts.Loudness.CurrentLevel()
		m.rotate()
		m.redraw()
		return m, readFrameCmd(m.opts.Camera)

	case frameErrMsg:
		slog.Error("camera read failed", "error", msg.err)
		m.err = fmt.Errorf("camera: %w", msg.err)
		m.quitting = true
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)

	case tickMsg:
		m.rotate()
		target := m.opts.Loudness.CurrentLevel()
		m.meterPos, m.meterVel = m.spring.Update(m.meterPos, m.meterVel, target)
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.redraw()
		return m, nil
	}

	return m, nil
}

// rotate advances the glyph set once the interval since the last automatic
// rotation has passed.
func (m *Model) rotate() {
	if m.opts.RotationInterval <= 0 || len(m.opts.Palette) < 2 {
		return
	}
	now := m.now()
	if now.Sub(m.lastRotation) > m.opts.RotationInterval {
		m.setIndex = m.opts.Palette.Next(m.setIndex)
		m.lastRotation = now
	}
}

func (m *Model) redraw() {
	cols, rows := fitGrid(m.opts.Columns, m.opts.Rows, m.width, m.height)
	if cols == 0 || rows == 0 {
		m.art = ""
		return
	}
	if m.frame == nil {
		m.art = m.opts.Compositor.Blank(cols, rows)
		return
	}
	set := m.opts.Palette[m.setIndex]
	grid := glyph.Map(m.frame, cols, rows, set)
	m.art = m.opts.Compositor.Compose(grid, set.Len(), m.level)
}

// fitGrid clamps the configured grid to the window, keeping one row for status.
func fitGrid(cols, rows, width, height int) (int, int) {
	if width <= 0 || height <= 1 {
		return 0, 0
	}
	return min(cols, width), min(rows, height-1)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	if m.art != "" {
		b.WriteString(m.art)
		b.WriteByte('\n')
	}
	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) statusLine() string {
	calibrating := m.opts.Loudness.Calibrating()
	text := statusText(calibrating, m.setIndex, len(m.opts.Palette), m.opts.Loudness.CurrentLevel())

	style := m.status
	if m.width > 0 {
		style = style.MaxWidth(m.width)
	}
	if calibrating {
		return style.Render(m.spinner.View() + " " + text)
	}
	return style.Render(text + "  " + m.meter.ViewAs(clampMeter(m.meterPos)))
}

// statusText is the plain status message without decorations.
func statusText(calibrating bool, setIndex, sets int, level float64) string {
	if calibrating {
		return calibratingText
	}
	return fmt.Sprintf("Set: %d/%d | Audio: %d%% | Space: change set | R: recalibrate",
		setIndex+1, sets, int(level*100))
}

func clampMeter(v float64) float64 {
	return min(max(v, 0), 1)
}

func windowTitle(title string) string {
	if title == "" {
		return "glyphcam"
	}
	return title + " · glyphcam"
}
