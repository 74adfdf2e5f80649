// Package camera captures frames from a webcam or a video file through an
// ffmpeg subprocess.
package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/olivier-w/glyphcam/internal/util"
)

// ErrNoCamera is returned when no camera device is configured or found.
var ErrNoCamera = errors.New("no camera device found")

// startupGrace is how long ffmpeg must stay alive before the camera is considered open.
const startupGrace = 300 * time.Millisecond

// Options selects the frame source and capture geometry.
type Options struct {
	Device string // platform device; empty selects the default
	File   string // video file played in a loop instead of a device
	Width  int
	Height int
	FPS    int
	Mirror bool
}

// BuildArgs returns the ffmpeg arguments for opts.
func BuildArgs(opts Options) ([]string, error) {
	if opts.Width <= 0 || opts.Height <= 0 || opts.FPS <= 0 {
		return nil, fmt.Errorf("invalid capture geometry %dx%d@%d", opts.Width, opts.Height, opts.FPS)
	}

	args := []string{"-nostdin", "-hide_banner", "-loglevel", "error"}
	if opts.File != "" {
		args = append(args, "-re", "-stream_loop", "-1", "-i", opts.File)
	} else {
		device := opts.Device
		if device == "" {
			device = defaultDevice
		}
		if device == "" {
			return nil, ErrNoCamera
		}
		args = append(args, deviceInputArgs(device, opts.FPS)...)
	}

	filter := fmt.Sprintf("scale=%d:%d,fps=%d", opts.Width, opts.Height, opts.FPS)
	if opts.Mirror {
		filter = "hflip," + filter
	}
	return append(args,
		"-an",
		"-vf", filter,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	), nil
}

// Session is a running capture. ReadFrame is called from one goroutine at a time.
type Session struct {
	width  int
	height int

	mu       sync.Mutex
	cmd      *exec.Cmd
	stdout   io.ReadCloser
	stderr   *bytes.Buffer
	cancel   context.CancelFunc
	waitDone chan struct{}
	closed   bool

	frameBuf []byte
}

// Open starts ffmpeg and confirms the input could be opened.
func Open(ffmpegPath string, opts Options) (*Session, error) {
	if ffmpegPath == "" {
		return nil, errors.New("ffmpeg not found (required for camera capture)")
	}
	args, err := BuildArgs(opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	cmd.Stdin = nil
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("starting ffmpeg camera capture: %w", err)
	}

	s := &Session{
		width:    opts.Width,
		height:   opts.Height,
		cmd:      cmd,
		stdout:   stdout,
		stderr:   &stderr,
		cancel:   cancel,
		waitDone: make(chan struct{}),
		frameBuf: make([]byte, opts.Width*opts.Height*3),
	}
	go func() {
		_ = cmd.Wait()
		close(s.waitDone)
	}()

	select {
	case <-s.waitDone:
		cancel()
		return nil, s.exitError("opening camera")
	case <-time.After(startupGrace):
	}

	source := opts.File
	if source == "" {
		source = opts.Device
	}
	slog.Info("camera capture started", "source", source, "geometry", opts.String())
	return s, nil
}

func (s *Session) exitError(op string) error {
	if msg := util.ExtractLastError(s.stderr.String()); msg != "" {
		return fmt.Errorf("%s: %s", op, msg)
	}
	return fmt.Errorf("%s: ffmpeg exited", op)
}

// ReadFrame blocks until the next frame is available.
func (s *Session) ReadFrame() (*image.RGBA, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errors.New("camera session closed")
	}
	stdout := s.stdout
	s.mu.Unlock()

	if _, err := io.ReadFull(stdout, s.frameBuf); err != nil {
		select {
		case <-s.waitDone:
			return nil, s.exitError("reading camera frame")
		case <-time.After(startupGrace):
		}
		return nil, fmt.Errorf("reading camera frame: %w", err)
	}
	return rgb24ToRGBA(s.frameBuf, s.width, s.height), nil
}

// Close stops ffmpeg and waits for it to exit.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	<-s.waitDone
	return nil
}

// rgb24ToRGBA converts packed RGB24 pixels to an opaque RGBA image.
func rgb24ToRGBA(frame []byte, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, j := 0, 0; i+2 < len(frame) && j+3 < len(img.Pix); i, j = i+3, j+4 {
		img.Pix[j] = frame[i]
		img.Pix[j+1] = frame[i+1]
		img.Pix[j+2] = frame[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// String describes the capture geometry for logs.
func (o Options) String() string {
	return strconv.Itoa(o.Width) + "x" + strconv.Itoa(o.Height) + "@" + strconv.Itoa(o.FPS)
}
