package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/olivier-w/glyphcam/internal/util"
)

// startupGrace is how long a freshly started capture process must stay alive
// before the device is considered open.
const startupGrace = 300 * time.Millisecond

// Microphone reads live audio from a capture subprocess. Read is meant to be
// called from a single goroutine; Close may be called from any goroutine.
type Microphone struct {
	command string
	args    []string

	mu       sync.Mutex
	cmd      *exec.Cmd
	stdout   io.ReadCloser
	stderr   *bytes.Buffer
	cancel   context.CancelFunc
	waitDone chan struct{}
	closed   bool

	buf []byte
}

// OpenMicrophone starts capturing from device. An empty device selects the
// platform default. Failing to open the device is reported immediately.
func OpenMicrophone(device, ffmpegPath string, sampleRate int) (*Microphone, error) {
	command, args, err := BuildCaptureCommand(device, ffmpegPath, sampleRate)
	if err != nil {
		return nil, err
	}
	m := &Microphone{command: command, args: args}
	if err := m.start(); err != nil {
		return nil, err
	}

	select {
	case <-m.waitDone:
		return nil, m.exitError("opening audio device")
	case <-time.After(startupGrace):
	}
	slog.Info("microphone capture started", "command", command, "device", device)
	return m, nil
}

func (m *Microphone) start() error {
	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, m.command, m.args...)
	cmd.Stdin = nil
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("setting up audio capture: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("starting audio capture: %w", err)
	}

	waitDone := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(waitDone)
	}()

	m.mu.Lock()
	if m.closed {
		// Close ran while this process was starting; it would never be stopped.
		m.mu.Unlock()
		cancel()
		<-waitDone
		return io.ErrClosedPipe
	}
	m.cmd = cmd
	m.stdout = stdout
	m.stderr = &stderr
	m.cancel = cancel
	m.waitDone = waitDone
	m.mu.Unlock()
	return nil
}

// exitError describes why the capture process exited. Only valid after waitDone closed.
func (m *Microphone) exitError(op string) error {
	if msg := util.ExtractLastError(m.stderr.String()); msg != "" {
		return fmt.Errorf("%s: %s", op, msg)
	}
	return fmt.Errorf("%s: capture process exited", op)
}

// Read fills samples with the next chunk. A capture process that has exited
// is restarted, so a failed Read can be retried.
func (m *Microphone) Read(samples []int16) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return io.ErrClosedPipe
	}
	stdout, waitDone := m.stdout, m.waitDone
	m.mu.Unlock()

	if stdout == nil {
		slog.Info("restarting microphone capture")
		if err := m.start(); err != nil {
			return err
		}
		return m.Read(samples)
	}

	need := len(samples) * 2
	if cap(m.buf) < need {
		m.buf = make([]byte, need)
	}
	buf := m.buf[:need]
	if _, err := io.ReadFull(stdout, buf); err != nil {
		m.stop()
		select {
		case <-waitDone:
			return m.exitError("reading audio")
		default:
		}
		return fmt.Errorf("reading audio: %w", err)
	}
	decodeS16LE(samples, buf)
	return nil
}

// stop kills the current process and waits for it to exit.
func (m *Microphone) stop() {
	m.mu.Lock()
	cancel, waitDone := m.cancel, m.waitDone
	m.cancel = nil
	m.stdout = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if waitDone != nil {
		<-waitDone
	}
}

// Close stops capture and releases the device.
func (m *Microphone) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.stop()
	return nil
}
