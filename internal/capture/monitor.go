package capture

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
)

var (
	otoCtx     *oto.Context
	otoRate    int
	otoOnce    sync.Once
	otoInitErr error
)

// initOto creates the process-wide output context. oto allows only one.
func initOto(sampleRate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
			otoRate = sampleRate
		}
	})
	return otoCtx, otoInitErr
}

// Monitor plays mono s16 chunks through the default output device. Write
// blocks until the device has taken the data, which paces the caller in real time.
type Monitor struct {
	player *oto.Player
	pw     *io.PipeWriter
	buf    []byte
	once   sync.Once
}

// NewMonitor opens an output stream at sampleRate.
func NewMonitor(sampleRate int) (*Monitor, error) {
	ctx, err := initOto(sampleRate)
	if err != nil {
		return nil, err
	}
	if otoRate != sampleRate {
		return nil, fmt.Errorf("audio output already open at %d Hz", otoRate)
	}
	pr, pw := io.Pipe()
	player := ctx.NewPlayer(pr)
	player.SetVolume(0.8)
	player.Play()
	return &Monitor{player: player, pw: pw}, nil
}

// Write queues samples for playback.
func (m *Monitor) Write(samples []int16) error {
	need := len(samples) * 2
	if cap(m.buf) < need {
		m.buf = make([]byte, need)
	}
	buf := m.buf[:need]
	encodeS16LE(buf, samples)
	_, err := m.pw.Write(buf)
	return err
}

// Close stops playback and unblocks any pending Write.
func (m *Monitor) Close() {
	m.once.Do(func() {
		m.player.Pause()
		m.pw.Close()
		m.player.Close()
	})
}
