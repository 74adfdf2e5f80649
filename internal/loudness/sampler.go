package loudness

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/olivier-w/glyphcam/internal/util"
)

// Source supplies fixed-size chunks of signed 16-bit mono samples.
// Read fills the whole slice or returns an error.
type Source interface {
	Read(samples []int16) error
}

// ErrStopTimeout is returned by Stop when the loop did not exit in time.
var ErrStopTimeout = errors.New("audio sampler did not stop in time")

// Sampler feeds chunks from a Source into an Estimator on its own goroutine.
type Sampler struct {
	src       Source
	est       *Estimator
	chunkSize int
	warmup    time.Duration
	backoff   *util.Backoff

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSampler creates a sampler reading chunkSize samples per iteration.
// warmup delays the first read so the device can settle.
func NewSampler(src Source, est *Estimator, chunkSize int, warmup time.Duration) *Sampler {
	return &Sampler{
		src:       src,
		est:       est,
		chunkSize: chunkSize,
		warmup:    warmup,
		backoff:   util.NewBackoff(100*time.Millisecond, time.Second),
	}
}

// Start launches the sampling loop. It is a no-op if already running.
func (s *Sampler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
}

// Stop signals the loop and waits up to timeout for it to exit.
func (s *Sampler) Stop(timeout time.Duration) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return ErrStopTimeout
	}
}

func (s *Sampler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	if s.warmup > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.warmup):
		}
	}

	buf := make([]int16, s.chunkSize)
	for {
		if ctx.Err() != nil {
			return
		}
		if err := s.src.Read(buf); err != nil {
			if ctx.Err() != nil {
				return
			}
			delay := s.backoff.Next()
			slog.Warn("audio read failed", "error", err, "retry_in", delay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			continue
		}
		s.backoff.Reset()
		s.est.Process(buf)
	}
}
