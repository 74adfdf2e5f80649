package capture

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bogem/id3v2/v2"
)

// FileSource replays an audio file as if it were a microphone: decoded to mono at
// the capture rate, looped forever and delivered in real time. When a monitor is
// attached the audio is also played back, and playback paces delivery.
type FileSource struct {
	path    string
	file    *os.File
	stream  *monoStream
	rate    int
	monitor *Monitor
	title   string

	mu     sync.Mutex // guards stream and file
	closed atomic.Bool

	next  time.Time
	now   func() time.Time
	sleep func(time.Duration)
}

// OpenFile opens path as an audio source at sampleRate. With monitor set, the
// decoded audio is played through the default output device.
func OpenFile(path string, sampleRate int, monitor bool) (*FileSource, error) {
	if !SupportedExt(filepath.Ext(path)) {
		return nil, fmt.Errorf("unsupported audio file %s (supported: wav, mp3, flac, ogg)", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := newDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	stream, err := newMonoStream(dec, sampleRate)
	if err != nil {
		f.Close()
		return nil, err
	}

	s := &FileSource{
		path:   path,
		file:   f,
		stream: stream,
		rate:   sampleRate,
		title:  ReadTitle(path),
		now:    time.Now,
		sleep:  time.Sleep,
	}
	if monitor {
		m, err := NewMonitor(sampleRate)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening audio output: %w", err)
		}
		s.monitor = m
	}
	slog.Info("audio file source opened", "path", path, "source_rate", dec.SampleRate(), "channels", dec.Channels(), "monitor", monitor)
	return s, nil
}

// Title returns a display title for the file.
func (s *FileSource) Title() string { return s.title }

// Read fills samples with the next chunk of the file.
func (s *FileSource) Read(samples []int16) error {
	if s.closed.Load() {
		return os.ErrClosed
	}
	s.mu.Lock()
	err := s.stream.ReadSamples(samples)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if s.monitor != nil {
		return s.monitor.Write(samples)
	}
	s.pace(len(samples))
	return nil
}

// pace blocks until the chunk's real-time deadline. Falling more than a chunk
// behind resets the schedule instead of bursting to catch up.
func (s *FileSource) pace(n int) {
	chunk := time.Duration(n) * time.Second / time.Duration(s.rate)
	now := s.now()
	if s.next.IsZero() || now.Sub(s.next) > chunk {
		s.next = now
	}
	s.next = s.next.Add(chunk)
	if wait := s.next.Sub(now); wait > 0 {
		s.sleep(wait)
	}
}

// Close releases the file and any monitor output.
func (s *FileSource) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if s.monitor != nil {
		s.monitor.Close()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// ReadTitle reads the ID3v2 title of path, falling back to the file name.
func ReadTitle(path string) string {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err == nil {
		defer tag.Close()
		title := strings.TrimSpace(tag.Title())
		if artist := strings.TrimSpace(tag.Artist()); artist != "" && title != "" {
			return artist + " - " + title
		}
		if title != "" {
			return title
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
