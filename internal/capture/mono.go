package capture

import (
	"errors"
	"fmt"
	"io"
)

// monoStream downmixes a decoder to mono and linearly resamples it to a fixed
// rate. At end of input it rewinds, so the stream never ends.
type monoStream struct {
	src      pcmDecoder
	srcRate  int
	dstRate  int
	channels int

	raw     []byte
	samples []int16 // downmixed source samples not yet consumed
	pos     int64   // output position relative to samples[0], in units of 1/dstRate source samples
}

func newMonoStream(src pcmDecoder, dstRate int) (*monoStream, error) {
	if src.SampleRate() <= 0 {
		return nil, fmt.Errorf("unsupported sample rate: %d", src.SampleRate())
	}
	if src.Channels() < 1 {
		return nil, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}
	return &monoStream{
		src:      src,
		srcRate:  src.SampleRate(),
		dstRate:  dstRate,
		channels: src.Channels(),
	}, nil
}

// ReadSamples fills dst completely.
func (m *monoStream) ReadSamples(dst []int16) error {
	for i := range dst {
		idx := int(m.pos / int64(m.dstRate))
		for idx+1 >= len(m.samples) {
			if err := m.fill(); err != nil {
				return err
			}
		}
		frac := m.pos % int64(m.dstRate)
		a, b := int64(m.samples[idx]), int64(m.samples[idx+1])
		dst[i] = int16(a + (b-a)*frac/int64(m.dstRate))
		m.pos += int64(m.srcRate)
	}

	// Drop consumed source samples, keeping the one still needed for interpolation.
	if idx := int(m.pos / int64(m.dstRate)); idx > 0 {
		drop := min(idx, len(m.samples))
		m.samples = append(m.samples[:0], m.samples[drop:]...)
		m.pos -= int64(drop) * int64(m.dstRate)
	}
	return nil
}

// fill appends at least one downmixed frame, rewinding at end of input.
func (m *monoStream) fill() error {
	const chunkFrames = 2048
	frameSize := m.channels * 2
	if len(m.raw) < chunkFrames*frameSize {
		m.raw = make([]byte, chunkFrames*frameSize)
	}

	rewound := false
	for {
		n, err := io.ReadFull(m.src, m.raw)
		frames := n / frameSize
		if frames > 0 {
			m.appendFrames(m.raw[:frames*frameSize], frames)
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("decoding audio: %w", err)
		}
		if rewound {
			return errors.New("audio file contains no samples")
		}
		if err := m.src.Rewind(); err != nil {
			return fmt.Errorf("rewinding audio: %w", err)
		}
		rewound = true
	}
}

func (m *monoStream) appendFrames(raw []byte, frames int) {
	frame := make([]int16, m.channels)
	for i := 0; i < frames; i++ {
		decodeS16LE(frame, raw[i*m.channels*2:])
		var sum int
		for _, s := range frame {
			sum += int(s)
		}
		m.samples = append(m.samples, int16(sum/m.channels))
	}
}
