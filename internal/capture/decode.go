package capture

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// pcmDecoder yields interleaved s16le PCM at the file's native rate and layout.
type pcmDecoder interface {
	io.Reader
	Rewind() error
	SampleRate() int
	Channels() int
}

// SupportedExt reports whether an audio file extension can be used as a source.
func SupportedExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".wav", ".mp3", ".flac", ".ogg":
		return true
	}
	return false
}

// newDecoder picks a decoder by file extension.
func newDecoder(f *os.File) (pcmDecoder, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case ".mp3":
		return newMP3Decoder(f)
	case ".wav":
		return newWAVDecoder(f)
	case ".flac":
		return newFLACDecoder(f)
	case ".ogg":
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", ext)
	}
}

// clampSample16 saturates v to the int16 range.
func clampSample16(v int) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	}
	return int16(v)
}

// pending is a leftover buffer shared by decoders that produce whole blocks.
type pending struct{ buf []byte }

func (p *pending) drain(dst []byte) int {
	n := copy(dst, p.buf)
	p.buf = p.buf[n:]
	return n
}

func (p *pending) fill(dst, block []byte) int {
	n := copy(dst, block)
	if n < len(block) {
		p.buf = append(p.buf[:0], block[n:]...)
	}
	return n
}

// --- MP3 ---

type mp3Decoder struct {
	dec *mp3.Decoder
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	return &mp3Decoder{dec: dec}, nil
}

func (d *mp3Decoder) Read(p []byte) (int, error) { return d.dec.Read(p) }
func (d *mp3Decoder) Rewind() error {
	_, err := d.dec.Seek(0, io.SeekStart)
	return err
}
func (d *mp3Decoder) SampleRate() int { return d.dec.SampleRate() }
func (d *mp3Decoder) Channels() int   { return 2 }

// --- WAV ---

type wavDecoder struct {
	file       *os.File
	pcmStart   int64
	pcmLen     int64
	remaining  int64
	sampleRate int
	channels   int
	bitDepth   int
	pending
	raw []byte
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported WAV bit depth: %d", bitDepth)
	}
	pcmStart, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("locating WAV PCM data: %w", err)
	}
	return &wavDecoder{
		file:       f,
		pcmStart:   pcmStart,
		pcmLen:     dec.PCMLen(),
		remaining:  dec.PCMLen(),
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
		bitDepth:   bitDepth,
	}, nil
}

func (d *wavDecoder) Read(p []byte) (int, error) {
	if len(d.buf) > 0 {
		return d.drain(p), nil
	}
	if d.remaining <= 0 {
		return 0, io.EOF
	}

	width := d.bitDepth / 8
	want := max(len(p)/2, 1) * width
	want = int(min(int64(want), d.remaining))
	if cap(d.raw) < want {
		d.raw = make([]byte, want)
	}
	src := d.raw[:want]
	n, err := io.ReadFull(d.file, src)
	d.remaining -= int64(n)
	samples := n / width
	if samples == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}

	out := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		off := i * width
		var v int
		switch d.bitDepth {
		case 8:
			v = (int(src[off]) - 128) << 8
		case 16:
			v = int(int16(binary.LittleEndian.Uint16(src[off:])))
		case 24:
			s := int32(src[off]) | int32(src[off+1])<<8 | int32(src[off+2])<<16
			if s&0x800000 != 0 {
				s |= ^0xFFFFFF
			}
			v = int(s >> 8)
		case 32:
			v = int(int32(binary.LittleEndian.Uint32(src[off:])) >> 16)
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(clampSample16(v)))
	}
	return d.fill(p, out), nil
}

func (d *wavDecoder) Rewind() error {
	if _, err := d.file.Seek(d.pcmStart, io.SeekStart); err != nil {
		return err
	}
	d.remaining = d.pcmLen
	d.buf = nil
	return nil
}

func (d *wavDecoder) SampleRate() int { return d.sampleRate }
func (d *wavDecoder) Channels() int   { return d.channels }

// --- FLAC ---

type flacDecoder struct {
	stream *flac.Stream
	bps    int
	pending
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	return &flacDecoder{stream: stream, bps: int(stream.Info.BitsPerSample)}, nil
}

func (d *flacDecoder) Read(p []byte) (int, error) {
	if len(d.buf) > 0 {
		return d.drain(p), nil
	}
	frame, err := d.stream.ParseNext()
	if err != nil {
		return 0, err
	}

	channels := d.Channels()
	n := int(frame.Subframes[0].NSamples)
	out := make([]byte, n*channels*2)
	for i := 0; i < n; i++ {
		for ch := 0; ch < channels; ch++ {
			v := int(frame.Subframes[ch].Samples[i])
			if d.bps > 16 {
				v >>= d.bps - 16
			} else if d.bps < 16 {
				v <<= 16 - d.bps
			}
			binary.LittleEndian.PutUint16(out[(i*channels+ch)*2:], uint16(clampSample16(v)))
		}
	}
	return d.fill(p, out), nil
}

func (d *flacDecoder) Rewind() error {
	_, err := d.stream.Seek(0)
	d.buf = nil
	return err
}

func (d *flacDecoder) SampleRate() int { return int(d.stream.Info.SampleRate) }
func (d *flacDecoder) Channels() int   { return int(d.stream.Info.NChannels) }

// --- OGG Vorbis ---

type oggDecoder struct {
	reader *oggvorbis.Reader
	floats []float32
	pending
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &oggDecoder{reader: reader}, nil
}

func (d *oggDecoder) Read(p []byte) (int, error) {
	if len(d.buf) > 0 {
		return d.drain(p), nil
	}
	want := max(len(p)/2, d.reader.Channels())
	if cap(d.floats) < want {
		d.floats = make([]float32, want)
	}
	n, err := d.reader.Read(d.floats[:want])
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	out := make([]byte, n*2)
	for i, s := range d.floats[:n] {
		s = min(max(s, -1), 1)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s*32767)))
	}
	return d.fill(p, out), nil
}

func (d *oggDecoder) Rewind() error {
	d.buf = nil
	return d.reader.SetPosition(0)
}

func (d *oggDecoder) SampleRate() int { return d.reader.SampleRate() }
func (d *oggDecoder) Channels() int   { return d.reader.Channels() }
