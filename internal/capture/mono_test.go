package capture

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

type stubPCMDecoder struct {
	data       []byte
	r          *bytes.Reader
	sampleRate int
	channels   int
	rewinds    int
}

func newStub(rate, channels int, samples ...int16) *stubPCMDecoder {
	d := &stubPCMDecoder{data: pcm16(samples...), sampleRate: rate, channels: channels}
	d.r = bytes.NewReader(d.data)
	return d
}

func (d *stubPCMDecoder) Read(p []byte) (int, error) { return d.r.Read(p) }
func (d *stubPCMDecoder) Rewind() error {
	d.rewinds++
	_, err := d.r.Seek(0, io.SeekStart)
	return err
}
func (d *stubPCMDecoder) SampleRate() int { return d.sampleRate }
func (d *stubPCMDecoder) Channels() int   { return d.channels }

func pcm16(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func TestMonoStreamDownmixesStereo(t *testing.T) {
	src := newStub(44100, 2, 1000, 3000, -2000, -4000, 500, 500)
	m, err := newMonoStream(src, 44100)
	if err != nil {
		t.Fatalf("newMonoStream() error = %v", err)
	}

	got := make([]int16, 2)
	if err := m.ReadSamples(got); err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if got[0] != 2000 || got[1] != -3000 {
		t.Fatalf("downmix = %v, want [2000 -3000]", got)
	}
}

func TestMonoStreamUpsamplesLinearly(t *testing.T) {
	src := newStub(22050, 1, 0, 1000, 2000, 3000)
	m, err := newMonoStream(src, 44100)
	if err != nil {
		t.Fatalf("newMonoStream() error = %v", err)
	}

	got := make([]int16, 6)
	if err := m.ReadSamples(got); err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	want := []int16{0, 500, 1000, 1500, 2000, 2500}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d (all %v)", i, got[i], want[i], got)
		}
	}
}

func TestMonoStreamLoopsAtEnd(t *testing.T) {
	src := newStub(44100, 1, 10, 20, 30)
	m, err := newMonoStream(src, 44100)
	if err != nil {
		t.Fatalf("newMonoStream() error = %v", err)
	}

	got := make([]int16, 7)
	if err := m.ReadSamples(got); err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	want := []int16{10, 20, 30, 10, 20, 30, 10}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d (all %v)", i, got[i], want[i], got)
		}
	}
	if src.rewinds == 0 {
		t.Fatal("expected the decoder to be rewound")
	}
}

func TestMonoStreamEmptyInput(t *testing.T) {
	m, err := newMonoStream(newStub(44100, 1), 44100)
	if err != nil {
		t.Fatalf("newMonoStream() error = %v", err)
	}
	if err := m.ReadSamples(make([]int16, 4)); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestNewMonoStreamRejectsBadFormat(t *testing.T) {
	if _, err := newMonoStream(newStub(0, 1), 44100); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := newMonoStream(newStub(44100, 0), 44100); err == nil {
		t.Fatal("expected error for zero channels")
	}
}
