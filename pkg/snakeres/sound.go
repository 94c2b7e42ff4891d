package snakeres

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	reserrors "github.com/randalmurphal/snakeres/pkg/snakeres/errors"
)

// Sound is fully decoded audio held in memory.
type Sound struct {
	Buffer *beep.Buffer
	Format beep.Format
	Loop   bool

	mu sync.Mutex
}

// NewSound buffers every sample of s.
func NewSound(s beep.Streamer, format beep.Format, loop bool) *Sound {
	buf := beep.NewBuffer(format)
	buf.Append(s)
	return &Sound{Buffer: buf, Format: format, Loop: loop}
}

// Len returns the number of buffered samples.
func (s *Sound) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Buffer == nil {
		return 0
	}
	return s.Buffer.Len()
}

// Duration returns the playback length of one pass.
func (s *Sound) Duration() time.Duration {
	return s.Format.SampleRate.D(s.Len())
}

// Streamer returns a new playback cursor over the buffer. Looping sounds
// repeat forever. Returns nil once the sound has been released.
func (s *Sound) Streamer() beep.Streamer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Buffer == nil {
		return nil
	}
	st := s.Buffer.Streamer(0, s.Buffer.Len())
	if s.Loop {
		return beep.Loop(-1, st)
	}
	return st
}

// Release drops the sample buffer.
func (s *Sound) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Buffer = nil
	return nil
}

// SoundParams decodes a WAV file into memory.
type SoundParams struct {
	Path string
	Loop bool
}

func (p SoundParams) adopted() bool { return false }

func (p SoundParams) build(ctx context.Context, a *Assets, category, tag string) (*Sound, error) {
	if p.Path == "" {
		return nil, &reserrors.InvalidArgumentError{Category: category, Tag: tag, Field: "path", Message: "must not be empty"}
	}

	data, err := a.readFile(ctx, category, tag, p.Path)
	if err != nil {
		return nil, err
	}

	decodeErr := func(err error) error {
		return &reserrors.DecodeError{Category: category, Tag: tag, Path: p.Path, Err: err}
	}

	stream, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, decodeErr(err)
	}
	defer stream.Close()

	snd := NewSound(stream, format, p.Loop)
	if err := stream.Err(); err != nil {
		return nil, decodeErr(err)
	}
	if snd.Len() == 0 {
		return nil, decodeErr(errors.New("no samples"))
	}

	a.logLoad(category, p.Path, len(data), false)
	return snd, nil
}
