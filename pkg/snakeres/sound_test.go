package snakeres

import (
	"context"
	"testing"
	"time"

	"github.com/gopxl/beep"
	reserrors "github.com/randalmurphal/snakeres/pkg/snakeres/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterSound_Decode(t *testing.T) {
	a := newTestAssets(t)
	require.NoError(t, a.RegisterSound(context.Background(), "blip", SoundParams{Path: "sounds/blip.wav"}))

	snd, err := a.Sound("blip")
	require.NoError(t, err)
	assert.Equal(t, beep.SampleRate(44100), snd.Format.SampleRate)
	assert.Equal(t, 1, snd.Format.NumChannels)
	assert.Equal(t, 441, snd.Len())
	assert.Equal(t, 10*time.Millisecond, snd.Duration())
	assert.False(t, snd.Loop)
}

func TestSound_Streamer(t *testing.T) {
	format := beep.Format{SampleRate: 100, NumChannels: 2, Precision: 2}
	src := beep.Silence(10)

	once := NewSound(src, format, false)
	n := drain(once.Streamer(), 100)
	assert.Equal(t, 10, n, "single pass stops at the end")

	looped := NewSound(beep.Silence(10), format, true)
	n = drain(looped.Streamer(), 100)
	assert.Equal(t, 100, n, "looping sound never ends")

	require.NoError(t, looped.Release())
	assert.Nil(t, looped.Streamer())
	assert.Zero(t, looped.Len())
}

// drain pulls up to limit samples and reports how many were produced.
func drain(s beep.Streamer, limit int) int {
	buf := make([][2]float64, 16)
	total := 0
	for total < limit {
		want := min(len(buf), limit-total)
		n, ok := s.Stream(buf[:want])
		total += n
		if !ok {
			break
		}
	}
	return total
}

func TestRegisterSound_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		kind reserrors.Kind
	}{
		{"empty path", "", reserrors.KindInvalidArgument},
		{"missing file", "sounds/absent.wav", reserrors.KindIO},
		{"malformed", "sounds/broken.wav", reserrors.KindDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAssets(t)
			err := a.RegisterSound(context.Background(), "s", SoundParams{Path: tt.path})
			assert.Equal(t, tt.kind, reserrors.KindOf(err))
		})
	}
}

func TestRegisterSound_Loop(t *testing.T) {
	a := newTestAssets(t)
	require.NoError(t, a.RegisterSound(context.Background(), "music", SoundParams{Path: "sounds/blip.wav", Loop: true}))

	snd, err := a.Sound("music")
	require.NoError(t, err)
	assert.True(t, snd.Loop)
	assert.Equal(t, 1000, drain(snd.Streamer(), 1000))
}
