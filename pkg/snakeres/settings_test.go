package snakeres

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/randalmurphal/snakeres/pkg/snakeres/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextureSettingsFrom(t *testing.T) {
	s, err := TextureSettingsFrom(config.DefaultSettings().Texture)
	require.NoError(t, err)
	assert.Equal(t, DefaultTextureSettings(), s)

	s, err = TextureSettingsFrom(config.TextureDefaults{
		MinFilter: "nearest", MagFilter: "nearest", WrapS: "repeat", WrapT: "mirrored_repeat",
	})
	require.NoError(t, err)
	assert.Equal(t, TextureSettings{
		MinFilter: FilterNearest,
		MagFilter: FilterNearest,
		WrapS:     WrapRepeat,
		WrapT:     WrapMirroredRepeat,
	}, s)
}

func TestTextureSettingsFrom_Errors(t *testing.T) {
	base := config.DefaultSettings().Texture

	tests := []struct {
		name   string
		modify func(*config.TextureDefaults)
		want   string
	}{
		{"unknown filter", func(d *config.TextureDefaults) { d.MinFilter = "blurry" }, "min_filter"},
		{"unknown wrap", func(d *config.TextureDefaults) { d.WrapT = "tile" }, "wrap_t"},
		{"mipmap mag filter", func(d *config.TextureDefaults) { d.MagFilter = "linear_mipmap_linear" }, "mag_filter"},
		{"mipmap filter without mipmaps", func(d *config.TextureDefaults) {
			d.MinFilter = "nearest_mipmap_nearest"
			d.Mipmap = false
		}, "min_filter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base
			tt.modify(&d)
			_, err := TextureSettingsFrom(d)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestOptionsFromSettings(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "textures"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "textures", "hero.png"), pngBytes(t, 4, 2), 0o644))

	s := config.DefaultSettings()
	s.AssetRoot = root
	s.RetryAttempts = 2
	s.RetryBackoff = time.Millisecond
	s.RetryMaxBackoff = 4 * time.Millisecond
	s.RetryBackoffFactor = 3
	s.RetryJitter = 0
	s.FallbackMaterial = "error"
	s.Texture.WrapS = "repeat"

	opts, err := OptionsFromSettings(s)
	require.NoError(t, err)

	a := New(append(opts, WithLogger(nil))...)
	t.Cleanup(func() { _ = a.Close() })

	assert.Equal(t, WrapRepeat, a.TextureDefaults().WrapS)
	require.NoError(t, a.RegisterTexture(context.Background(), "hero", TextureParams{Path: "textures/hero.png"}))

	tex, err := a.Texture("hero")
	require.NoError(t, err)
	assert.Equal(t, WrapRepeat, tex.Settings.WrapS)
	assert.Equal(t, "error", a.cfg.fallback)
	assert.Equal(t, 2, a.cfg.retry.MaxAttempts)
	assert.Equal(t, time.Millisecond, a.cfg.retry.InitialBackoff)
	assert.Equal(t, 4*time.Millisecond, a.cfg.retry.MaxBackoff)
	assert.Equal(t, 3.0, a.cfg.retry.BackoffFactor)
	assert.Zero(t, a.cfg.retry.Jitter)
}

func TestOptionsFromSettings_BadTexture(t *testing.T) {
	s := config.DefaultSettings()
	s.Texture.WrapS = "sideways"
	_, err := OptionsFromSettings(s)
	assert.Error(t, err)
}
