package snakeres

import (
	"fmt"
	"os"

	"github.com/randalmurphal/snakeres/pkg/snakeres/config"
	reserrors "github.com/randalmurphal/snakeres/pkg/snakeres/errors"
)

// OptionsFromSettings converts engine settings into Assets options covering
// the asset root, read retries, the fallback material and texture defaults.
// Logging and the cache store are left to the caller, which owns their
// handles.
func OptionsFromSettings(s config.Settings) ([]Option, error) {
	tex, err := TextureSettingsFrom(s.Texture)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithTextureDefaults(tex),
		WithFallbackMaterial(s.FallbackMaterial),
	}
	if s.AssetRoot != "" {
		opts = append(opts, WithFileSystem(os.DirFS(s.AssetRoot)))
	}
	if s.RetryAttempts > 1 {
		opts = append(opts, WithRetry(reserrors.NewRetryConfig(
			reserrors.WithMaxAttempts(s.RetryAttempts),
			reserrors.WithInitialBackoff(s.RetryBackoff),
			reserrors.WithMaxBackoff(s.RetryMaxBackoff),
			reserrors.WithBackoffFactor(s.RetryBackoffFactor),
			reserrors.WithJitter(s.RetryJitter),
		)))
	}
	return opts, nil
}

// TextureSettingsFrom parses configured texture defaults.
func TextureSettingsFrom(d config.TextureDefaults) (TextureSettings, error) {
	var (
		s   = TextureSettings{GenerateMipmap: d.Mipmap}
		err error
	)
	if s.MinFilter, err = ParseFilter(d.MinFilter); err != nil {
		return TextureSettings{}, fmt.Errorf("texture defaults: min_filter: %w", err)
	}
	if s.MagFilter, err = ParseFilter(d.MagFilter); err != nil {
		return TextureSettings{}, fmt.Errorf("texture defaults: mag_filter: %w", err)
	}
	if s.WrapS, err = ParseWrap(d.WrapS); err != nil {
		return TextureSettings{}, fmt.Errorf("texture defaults: wrap_s: %w", err)
	}
	if s.WrapT, err = ParseWrap(d.WrapT); err != nil {
		return TextureSettings{}, fmt.Errorf("texture defaults: wrap_t: %w", err)
	}
	if field, msg := s.validate(); field != "" {
		return TextureSettings{}, fmt.Errorf("texture defaults: %s: %s", field, msg)
	}
	return s, nil
}
