package config

import (
	"log/slog"
	"strings"
	"time"
)

// TextureDefaults holds the texture settings applied when a texture entry
// leaves a field unset. Values use the manifest spelling ("linear", "repeat").
type TextureDefaults struct {
	MinFilter string
	MagFilter string
	WrapS     string
	WrapT     string
	Mipmap    bool
}

// Settings is the engine-level asset configuration.
type Settings struct {
	// AssetRoot is the directory relative asset paths resolve against.
	AssetRoot string

	// CachePath is the SQLite decode cache location. Empty keeps the cache in memory.
	CachePath string

	// Workers bounds concurrent file loads during manifest application.
	Workers int

	// RetryAttempts is the number of attempts per file read.
	RetryAttempts int

	// RetryBackoff is the initial delay between read attempts.
	RetryBackoff time.Duration

	// RetryMaxBackoff caps the delay between read attempts.
	RetryMaxBackoff time.Duration

	// RetryBackoffFactor multiplies the delay after each attempt.
	RetryBackoffFactor float64

	// RetryJitter randomises each delay by up to this fraction.
	RetryJitter float64

	// FallbackMaterial is resolved in place of a material with missing references.
	FallbackMaterial string

	// LogLevel is the minimum slog level.
	LogLevel slog.Level

	Texture TextureDefaults
}

// DefaultSettings returns the settings used when no configuration is given.
func DefaultSettings() Settings {
	return Settings{
		AssetRoot:     ".",
		Workers:       4,
		RetryAttempts:      1,
		RetryBackoff:       50 * time.Millisecond,
		RetryMaxBackoff:    time.Second,
		RetryBackoffFactor: 2,
		RetryJitter:        0.1,
		LogLevel:           slog.LevelInfo,
		Texture: TextureDefaults{
			MinFilter: "linear",
			MagFilter: "linear",
			WrapS:     "clamp_to_edge",
			WrapT:     "clamp_to_edge",
			Mipmap:    true,
		},
	}
}

// Settings extracts engine settings, falling back to DefaultSettings for
// anything missing or malformed.
func (c Config) Settings() Settings {
	return c.SettingsOver(DefaultSettings())
}

// SettingsOver applies the configured keys on top of base. Keys that are
// missing or malformed keep the value from base.
//
// Recognised keys:
//
//	asset_root: assets
//	cache_path: .cache/assets.db
//	workers: 8
//	fallback_material: error
//	log_level: debug
//	retry:
//	  attempts: 3
//	  backoff: 100ms
//	  max_backoff: 2s
//	  backoff_factor: 1.5
//	  jitter: 0.2
//	texture:
//	  min_filter: nearest
//	  mag_filter: nearest
//	  wrap_s: repeat
//	  wrap_t: repeat
//	  mipmap: false
func (c Config) SettingsOver(base Settings) Settings {
	s := base

	s.AssetRoot = c.String("asset_root", s.AssetRoot)
	s.CachePath = c.String("cache_path", s.CachePath)
	if w := c.Int("workers", s.Workers); w > 0 {
		s.Workers = w
	}
	s.FallbackMaterial = c.String("fallback_material", s.FallbackMaterial)
	s.LogLevel = ParseLogLevel(c.String("log_level", ""), s.LogLevel)

	retry := c.Section("retry")
	if n := retry.Int("attempts", s.RetryAttempts); n > 0 {
		s.RetryAttempts = n
	}
	s.RetryBackoff = retry.Duration("backoff", s.RetryBackoff)
	s.RetryMaxBackoff = retry.Duration("max_backoff", s.RetryMaxBackoff)
	if f := retry.Float("backoff_factor", s.RetryBackoffFactor); f >= 1 {
		s.RetryBackoffFactor = f
	}
	if j := retry.Float("jitter", s.RetryJitter); j >= 0 && j <= 1 {
		s.RetryJitter = j
	}

	tex := c.Section("texture")
	s.Texture.MinFilter = tex.String("min_filter", s.Texture.MinFilter)
	s.Texture.MagFilter = tex.String("mag_filter", s.Texture.MagFilter)
	s.Texture.WrapS = tex.String("wrap_s", s.Texture.WrapS)
	s.Texture.WrapT = tex.String("wrap_t", s.Texture.WrapT)
	s.Texture.Mipmap = tex.Bool("mipmap", s.Texture.Mipmap)

	return s
}

// ParseLogLevel maps "debug", "info", "warn"/"warning" and "error" to slog
// levels. Anything else returns defaultVal.
func ParseLogLevel(s string, defaultVal slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return defaultVal
}
