/*
Package config provides type-safe configuration extraction from map[string]any
and the engine-level asset Settings derived from it.

# Basic Usage

	settings, err := config.LoadSettings("engine.yaml", config.DefaultSettings())
	if err != nil {
	    log.Fatal(err)
	}

LoadSettings layers the file over a base Settings, so a caller can seed
defaults of its own (an asset root next to a manifest, a quieter log level)
and let the file override only what it names. Relative asset_root and
cache_path values resolve against the settings file's directory.

Accessors never fail: a missing key or a value of the wrong type yields the
supplied default.

	workers := cfg.Int("workers", 4)
	backoff := cfg.Section("retry").Duration("backoff", 50*time.Millisecond)

# Type Coercion

Duration accepts a time.ParseDuration string ("250ms"), a number of
milliseconds, or a time.Duration. Int accepts float64 values only when they
carry no fractional part, which is how JSON numbers arrive.

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
