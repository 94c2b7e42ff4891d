package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadSettings reads an engine settings file and applies it over base.
// Relative asset_root and cache_path values resolve against the directory
// holding the file, so a settings file can sit next to the assets it
// describes.
func LoadSettings(path string, base Settings) (Settings, error) {
	cfg, err := FromFile(path)
	if err != nil {
		return Settings{}, err
	}

	s := cfg.SettingsOver(base)
	dir := filepath.Dir(path)
	if root := cfg.String("asset_root", ""); root != "" {
		s.AssetRoot = relativeTo(dir, root)
	}
	if cachePath := cfg.String("cache_path", ""); cachePath != "" {
		s.CachePath = relativeTo(dir, cachePath)
	}
	return s, nil
}

func relativeTo(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// FromFile loads a settings file. The format follows the extension:
// .yaml, .yml or .json.
func FromFile(path string) (Config, error) {
	var parse func([]byte) (Config, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parse = FromYAML
	case ".json":
		parse = FromJSON
	default:
		return Config{}, fmt.Errorf("settings file %s: unsupported extension %q", path, filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read settings file: %w", err)
	}
	cfg, err := parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("settings file %s: %w", path, err)
	}
	return cfg, nil
}

// FromYAML parses a YAML mapping. An empty document yields an empty Config.
func FromYAML(data []byte) (Config, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return New(m), nil
}

// FromJSON parses a JSON object.
func FromJSON(data []byte) (Config, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	return New(m), nil
}
