// Package glsl validates, reflects and links GLSL shader stages without a
// GPU context. It is the default shader backend of the asset registry.
package glsl

import (
	"fmt"
	"path"
	"strings"
)

// Stage identifies a programmable pipeline stage.
type Stage int

const (
	StageVertex Stage = iota
	StageFragment
	StageGeometry
	StageTessControl
	StageTessEval
	StageCompute
)

var stageNames = [...]string{
	StageVertex:      "vertex",
	StageFragment:    "fragment",
	StageGeometry:    "geometry",
	StageTessControl: "tess_control",
	StageTessEval:    "tess_eval",
	StageCompute:     "compute",
}

// String returns the lower-case stage name.
func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	return s >= StageVertex && s <= StageCompute
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown shader stage %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stage) UnmarshalText(text []byte) error {
	v, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStage accepts the stage name or its common short forms
// ("vert", "frag", "geom", "tesc", "tese", "comp").
func ParseStage(name string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vertex", "vert", "vs":
		return StageVertex, nil
	case "fragment", "frag", "fs", "pixel":
		return StageFragment, nil
	case "geometry", "geom", "gs":
		return StageGeometry, nil
	case "tess_control", "tesscontrol", "tesc", "tcs":
		return StageTessControl, nil
	case "tess_eval", "tesseval", "tese", "tes":
		return StageTessEval, nil
	case "compute", "comp", "cs":
		return StageCompute, nil
	}
	return 0, fmt.Errorf("unknown shader stage %q", name)
}

// StageForPath infers a stage from a conventional file extension
// (".vert", ".frag", ".geom", ".tesc", ".tese", ".comp").
func StageForPath(p string) (Stage, bool) {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(p)), ".")
	if ext == "" || ext == "glsl" {
		return 0, false
	}
	s, err := ParseStage(ext)
	return s, err == nil
}
