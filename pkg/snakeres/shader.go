package snakeres

import (
	"context"
	"errors"
	"fmt"

	reserrors "github.com/randalmurphal/snakeres/pkg/snakeres/errors"
	"github.com/randalmurphal/snakeres/pkg/snakeres/glsl"
)

// ShaderStage identifies a pipeline stage.
type ShaderStage = glsl.Stage

const (
	StageVertex      = glsl.StageVertex
	StageFragment    = glsl.StageFragment
	StageGeometry    = glsl.StageGeometry
	StageTessControl = glsl.StageTessControl
	StageTessEval    = glsl.StageTessEval
	StageCompute     = glsl.StageCompute
)

// ShaderBackend compiles stages and links them into a program.
// glsl.Compiler is the default.
type ShaderBackend interface {
	Compile(stage glsl.Stage, source string) (glsl.CompiledStage, error)
	Link(stages []glsl.CompiledStage) (*glsl.Program, error)
}

// StageSource is one stage of a shader: a file Path or inline Source text.
type StageSource struct {
	Stage  ShaderStage
	Path   string
	Source string
}

// Shader is a linked program and its reflected interface.
type Shader struct {
	Stages             []glsl.CompiledStage
	Uniforms           map[string]string // uniform name -> GLSL type
	Attributes         []glsl.Variable
	SupportsInstancing bool
}

// NewShader wraps a linked program.
func NewShader(prog *glsl.Program) *Shader {
	return &Shader{
		Stages:             prog.Stages,
		Uniforms:           prog.Uniforms,
		Attributes:         prog.Attributes,
		SupportsInstancing: prog.SupportsInstancing(),
	}
}

// UniformType returns the declared GLSL type of a uniform.
func (s *Shader) UniformType(name string) (string, bool) {
	t, ok := s.Uniforms[name]
	return t, ok
}

// HasStage reports whether the program includes stage.
func (s *Shader) HasStage(stage ShaderStage) bool {
	for _, cs := range s.Stages {
		if cs.Stage == stage {
			return true
		}
	}
	return false
}

// ShaderParams compiles and links a shader from ordered stage sources.
type ShaderParams struct {
	Sources []StageSource
}

func (p ShaderParams) adopted() bool { return false }

func (p ShaderParams) build(ctx context.Context, a *Assets, category, tag string) (*Shader, error) {
	compiled := make([]glsl.CompiledStage, 0, len(p.Sources))
	for i, src := range p.Sources {
		if src.Path == "" && src.Source == "" {
			return nil, &reserrors.InvalidArgumentError{Category: category, Tag: tag,
				Field: fmt.Sprintf("sources[%d]", i), Message: "needs a path or inline source"}
		}
		if src.Path != "" && src.Source != "" {
			return nil, &reserrors.InvalidArgumentError{Category: category, Tag: tag,
				Field: fmt.Sprintf("sources[%d]", i), Message: "path and inline source are exclusive"}
		}

		text := src.Source
		if src.Path != "" {
			data, err := a.readFile(ctx, category, tag, src.Path)
			if err != nil {
				var ioErr *reserrors.IOError
				msg := err.Error()
				if errors.As(err, &ioErr) {
					msg = ioErr.Err.Error()
				}
				return nil, &reserrors.CompilationError{Tag: tag, Stage: src.Stage.String(), Path: src.Path, Log: msg, Err: err}
			}
			a.logLoad(category, src.Path, len(data), false)
			text = string(data)
		}

		cs, err := a.cfg.backend.Compile(src.Stage, text)
		if err != nil {
			return nil, &reserrors.CompilationError{Tag: tag, Stage: src.Stage.String(), Path: src.Path, Log: err.Error()}
		}
		compiled = append(compiled, cs)
	}

	prog, err := a.cfg.backend.Link(compiled)
	if err != nil {
		msg := err.Error()
		var le *glsl.LinkError
		if errors.As(err, &le) {
			msg = le.Msg
		}
		return nil, &reserrors.LinkError{Tag: tag, Log: msg}
	}
	return NewShader(prog), nil
}
