package glsl

import (
	"fmt"
	"sort"
)

// InstanceAttribute is the per-instance model matrix attribute whose
// presence marks a program as instancing-capable.
const InstanceAttribute = "i_Model"

// Program is a linked set of stages.
type Program struct {
	Stages     []CompiledStage
	Uniforms   map[string]string // name -> GLSL type, merged across stages
	Attributes []Variable        // vertex stage inputs
	Compute    bool
}

// SupportsInstancing reports whether the vertex stage declares InstanceAttribute.
func (p *Program) SupportsInstancing() bool {
	for _, a := range p.Attributes {
		if a.Name == InstanceAttribute {
			return true
		}
	}
	return false
}

// UniformNames returns the program's uniform names, sorted.
func (p *Program) UniformNames() []string {
	names := make([]string, 0, len(p.Uniforms))
	for n := range p.Uniforms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LinkError reports an invalid stage combination or interface mismatch.
type LinkError struct {
	Msg string
}

func (e *LinkError) Error() string {
	return "link failed: " + e.Msg
}

// Link checks that stages form a valid program and merges their interfaces.
func (c *Compiler) Link(stages []CompiledStage) (*Program, error) {
	if len(stages) == 0 {
		return nil, &LinkError{Msg: "no shader stages attached"}
	}

	present := make(map[Stage]bool, len(stages))
	for _, s := range stages {
		if present[s.Stage] {
			return nil, &LinkError{Msg: fmt.Sprintf("duplicate %s stage", s.Stage)}
		}
		present[s.Stage] = true
	}

	if present[StageCompute] {
		if len(stages) > 1 {
			return nil, &LinkError{Msg: "compute stage cannot be linked with graphics stages"}
		}
	} else {
		if !present[StageVertex] {
			return nil, &LinkError{Msg: "missing vertex stage"}
		}
		if !present[StageFragment] {
			return nil, &LinkError{Msg: "missing fragment stage"}
		}
		if present[StageTessControl] != present[StageTessEval] {
			return nil, &LinkError{Msg: "tessellation control and evaluation stages must be attached as a pair"}
		}
	}

	prog := &Program{
		Stages:   append([]CompiledStage(nil), stages...),
		Uniforms: make(map[string]string),
		Compute:  present[StageCompute],
	}
	declaredIn := make(map[string]Stage)
	for _, s := range stages {
		for _, u := range s.Uniforms {
			if prev, ok := prog.Uniforms[u.Name]; ok && prev != u.Type {
				return nil, &LinkError{Msg: fmt.Sprintf("uniform %q declared as %s in %s stage and %s in %s stage",
					u.Name, prev, declaredIn[u.Name], u.Type, s.Stage)}
			}
			prog.Uniforms[u.Name] = u.Type
			declaredIn[u.Name] = s.Stage
		}
		if s.Stage == StageVertex {
			prog.Attributes = append(prog.Attributes, s.Inputs...)
		}
	}
	return prog, nil
}
