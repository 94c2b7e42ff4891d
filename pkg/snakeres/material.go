package snakeres

import (
	"context"
	"fmt"
	"maps"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	reserrors "github.com/randalmurphal/snakeres/pkg/snakeres/errors"
)

// UniformKind is the value type of a literal material uniform.
type UniformKind int

const (
	UniformInt UniformKind = iota
	UniformFloat
	UniformVec2
	UniformVec3
	UniformVec4
	UniformMat4
)

// GLSLType returns the matching GLSL type name.
func (k UniformKind) GLSLType() string {
	switch k {
	case UniformInt:
		return "int"
	case UniformFloat:
		return "float"
	case UniformVec2:
		return "vec2"
	case UniformVec3:
		return "vec3"
	case UniformVec4:
		return "vec4"
	case UniformMat4:
		return "mat4"
	}
	return fmt.Sprintf("uniform(%d)", int(k))
}

func (k UniformKind) String() string {
	return k.GLSLType()
}

// Uniform is a literal uniform value. Only the field matching Kind is set.
type Uniform struct {
	Kind  UniformKind
	Int   int32
	Float float32
	Vec2  mgl32.Vec2
	Vec3  mgl32.Vec3
	Vec4  mgl32.Vec4
	Mat4  mgl32.Mat4
}

func IntUniform(v int32) Uniform { return Uniform{Kind: UniformInt, Int: v} }
func FloatUniform(v float32) Uniform { return Uniform{Kind: UniformFloat, Float: v} }
func Vec2Uniform(v mgl32.Vec2) Uniform { return Uniform{Kind: UniformVec2, Vec2: v} }
func Vec3Uniform(v mgl32.Vec3) Uniform { return Uniform{Kind: UniformVec3, Vec3: v} }
func Vec4Uniform(v mgl32.Vec4) Uniform { return Uniform{Kind: UniformVec4, Vec4: v} }
func Mat4Uniform(v mgl32.Mat4) Uniform { return Uniform{Kind: UniformMat4, Mat4: v} }

// Value returns the populated field as an untyped value.
func (u Uniform) Value() any {
	switch u.Kind {
	case UniformInt:
		return u.Int
	case UniformFloat:
		return u.Float
	case UniformVec2:
		return u.Vec2
	case UniformVec3:
		return u.Vec3
	case UniformVec4:
		return u.Vec4
	case UniformMat4:
		return u.Mat4
	}
	return nil
}

// Material pairs a shader with texture bindings and literal uniform values.
// Shader and texture tags are weak references, checked by ResolveMaterial.
type Material struct {
	ShaderTag string
	Textures  map[string]string // sampler uniform -> texture tag
	Uniforms  map[string]Uniform
}

// SamplerNames returns the bound sampler uniforms in texture unit order.
func (m *Material) SamplerNames() []string {
	names := make([]string, 0, len(m.Textures))
	for name := range m.Textures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MaterialParams builds a Material. References are not validated here.
type MaterialParams struct {
	ShaderTag       string
	TextureBindings map[string]string
	Uniforms        map[string]Uniform
}

func (p MaterialParams) adopted() bool { return false }

func (p MaterialParams) build(_ context.Context, _ *Assets, category, tag string) (*Material, error) {
	invalid := func(field, msg string) error {
		return &reserrors.InvalidArgumentError{Category: category, Tag: tag, Field: field, Message: msg}
	}

	if p.ShaderTag == "" {
		return nil, invalid("shader", "must not be empty")
	}
	for name, tex := range p.TextureBindings {
		if name == "" {
			return nil, invalid("textures", "uniform name must not be empty")
		}
		if tex == "" {
			return nil, invalid("textures", fmt.Sprintf("texture tag for %q must not be empty", name))
		}
	}
	for name, u := range p.Uniforms {
		if name == "" {
			return nil, invalid("uniforms", "uniform name must not be empty")
		}
		if u.Kind < UniformInt || u.Kind > UniformMat4 {
			return nil, invalid("uniforms", fmt.Sprintf("%q has unknown kind %d", name, int(u.Kind)))
		}
		if _, clash := p.TextureBindings[name]; clash {
			return nil, invalid("uniforms", fmt.Sprintf("%q is also bound to a texture", name))
		}
	}

	m := &Material{
		ShaderTag: p.ShaderTag,
		Textures:  make(map[string]string, len(p.TextureBindings)),
		Uniforms:  make(map[string]Uniform, len(p.Uniforms)),
	}
	maps.Copy(m.Textures, p.TextureBindings)
	maps.Copy(m.Uniforms, p.Uniforms)
	return m, nil
}
