package manifest

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/randalmurphal/snakeres/pkg/snakeres"
	reserrors "github.com/randalmurphal/snakeres/pkg/snakeres/errors"
	"github.com/randalmurphal/snakeres/pkg/snakeres/glsl"
)

// Manifest declares a set of resources to register.
type Manifest struct {
	Layers       []string      `yaml:"layers,omitempty" json:"layers,omitempty"`
	Shaders      []Shader      `yaml:"shaders,omitempty" json:"shaders,omitempty"`
	Textures     []Texture     `yaml:"textures,omitempty" json:"textures,omitempty"`
	Meshes       []Mesh        `yaml:"meshes,omitempty" json:"meshes,omitempty"`
	Sounds       []Sound       `yaml:"sounds,omitempty" json:"sounds,omitempty"`
	Fonts        []Font        `yaml:"fonts,omitempty" json:"fonts,omitempty"`
	Materials    []Material    `yaml:"materials,omitempty" json:"materials,omitempty"`
	SpriteSheets []SpriteSheet `yaml:"spritesheets,omitempty" json:"spritesheets,omitempty"`
}

// Len returns the number of entries across all categories.
func (m *Manifest) Len() int {
	return len(m.Layers) + len(m.Shaders) + len(m.Textures) + len(m.Meshes) +
		len(m.Sounds) + len(m.Fonts) + len(m.Materials) + len(m.SpriteSheets)
}

// Shader declares a shader program.
type Shader struct {
	Tag     string         `yaml:"tag" json:"tag"`
	Sources []ShaderSource `yaml:"sources" json:"sources"`
}

// ShaderSource is one stage, read from Path or given Inline.
// Stage may be omitted when Path has a conventional extension such as .vert.
type ShaderSource struct {
	Stage  string `yaml:"stage,omitempty" json:"stage,omitempty"`
	Path   string `yaml:"path,omitempty" json:"path,omitempty"`
	Inline string `yaml:"inline,omitempty" json:"inline,omitempty"`
}

// Params converts the declaration into registration parameters.
func (s Shader) Params() (snakeres.ShaderParams, error) {
	p := snakeres.ShaderParams{Sources: make([]snakeres.StageSource, 0, len(s.Sources))}
	for i, src := range s.Sources {
		stage, err := src.stage()
		if err != nil {
			return snakeres.ShaderParams{}, invalid(snakeres.CategoryShader, s.Tag, fmt.Sprintf("sources[%d]", i), err.Error())
		}
		p.Sources = append(p.Sources, snakeres.StageSource{Stage: stage, Path: src.Path, Source: src.Inline})
	}
	return p, nil
}

func (s ShaderSource) stage() (glsl.Stage, error) {
	if s.Stage != "" {
		return glsl.ParseStage(s.Stage)
	}
	if st, ok := glsl.StageForPath(s.Path); ok {
		return st, nil
	}
	if s.Path == "" {
		return 0, errors.New("inline source needs an explicit stage")
	}
	return 0, fmt.Errorf("cannot infer stage from %q", s.Path)
}

// Texture declares an image texture. Unset sampling fields keep the
// registry's texture defaults.
type Texture struct {
	Tag       string `yaml:"tag" json:"tag"`
	Path      string `yaml:"path" json:"path"`
	MinFilter string `yaml:"min_filter,omitempty" json:"min_filter,omitempty"`
	MagFilter string `yaml:"mag_filter,omitempty" json:"mag_filter,omitempty"`
	WrapS     string `yaml:"wrap_s,omitempty" json:"wrap_s,omitempty"`
	WrapT     string `yaml:"wrap_t,omitempty" json:"wrap_t,omitempty"`
	Mipmap    *bool  `yaml:"mipmap,omitempty" json:"mipmap,omitempty"`
}

// Params converts the declaration, starting from defaults for unset fields.
func (t Texture) Params(defaults snakeres.TextureSettings) (snakeres.TextureParams, error) {
	p := snakeres.TextureParams{Path: t.Path}
	if t.MinFilter == "" && t.MagFilter == "" && t.WrapS == "" && t.WrapT == "" && t.Mipmap == nil {
		return p, nil
	}

	s := defaults
	if t.MinFilter != "" {
		f, err := snakeres.ParseFilter(t.MinFilter)
		if err != nil {
			return snakeres.TextureParams{}, invalid(snakeres.CategoryTexture, t.Tag, "min_filter", err.Error())
		}
		s.MinFilter = f
	}
	if t.MagFilter != "" {
		f, err := snakeres.ParseFilter(t.MagFilter)
		if err != nil {
			return snakeres.TextureParams{}, invalid(snakeres.CategoryTexture, t.Tag, "mag_filter", err.Error())
		}
		s.MagFilter = f
	}
	if t.WrapS != "" {
		w, err := snakeres.ParseWrap(t.WrapS)
		if err != nil {
			return snakeres.TextureParams{}, invalid(snakeres.CategoryTexture, t.Tag, "wrap_s", err.Error())
		}
		s.WrapS = w
	}
	if t.WrapT != "" {
		w, err := snakeres.ParseWrap(t.WrapT)
		if err != nil {
			return snakeres.TextureParams{}, invalid(snakeres.CategoryTexture, t.Tag, "wrap_t", err.Error())
		}
		s.WrapT = w
	}
	if t.Mipmap != nil {
		s.GenerateMipmap = *t.Mipmap
	}
	p.Settings = &s
	return p, nil
}

// Mesh declares a mesh either as a named Shape ("quad") or as raw
// vertices of 3 (x, y, z) or 5 (x, y, z, u, v) components.
type Mesh struct {
	Tag       string      `yaml:"tag" json:"tag"`
	Shape     string      `yaml:"shape,omitempty" json:"shape,omitempty"`
	Primitive string      `yaml:"primitive,omitempty" json:"primitive,omitempty"`
	Vertices  [][]float32 `yaml:"vertices,omitempty" json:"vertices,omitempty"`
	Indices   []uint32    `yaml:"indices,omitempty" json:"indices,omitempty"`
}

// quadIndices draws QuadVertices as two triangles.
var quadIndices = []uint32{0, 1, 2, 2, 3, 0}

// Params converts the declaration into registration parameters.
func (m Mesh) Params() (snakeres.MeshParams, error) {
	switch m.Shape {
	case "":
	case "quad":
		if len(m.Vertices) > 0 || len(m.Indices) > 0 {
			return snakeres.MeshParams{}, invalid(snakeres.CategoryMesh, m.Tag, "shape", "quad cannot be combined with vertices or indices")
		}
		return snakeres.MeshParams{
			Vertices:  snakeres.QuadVertices(),
			Indices:   append([]uint32(nil), quadIndices...),
			Primitive: snakeres.PrimitiveTriangles,
		}, nil
	default:
		return snakeres.MeshParams{}, invalid(snakeres.CategoryMesh, m.Tag, "shape", fmt.Sprintf("unknown shape %q", m.Shape))
	}

	prim, err := snakeres.ParsePrimitive(m.Primitive)
	if err != nil {
		return snakeres.MeshParams{}, invalid(snakeres.CategoryMesh, m.Tag, "primitive", err.Error())
	}

	verts := make([]snakeres.Vertex, 0, len(m.Vertices))
	for i, v := range m.Vertices {
		switch len(v) {
		case 3:
			verts = append(verts, snakeres.Vertex{Position: mgl32.Vec3{v[0], v[1], v[2]}})
		case 5:
			verts = append(verts, snakeres.Vertex{
				Position: mgl32.Vec3{v[0], v[1], v[2]},
				UV:       mgl32.Vec2{v[3], v[4]},
			})
		default:
			return snakeres.MeshParams{}, invalid(snakeres.CategoryMesh, m.Tag, fmt.Sprintf("vertices[%d]", i),
				fmt.Sprintf("has %d components, want 3 or 5", len(v)))
		}
	}
	return snakeres.MeshParams{Vertices: verts, Indices: m.Indices, Primitive: prim}, nil
}

// Sound declares a WAV sound.
type Sound struct {
	Tag  string `yaml:"tag" json:"tag"`
	Path string `yaml:"path" json:"path"`
	Loop bool   `yaml:"loop,omitempty" json:"loop,omitempty"`
}

// Params converts the declaration into registration parameters.
func (s Sound) Params() snakeres.SoundParams {
	return snakeres.SoundParams{Path: s.Path, Loop: s.Loop}
}

// Font declares a TrueType or OpenType font baked at PixelSize.
type Font struct {
	Tag       string `yaml:"tag" json:"tag"`
	Path      string `yaml:"path" json:"path"`
	PixelSize int    `yaml:"pixel_size" json:"pixel_size"`
}

// Params converts the declaration into registration parameters.
func (f Font) Params() snakeres.FontParams {
	return snakeres.FontParams{Path: f.Path, PixelSize: f.PixelSize}
}

// Material declares a material. Shader and texture tags may refer to
// entries declared anywhere in the manifest or registered elsewhere.
type Material struct {
	Tag      string            `yaml:"tag" json:"tag"`
	Shader   string            `yaml:"shader" json:"shader"`
	Textures map[string]string `yaml:"textures,omitempty" json:"textures,omitempty"`
	Uniforms []Uniform         `yaml:"uniforms,omitempty" json:"uniforms,omitempty"`
}

// Uniform is a literal uniform value. Value holds 1 component for int and
// float, 2 to 4 for vectors and 16 (column-major) for mat4.
type Uniform struct {
	Name  string    `yaml:"name" json:"name"`
	Type  string    `yaml:"type" json:"type"`
	Value []float32 `yaml:"value" json:"value"`
}

var uniformKinds = map[string]struct {
	kind snakeres.UniformKind
	size int
}{
	"int":   {snakeres.UniformInt, 1},
	"float": {snakeres.UniformFloat, 1},
	"vec2":  {snakeres.UniformVec2, 2},
	"vec3":  {snakeres.UniformVec3, 3},
	"vec4":  {snakeres.UniformVec4, 4},
	"mat4":  {snakeres.UniformMat4, 16},
}

func (u Uniform) convert() (snakeres.Uniform, error) {
	k, ok := uniformKinds[u.Type]
	if !ok {
		return snakeres.Uniform{}, fmt.Errorf("%q has unknown type %q", u.Name, u.Type)
	}
	if len(u.Value) != k.size {
		return snakeres.Uniform{}, fmt.Errorf("%q of type %s needs %d values, got %d", u.Name, u.Type, k.size, len(u.Value))
	}

	v := u.Value
	switch k.kind {
	case snakeres.UniformInt:
		n := float64(v[0])
		if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
			return snakeres.Uniform{}, fmt.Errorf("%q of type int needs a whole number in int32 range, got %v", u.Name, v[0])
		}
		return snakeres.IntUniform(int32(n)), nil
	case snakeres.UniformFloat:
		return snakeres.FloatUniform(v[0]), nil
	case snakeres.UniformVec2:
		return snakeres.Vec2Uniform(mgl32.Vec2{v[0], v[1]}), nil
	case snakeres.UniformVec3:
		return snakeres.Vec3Uniform(mgl32.Vec3{v[0], v[1], v[2]}), nil
	case snakeres.UniformVec4:
		return snakeres.Vec4Uniform(mgl32.Vec4{v[0], v[1], v[2], v[3]}), nil
	default:
		var m mgl32.Mat4
		copy(m[:], v)
		return snakeres.Mat4Uniform(m), nil
	}
}

// Params converts the declaration into registration parameters.
func (m Material) Params() (snakeres.MaterialParams, error) {
	p := snakeres.MaterialParams{
		ShaderTag:       m.Shader,
		TextureBindings: m.Textures,
	}
	if len(m.Uniforms) > 0 {
		p.Uniforms = make(map[string]snakeres.Uniform, len(m.Uniforms))
	}
	for i, u := range m.Uniforms {
		if _, dup := p.Uniforms[u.Name]; dup {
			return snakeres.MaterialParams{}, invalid(snakeres.CategoryMaterial, m.Tag, fmt.Sprintf("uniforms[%d]", i),
				fmt.Sprintf("%q declared twice", u.Name))
		}
		v, err := u.convert()
		if err != nil {
			return snakeres.MaterialParams{}, invalid(snakeres.CategoryMaterial, m.Tag, fmt.Sprintf("uniforms[%d]", i), err.Error())
		}
		p.Uniforms[u.Name] = v
	}
	return p, nil
}

// SpriteSheet declares a frame grid over a texture.
type SpriteSheet struct {
	Tag         string `yaml:"tag" json:"tag"`
	Texture     string `yaml:"texture" json:"texture"`
	FrameWidth  int    `yaml:"frame_width" json:"frame_width"`
	FrameHeight int    `yaml:"frame_height" json:"frame_height"`
}

// Params converts the declaration into registration parameters.
func (s SpriteSheet) Params() snakeres.SpriteSheetParams {
	return snakeres.SpriteSheetParams{TextureTag: s.Texture, FrameWidth: s.FrameWidth, FrameHeight: s.FrameHeight}
}

func invalid(c snakeres.Category, tag, field, msg string) error {
	return &reserrors.InvalidArgumentError{Category: string(c), Tag: tag, Field: field, Message: msg}
}
