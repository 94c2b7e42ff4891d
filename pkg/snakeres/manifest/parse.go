package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for a manifest whose extension is not
// .yaml, .yml, .json or .hcl.
var ErrUnsupportedFormat = errors.New("unsupported manifest format")

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes data in the format implied by the extension of name.
// Unknown keys are rejected in every format.
func Parse(name string, data []byte) (*Manifest, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".yaml", ".yml":
		return parseYAML(name, data)
	case ".json":
		return parseJSON(name, data)
	case ".hcl":
		return parseHCL(name, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func parseYAML(name string, data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml manifest %s: %w", name, err)
	}
	return &m, nil
}

func parseJSON(name string, data []byte) (*Manifest, error) {
	var m Manifest
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse json manifest %s: %w", name, err)
	}
	return &m, nil
}

// hclFile mirrors Manifest with one labelled block per entry:
//
//	layers = ["background", "world"]
//
//	texture "hero" {
//	  path       = "textures/hero.png"
//	  min_filter = "nearest"
//	}
//
//	material "hero" {
//	  shader   = "basic"
//	  textures = { u_Texture = "hero" }
//	  uniform "u_Color" {
//	    type  = "vec4"
//	    value = [1, 1, 1, 1]
//	  }
//	}
type hclFile struct {
	Layers       []string         `hcl:"layers,optional"`
	Shaders      []hclShader      `hcl:"shader,block"`
	Textures     []hclTexture     `hcl:"texture,block"`
	Meshes       []hclMesh        `hcl:"mesh,block"`
	Sounds       []hclSound       `hcl:"sound,block"`
	Fonts        []hclFont        `hcl:"font,block"`
	Materials    []hclMaterial    `hcl:"material,block"`
	SpriteSheets []hclSpriteSheet `hcl:"spritesheet,block"`
}

type hclShader struct {
	Tag     string      `hcl:"tag,label"`
	Sources []hclSource `hcl:"source,block"`
}

type hclSource struct {
	Stage  string `hcl:"stage,optional"`
	Path   string `hcl:"path,optional"`
	Inline string `hcl:"inline,optional"`
}

type hclTexture struct {
	Tag       string `hcl:"tag,label"`
	Path      string `hcl:"path"`
	MinFilter string `hcl:"min_filter,optional"`
	MagFilter string `hcl:"mag_filter,optional"`
	WrapS     string `hcl:"wrap_s,optional"`
	WrapT     string `hcl:"wrap_t,optional"`
	Mipmap    *bool  `hcl:"mipmap,optional"`
}

type hclMesh struct {
	Tag       string      `hcl:"tag,label"`
	Shape     string      `hcl:"shape,optional"`
	Primitive string      `hcl:"primitive,optional"`
	Vertices  [][]float32 `hcl:"vertices,optional"`
	Indices   []uint32    `hcl:"indices,optional"`
}

type hclSound struct {
	Tag  string `hcl:"tag,label"`
	Path string `hcl:"path"`
	Loop bool   `hcl:"loop,optional"`
}

type hclFont struct {
	Tag       string `hcl:"tag,label"`
	Path      string `hcl:"path"`
	PixelSize int    `hcl:"pixel_size"`
}

type hclMaterial struct {
	Tag      string            `hcl:"tag,label"`
	Shader   string            `hcl:"shader"`
	Textures map[string]string `hcl:"textures,optional"`
	Uniforms []hclUniform      `hcl:"uniform,block"`
}

// hclUniform accepts a bare number or a list of numbers as its value.
type hclUniform struct {
	Name  string    `hcl:"name,label"`
	Type  string    `hcl:"type"`
	Value cty.Value `hcl:"value"`
}

type hclSpriteSheet struct {
	Tag         string `hcl:"tag,label"`
	Texture     string `hcl:"texture"`
	FrameWidth  int    `hcl:"frame_width"`
	FrameHeight int    `hcl:"frame_height"`
}

func parseHCL(name string, data []byte) (*Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, name)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse hcl manifest %s: %w", name, diags)
	}

	var f hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &f); diags.HasErrors() {
		return nil, fmt.Errorf("decode hcl manifest %s: %w", name, diags)
	}

	m := &Manifest{Layers: f.Layers}
	for _, s := range f.Shaders {
		sh := Shader{Tag: s.Tag}
		for _, src := range s.Sources {
			sh.Sources = append(sh.Sources, ShaderSource(src))
		}
		m.Shaders = append(m.Shaders, sh)
	}
	for _, t := range f.Textures {
		m.Textures = append(m.Textures, Texture(t))
	}
	for _, mesh := range f.Meshes {
		m.Meshes = append(m.Meshes, Mesh(mesh))
	}
	for _, s := range f.Sounds {
		m.Sounds = append(m.Sounds, Sound(s))
	}
	for _, fnt := range f.Fonts {
		m.Fonts = append(m.Fonts, Font(fnt))
	}
	for _, s := range f.SpriteSheets {
		m.SpriteSheets = append(m.SpriteSheets, SpriteSheet(s))
	}
	for _, mat := range f.Materials {
		out := Material{Tag: mat.Tag, Shader: mat.Shader, Textures: mat.Textures}
		for _, u := range mat.Uniforms {
			v, err := uniformValue(u.Value)
			if err != nil {
				return nil, fmt.Errorf("decode hcl manifest %s: material %q uniform %q: %w", name, mat.Tag, u.Name, err)
			}
			out.Uniforms = append(out.Uniforms, Uniform{Name: u.Name, Type: u.Type, Value: v})
		}
		m.Materials = append(m.Materials, out)
	}
	return m, nil
}

func uniformValue(v cty.Value) ([]float32, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, errors.New("value must be set")
	}
	if v.Type() == cty.Number {
		var f float32
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}
		return []float32{f}, nil
	}

	list, err := convert.Convert(v, cty.List(cty.Number))
	if err != nil {
		return nil, fmt.Errorf("value must be a number or a list of numbers: %w", err)
	}
	var out []float32
	if err := gocty.FromCtyValue(list, &out); err != nil {
		return nil, err
	}
	return out, nil
}
