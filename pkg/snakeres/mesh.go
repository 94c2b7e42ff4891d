package snakeres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	reserrors "github.com/randalmurphal/snakeres/pkg/snakeres/errors"
)

// Primitive is the topology a mesh is drawn with.
type Primitive int

const (
	PrimitiveTriangles Primitive = iota
	PrimitiveLines
	PrimitivePoints
	PrimitiveTriangleFan
	PrimitiveTriangleStrip
	PrimitiveLineStrip
)

var primitiveNames = [...]string{
	PrimitiveTriangles:     "triangles",
	PrimitiveLines:         "lines",
	PrimitivePoints:        "points",
	PrimitiveTriangleFan:   "triangle_fan",
	PrimitiveTriangleStrip: "triangle_strip",
	PrimitiveLineStrip:     "line_strip",
}

func (p Primitive) String() string {
	if p < 0 || int(p) >= len(primitiveNames) {
		return fmt.Sprintf("primitive(%d)", int(p))
	}
	return primitiveNames[p]
}

// ParsePrimitive converts a primitive name. Empty means triangles.
func ParsePrimitive(s string) (Primitive, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PrimitiveTriangles, nil
	}
	for i, name := range primitiveNames {
		if name == s {
			return Primitive(i), nil
		}
	}
	return 0, fmt.Errorf("unknown primitive %q", s)
}

// Vertex is the interleaved position + texture coordinate layout.
type Vertex struct {
	Position mgl32.Vec3
	UV       mgl32.Vec2
}

// Bounds is an axis-aligned box in mesh-local space.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Size returns Max - Min.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Mesh is vertex and optional index data plus derived bounds.
type Mesh struct {
	Vertices  []Vertex
	Indices   []uint32
	Primitive Primitive
	Bounds    Bounds
	Radius    float32 // farthest vertex distance from the local origin
}

// Indexed reports whether the mesh is drawn through its index buffer.
func (m *Mesh) Indexed() bool {
	return len(m.Indices) > 0
}

// DrawCount is the number of elements a draw call submits.
func (m *Mesh) DrawCount() int {
	if m.Indexed() {
		return len(m.Indices)
	}
	return len(m.Vertices)
}

// MeshParams builds a Mesh from raw buffers.
type MeshParams struct {
	Vertices  []Vertex
	Indices   []uint32
	Primitive Primitive
}

func (p MeshParams) adopted() bool { return false }

func (p MeshParams) build(_ context.Context, _ *Assets, category, tag string) (*Mesh, error) {
	invalid := func(field, msg string) error {
		return &reserrors.InvalidArgumentError{Category: category, Tag: tag, Field: field, Message: msg}
	}

	if len(p.Vertices) == 0 {
		return nil, invalid("vertices", "must not be empty")
	}
	if p.Primitive < PrimitiveTriangles || p.Primitive > PrimitiveLineStrip {
		return nil, invalid("primitive", fmt.Sprintf("unknown primitive %d", int(p.Primitive)))
	}
	for i, idx := range p.Indices {
		if uint64(idx) >= uint64(len(p.Vertices)) {
			return nil, invalid("indices", fmt.Sprintf("index %d at position %d is out of range for %d vertices", idx, i, len(p.Vertices)))
		}
	}

	m := &Mesh{
		Vertices:  append([]Vertex(nil), p.Vertices...),
		Primitive: p.Primitive,
	}
	if len(p.Indices) > 0 {
		m.Indices = append([]uint32(nil), p.Indices...)
	}
	m.Bounds, m.Radius = computeBounds(m.Vertices)
	return m, nil
}

func computeBounds(vertices []Vertex) (Bounds, float32) {
	b := Bounds{Min: vertices[0].Position, Max: vertices[0].Position}
	var radius float32
	for _, v := range vertices {
		for i := 0; i < 3; i++ {
			b.Min[i] = min(b.Min[i], v.Position[i])
			b.Max[i] = max(b.Max[i], v.Position[i])
		}
		radius = max(radius, v.Position.Len())
	}
	return b, radius
}

// QuadVertices returns a unit quad centred on the origin with UVs covering
// the full texture, drawn as a triangle fan.
func QuadVertices() []Vertex {
	return []Vertex{
		{Position: mgl32.Vec3{-0.5, -0.5, 0}, UV: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{0.5, -0.5, 0}, UV: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{0.5, 0.5, 0}, UV: mgl32.Vec2{1, 1}},
		{Position: mgl32.Vec3{-0.5, 0.5, 0}, UV: mgl32.Vec2{0, 1}},
	}
}
