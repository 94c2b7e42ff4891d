package snakeres

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

// Test fixtures shared across the package tests.

const basicVertex = `#version 330 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec2 aUV;

uniform mat4 u_Model;
uniform mat4 u_View;
uniform mat4 u_Projection;

out vec2 v_UV;

void main()
{
    v_UV = aUV;
    gl_Position = u_Projection * u_View * u_Model * vec4(aPos, 1.0);
}
`

const basicFragment = `#version 330 core
in vec2 v_UV;
out vec4 FragColor;

uniform sampler2D u_Texture;
uniform sampler2D u_Mask;
uniform vec4 u_Color;

void main()
{
    FragColor = texture(u_Texture, v_UV) * texture(u_Mask, v_UV).r * u_Color;
}
`

const instancedVertex = `#version 330 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec2 aUV;
layout (location = 2) in mat4 i_Model;

uniform mat4 u_View;
uniform mat4 u_Projection;

out vec2 v_UV;

void main()
{
    v_UV = aUV;
    gl_Position = u_Projection * u_View * i_Model * vec4(aPos, 1.0);
}
`

// pngBytes encodes a w x h image whose top row is red and the rest blue.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{B: 255, A: 255}
			if y == 0 {
				c = color.RGBA{R: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// wavBytes encodes 16-bit mono PCM samples at 44.1 kHz.
func wavBytes(samples []int16) []byte {
	const (
		sampleRate = 44100
		channels   = 1
		bits       = 16
	)
	dataLen := uint32(len(samples) * 2)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, 36+dataLen)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*bits/8))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels*bits/8))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bits))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataLen)
	_ = binary.Write(&buf, binary.LittleEndian, samples)
	return buf.Bytes()
}

// testFS returns an in-memory asset tree used by most tests.
func testFS(t *testing.T) fstest.MapFS {
	t.Helper()
	return fstest.MapFS{
		"textures/hero.png":   {Data: pngBytes(t, 4, 2)},
		"textures/sheet.png":  {Data: pngBytes(t, 64, 32)},
		"textures/broken.png": {Data: []byte("not an image")},
		"shaders/basic.vert":  {Data: []byte(basicVertex)},
		"shaders/basic.frag":  {Data: []byte(basicFragment)},
		"sounds/blip.wav":     {Data: wavBytes(make([]int16, 441))},
		"sounds/broken.wav":   {Data: []byte("RIFF nonsense")},
		"fonts/regular.ttf":   {Data: goregular.TTF},
		"fonts/broken.ttf":    {Data: []byte("not a font")},
	}
}

// newTestAssets creates an Assets over testFS with logging disabled.
func newTestAssets(t *testing.T, opts ...Option) *Assets {
	t.Helper()
	base := []Option{WithLogger(nil), WithFileSystem(testFS(t))}
	a := New(append(base, opts...)...)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func quadParams() MeshParams {
	return MeshParams{
		Vertices:  QuadVertices(),
		Indices:   []uint32{0, 1, 2, 2, 3, 0},
		Primitive: PrimitiveTriangles,
	}
}

func basicShaderParams() ShaderParams {
	return ShaderParams{Sources: []StageSource{
		{Stage: StageVertex, Path: "shaders/basic.vert"},
		{Stage: StageFragment, Path: "shaders/basic.frag"},
	}}
}

// countingFS records how many times each file is opened.
type countingFS struct {
	fs.FS
	mu    sync.Mutex
	opens map[string]int
}

func newCountingFS(fsys fs.FS) *countingFS {
	return &countingFS{FS: fsys, opens: make(map[string]int)}
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.mu.Lock()
	c.opens[name]++
	c.mu.Unlock()
	return c.FS.Open(name)
}

func (c *countingFS) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens[name]
}

var errFlaky = errors.New("device busy")

// flakyFS fails the first n opens with a transient error.
type flakyFS struct {
	fs.FS
	failures atomic.Int32
}

func (f *flakyFS) Open(name string) (fs.File, error) {
	if f.failures.Add(-1) >= 0 {
		return nil, &fs.PathError{Op: "open", Path: name, Err: errFlaky}
	}
	return f.FS.Open(name)
}

// releaseCounter is a Releaser that counts Release calls.
type releaseCounter struct {
	released atomic.Int32
	err      error
}

func (r *releaseCounter) Release() error {
	r.released.Add(1)
	return r.err
}

func vec3(x, y, z float32) mgl32.Vec3 { return mgl32.Vec3{x, y, z} }

// recordingMetrics is a MetricsRecorder that keeps every call.
type recordingMetrics struct {
	mu            sync.Mutex
	registrations map[string]int
	failures      map[string]int
	misses        map[string]int
	loads         map[string]int64
	cacheHits     int
	cacheMisses   int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		registrations: make(map[string]int),
		failures:      make(map[string]int),
		misses:        make(map[string]int),
		loads:         make(map[string]int64),
	}
}

func (m *recordingMetrics) RecordRegistration(_ context.Context, category string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrations[category]++
	if err != nil {
		m.failures[category]++
	}
}

func (m *recordingMetrics) RecordResolveMiss(_ context.Context, category string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.misses[category]++
}

func (m *recordingMetrics) RecordLoad(_ context.Context, category string, size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads[category] += size
}

func (m *recordingMetrics) RecordCacheLookup(_ context.Context, _ string, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.cacheHits++
	} else {
		m.cacheMisses++
	}
}
