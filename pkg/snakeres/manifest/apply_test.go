package manifest

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/randalmurphal/snakeres/pkg/snakeres"
	reserrors "github.com/randalmurphal/snakeres/pkg/snakeres/errors"
	"github.com/randalmurphal/snakeres/pkg/snakeres/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshot captures what a registry holds in comparable form.
type snapshot struct {
	Layers    []string
	Tags      map[snakeres.Category][]string
	Textures  map[string]snakeres.TextureSettings
	Materials map[string]snakeres.Material
	Meshes    map[string]int
	Sheets    map[string]snakeres.SpriteSheet
	Uniforms  map[string]map[string]string
}

func takeSnapshot(t *testing.T, a *snakeres.Assets) snapshot {
	t.Helper()
	s := snapshot{
		Layers:    a.Layers(),
		Tags:      make(map[snakeres.Category][]string),
		Textures:  make(map[string]snakeres.TextureSettings),
		Materials: make(map[string]snakeres.Material),
		Meshes:    make(map[string]int),
		Sheets:    make(map[string]snakeres.SpriteSheet),
		Uniforms:  make(map[string]map[string]string),
	}
	for _, c := range snakeres.Categories {
		s.Tags[c] = a.Tags(c)
	}
	for _, tag := range a.Tags(snakeres.CategoryTexture) {
		tex, err := a.Texture(tag)
		require.NoError(t, err)
		s.Textures[tag] = tex.Settings
	}
	for _, tag := range a.Tags(snakeres.CategoryMaterial) {
		m, err := a.Material(tag)
		require.NoError(t, err)
		s.Materials[tag] = *m
	}
	for _, tag := range a.Tags(snakeres.CategoryMesh) {
		m, err := a.Mesh(tag)
		require.NoError(t, err)
		s.Meshes[tag] = m.DrawCount()
	}
	for _, tag := range a.Tags(snakeres.CategorySpriteSheet) {
		sh, err := a.SpriteSheet(tag)
		require.NoError(t, err)
		s.Sheets[tag] = *sh
	}
	for _, tag := range a.Tags(snakeres.CategoryShader) {
		sh, err := a.Shader(tag)
		require.NoError(t, err)
		s.Uniforms[tag] = sh.Uniforms
	}
	return s
}

func applyFile(t *testing.T, name string) (*snakeres.Assets, *Report) {
	t.Helper()
	m, err := Load(filepath.Join("testdata", name))
	require.NoError(t, err)

	a := newAssets(t)
	report, err := Apply(context.Background(), a, m, ApplyOptions{Workers: 4})
	require.NoError(t, err)
	return a, report
}

func TestApply_Scene(t *testing.T) {
	ctx := context.Background()
	a, report := applyFile(t, "scene.yaml")

	assert.Len(t, report.Results, 14)
	assert.Empty(t, report.Failed())
	assert.Equal(t, map[snakeres.Category]int{
		snakeres.CategoryLayer:       3,
		snakeres.CategoryShader:      2,
		snakeres.CategoryTexture:     2,
		snakeres.CategoryMesh:        2,
		snakeres.CategorySound:       1,
		snakeres.CategoryFont:        1,
		snakeres.CategoryMaterial:    2,
		snakeres.CategorySpriteSheet: 1,
	}, report.Registered())

	assert.Equal(t, []string{"background", "world", "ui"}, a.Layers())

	hero, err := a.Texture("hero")
	require.NoError(t, err)
	assert.Equal(t, snakeres.DefaultTextureSettings(), hero.Settings)

	sheet, err := a.Texture("sheet")
	require.NoError(t, err)
	assert.Equal(t, snakeres.TextureSettings{
		MinFilter: snakeres.FilterNearest,
		MagFilter: snakeres.FilterNearest,
		WrapS:     snakeres.WrapRepeat,
		WrapT:     snakeres.WrapClampToEdge,
	}, sheet.Settings)

	quad, err := a.Mesh("quad")
	require.NoError(t, err)
	assert.Equal(t, 6, quad.DrawCount())

	blip, err := a.Sound("blip")
	require.NoError(t, err)
	assert.True(t, blip.Loop)
	assert.Equal(t, 441, blip.Len())

	ui, err := a.Font("ui")
	require.NoError(t, err)
	assert.Equal(t, 16, ui.PixelSize)
	assert.Len(t, ui.Glyphs, 95)

	walk, err := a.SpriteSheet("walk")
	require.NoError(t, err)
	assert.Equal(t, 8, walk.FrameCount())

	rm, err := a.ResolveMaterial(ctx, "hero")
	require.NoError(t, err)
	require.Len(t, rm.Textures, 2)
	assert.Equal(t, "u_Mask", rm.Textures[0].Uniform)
	assert.Equal(t, snakeres.Vec4Uniform(mgl32.Vec4{1, 0.5, 0.25, 1}), rm.Material.Uniforms["u_Color"])

	ghost, err := a.ResolveMaterial(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, "float", ghost.Shader.Uniforms["u_Alpha"])
}

func TestApply_FormatsProduceIdenticalRegistries(t *testing.T) {
	yamlAssets, _ := applyFile(t, "scene.yaml")
	want := takeSnapshot(t, yamlAssets)

	for _, name := range []string{"scene.json", "scene.hcl"} {
		t.Run(name, func(t *testing.T) {
			a, _ := applyFile(t, name)
			assert.Equal(t, want, takeSnapshot(t, a))
		})
	}
}

func TestApply_StopsAtFirstFailure(t *testing.T) {
	m := &Manifest{
		Textures: []Texture{
			{Tag: "hero", Path: "textures/hero.png"},
			{Tag: "gone", Path: "textures/gone.png"},
		},
		Materials: []Material{{Tag: "hero", Shader: "basic"}},
	}

	a := newAssets(t)
	report, err := Apply(context.Background(), a, m, ApplyOptions{Workers: 1})
	require.Error(t, err)
	assert.Equal(t, reserrors.KindIO, reserrors.KindOf(err))

	require.Len(t, report.Failed(), 1)
	assert.Equal(t, "gone", report.Failed()[0].Tag)
	assert.Empty(t, a.Tags(snakeres.CategoryMaterial), "later phases must not run")
}

func TestApply_FontFailures(t *testing.T) {
	tests := []struct {
		name string
		font Font
		kind reserrors.Kind
	}{
		{"pixel size too large", Font{Tag: "big", Path: "fonts/ui.ttf", PixelSize: 65}, reserrors.KindInvalidArgument},
		{"pixel size too small", Font{Tag: "tiny", Path: "fonts/ui.ttf", PixelSize: 3}, reserrors.KindInvalidArgument},
		{"missing file", Font{Tag: "gone", Path: "fonts/gone.ttf", PixelSize: 16}, reserrors.KindIO},
		{"not a font", Font{Tag: "png", Path: "textures/hero.png", PixelSize: 16}, reserrors.KindDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAssets(t)
			report, err := Apply(context.Background(), a, &Manifest{Fonts: []Font{tt.font}}, ApplyOptions{})
			require.Error(t, err)
			assert.Equal(t, tt.kind, reserrors.KindOf(err))
			require.Len(t, report.Failed(), 1)
			assert.Equal(t, snakeres.CategoryFont, report.Failed()[0].Category)
			assert.Empty(t, a.Tags(snakeres.CategoryFont))
		})
	}
}

func TestApply_ContinueOnError(t *testing.T) {
	m := &Manifest{
		Layers: []string{"world", "world"},
		Textures: []Texture{
			{Tag: "hero", Path: "textures/hero.png"},
			{Tag: "gone", Path: "textures/gone.png"},
			{Tag: "odd", Path: "textures/hero.png", MinFilter: "blurry"},
		},
		Materials:    []Material{{Tag: "hero", Shader: "basic"}},
		SpriteSheets: []SpriteSheet{{Tag: "walk", Texture: "gone", FrameWidth: 8, FrameHeight: 8}},
	}

	a := newAssets(t)
	report, err := Apply(context.Background(), a, m, ApplyOptions{Workers: 2, ContinueOnError: true})
	require.Error(t, err)

	var dup *reserrors.DuplicateTagError
	assert.ErrorAs(t, err, &dup)
	var missing *reserrors.MissingResourceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, `spritesheet "walk"`, missing.Referrer)
	assert.Len(t, report.Failed(), 4)
	assert.Equal(t, []string{"hero"}, a.Tags(snakeres.CategoryTexture))
	assert.Equal(t, []string{"hero"}, a.Tags(snakeres.CategoryMaterial))
}

func TestApply_ConversionFailuresPublishRejections(t *testing.T) {
	bus := event.NewBus(event.DefaultBusConfig)
	defer bus.Close()

	var (
		mu   sync.Mutex
		tags = map[string]string{}
	)
	sub := bus.Subscribe([]string{event.TypeRejected}, event.HandlerFunc(func(_ context.Context, e event.Event) error {
		mu.Lock()
		defer mu.Unlock()
		tags[e.Tag()] = e.Category()
		return nil
	}))
	defer sub.Unsubscribe()

	a := snakeres.New(snakeres.WithLogger(nil), snakeres.WithFileSystem(assetFS(t)), snakeres.WithEventBus(bus))
	t.Cleanup(func() { _ = a.Close() })

	m := &Manifest{
		Shaders:  []Shader{{Tag: "nostage", Sources: []ShaderSource{{Inline: "void main() {}"}}}},
		Textures: []Texture{{Tag: "odd", Path: "textures/hero.png", WrapS: "sideways"}},
		Meshes:   []Mesh{{Tag: "blob", Shape: "blob"}},
		Materials: []Material{{Tag: "frac", Shader: "basic", Uniforms: []Uniform{
			{Name: "u_Frame", Type: "int", Value: []float32{1.7}},
		}}},
	}
	report, err := Apply(context.Background(), a, m, ApplyOptions{ContinueOnError: true})
	require.Error(t, err)
	assert.Len(t, report.Failed(), 4)

	want := map[string]string{
		"nostage": "shader",
		"odd":     "texture",
		"blob":    "mesh",
		"frac":    "material",
	}
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(tags) == len(want)
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, want, tags)
}

func TestApply_Progress(t *testing.T) {
	m, err := Load(filepath.Join("testdata", "scene.hcl"))
	require.NoError(t, err)

	var calls atomic.Int32
	seen := make(map[snakeres.Category]int)
	a := newAssets(t)
	_, err = Apply(context.Background(), a, m, ApplyOptions{
		Workers: 8,
		Progress: func(r Result) {
			calls.Add(1)
			seen[r.Category]++
			assert.NoError(t, r.Err)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(m.Len()), calls.Load())
	assert.Equal(t, 3, seen[snakeres.CategoryLayer])
}

func TestApply_CancelledContext(t *testing.T) {
	m, err := Load(filepath.Join("testdata", "scene.yaml"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newAssets(t)
	_, err = Apply(ctx, a, m, ApplyOptions{Workers: 4})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, a.Tags(snakeres.CategoryShader))
}

func TestApply_Sealed(t *testing.T) {
	a := newAssets(t)
	a.Seal()

	_, err := Apply(context.Background(), a, &Manifest{Layers: []string{"world"}}, ApplyOptions{})
	assert.ErrorIs(t, err, snakeres.ErrSealed)
}
