package snakeres

import (
	"context"
	"testing"

	reserrors "github.com/randalmurphal/snakeres/pkg/snakeres/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterFont_Bakes(t *testing.T) {
	a := newTestAssets(t)
	require.NoError(t, a.RegisterFont(context.Background(), "ui", FontParams{Path: "fonts/regular.ttf", PixelSize: 16}))

	f, err := a.Font("ui")
	require.NoError(t, err)
	assert.Equal(t, 16, f.PixelSize)
	assert.Positive(t, f.LineHeight)
	assert.Len(t, f.Glyphs, int(lastGlyph-firstGlyph+1))

	atlas := f.Atlas
	require.NotNil(t, atlas)
	assert.Equal(t, 1, atlas.Channels)
	assert.Len(t, atlas.Pixels, atlas.Width*atlas.Height)
	assert.Equal(t, 1, atlas.MipLevels)

	lit := 0
	for _, p := range atlas.Pixels {
		if p > 0 {
			lit++
		}
	}
	assert.Positive(t, lit, "atlas should carry glyph coverage")

	glyph := f.Glyphs['A']
	assert.Positive(t, glyph.Size.X)
	assert.Positive(t, glyph.Size.Y)
	assert.LessOrEqual(t, glyph.Size.Y, atlas.Height)
	assert.Positive(t, glyph.Bearing.Y, "capitals sit above the baseline")
	assert.Positive(t, glyph.Advance)
	assert.Greater(t, glyph.UVMax.X(), glyph.UVMin.X())
	assert.Greater(t, glyph.UVMax.Y(), glyph.UVMin.Y())
	assert.InDelta(t, 1, glyph.UVMax.Y(), 1e-6)
	assert.GreaterOrEqual(t, glyph.UVMin.X(), float32(0))
	assert.LessOrEqual(t, glyph.UVMax.X(), float32(1))

	space := f.Glyphs[' ']
	assert.Zero(t, space.Size.X*space.Size.Y)
	assert.Positive(t, space.Advance)
}

func TestRegisterFont_PixelSizeBounds(t *testing.T) {
	tests := []struct {
		size  int
		valid bool
	}{
		{MinFontPixelSize - 1, false},
		{MinFontPixelSize, true},
		{MaxFontPixelSize, true},
		{MaxFontPixelSize + 1, false},
		{0, false},
	}

	for _, tt := range tests {
		a := newTestAssets(t)
		err := a.RegisterFont(context.Background(), "ui", FontParams{Path: "fonts/regular.ttf", PixelSize: tt.size})
		if tt.valid {
			assert.NoError(t, err, "size %d", tt.size)
			continue
		}
		var invalid *reserrors.InvalidArgumentError
		require.ErrorAs(t, err, &invalid, "size %d", tt.size)
		assert.Equal(t, "pixel_size", invalid.Field)
		assert.Empty(t, a.Tags(CategoryFont))
	}
}

func TestRegisterFont_Errors(t *testing.T) {
	tests := []struct {
		name   string
		params FontParams
		kind   reserrors.Kind
	}{
		{"empty path", FontParams{PixelSize: 16}, reserrors.KindInvalidArgument},
		{"missing file", FontParams{Path: "fonts/absent.ttf", PixelSize: 16}, reserrors.KindIO},
		{"not a font", FontParams{Path: "fonts/broken.ttf", PixelSize: 16}, reserrors.KindDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAssets(t)
			err := a.RegisterFont(context.Background(), "ui", tt.params)
			require.Error(t, err)
			assert.Equal(t, tt.kind, reserrors.KindOf(err))
			assert.Empty(t, a.Tags(CategoryFont))
		})
	}
}

func TestRegisterFont_Adopt(t *testing.T) {
	a := newTestAssets(t)
	f := &Font{PixelSize: 8, Glyphs: map[rune]Glyph{'?': {Advance: 4}}}

	require.NoError(t, a.RegisterFont(context.Background(), "tiny", Adopt(f)))
	got, err := a.Font("tiny")
	require.NoError(t, err)
	assert.Same(t, f, got)

	err = a.RegisterFont(context.Background(), "tiny", FontParams{Path: "fonts/regular.ttf", PixelSize: 8})
	assert.True(t, reserrors.IsDuplicate(err))
}

func TestFont_GlyphFallback(t *testing.T) {
	f := &Font{Glyphs: map[rune]Glyph{
		'?': {Advance: 5},
		'a': {Advance: 7},
	}}

	g, ok := f.Glyph('a')
	assert.True(t, ok)
	assert.Equal(t, 7, g.Advance)

	g, ok = f.Glyph('é')
	assert.True(t, ok)
	assert.Equal(t, 5, g.Advance)

	_, ok = (&Font{Glyphs: map[rune]Glyph{}}).Glyph('x')
	assert.False(t, ok)
}

func TestFont_TextSize(t *testing.T) {
	f := &Font{LineHeight: 10, Glyphs: map[rune]Glyph{
		'?': {Advance: 5},
		'a': {Advance: 7},
		'b': {Advance: 3},
	}}

	tests := []struct {
		text string
		w, h float32
	}{
		{"", 0, 10},
		{"ab", 10, 10},
		{"ab\na", 10, 20},
		{"a\nabb\n", 13, 30},
		{"zz", 10, 10},
	}
	for _, tt := range tests {
		size := f.TextSize(tt.text)
		assert.Equal(t, tt.w, size.X(), "width of %q", tt.text)
		assert.Equal(t, tt.h, size.Y(), "height of %q", tt.text)
	}
}

func TestResolveFont(t *testing.T) {
	ctx := context.Background()
	a := newTestAssets(t)
	require.NoError(t, a.RegisterFont(ctx, "ui", FontParams{Path: "fonts/regular.ttf", PixelSize: 12}))

	_, err := a.ResolveFont(ctx, "ui")
	var missing *reserrors.MissingResourceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "material", missing.Category)
	assert.Equal(t, BuiltinTextMaterial, missing.Tag)
	assert.Equal(t, `font "ui"`, missing.Referrer)

	require.NoError(t, a.RegisterBuiltins(ctx))
	rf, err := a.ResolveFont(ctx, "ui")
	require.NoError(t, err)

	f, err := a.Font("ui")
	require.NoError(t, err)
	assert.Same(t, f, rf.Font)
	assert.Equal(t, BuiltinTextMaterial, rf.Material.Tag)
	require.Len(t, rf.Material.Textures, 1)
	unit := rf.Material.Textures[0]
	assert.Equal(t, 0, unit.Unit)
	assert.Equal(t, FontSampler, unit.Uniform)
	assert.Same(t, f.Atlas, unit.Texture)
	assert.Empty(t, rf.Material.Undeclared)
	assert.Contains(t, rf.Material.Material.Uniforms, "u_Color")

	_, err = a.ResolveFont(ctx, "title")
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "font", missing.Category)
}
