package snakeres

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	reserrors "github.com/randalmurphal/snakeres/pkg/snakeres/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Pixel sizes accepted by FontParams.
const (
	MinFontPixelSize = 4
	MaxFontPixelSize = 64
)

// Baked runes: printable ASCII.
const (
	firstGlyph rune = 32
	lastGlyph  rune = 126
)

// atlasPadding separates glyphs so linear sampling does not bleed.
const atlasPadding = 1

// Glyph locates one baked character in a font atlas.
type Glyph struct {
	// Size is the bitmap size in pixels.
	Size image.Point
	// Bearing is the offset from the pen position on the baseline to the
	// bitmap's top-left corner, with y pointing up.
	Bearing image.Point
	// Advance moves the pen to the next character, in pixels.
	Advance int
	// UVMin and UVMax bound the bitmap in atlas texture coordinates.
	UVMin mgl32.Vec2
	UVMax mgl32.Vec2
}

// Font is a rasterised glyph atlas for one pixel size.
type Font struct {
	PixelSize  int
	LineHeight int
	Ascent     int

	// Atlas is single-channel coverage, rows stored bottom-up like Texture.
	Atlas  *Texture
	Glyphs map[rune]Glyph
}

// Glyph returns the glyph for r, falling back to '?' for runes that were
// not baked. ok is false only when neither is available.
func (f *Font) Glyph(r rune) (Glyph, bool) {
	if g, ok := f.Glyphs[r]; ok {
		return g, true
	}
	g, ok := f.Glyphs['?']
	return g, ok
}

// TextSize returns the width of the widest line and the height of all
// lines of text, in pixels.
func (f *Font) TextSize(text string) mgl32.Vec2 {
	var widest int
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		w := 0
		for _, r := range line {
			g, _ := f.Glyph(r)
			w += g.Advance
		}
		widest = max(widest, w)
	}
	return mgl32.Vec2{float32(widest), float32(len(lines) * f.LineHeight)}
}

// FontParams rasterises a TrueType or OpenType font at PixelSize.
type FontParams struct {
	Path      string
	PixelSize int
}

func (p FontParams) adopted() bool { return false }

func (p FontParams) build(ctx context.Context, a *Assets, category, tag string) (*Font, error) {
	if p.Path == "" {
		return nil, &reserrors.InvalidArgumentError{Category: category, Tag: tag, Field: "path", Message: "must not be empty"}
	}
	if p.PixelSize < MinFontPixelSize || p.PixelSize > MaxFontPixelSize {
		return nil, &reserrors.InvalidArgumentError{
			Category: category,
			Tag:      tag,
			Field:    "pixel_size",
			Message:  fmt.Sprintf("%d is outside [%d, %d]", p.PixelSize, MinFontPixelSize, MaxFontPixelSize),
		}
	}

	data, err := a.readFile(ctx, category, tag, p.Path)
	if err != nil {
		return nil, err
	}

	f, err := BakeFont(data, p.PixelSize)
	if err != nil {
		return nil, &reserrors.DecodeError{Category: category, Tag: tag, Path: p.Path, Err: err}
	}
	a.logLoad(category, p.Path, len(data), false)
	return f, nil
}

type bakedGlyph struct {
	r       rune
	bmp     *image.Alpha
	bearing image.Point
	advance int
}

// BakeFont parses font data and rasterises printable ASCII into an atlas.
func BakeFont(data []byte, pixelSize int) (*Font, error) {
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	// At 72 DPI one point is one pixel.
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(pixelSize),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	defer face.Close()

	var (
		baked  []bakedGlyph
		width  int
		height int
	)
	for r := firstGlyph; r <= lastGlyph; r++ {
		dr, mask, maskp, advance, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		// The face reuses its mask buffer between calls.
		bmp := image.NewAlpha(image.Rect(0, 0, dr.Dx(), dr.Dy()))
		if mask != nil && !dr.Empty() {
			draw.Draw(bmp, bmp.Bounds(), mask, maskp, draw.Src)
		}
		baked = append(baked, bakedGlyph{
			r:       r,
			bmp:     bmp,
			bearing: image.Point{X: dr.Min.X, Y: -dr.Min.Y},
			advance: advance.Round(),
		})
		if width > 0 {
			width += atlasPadding
		}
		width += dr.Dx()
		height = max(height, dr.Dy())
	}
	if len(baked) == 0 {
		return nil, errors.New("font has no printable ASCII glyphs")
	}
	width = max(width, 1)
	height = max(height, 1)

	atlas := image.NewAlpha(image.Rect(0, 0, width, height))
	glyphs := make(map[rune]Glyph, len(baked))
	x := 0
	for _, b := range baked {
		size := b.bmp.Bounds().Size()
		draw.Draw(atlas, image.Rect(x, 0, x+size.X, size.Y), b.bmp, image.Point{}, draw.Src)
		// Glyphs sit on the top rows, which are v = 1 once flipped.
		glyphs[b.r] = Glyph{
			Size:    size,
			Bearing: b.bearing,
			Advance: b.advance,
			UVMin:   mgl32.Vec2{float32(x) / float32(width), 1 - float32(size.Y)/float32(height)},
			UVMax:   mgl32.Vec2{float32(x+size.X) / float32(width), 1},
		}
		x += size.X + atlasPadding
	}

	metrics := face.Metrics()
	return &Font{
		PixelSize:  pixelSize,
		LineHeight: metrics.Height.Ceil(),
		Ascent:     metrics.Ascent.Ceil(),
		Atlas: &Texture{
			Width:    width,
			Height:   height,
			Channels: 1,
			Pixels:   flipRows(atlas.Pix, atlas.Stride, height),
			Settings: TextureSettings{
				MinFilter: FilterLinear,
				MagFilter: FilterLinear,
				WrapS:     WrapClampToEdge,
				WrapT:     WrapClampToEdge,
			},
			MipLevels: 1,
		},
		Glyphs: glyphs,
	}, nil
}
