package snakeres

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	reserrors "github.com/randalmurphal/snakeres/pkg/snakeres/errors"
)

// SpriteSheet slices a texture into a grid of equally sized frames.
// Frame 0 is the top-left cell; frames advance left to right, then down.
type SpriteSheet struct {
	TextureTag    string
	TextureWidth  int
	TextureHeight int
	FrameWidth    int
	FrameHeight   int
	Columns       int
	Rows          int
}

// FrameCount returns the number of whole frames in the grid.
func (s *SpriteSheet) FrameCount() int {
	return s.Columns * s.Rows
}

// UVOffset returns the bottom-left texture coordinate of a frame.
// Frame indices wrap around FrameCount.
func (s *SpriteSheet) UVOffset(frame int) mgl32.Vec2 {
	n := s.FrameCount()
	if n == 0 {
		return mgl32.Vec2{}
	}
	frame %= n
	if frame < 0 {
		frame += n
	}

	col := frame % s.Columns
	row := frame / s.Columns
	// Texture rows are stored bottom-up.
	flipped := s.Rows - 1 - row
	return mgl32.Vec2{
		float32(col*s.FrameWidth) / float32(s.TextureWidth),
		float32(flipped*s.FrameHeight) / float32(s.TextureHeight),
	}
}

// UVScale returns the size of one frame in texture coordinates.
func (s *SpriteSheet) UVScale() mgl32.Vec2 {
	return mgl32.Vec2{
		float32(s.FrameWidth) / float32(s.TextureWidth),
		float32(s.FrameHeight) / float32(s.TextureHeight),
	}
}

// SpriteSheetParams builds a SpriteSheet over an already registered texture.
type SpriteSheetParams struct {
	TextureTag  string
	FrameWidth  int
	FrameHeight int
}

func (p SpriteSheetParams) adopted() bool { return false }

func (p SpriteSheetParams) build(_ context.Context, a *Assets, category, tag string) (*SpriteSheet, error) {
	invalid := func(field, msg string) error {
		return &reserrors.InvalidArgumentError{Category: category, Tag: tag, Field: field, Message: msg}
	}

	if p.TextureTag == "" {
		return nil, invalid("texture", "must not be empty")
	}
	if p.FrameWidth <= 0 || p.FrameHeight <= 0 {
		return nil, invalid("frame", fmt.Sprintf("size %dx%d must be positive", p.FrameWidth, p.FrameHeight))
	}

	tex, ok := a.textures.Get(p.TextureTag)
	if !ok {
		return nil, &reserrors.MissingResourceError{
			Category: string(CategoryTexture),
			Tag:      p.TextureTag,
			Referrer: fmt.Sprintf("%s %q", category, tag),
		}
	}
	if p.FrameWidth > tex.Width || p.FrameHeight > tex.Height {
		return nil, invalid("frame", fmt.Sprintf("size %dx%d exceeds texture %q (%dx%d)",
			p.FrameWidth, p.FrameHeight, p.TextureTag, tex.Width, tex.Height))
	}

	return &SpriteSheet{
		TextureTag:    p.TextureTag,
		TextureWidth:  tex.Width,
		TextureHeight: tex.Height,
		FrameWidth:    p.FrameWidth,
		FrameHeight:   p.FrameHeight,
		Columns:       tex.Width / p.FrameWidth,
		Rows:          tex.Height / p.FrameHeight,
	}, nil
}
