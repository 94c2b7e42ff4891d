package snakeres

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"math/bits"
	"strconv"
	"strings"

	"github.com/randalmurphal/snakeres/pkg/snakeres/cache"
	reserrors "github.com/randalmurphal/snakeres/pkg/snakeres/errors"
	"github.com/randalmurphal/snakeres/pkg/snakeres/observability"
)

// Filter is a texture sampling filter.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
	FilterNearestMipmapNearest
	FilterLinearMipmapNearest
	FilterNearestMipmapLinear
	FilterLinearMipmapLinear
)

var filterNames = [...]string{
	FilterNearest:              "nearest",
	FilterLinear:               "linear",
	FilterNearestMipmapNearest: "nearest_mipmap_nearest",
	FilterLinearMipmapNearest:  "linear_mipmap_nearest",
	FilterNearestMipmapLinear:  "nearest_mipmap_linear",
	FilterLinearMipmapLinear:   "linear_mipmap_linear",
}

func (f Filter) String() string {
	if !f.valid() {
		return fmt.Sprintf("filter(%d)", int(f))
	}
	return filterNames[f]
}

func (f Filter) valid() bool {
	return f >= FilterNearest && f <= FilterLinearMipmapLinear
}

// UsesMipmaps reports whether the filter samples mip levels.
func (f Filter) UsesMipmaps() bool {
	return f >= FilterNearestMipmapNearest && f <= FilterLinearMipmapLinear
}

// ParseFilter converts a filter name.
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range filterNames {
		if name == s {
			return Filter(i), nil
		}
	}
	return 0, fmt.Errorf("unknown filter %q", s)
}

// Wrap is a texture coordinate wrap mode.
type Wrap int

const (
	WrapClampToEdge Wrap = iota
	WrapRepeat
	WrapMirroredRepeat
	WrapClampToBorder
)

var wrapNames = [...]string{
	WrapClampToEdge:    "clamp_to_edge",
	WrapRepeat:         "repeat",
	WrapMirroredRepeat: "mirrored_repeat",
	WrapClampToBorder:  "clamp_to_border",
}

func (w Wrap) String() string {
	if !w.valid() {
		return fmt.Sprintf("wrap(%d)", int(w))
	}
	return wrapNames[w]
}

func (w Wrap) valid() bool {
	return w >= WrapClampToEdge && w <= WrapClampToBorder
}

// ParseWrap converts a wrap mode name.
func ParseWrap(s string) (Wrap, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range wrapNames {
		if name == s {
			return Wrap(i), nil
		}
	}
	return 0, fmt.Errorf("unknown wrap mode %q", s)
}

// TextureSettings controls sampling of a texture.
type TextureSettings struct {
	MinFilter      Filter
	MagFilter      Filter
	WrapS          Wrap
	WrapT          Wrap
	GenerateMipmap bool
}

// DefaultTextureSettings returns linear filtering, edge clamping and mipmaps.
func DefaultTextureSettings() TextureSettings {
	return TextureSettings{
		MinFilter:      FilterLinear,
		MagFilter:      FilterLinear,
		WrapS:          WrapClampToEdge,
		WrapT:          WrapClampToEdge,
		GenerateMipmap: true,
	}
}

// validate returns the offending field and reason, or "" when valid.
func (s TextureSettings) validate() (field, msg string) {
	switch {
	case !s.MinFilter.valid():
		return "min_filter", fmt.Sprintf("unknown filter %d", int(s.MinFilter))
	case !s.MagFilter.valid():
		return "mag_filter", fmt.Sprintf("unknown filter %d", int(s.MagFilter))
	case !s.WrapS.valid():
		return "wrap_s", fmt.Sprintf("unknown wrap mode %d", int(s.WrapS))
	case !s.WrapT.valid():
		return "wrap_t", fmt.Sprintf("unknown wrap mode %d", int(s.WrapT))
	case s.MagFilter.UsesMipmaps():
		return "mag_filter", fmt.Sprintf("%s is not a magnification filter", s.MagFilter)
	case s.MinFilter.UsesMipmaps() && !s.GenerateMipmap:
		return "min_filter", fmt.Sprintf("%s requires mipmap generation", s.MinFilter)
	}
	return "", ""
}

// Texture is decoded RGBA8 pixel data. Rows are stored bottom-up so row 0 is
// the bottom of the image, matching GL texture coordinates.
type Texture struct {
	Width     int
	Height    int
	Channels  int
	Pixels    []byte
	Settings  TextureSettings
	MipLevels int
}

// NewTexture converts img to bottom-up RGBA8.
func NewTexture(img image.Image, settings TextureSettings) *Texture {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	return &Texture{
		Width:     b.Dx(),
		Height:    b.Dy(),
		Channels:  4,
		Pixels:    flipRows(rgba.Pix, rgba.Stride, b.Dy()),
		Settings:  settings,
		MipLevels: mipLevels(b.Dx(), b.Dy(), settings.GenerateMipmap),
	}
}

// At returns the RGBA value at (x, y) with y counted from the bottom row.
func (t *Texture) At(x, y int) [4]byte {
	off := (y*t.Width + x) * t.Channels
	var px [4]byte
	copy(px[:], t.Pixels[off:off+t.Channels])
	return px
}

func flipRows(pix []byte, stride, height int) []byte {
	out := make([]byte, len(pix))
	for y := 0; y < height; y++ {
		copy(out[y*stride:(y+1)*stride], pix[(height-1-y)*stride:(height-y)*stride])
	}
	return out
}

// mipLevels is floor(log2(max(w, h))) + 1, or 1 without mipmaps.
func mipLevels(w, h int, generate bool) int {
	if !generate || w <= 0 || h <= 0 {
		return 1
	}
	return bits.Len(uint(max(w, h)))
}

// TextureParams loads a PNG, JPEG or GIF image.
// A nil Settings uses the Assets texture defaults.
type TextureParams struct {
	Path     string
	Settings *TextureSettings
}

func (p TextureParams) adopted() bool { return false }

func (p TextureParams) build(ctx context.Context, a *Assets, category, tag string) (*Texture, error) {
	settings := a.cfg.textureDefaults
	if p.Settings != nil {
		settings = *p.Settings
	}
	if field, msg := settings.validate(); field != "" {
		return nil, &reserrors.InvalidArgumentError{Category: category, Tag: tag, Field: field, Message: msg}
	}
	if p.Path == "" {
		return nil, &reserrors.InvalidArgumentError{Category: category, Tag: tag, Field: "path", Message: "must not be empty"}
	}

	data, err := a.readFile(ctx, category, tag, p.Path)
	if err != nil {
		return nil, err
	}

	key := cache.ContentKey(data)
	if tex, ok := a.cachedTexture(ctx, key, settings); ok {
		a.logLoad(category, p.Path, len(data), true)
		return tex, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &reserrors.DecodeError{Category: category, Tag: tag, Path: p.Path, Err: err}
	}
	if img.Bounds().Empty() {
		return nil, &reserrors.DecodeError{Category: category, Tag: tag, Path: p.Path, Err: errors.New("image has no pixels")}
	}

	tex := NewTexture(img, settings)
	a.storeTexture(key, tex)
	a.logLoad(category, p.Path, len(data), false)
	return tex, nil
}

// cachedTexture looks up decoded pixels by content key.
func (a *Assets) cachedTexture(ctx context.Context, key string, settings TextureSettings) (*Texture, bool) {
	if a.cfg.cache == nil {
		return nil, false
	}

	e, err := cache.GetEntry(a.cfg.cache, string(CategoryTexture), key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			observability.LogCacheError(a.cfg.logger, "get", key, err)
		}
		a.cfg.metrics.RecordCacheLookup(ctx, string(CategoryTexture), false)
		return nil, false
	}

	w, errW := strconv.Atoi(e.Attrs["width"])
	h, errH := strconv.Atoi(e.Attrs["height"])
	if errW != nil || errH != nil || w <= 0 || h <= 0 || len(e.Data) != w*h*4 {
		observability.LogCacheError(a.cfg.logger, "get", key, errors.New("corrupt texture entry"))
		a.cfg.metrics.RecordCacheLookup(ctx, string(CategoryTexture), false)
		return nil, false
	}

	a.cfg.metrics.RecordCacheLookup(ctx, string(CategoryTexture), true)
	return &Texture{
		Width:     w,
		Height:    h,
		Channels:  4,
		Pixels:    e.Data,
		Settings:  settings,
		MipLevels: mipLevels(w, h, settings.GenerateMipmap),
	}, true
}

// storeTexture writes decoded pixels to the cache. Failures are logged only.
func (a *Assets) storeTexture(key string, tex *Texture) {
	if a.cfg.cache == nil {
		return
	}
	e := cache.NewEntry(string(CategoryTexture), key, tex.Pixels).
		WithAttr("width", strconv.Itoa(tex.Width)).
		WithAttr("height", strconv.Itoa(tex.Height))
	if err := cache.PutEntry(a.cfg.cache, e); err != nil {
		observability.LogCacheError(a.cfg.logger, "put", key, err)
	}
}
