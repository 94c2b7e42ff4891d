package snakeres

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	reserrors "github.com/randalmurphal/snakeres/pkg/snakeres/errors"
	"github.com/randalmurphal/snakeres/pkg/snakeres/event"
	"github.com/randalmurphal/snakeres/pkg/snakeres/observability"
	"github.com/randalmurphal/snakeres/pkg/snakeres/registry"
)

// Category names a resource namespace. Tags are unique within a category.
type Category string

const (
	CategoryMesh        Category = "mesh"
	CategoryShader      Category = "shader"
	CategoryTexture     Category = "texture"
	CategoryMaterial    Category = "material"
	CategorySound       Category = "sound"
	CategorySpriteSheet Category = "spritesheet"
	CategoryFont        Category = "font"
	CategoryLayer       Category = "layer"
)

// Categories lists every category in manifest application order.
var Categories = []Category{
	CategoryLayer,
	CategoryShader,
	CategoryTexture,
	CategoryMesh,
	CategorySound,
	CategoryFont,
	CategoryMaterial,
	CategorySpriteSheet,
}

// Releaser is implemented by resources holding memory or handles that must
// be freed when the Assets is closed.
type Releaser interface {
	Release() error
}

// Assets owns one tag-keyed registry per resource category.
//
// Registration is meant for load phases and may block on file I/O. Lookups
// and resolution never touch the file system. All methods are safe for
// concurrent use.
type Assets struct {
	cfg assetsConfig
	id  string

	meshes    *registry.Registry[*Mesh]
	shaders   *registry.Registry[*Shader]
	textures  *registry.Registry[*Texture]
	materials *registry.Registry[*Material]
	sounds    *registry.Registry[*Sound]
	sheets    *registry.Registry[*SpriteSheet]
	fonts     *registry.Registry[*Font]
	layers    *RenderLayers

	// mu orders Close after in-flight operations.
	mu     sync.RWMutex
	closed bool
	sealed atomic.Bool
}

// New creates an empty Assets.
func New(opts ...Option) *Assets {
	cfg := defaultAssetsConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Assets{
		cfg:       cfg,
		id:        uuid.New().String(),
		meshes:    registry.New[*Mesh](string(CategoryMesh)),
		shaders:   registry.New[*Shader](string(CategoryShader)),
		textures:  registry.New[*Texture](string(CategoryTexture)),
		materials: registry.New[*Material](string(CategoryMaterial)),
		sounds:    registry.New[*Sound](string(CategorySound)),
		sheets:    registry.New[*SpriteSheet](string(CategorySpriteSheet)),
		fonts:     registry.New[*Font](string(CategoryFont)),
		layers:    newRenderLayers(),
	}
}

// ID returns the session identifier used as the source of published events.
func (a *Assets) ID() string {
	return a.id
}

// Logger returns the configured logger, which may be nil.
func (a *Assets) Logger() *slog.Logger {
	return a.cfg.logger
}

// TextureDefaults returns the settings applied to TextureParams without Settings.
func (a *Assets) TextureDefaults() TextureSettings {
	return a.cfg.textureDefaults
}

// RegisterMesh stores a mesh built from MeshParams or adopted with Adopt.
func (a *Assets) RegisterMesh(ctx context.Context, tag string, src Source[*Mesh]) error {
	return register(ctx, a, a.meshes, tag, src)
}

// RegisterShader stores a shader compiled from ShaderParams or adopted with Adopt.
func (a *Assets) RegisterShader(ctx context.Context, tag string, src Source[*Shader]) error {
	return register(ctx, a, a.shaders, tag, src)
}

// RegisterTexture stores a texture loaded from TextureParams or adopted with Adopt.
func (a *Assets) RegisterTexture(ctx context.Context, tag string, src Source[*Texture]) error {
	return register(ctx, a, a.textures, tag, src)
}

// RegisterMaterial stores a material. Shader and texture references are not
// checked until the material is resolved.
func (a *Assets) RegisterMaterial(ctx context.Context, tag string, src Source[*Material]) error {
	return register(ctx, a, a.materials, tag, src)
}

// RegisterSound stores a sound decoded from SoundParams or adopted with Adopt.
func (a *Assets) RegisterSound(ctx context.Context, tag string, src Source[*Sound]) error {
	return register(ctx, a, a.sounds, tag, src)
}

// RegisterSpriteSheet stores a sprite sheet. Its texture must already be registered.
func (a *Assets) RegisterSpriteSheet(ctx context.Context, tag string, src Source[*SpriteSheet]) error {
	return register(ctx, a, a.sheets, tag, src)
}

// RegisterFont stores a font rasterised from FontParams or adopted with Adopt.
func (a *Assets) RegisterFont(ctx context.Context, tag string, src Source[*Font]) error {
	return register(ctx, a, a.fonts, tag, src)
}

// register runs the shared registration pipeline: lifecycle and tag checks,
// construction, atomic insert, then logging, metrics, tracing and events.
// A failed registration leaves the table unchanged.
func register[T any](ctx context.Context, a *Assets, reg *registry.Registry[T], tag string, src Source[T]) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrClosed
	}
	if a.sealed.Load() {
		return ErrSealed
	}

	category := reg.Category()
	ctx, span := a.cfg.spans.StartRegisterSpan(ctx, category, tag)
	start := time.Now()

	err := func() error {
		if tag == "" {
			return &reserrors.InvalidArgumentError{Category: category, Tag: tag, Field: "tag", Message: "must not be empty"}
		}
		if src == nil {
			return &reserrors.InvalidArgumentError{Category: category, Tag: tag, Field: "source", Message: "must not be nil"}
		}
		if reg.Has(tag) {
			return &reserrors.DuplicateTagError{Category: category, Tag: tag}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		v, err := src.build(ctx, a, category, tag)
		if err != nil {
			return err
		}
		if err := reg.Insert(tag, v); err != nil {
			// Lost a race with a concurrent registration of the same tag.
			release(v)
			return &reserrors.DuplicateTagError{Category: category, Tag: tag, Err: err}
		}
		return nil
	}()

	duration := time.Since(start)
	a.cfg.metrics.RecordRegistration(ctx, category, duration, err)
	a.cfg.spans.EndSpanWithError(span, err)

	if err != nil {
		a.rejected(ctx, category, tag, err)
		return err
	}

	durationMs := float64(duration.Microseconds()) / 1000
	observability.LogRegistered(a.cfg.logger, category, tag, durationMs)
	a.publish(ctx, event.New(event.TypeRegistered, a.id, category, tag, event.Registered{
		DurationMs: durationMs,
		Adopted:    src.adopted(),
	}))
	return nil
}

// Reject reports a registration that failed before it reached a Register*
// call, such as a declaration that could not be turned into parameters.
// The failure is counted, logged and published like any other rejection.
// Reject returns err.
func (a *Assets) Reject(ctx context.Context, c Category, tag string, err error) error {
	if err == nil {
		return nil
	}
	a.cfg.metrics.RecordRegistration(ctx, string(c), 0, err)
	a.rejected(ctx, string(c), tag, err)
	return err
}

// rejected logs and publishes a failed registration.
func (a *Assets) rejected(ctx context.Context, category, tag string, err error) {
	observability.LogRejected(a.cfg.logger, category, tag, err, reserrors.IsDuplicate(err))
	a.publish(ctx, event.New(event.TypeRejected, a.id, category, tag, event.Rejected{
		Kind:  reserrors.KindOf(err).String(),
		Error: err.Error(),
	}))
}

// Mesh returns the mesh registered under tag.
func (a *Assets) Mesh(tag string) (*Mesh, error) {
	return lookup(a, a.meshes, tag)
}

// Shader returns the shader registered under tag.
func (a *Assets) Shader(tag string) (*Shader, error) {
	return lookup(a, a.shaders, tag)
}

// Texture returns the texture registered under tag.
func (a *Assets) Texture(tag string) (*Texture, error) {
	return lookup(a, a.textures, tag)
}

// Material returns the material registered under tag, unresolved.
func (a *Assets) Material(tag string) (*Material, error) {
	return lookup(a, a.materials, tag)
}

// Sound returns the sound registered under tag.
func (a *Assets) Sound(tag string) (*Sound, error) {
	return lookup(a, a.sounds, tag)
}

// SpriteSheet returns the sprite sheet registered under tag.
func (a *Assets) SpriteSheet(tag string) (*SpriteSheet, error) {
	return lookup(a, a.sheets, tag)
}

// Font returns the font registered under tag.
func (a *Assets) Font(tag string) (*Font, error) {
	return lookup(a, a.fonts, tag)
}

func lookup[V any](a *Assets, reg *registry.Registry[V], tag string) (V, error) {
	var zero V

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return zero, ErrClosed
	}

	v, ok := reg.Get(tag)
	if !ok {
		return zero, &reserrors.MissingResourceError{Category: reg.Category(), Tag: tag}
	}
	return v, nil
}

// Tags returns the sorted tags registered in a category.
func (a *Assets) Tags(c Category) []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil
	}

	switch c {
	case CategoryMesh:
		return a.meshes.Tags()
	case CategoryShader:
		return a.shaders.Tags()
	case CategoryTexture:
		return a.textures.Tags()
	case CategoryMaterial:
		return a.materials.Tags()
	case CategorySound:
		return a.sounds.Tags()
	case CategorySpriteSheet:
		return a.sheets.Tags()
	case CategoryFont:
		return a.fonts.Tags()
	case CategoryLayer:
		return a.layers.Names()
	}
	return nil
}

// Counts returns the number of entries per category.
func (a *Assets) Counts() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = len(a.Tags(c))
	}
	return counts
}

// Seal ends the load phase. Later Register* calls fail with ErrSealed;
// lookups and resolution keep working.
func (a *Assets) Seal() {
	a.sealed.Store(true)
}

// Sealed reports whether Seal has been called.
func (a *Assets) Sealed() bool {
	return a.sealed.Load()
}

// Close tears down every registry, releasing resources that implement
// Releaser. After Close every operation returns ErrClosed.
// Close is idempotent; release failures are joined into the result.
func (a *Assets) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	var (
		released int
		errs     []error
	)
	drain := func(n int, e []error) {
		released += n
		errs = append(errs, e...)
	}
	drain(releaseAll(a.sheets))
	drain(releaseAll(a.fonts))
	drain(releaseAll(a.materials))
	drain(releaseAll(a.meshes))
	drain(releaseAll(a.shaders))
	drain(releaseAll(a.textures))
	drain(releaseAll(a.sounds))
	a.layers.reset()

	observability.LogClosed(a.cfg.logger, released, len(errs))
	a.publish(context.Background(), event.New(event.TypeClosed, a.id, "", "", event.Closed{
		Released: released,
		Failed:   len(errs),
	}))
	return errors.Join(errs...)
}

// releaseAll drains reg and releases every value implementing Releaser.
func releaseAll[V any](reg *registry.Registry[V]) (int, []error) {
	var errs []error
	entries := reg.Drain()
	for _, e := range entries {
		if err := release(e.Value); err != nil {
			errs = append(errs, &ReleaseError{Category: reg.Category(), Tag: e.Tag, Err: err})
		}
	}
	return len(entries), errs
}

func release(v any) error {
	if r, ok := v.(Releaser); ok && !isNil(v) {
		return r.Release()
	}
	return nil
}

// publish sends evt to the configured bus. Publish failures are logged, not returned.
func (a *Assets) publish(ctx context.Context, evt event.Event) {
	if a.cfg.bus == nil {
		return
	}
	if err := a.cfg.bus.Publish(ctx, evt); err != nil && a.cfg.logger != nil {
		a.cfg.logger.Warn("event publish failed",
			slog.String("type", evt.Type()),
			slog.String("error", err.Error()),
		)
	}
}
