package snakeres

import (
	"io/fs"
	"log/slog"
	"os"

	"github.com/randalmurphal/snakeres/pkg/snakeres/cache"
	reserrors "github.com/randalmurphal/snakeres/pkg/snakeres/errors"
	"github.com/randalmurphal/snakeres/pkg/snakeres/event"
	"github.com/randalmurphal/snakeres/pkg/snakeres/glsl"
	"github.com/randalmurphal/snakeres/pkg/snakeres/observability"
)

// assetsConfig holds the collaborators of an Assets.
type assetsConfig struct {
	logger          *slog.Logger
	metrics         observability.MetricsRecorder
	spans           observability.SpanManager
	cache           cache.Store
	bus             event.Bus
	backend         ShaderBackend
	fsys            fs.FS
	retry           reserrors.RetryConfig
	fallback        string
	textureDefaults TextureSettings
}

func defaultAssetsConfig() assetsConfig {
	return assetsConfig{
		logger:          slog.Default(),
		metrics:         observability.NoopMetrics{},
		spans:           observability.NoopSpanManager{},
		backend:         glsl.NewCompiler(),
		fsys:            os.DirFS("."),
		retry:           reserrors.NoRetry,
		textureDefaults: DefaultTextureSettings(),
	}
}

// Option configures an Assets.
type Option func(*assetsConfig)

// WithLogger sets the structured logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *assetsConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
// Use observability.NewMetricsRecorder() for OpenTelemetry.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *assetsConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpanManager sets the tracing span manager.
// Use observability.NewSpanManager() for OpenTelemetry.
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *assetsConfig) {
		if s != nil {
			c.spans = s
		}
	}
}

// WithCache enables the decoded pixel cache for textures.
// The Assets does not close the store.
func WithCache(store cache.Store) Option {
	return func(c *assetsConfig) {
		c.cache = store
	}
}

// WithEventBus publishes lifecycle events to bus.
// The Assets does not close the bus.
func WithEventBus(bus event.Bus) Option {
	return func(c *assetsConfig) {
		c.bus = bus
	}
}

// WithShaderBackend replaces the default GLSL validator.
func WithShaderBackend(b ShaderBackend) Option {
	return func(c *assetsConfig) {
		if b != nil {
			c.backend = b
		}
	}
}

// WithFileSystem sets the file system relative asset paths resolve against.
// Default: os.DirFS(".").
func WithFileSystem(fsys fs.FS) Option {
	return func(c *assetsConfig) {
		if fsys != nil {
			c.fsys = fsys
		}
	}
}

// WithRetry sets the retry policy for asset file reads.
// Default: reserrors.NoRetry.
func WithRetry(cfg reserrors.RetryConfig) Option {
	return func(c *assetsConfig) {
		c.retry = cfg
	}
}

// WithFallbackMaterial names the material ResolveDraw substitutes when the
// requested material has missing references.
func WithFallbackMaterial(tag string) Option {
	return func(c *assetsConfig) {
		c.fallback = tag
	}
}

// WithTextureDefaults sets the settings used by TextureParams without Settings.
func WithTextureDefaults(s TextureSettings) Option {
	return func(c *assetsConfig) {
		c.textureDefaults = s
	}
}
