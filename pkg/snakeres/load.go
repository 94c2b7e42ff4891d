package snakeres

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	reserrors "github.com/randalmurphal/snakeres/pkg/snakeres/errors"
	"github.com/randalmurphal/snakeres/pkg/snakeres/observability"
	"go.opentelemetry.io/otel/attribute"
)

// readFile loads an asset file with the configured retry policy.
// Relative paths resolve against the configured fs.FS; absolute paths are
// read from the OS directly. Failures are *reserrors.IOError.
func (a *Assets) readFile(ctx context.Context, category, tag, p string) ([]byte, error) {
	ctx, span := a.cfg.spans.StartLoadSpan(ctx, category, p)

	res := reserrors.WithRetryContext(ctx, a.cfg.retry, func(ctx context.Context) ([]byte, error) {
		data, err := a.open(p)
		if err != nil {
			return nil, &reserrors.IOError{Category: category, Tag: tag, Path: p, Err: err}
		}
		return data, nil
	})

	err := res.Err
	if err != nil && reserrors.KindOf(err) != reserrors.KindIO {
		// Context cancellation before or between attempts.
		err = &reserrors.IOError{Category: category, Tag: tag, Path: p, Err: err}
	}
	if res.Attempts > 1 {
		a.cfg.spans.AddSpanEvent(ctx, "retried", attribute.Int("attempts", res.Attempts))
	}
	a.cfg.spans.EndSpanWithError(span, err)
	if err != nil {
		return nil, err
	}

	a.cfg.metrics.RecordLoad(ctx, category, int64(len(res.Value)))
	return res.Value, nil
}

func (a *Assets) open(p string) ([]byte, error) {
	if p == "" {
		return nil, fs.ErrInvalid
	}
	if filepath.IsAbs(p) {
		return os.ReadFile(p)
	}
	name := path.Clean(filepath.ToSlash(p))
	name = strings.TrimPrefix(name, "./")
	return fs.ReadFile(a.cfg.fsys, name)
}

// logLoad reports a finished load through the configured logger.
func (a *Assets) logLoad(category, p string, size int, cached bool) {
	observability.LogLoad(a.cfg.logger, category, p, size, cached)
}
