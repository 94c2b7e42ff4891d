package manifest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/randalmurphal/snakeres/pkg/snakeres"
	"golang.org/x/sync/errgroup"
)

// ApplyOptions configures Apply.
type ApplyOptions struct {
	// Workers bounds concurrent registrations within a phase.
	// Zero or less runs entries one at a time.
	Workers int

	// ContinueOnError registers every entry and joins all failures instead
	// of stopping at the first.
	ContinueOnError bool

	// Progress is called once per finished entry. Calls are serialised.
	Progress func(Result)
}

// Result is the outcome of one manifest entry.
type Result struct {
	Category snakeres.Category
	Tag      string
	Err      error
	Elapsed  time.Duration
}

// Report collects the results of an Apply call in completion order.
type Report struct {
	Results []Result
}

// Registered returns the number of successful entries per category.
func (r *Report) Registered() map[snakeres.Category]int {
	counts := make(map[snakeres.Category]int)
	for _, res := range r.Results {
		if res.Err == nil {
			counts[res.Category]++
		}
	}
	return counts
}

// Failed returns the results that ended with an error.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

type task struct {
	category snakeres.Category
	tag      string
	run      func(context.Context) error
}

// Apply registers every entry of m with a, phase by phase in the order of
// snakeres.Categories: layers, shaders, textures, meshes, sounds, fonts,
// materials, sprite sheets. Layers register sequentially so their IDs follow manifest
// order; entries of the other phases run concurrently up to Workers.
//
// Without ContinueOnError the first failure cancels the remaining entries of
// its phase, skips later phases and is returned. The report is always
// returned, covering every entry that ran.
func Apply(ctx context.Context, a *snakeres.Assets, m *Manifest, opts ApplyOptions) (*Report, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	ap := &applier{opts: opts, report: &Report{Results: make([]Result, 0, m.Len())}}
	start := time.Now()

	for _, phase := range phases(a, m) {
		if err := ctx.Err(); err != nil {
			ap.logDone(a, start)
			return ap.report, err
		}
		limit := workers
		if phase.category == snakeres.CategoryLayer {
			limit = 1
		}
		if err := ap.runPhase(ctx, phase.tasks, limit); err != nil {
			ap.logDone(a, start)
			return ap.report, err
		}
	}

	ap.logDone(a, start)
	return ap.report, errors.Join(ap.errs...)
}

type applier struct {
	opts   ApplyOptions
	mu     sync.Mutex
	report *Report
	errs   []error
}

func (ap *applier) runPhase(ctx context.Context, tasks []task, limit int) error {
	if ap.opts.ContinueOnError {
		var g errgroup.Group
		g.SetLimit(limit)
		for _, t := range tasks {
			g.Go(func() error {
				ap.run(ctx, t)
				return nil
			})
		}
		return g.Wait()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, t := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return ap.run(gctx, t)
		})
	}
	return g.Wait()
}

func (ap *applier) run(ctx context.Context, t task) error {
	start := time.Now()
	err := t.run(ctx)
	res := Result{Category: t.category, Tag: t.tag, Err: err, Elapsed: time.Since(start)}

	ap.mu.Lock()
	defer ap.mu.Unlock()
	ap.report.Results = append(ap.report.Results, res)
	if err != nil {
		ap.errs = append(ap.errs, err)
	}
	if ap.opts.Progress != nil {
		ap.opts.Progress(res)
	}
	return err
}

func (ap *applier) logDone(a *snakeres.Assets, start time.Time) {
	logger := a.Logger()
	if logger == nil {
		return
	}
	ap.mu.Lock()
	defer ap.mu.Unlock()
	logger.Info("manifest applied",
		"entries", len(ap.report.Results),
		"failed", len(ap.errs),
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
	)
}

type phase struct {
	category snakeres.Category
	tasks    []task
}

// phases converts the manifest into one task list per category. Conversion
// errors surface as failing tasks and go through Assets.Reject, so they are
// logged, counted and published like any other rejection.
func phases(a *snakeres.Assets, m *Manifest) []phase {
	out := make([]phase, 0, len(snakeres.Categories))
	add := func(c snakeres.Category, tasks []task) {
		if len(tasks) > 0 {
			out = append(out, phase{category: c, tasks: tasks})
		}
	}

	var layers []task
	for _, name := range m.Layers {
		layers = append(layers, task{snakeres.CategoryLayer, name, func(context.Context) error {
			_, err := a.RegisterRenderLayer(name)
			return err
		}})
	}
	add(snakeres.CategoryLayer, layers)

	var shaders []task
	for _, s := range m.Shaders {
		shaders = append(shaders, task{snakeres.CategoryShader, s.Tag, func(ctx context.Context) error {
			p, err := s.Params()
			if err != nil {
				return a.Reject(ctx, snakeres.CategoryShader, s.Tag, err)
			}
			return a.RegisterShader(ctx, s.Tag, p)
		}})
	}
	add(snakeres.CategoryShader, shaders)

	var textures []task
	defaults := a.TextureDefaults()
	for _, t := range m.Textures {
		textures = append(textures, task{snakeres.CategoryTexture, t.Tag, func(ctx context.Context) error {
			p, err := t.Params(defaults)
			if err != nil {
				return a.Reject(ctx, snakeres.CategoryTexture, t.Tag, err)
			}
			return a.RegisterTexture(ctx, t.Tag, p)
		}})
	}
	add(snakeres.CategoryTexture, textures)

	var meshes []task
	for _, mesh := range m.Meshes {
		meshes = append(meshes, task{snakeres.CategoryMesh, mesh.Tag, func(ctx context.Context) error {
			p, err := mesh.Params()
			if err != nil {
				return a.Reject(ctx, snakeres.CategoryMesh, mesh.Tag, err)
			}
			return a.RegisterMesh(ctx, mesh.Tag, p)
		}})
	}
	add(snakeres.CategoryMesh, meshes)

	var sounds []task
	for _, s := range m.Sounds {
		sounds = append(sounds, task{snakeres.CategorySound, s.Tag, func(ctx context.Context) error {
			return a.RegisterSound(ctx, s.Tag, s.Params())
		}})
	}
	add(snakeres.CategorySound, sounds)

	var fonts []task
	for _, f := range m.Fonts {
		fonts = append(fonts, task{snakeres.CategoryFont, f.Tag, func(ctx context.Context) error {
			return a.RegisterFont(ctx, f.Tag, f.Params())
		}})
	}
	add(snakeres.CategoryFont, fonts)

	var materials []task
	for _, mat := range m.Materials {
		materials = append(materials, task{snakeres.CategoryMaterial, mat.Tag, func(ctx context.Context) error {
			p, err := mat.Params()
			if err != nil {
				return a.Reject(ctx, snakeres.CategoryMaterial, mat.Tag, err)
			}
			return a.RegisterMaterial(ctx, mat.Tag, p)
		}})
	}
	add(snakeres.CategoryMaterial, materials)

	var sheets []task
	for _, s := range m.SpriteSheets {
		sheets = append(sheets, task{snakeres.CategorySpriteSheet, s.Tag, func(ctx context.Context) error {
			return a.RegisterSpriteSheet(ctx, s.Tag, s.Params())
		}})
	}
	add(snakeres.CategorySpriteSheet, sheets)

	return out
}
