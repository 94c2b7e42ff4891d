package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/randalmurphal/snakeres/pkg/snakeres"
	"github.com/randalmurphal/snakeres/pkg/snakeres/cache"
	"github.com/randalmurphal/snakeres/pkg/snakeres/config"
	"github.com/randalmurphal/snakeres/pkg/snakeres/manifest"
	"github.com/schollz/progressbar/v3"
)

// loadFlags are shared by the commands that apply a manifest.
type loadFlags struct {
	configPath string
	root       string
	cachePath  string
	workers    int
	logLevel   string
	quiet      bool
}

func (f *loadFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "Engine settings file (.yaml or .json).")
	fs.StringVar(&f.root, "root", "", "Asset root directory. Defaults to the manifest's directory.")
	fs.StringVar(&f.cachePath, "cache", "", "SQLite decode cache path. Empty disables the cache.")
	fs.IntVar(&f.workers, "workers", 0, "Concurrent loads per category. Defaults to the configured value.")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error.")
	fs.BoolVar(&f.quiet, "quiet", false, "Hide the progress bar.")
}

// env is an Assets opened from flags and settings.
type env struct {
	assets   *snakeres.Assets
	store    cache.Store
	settings config.Settings
}

func (e *env) Close() error {
	err := e.assets.Close()
	if e.store != nil {
		err = errors.Join(err, e.store.Close())
	}
	return err
}

func openEnv(f loadFlags, manifestPath string, errOut io.Writer) (*env, error) {
	settings := config.DefaultSettings()
	settings.AssetRoot = filepath.Dir(manifestPath)
	settings.LogLevel = slog.LevelWarn
	if f.configPath != "" {
		loaded, err := config.LoadSettings(f.configPath, settings)
		if err != nil {
			return nil, &ExitError{Code: 2, Message: err.Error()}
		}
		settings = loaded
	}

	if f.root != "" {
		settings.AssetRoot = f.root
	}
	if f.cachePath != "" {
		settings.CachePath = f.cachePath
	}
	if f.workers > 0 {
		settings.Workers = f.workers
	}
	if f.logLevel != "" {
		settings.LogLevel = config.ParseLogLevel(f.logLevel, settings.LogLevel)
	}

	opts, err := snakeres.OptionsFromSettings(settings)
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	opts = append(opts, snakeres.WithLogger(slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{
		Level: settings.LogLevel,
	}))))

	e := &env{settings: settings}
	if settings.CachePath != "" {
		store, err := cache.NewSQLiteStore(settings.CachePath)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		e.store = store
		opts = append(opts, snakeres.WithCache(store))
	}
	e.assets = snakeres.New(opts...)
	return e, nil
}

// applyManifest loads path into a fresh env, drawing a progress bar on errOut.
func applyManifest(ctx context.Context, f loadFlags, path string, errOut io.Writer, keepGoing bool) (*env, *manifest.Report, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, nil, &ExitError{Code: 1, Message: err.Error()}
	}

	e, err := openEnv(f, path, errOut)
	if err != nil {
		return nil, nil, err
	}

	opts := manifest.ApplyOptions{Workers: e.settings.Workers, ContinueOnError: keepGoing}
	var bar *progressbar.ProgressBar
	if !f.quiet && m.Len() > 0 {
		bar = progressbar.NewOptions(m.Len(),
			progressbar.OptionSetWriter(errOut),
			progressbar.OptionSetDescription("registering"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		opts.Progress = func(manifest.Result) { _ = bar.Add(1) }
	}

	report, err := manifest.Apply(ctx, e.assets, m, opts)
	if bar != nil {
		_ = bar.Finish()
	}
	return e, report, err
}

func parseFlags(fs *flag.FlagSet, args []string) (done bool, err error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return true, nil
		}
		return false, &ExitError{Code: 2, Message: err.Error()}
	}
	return false, nil
}

func manifestArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		fs.Usage()
		return "", &ExitError{Code: 2, Message: fmt.Sprintf("%s needs exactly one MANIFEST argument", fs.Name())}
	}
	return fs.Arg(0), nil
}

// runValidate applies a manifest, resolves every material and reports all
// problems found.
func runValidate(out, errOut io.Writer, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var lf loadFlags
	lf.register(fs)
	failFast := fs.Bool("fail-fast", false, "Stop at the first failing entry.")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	path, err := manifestArg(fs)
	if err != nil {
		return err
	}

	ctx := context.Background()
	e, report, applyErr := applyManifest(ctx, lf, path, errOut, !*failFast)
	if e == nil {
		return applyErr
	}
	defer e.Close()

	var problems []string
	for _, r := range report.Failed() {
		problems = append(problems, r.Err.Error())
	}
	for _, tag := range e.assets.Tags(snakeres.CategoryMaterial) {
		if _, err := e.assets.ResolveMaterial(ctx, tag); err != nil {
			problems = append(problems, err.Error())
		}
	}

	printSummary(out, report)
	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintf(out, "error: %s\n", p)
		}
		return &ExitError{Code: 1, Message: fmt.Sprintf("%s: %d problem(s)", path, len(problems))}
	}
	fmt.Fprintf(out, "%s: ok\n", path)
	return nil
}

func printSummary(out io.Writer, report *manifest.Report) {
	registered := report.Registered()
	failed := make(map[snakeres.Category]int)
	for _, r := range report.Failed() {
		failed[r.Category]++
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tREGISTERED\tFAILED")
	for _, c := range snakeres.Categories {
		if registered[c] == 0 && failed[c] == 0 {
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\n", c, registered[c], failed[c])
	}
	_ = w.Flush()
}

// runInspect applies a manifest and prints every registered resource.
func runInspect(out, errOut io.Writer, args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var lf loadFlags
	lf.register(fs)
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	path, err := manifestArg(fs)
	if err != nil {
		return err
	}

	e, _, err := applyManifest(context.Background(), lf, path, errOut, false)
	if e == nil {
		return err
	}
	defer e.Close()
	if err != nil {
		return &ExitError{Code: 1, Message: err.Error()}
	}

	printInventory(out, e.assets)
	return nil
}

func printInventory(out io.Writer, a *snakeres.Assets) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer w.Flush()

	section := func(c snakeres.Category, n int) bool {
		if n == 0 {
			return false
		}
		fmt.Fprintf(w, "%s (%d)\n", c, n)
		return true
	}

	if layers := a.Layers(); section(snakeres.CategoryLayer, len(layers)) {
		for id, name := range layers {
			fmt.Fprintf(w, "  %d\t%s\n", id, name)
		}
	}

	if tags := a.Tags(snakeres.CategoryShader); section(snakeres.CategoryShader, len(tags)) {
		for _, tag := range tags {
			s, err := a.Shader(tag)
			if err != nil {
				continue
			}
			stages := make([]string, 0, len(s.Stages))
			for _, st := range s.Stages {
				stages = append(stages, st.Stage.String())
			}
			fmt.Fprintf(w, "  %s\tstages=%s\tuniforms=%s\tinstancing=%t\n",
				tag, strings.Join(stages, ","), joinPairs(s.Uniforms), s.SupportsInstancing)
		}
	}

	if tags := a.Tags(snakeres.CategoryTexture); section(snakeres.CategoryTexture, len(tags)) {
		for _, tag := range tags {
			t, err := a.Texture(tag)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "  %s\t%dx%d\tfilter=%s/%s\twrap=%s/%s\tmips=%d\n",
				tag, t.Width, t.Height, t.Settings.MinFilter, t.Settings.MagFilter,
				t.Settings.WrapS, t.Settings.WrapT, t.MipLevels)
		}
	}

	if tags := a.Tags(snakeres.CategoryMesh); section(snakeres.CategoryMesh, len(tags)) {
		for _, tag := range tags {
			m, err := a.Mesh(tag)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "  %s\tvertices=%d\tindices=%d\tprimitive=%s\tradius=%.3g\n",
				tag, len(m.Vertices), len(m.Indices), m.Primitive, m.Radius)
		}
	}

	if tags := a.Tags(snakeres.CategorySound); section(snakeres.CategorySound, len(tags)) {
		for _, tag := range tags {
			s, err := a.Sound(tag)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "  %s\tsamples=%d\tduration=%s\tloop=%t\n", tag, s.Len(), s.Duration(), s.Loop)
		}
	}

	if tags := a.Tags(snakeres.CategoryFont); section(snakeres.CategoryFont, len(tags)) {
		for _, tag := range tags {
			f, err := a.Font(tag)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "  %s\tsize=%dpx\tglyphs=%d\tatlas=%dx%d\tline=%d\n",
				tag, f.PixelSize, len(f.Glyphs), f.Atlas.Width, f.Atlas.Height, f.LineHeight)
		}
	}

	if tags := a.Tags(snakeres.CategoryMaterial); section(snakeres.CategoryMaterial, len(tags)) {
		for _, tag := range tags {
			m, err := a.Material(tag)
			if err != nil {
				continue
			}
			uniforms := make(map[string]string, len(m.Uniforms))
			for name, u := range m.Uniforms {
				uniforms[name] = u.Kind.String()
			}
			fmt.Fprintf(w, "  %s\tshader=%s\ttextures=%s\tuniforms=%s\n",
				tag, m.ShaderTag, joinPairs(m.Textures), joinPairs(uniforms))
		}
	}

	if tags := a.Tags(snakeres.CategorySpriteSheet); section(snakeres.CategorySpriteSheet, len(tags)) {
		for _, tag := range tags {
			s, err := a.SpriteSheet(tag)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "  %s\ttexture=%s\tframe=%dx%d\tgrid=%dx%d\n",
				tag, s.TextureTag, s.FrameWidth, s.FrameHeight, s.Columns, s.Rows)
		}
	}
}

// joinPairs renders a map as sorted k:v pairs, or "-" when empty.
func joinPairs(m map[string]string) string {
	if len(m) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		keys[i] = k + ":" + m[k]
	}
	return strings.Join(keys, ",")
}

// runPurge empties the decode cache, or one namespace of it.
func runPurge(out, errOut io.Writer, args []string) error {
	fs := flag.NewFlagSet("purge-cache", flag.ContinueOnError)
	fs.SetOutput(errOut)
	cachePath := fs.String("cache", "", "SQLite decode cache path.")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	if *cachePath == "" || fs.NArg() > 1 {
		fs.Usage()
		return &ExitError{Code: 2, Message: "purge-cache needs -cache and at most one NAMESPACE"}
	}
	namespace := fs.Arg(0)

	store, err := cache.NewSQLiteStore(*cachePath)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	var n int
	if namespace != "" {
		infos, err := store.List(namespace)
		if err != nil {
			return fmt.Errorf("list cache: %w", err)
		}
		n = len(infos)
	}
	if err := store.Purge(namespace); err != nil {
		return fmt.Errorf("purge cache: %w", err)
	}

	if namespace == "" {
		fmt.Fprintf(out, "purged %s\n", *cachePath)
	} else {
		fmt.Fprintf(out, "purged %d %s entries from %s\n", n, namespace, *cachePath)
	}
	return nil
}
