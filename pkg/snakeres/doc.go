/*
Package snakeres provides tag-keyed registries for the meshes, shaders,
textures, materials, sounds, sprite sheets and render layers of a 2D engine.

# Overview

Game code registers resources during a load phase and refers to them by
string tag afterwards. Each category has its own namespace, so a mesh and a
texture may share a tag. Registering a tag that is already taken fails with a
DuplicateTagError and leaves the existing entry untouched.

Materials hold weak references: the shader and texture tags they name are
checked when the material is resolved, not when it is registered. This lets
manifests declare materials before the textures they use.

# Basic Usage

	assets := snakeres.New(
	    snakeres.WithFileSystem(os.DirFS("assets")),
	    snakeres.WithFallbackMaterial("error"),
	)
	defer assets.Close()

	err := assets.RegisterTexture(ctx, "player", snakeres.TextureParams{Path: "player.png"})
	if err != nil {
	    log.Fatal(err)
	}

	err = assets.RegisterShader(ctx, "basic", snakeres.ShaderParams{Sources: []snakeres.StageSource{
	    {Stage: snakeres.StageVertex, Path: "shaders/basic.vert"},
	    {Stage: snakeres.StageFragment, Path: "shaders/basic.frag"},
	}})
	if err != nil {
	    log.Fatal(err)
	}

	err = assets.RegisterMaterial(ctx, "player", snakeres.MaterialParams{
	    ShaderTag:       "basic",
	    TextureBindings: map[string]string{"u_Texture": "player"},
	})

# Pre-built Resources

Every Register* call accepts either construction parameters or a value
wrapped with Adopt:

	mesh := buildTerrain()
	err := assets.RegisterMesh(ctx, "terrain", snakeres.Adopt(mesh))

# Draw Time

ResolveDraw looks up a mesh and a material with its shader and textures.
Texture units are assigned in sampler name order. When a material has a
missing reference and WithFallbackMaterial is set, the fallback is drawn and
DrawCall.Fallback reports it:

	dc, err := assets.ResolveDraw(ctx, "quad", "player")
	if err != nil {
	    return err
	}
	batches[dc.Key] = append(batches[dc.Key], transform)

Lookups and resolution never read files.

# Lifecycle

Seal ends the load phase; later registrations fail with ErrSealed. Close
releases every resource that implements Releaser and makes every further
call return ErrClosed.

# Observability

Registrations and resolution misses are logged through slog, recorded as
OpenTelemetry metrics and spans, and published on an optional event.Bus:

	bus := event.NewBus(event.DefaultBusConfig)
	bus.SubscribeAll(event.HandlerFunc(func(ctx context.Context, e event.Event) error {
	    log.Println(e.Type(), e.Category(), e.Tag())
	    return nil
	}))

	assets := snakeres.New(
	    snakeres.WithMetrics(observability.NewMetricsRecorder()),
	    snakeres.WithSpanManager(observability.NewSpanManager()),
	    snakeres.WithEventBus(bus),
	)

# Manifests

Package manifest declares whole resource sets in YAML, JSON or HCL and
applies them concurrently.
*/
package snakeres
