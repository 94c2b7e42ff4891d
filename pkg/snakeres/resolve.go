package snakeres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	reserrors "github.com/randalmurphal/snakeres/pkg/snakeres/errors"
	"github.com/randalmurphal/snakeres/pkg/snakeres/event"
	"github.com/randalmurphal/snakeres/pkg/snakeres/observability"
)

// TextureUnit is a texture bound to a sampler uniform.
type TextureUnit struct {
	Unit    int
	Uniform string
	Tag     string
	Texture *Texture
}

// ResolvedMaterial is a material with every reference looked up, ready to bind.
type ResolvedMaterial struct {
	Tag      string
	Material *Material
	Shader   *Shader
	Textures []TextureUnit

	// Undeclared lists bound uniforms the shader does not declare.
	// Binding skips them.
	Undeclared []string
}

// BatchKey groups draw calls that can share one instanced submission.
type BatchKey struct {
	Mesh     string
	Material string
}

// DrawCall is everything needed to submit one draw.
type DrawCall struct {
	Mesh     *Mesh
	Material *ResolvedMaterial
	Key      BatchKey

	// Fallback is set when the requested material could not be resolved
	// and the configured fallback material was used instead.
	Fallback bool
}

// Instanced reports whether the draw can be batched with instancing.
func (d DrawCall) Instanced() bool {
	return d.Material != nil && d.Material.Shader.SupportsInstancing
}

// ResolveMaterial looks up a material's shader and textures. Texture units
// are assigned 0..n-1 in sampler-name order. A missing reference fails with
// *reserrors.MissingResourceError naming the material as referrer.
func (a *Assets) ResolveMaterial(ctx context.Context, tag string) (*ResolvedMaterial, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, ErrClosed
	}
	return a.resolveMaterial(ctx, tag)
}

// resolveMaterial requires a.mu to be read-locked.
func (a *Assets) resolveMaterial(ctx context.Context, tag string) (*ResolvedMaterial, error) {
	ctx, span := a.cfg.spans.StartResolveSpan(ctx, string(CategoryMaterial), tag)

	rm, err := a.lookupMaterialRefs(tag)
	a.cfg.spans.EndSpanWithError(span, err)
	if err != nil {
		a.reportMissing(ctx, err)
		return nil, err
	}

	if len(rm.Undeclared) > 0 && a.cfg.logger != nil {
		a.cfg.logger.Warn("material binds uniforms the shader does not declare",
			slog.String("material", tag),
			slog.String("shader", rm.Material.ShaderTag),
			slog.Any("uniforms", rm.Undeclared),
		)
	}
	return rm, nil
}

func (a *Assets) lookupMaterialRefs(tag string) (*ResolvedMaterial, error) {
	mat, ok := a.materials.Get(tag)
	if !ok {
		return nil, &reserrors.MissingResourceError{Category: string(CategoryMaterial), Tag: tag}
	}
	referrer := fmt.Sprintf("%s %q", CategoryMaterial, tag)

	sh, ok := a.shaders.Get(mat.ShaderTag)
	if !ok {
		return nil, &reserrors.MissingResourceError{Category: string(CategoryShader), Tag: mat.ShaderTag, Referrer: referrer}
	}

	rm := &ResolvedMaterial{Tag: tag, Material: mat, Shader: sh}
	for unit, name := range mat.SamplerNames() {
		texTag := mat.Textures[name]
		tex, ok := a.textures.Get(texTag)
		if !ok {
			return nil, &reserrors.MissingResourceError{Category: string(CategoryTexture), Tag: texTag, Referrer: referrer}
		}
		rm.Textures = append(rm.Textures, TextureUnit{Unit: unit, Uniform: name, Tag: texTag, Texture: tex})
		if _, ok := sh.UniformType(name); !ok {
			rm.Undeclared = append(rm.Undeclared, name)
		}
	}
	for name := range mat.Uniforms {
		if _, ok := sh.UniformType(name); !ok {
			rm.Undeclared = append(rm.Undeclared, name)
		}
	}
	sort.Strings(rm.Undeclared)
	return rm, nil
}

// FontSampler is the sampler uniform the text shader reads glyph coverage from.
const FontSampler = "u_FontTexture"

// ResolvedFont pairs a font with the text material bound to its atlas.
type ResolvedFont struct {
	Font     *Font
	Material *ResolvedMaterial
}

// ResolveFont resolves the BuiltinTextMaterial and binds the font's atlas
// to FontSampler. A missing text material or shader fails with
// *reserrors.MissingResourceError naming the font as referrer.
func (a *Assets) ResolveFont(ctx context.Context, tag string) (*ResolvedFont, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, ErrClosed
	}

	ctx, span := a.cfg.spans.StartResolveSpan(ctx, string(CategoryFont), tag)
	rf, err := a.lookupFontRefs(tag)
	a.cfg.spans.EndSpanWithError(span, err)
	if err != nil {
		a.reportMissing(ctx, err)
		return nil, err
	}
	return rf, nil
}

func (a *Assets) lookupFontRefs(tag string) (*ResolvedFont, error) {
	f, ok := a.fonts.Get(tag)
	if !ok {
		return nil, &reserrors.MissingResourceError{Category: string(CategoryFont), Tag: tag}
	}

	rm, err := a.lookupMaterialRefs(BuiltinTextMaterial)
	if err != nil {
		var missing *reserrors.MissingResourceError
		if errors.As(err, &missing) && missing.Referrer == "" {
			missing.Referrer = fmt.Sprintf("%s %q", CategoryFont, tag)
		}
		return nil, err
	}

	unit := TextureUnit{Unit: len(rm.Textures), Uniform: FontSampler, Tag: tag, Texture: f.Atlas}
	bound := false
	for i, tu := range rm.Textures {
		if tu.Uniform == FontSampler {
			unit.Unit = tu.Unit
			rm.Textures[i] = unit
			bound = true
		}
	}
	if !bound {
		rm.Textures = append(rm.Textures, unit)
		if _, ok := rm.Shader.UniformType(FontSampler); !ok {
			rm.Undeclared = append(rm.Undeclared, FontSampler)
			sort.Strings(rm.Undeclared)
		}
	}
	return &ResolvedFont{Font: f, Material: rm}, nil
}

// reportMissing logs, counts and publishes a failed resolution.
func (a *Assets) reportMissing(ctx context.Context, err error) {
	var missing *reserrors.MissingResourceError
	if !errors.As(err, &missing) {
		return
	}
	observability.LogMissing(a.cfg.logger, missing.Category, missing.Tag, missing.Referrer)
	a.cfg.metrics.RecordResolveMiss(ctx, missing.Category)
	a.publish(ctx, event.New(event.TypeMissing, a.id, missing.Category, missing.Tag, event.Missing{
		Referrer: missing.Referrer,
	}))
}

// ResolveDraw resolves a mesh and material pair into a DrawCall. When the
// material has a missing reference and a fallback material is configured,
// the fallback is resolved instead. Missing meshes are never substituted.
func (a *Assets) ResolveDraw(ctx context.Context, meshTag, materialTag string) (DrawCall, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return DrawCall{}, ErrClosed
	}

	mesh, ok := a.meshes.Get(meshTag)
	if !ok {
		err := &reserrors.MissingResourceError{Category: string(CategoryMesh), Tag: meshTag}
		a.reportMissing(ctx, err)
		return DrawCall{}, err
	}

	rm, err := a.resolveMaterial(ctx, materialTag)
	if err == nil {
		return DrawCall{Mesh: mesh, Material: rm, Key: BatchKey{Mesh: meshTag, Material: materialTag}}, nil
	}

	fallback := a.cfg.fallback
	if fallback == "" || fallback == materialTag || !reserrors.IsMissing(err) {
		return DrawCall{}, err
	}

	observability.LogFallback(a.cfg.logger, materialTag, fallback, err)
	fb, fbErr := a.resolveMaterial(ctx, fallback)
	if fbErr != nil {
		return DrawCall{}, errors.Join(err, fbErr)
	}
	return DrawCall{
		Mesh:     mesh,
		Material: fb,
		Key:      BatchKey{Mesh: meshTag, Material: fallback},
		Fallback: true,
	}, nil
}
