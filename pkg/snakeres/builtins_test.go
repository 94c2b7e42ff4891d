package snakeres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterBuiltins(t *testing.T) {
	ctx := context.Background()
	a := newTestAssets(t)
	require.NoError(t, a.RegisterBuiltins(ctx))

	line, err := a.Shader(BuiltinDebugLineShader)
	require.NoError(t, err)
	assert.Equal(t, []string{"aPos", "aColor"}, attributeNames(line))
	_, ok := line.UniformType("u_Projection")
	assert.True(t, ok)

	text, err := a.Shader(BuiltinTextShader)
	require.NoError(t, err)
	typ, ok := text.UniformType("u_FontTexture")
	assert.True(t, ok)
	assert.Equal(t, "sampler2D", typ)

	rm, err := a.ResolveMaterial(ctx, BuiltinTextMaterial)
	require.NoError(t, err)
	assert.Same(t, text, rm.Shader)
	assert.Empty(t, rm.Textures)

	// Registering twice keeps the first set and reports no error.
	require.NoError(t, a.RegisterBuiltins(ctx))
	again, err := a.Shader(BuiltinTextShader)
	require.NoError(t, err)
	assert.Same(t, text, again)
}

func TestRegisterBuiltins_Sealed(t *testing.T) {
	a := newTestAssets(t)
	a.Seal()
	assert.ErrorIs(t, a.RegisterBuiltins(context.Background()), ErrSealed)
}

func attributeNames(s *Shader) []string {
	names := make([]string, 0, len(s.Attributes))
	for _, v := range s.Attributes {
		names = append(names, v.Name)
	}
	return names
}
