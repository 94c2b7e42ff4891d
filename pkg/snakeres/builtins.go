package snakeres

import (
	"context"
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	reserrors "github.com/randalmurphal/snakeres/pkg/snakeres/errors"
)

// Tags of the engine's internal resources.
const (
	BuiltinDebugLineShader = "internal_debug_line"
	BuiltinTextShader      = "internal_text"
	BuiltinTextMaterial    = "internal_text"
)

const debugLineVertex = `#version 330 core
layout (location = 0) in vec2 aPos;
layout (location = 1) in vec4 aColor;

uniform mat4 u_View;
uniform mat4 u_Projection;

out vec4 vColor;

void main()
{
    vColor = aColor;
    gl_Position = u_Projection * u_View * vec4(aPos, 0.0, 1.0);
}
`

const debugLineFragment = `#version 330 core
in vec4 vColor;
out vec4 FragColor;

void main()
{
    FragColor = vColor;
}
`

const textVertex = `#version 330 core
layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aUV;

uniform mat4 u_Model;
uniform mat4 u_View;
uniform mat4 u_Projection;

out vec2 v_TexCoord;

void main()
{
    v_TexCoord = aUV;
    gl_Position = u_Projection * u_View * u_Model * vec4(aPos, 0.0, 1.0);
}
`

const textFragment = `#version 330 core
in vec2 v_TexCoord;
out vec4 FragColor;

uniform sampler2D u_FontTexture;
uniform vec4 u_Color;

void main()
{
    float alpha = texture(u_FontTexture, v_TexCoord).r;
    FragColor = vec4(u_Color.rgb, alpha * u_Color.a);
}
`

// RegisterBuiltins registers the debug line and text shaders and the text
// material used by ResolveFont. Entries that are already registered are left
// as they are.
func (a *Assets) RegisterBuiltins(ctx context.Context) error {
	var errs []error
	keep := func(err error) {
		if err != nil && !reserrors.IsDuplicate(err) {
			errs = append(errs, err)
		}
	}

	keep(a.RegisterShader(ctx, BuiltinDebugLineShader, ShaderParams{Sources: []StageSource{
		{Stage: StageVertex, Source: debugLineVertex},
		{Stage: StageFragment, Source: debugLineFragment},
	}}))
	keep(a.RegisterShader(ctx, BuiltinTextShader, ShaderParams{Sources: []StageSource{
		{Stage: StageVertex, Source: textVertex},
		{Stage: StageFragment, Source: textFragment},
	}}))
	keep(a.RegisterMaterial(ctx, BuiltinTextMaterial, MaterialParams{
		ShaderTag: BuiltinTextShader,
		Uniforms: map[string]Uniform{
			"u_Color": Vec4Uniform(mgl32.Vec4{1, 1, 1, 1}),
		},
	}))
	return errors.Join(errs...)
}
