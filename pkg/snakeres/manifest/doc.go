// Package manifest declares resource sets in YAML, JSON or HCL and registers
// them with a snakeres.Assets.
//
// The three formats share one schema. In YAML:
//
//	layers: [background, world, ui]
//	shaders:
//	  - tag: basic
//	    sources:
//	      - path: shaders/basic.vert
//	      - path: shaders/basic.frag
//	textures:
//	  - tag: hero
//	    path: textures/hero.png
//	    min_filter: nearest
//	meshes:
//	  - tag: quad
//	    shape: quad
//	materials:
//	  - tag: hero
//	    shader: basic
//	    textures: {u_Texture: hero}
//	    uniforms:
//	      - {name: u_Color, type: vec4, value: [1, 1, 1, 1]}
//	spritesheets:
//	  - {tag: walk, texture: hero, frame_width: 16, frame_height: 16}
//
// HCL uses one labelled block per entry (shader "basic" { source { ... } })
// and accepts a bare number for single-component uniforms.
//
// Apply registers categories in dependency order and loads the files of each
// category concurrently:
//
//	m, err := manifest.Load("assets.yaml")
//	if err != nil {
//	    return err
//	}
//	report, err := manifest.Apply(ctx, assets, m, manifest.ApplyOptions{Workers: 8})
package manifest
