package render

import (
	"fmt"

	"github.com/gogpu/g3d/context"
	"github.com/gogpu/g3d/internal/shaders"
	"github.com/gogpu/g3d/resource"
)

// Effect is a full-screen post-processing pass. The scene is rendered
// into an offscreen texture and the effect redraws it onto the surface.
type Effect interface {
	// Name labels the effect's program for logging and dedup.
	Name() string

	// FragmentSource returns the WGSL fragment stage. It samples the
	// scene texture at binding 1 with the sampler at binding 2 and may
	// read the elapsed time from the uniform block.
	FragmentSource() string
}

// Grayscale converts the scene to Rec. 601 luma.
type Grayscale struct{}

func (Grayscale) Name() string           { return "grayscale" }
func (Grayscale) FragmentSource() string { return shaders.GrayscaleFragment }

// Waves displaces the scene with an animated sinusoidal ripple.
type Waves struct{}

func (Waves) Name() string           { return "waves" }
func (Waves) FragmentSource() string { return shaders.WavesFragment }

// postUniformLayout is the one-field block the post shaders read.
func postUniformLayout() context.UniformLayout {
	return context.UniformLayout{
		Fields: []context.UniformField{
			{Name: "time", Kind: context.UniformFloat, Offset: 0},
		},
		BlockSize: 16,
	}
}

// postPass owns the offscreen scene target and the linked effect
// program. It is rebuilt when the effect changes and its target is
// recreated on resize.
type postPass struct {
	effect  Effect
	program *context.Program
	target  *context.RenderTexture
	targetW uint32
	targetH uint32
}

// prepare links the effect program and sizes the offscreen target to
// the surface.
func (p *postPass) prepare(ctx *context.Context) error {
	if p.program == nil {
		prog, err := ctx.LinkProgram("post_"+p.effect.Name(), shaders.PostVertex, p.effect.FragmentSource(), postUniformLayout())
		if err != nil {
			return fmt.Errorf("render: link effect %s: %w", p.effect.Name(), err)
		}
		p.program = prog
	}

	w, h := ctx.SurfaceSize()
	if p.target != nil && (p.targetW != w || p.targetH != h) {
		ctx.DestroyRenderTexture(p.target)
		p.target = nil
	}
	if p.target == nil {
		t, err := ctx.CreateRenderTexture("post_scene")
		if err != nil {
			return fmt.Errorf("render: effect target: %w", err)
		}
		p.target = t
		p.targetW, p.targetH = w, h
	}
	return nil
}

// apply draws the offscreen scene onto the current pass target through
// the effect program. The caller has already opened the surface pass.
func (p *postPass) apply(ctx *context.Context, set *resource.Set, elapsed float32) error {
	quad, ok := set.Meshes.Get(resource.MeshQuad)
	if !ok {
		return fmt.Errorf("render: quad mesh missing")
	}
	if err := ctx.UseProgram(p.program); err != nil {
		return err
	}
	if err := ctx.SetUniformFloat("time", elapsed); err != nil {
		return err
	}
	if err := quad.Bind(ctx); err != nil {
		return err
	}
	ctx.BindVertexBuffer(context.SlotNormal, nil)
	ctx.BindVertexBuffer(context.SlotUV, nil)
	ctx.BindTexture(p.target.View(), nil)
	ctx.SetTopology(context.Triangles)
	ctx.SetDepthTest(false)
	ctx.SetCullBack(false)
	return ctx.DrawIndexed(quad.IndexCount())
}

func (p *postPass) destroy(ctx *context.Context) {
	if p.target != nil {
		ctx.DestroyRenderTexture(p.target)
		p.target = nil
	}
}
