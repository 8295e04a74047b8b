package resource

import (
	"fmt"
	"image"

	"github.com/gogpu/g3d/context"
	"github.com/gogpu/g3d/internal/shaders"
)

// Built-in mesh keys pre-registered by NewSet.
const (
	MeshCube     = "cube"
	MeshSphere   = "sphere"
	MeshCone     = "cone"
	MeshCylinder = "cylinder"
	MeshQuad     = "quad"
)

// Built-in material keys pre-registered by NewSet.
const (
	MaterialObject    = "object"
	MaterialInstanced = "object_instanced"
	MaterialFlat      = "flat"
)

// Set bundles the four managers an engine needs, all sharing one
// context. NewSet pre-registers the procedural primitives and the
// built-in materials; those permanent entries hold one reference each
// and live until Close.
type Set struct {
	ctx *context.Context

	Meshes       *Manager[*Mesh]
	Materials    *Manager[*Material]
	Textures     *Manager[*Texture]
	Framebuffers *Manager[*Framebuffer]
}

// NewSet creates the managers and uploads the built-in assets.
func NewSet(ctx *context.Context) (*Set, error) {
	s := &Set{
		ctx: ctx,
		Meshes: NewManager(func(m *Mesh) {
			m.Destroy(ctx)
		}),
		// Materials share shader modules owned by the context, nothing
		// to finalize per material.
		Materials: NewManager[*Material](nil),
		Textures: NewManager(func(t *Texture) {
			t.Destroy(ctx)
		}),
		Framebuffers: NewManager(func(f *Framebuffer) {
			f.Destroy(ctx)
		}),
	}

	prims := []struct {
		key  string
		data *MeshData
	}{
		{MeshCube, CubeMesh()},
		{MeshSphere, SphereMesh()},
		{MeshCone, ConeMesh()},
		{MeshCylinder, CylinderMesh()},
		{MeshQuad, QuadMesh()},
	}
	for _, p := range prims {
		p := p
		if _, err := s.Meshes.GetOrCreate(p.key, func() (*Mesh, error) {
			return UploadMesh(ctx, p.key, p.data)
		}); err != nil {
			s.Close()
			return nil, fmt.Errorf("resource: register %s: %w", p.key, err)
		}
	}

	mats := []struct {
		key      string
		vertex   string
		fragment string
	}{
		{MaterialObject, shaders.ObjectVertex, shaders.ObjectFragment},
		{MaterialInstanced, shaders.InstancedVertex, shaders.InstancedFragment},
		{MaterialFlat, shaders.FlatVertex, shaders.FlatFragment},
	}
	for _, m := range mats {
		m := m
		if _, err := s.Materials.GetOrCreate(m.key, func() (*Material, error) {
			return NewMaterial(ctx, m.key, m.vertex, m.fragment, context.DefaultUniformLayout())
		}); err != nil {
			s.Close()
			return nil, fmt.Errorf("resource: register %s: %w", m.key, err)
		}
	}
	return s, nil
}

// Context returns the context all managed assets belong to.
func (s *Set) Context() *context.Context { return s.ctx }

// LoadMesh registers d under key, or takes a reference on an existing
// registration of the same key.
func (s *Set) LoadMesh(key string, d *MeshData) (*Mesh, error) {
	return s.Meshes.GetOrCreate(key, func() (*Mesh, error) {
		return UploadMesh(s.ctx, key, d)
	})
}

// LoadTexture uploads img under key with a full mip chain.
func (s *Set) LoadTexture(key string, img image.Image) (*Texture, error) {
	return s.Textures.GetOrCreate(key, func() (*Texture, error) {
		return UploadTexture(s.ctx, key, img)
	})
}

// Close destroys every asset in every manager.
func (s *Set) Close() {
	s.Framebuffers.Clear()
	s.Textures.Clear()
	s.Materials.Clear()
	s.Meshes.Clear()
}
