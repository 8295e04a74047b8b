// Package g3d provides a minimal retained-mode 3D scene-graph engine for Go.
//
// # Overview
//
// g3d lets a caller build and mutate a tree of transformable, drawable nodes
// and have it rendered every frame without manual graphics-API bookkeeping.
// Rendering goes through a command-buffer GPU backend (gogpu/wgpu HAL); the
// engine's context layer presents a familiar bind-then-draw surface on top of
// it, compiling immutable pipeline objects behind the scenes.
//
// # Quick Start
//
//	import "github.com/gogpu/g3d"
//
//	eng, err := g3d.New(provider, surface, nil)
//	if err != nil { ... }
//	defer eng.Close()
//
//	cube, err := eng.Root().AddCube(1, 1, 1)
//	if err != nil { ... }
//	cube.Object().SetColor(1, 0, 0, 1)
//	cube.SetPosition(mgl32.Vec3{0, 0.5, 0})
//
//	cam := camera.NewArcBall(mgl32.Vec3{3, 3, 3}, mgl32.Vec3{0, 0, 0})
//	for running {
//		if err := eng.RenderFrame(cam); err != nil { ... }
//	}
//
// The host application owns the window and the event loop; g3d receives a
// GPU device through a gpucontext provider and a swapchain through the
// context.Surface interface. A blocking native loop and a callback-driven
// browser loop differ only in who calls RenderFrame and how often.
//
// # Architecture
//
// The library is organized into:
//   - context: bind-then-draw emulation over the HAL command-buffer backend
//   - resource: deduplicating, reference-counted GPU resource managers
//   - scene: transform hierarchy and drawable objects
//   - camera: ArcBall and FirstPerson cameras over a common interface
//   - render: per-frame orchestration, lighting, post-processing
package g3d
