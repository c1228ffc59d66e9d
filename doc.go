// Package strata is an immediate-mode 3D rendering engine built on state
// stacks.
//
// Rendering state (transforms, the active shader, texture units, material
// properties and the render target) lives in stacks owned by a
// [RenderContext]. A scene is a tree of nodes, each carrying a priority-sorted
// collection of components. Traversal applies a node's components in
// ascending priority, visits the children, then unapplies them in reverse,
// so every push is matched by a pop and nothing leaks between siblings.
//
// # Quick start
//
// The simplest way to get started is [Run], which opens an [Ebitengine]
// window and drives a fixed-step loop:
//
//	cfg := strata.DefaultConfig()
//	strata.Run(cfg.RunConfig(logger), func(rc *strata.RenderContext) (*strata.SceneGraph, error) {
//		g := strata.NewSceneGraph(logger)
//		cube, _ := g.AddNode(g.Root(), "cube")
//		cube.Payload.Add(strata.NewTransformComponent())
//		cube.Payload.Add(strata.NewGeometryComponent(strata.NewCube(1)))
//		return g, nil
//	})
//
// For full control, create a [Device] yourself (for example the OpenGL 4.3
// device in strata/gldevice), build a context with [NewRenderContext] and
// call [RenderFrame] once per frame.
//
// # Components
//
// Components apply in priority order. The built-in bands are:
//
//	PriorityFramebuffer  100  render target
//	PriorityTransform    250  200..299 reserved for transforms
//	PriorityShader       300
//	PriorityTexture      400
//	PriorityMaterial     500
//	PriorityVariable     550
//	PriorityClipPlane    600
//	PriorityLight        700
//	PrioritySkybox       800
//	PriorityGeometry     900  draws last
//
// Components are looked up by type with [Get] and [GetAll], or by name with
// [Components.Named].
//
// # World transforms
//
// [ObservedTransformComponent] caches its world matrix. It subscribes to
// every transform that contributes to it (earlier transforms on the same
// node, transforms of ancestors and the graph base), so a change anywhere
// above marks it dirty and the next read or traversal recomputes it once.
// Cameras and lights follow observed transforms the same way.
//
// # Shader data
//
// Uniforms are fed in four tiers: global blocks registered with the
// [ResourceManager] (the "Camera" and "Lights" blocks among them), providers
// run when a program is bound ([ConfigureUniform]), sampler units
// ([Shader.ConfigureSampler]) and immediate values set during traversal
// ([SetImmediate]).
//
// # Configuration and logging
//
// [LoadConfig] reads a TOML file over [DefaultConfig]. Warnings go to the
// [go.uber.org/zap] logger passed in [ContextConfig]; [NewLogger] builds one
// from the logging section of a config.
//
// # ECS
//
// The strata/ecs module mirrors scene graph events into a [Donburi] world
// through [SceneGraph.SetEventSink].
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package strata
