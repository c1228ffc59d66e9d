// Package ecs mirrors a strata scene graph into a [Donburi] world.
//
// [NewDonburiSink] keeps one entity per scene node, carrying a [NodeData]
// component, and republishes every structural change as a typed event.
// Subscribe to [GraphEventType] in your ECS systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	graph.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
