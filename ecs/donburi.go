package ecs

import (
	"github.com/phanxgames/strata"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// GraphEventType is the Donburi event type for scene graph changes.
var GraphEventType = events.NewEventType[strata.GraphEvent]()

// NodeData identifies the scene node an entity mirrors.
type NodeData struct {
	ID       uint32
	ParentID uint32
	Name     string
}

// Node is the component carried by every mirrored entity.
var Node = donburi.NewComponentType[NodeData]()

// DonburiSink is a strata.EventSink backed by a Donburi world.
type DonburiSink struct {
	world    donburi.World
	entities map[uint32]donburi.Entity
}

// NewDonburiSink creates a sink mirroring nodes into world. Nodes added
// before the sink was attached are not mirrored.
func NewDonburiSink(world donburi.World) *DonburiSink {
	return &DonburiSink{world: world, entities: make(map[uint32]donburi.Entity)}
}

// Entity returns the entity mirroring the node with the given id.
func (s *DonburiSink) Entity(nodeID uint32) (donburi.Entity, bool) {
	e, ok := s.entities[nodeID]
	return e, ok && s.world.Valid(e)
}

// Len returns the number of mirrored nodes.
func (s *DonburiSink) Len() int { return len(s.entities) }

func (s *DonburiSink) EmitEvent(event strata.GraphEvent) {
	switch event.Type {
	case strata.NodeAdded, strata.NodeDuplicated:
		e := s.world.Create(Node)
		Node.SetValue(s.world.Entry(e), NodeData{ID: event.NodeID, ParentID: event.ParentID, Name: event.Name})
		s.entities[event.NodeID] = e
	case strata.NodeRemoved:
		if e, ok := s.entities[event.NodeID]; ok {
			if s.world.Valid(e) {
				s.world.Remove(e)
			}
			delete(s.entities, event.NodeID)
		}
	case strata.NodeRenamed:
		if e, ok := s.Entity(event.NodeID); ok {
			Node.Get(s.world.Entry(e)).Name = event.Name
		}
	}
	GraphEventType.Publish(s.world, event)
}
