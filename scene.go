package strata

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// SceneNode is a node whose payload is its component collection.
type SceneNode = Node[*Components]

// GraphEventType identifies a structural change to a SceneGraph.
type GraphEventType uint8

const (
	NodeAdded GraphEventType = iota
	NodeRemoved
	NodeRenamed
	NodeDuplicated
)

func (t GraphEventType) String() string {
	switch t {
	case NodeAdded:
		return "NodeAdded"
	case NodeRemoved:
		return "NodeRemoved"
	case NodeRenamed:
		return "NodeRenamed"
	case NodeDuplicated:
		return "NodeDuplicated"
	}
	return "GraphEventType(" + strconv.Itoa(int(t)) + ")"
}

// GraphEvent describes one structural change. OldName is set for renames
// and SourceID for duplicates.
type GraphEvent struct {
	Type     GraphEventType
	NodeID   uint32
	ParentID uint32
	Name     string
	OldName  string
	SourceID uint32
}

// EventSink is the interface for optional external mirroring of the graph,
// such as an ECS world. When set on a SceneGraph, structural changes are
// forwarded to it.
type EventSink interface {
	EmitEvent(event GraphEvent)
}

// SceneGraph owns a tree of SceneNodes with graph-wide unique names and a
// base transform pushed before the root is visited.
type SceneGraph struct {
	root  *SceneNode
	names map[string]*SceneNode
	base  *Transform
	sink  EventSink
	log   *zap.Logger
	debug bool
}

// NewSceneGraph creates a graph with a root node named "root". log may be nil.
func NewSceneGraph(log *zap.Logger) *SceneGraph {
	if log == nil {
		log = zap.NewNop()
	}
	g := &SceneGraph{
		names: make(map[string]*SceneNode),
		base:  NewTransform(),
		log:   log,
	}
	g.root = g.newNode("root")
	g.names["root"] = g.root
	return g
}

// Root returns the root node.
func (g *SceneGraph) Root() *SceneNode { return g.root }

// Base returns the transform pushed before the root, typically the view.
func (g *SceneGraph) Base() *Transform { return g.base }

// Len returns the number of nodes including the root.
func (g *SceneGraph) Len() int { return len(g.names) }

// SetEventSink sets the receiver of structural change events. nil disables.
func (g *SceneGraph) SetEventSink(sink EventSink) { g.sink = sink }

// SetDebugMode enables tree depth and fan-out warnings on AddNode.
func (g *SceneGraph) SetDebugMode(enabled bool) { g.debug = enabled }

// newNode creates a node whose hooks apply and unapply its components.
func (g *SceneGraph) newNode(name string) *SceneNode {
	cs := NewComponents()
	cs.graph = g
	n := NewNode(name, cs)
	cs.owner = n
	n.PreVisit = func(n *SceneNode, rc *RenderContext) { n.Payload.Apply(rc) }
	n.PostVisit = func(n *SceneNode, rc *RenderContext) { n.Payload.Unapply(rc) }
	return n
}

// contains reports whether n is a live node of this graph. A node detached
// directly through Node.RemoveChild is no longer live, though its name stays
// reserved until it is reattached or renamed.
func (g *SceneGraph) contains(n *SceneNode) bool {
	return n != nil && g.names[n.Name] == n && n.Root() == g.root
}

// --- Mutation ---

// AddNode creates a node named name under parent (the root when nil). An
// empty name is replaced by a generated one. A name already in the graph
// logs a warning and returns ErrDuplicateName.
func (g *SceneGraph) AddNode(parent *SceneNode, name string) (*SceneNode, error) {
	if parent == nil {
		parent = g.root
	}
	if !g.contains(parent) {
		g.log.Warn("scene: parent not in graph", zap.String("node", name))
		return nil, fmt.Errorf("add node %q: parent: %w", name, ErrNodeNotFound)
	}
	if name == "" {
		name = g.uniqueName("node")
	}
	if _, ok := g.names[name]; ok {
		g.log.Warn("scene: duplicate node name", zap.String("node", name))
		return nil, fmt.Errorf("add node %q: %w", name, ErrDuplicateName)
	}
	n := g.newNode(name)
	g.names[name] = n
	parent.AddChild(n)
	if g.debug {
		debugCheckTreeDepth(g.log, n)
		debugCheckChildCount(g.log, parent)
	}
	g.emit(GraphEvent{Type: NodeAdded, NodeID: n.ID, ParentID: parent.ID, Name: name})
	return n, nil
}

// AddNodeTo is AddNode with the parent looked up by name.
func (g *SceneGraph) AddNodeTo(parentName, name string) (*SceneNode, error) {
	parent, ok := g.names[parentName]
	if !ok {
		g.log.Warn("scene: parent not found", zap.String("parent", parentName))
		return nil, fmt.Errorf("add node %q to %q: %w", name, parentName, ErrNodeNotFound)
	}
	return g.AddNode(parent, name)
}

// RemoveNode detaches n and disposes its subtree and every component in it.
// The root cannot be removed.
func (g *SceneGraph) RemoveNode(n *SceneNode) error {
	if n == g.root {
		return fmt.Errorf("remove node: %w", ErrRootNode)
	}
	if !g.contains(n) {
		g.log.Warn("scene: remove of unknown node")
		return fmt.Errorf("remove node: %w", ErrNodeNotFound)
	}
	parentID := n.Parent.ID
	n.RemoveFromParent()
	var removed []*SceneNode
	n.Walk(func(c *SceneNode) bool {
		removed = append(removed, c)
		return true
	})
	for _, c := range removed {
		delete(g.names, c.Name)
		c.Payload.Dispose()
	}
	n.Dispose()
	for _, c := range removed {
		g.emit(GraphEvent{Type: NodeRemoved, NodeID: c.ID, ParentID: parentID, Name: c.Name})
	}
	return nil
}

// RenameNode changes n's name. Renaming to a name in use returns
// ErrDuplicateName.
func (g *SceneGraph) RenameNode(n *SceneNode, name string) error {
	if !g.contains(n) {
		return fmt.Errorf("rename node to %q: %w", name, ErrNodeNotFound)
	}
	if n.Name == name {
		return nil
	}
	if _, ok := g.names[name]; ok || name == "" {
		g.log.Warn("scene: rename to duplicate or empty name", zap.String("from", n.Name), zap.String("to", name))
		return fmt.Errorf("rename node %q to %q: %w", n.Name, name, ErrDuplicateName)
	}
	old := n.Name
	delete(g.names, old)
	n.Name = name
	g.names[name] = n
	g.emit(GraphEvent{Type: NodeRenamed, NodeID: n.ID, Name: name, OldName: old})
	return nil
}

// DuplicateNode deep-copies n's subtree as a new sibling named name.
// Components implementing Cloner are copied; others are left off. Names of
// copied descendants get a numeric suffix to stay unique. The sink receives
// NodeDuplicated for the copy and NodeAdded for each copied descendant.
func (g *SceneGraph) DuplicateNode(n *SceneNode, name string) (*SceneNode, error) {
	if n == g.root {
		return nil, fmt.Errorf("duplicate node: %w", ErrRootNode)
	}
	if !g.contains(n) {
		g.log.Warn("scene: duplicate of unknown node")
		return nil, fmt.Errorf("duplicate node: %w", ErrNodeNotFound)
	}
	if name == "" {
		name = g.uniqueName(n.Name)
	}
	if _, ok := g.names[name]; ok {
		g.log.Warn("scene: duplicate node name", zap.String("node", name))
		return nil, fmt.Errorf("duplicate node %q as %q: %w", n.Name, name, ErrDuplicateName)
	}
	dup, err := g.copySubtree(n, name)
	if err != nil {
		return nil, err
	}
	n.Parent.AddChild(dup)
	g.emit(GraphEvent{Type: NodeDuplicated, NodeID: dup.ID, ParentID: n.Parent.ID, Name: name, SourceID: n.ID})
	dup.Walk(func(c *SceneNode) bool {
		if c != dup {
			g.emit(GraphEvent{Type: NodeAdded, NodeID: c.ID, ParentID: c.Parent.ID, Name: c.Name})
		}
		return true
	})
	return dup, nil
}

func (g *SceneGraph) copySubtree(src *SceneNode, name string) (*SceneNode, error) {
	dst := g.newNode(name)
	dst.Enabled = src.Enabled
	g.names[name] = dst
	for _, c := range src.Payload.order {
		cl, ok := c.(Cloner)
		if !ok {
			continue
		}
		if err := dst.Payload.AddNamed(c.Name(), cl.CloneComponent()); err != nil {
			return nil, fmt.Errorf("duplicate node %q: %w", src.Name, err)
		}
	}
	for _, child := range src.children {
		cc, err := g.copySubtree(child, g.uniqueName(child.Name))
		if err != nil {
			return nil, err
		}
		dst.AddChild(cc)
	}
	return dst, nil
}

// uniqueName returns base with the smallest numeric suffix not in use.
func (g *SceneGraph) uniqueName(base string) string {
	for i := 1; ; i++ {
		name := base + "_" + strconv.Itoa(i)
		if _, ok := g.names[name]; !ok {
			return name
		}
	}
}

// --- Query ---

// Find returns the node named name.
func (g *SceneGraph) Find(name string) (*SceneNode, bool) {
	n, ok := g.names[name]
	return n, ok
}

// --- Drawing ---

// Draw pushes the base transform, visits the tree from the root and pops.
func (g *SceneGraph) Draw(rc *RenderContext) {
	rc.Transforms.Push(g.base)
	g.root.Visit(rc)
	rc.Transforms.Pop()
}

// DrawSubtree visits only n's subtree. The transforms of n's ancestors are
// pushed first so world transforms match a full Draw; their other
// components are not applied.
func (g *SceneGraph) DrawSubtree(rc *RenderContext, n *SceneNode) {
	if !g.contains(n) {
		g.log.Warn("scene: draw of unknown subtree")
		return
	}
	rc.Transforms.PushMatrix(ancestorProduct(n))
	n.Visit(rc)
	rc.Transforms.Pop()
}

func (g *SceneGraph) emit(ev GraphEvent) {
	if g.sink != nil {
		g.sink.EmitEvent(ev)
	}
}
