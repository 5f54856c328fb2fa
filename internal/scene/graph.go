package scene

import (
	"fmt"
	"sync"

	"github.com/l1jgo/guestsync/internal/core/ecs"
	"github.com/l1jgo/guestsync/internal/geom"
)

// Kind tells meshes from labels.
type Kind uint8

const (
	KindMesh Kind = iota
	KindLabel
)

// AllLayers is the layer mask of a node visible to every camera.
const AllLayers uint32 = 0xFFFFFFFF

// Graph is an in-memory Scene and Factory. Structure changes (Add/Remove)
// belong to the game loop; SetPosition on distinct nodes may run concurrently.
type Graph struct {
	mu    sync.Mutex
	world *ecs.World
	nodes *ecs.Store[GraphNode]
	roots map[NodeID]struct{}
}

func NewGraph() *Graph {
	w := ecs.NewWorld()
	g := &Graph{
		world: w,
		nodes: ecs.NewStore[GraphNode](),
		roots: make(map[NodeID]struct{}),
	}
	w.Register(g.nodes)
	return g
}

// GraphNode is the node type Graph hands out. Its descriptor fields are
// fixed at creation.
type GraphNode struct {
	graph *Graph
	id    NodeID
	kind  Kind

	Geometry Geometry
	Material Material
	Label    LabelSpec

	mu       sync.Mutex
	pos      geom.Vec3
	layers   uint32
	parent   *GraphNode
	children []*GraphNode
	disposed bool
}

func (g *Graph) newNode(kind Kind) *GraphNode {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.world.CreateEntity()
	n := &GraphNode{graph: g, id: id, kind: kind, layers: AllLayers}
	g.nodes.Set(id, n)
	return n
}

func (g *Graph) NewMesh(geo Geometry, m Material) (Node, error) {
	if geo == nil {
		return nil, fmt.Errorf("%w: nil geometry", ErrInvalidDesc)
	}
	if err := geo.Validate(); err != nil {
		return nil, err
	}
	if _, err := m.RGB(); err != nil {
		return nil, err
	}
	n := g.newNode(KindMesh)
	n.Geometry = geo
	n.Material = m
	return n, nil
}

func (g *Graph) NewLabel(spec LabelSpec) (Node, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	n := g.newNode(KindLabel)
	n.Label = spec
	n.pos = spec.Offset
	n.layers = 1 << uint(spec.Layer)
	return n, nil
}

func (g *Graph) own(n Node) (*GraphNode, error) {
	gn, ok := n.(*GraphNode)
	if !ok || gn == nil || gn.graph != g {
		return nil, ErrForeignNode
	}
	return gn, nil
}

// Add puts n at the top level. Adding a node already in the scene is a no-op.
func (g *Graph) Add(n Node) error {
	gn, err := g.own(n)
	if err != nil {
		return err
	}
	gn.mu.Lock()
	disposed, parented := gn.disposed, gn.parent != nil
	gn.mu.Unlock()
	if disposed {
		return ErrDisposed
	}
	if parented {
		return ErrHasParent
	}
	g.mu.Lock()
	g.roots[gn.id] = struct{}{}
	g.mu.Unlock()
	return nil
}

// Remove detaches n from the top level and disposes it with its subtree.
func (g *Graph) Remove(n Node) error {
	gn, err := g.own(n)
	if err != nil {
		return err
	}
	g.mu.Lock()
	if _, ok := g.roots[gn.id]; !ok {
		g.mu.Unlock()
		return ErrNotInScene
	}
	delete(g.roots, gn.id)
	g.mu.Unlock()
	g.dispose(gn)
	return nil
}

// Dispose frees a detached node and its subtree.
func (g *Graph) Dispose(n Node) error {
	gn, err := g.own(n)
	if err != nil {
		return err
	}
	gn.mu.Lock()
	disposed, parented := gn.disposed, gn.parent != nil
	gn.mu.Unlock()
	if disposed {
		return ErrDisposed
	}
	g.mu.Lock()
	_, rooted := g.roots[gn.id]
	g.mu.Unlock()
	if parented || rooted {
		return ErrAttached
	}
	g.dispose(gn)
	return nil
}

func (g *Graph) dispose(gn *GraphNode) {
	gn.mu.Lock()
	gn.disposed = true
	children := append([]*GraphNode(nil), gn.children...)
	gn.mu.Unlock()
	for _, c := range children {
		g.dispose(c)
	}
	g.mu.Lock()
	g.world.Destroy(gn.id)
	g.mu.Unlock()
}

// Contains reports whether n is currently a top-level node.
func (g *Graph) Contains(n Node) bool {
	gn, err := g.own(n)
	if err != nil {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.roots[gn.id]
	return ok
}

// RootCount returns the number of top-level nodes.
func (g *Graph) RootCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.roots)
}

// NodeCount returns the number of live nodes, attached or not.
func (g *Graph) NodeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nodes.Len()
}

func (n *GraphNode) ID() NodeID { return n.id }

func (n *GraphNode) Kind() Kind { return n.kind }

func (n *GraphNode) Name() string {
	if n.kind == KindLabel {
		return "label:" + n.Label.Text
	}
	if n.Geometry == nil {
		return "mesh"
	}
	return "mesh:" + n.Geometry.String()
}

func (n *GraphNode) Parent() Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *GraphNode) Children() []Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *GraphNode) Add(child Node) error {
	c, err := n.graph.own(child)
	if err != nil {
		return err
	}
	if c == n {
		return fmt.Errorf("%w: node cannot parent itself", ErrInvalidDesc)
	}
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	if c.parent != nil {
		c.mu.Unlock()
		return ErrHasParent
	}
	c.parent = n
	c.mu.Unlock()

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.disposed {
		c.mu.Lock()
		c.parent = nil
		c.mu.Unlock()
		return ErrDisposed
	}
	n.children = append(n.children, c)
	return nil
}

// Remove detaches child and disposes it with its subtree.
func (n *GraphNode) Remove(child Node) error {
	c, err := n.graph.own(child)
	if err != nil {
		return err
	}
	n.mu.Lock()
	idx := -1
	for i, cc := range n.children {
		if cc == c {
			idx = i
			break
		}
	}
	if idx < 0 {
		n.mu.Unlock()
		return ErrNotChild
	}
	n.children = append(n.children[:idx], n.children[idx+1:]...)
	n.mu.Unlock()

	c.mu.Lock()
	c.parent = nil
	c.mu.Unlock()
	n.graph.dispose(c)
	return nil
}

func (n *GraphNode) SetPosition(p geom.Vec3) error {
	if !p.Finite() {
		return fmt.Errorf("%w: position %v", ErrInvalidDesc, p)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.disposed {
		return ErrDisposed
	}
	n.pos = p
	return nil
}

func (n *GraphNode) Position() geom.Vec3 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pos
}

// Layers returns the camera layer mask.
func (n *GraphNode) Layers() uint32 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.layers
}

// Disposed reports whether the node was removed with its scene subtree.
func (n *GraphNode) Disposed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.disposed
}
