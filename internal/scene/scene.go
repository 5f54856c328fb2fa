// Package scene is the visual side of a guest: a node hierarchy the renderer
// owns, plus the descriptors used to ask it for meshes and billboard labels.
package scene

import (
	"errors"

	"github.com/l1jgo/guestsync/internal/core/ecs"
	"github.com/l1jgo/guestsync/internal/geom"
)

var (
	ErrDisposed    = errors.New("scene: node disposed")
	ErrNotChild    = errors.New("scene: not a child of this node")
	ErrHasParent   = errors.New("scene: node already has a parent")
	ErrNotInScene  = errors.New("scene: node not in scene")
	ErrForeignNode = errors.New("scene: node belongs to another graph")
	ErrInvalidDesc = errors.New("scene: invalid descriptor")
	ErrAttached    = errors.New("scene: node is attached, remove it instead")
)

// NodeID identifies a node inside its graph.
type NodeID = ecs.EntityID

// Node is a positioned element of the hierarchy.
type Node interface {
	ID() NodeID
	Name() string
	Parent() Node
	Children() []Node
	Add(child Node) error
	Remove(child Node) error
	SetPosition(p geom.Vec3) error
	Position() geom.Vec3
}

// Scene holds top-level nodes.
type Scene interface {
	Add(n Node) error
	Remove(n Node) error
}

// Factory builds renderable nodes. It is the only way the adapter reaches the
// rendering engine, so tests can swap it out.
type Factory interface {
	NewMesh(g Geometry, m Material) (Node, error)
	NewLabel(spec LabelSpec) (Node, error)
	// Dispose frees a node that never made it into the hierarchy, along with
	// any children it holds.
	Dispose(n Node) error
}
