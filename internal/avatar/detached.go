package avatar

import (
	"sync"

	"github.com/l1jgo/guestsync/internal/geom"
	"github.com/l1jgo/guestsync/internal/physics"
	"github.com/l1jgo/guestsync/internal/scene"
)

// detachedNode stands in for a mesh the scene refused. It belongs to no
// scene, so Update can keep writing to it and Despawn has nothing to remove.
type detachedNode struct {
	mu  sync.Mutex
	pos geom.Vec3
}

func newDetachedNode(p geom.Vec3) *detachedNode { return &detachedNode{pos: p} }

func (n *detachedNode) ID() scene.NodeID        { return 0 }
func (n *detachedNode) Name() string            { return "detached" }
func (n *detachedNode) Parent() scene.Node      { return nil }
func (n *detachedNode) Children() []scene.Node  { return nil }
func (n *detachedNode) Add(scene.Node) error    { return scene.ErrDisposed }
func (n *detachedNode) Remove(scene.Node) error { return scene.ErrNotChild }

func (n *detachedNode) SetPosition(p geom.Vec3) error {
	n.mu.Lock()
	n.pos = p
	n.mu.Unlock()
	return nil
}

func (n *detachedNode) Position() geom.Vec3 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pos
}

// detachedBody stands in for a body the physics world refused.
type detachedBody struct {
	mu  sync.Mutex
	pos geom.Vec3
	rot geom.Quat
}

func newDetachedBody(p geom.Vec3) *detachedBody {
	return &detachedBody{pos: p, rot: geom.Identity}
}

func (b *detachedBody) Handle() physics.Handle { return 0 }
func (b *detachedBody) Kind() physics.BodyKind { return physics.Dynamic }

func (b *detachedBody) SetTranslation(p geom.Vec3, _ bool) error {
	b.mu.Lock()
	b.pos = p
	b.mu.Unlock()
	return nil
}

func (b *detachedBody) SetRotation(q geom.Quat, _ bool) error {
	b.mu.Lock()
	b.rot = q
	b.mu.Unlock()
	return nil
}

func (b *detachedBody) Translation() geom.Vec3 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pos
}

func (b *detachedBody) Rotation() geom.Quat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rot
}
