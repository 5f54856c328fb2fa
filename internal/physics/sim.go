package physics

import (
	"fmt"
	"sync"

	"github.com/l1jgo/guestsync/internal/core/ecs"
	"github.com/l1jgo/guestsync/internal/geom"
)

// Sim is an in-memory World. Creation and removal happen on the game loop;
// per-body transform writes may come from any goroutine as long as each body
// has a single writer, which is how guests use it.
type Sim struct {
	mu        sync.Mutex
	world     *ecs.World
	bodies    *ecs.Store[simBody]
	colliders *ecs.Store[simCollider]
}

func NewSim() *Sim {
	w := ecs.NewWorld()
	s := &Sim{
		world:     w,
		bodies:    ecs.NewStore[simBody](),
		colliders: ecs.NewStore[simCollider](),
	}
	w.Register(s.bodies)
	w.Register(s.colliders)
	return s
}

type simBody struct {
	mu      sync.Mutex
	sim     *Sim
	handle  Handle
	kind    BodyKind
	pos     geom.Vec3
	rot     geom.Quat
	awake   bool
	removed bool
}

type simCollider struct {
	handle Handle
	body   *simBody
	desc   ColliderDesc
}

func (s *Sim) CreateRigidBody(desc RigidBodyDesc) (Body, error) {
	if !desc.Translation.Finite() {
		return nil, fmt.Errorf("%w: translation %v", ErrInvalidDesc, desc.Translation)
	}
	rot := desc.Rotation
	if rot == (geom.Quat{}) {
		rot = geom.Identity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.world.CreateEntity()
	b := &simBody{sim: s, handle: id, kind: desc.Kind, pos: desc.Translation, rot: rot, awake: true}
	s.bodies.Set(id, b)
	return b, nil
}

func (s *Sim) CreateCollider(desc ColliderDesc, body Body) (Collider, error) {
	h := desc.HalfExtents
	if !h.Finite() || h.X <= 0 || h.Y <= 0 || h.Z <= 0 {
		return nil, fmt.Errorf("%w: half extents %v", ErrInvalidDesc, h)
	}
	sb, err := s.own(body)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.bodies.Has(sb.handle) {
		return nil, ErrBodyRemoved
	}
	id := s.world.CreateEntity()
	c := &simCollider{handle: id, body: sb, desc: desc}
	s.colliders.Set(id, c)
	return c, nil
}

func (s *Sim) RemoveRigidBody(body Body) error {
	sb, err := s.own(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.world.Destroy(sb.handle) {
		return ErrBodyRemoved
	}
	for _, cid := range s.colliders.Collect(func(c *simCollider) bool { return c.body == sb }) {
		s.world.Destroy(cid)
	}
	sb.mu.Lock()
	sb.removed = true
	sb.mu.Unlock()
	return nil
}

func (s *Sim) own(body Body) (*simBody, error) {
	sb, ok := body.(*simBody)
	if !ok || sb == nil || sb.sim != s {
		return nil, ErrForeignBody
	}
	return sb, nil
}

// Contains reports whether body is still registered.
func (s *Sim) Contains(body Body) bool {
	sb, err := s.own(body)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies.Has(sb.handle)
}

// BodyCount returns the number of live bodies.
func (s *Sim) BodyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies.Len()
}

// CollidersOf returns the descriptors attached to body.
func (s *Sim) CollidersOf(body Body) []ColliderDesc {
	sb, err := s.own(body)
	if err != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ColliderDesc
	s.colliders.Each(func(_ ecs.EntityID, c *simCollider) {
		if c.body == sb {
			out = append(out, c.desc)
		}
	})
	return out
}

func (b *simBody) Handle() Handle { return b.handle }

func (b *simBody) Kind() BodyKind { return b.kind }

func (b *simBody) SetTranslation(p geom.Vec3, wake bool) error {
	if !p.Finite() {
		return fmt.Errorf("%w: translation %v", ErrInvalidDesc, p)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.removed {
		return ErrBodyRemoved
	}
	b.pos = p
	b.wake(wake)
	return nil
}

func (b *simBody) SetRotation(q geom.Quat, wake bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.removed {
		return ErrBodyRemoved
	}
	b.rot = q
	b.wake(wake)
	return nil
}

func (b *simBody) wake(wake bool) {
	if wake {
		b.awake = true
	}
}

func (b *simBody) Translation() geom.Vec3 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pos
}

func (b *simBody) Rotation() geom.Quat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rot
}

func (c *simCollider) Handle() Handle     { return c.handle }
func (c *simCollider) Body() Body         { return c.body }
func (c *simCollider) Desc() ColliderDesc { return c.desc }
