// Package physics defines the narrow rigid-body contract the avatar adapter
// needs, plus Sim, an in-memory world that records bodies and colliders
// without solving anything.
package physics

import (
	"errors"
	"fmt"

	"github.com/l1jgo/guestsync/internal/core/ecs"
	"github.com/l1jgo/guestsync/internal/geom"
)

var (
	ErrBodyRemoved = errors.New("physics: rigid body removed")
	ErrForeignBody = errors.New("physics: body belongs to another world")
	ErrInvalidDesc = errors.New("physics: invalid descriptor")
)

// Handle identifies a body or collider inside its world.
type Handle = ecs.EntityID

// BodyKind mirrors the usual dynamic / kinematic / fixed split.
type BodyKind uint8

const (
	Dynamic BodyKind = iota
	KinematicPosition
	Fixed
)

func (k BodyKind) String() string {
	switch k {
	case Dynamic:
		return "dynamic"
	case KinematicPosition:
		return "kinematic"
	case Fixed:
		return "fixed"
	}
	return fmt.Sprintf("BodyKind(%d)", uint8(k))
}

// RigidBodyDesc describes a body to create.
type RigidBodyDesc struct {
	Kind        BodyKind
	Translation geom.Vec3
	Rotation    geom.Quat
}

// NewDynamic returns a dynamic body descriptor at p with identity rotation.
func NewDynamic(p geom.Vec3) RigidBodyDesc {
	return RigidBodyDesc{Kind: Dynamic, Translation: p, Rotation: geom.Identity}
}

// ColliderDesc describes a box collider by half-extents.
type ColliderDesc struct {
	HalfExtents geom.Vec3
}

// Cuboid returns a box collider descriptor.
func Cuboid(hx, hy, hz float64) ColliderDesc {
	return ColliderDesc{HalfExtents: geom.V3(hx, hy, hz)}
}

// Body is a rigid body handle. Writes after removal fail with ErrBodyRemoved.
type Body interface {
	Handle() Handle
	Kind() BodyKind
	SetTranslation(p geom.Vec3, wake bool) error
	SetRotation(q geom.Quat, wake bool) error
	Translation() geom.Vec3
	Rotation() geom.Quat
}

// Collider is an attached collision shape.
type Collider interface {
	Handle() Handle
	Body() Body
	Desc() ColliderDesc
}

// World creates and removes bodies. Removing a body removes its colliders.
type World interface {
	CreateRigidBody(desc RigidBodyDesc) (Body, error)
	CreateCollider(desc ColliderDesc, body Body) (Collider, error)
	RemoveRigidBody(body Body) error
}
