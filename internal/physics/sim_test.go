package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/l1jgo/guestsync/internal/geom"
)

func TestSimBodyLifecycle(t *testing.T) {
	s := NewSim()
	b, err := s.CreateRigidBody(NewDynamic(geom.V3(1, 0, 2)))
	if err != nil {
		t.Fatal(err)
	}
	if b.Kind() != Dynamic {
		t.Errorf("kind = %v", b.Kind())
	}
	if b.Translation() != geom.V3(1, 0, 2) {
		t.Errorf("translation = %v", b.Translation())
	}
	if !b.Rotation().IsIdentity() {
		t.Errorf("rotation = %v", b.Rotation())
	}
	if _, err := s.CreateCollider(Cuboid(0.2, 0.2, 0.2), b); err != nil {
		t.Fatal(err)
	}
	if n := len(s.CollidersOf(b)); n != 1 {
		t.Fatalf("colliders = %d, want 1", n)
	}

	if err := s.RemoveRigidBody(b); err != nil {
		t.Fatal(err)
	}
	if s.Contains(b) || s.BodyCount() != 0 {
		t.Fatal("body still registered after removal")
	}
	if n := len(s.CollidersOf(b)); n != 0 {
		t.Fatalf("colliders survived body removal: %d", n)
	}
	if err := s.RemoveRigidBody(b); !errors.Is(err, ErrBodyRemoved) {
		t.Fatalf("second remove err = %v, want ErrBodyRemoved", err)
	}
	if err := b.SetTranslation(geom.Vec3{}, true); !errors.Is(err, ErrBodyRemoved) {
		t.Fatalf("write after removal err = %v", err)
	}
	if err := b.SetRotation(geom.Identity, true); !errors.Is(err, ErrBodyRemoved) {
		t.Fatalf("rotation after removal err = %v", err)
	}
}

func TestSimRejectsBadDescriptors(t *testing.T) {
	s := NewSim()
	if _, err := s.CreateRigidBody(NewDynamic(geom.V3(math.NaN(), 0, 0))); !errors.Is(err, ErrInvalidDesc) {
		t.Fatalf("NaN body err = %v", err)
	}
	b, _ := s.CreateRigidBody(NewDynamic(geom.Vec3{}))
	if _, err := s.CreateCollider(Cuboid(0, 1, 1), b); !errors.Is(err, ErrInvalidDesc) {
		t.Fatalf("zero extent err = %v", err)
	}
	if err := b.SetTranslation(geom.V3(0, math.Inf(1), 0), true); !errors.Is(err, ErrInvalidDesc) {
		t.Fatalf("inf translation err = %v", err)
	}
}

func TestSimRejectsForeignBodies(t *testing.T) {
	a, other := NewSim(), NewSim()
	b, _ := other.CreateRigidBody(NewDynamic(geom.Vec3{}))
	if err := a.RemoveRigidBody(b); !errors.Is(err, ErrForeignBody) {
		t.Fatalf("err = %v, want ErrForeignBody", err)
	}
	if _, err := a.CreateCollider(Cuboid(1, 1, 1), b); !errors.Is(err, ErrForeignBody) {
		t.Fatalf("err = %v, want ErrForeignBody", err)
	}
	if err := a.RemoveRigidBody(nil); !errors.Is(err, ErrForeignBody) {
		t.Fatalf("nil body err = %v", err)
	}
}

func TestSimZeroRotationNormalizedToIdentity(t *testing.T) {
	s := NewSim()
	b, _ := s.CreateRigidBody(RigidBodyDesc{Kind: KinematicPosition})
	if !b.Rotation().IsIdentity() {
		t.Fatalf("rotation = %v", b.Rotation())
	}
}
