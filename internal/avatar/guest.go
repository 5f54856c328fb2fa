// Package avatar keeps one remote participant's local representation in step
// with their replicated state. A Guest owns a mesh (with a name label) in the
// scene and a rigid body in the physics world, and every tick maps the
// replicated position onto both.
//
// Every exported operation is total: failures are logged and absorbed, never
// returned or panicked out to the game loop.
package avatar

import (
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/l1jgo/guestsync/internal/geom"
	"github.com/l1jgo/guestsync/internal/physics"
	"github.com/l1jgo/guestsync/internal/replica"
	"github.com/l1jgo/guestsync/internal/scene"
)

const (
	// DefaultHeight is the standing height used when no position is replicated.
	DefaultHeight = 0.25
	DefaultColor  = "#FFFFFF"
	// MarkerColor paints the degraded box marker.
	MarkerColor = "#FF0000"
)

// DebugPoint replaces the replicated position while debug mode is on.
var DebugPoint = geom.V3(0, 0.25, -0.75)

var (
	capsuleShape = scene.Capsule{Radius: 0.125, Length: 0.25, CapSegments: 10, RadialSegments: 16}
	markerShape  = scene.Box{Width: 0.2, Height: 0.2, Depth: 0.2}
	bodyCollider = physics.Cuboid(0.2, 0.2, 0.2)
	labelOffset  = geom.V3(0, 0.1, 0)
)

// LabelScript rewrites a resolved display name. ok=false keeps the input.
type LabelScript interface {
	LabelFor(name, id string) (label string, ok bool)
}

// Deps are the engines a Guest talks to.
type Deps struct {
	Scene   scene.Scene
	Visuals scene.Factory
	Physics physics.World
	Log     *zap.Logger
	// Labels is optional.
	Labels LabelScript
	// Intn draws placeholder numbers; nil uses math/rand.
	Intn func(n int) int
}

// Option tunes a Guest at spawn.
type Option func(*Guest)

// WithErrorLogEvery logs a repeating tick error only once per n occurrences.
func WithErrorLogEvery(n int) Option {
	return func(g *Guest) {
		if n > 0 {
			g.errLogEvery = n
		}
	}
}

// Guest is the local stand-in for one remote participant.
// Accessed only from one goroutine per tick; never shared between guests.
type Guest struct {
	state  replica.Store
	deps   Deps
	log    *zap.Logger
	id     string
	origin geom.Vec3
	debug  bool

	mesh  scene.Node
	label scene.Node
	body  physics.Body

	labelOnMesh bool
	meshInScene bool
	bodyInWorld bool
	degraded    bool
	despawned   bool

	// seedPending is true while "pos" may still hold the origin written at
	// spawn. The seed tells peers where the guest appeared; it is not an
	// authoritative position, so until it is overwritten it resolves like an
	// absent value.
	seedPending bool
	pos         geom.Vec3

	errLogEvery int
	lastErr     string
	errRepeat   int
}

// Spawn builds the guest's mesh, label and body at origin and seeds the
// replicated position. It always returns a usable Guest: if the full build
// fails, a plain red box marker and a bare body stand in.
func Spawn(state replica.Store, deps Deps, origin geom.Vec3, debug bool, opts ...Option) *Guest {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Intn == nil {
		deps.Intn = rand.Intn
	}
	g := &Guest{
		state:       state,
		deps:        deps,
		origin:      origin,
		debug:       debug,
		pos:         origin,
		errLogEvery: 1,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.id = g.readID()
	g.log = deps.Log.With(zap.String("participant", g.id))

	if err := g.spawnFull(); err != nil {
		g.log.Error("spawn guest failed, using marker", zap.Error(err))
		g.release()
		g.spawnMarker()
	}
	return g
}

func (g *Guest) readID() string {
	var id string
	err := guard("read id", func() error {
		var err error
		id, err = g.state.ID()
		return err
	})
	if err != nil {
		return ""
	}
	return id
}

func (g *Guest) spawnFull() error {
	return guard("spawn", func() error {
		color := g.resolveColor()
		mesh, err := g.deps.Visuals.NewMesh(capsuleShape, scene.Material{Color: color, Roughness: 0.5})
		if err != nil {
			return fmt.Errorf("build mesh: %w", err)
		}
		g.mesh = mesh
		if err := mesh.SetPosition(g.origin); err != nil {
			return fmt.Errorf("place mesh: %w", err)
		}

		label, err := g.buildLabel(color)
		if err != nil {
			return err
		}
		g.label = label
		if err := mesh.Add(label); err != nil {
			return fmt.Errorf("attach label: %w", err)
		}
		g.labelOnMesh = true

		if err := g.deps.Scene.Add(mesh); err != nil {
			return fmt.Errorf("add mesh to scene: %w", err)
		}
		g.meshInScene = true

		if err := replica.WritePosition(g.state, g.origin); err != nil {
			return fmt.Errorf("seed position: %w", err)
		}
		g.seedPending = true

		body, err := g.deps.Physics.CreateRigidBody(physics.NewDynamic(g.origin))
		if err != nil {
			return fmt.Errorf("create body: %w", err)
		}
		g.body = body
		g.bodyInWorld = true
		if _, err := g.deps.Physics.CreateCollider(bodyCollider, body); err != nil {
			return fmt.Errorf("attach collider: %w", err)
		}
		return nil
	})
}

// release undoes whatever a failed spawnFull managed to create, including
// nodes that were built but never attached.
func (g *Guest) release() {
	if g.label != nil {
		if g.labelOnMesh {
			g.releaseStep("release label", func() error { return g.mesh.Remove(g.label) })
		} else {
			g.releaseStep("dispose label", func() error { return g.deps.Visuals.Dispose(g.label) })
		}
	}
	if g.mesh != nil {
		if g.meshInScene {
			g.releaseStep("release mesh", func() error { return g.deps.Scene.Remove(g.mesh) })
		} else {
			g.releaseStep("dispose mesh", func() error { return g.deps.Visuals.Dispose(g.mesh) })
		}
	}
	if g.bodyInWorld {
		g.releaseStep("release body", func() error { return g.deps.Physics.RemoveRigidBody(g.body) })
	}
	g.mesh, g.label, g.body = nil, nil, nil
	g.labelOnMesh, g.meshInScene, g.bodyInWorld = false, false, false
}

func (g *Guest) releaseStep(step string, fn func() error) {
	if err := guard(step, fn); err != nil {
		g.log.Warn("spawn cleanup step failed", zap.String("step", step), zap.Error(err))
	}
}

// spawnMarker is the degraded path: no label, no collider, no store write.
func (g *Guest) spawnMarker() {
	g.degraded = true

	err := guard("spawn marker mesh", func() error {
		mesh, err := g.deps.Visuals.NewMesh(markerShape, scene.Material{Color: MarkerColor, Unlit: true})
		if err != nil {
			return err
		}
		g.mesh = mesh
		if err := mesh.SetPosition(g.origin); err != nil {
			return err
		}
		if err := g.deps.Scene.Add(mesh); err != nil {
			return err
		}
		g.meshInScene = true
		return nil
	})
	if err != nil {
		g.log.Error("marker mesh failed, guest is invisible", zap.Error(err))
		if g.mesh != nil && !g.meshInScene {
			g.releaseStep("dispose marker mesh", func() error { return g.deps.Visuals.Dispose(g.mesh) })
			g.mesh = nil
		}
	}
	if g.mesh == nil {
		g.mesh = newDetachedNode(g.origin)
	}

	err = guard("spawn marker body", func() error {
		body, err := g.deps.Physics.CreateRigidBody(physics.NewDynamic(g.origin))
		if err != nil {
			return err
		}
		g.body = body
		g.bodyInWorld = true
		return nil
	})
	if err != nil {
		g.log.Error("marker body failed, guest has no physics presence", zap.Error(err))
		g.body = newDetachedBody(g.origin)
	}
}

// Update reconciles one tick: resolve the position, apply it to the mesh and
// the body, then write it back to the replicated store. On failure the tick
// is skipped and the last applied position stays.
func (g *Guest) Update() {
	if g.despawned {
		return
	}
	if err := g.reconcile(); err != nil {
		g.tickFailed(err)
		return
	}
	g.lastErr, g.errRepeat = "", 0
}

func (g *Guest) reconcile() error {
	return guard("update", func() error {
		target, err := g.resolvePosition()
		if err != nil {
			return err
		}
		if err := g.mesh.SetPosition(target); err != nil {
			return fmt.Errorf("mesh position: %w", err)
		}
		if err := guard("apply body", func() error { return g.applyBody(target) }); err != nil {
			// Put the mesh back so it never disagrees with the body.
			if rerr := g.mesh.SetPosition(g.pos); rerr != nil {
				err = errors.Join(err, fmt.Errorf("restore mesh position: %w", rerr))
			}
			return err
		}
		g.pos = target
		// Store last: a peer reading pos never sees a value not yet applied here.
		if err := replica.WritePosition(g.state, target); err != nil {
			return err
		}
		g.seedPending = false
		return nil
	})
}

func (g *Guest) applyBody(target geom.Vec3) error {
	if err := g.body.SetRotation(geom.Identity, true); err != nil {
		return fmt.Errorf("body rotation: %w", err)
	}
	if err := g.body.SetTranslation(target, true); err != nil {
		return fmt.Errorf("body translation: %w", err)
	}
	return nil
}

func (g *Guest) resolvePosition() (geom.Vec3, error) {
	if g.debug {
		return DebugPoint, nil
	}
	pos, err := replica.ReadPosition(g.state)
	if err != nil {
		return geom.Vec3{}, err
	}
	switch pos.Status {
	case replica.PositionPresent:
		// Still the spawn seed. A peer that really writes exactly the origin
		// before the first tick lands here too and is treated as the seed.
		if !(g.seedPending && pos.Vec == g.origin) {
			g.seedPending = false
			return pos.Vec, nil
		}
	case replica.PositionMalformed:
		g.log.Warn("malformed replicated position, using spawn fallback", zap.String("reason", pos.Reason))
	}
	return g.origin.WithY(DefaultHeight), nil
}

func (g *Guest) tickFailed(err error) {
	msg := err.Error()
	if msg == g.lastErr {
		g.errRepeat++
	} else {
		g.lastErr, g.errRepeat = msg, 0
	}
	if g.errRepeat%g.errLogEvery == 0 {
		g.log.Warn("guest update failed", zap.Error(err), zap.Int("repeats", g.errRepeat))
	}
}

// Despawn removes the label, the mesh and the body. Every step runs even if
// an earlier one fails; a target that is already gone is not an error.
// Calling it again does nothing.
func (g *Guest) Despawn() {
	if g.label != nil && g.mesh != nil {
		err := guard("remove label", func() error { return g.mesh.Remove(g.label) })
		g.teardownErr("remove label", err, scene.ErrNotChild, scene.ErrDisposed)
	}
	g.label = nil

	if g.meshInScene {
		err := guard("remove mesh", func() error { return g.deps.Scene.Remove(g.mesh) })
		g.teardownErr("remove mesh", err, scene.ErrNotInScene, scene.ErrDisposed)
	}
	g.meshInScene = false

	if g.bodyInWorld {
		err := guard("remove body", func() error { return g.deps.Physics.RemoveRigidBody(g.body) })
		g.teardownErr("remove body", err, physics.ErrBodyRemoved)
	}
	g.bodyInWorld = false

	if !g.despawned {
		g.log.Debug("guest despawned", zap.Bool("degraded", g.degraded))
	}
	g.despawned = true
}

func (g *Guest) teardownErr(step string, err error, gone ...error) {
	if err == nil {
		return
	}
	for _, target := range gone {
		if errors.Is(err, target) {
			g.log.Debug("teardown target already gone", zap.String("step", step), zap.Error(err))
			return
		}
	}
	g.log.Warn("guest teardown step failed", zap.String("step", step), zap.Error(err))
}

func (g *Guest) ID() string           { return g.id }
func (g *Guest) Origin() geom.Vec3    { return g.origin }
func (g *Guest) Mesh() scene.Node     { return g.mesh }
func (g *Guest) Label() scene.Node    { return g.label }
func (g *Guest) Body() physics.Body   { return g.body }
func (g *Guest) State() replica.Store { return g.state }
func (g *Guest) Degraded() bool       { return g.degraded }
func (g *Guest) Despawned() bool      { return g.despawned }
func (g *Guest) Debug() bool          { return g.debug }
func (g *Guest) SetDebug(on bool)     { g.debug = on }

// Position returns the position applied by the last successful tick, or the
// origin before the first one.
func (g *Guest) Position() geom.Vec3 { return g.pos }
