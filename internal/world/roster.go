package world

import (
	"go.uber.org/zap"

	"github.com/l1jgo/guestsync/internal/avatar"
	"github.com/l1jgo/guestsync/internal/data"
	"github.com/l1jgo/guestsync/internal/geom"
	"github.com/l1jgo/guestsync/internal/replica"
)

// RosterConfig is what a Roster needs to spawn guests.
type RosterConfig struct {
	Deps avatar.Deps
	// Spawns hands out origins round-robin; nil uses DefaultOrigin for everyone.
	Spawns        *data.SpawnTable
	DefaultOrigin geom.Vec3
	Debug         bool
	ErrorLogEvery int
}

// Roster tracks the guest of every remote participant currently in the session.
// Single-goroutine access only (game loop).
type Roster struct {
	cfg    RosterConfig
	log    *zap.Logger
	byID   map[string]*avatar.Guest
	order  []string // join order, for deterministic iteration
	joined int
}

func NewRoster(cfg RosterConfig, log *zap.Logger) *Roster {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Deps.Log == nil {
		cfg.Deps.Log = log
	}
	return &Roster{
		cfg:  cfg,
		log:  log,
		byID: make(map[string]*avatar.Guest),
	}
}

// Join spawns a guest for a participant. A participant already present keeps
// the guest it has.
func (r *Roster) Join(id string, state replica.Store) *avatar.Guest {
	if g, ok := r.byID[id]; ok {
		r.log.Debug("participant already joined", zap.String("participant", id))
		return g
	}
	origin := r.cfg.DefaultOrigin
	spawn := "default"
	if r.cfg.Spawns != nil {
		p := r.cfg.Spawns.Next()
		origin, spawn = p.Vec(), p.Name
	}

	g := avatar.Spawn(state, r.cfg.Deps, origin, r.cfg.Debug, avatar.WithErrorLogEvery(r.cfg.ErrorLogEvery))
	r.byID[id] = g
	r.order = append(r.order, id)
	r.joined++
	r.log.Info("participant joined",
		zap.String("participant", id),
		zap.String("spawn", spawn),
		zap.Bool("degraded", g.Degraded()),
		zap.Int("guests", len(r.byID)),
	)
	return g
}

// Leave despawns and forgets a participant's guest. It reports whether the
// participant was present.
func (r *Roster) Leave(id string) bool {
	g, ok := r.byID[id]
	if !ok {
		return false
	}
	g.Despawn()
	delete(r.byID, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.log.Info("participant left", zap.String("participant", id), zap.Int("guests", len(r.byID)))
	return true
}

// Get returns a participant's guest, or nil if absent.
func (r *Roster) Get(id string) *avatar.Guest {
	return r.byID[id]
}

// Each calls fn for every guest in join order.
func (r *Roster) Each(fn func(id string, g *avatar.Guest)) {
	for _, id := range r.order {
		fn(id, r.byID[id])
	}
}

// Guests returns a snapshot of all guests in join order.
func (r *Roster) Guests() []*avatar.Guest {
	out := make([]*avatar.Guest, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

func (r *Roster) Len() int { return len(r.byID) }

// Joined counts every spawn since the roster was created, rejoins included.
func (r *Roster) Joined() int { return r.joined }

// SetDebug switches the debug override on every current and future guest.
func (r *Roster) SetDebug(on bool) {
	r.cfg.Debug = on
	for _, g := range r.byID {
		g.SetDebug(on)
	}
}

// Close despawns every guest; used when the session ends.
func (r *Roster) Close() {
	n := len(r.order)
	for len(r.order) > 0 {
		r.Leave(r.order[0])
	}
	if n > 0 {
		r.log.Info("roster closed", zap.Int("despawned", n))
	}
}
