package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/guestsync/internal/core/event"
	coresys "github.com/l1jgo/guestsync/internal/core/system"
	"github.com/l1jgo/guestsync/internal/world"
)

// RosterSystem turns participant events into guest spawns and despawns.
// Joins and leaves apply during dispatch; a session end closes the roster at
// the end of the tick, after this tick's updates and snapshot. Phase 5 (Cleanup).
type RosterSystem struct {
	roster *world.Roster
	log    *zap.Logger
	ended  bool
	onEnd  func()
}

// NewRosterSystem subscribes to the bus. onEnd, if set, runs once after the
// roster has been closed for a SessionEnded event.
func NewRosterSystem(bus *event.Bus, roster *world.Roster, log *zap.Logger, onEnd func()) *RosterSystem {
	s := &RosterSystem{roster: roster, log: log, onEnd: onEnd}
	event.Subscribe(bus, s.onJoined)
	event.Subscribe(bus, s.onLeft)
	event.Subscribe(bus, func(event.SessionEnded) { s.ended = true })
	return s
}

func (s *RosterSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *RosterSystem) onJoined(ev event.ParticipantJoined) {
	if s.ended {
		s.log.Debug("join after session end ignored", zap.String("participant", ev.ID))
		return
	}
	if ev.State == nil {
		s.log.Warn("join without replicated state ignored", zap.String("participant", ev.ID))
		return
	}
	s.roster.Join(ev.ID, ev.State)
}

func (s *RosterSystem) onLeft(ev event.ParticipantLeft) {
	if !s.roster.Leave(ev.ID) {
		s.log.Debug("leave for unknown participant", zap.String("participant", ev.ID))
	}
}

func (s *RosterSystem) Update(_ time.Duration) {
	if !s.ended {
		return
	}
	if s.roster.Len() > 0 {
		s.roster.Close()
	}
	if s.onEnd != nil {
		s.onEnd()
		s.onEnd = nil
	}
}

// Ended reports whether a SessionEnded event has been seen.
func (s *RosterSystem) Ended() bool { return s.ended }
