package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/guestsync/internal/avatar"
	"github.com/l1jgo/guestsync/internal/core/event"
	coresys "github.com/l1jgo/guestsync/internal/core/system"
	"github.com/l1jgo/guestsync/internal/persist"
	"github.com/l1jgo/guestsync/internal/world"
)

// PositionStore is the slice of persist.PositionRepo the snapshot system uses.
type PositionStore interface {
	SaveBatch(ctx context.Context, rows []persist.PositionRow) error
	Delete(ctx context.Context, participantID string) error
}

// PersistenceSystem snapshots every guest's last applied position every
// interval ticks, and drops the rows of participants that left. Phase 4 (Persist).
type PersistenceSystem struct {
	roster    *world.Roster
	repo      PositionStore
	log       *zap.Logger
	timeout   time.Duration
	tickCount int
	interval  int // snapshot every N ticks
	departed  []string
	now       func() time.Time
}

func NewPersistenceSystem(bus *event.Bus, roster *world.Roster, repo PositionStore, log *zap.Logger, intervalTicks int, timeout time.Duration) *PersistenceSystem {
	s := &PersistenceSystem{
		roster:   roster,
		repo:     repo,
		log:      log,
		timeout:  timeout,
		interval: intervalTicks,
		now:      time.Now,
	}
	event.Subscribe(bus, func(ev event.ParticipantLeft) {
		s.departed = append(s.departed, ev.ID)
	})
	return s
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.flushDeparted()
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.SaveAll()
}

// SaveAll snapshots every guest immediately. Called on shutdown as well.
func (s *PersistenceSystem) SaveAll() {
	rows := make([]persist.PositionRow, 0, s.roster.Len())
	at := s.now()
	s.roster.Each(func(id string, g *avatar.Guest) {
		rows = append(rows, persist.PositionRow{
			ParticipantID: id,
			Pos:           g.Position(),
			Degraded:      g.Degraded(),
			UpdatedAt:     at,
		})
	})
	if len(rows) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	start := time.Now()
	if err := s.repo.SaveBatch(ctx, rows); err != nil {
		s.log.Error("position snapshot failed", zap.Int("guests", len(rows)), zap.Error(err))
		return
	}
	s.log.Debug("position snapshot saved",
		zap.Int("guests", len(rows)),
		zap.Duration("took", time.Since(start)),
	)
}

func (s *PersistenceSystem) flushDeparted() {
	if len(s.departed) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	for _, id := range s.departed {
		if s.roster.Get(id) != nil {
			continue // rejoined before the flush
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			s.log.Warn("drop position row failed", zap.String("participant", id), zap.Error(err))
		}
	}
	s.departed = s.departed[:0]
}
