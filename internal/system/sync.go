package system

import (
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/l1jgo/guestsync/internal/avatar"
	coresys "github.com/l1jgo/guestsync/internal/core/system"
	"github.com/l1jgo/guestsync/internal/world"
)

// SyncSystem reconciles every guest once per tick. Phase 2 (Update).
// With workers > 0 guests are fanned out over an ants pool and the system
// waits for all of them before returning.
type SyncSystem struct {
	roster *world.Roster
	pool   *ants.Pool
	log    *zap.Logger
	wg     sync.WaitGroup

	lastTook time.Duration
	overruns int
}

func NewSyncSystem(roster *world.Roster, workers int, log *zap.Logger) (*SyncSystem, error) {
	s := &SyncSystem{roster: roster, log: log}
	if workers <= 0 {
		return s, nil
	}
	pool, err := ants.NewPool(workers,
		ants.WithPreAlloc(true),
		ants.WithPanicHandler(func(p any) {
			log.Error("sync worker panic", zap.String("panic", fmt.Sprint(p)))
		}),
		ants.WithLogger(antsLogger{log}),
	)
	if err != nil {
		return nil, fmt.Errorf("create sync pool: %w", err)
	}
	s.pool = pool
	return s, nil
}

func (s *SyncSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SyncSystem) Update(dt time.Duration) {
	start := time.Now()
	guests := s.roster.Guests()
	if s.pool == nil {
		for _, g := range guests {
			g.Update()
		}
	} else {
		s.fanOut(guests)
	}
	s.lastTook = time.Since(start)
	if dt > 0 && s.lastTook > dt {
		s.overruns++
		if s.overruns%100 == 1 {
			s.log.Warn("guest sync overran tick",
				zap.Duration("took", s.lastTook),
				zap.Duration("tick", dt),
				zap.Int("guests", len(guests)),
				zap.Int("overruns", s.overruns),
			)
		}
	}
}

func (s *SyncSystem) fanOut(guests []*avatar.Guest) {
	for _, g := range guests {
		g := g
		s.wg.Add(1)
		err := s.pool.Submit(func() {
			defer s.wg.Done()
			g.Update()
		})
		if err != nil {
			// Pool closed or refused: update on the caller instead.
			s.wg.Done()
			g.Update()
		}
	}
	s.wg.Wait()
}

// LastDuration is how long the last Update took.
func (s *SyncSystem) LastDuration() time.Duration { return s.lastTook }

// Close releases the worker pool.
func (s *SyncSystem) Close() {
	if s.pool != nil {
		s.pool.Release()
	}
}

type antsLogger struct{ log *zap.Logger }

func (l antsLogger) Printf(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...), zap.String("component", "ants"))
}
