package system

import (
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/l1jgo/guestsync/internal/core/event"
	coresys "github.com/l1jgo/guestsync/internal/core/system"
	"github.com/l1jgo/guestsync/internal/geom"
	"github.com/l1jgo/guestsync/internal/replica"
)

// StoreFactory opens the replicated record of a participant.
type StoreFactory func(id string) (replica.Store, error)

// PeerSimulator plays remote peers for a headless host. It announces
// participants, walks each one's replicated position around a circle, and
// every churnEvery ticks has the oldest peer leave so a fresh one can join.
// Phase 0 (Input).
type PeerSimulator struct {
	bus        *event.Bus
	open       StoreFactory
	log        *zap.Logger
	want       int
	churnEvery int
	radius     float64
	speed      float64 // radians per second
	newID      func() string

	peers []simPeer
	tick  int
}

type simPeer struct {
	id    string
	state replica.Store
	angle float64
}

func NewPeerSimulator(bus *event.Bus, open StoreFactory, peers, churnEvery int, log *zap.Logger) *PeerSimulator {
	return &PeerSimulator{
		bus:        bus,
		open:       open,
		log:        log,
		want:       peers,
		churnEvery: churnEvery,
		radius:     2,
		speed:      0.5,
		newID:      uuid.NewString,
	}
}

func (s *PeerSimulator) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *PeerSimulator) Update(dt time.Duration) {
	s.tick++
	if s.churnEvery > 0 && s.tick%s.churnEvery == 0 && len(s.peers) > 0 {
		gone := s.peers[0]
		s.peers = s.peers[1:]
		event.Emit(s.bus, event.ParticipantLeft{ID: gone.id})
	}
	for len(s.peers) < s.want {
		if !s.join() {
			break
		}
	}
	step := s.speed * dt.Seconds()
	for i := range s.peers {
		p := &s.peers[i]
		p.angle = math.Mod(p.angle+step, 2*math.Pi)
		pos := geom.V3(s.radius*math.Cos(p.angle), 0.25, s.radius*math.Sin(p.angle))
		if err := replica.WritePosition(p.state, pos); err != nil {
			s.log.Debug("simulated peer write failed", zap.String("participant", p.id), zap.Error(err))
		}
	}
}

func (s *PeerSimulator) join() bool {
	id := s.newID()
	st, err := s.open(id)
	if err != nil {
		s.log.Warn("open simulated peer state failed", zap.String("participant", id), zap.Error(err))
		return false
	}
	angle := 2 * math.Pi * float64(len(s.peers)) / float64(s.want)
	s.peers = append(s.peers, simPeer{id: id, state: st, angle: angle})
	event.Emit(s.bus, event.ParticipantJoined{ID: id, State: st})
	return true
}

// Leave announces that every simulated peer has left and stops new ones
// from joining.
func (s *PeerSimulator) Leave() {
	s.want = 0
	for _, p := range s.peers {
		event.Emit(s.bus, event.ParticipantLeft{ID: p.id})
	}
	s.peers = nil
}

// IDs returns the ids of the simulated peers still present.
func (s *PeerSimulator) IDs() []string {
	out := make([]string, len(s.peers))
	for i, p := range s.peers {
		out[i] = p.id
	}
	return out
}
