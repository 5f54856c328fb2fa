package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain transport / peer discovery
	PhasePreUpdate               // 1: dispatch last tick's events (join/leave)
	PhaseUpdate                  // 2: per-guest reconciliation
	PhasePostUpdate              // 3: presentation bookkeeping
	PhasePersist                 // 4: position snapshots
	PhaseCleanup                 // 5: end-of-tick teardown
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
