package event

import "github.com/l1jgo/guestsync/internal/replica"

// ParticipantJoined is emitted when a remote participant is first observed.
type ParticipantJoined struct {
	ID    string
	State replica.Store
}

// ParticipantLeft is emitted when a remote participant disconnects.
type ParticipantLeft struct {
	ID string
}

// SessionEnded tears down every remote representation.
type SessionEnded struct{}
