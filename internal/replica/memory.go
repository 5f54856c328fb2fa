package replica

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Faults makes a MemoryStore fail on purpose. A nil field means no fault.
type Faults struct {
	ID      error
	Get     error
	Set     error
	Color   error
	Profile error
}

// MemoryStore is an in-process Store. It is safe for concurrent use, which
// lets the sync system fan guests out across workers.
type MemoryStore struct {
	mu      sync.RWMutex
	id      string
	color   string
	profile *Profile
	state   map[string]json.RawMessage
	faults  Faults
	writes  int
}

func NewMemoryStore(id string) *MemoryStore {
	return &MemoryStore{
		id:    id,
		state: make(map[string]json.RawMessage, 4),
	}
}

func (s *MemoryStore) ID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.faults.ID != nil {
		return "", s.faults.ID
	}
	return s.id, nil
}

func (s *MemoryStore) Get(key string) (json.RawMessage, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.faults.Get != nil {
		return nil, false, s.faults.Get
	}
	raw, ok := s.state[key]
	if !ok {
		return nil, false, nil
	}
	return append(json.RawMessage(nil), raw...), true, nil
}

func (s *MemoryStore) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.faults.Set != nil {
		return s.faults.Set
	}
	s.state[key] = raw
	s.writes++
	return nil
}

func (s *MemoryStore) Color() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.faults.Color != nil {
		return "", s.faults.Color
	}
	return s.color, nil
}

func (s *MemoryStore) Profile() (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.faults.Profile != nil {
		return nil, s.faults.Profile
	}
	if s.profile == nil {
		return nil, nil
	}
	p := *s.profile
	return &p, nil
}

// SetColor publishes the participant's color.
func (s *MemoryStore) SetColor(c string) {
	s.mu.Lock()
	s.color = c
	s.mu.Unlock()
}

// SetProfile publishes the participant's profile; nil clears it.
func (s *MemoryStore) SetProfile(p *Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		s.profile = nil
		return
	}
	cp := *p
	s.profile = &cp
}

// SetRaw stores raw bytes under key without validation.
func (s *MemoryStore) SetRaw(key string, raw json.RawMessage) {
	s.mu.Lock()
	s.state[key] = append(json.RawMessage(nil), raw...)
	s.mu.Unlock()
}

// Delete removes key.
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	delete(s.state, key)
	s.mu.Unlock()
}

// Inject replaces the active fault set.
func (s *MemoryStore) Inject(f Faults) {
	s.mu.Lock()
	s.faults = f
	s.mu.Unlock()
}

// Writes counts successful Set calls.
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
