package data

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/guestsync/internal/geom"
)

// SpawnPoint is one named arrival point for guests.
type SpawnPoint struct {
	Name string  `yaml:"name"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Z    float64 `yaml:"z"`
}

func (p SpawnPoint) Vec() geom.Vec3 { return geom.V3(p.X, p.Y, p.Z) }

// SpawnTable hands out spawn points round-robin.
type SpawnTable struct {
	mu     sync.Mutex
	points []SpawnPoint
	next   int
}

// LoadSpawnTable loads spawn_points.yaml.
func LoadSpawnTable(path string) (*SpawnTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn table: %w", err)
	}
	t, err := ParseSpawnTable(raw)
	if err != nil {
		return nil, fmt.Errorf("spawn table %s: %w", path, err)
	}
	return t, nil
}

func ParseSpawnTable(raw []byte) (*SpawnTable, error) {
	var entries []SpawnPoint
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse spawn table: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("spawn table is empty")
	}
	for i, e := range entries {
		for _, c := range [...]float64{e.X, e.Y, e.Z} {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return nil, fmt.Errorf("spawn point %d (%q) is not finite", i, e.Name)
			}
		}
	}
	return &SpawnTable{points: entries}, nil
}

// Next returns the next spawn point, wrapping around at the end.
func (t *SpawnTable) Next() SpawnPoint {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.points[t.next]
	t.next = (t.next + 1) % len(t.points)
	return p
}

// Count returns the total number of spawn points loaded.
func (t *SpawnTable) Count() int {
	return len(t.points)
}
