package replica

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/l1jgo/guestsync/internal/geom"
)

// PositionStatus distinguishes an unset position from a garbled one. Neither
// is the same as a zero vector.
type PositionStatus uint8

const (
	PositionAbsent PositionStatus = iota
	PositionMalformed
	PositionPresent
)

func (s PositionStatus) String() string {
	switch s {
	case PositionAbsent:
		return "absent"
	case PositionMalformed:
		return "malformed"
	case PositionPresent:
		return "present"
	}
	return fmt.Sprintf("PositionStatus(%d)", uint8(s))
}

// Position is the decoded "pos" field. Vec is meaningful only when Present.
type Position struct {
	Status PositionStatus
	Vec    geom.Vec3
	// Reason explains a Malformed status.
	Reason string
}

func (p Position) Present() bool { return p.Status == PositionPresent }

// wirePosition is the on-store shape: {"x":..,"y":..,"z":..}.
type wirePosition struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z"`
}

// EncodePosition returns the wire value stored under KeyPosition.
func EncodePosition(v geom.Vec3) map[string]float64 {
	return map[string]float64{"x": v.X, "y": v.Y, "z": v.Z}
}

// DecodePosition validates a raw "pos" value. A JSON null counts as absent.
func DecodePosition(raw json.RawMessage, ok bool) Position {
	trimmed := bytes.TrimSpace(raw)
	if !ok || len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Position{Status: PositionAbsent}
	}
	var w wirePosition
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return Position{Status: PositionMalformed, Reason: err.Error()}
	}
	if w.X == nil || w.Y == nil || w.Z == nil {
		return Position{Status: PositionMalformed, Reason: "missing component"}
	}
	v := geom.V3(*w.X, *w.Y, *w.Z)
	if !v.Finite() {
		return Position{Status: PositionMalformed, Reason: "non-finite component"}
	}
	return Position{Status: PositionPresent, Vec: v}
}

// ReadPosition fetches and decodes KeyPosition. The error is only the
// backend's; malformed payloads come back as a Position status.
func ReadPosition(s Store) (Position, error) {
	raw, ok, err := s.Get(KeyPosition)
	if err != nil {
		return Position{}, fmt.Errorf("get %s: %w", KeyPosition, err)
	}
	return DecodePosition(raw, ok), nil
}

// WritePosition stores v under KeyPosition.
func WritePosition(s Store, v geom.Vec3) error {
	if !v.Finite() {
		return fmt.Errorf("set %s: non-finite position %v", KeyPosition, v)
	}
	if err := s.Set(KeyPosition, EncodePosition(v)); err != nil {
		return fmt.Errorf("set %s: %w", KeyPosition, err)
	}
	return nil
}
