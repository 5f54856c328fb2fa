package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/l1jgo/guestsync/internal/geom"
)

// PositionRow is one guest's last applied position.
type PositionRow struct {
	ParticipantID string
	Pos           geom.Vec3
	Degraded      bool
	UpdatedAt     time.Time
}

type PositionRepo struct {
	db *DB
}

func NewPositionRepo(db *DB) *PositionRepo {
	return &PositionRepo{db: db}
}

// SaveBatch upserts all rows in a single transaction.
func (r *PositionRepo) SaveBatch(ctx context.Context, rows []PositionRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("positions begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, row := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO guest_positions (participant_id, x, y, z, degraded, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (participant_id) DO UPDATE
			 SET x = EXCLUDED.x, y = EXCLUDED.y, z = EXCLUDED.z,
			     degraded = EXCLUDED.degraded, updated_at = EXCLUDED.updated_at`,
			row.ParticipantID, row.Pos.X, row.Pos.Y, row.Pos.Z, row.Degraded, stamp(row.UpdatedAt),
		); err != nil {
			return fmt.Errorf("upsert position %s: %w", row.ParticipantID, err)
		}
	}
	return tx.Commit(ctx)
}

// Load returns the stored row for a participant, or nil if none.
func (r *PositionRepo) Load(ctx context.Context, participantID string) (*PositionRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT participant_id, x, y, z, degraded, updated_at
		 FROM guest_positions WHERE participant_id = $1`, participantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var row PositionRow
	if err := rows.Scan(&row.ParticipantID, &row.Pos.X, &row.Pos.Y, &row.Pos.Z, &row.Degraded, &row.UpdatedAt); err != nil {
		return nil, err
	}
	return &row, nil
}

// Delete drops a participant's row. A missing row is not an error.
func (r *PositionRepo) Delete(ctx context.Context, participantID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM guest_positions WHERE participant_id = $1`, participantID,
	)
	return err
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
