package store

import (
	"context"
	"time"
)

// Generation is one delivered DM, kept for history and daily stats
type Generation struct {
	ID        string    `json:"id"`
	OwnerRef  string    `json:"owner_ref"`
	Tone      string    `json:"tone"`
	Platform  string    `json:"platform"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Generations handles generation history database operations
type Generations struct {
	db *DB
}

// NewGenerations creates a generation history repository
func NewGenerations(db *DB) *Generations {
	return &Generations{db: db}
}

// Insert records a delivered generation and returns its id
func (r *Generations) Insert(ctx context.Context, ownerRef, tone, platform, message string) (string, error) {
	var id string
	err := r.db.Pool.QueryRow(ctx, queryInsertGeneration, ownerRef, tone, platform, message).Scan(&id)
	return id, err
}

// RecentByOwner returns the owner's most recent generations
func (r *Generations) RecentByOwner(ctx context.Context, ownerRef string, limit int) ([]Generation, error) {
	rows, err := r.db.Pool.Query(ctx, queryRecentGenerationsByOwner, ownerRef, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var generations []Generation
	for rows.Next() {
		var g Generation
		if err := rows.Scan(&g.ID, &g.OwnerRef, &g.Tone, &g.Platform, &g.Message, &g.CreatedAt); err != nil {
			return nil, err
		}
		generations = append(generations, g)
	}
	return generations, rows.Err()
}

// CountBetween counts generations delivered in [from, to)
func (r *Generations) CountBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, queryCountGenerationsBetween, from, to).Scan(&count)
	return count, err
}

// DeleteBefore removes history older than the cutoff and returns the number
// of rows deleted
func (r *Generations) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, queryDeleteGenerationsBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
