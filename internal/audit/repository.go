// Package audit persists the append-only message audit log: one entry per
// inbound and outbound message, one logical stream per participant channel.
// The core only writes it; reads exist for operators.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/siskadev/siska-bot/pkg/database"
)

// Direction marks whether a message entered or left the system
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Entry is one audit log record
type Entry struct {
	ID        string
	Channel   string
	Direction Direction
	Body      string
	CreatedAt time.Time
}

// Repository writes and reads the audit_log table
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRepository creates a new audit repository
func NewRepository(db *database.DB, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db.DB,
		logger: logger,
	}
}

// Record appends one entry to a channel's stream
func (r *Repository) Record(ctx context.Context, channel string, direction Direction, body string) error {
	query := `
		INSERT INTO audit_log (id, channel, direction, body, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		uuid.NewString(), channel, string(direction), body, time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to record audit entry",
			zap.String("channel", channel),
			zap.String("direction", string(direction)),
			zap.Error(err))
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// RecentByChannel returns the latest entries of one channel's stream, newest
// first
func (r *Repository) RecentByChannel(ctx context.Context, channel string, limit int) ([]Entry, error) {
	query := `
		SELECT id, channel, direction, body, created_at
		FROM audit_log
		WHERE channel = ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, channel, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var direction string
		if err := rows.Scan(&e.ID, &e.Channel, &direction, &e.Body, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.Direction = Direction(direction)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
