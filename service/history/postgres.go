package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists the history blob in a single-row key-value slot.
// The schema is not relational: the persistence model is one serialized blob
// per slot key, overwritten in full on every mutation.
type PostgresStore struct {
	pool    *pgxpool.Pool
	slotKey string
	logger  *slog.Logger
}

// NewPostgresStore creates a Postgres-backed store for the given slot key.
// Pass SlotKey for the default payment history slot.
func NewPostgresStore(pool *pgxpool.Pool, slotKey string, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{
		pool:    pool,
		slotKey: slotKey,
		logger:  logger,
	}
}

// EnsureSchema creates the slot table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS history_slots (
			slot_key   TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure history_slots table: %w", err)
	}
	return nil
}

// Load reads and deserializes the history blob for the slot key. A missing
// row and a corrupted payload both yield an empty history.
func (s *PostgresStore) Load(ctx context.Context) (History, error) {
	var payload string
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM history_slots WHERE slot_key = $1`,
		s.slotKey,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return History{}, nil
		}
		return nil, fmt.Errorf("failed to load history slot %q: %w", s.slotKey, err)
	}

	var h History
	if err := json.Unmarshal([]byte(payload), &h); err != nil {
		s.logger.WarnContext(ctx, "history slot payload is corrupted, starting empty",
			"slot_key", s.slotKey,
			"error", err,
		)
		return History{}, nil
	}
	return h, nil
}

// Save serializes the full history and upserts the slot row.
func (s *PostgresStore) Save(ctx context.Context, h History) error {
	payload, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO history_slots (slot_key, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (slot_key)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
	`, s.slotKey, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save history slot %q: %w", s.slotKey, err)
	}

	s.logger.DebugContext(ctx, "history persisted", "slot_key", s.slotKey, "records", len(h))
	return nil
}
