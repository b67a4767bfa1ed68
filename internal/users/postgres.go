package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore stores frequencies in the users table.
type PostgresStore struct {
	db DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a store over a pgx pool or connection.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Register inserts userID with FrequencyUnset, leaving an existing row alone.
func (s *PostgresStore) Register(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (user_id, frequency) VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`,
		userID, FrequencyUnset,
	)
	if err != nil {
		return fmt.Errorf("users: register %s: %w", userID, err)
	}
	return nil
}

// Save upserts the frequency for userID.
func (s *PostgresStore) Save(ctx context.Context, userID string, frequency int) error {
	if err := ValidateFrequency(frequency); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (user_id, frequency) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET frequency = EXCLUDED.frequency`,
		userID, frequency,
	)
	if err != nil {
		return fmt.Errorf("users: save %s: %w", userID, err)
	}
	return nil
}

// ListUsers returns every user ID ordered by ID.
func (s *PostgresStore) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT user_id FROM users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// ListUsersWithFrequencyAtLeast returns the IDs with frequency >= n ordered by ID.
func (s *PostgresStore) ListUsersWithFrequencyAtLeast(ctx context.Context, n int) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT user_id FROM users WHERE frequency >= $1 ORDER BY user_id`, n)
	if err != nil {
		return nil, fmt.Errorf("users: list with frequency >= %d: %w", n, err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// GetFrequency returns the stored frequency, or FrequencyUnset when no row exists.
func (s *PostgresStore) GetFrequency(ctx context.Context, userID string) (int, error) {
	var frequency int
	err := s.db.QueryRow(ctx, `SELECT frequency FROM users WHERE user_id = $1`, userID).Scan(&frequency)
	if errors.Is(err, pgx.ErrNoRows) {
		return FrequencyUnset, nil
	}
	if err != nil {
		return FrequencyUnset, fmt.Errorf("users: get frequency %s: %w", userID, err)
	}
	return frequency, nil
}

func scanIDs(rows pgx.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("users: scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
