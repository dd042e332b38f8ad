package economy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements Store on PostgreSQL for deployments that outgrow the
// flat file. Inventory and the preserved per-game fields are stored as JSONB.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore connects to the database and verifies the connection.
func NewPgStore(ctx context.Context, databaseURL string) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PgStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PgStore) Close() {
	s.pool.Close()
}

// RunMigrations creates the user_records table.
func (s *PgStore) RunMigrations(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS user_records (
			user_id TEXT PRIMARY KEY,
			balance BIGINT NOT NULL DEFAULT 1000,
			inventory JSONB NOT NULL DEFAULT '[]',
			extra JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

func (s *PgStore) Read(ctx context.Context, userID string) (*UserRecord, error) {
	rec, err := s.readRow(ctx, userID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	rec = NewUserRecord()
	if err := s.Write(ctx, userID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *PgStore) Lookup(ctx context.Context, userID string) (*UserRecord, error) {
	rec, err := s.readRow(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	return rec, err
}

func (s *PgStore) readRow(ctx context.Context, userID string) (*UserRecord, error) {
	var (
		rec       UserRecord
		inventory []byte
		extra     []byte
	)
	err := s.pool.QueryRow(ctx,
		"SELECT balance, inventory, extra FROM user_records WHERE user_id = $1",
		userID,
	).Scan(&rec.Balance, &inventory, &extra)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(inventory, &rec.Inventory); err != nil {
		return nil, fmt.Errorf("failed to decode inventory for %s: %w", userID, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(extra, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode extra fields for %s: %w", userID, err)
	}
	if len(fields) > 0 {
		rec.extra = fields
	}
	return &rec, nil
}

func (s *PgStore) Write(ctx context.Context, userID string, rec *UserRecord) error {
	inventory, extra, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, upsertRecordSQL, userID, rec.Balance, inventory, extra)
	return err
}

func (s *PgStore) WritePair(ctx context.Context, firstID string, first *UserRecord, secondID string, second *UserRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, pair := range []struct {
		id  string
		rec *UserRecord
	}{{firstID, first}, {secondID, second}} {
		inventory, extra, err := encodeRecord(pair.rec)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, upsertRecordSQL, pair.id, pair.rec.Balance, inventory, extra); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

const upsertRecordSQL = `
	INSERT INTO user_records (user_id, balance, inventory, extra, updated_at)
	VALUES ($1, $2, $3, $4, NOW())
	ON CONFLICT (user_id)
	DO UPDATE SET balance = $2, inventory = $3, extra = $4, updated_at = NOW()
`

func encodeRecord(rec *UserRecord) (inventory, extra []byte, err error) {
	inv := rec.Inventory
	if inv == nil {
		inv = []InventoryItem{}
	}
	inventory, err = json.Marshal(inv)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode inventory: %w", err)
	}
	fields := rec.extra
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	extra, err = json.Marshal(fields)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode extra fields: %w", err)
	}
	return inventory, extra, nil
}
