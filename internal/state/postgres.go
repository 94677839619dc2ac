package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const migration = `
CREATE TABLE IF NOT EXISTS bot_state (
    id  SMALLINT PRIMARY KEY CHECK (id = 1),
    doc JSONB NOT NULL
)`

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so loads and saves
// run either standalone or inside a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres stores the whole durable record as one JSONB document. Every
// write replaces the document, so readers never see a partial update.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	if _, err := pool.Exec(ctx, migration); err != nil {
		return nil, fmt.Errorf("failed to migrate bot_state: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func load(ctx context.Context, q querier) (domain.Settings, []domain.AlertRecord, *domain.Snapshot, error) {
	var raw []byte
	err := q.QueryRow(ctx, `SELECT doc FROM bot_state WHERE id = 1`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultSettings(), nil, nil, nil
	}
	if err != nil {
		return domain.Settings{}, nil, nil, fmt.Errorf("failed to load state: %w", err)
	}
	return decodeDoc(raw)
}

func save(ctx context.Context, q querier, settings domain.Settings, records []domain.AlertRecord, snap *domain.Snapshot) error {
	raw, err := encodeDoc(settings, records, snap)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx,
		`INSERT INTO bot_state (id, doc) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc`, raw)
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func (p *Postgres) Settings(ctx context.Context) (domain.Settings, error) {
	settings, _, _, err := load(ctx, p.pool)
	return settings, err
}

// UpdateSettings applies the patch inside a transaction so concurrent
// writers serialize and readers only ever see a fully-applied document.
func (p *Postgres) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to begin settings update: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	settings, records, snap, err := load(ctx, tx)
	if err != nil {
		return domain.Settings{}, err
	}

	updated, err := settings.Apply(patch)
	if err != nil {
		return settings, err
	}

	if err := save(ctx, tx, updated, records, snap); err != nil {
		return domain.Settings{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to commit settings update: %w", err)
	}
	return updated, nil
}

func (p *Postgres) AlertRecords(ctx context.Context) ([]domain.AlertRecord, error) {
	_, records, _, err := load(ctx, p.pool)
	return records, err
}

func (p *Postgres) SaveAlertRecords(ctx context.Context, records []domain.AlertRecord) error {
	return p.updateDoc(ctx, func(settings domain.Settings, _ []domain.AlertRecord, snap *domain.Snapshot) (domain.Settings, []domain.AlertRecord, *domain.Snapshot) {
		return settings, records, snap
	})
}

func (p *Postgres) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	_, _, snap, err := load(ctx, p.pool)
	return snap, err
}

func (p *Postgres) SaveSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	return p.updateDoc(ctx, func(settings domain.Settings, records []domain.AlertRecord, _ *domain.Snapshot) (domain.Settings, []domain.AlertRecord, *domain.Snapshot) {
		return settings, records, snap
	})
}

func (p *Postgres) updateDoc(ctx context.Context, mutate func(domain.Settings, []domain.AlertRecord, *domain.Snapshot) (domain.Settings, []domain.AlertRecord, *domain.Snapshot)) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin state update: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	settings, records, snap, err := load(ctx, tx)
	if err != nil {
		return err
	}

	settings, records, snap = mutate(settings, records, snap)

	if err := save(ctx, tx, settings, records, snap); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit state update: %w", err)
	}
	return nil
}
