package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/abgdnv/inventory/internal/idgen"
	"github.com/abgdnv/inventory/internal/store/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgCounterStore implements idgen.CounterStore on the product_id_tracker table.
type PgCounterStore struct {
	db      *pgxpool.Pool
	q       *db.Queries
	lock    bool
	lockKey int64
}

type CounterStoreOption func(*PgCounterStore)

// WithAdvisoryLock makes every counter transaction take pg_advisory_xact_lock(key) first,
// so processes sharing the database also serialize on the counter.
func WithAdvisoryLock(key int64) CounterStoreOption {
	return func(s *PgCounterStore) {
		s.lock = true
		s.lockKey = key
	}
}

func NewPgCounterStore(dbp *pgxpool.Pool, opts ...CounterStoreOption) *PgCounterStore {
	s := &PgCounterStore{
		db: dbp,
		q:  db.New(dbp),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PgCounterStore) Begin(ctx context.Context) (idgen.CounterTx, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	ctr := &pgCounterTx{tx: tx, q: s.q.WithTx(tx)}
	if s.lock {
		if err := ctr.q.AcquireCounterLock(ctx, s.lockKey); err != nil {
			_ = ctr.Rollback(context.WithoutCancel(ctx))
			return nil, fmt.Errorf("failed to acquire advisory lock: %w", err)
		}
	}
	return ctr, nil
}

type pgCounterTx struct {
	tx pgx.Tx
	q  *db.Queries
}

func (t *pgCounterTx) LoadSingleton(ctx context.Context) (*idgen.Counter, error) {
	row, err := t.q.FindCounter(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, idgen.ErrCounterNotFound
		}
		return nil, err
	}
	return &idgen.Counter{LastGeneratedID: row.LastGeneratedID}, nil
}

func (t *pgCounterTx) Insert(ctx context.Context, c idgen.Counter) error {
	return t.q.InsertCounter(ctx, c.LastGeneratedID)
}

func (t *pgCounterTx) Update(ctx context.Context, c idgen.Counter) error {
	n, err := t.q.UpdateCounter(ctx, c.LastGeneratedID)
	if err != nil {
		return err
	}
	if n != 1 {
		return idgen.ErrCounterNotFound
	}
	return nil
}

func (t *pgCounterTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgCounterTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}
