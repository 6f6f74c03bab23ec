package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/abgdnv/inventory/internal/store/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation      = "23505"
	numericValueOutRange = "22003"
)

// PgStore implements ProductStore on a PostgreSQL connection pool.
type PgStore struct {
	db *pgxpool.Pool
	q  *db.Queries
}

// NewPgStore creates a new PgStore.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{
		db: dbp,
		q:  db.New(dbp),
	}
}

func (p *PgStore) FindByID(ctx context.Context, id string) (*db.Product, error) {
	product, err := p.q.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return &product, nil
}

func (p *PgStore) FindAll(ctx context.Context, offset, limit int32) ([]db.Product, error) {
	products, err := p.q.FindAll(ctx, db.FindAllParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	if products == nil {
		products = []db.Product{}
	}
	return products, nil
}

func (p *PgStore) Create(ctx context.Context, params db.CreateParams) (*db.Product, error) {
	product, err := p.q.Create(ctx, params)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", perrors.ErrDuplicateProductID, params.ProductID)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

func (p *PgStore) Update(ctx context.Context, params db.UpdateParams) (*db.Product, error) {
	product, err := p.q.Update(ctx, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

func (p *PgStore) DeleteByID(ctx context.Context, id string) error {
	count, err := p.q.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if count == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// DecrementStock runs the conditional update and, when it matches nothing,
// looks the product up in the same transaction to tell a missing product from short stock.
func (p *PgStore) DecrementStock(ctx context.Context, id string, quantity int32) (*db.Product, error) {
	var product db.Product
	txErr := p.withTransaction(ctx, func(qtx *db.Queries) error {
		var err error
		product, err = qtx.DecrementStock(ctx, db.DecrementStockParams{Quantity: quantity, ProductID: id})
		if err == nil {
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		if _, err = qtx.FindByID(ctx, id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return perrors.ErrProductNotFound
			}
			return fmt.Errorf("failed to find product by ID: %w", err)
		}
		return perrors.ErrInsufficientStock
	})
	if txErr != nil {
		return nil, txErr
	}
	return &product, nil
}

func (p *PgStore) AddStock(ctx context.Context, id string, quantity int32) (*db.Product, error) {
	product, err := p.q.AddStock(ctx, db.AddStockParams{Quantity: quantity, ProductID: id})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		// stock_available is an INTEGER column
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == numericValueOutRange {
			return nil, fmt.Errorf("%w: stock of product %s would overflow", perrors.ErrInvalidQuantity, id)
		}
		return nil, fmt.Errorf("failed to add stock: %w", err)
	}
	return &product, nil
}

func (p *PgStore) withTransaction(ctx context.Context, fn func(qtx *db.Queries) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	qtx := p.q.WithTx(tx)

	err = fn(qtx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("failed to rollback transaction: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
