// Package store persists products and the product ID counter in PostgreSQL.
package store

import (
	"context"

	"github.com/abgdnv/inventory/internal/store/db"
)

// ProductStore is an interface for product storage operations.
type ProductStore interface {
	// FindByID returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*db.Product, error)

	// FindAll returns a page of products, newest first. The slice is empty when nothing matches.
	FindAll(ctx context.Context, offset, limit int32) ([]db.Product, error)

	// Create inserts a product under an ID issued by the caller.
	// Returns ErrDuplicateProductID if that ID is taken.
	Create(ctx context.Context, params db.CreateParams) (*db.Product, error)

	// Update replaces the editable fields of a product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, params db.UpdateParams) (*db.Product, error)

	// DeleteByID returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id string) error

	// DecrementStock takes quantity units out of stock in one statement.
	// Returns ErrProductNotFound or ErrInsufficientStock.
	DecrementStock(ctx context.Context, id string, quantity int32) (*db.Product, error)

	// AddStock puts quantity units into stock.
	// Returns ErrProductNotFound if no product exists with the given ID.
	AddStock(ctx context.Context, id string, quantity int32) (*db.Product, error)
}
