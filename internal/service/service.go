// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/abgdnv/inventory/internal/store"
	"github.com/abgdnv/inventory/internal/store/db"
	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/abgdnv/inventory/pkg/messaging/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// ProductService defines the methods for managing products.
type ProductService interface {
	// FindByID returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*ProductDto, error)

	// FindAll returns a page of products, newest first.
	FindAll(ctx context.Context, offset, limit int32) ([]ProductDto, error)

	// Create issues a new product ID and stores the product under it.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id string, product ProductUpdateDto) (*ProductDto, error)

	// DeleteByID returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id string) error

	// DecrementStock returns ErrProductNotFound, ErrInsufficientStock or ErrInvalidQuantity.
	DecrementStock(ctx context.Context, id string, quantity int32) (*ProductDto, error)

	// AddStock returns ErrProductNotFound or ErrInvalidQuantity.
	AddStock(ctx context.Context, id string, quantity int32) (*ProductDto, error)
}

// IDGenerator issues product IDs. *idgen.Generator satisfies it.
type IDGenerator interface {
	GenerateNext(ctx context.Context) (string, error)
}

// Service implements ProductService.
type Service struct {
	repository store.ProductStore
	ids        IDGenerator
	publisher  messaging.Publisher
	logger     *slog.Logger
}

// NewService creates a new Service. A nil publisher disables events.
func NewService(repo store.ProductStore, ids IDGenerator, publisher messaging.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &Service{
		repository: repo,
		ids:        ids,
		publisher:  publisher,
		logger:     logger.With("component", "product-service"),
	}
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Name           string `json:"name"            validate:"required,max=100"`
	Description    string `json:"description"     validate:"max=1000"`
	Price          int64  `json:"price"           validate:"min=0"`
	StockAvailable int32  `json:"stock_available" validate:"min=0"`
}

// ProductUpdateDto replaces every editable field of a product.
type ProductUpdateDto struct {
	Name           string `json:"name"            validate:"required,max=100"`
	Description    string `json:"description"     validate:"max=1000"`
	Price          int64  `json:"price"           validate:"min=0"`
	StockAvailable int32  `json:"stock_available" validate:"min=0"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID             string    `json:"product_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Price          int64     `json:"price"`
	StockAvailable int32     `json:"stock_available"`
	CreatedAt      time.Time `json:"created_at"`
}

func (s *Service) FindByID(ctx context.Context, id string) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return toDto(product), nil
}

func (s *Service) FindAll(ctx context.Context, offset, limit int32) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))
	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}
	return productDTOs, nil
}

// Create takes the next product ID, inserts the product and publishes products.created.
// A generator failure is returned unchanged so callers can tell ErrGuardTimeout apart.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	id, err := s.ids.GenerateNext(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.repository.Create(ctx, db.CreateParams{
		ProductID:      id,
		Name:           product.Name,
		Description:    product.Description,
		Price:          product.Price,
		StockAvailable: product.StockAvailable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Product created", "product_id", p.ProductID)

	s.publish(ctx, events.ProductCreatedEvent{
		Carrier:        traceCarrier(ctx),
		ProductID:      p.ProductID,
		Name:           p.Name,
		Price:          p.Price,
		StockAvailable: p.StockAvailable,
		CreatedAt:      p.CreatedAt,
	})
	return toDto(p), nil
}

func (s *Service) Update(ctx context.Context, id string, product ProductUpdateDto) (*ProductDto, error) {
	updated, err := s.repository.Update(ctx, db.UpdateParams{
		ProductID:      id,
		Name:           product.Name,
		Description:    product.Description,
		Price:          product.Price,
		StockAvailable: product.StockAvailable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}
	return toDto(updated), nil
}

func (s *Service) DeleteByID(ctx context.Context, id string) error {
	if err := s.repository.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product with ID %s: %w", id, err)
	}
	return nil
}

func (s *Service) DecrementStock(ctx context.Context, id string, quantity int32) (*ProductDto, error) {
	if quantity <= 0 {
		return nil, perrors.ErrInvalidQuantity
	}
	p, err := s.repository.DecrementStock(ctx, id, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to decrement stock for product with ID %s: %w", id, err)
	}
	s.publishStockChanged(ctx, p, -quantity)
	return toDto(p), nil
}

func (s *Service) AddStock(ctx context.Context, id string, quantity int32) (*ProductDto, error) {
	if quantity <= 0 {
		return nil, perrors.ErrInvalidQuantity
	}
	p, err := s.repository.AddStock(ctx, id, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to add stock for product with ID %s: %w", id, err)
	}
	s.publishStockChanged(ctx, p, quantity)
	return toDto(p), nil
}

func (s *Service) publishStockChanged(ctx context.Context, p *db.Product, delta int32) {
	s.publish(ctx, events.StockChangedEvent{
		Carrier:        traceCarrier(ctx),
		ProductID:      p.ProductID,
		Delta:          delta,
		StockAvailable: p.StockAvailable,
		ChangedAt:      time.Now().UTC(),
	})
}

// publish logs and drops publisher failures; the write has already been committed.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "subject", event.Subject(), "error", err)
	}
}

func traceCarrier(ctx context.Context) map[string]string {
	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier
}

func toDto(product *db.Product) *ProductDto {
	return &ProductDto{
		ID:             product.ProductID,
		Name:           product.Name,
		Description:    product.Description,
		Price:          product.Price,
		StockAvailable: product.StockAvailable,
		CreatedAt:      product.CreatedAt,
	}
}
