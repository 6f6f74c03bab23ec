// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/abgdnv/inventory/internal/idgen"
	"github.com/abgdnv/inventory/internal/service"
	"github.com/abgdnv/inventory/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const (
	productsPath = "/api/v1/products"
	defaultLimit = 50
	maxLimit     = 1000
)

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new Handler backed by service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the product service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route(productsPath, func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)
		r.Put("/decrement-stock/{id}/{quantity}", h.DecrementStock)
		r.Put("/add-to-stock/{id}/{quantity}", h.AddStock)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err, id, "Failed to retrieve product")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// FindAll returns a page of products. offset defaults to 0 and limit to 50.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	offset, ok := web.QueryInt32(r, w, h.logger, "offset", 0, 1<<31-1, 0)
	if !ok {
		return
	}
	limit, ok := web.QueryInt32(r, w, h.logger, "limit", 1, maxLimit, defaultLimit)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to find all products", "limit", limit, "offset", offset)
	list, err := h.service.FindAll(r.Context(), offset, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// Create stores a new product under a freshly generated ID.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto service.ProductCreateDto
	if !h.decodeValid(w, r, &dto) {
		return
	}

	created, err := h.service.Create(r.Context(), dto)
	if err != nil {
		if errors.Is(err, idgen.ErrGuardTimeout) {
			h.logger.WarnContext(r.Context(), "Product ID generator busy", "error", err)
			w.Header().Set("Retry-After", "1")
			web.RespondError(w, h.logger, http.StatusServiceUnavailable, "Product ID generator is busy, retry later")
			return
		}
		h.logger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	w.Header().Set("Location", productsPath+"/"+created.ID)
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var dto service.ProductUpdateDto
	if !h.decodeValid(w, r, &dto) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, dto)
	if err != nil {
		h.respondServiceError(w, r, err, id, "Failed to update product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated", "product_id", updated.ID)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err, id, "Failed to delete product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted", "product_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DecrementStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	quantity, ok := web.ParsePathInt32(w, r, h.logger, "quantity", 0)
	if !ok {
		return
	}
	updated, err := h.service.DecrementStock(r.Context(), id, quantity)
	if err != nil {
		h.respondServiceError(w, r, err, id, "Failed to decrement stock")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

func (h *Handler) AddStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	quantity, ok := web.ParsePathInt32(w, r, h.logger, "quantity", 0)
	if !ok {
		return
	}
	updated, err := h.service.AddStock(r.Context(), id, quantity)
	if err != nil {
		h.respondServiceError(w, r, err, id, "Failed to add stock")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// parseID reads the {id} path parameter, which must be all digits.
func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := h.validate.Var(id, "required,numeric,max=20"); err != nil {
		web.RespondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Invalid product ID: %s", id))
		return "", false
	}
	return id, true
}

// decodeValid decodes the JSON body into dst and validates it, answering 400 on failure.
func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		if fields, ok := web.ValidationErrors(err); ok {
			h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", fields)
			web.RespondJSON(w, h.logger, http.StatusBadRequest, map[string]any{"validation_errors": fields})
			return false
		}
		h.logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, id, message string) {
	switch {
	case errors.Is(err, perrors.ErrProductNotFound):
		h.logger.WarnContext(r.Context(), "Product not found", "product_id", id)
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
	case errors.Is(err, perrors.ErrInsufficientStock):
		web.RespondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Insufficient stock for product %s", id))
	case errors.Is(err, perrors.ErrInvalidQuantity):
		web.RespondError(w, h.logger, http.StatusBadRequest, perrors.ErrInvalidQuantity.Error())
	default:
		h.logger.ErrorContext(r.Context(), message, "product_id", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("%s %s", message, id))
	}
}
