package product

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"foodfacts/internal/domain"
	apperrors "foodfacts/internal/errors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	traceHeader = "X-Trace-Id"

	// statusClientClosedRequest is the non-standard 499 used when the caller
	// went away before the lookup finished.
	statusClientClosedRequest = 499
)

type Controller struct {
	provider Provider
	logger   *zap.Logger
}

func NewController(provider Provider, logger *zap.Logger) *Controller {
	return &Controller{
		provider: provider,
		logger:   logger,
	}
}

// GetProduct forwards id to the provider and returns its record or error as is.
func (c *Controller) GetProduct(ctx context.Context, id string) (*domain.FormattedProduct, error) {
	return c.provider.GetProduct(ctx, id)
}

func (c *Controller) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))
	w.Header().Set(traceHeader, traceID)

	id := chi.URLParam(r, "id")

	product, err := c.GetProduct(r.Context(), id)
	if err != nil {
		c.handleProviderError(w, traceID, id, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, product)
}

func (c *Controller) handleProviderError(w http.ResponseWriter, traceID, id string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		logger.Warn("invalid product id", zap.String("productId", id), zap.Error(err))
		c.writeErrorResponse(w, traceID, id, http.StatusBadRequest, "VALIDATION_ERROR", ve.Message, ve.Details)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		logger.Warn("product not found", zap.String("productId", id))
		c.writeErrorResponse(w, traceID, id, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		return
	}

	if errors.Is(err, context.Canceled) {
		logger.Warn("product lookup canceled by client", zap.String("productId", id), zap.Error(err))
		c.writeErrorResponse(w, traceID, id, statusClientClosedRequest, "CLIENT_CLOSED_REQUEST", "request canceled", nil)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		logger.Error("product lookup timed out", zap.String("productId", id), zap.Error(err))
		c.writeErrorResponse(w, traceID, id, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "product provider timed out", nil)
		return
	}

	if _, ok := apperrors.IsUpstreamError(err); ok {
		logger.Error("product provider failed", zap.String("productId", id), zap.Error(err))
		c.writeErrorResponse(w, traceID, id, http.StatusBadGateway, "UPSTREAM_ERROR", "product provider is unavailable", nil)
		return
	}

	logger.Error("unexpected error", zap.String("productId", id), zap.Error(err))
	c.writeErrorResponse(w, traceID, id, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred", nil)
}

func (c *Controller) writeErrorResponse(w http.ResponseWriter, traceID, id string, status int, code, message string, details []apperrors.ValidationDetail) {
	c.writeJSON(w, status, ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		ProductID: id,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
