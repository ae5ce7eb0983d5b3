package product

import (
	"context"

	"foodfacts/internal/domain"
)

// Provider retrieves and formats product data for a product identifier.
type Provider interface {
	GetProduct(ctx context.Context, id string) (*domain.FormattedProduct, error)
}
