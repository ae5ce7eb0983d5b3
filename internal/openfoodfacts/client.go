// Package openfoodfacts is the product-data provider backed by the public
// Open Food Facts API.
package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"foodfacts/internal/config"
	"foodfacts/internal/domain"
	apperrors "foodfacts/internal/errors"

	"go.uber.org/zap"
)

const (
	productPath     = "/api/v2/product/"
	productFields   = "code,product_name,generic_name,brands,quantity,categories_tags,image_url,nutriscore_grade,ingredients_text,nutriments"
	maxResponseSize = 4 << 20
)

var barcodePattern = regexp.MustCompile(`^[0-9]{1,32}$`)

type Client struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg config.UpstreamConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// GetProduct fetches a product by barcode and returns it formatted.
func (c *Client) GetProduct(ctx context.Context, code string) (*domain.FormattedProduct, error) {
	if !barcodePattern.MatchString(code) {
		return nil, apperrors.NewValidationError("invalid product id", apperrors.ValidationDetail{
			Field:   "id",
			Message: "id must be a barcode of 1 to 32 digits",
		})
	}

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := c.baseURL + productPath + url.PathEscape(code) + "?fields=" + url.QueryEscape(productFields)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewUpstreamError("building open food facts request", 0, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if reqCtx.Err() != nil {
			return nil, apperrors.NewUpstreamError("open food facts request timed out", 0, reqCtx.Err())
		}
		return nil, apperrors.NewUpstreamError("calling open food facts", 0, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("open food facts response",
		zap.String("code", code),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product %s not found", code))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewUpstreamError(
			fmt.Sprintf("open food facts returned status %d", resp.StatusCode), resp.StatusCode, nil)
	}

	var body productResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&body); err != nil {
		return nil, apperrors.NewUpstreamError("decoding open food facts response", resp.StatusCode, err)
	}

	if body.Status != 1 || body.Product == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product %s not found", code))
	}

	return formatProduct(code, body), nil
}
