package openfoodfacts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"foodfacts/internal/config"
	apperrors "foodfacts/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.UpstreamConfig{
		BaseURL:   srv.URL,
		Timeout:   2 * time.Second,
		UserAgent: "foodfacts-test/1.0",
	}, zap.NewNop())
}

func TestGetProduct_Found(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/product/3017620422003", r.URL.Path)
		assert.Equal(t, productFields, r.URL.Query().Get("fields"))
		assert.Equal(t, "foodfacts-test/1.0", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"code": "3017620422003",
			"status": 1,
			"status_verbose": "product found",
			"product": {
				"code": "3017620422003",
				"product_name": "Nutella",
				"brands": "Ferrero, Nutella",
				"quantity": "400 g",
				"categories_tags": ["en:spreads", "en:sweet-spreads", "fr:pates-a-tartiner"],
				"image_url": "https://images.openfoodfacts.org/nutella.jpg",
				"nutriscore_grade": "e",
				"ingredients_text": "Sugar, palm oil, hazelnuts",
				"nutriments": {
					"energy-kcal_100g": 539,
					"fat_100g": 30.9,
					"sugars_100g": "56.3",
					"proteins_100g": 6.3,
					"salt_100g": "n/a"
				}
			}
		}`))
	})

	product, err := client.GetProduct(context.Background(), "3017620422003")
	require.NoError(t, err)

	assert.Equal(t, "3017620422003", product.ID)
	assert.Equal(t, "Nutella", product.Name)
	assert.Equal(t, "Ferrero", product.Brand)
	assert.Equal(t, "400 g", product.Quantity)
	assert.Equal(t, []string{"spreads", "sweet-spreads", "pates-a-tartiner"}, product.Categories)
	assert.Equal(t, "https://images.openfoodfacts.org/nutella.jpg", product.ImageURL)
	assert.Equal(t, "E", product.NutriScore)
	assert.Equal(t, "Sugar, palm oil, hazelnuts", product.Ingredients)

	require.NotNil(t, product.Nutrition)
	assert.InDelta(t, 539, *product.Nutrition.EnergyKcal, 0.001)
	assert.InDelta(t, 30.9, *product.Nutrition.Fat, 0.001)
	assert.InDelta(t, 56.3, *product.Nutrition.Sugars, 0.001)
	assert.InDelta(t, 6.3, *product.Nutrition.Proteins, 0.001)
	assert.Nil(t, product.Nutrition.Salt)
	assert.Nil(t, product.Nutrition.Fiber)
}

func TestGetProduct_MinimalRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"123","status":1,"product":{"generic_name":"Milk","brands":"Acme","nutriscore_grade":"unknown"}}`))
	})

	product, err := client.GetProduct(context.Background(), "123")
	require.NoError(t, err)

	assert.Equal(t, "123", product.ID)
	assert.Equal(t, "Milk", product.Name)
	assert.Equal(t, "Acme", product.Brand)
	assert.Empty(t, product.NutriScore)
	assert.Nil(t, product.Categories)
	assert.Nil(t, product.Nutrition)
}

func TestGetProduct_NotFoundStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"999","status":0,"status_verbose":"product not found"}`))
	})

	product, err := client.GetProduct(context.Background(), "999")
	assert.Nil(t, product)

	nf, ok := apperrors.IsNotFoundError(err)
	require.True(t, ok, "expected NotFoundError, got %T", err)
	assert.Equal(t, "product 999 not found", nf.Message)
}

func TestGetProduct_NotFoundBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"999","status":0,"status_verbose":"product not found"}`))
	})

	_, err := client.GetProduct(context.Background(), "999")

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok, "expected NotFoundError, got %T", err)
}

func TestGetProduct_UpstreamFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.GetProduct(context.Background(), "123")

	ue, ok := apperrors.IsUpstreamError(err)
	require.True(t, ok, "expected UpstreamError, got %T", err)
	assert.Equal(t, http.StatusServiceUnavailable, ue.StatusCode)
}

func TestGetProduct_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	})

	_, err := client.GetProduct(context.Background(), "123")

	ue, ok := apperrors.IsUpstreamError(err)
	require.True(t, ok, "expected UpstreamError, got %T", err)
	assert.Equal(t, "decoding open food facts response", ue.Message)
	assert.NotNil(t, ue.Cause)
}

func TestGetProduct_InvalidBarcodeSkipsUpstream(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	for _, code := range []string{"", "abc", "12-34", "123456789012345678901234567890123"} {
		_, err := client.GetProduct(context.Background(), code)
		_, ok := apperrors.IsValidationError(err)
		assert.True(t, ok, "code %q: expected ValidationError, got %T", code, err)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestGetProduct_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	client := NewClient(config.UpstreamConfig{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, zap.NewNop())

	_, err := client.GetProduct(context.Background(), "123")

	_, ok := apperrors.IsUpstreamError(err)
	assert.True(t, ok, "expected UpstreamError, got %T", err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestGetProduct_CallerCanceled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":1,"product":{}}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetProduct(ctx, "123")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrimaryBrand(t *testing.T) {
	assert.Equal(t, "Acme", primaryBrand("Acme"))
	assert.Equal(t, "Acme", primaryBrand("  Acme , Acme Dairy"))
	assert.Equal(t, "", primaryBrand(""))
}

func TestNutriScore(t *testing.T) {
	assert.Equal(t, "A", nutriScore("a"))
	assert.Equal(t, "", nutriScore("not-applicable"))
	assert.Equal(t, "", nutriScore("UNKNOWN"))
}
