package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fjod/go_cart/pickup-service/internal/domain"
	"github.com/fjod/go_cart/pickup-service/internal/metrics"
	"github.com/fjod/go_cart/pickup-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SearcherMock records the last criteria of every search variant
type SearcherMock struct {
	result *domain.SearchResult
	err    error

	single   domain.SingleProductCriteria
	multiple domain.MultipleProductsCriteria
	cart     domain.CartCriteria
}

func (m *SearcherMock) SearchProductPickupLocations(_ context.Context, c domain.SingleProductCriteria) (*domain.SearchResult, error) {
	m.single = c
	return m.result, m.err
}

func (m *SearcherMock) SearchProductsPickupLocations(_ context.Context, c domain.MultipleProductsCriteria) (*domain.SearchResult, error) {
	m.multiple = c
	return m.result, m.err
}

func (m *SearcherMock) SearchCartPickupLocations(_ context.Context, c domain.CartCriteria) (*domain.SearchResult, error) {
	m.cart = c
	return m.result, m.err
}

func sampleResult() *domain.SearchResult {
	qty := int64(7)
	return &domain.SearchResult{
		TotalCount: 1,
		Items: []domain.ResultItem{{
			Location:          domain.PickupLocation{ID: "loc-a", Name: "Alpha"},
			AvailabilityType:  domain.TierToday,
			AvailableQuantity: &qty,
			Note:              "Today",
		}},
		Facets: []domain.FacetResult{},
	}
}

func newTestRouter(m *SearcherMock) http.Handler {
	return NewRouter(NewPickupHandler(m, 5*time.Second), metrics.NewRegistry(), 5*time.Second)
}

func TestProductPickupLocations_Success(t *testing.T) {
	m := &SearcherMock{result: sampleResult()}
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet,
		"/api/v1/stores/store-1/products/p-1/pickup-locations?quantity=3&keyword=sea&sort=name:desc&skip=2&take=5&culture=en-US", nil)

	newTestRouter(m).ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "store-1", m.single.StoreID)
	assert.Equal(t, domain.ProductRequestItem{ProductID: "p-1", Quantity: 3}, m.single.Product)
	assert.Equal(t, "sea", m.single.Keyword)
	assert.Equal(t, "name:desc", m.single.Sort)
	assert.Equal(t, 2, m.single.Skip)
	assert.Equal(t, 5, m.single.Take)
	assert.Equal(t, "en-US", m.single.Culture)

	var response domain.SearchResult
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, 1, response.TotalCount)
	require.Len(t, response.Items, 1)
	assert.Equal(t, "loc-a", response.Items[0].Location.ID)
	assert.Equal(t, domain.TierToday, response.Items[0].AvailabilityType)
	assert.Equal(t, int64(7), *response.Items[0].AvailableQuantity)
}

func TestProductPickupLocations_Defaults(t *testing.T) {
	m := &SearcherMock{result: sampleResult()}
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/v1/stores/store-1/products/p-1/pickup-locations", nil)

	newTestRouter(m).ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, int64(1), m.single.Product.Quantity)
	assert.Equal(t, 0, m.single.Skip)
	assert.Equal(t, DefaultTake, m.single.Take)
}

func TestProductPickupLocations_BadParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
		code  string
	}{
		{name: "skip", query: "skip=abc", code: "invalid_request"},
		{name: "take", query: "take=1.5", code: "invalid_request"},
		{name: "quantity", query: "quantity=many", code: "invalid_quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &SearcherMock{result: sampleResult()}
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/api/v1/stores/store-1/products/p-1/pickup-locations?"+tt.query, nil)

			newTestRouter(m).ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			var response ErrorResponse
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
			assert.Equal(t, tt.code, response.Code)
		})
	}
}

func TestProductPickupLocations_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "invalid paging", err: service.ErrInvalidPaging, status: http.StatusBadRequest, code: "invalid_argument"},
		{name: "store not found", err: service.ErrStoreNotFound, status: http.StatusNotFound, code: "not_found"},
		{name: "deadline", err: context.DeadlineExceeded, status: http.StatusGatewayTimeout, code: "timeout"},
		{name: "internal", err: assert.AnError, status: http.StatusInternalServerError, code: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &SearcherMock{err: tt.err}
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/api/v1/stores/store-1/products/p-1/pickup-locations", nil)

			newTestRouter(m).ServeHTTP(recorder, request)

			assert.Equal(t, tt.status, recorder.Code)
			var response ErrorResponse
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
			assert.Equal(t, tt.code, response.Code)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", response.Error)
			}
		})
	}
}

func TestSearchPickupLocations_Success(t *testing.T) {
	m := &SearcherMock{result: sampleResult()}
	body := `{
		"products": {"p-1": {"quantity": 2}, "p-2": {"product_id": "p-2", "quantity": 1}},
		"keyword": "alpha",
		"filter": "country:\"USA\"",
		"facet": "country,city",
		"take": 10
	}`
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/v1/stores/store-1/pickup-locations/search", strings.NewReader(body))

	newTestRouter(m).ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "store-1", m.multiple.StoreID)
	assert.Equal(t, map[string]domain.ProductRequestItem{
		"p-1": {ProductID: "p-1", Quantity: 2},
		"p-2": {ProductID: "p-2", Quantity: 1},
	}, m.multiple.Products)
	assert.Equal(t, "alpha", m.multiple.Keyword)
	assert.Equal(t, `country:"USA"`, m.multiple.Filter)
	assert.Equal(t, "country,city", m.multiple.Facet)
	assert.Equal(t, 0, m.multiple.Skip)
	assert.Equal(t, 10, m.multiple.Take)
}

func TestSearchPickupLocations_InvalidJSON(t *testing.T) {
	m := &SearcherMock{result: sampleResult()}
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/v1/stores/store-1/pickup-locations/search", strings.NewReader("{"))

	newTestRouter(m).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Empty(t, m.multiple.StoreID)
}

func TestSearchPickupLocations_NoProducts(t *testing.T) {
	m := &SearcherMock{err: service.ErrNoProducts}
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/v1/stores/store-1/pickup-locations/search", strings.NewReader(`{}`))

	newTestRouter(m).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCartPickupLocations(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := &SearcherMock{result: sampleResult()}
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, `/api/v1/stores/store-1/carts/42/pickup-locations?facet=city&filter=city:Seattle`, nil)

		newTestRouter(m).ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, int64(42), m.cart.UserID)
		assert.Equal(t, "city", m.cart.Facet)
		assert.Equal(t, "city:Seattle", m.cart.Filter)
		assert.Equal(t, DefaultTake, m.cart.Take)
	})

	t.Run("invalid user id", func(t *testing.T) {
		for _, id := range []string{"abc", "0", "-3"} {
			m := &SearcherMock{result: sampleResult()}
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/api/v1/stores/store-1/carts/"+id+"/pickup-locations", nil)

			newTestRouter(m).ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusBadRequest, recorder.Code, id)
			assert.Zero(t, m.cart.UserID)
		}
	})
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	router := newTestRouter(&SearcherMock{})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestRequestIDMiddleware_KeepsHeader(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = getRequestID(r.Context())
	}))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "req-123")
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", recorder.Header().Get("X-Request-ID"))
}
