package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fjod/go_cart/pickup-service/internal/domain"
	"github.com/fjod/go_cart/pickup-service/internal/service"
	"github.com/go-chi/chi/v5"
)

// DefaultTake is the page size used when the request does not set one
const DefaultTake = 20

// Searcher runs pickup location searches
type Searcher interface {
	SearchProductPickupLocations(ctx context.Context, criteria domain.SingleProductCriteria) (*domain.SearchResult, error)
	SearchProductsPickupLocations(ctx context.Context, criteria domain.MultipleProductsCriteria) (*domain.SearchResult, error)
	SearchCartPickupLocations(ctx context.Context, criteria domain.CartCriteria) (*domain.SearchResult, error)
}

type PickupHandler struct {
	searcher Searcher
	timeout  time.Duration
}

func NewPickupHandler(searcher Searcher, timeout time.Duration) *PickupHandler {
	return &PickupHandler{
		searcher: searcher,
		timeout:  timeout,
	}
}

type ProductRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// SearchRequestDTO is the body of a multi-product search
type SearchRequestDTO struct {
	Products map[string]ProductRequestDTO `json:"products"`
	Culture  string                       `json:"culture"`
	Keyword  string                       `json:"keyword"`
	Filter   string                       `json:"filter"`
	Facet    string                       `json:"facet"`
	Sort     string                       `json:"sort"`
	Skip     *int                         `json:"skip"`
	Take     *int                         `json:"take"`
}

// ProductPickupLocations handles GET /stores/{storeID}/products/{productID}/pickup-locations
func (h *PickupHandler) ProductPickupLocations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	query := r.URL.Query()
	criteria, err := searchCriteria(chi.URLParam(r, "storeID"), query)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	quantity, err := intParam(query, "quantity", 1)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be an integer")
		return
	}

	result, err := h.searcher.SearchProductPickupLocations(ctx, domain.SingleProductCriteria{
		SearchCriteria: criteria,
		Product: domain.ProductRequestItem{
			ProductID: chi.URLParam(r, "productID"),
			Quantity:  int64(quantity),
		},
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// SearchPickupLocations handles POST /stores/{storeID}/pickup-locations/search
func (h *PickupHandler) SearchPickupLocations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SearchRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	products := make(map[string]domain.ProductRequestItem, len(req.Products))
	for id, p := range req.Products {
		if p.ProductID == "" {
			p.ProductID = id
		}
		products[id] = domain.ProductRequestItem{ProductID: p.ProductID, Quantity: p.Quantity}
	}

	criteria := domain.MultipleProductsCriteria{
		SearchCriteria: domain.SearchCriteria{
			StoreID: chi.URLParam(r, "storeID"),
			Culture: req.Culture,
			Keyword: req.Keyword,
			Sort:    req.Sort,
			Skip:    valueOr(req.Skip, 0),
			Take:    valueOr(req.Take, DefaultTake),
		},
		Products: products,
		Filter:   req.Filter,
		Facet:    req.Facet,
	}

	result, err := h.searcher.SearchProductsPickupLocations(ctx, criteria)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// CartPickupLocations handles GET /stores/{storeID}/carts/{userID}/pickup-locations
func (h *PickupHandler) CartPickupLocations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "user id must be positive")
		return
	}

	query := r.URL.Query()
	criteria, err := searchCriteria(chi.URLParam(r, "storeID"), query)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.searcher.SearchCartPickupLocations(ctx, domain.CartCriteria{
		SearchCriteria: criteria,
		UserID:         userID,
		Filter:         query.Get("filter"),
		Facet:          query.Get("facet"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *PickupHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("[%s] pickup search failed: %v", getRequestID(r.Context()), err)
	handleGRPCError(w, service.ToStatus(err))
}

func searchCriteria(storeID string, query url.Values) (domain.SearchCriteria, error) {
	skip, err := intParam(query, "skip", 0)
	if err != nil {
		return domain.SearchCriteria{}, err
	}
	take, err := intParam(query, "take", DefaultTake)
	if err != nil {
		return domain.SearchCriteria{}, err
	}

	return domain.SearchCriteria{
		StoreID: storeID,
		Culture: query.Get("culture"),
		Keyword: query.Get("keyword"),
		Sort:    query.Get("sort"),
		Skip:    skip,
		Take:    take,
	}, nil
}

type paramError struct{ name string }

func (e paramError) Error() string { return e.name + " must be an integer" }

func intParam(query url.Values, name string, defaultValue int) (int, error) {
	raw := query.Get(name)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, paramError{name: name}
	}
	return v, nil
}

func valueOr(v *int, defaultValue int) int {
	if v == nil {
		return defaultValue
	}
	return *v
}
