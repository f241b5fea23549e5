package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/fjod/go_cart/pickup-service/internal/domain"
	"github.com/fjod/go_cart/pickup-service/internal/filter"
	"github.com/fjod/go_cart/pickup-service/internal/metrics"
	"github.com/fjod/go_cart/pickup-service/internal/store"
	"golang.org/x/sync/errgroup"
)

// Collaborators are the read ports the search depends on. Stores, Products and
// Notes are required, the optional ones degrade to "no data" when absent.
type Collaborators struct {
	Stores    store.StoreReader
	Products  store.ProductReader
	Notes     store.NoteReader
	Shipping  store.Optional[store.ShippingMethodSearcher]
	Inventory store.Optional[store.InventorySearcher]
	Locations store.Optional[store.LocationSearcher]
	Cart      store.Optional[*CartHandler]
}

// PickupService finds the pickup locations able to serve products of a store
type PickupService struct {
	c       Collaborators
	metrics *metrics.Registry
	workers int
}

// NewPickupService creates the search service. workers bounds the parallel
// resolution of locations, zero or less means GOMAXPROCS.
func NewPickupService(c Collaborators, m *metrics.Registry, workers int) *PickupService {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &PickupService{c: c, metrics: m, workers: workers}
}

// SearchProductPickupLocations returns the locations where one product can be picked up
func (s *PickupService) SearchProductPickupLocations(ctx context.Context, criteria domain.SingleProductCriteria) (result *domain.SearchResult, err error) {
	started := time.Now()
	defer func() { s.metrics.ObserveSearch("product", started, err) }()

	if err := validateCriteria(criteria.SearchCriteria); err != nil {
		return nil, err
	}
	productID := strings.TrimSpace(criteria.Product.ProductID)
	if productID == "" {
		return nil, ErrProductIDRequired
	}

	var (
		st        *domain.Store
		enabled   bool
		products  []domain.Product
		records   []domain.InventoryRecord
		locations []domain.PickupLocation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st, err = s.getStore(gctx, criteria.StoreID)
		return err
	})
	g.Go(func() (err error) {
		enabled, err = s.pickupEnabled(gctx, criteria.StoreID)
		return err
	})
	g.Go(func() (err error) {
		products, err = s.getProducts(gctx, []string{productID})
		return err
	})
	g.Go(func() (err error) {
		records, err = s.searchInventories(gctx, []string{productID})
		return err
	})
	g.Go(func() (err error) {
		locations, err = s.searchLocations(gctx, locationQuery(criteria.SearchCriteria))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !enabled {
		return domain.EmptySearchResult(), nil
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	product := products[0]
	settings := st.Settings

	resolved, err := s.resolveLocations(ctx, locations, func(location domain.PickupLocation) (resolvedLocation, bool) {
		res := Resolve(product, location, records, criteria.Product.Quantity, settings.GlobalTransferEnabled)
		if res.Tier == domain.TierUnavailable {
			return resolvedLocation{}, false
		}
		return resolvedLocation{location: location, tier: res.Tier, quantity: res.Quantity}, true
	})
	if err != nil {
		return nil, err
	}

	return s.buildResult(ctx, criteria.SearchCriteria, resolved, nil)
}

// SearchProductsPickupLocations returns the locations able to serve every
// requested product at once, with the tier of the worst product.
func (s *PickupService) SearchProductsPickupLocations(ctx context.Context, criteria domain.MultipleProductsCriteria) (result *domain.SearchResult, err error) {
	started := time.Now()
	defer func() { s.metrics.ObserveSearch("products", started, err) }()

	if err := validateCriteria(criteria.SearchCriteria); err != nil {
		return nil, err
	}
	requested, productIDs, err := normalizeProducts(criteria.Products)
	if err != nil {
		return nil, err
	}
	filters, err := filter.Parse(criteria.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}

	facetFields := store.ParseFacets(criteria.Facet)
	primaryQuery := store.IndexedLocationQuery{
		LocationQuery: locationQuery(criteria.SearchCriteria),
		Filter:        criteria.Filter,
		Facets:        facetFields,
	}
	narrowed := strings.TrimSpace(criteria.Keyword) != "" || strings.TrimSpace(criteria.Filter) != ""
	needsSecondary := len(facetFields) > 0 && narrowed

	var (
		st        *domain.Store
		enabled   bool
		products  []domain.Product
		records   []domain.InventoryRecord
		primary   *store.IndexedLocationResult
		secondary *store.IndexedLocationResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st, err = s.getStore(gctx, criteria.StoreID)
		return err
	})
	g.Go(func() (err error) {
		enabled, err = s.pickupEnabled(gctx, criteria.StoreID)
		return err
	})
	g.Go(func() (err error) {
		products, err = s.getProducts(gctx, productIDs)
		return err
	})
	g.Go(func() (err error) {
		records, err = s.searchInventories(gctx, productIDs)
		return err
	})
	g.Go(func() (err error) {
		primary, err = s.searchIndexedLocations(gctx, primaryQuery)
		return err
	})
	if needsSecondary {
		g.Go(func() (err error) {
			broad := primaryQuery
			broad.Keyword = ""
			broad.Filter = ""
			secondary, err = s.searchIndexedLocations(gctx, broad)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !enabled {
		return domain.EmptySearchResult(), nil
	}
	if missing := missingProduct(productIDs, products); missing != "" {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, missing)
	}

	aggregator := NewAggregator(products, requested, records, st.Settings)
	aggregate := func(location domain.PickupLocation) (resolvedLocation, bool) {
		tier := aggregator.Aggregate(location)
		if tier == domain.TierUnavailable {
			return resolvedLocation{}, false
		}
		return resolvedLocation{location: location, tier: tier}, true
	}

	filtered, err := s.resolveLocations(ctx, primary.Locations, aggregate)
	if err != nil {
		return nil, err
	}
	all := filtered
	if needsSecondary {
		if all, err = s.resolveLocations(ctx, secondary.Locations, aggregate); err != nil {
			return nil, err
		}
	}

	facets := primary.Facets
	if len(facetFields) > 0 {
		facets = CorrectFacets(primary.Facets, filters, addressesOf(filtered), addressesOf(all))
		s.metrics.ObserveFacetCorrection(len(facets))
	}

	return s.buildResult(ctx, criteria.SearchCriteria, filtered, facets)
}

// SearchCartPickupLocations searches pickup locations for the content of the user's cart
func (s *PickupService) SearchCartPickupLocations(ctx context.Context, criteria domain.CartCriteria) (*domain.SearchResult, error) {
	if err := validateCriteria(criteria.SearchCriteria); err != nil {
		return nil, err
	}
	if criteria.UserID <= 0 {
		return nil, ErrUserIDRequired
	}

	cart, ok := s.c.Cart.Get()
	if !ok {
		return domain.EmptySearchResult(), nil
	}
	products, err := cart.cartProducts(ctx, criteria.UserID)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return domain.EmptySearchResult(), nil
	}

	return s.SearchProductsPickupLocations(ctx, domain.MultipleProductsCriteria{
		SearchCriteria: criteria.SearchCriteria,
		Products:       products,
		Filter:         criteria.Filter,
		Facet:          criteria.Facet,
	})
}

func (s *PickupService) buildResult(ctx context.Context, criteria domain.SearchCriteria, resolved []resolvedLocation, facets []domain.FacetResult) (*domain.SearchResult, error) {
	items, err := newResultBuilder(s.c.Notes, criteria.Culture).build(ctx, resolved)
	if err != nil {
		return nil, err
	}
	if criteria.Sort == "" {
		sortDefault(items)
	}
	if facets == nil {
		facets = []domain.FacetResult{}
	}

	return &domain.SearchResult{
		TotalCount: len(items),
		Items:      page(items, criteria.Skip, criteria.Take),
		Facets:     facets,
	}, nil
}

// resolveLocations runs resolve over the locations in parallel. The surviving
// locations keep the order of the input.
func (s *PickupService) resolveLocations(ctx context.Context, locations []domain.PickupLocation, resolve func(domain.PickupLocation) (resolvedLocation, bool)) ([]resolvedLocation, error) {
	slots := make([]resolvedLocation, len(locations))
	kept := make([]bool, len(locations))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range locations {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i], kept[i] = resolve(locations[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]resolvedLocation, 0, len(locations))
	for i := range slots {
		if kept[i] {
			result = append(result, slots[i])
		}
	}
	s.metrics.ObserveResolution(len(locations), len(result))
	return result, nil
}

func (s *PickupService) getStore(ctx context.Context, storeID string) (*domain.Store, error) {
	st, err := s.c.Stores.GetStore(ctx, storeID)
	if errors.Is(err, store.ErrStoreNotFound) || (err == nil && st == nil) {
		return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, storeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store %s: %w", storeID, err)
	}
	return st, nil
}

func (s *PickupService) getProducts(ctx context.Context, productIDs []string) ([]domain.Product, error) {
	products, err := s.c.Products.GetProducts(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

func (s *PickupService) pickupEnabled(ctx context.Context, storeID string) (bool, error) {
	shipping, ok := s.c.Shipping.Get()
	if !ok {
		return false, nil
	}
	enabled, err := shipping.HasActiveShippingMethod(ctx, storeID, domain.BuyOnlinePickupInStoreCode)
	if err != nil {
		return false, fmt.Errorf("failed to check shipping methods: %w", err)
	}
	return enabled, nil
}

func (s *PickupService) searchInventories(ctx context.Context, productIDs []string) ([]domain.InventoryRecord, error) {
	inventory, ok := s.c.Inventory.Get()
	if !ok {
		return nil, nil
	}
	records, err := inventory.SearchInventories(ctx, productIDs, true)
	if err != nil {
		return nil, fmt.Errorf("failed to search inventories: %w", err)
	}
	return records, nil
}

func (s *PickupService) searchLocations(ctx context.Context, query store.LocationQuery) ([]domain.PickupLocation, error) {
	locations, ok := s.c.Locations.Get()
	if !ok {
		return nil, nil
	}
	found, err := locations.SearchLocations(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search pickup locations: %w", err)
	}
	return found, nil
}

func (s *PickupService) searchIndexedLocations(ctx context.Context, query store.IndexedLocationQuery) (*store.IndexedLocationResult, error) {
	locations, ok := s.c.Locations.Get()
	if !ok {
		return &store.IndexedLocationResult{}, nil
	}
	found, err := locations.SearchIndexedLocations(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search indexed pickup locations: %w", err)
	}
	if found == nil {
		return &store.IndexedLocationResult{}, nil
	}
	return found, nil
}

func validateCriteria(criteria domain.SearchCriteria) error {
	if strings.TrimSpace(criteria.StoreID) == "" {
		return ErrStoreIDRequired
	}
	if criteria.Skip < 0 || criteria.Take < 0 {
		return ErrInvalidPaging
	}
	return nil
}

func locationQuery(criteria domain.SearchCriteria) store.LocationQuery {
	return store.LocationQuery{
		StoreID:  criteria.StoreID,
		IsActive: true,
		Keyword:  criteria.Keyword,
		Sort:     criteria.Sort,
	}
}

// normalizeProducts returns the requested quantity per product id and the ids in order
func normalizeProducts(items map[string]domain.ProductRequestItem) (map[string]int64, []string, error) {
	if len(items) == 0 {
		return nil, nil, ErrNoProducts
	}

	requested := make(map[string]int64, len(items))
	for key, item := range items {
		id := strings.TrimSpace(item.ProductID)
		if id == "" {
			id = strings.TrimSpace(key)
		}
		if id == "" {
			return nil, nil, ErrProductIDRequired
		}
		requested[id] += item.Quantity
	}

	ids := make([]string, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return requested, ids, nil
}

func missingProduct(productIDs []string, products []domain.Product) string {
	found := make(map[string]struct{}, len(products))
	for _, p := range products {
		found[p.ID] = struct{}{}
	}
	for _, id := range productIDs {
		if _, ok := found[id]; !ok {
			return id
		}
	}
	return ""
}
