package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fjod/go_cart/pickup-service/internal/domain"
	"github.com/fjod/go_cart/pickup-service/internal/filter"
)

// MemoryStore implements every collaborator port with in-memory storage.
// It backs the seeded demo deployment and the service tests.
type MemoryStore struct {
	mu              sync.RWMutex
	stores          map[string]domain.Store
	shippingMethods map[string]map[string]bool       // storeID -> code -> active
	products        map[string]domain.Product        // productID -> product
	stocks          map[string]map[string]int64      // productID -> fulfillmentCenterID -> quantity
	locations       map[string]domain.PickupLocation // locationID -> location
	notes           map[noteKey]string
}

type noteKey struct {
	key     string
	culture string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stores:          make(map[string]domain.Store),
		shippingMethods: make(map[string]map[string]bool),
		products:        make(map[string]domain.Product),
		stocks:          make(map[string]map[string]int64),
		locations:       make(map[string]domain.PickupLocation),
		notes:           make(map[noteKey]string),
	}
}

// SetStore adds or replaces a store
func (s *MemoryStore) SetStore(store domain.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stores[store.ID] = store
}

// SetShippingMethod activates or deactivates a shipping method for a store
func (s *MemoryStore) SetShippingMethod(storeID, code string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	methods, ok := s.shippingMethods[storeID]
	if !ok {
		methods = make(map[string]bool)
		s.shippingMethods[storeID] = methods
	}
	methods[code] = active
}

// SetProduct adds or replaces a product
func (s *MemoryStore) SetProduct(product domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[product.ID] = product
}

// SetStock sets the stock of a product in a fulfillment center
func (s *MemoryStore) SetStock(productID, fulfillmentCenterID string, quantity int64) error {
	if quantity < 0 {
		return ErrNegativeStock
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	centers, ok := s.stocks[productID]
	if !ok {
		centers = make(map[string]int64)
		s.stocks[productID] = centers
	}
	centers[fulfillmentCenterID] = quantity
	return nil
}

// SetLocation adds or replaces a pickup location
func (s *MemoryStore) SetLocation(location domain.PickupLocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[location.ID] = location
}

// SetNote sets the localized note override for a setting key
func (s *MemoryStore) SetNote(key, culture, note string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[noteKey{key: key, culture: culture}] = note
}

// GetStore returns the store with the given id
func (s *MemoryStore) GetStore(_ context.Context, storeID string) (*domain.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	store, ok := s.stores[storeID]
	if !ok {
		return nil, ErrStoreNotFound
	}
	return &store, nil
}

// HasActiveShippingMethod reports whether the store has the shipping method active
func (s *MemoryStore) HasActiveShippingMethod(_ context.Context, storeID, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shippingMethods[storeID][code], nil
}

// GetProducts returns the known products among the given ids
func (s *MemoryStore) GetProducts(_ context.Context, productIDs []string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Product, 0, len(productIDs))
	for _, id := range productIDs {
		if product, exists := s.products[id]; exists {
			result = append(result, product)
		}
	}
	return result, nil
}

// SearchInventories returns stock records ordered by product and fulfillment center
func (s *MemoryStore) SearchInventories(_ context.Context, productIDs []string, inStockOnly bool) ([]domain.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.InventoryRecord, 0)
	for _, productID := range productIDs {
		centers := s.stocks[productID]
		ids := make([]string, 0, len(centers))
		for id := range centers {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			quantity := centers[id]
			if inStockOnly && quantity <= 0 {
				continue
			}
			result = append(result, domain.InventoryRecord{
				ProductID:           productID,
				FulfillmentCenterID: id,
				InStockQuantity:     quantity,
			})
		}
	}
	return result, nil
}

// SearchLocations returns the locations of the store matching the keyword
func (s *MemoryStore) SearchLocations(_ context.Context, query LocationQuery) ([]domain.PickupLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := s.match(query, nil)
	SortLocations(result, query.Sort)
	return result, nil
}

// SearchIndexedLocations behaves like a search index: keyword and filter
// narrow the match set. Each facet is counted over the locations matching the
// keyword and every filter except the ones on the facet field itself, so the
// sibling terms of a filtered field stay visible.
func (s *MemoryStore) SearchIndexedLocations(_ context.Context, query IndexedLocationQuery) (*IndexedLocationResult, error) {
	filters, err := filter.Parse(query.Filter)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	locations := s.match(query.LocationQuery, filters)
	SortLocations(locations, query.Sort)

	facets := make([]domain.FacetResult, 0, len(query.Facets))
	for _, field := range query.Facets {
		scope := s.match(query.LocationQuery, withoutField(filters, field))
		facets = append(facets, CountFacets(scope, []string{field})...)
	}

	return &IndexedLocationResult{
		Locations: locations,
		Facets:    facets,
	}, nil
}

func withoutField(filters []filter.TermFilter, field string) []filter.TermFilter {
	result := make([]filter.TermFilter, 0, len(filters))
	for _, f := range filters {
		if !strings.EqualFold(f.FieldName, field) {
			result = append(result, f)
		}
	}
	return result
}

func (s *MemoryStore) match(query LocationQuery, filters []filter.TermFilter) []domain.PickupLocation {
	keyword := strings.ToLower(strings.TrimSpace(query.Keyword))

	result := make([]domain.PickupLocation, 0)
	for _, location := range s.locations {
		if location.StoreID != query.StoreID {
			continue
		}
		if query.IsActive && !location.IsActive {
			continue
		}
		if keyword != "" && !matchesKeyword(location, keyword) {
			continue
		}
		if !matchesFilters(location, filters) {
			continue
		}
		result = append(result, location)
	}

	// map iteration order is random, keep the output stable
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// GetNote returns the note override for the key and culture
func (s *MemoryStore) GetNote(_ context.Context, key, culture string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	note, ok := s.notes[noteKey{key: key, culture: culture}]
	return note, ok, nil
}

func matchesKeyword(location domain.PickupLocation, keyword string) bool {
	for _, text := range []string{location.Name, location.Description, location.Address.String()} {
		if strings.Contains(strings.ToLower(text), keyword) {
			return true
		}
	}
	return false
}

func matchesFilters(location domain.PickupLocation, filters []filter.TermFilter) bool {
	for _, f := range filters {
		value, ok := domain.AddressFacetValue(location.Address, f.FieldName)
		if !ok {
			continue
		}
		if !f.Matches(value) {
			return false
		}
	}
	return true
}
