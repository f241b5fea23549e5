package store

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/pickup-service/internal/domain"
)

// Common errors returned by the stores
var (
	ErrStoreNotFound = errors.New("store not found")
	ErrNegativeStock = errors.New("stock quantity must not be negative")
)

// LocationQuery selects pickup locations without facet aggregation
type LocationQuery struct {
	StoreID  string
	IsActive bool
	Keyword  string
	Sort     string
}

// IndexedLocationQuery selects pickup locations through the search index
type IndexedLocationQuery struct {
	LocationQuery
	Filter string
	Facets []string
}

// IndexedLocationResult is the index match set plus the facets aggregated over it
type IndexedLocationResult struct {
	Locations []domain.PickupLocation
	Facets    []domain.FacetResult
}

// StoreReader loads stores with their settings
type StoreReader interface {
	// GetStore returns ErrStoreNotFound when no store has the id
	GetStore(ctx context.Context, storeID string) (*domain.Store, error)
}

// ShippingMethodSearcher checks which shipping methods a store offers
type ShippingMethodSearcher interface {
	HasActiveShippingMethod(ctx context.Context, storeID, code string) (bool, error)
}

// ProductReader loads catalog products
type ProductReader interface {
	// GetProducts returns the products found, unknown ids are skipped
	GetProducts(ctx context.Context, productIDs []string) ([]domain.Product, error)
}

// InventorySearcher loads stock records
type InventorySearcher interface {
	// SearchInventories returns the records of the products, only positive
	// stock when inStockOnly is set
	SearchInventories(ctx context.Context, productIDs []string, inStockOnly bool) ([]domain.InventoryRecord, error)
}

// LocationSearcher finds pickup locations, either by plain lookup or through the index
type LocationSearcher interface {
	SearchLocations(ctx context.Context, query LocationQuery) ([]domain.PickupLocation, error)
	SearchIndexedLocations(ctx context.Context, query IndexedLocationQuery) (*IndexedLocationResult, error)
}

// NoteReader reads localized availability note overrides
type NoteReader interface {
	// GetNote returns ok=false when no override is configured
	GetNote(ctx context.Context, key, culture string) (note string, ok bool, err error)
}
