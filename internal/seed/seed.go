// Package seed loads the demo catalog and pickup network used when the
// service runs without real data.
package seed

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/pickup-service/internal/domain"
	"github.com/fjod/go_cart/pickup-service/internal/repository"
	"github.com/fjod/go_cart/pickup-service/internal/store"
)

const DemoStoreID = "electronics"

// Writer receives the demo data
type Writer interface {
	UpsertStore(ctx context.Context, st domain.Store) error
	SetShippingMethod(ctx context.Context, storeID, code string, active bool) error
	UpsertProduct(ctx context.Context, product domain.Product) error
	SetStock(ctx context.Context, productID, fulfillmentCenterID string, quantity int64) error
	UpsertLocation(ctx context.Context, location domain.PickupLocation) error
	SetNote(ctx context.Context, key, culture, value string) error
}

// Repositories writes into the mongo and SQL backends
type Repositories struct {
	*repository.StoreRepository
	*repository.LocationRepository
	*repository.NoteRepository
	repository.CatalogInterface
}

type stock struct {
	productID string
	center    string
	quantity  int64
}

type note struct {
	key, culture, value string
}

var (
	demoStore = domain.Store{
		ID:       DemoStoreID,
		Name:     "Electronics",
		Settings: domain.StoreSettings{GlobalTransferEnabled: true},
	}

	// ids match the cart-service product ids
	demoProducts = []domain.Product{
		{ID: "1", Name: "Laptop", TrackInventory: true},
		{ID: "2", Name: "Wireless Mouse", TrackInventory: true},
		{ID: "3", Name: "USB-C Cable", TrackInventory: false},
		{ID: "4", Name: "4K Monitor", TrackInventory: true},
	}

	demoStock = []stock{
		{"1", "fc-seattle", 5},
		{"1", "fc-portland", 1},
		{"1", "fc-west-hub", 4},
		{"2", "fc-seattle", 40},
		{"2", "fc-vancouver", 12},
		{"2", "fc-toronto", 3},
		{"4", "fc-west-hub", 2},
		{"4", "fc-east-hub", 6},
	}

	demoLocations = []domain.PickupLocation{
		{
			ID: "pl-seattle", StoreID: DemoStoreID, Name: "Seattle Downtown", IsActive: true,
			Description: "Ground floor, next to the parking entrance",
			GeoLocation: "47.6062,-122.3321",
			Address: domain.Address{
				CountryCode: "USA", CountryName: "United States", RegionID: "WA", RegionName: "Washington",
				City: "Seattle", PostalCode: "98101", Line1: "1420 5th Ave",
			},
			FulfillmentCenterID:          "fc-seattle",
			TransferFulfillmentCenterIDs: []string{"fc-west-hub", "fc-portland"},
		},
		{
			ID: "pl-portland", StoreID: DemoStoreID, Name: "Portland Pearl", IsActive: true,
			GeoLocation: "45.5272,-122.6819",
			Address: domain.Address{
				CountryCode: "USA", CountryName: "United States", RegionID: "OR", RegionName: "Oregon",
				City: "Portland", PostalCode: "97209", Line1: "1005 NW Couch St",
			},
			FulfillmentCenterID:          "fc-portland",
			TransferFulfillmentCenterIDs: []string{"fc-west-hub"},
		},
		{
			ID: "pl-vancouver", StoreID: DemoStoreID, Name: "Vancouver Robson", IsActive: true,
			GeoLocation: "49.2827,-123.1207",
			Address: domain.Address{
				CountryCode: "CAN", CountryName: "Canada", RegionID: "BC", RegionName: "British Columbia",
				City: "Vancouver", PostalCode: "V6E 1C3", Line1: "1045 Robson St",
			},
			FulfillmentCenterID: "fc-vancouver",
		},
		{
			ID: "pl-toronto", StoreID: DemoStoreID, Name: "Toronto Eaton", IsActive: true,
			GeoLocation: "43.6544,-79.3807",
			Address: domain.Address{
				CountryCode: "CAN", CountryName: "Canada", RegionID: "ON", RegionName: "Ontario",
				City: "Toronto", PostalCode: "M5B 2H1", Line1: "220 Yonge St",
			},
			FulfillmentCenterID:          "fc-toronto",
			TransferFulfillmentCenterIDs: []string{"fc-east-hub"},
		},
		{
			ID: "pl-tacoma", StoreID: DemoStoreID, Name: "Tacoma Mall", IsActive: false,
			Address: domain.Address{
				CountryCode: "USA", CountryName: "United States", RegionID: "WA", RegionName: "Washington",
				City: "Tacoma", PostalCode: "98409", Line1: "4502 S Steele St",
			},
			FulfillmentCenterID: "fc-seattle",
		},
	}

	demoNotes = []note{
		{domain.TodayNoteKey, "en-US", "Ready for pickup today"},
		{domain.TransferNoteKey, "en-US", "Ready in 2-3 days"},
		{domain.GlobalTransferNoteKey, "en-US", "Ready in 5-7 days"},
		{domain.TodayNoteKey, "fr-CA", "Prêt aujourd'hui"},
		{domain.TransferNoteKey, "fr-CA", "Prêt dans 2 à 3 jours"},
	}
)

// Apply writes the demo data, existing records with the same keys are replaced
func Apply(ctx context.Context, w Writer) error {
	if err := w.UpsertStore(ctx, demoStore); err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	if err := w.SetShippingMethod(ctx, DemoStoreID, domain.BuyOnlinePickupInStoreCode, true); err != nil {
		return fmt.Errorf("seed shipping method: %w", err)
	}
	for _, p := range demoProducts {
		if err := w.UpsertProduct(ctx, p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}
	for _, s := range demoStock {
		if err := w.SetStock(ctx, s.productID, s.center, s.quantity); err != nil {
			return fmt.Errorf("seed stock %s/%s: %w", s.productID, s.center, err)
		}
	}
	for _, l := range demoLocations {
		if err := w.UpsertLocation(ctx, l); err != nil {
			return fmt.Errorf("seed location %s: %w", l.ID, err)
		}
	}
	for _, n := range demoNotes {
		if err := w.SetNote(ctx, n.key, n.culture, n.value); err != nil {
			return fmt.Errorf("seed note %s: %w", n.key, err)
		}
	}
	return nil
}

// Memory adapts a MemoryStore to Writer
func Memory(s *store.MemoryStore) Writer {
	return memoryWriter{s: s}
}

type memoryWriter struct {
	s *store.MemoryStore
}

func (m memoryWriter) UpsertStore(_ context.Context, st domain.Store) error {
	m.s.SetStore(st)
	return nil
}

func (m memoryWriter) SetShippingMethod(_ context.Context, storeID, code string, active bool) error {
	m.s.SetShippingMethod(storeID, code, active)
	return nil
}

func (m memoryWriter) UpsertProduct(_ context.Context, product domain.Product) error {
	m.s.SetProduct(product)
	return nil
}

func (m memoryWriter) SetStock(_ context.Context, productID, fulfillmentCenterID string, quantity int64) error {
	return m.s.SetStock(productID, fulfillmentCenterID, quantity)
}

func (m memoryWriter) UpsertLocation(_ context.Context, location domain.PickupLocation) error {
	m.s.SetLocation(location)
	return nil
}

func (m memoryWriter) SetNote(_ context.Context, key, culture, value string) error {
	m.s.SetNote(key, culture, value)
	return nil
}
