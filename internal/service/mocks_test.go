package service

import (
	"context"
	"sync"
	"testing"
	"time"

	cartpb "github.com/fjod/go_cart/cart-service/pkg/proto"
	"github.com/fjod/go_cart/pickup-service/internal/domain"
	"github.com/fjod/go_cart/pickup-service/internal/store"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

const testStoreID = "B2B-store"

// MockCartServiceClient implements cartpb.CartServiceClient for testing, only GetCart is used
type MockCartServiceClient struct {
	cartpb.CartServiceClient
	CartResponse *cartpb.CartResponse
	Err          error
	LastRequest  *cartpb.GetCartRequest
}

func (m *MockCartServiceClient) GetCart(_ context.Context, req *cartpb.GetCartRequest, _ ...grpc.CallOption) (*cartpb.CartResponse, error) {
	m.LastRequest = req
	return m.CartResponse, m.Err
}

// countingLocations wraps a LocationSearcher and records the indexed searches
type countingLocations struct {
	store.LocationSearcher
	mu      sync.Mutex
	queries []store.IndexedLocationQuery
}

func (c *countingLocations) SearchIndexedLocations(ctx context.Context, query store.IndexedLocationQuery) (*store.IndexedLocationResult, error) {
	c.mu.Lock()
	c.queries = append(c.queries, query)
	c.mu.Unlock()
	return c.LocationSearcher.SearchIndexedLocations(ctx, query)
}

// failingNotes returns an error for every lookup
type failingNotes struct{ err error }

func (f failingNotes) GetNote(context.Context, string, string) (string, bool, error) {
	return "", false, f.err
}

// blockingProducts waits for the context before answering
type blockingProducts struct{}

func (blockingProducts) GetProducts(ctx context.Context, _ []string) ([]domain.Product, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// seedStore builds the pickup network used by the service tests:
//
//	loc-a  Seattle, USA      main fc-a, transfer fc-t1, fc-t2
//	loc-b  Tacoma, USA       main fc-b, transfer fc-t1, fc-t2
//	loc-c  Vancouver, Canada main fc-c
//	loc-d  Toronto, Canada   main fc-d
func seedStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	s := store.NewMemoryStore()
	s.SetStore(domain.Store{ID: testStoreID, Name: "B2B"})
	s.SetShippingMethod(testStoreID, domain.BuyOnlinePickupInStoreCode, true)

	s.SetLocation(domain.PickupLocation{
		ID: "loc-a", StoreID: testStoreID, Name: "Alpha", IsActive: true,
		Address:                      domain.Address{CountryName: "USA", RegionName: "Washington", City: "Seattle"},
		FulfillmentCenterID:          "fc-a",
		TransferFulfillmentCenterIDs: []string{"fc-t1", "fc-t2"},
	})
	s.SetLocation(domain.PickupLocation{
		ID: "loc-b", StoreID: testStoreID, Name: "Bravo", IsActive: true,
		Address:                      domain.Address{CountryName: "USA", RegionName: "Washington", City: "Tacoma"},
		FulfillmentCenterID:          "fc-b",
		TransferFulfillmentCenterIDs: []string{"fc-t1", "fc-t2"},
	})
	s.SetLocation(domain.PickupLocation{
		ID: "loc-c", StoreID: testStoreID, Name: "Charlie", IsActive: true,
		Address:             domain.Address{CountryName: "Canada", RegionName: "British Columbia", City: "Vancouver"},
		FulfillmentCenterID: "fc-c",
	})
	s.SetLocation(domain.PickupLocation{
		ID: "loc-d", StoreID: testStoreID, Name: "Delta", IsActive: true,
		Address:             domain.Address{CountryName: "Canada", RegionName: "Ontario", City: "Toronto"},
		FulfillmentCenterID: "fc-d",
	})
	return s
}

func mustStock(t *testing.T, s *store.MemoryStore, productID, fulfillmentCenterID string, quantity int64) {
	t.Helper()
	require.NoError(t, s.SetStock(productID, fulfillmentCenterID, quantity))
}

func newTestService(s *store.MemoryStore, cart *MockCartServiceClient) *PickupService {
	c := Collaborators{
		Stores:    s,
		Products:  s,
		Notes:     s,
		Shipping:  store.Some[store.ShippingMethodSearcher](s),
		Inventory: store.Some[store.InventorySearcher](s),
		Locations: store.Some[store.LocationSearcher](s),
		Cart:      store.None[*CartHandler](),
	}
	if cart != nil {
		c.Cart = store.Some(NewCartHandler(cart, 5*time.Second))
	}
	return NewPickupService(c, nil, 4)
}

func itemIDs(items []domain.ResultItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.Location.ID
	}
	return ids
}

func ptr(v int64) *int64 { return &v }
