package domain

// InventoryRecord is the stock of one product in one fulfillment center
type InventoryRecord struct {
	ProductID           string `json:"product_id"`
	FulfillmentCenterID string `json:"fulfillment_center_id"`
	InStockQuantity     int64  `json:"in_stock_quantity"`
}

// Product carries the catalog flags the availability rules depend on
type Product struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	TrackInventory bool   `json:"track_inventory"`
}

// StoreSettings is an immutable per-request snapshot of the store settings
type StoreSettings struct {
	GlobalTransferEnabled bool `json:"global_transfer_enabled" bson:"global_transfer_enabled"`
}

// Store represents the storefront a search is issued for
type Store struct {
	ID       string        `json:"id" bson:"_id"`
	Name     string        `json:"name" bson:"name"`
	Settings StoreSettings `json:"settings" bson:"settings"`
}

// Note setting keys, looked up together with a culture name
const (
	TodayNoteKey          = "Pickup.TodayAvailabilityNote"
	TransferNoteKey       = "Pickup.TransferAvailabilityNote"
	GlobalTransferNoteKey = "Pickup.GlobalTransferAvailabilityNote"
)

// BuyOnlinePickupInStoreCode is the shipping method code enabling pickup for a store
const BuyOnlinePickupInStoreCode = "BuyOnlinePickupInStore"
