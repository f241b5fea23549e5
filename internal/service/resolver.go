package service

import (
	"github.com/fjod/go_cart/pickup-service/internal/domain"
)

// MinRequestedQuantity is used in place of a requested quantity that is zero or negative
const MinRequestedQuantity int64 = 1

// Resolve decides the availability tier of one product at one pickup location.
// records may contain stock of any fulfillment center, only the centers the
// location is configured with are considered. The rules are checked in order
// and the first match wins.
func Resolve(product domain.Product, location domain.PickupLocation, records []domain.InventoryRecord, requested int64, globalTransferEnabled bool) domain.Resolution {
	if !product.TrackInventory {
		return domain.Resolution{Tier: domain.TierToday}
	}

	requested = normalizeQuantity(requested)

	if stock, ok := mainCenterStock(product.ID, location, records, requested); ok {
		return domain.Resolution{Tier: domain.TierToday, Quantity: &stock}
	}

	if stock := transferStock(product.ID, location, records); stock >= requested {
		return domain.Resolution{Tier: domain.TierTransfer, Quantity: &stock}
	}

	if globalTransferEnabled {
		return domain.Resolution{Tier: domain.TierGlobalTransfer}
	}

	return domain.Resolution{Tier: domain.TierUnavailable}
}

func normalizeQuantity(requested int64) int64 {
	if requested < MinRequestedQuantity {
		return MinRequestedQuantity
	}
	return requested
}

// mainCenterStock picks the best single record of the main fulfillment center
// that covers the requested quantity
func mainCenterStock(productID string, location domain.PickupLocation, records []domain.InventoryRecord, requested int64) (int64, bool) {
	if location.FulfillmentCenterID == "" {
		return 0, false
	}

	var best int64
	found := false
	for _, r := range records {
		if r.ProductID != productID || r.FulfillmentCenterID != location.FulfillmentCenterID {
			continue
		}
		if r.InStockQuantity < requested {
			continue
		}
		if !found || r.InStockQuantity > best {
			best = r.InStockQuantity
			found = true
		}
	}
	return best, found
}

// transferStock sums the stock across the transfer fulfillment centers
func transferStock(productID string, location domain.PickupLocation, records []domain.InventoryRecord) int64 {
	var sum int64
	for _, r := range records {
		if r.ProductID != productID || !location.IsTransferCenter(r.FulfillmentCenterID) {
			continue
		}
		if r.InStockQuantity > 0 {
			sum += r.InStockQuantity
		}
	}
	return sum
}
