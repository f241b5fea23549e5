package service

import (
	"sort"
	"strings"

	"github.com/fjod/go_cart/pickup-service/internal/domain"
)

// sortDefault orders items by tier, then available quantity, then location name.
// Items without quantity come after items with one. The location id breaks
// remaining ties so the order does not depend on the fetch order.
func sortDefault(items []domain.ResultItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.AvailabilityType.Rank() != b.AvailabilityType.Rank() {
			return a.AvailabilityType.Rank() > b.AvailabilityType.Rank()
		}
		if qa, qb := quantityRank(a.AvailableQuantity), quantityRank(b.AvailableQuantity); qa != qb {
			return qa > qb
		}
		if na, nb := strings.ToLower(a.Location.Name), strings.ToLower(b.Location.Name); na != nb {
			return na < nb
		}
		return a.Location.ID < b.Location.ID
	})
}

func quantityRank(q *int64) int64 {
	if q == nil {
		return -1
	}
	return *q
}

// page cuts the window [skip, skip+take) out of items
func page(items []domain.ResultItem, skip, take int) []domain.ResultItem {
	if skip >= len(items) || take == 0 {
		return []domain.ResultItem{}
	}
	end := len(items)
	if take < end-skip {
		end = skip + take
	}
	return items[skip:end]
}
