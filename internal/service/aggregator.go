package service

import (
	"iter"
	"sort"

	"github.com/fjod/go_cart/pickup-service/internal/domain"
)

// Aggregator reduces the per-product tiers of one location to the worst of them.
// It is built once per request and is safe for concurrent use.
type Aggregator struct {
	products       []domain.Product // ordered by id
	quantities     map[string]int64
	records        map[string][]domain.InventoryRecord
	globalTransfer bool
	earlyExit      bool
}

// NewAggregator prepares the reduction for a set of products. requested maps
// product ids to the wanted quantity, records are the inventory snapshot of
// every requested product.
func NewAggregator(products []domain.Product, requested map[string]int64, records []domain.InventoryRecord, settings domain.StoreSettings) *Aggregator {
	ordered := make([]domain.Product, len(products))
	copy(ordered, products)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	return &Aggregator{
		products:       ordered,
		quantities:     requested,
		records:        groupByProduct(records),
		globalTransfer: settings.GlobalTransferEnabled,
		earlyExit:      true,
	}
}

// Floor is the worst tier any product can contribute
func (a *Aggregator) Floor() domain.Tier {
	if a.globalTransfer {
		return domain.TierGlobalTransfer
	}
	return domain.TierUnavailable
}

// Aggregate returns the combined tier of the location. TierUnavailable means
// the location cannot serve the request.
func (a *Aggregator) Aggregate(location domain.PickupLocation) domain.Tier {
	if len(a.products) == 0 {
		return domain.TierUnavailable
	}
	return reduceWorst(a.tiers(location), a.Floor(), a.earlyExit)
}

func (a *Aggregator) tiers(location domain.PickupLocation) iter.Seq[domain.Tier] {
	return func(yield func(domain.Tier) bool) {
		for _, product := range a.products {
			res := Resolve(product, location, a.records[product.ID], a.quantities[product.ID], a.globalTransfer)
			if !yield(res.Tier) {
				return
			}
		}
	}
}

// reduceWorst folds tiers with Worst, stopping once floor is reached when earlyExit is set
func reduceWorst(tiers iter.Seq[domain.Tier], floor domain.Tier, earlyExit bool) domain.Tier {
	acc := domain.TierToday
	for tier := range tiers {
		acc = domain.Worst(acc, tier)
		if earlyExit && acc <= floor {
			break
		}
	}
	return acc
}

func groupByProduct(records []domain.InventoryRecord) map[string][]domain.InventoryRecord {
	grouped := make(map[string][]domain.InventoryRecord)
	for _, r := range records {
		grouped[r.ProductID] = append(grouped[r.ProductID], r)
	}
	return grouped
}
