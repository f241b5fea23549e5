package service

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/pickup-service/internal/domain"
	"github.com/fjod/go_cart/pickup-service/internal/store"
)

// Fallback notes used when no override is configured for the culture
const (
	TodayFallbackNote    = "Today"
	TransferFallbackNote = "Via transfer"
)

var noteKeys = map[domain.Tier]struct {
	key      string
	fallback string
}{
	domain.TierToday:          {key: domain.TodayNoteKey, fallback: TodayFallbackNote},
	domain.TierTransfer:       {key: domain.TransferNoteKey, fallback: TransferFallbackNote},
	domain.TierGlobalTransfer: {key: domain.GlobalTransferNoteKey, fallback: TransferFallbackNote},
}

// resolvedLocation is a location that survived the availability rules
type resolvedLocation struct {
	location domain.PickupLocation
	tier     domain.Tier
	quantity *int64
}

// resultBuilder turns resolved locations into result items. Notes are looked
// up once per tier and culture.
type resultBuilder struct {
	notes   store.NoteReader
	culture string
	cache   map[domain.Tier]string
}

func newResultBuilder(notes store.NoteReader, culture string) *resultBuilder {
	return &resultBuilder{notes: notes, culture: culture, cache: make(map[domain.Tier]string, len(noteKeys))}
}

func (b *resultBuilder) build(ctx context.Context, resolved []resolvedLocation) ([]domain.ResultItem, error) {
	items := make([]domain.ResultItem, 0, len(resolved))
	for _, r := range resolved {
		note, err := b.note(ctx, r.tier)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.ResultItem{
			Location:          r.location,
			AvailabilityType:  r.tier,
			AvailableQuantity: r.quantity,
			Note:              note,
		})
	}
	return items, nil
}

func (b *resultBuilder) note(ctx context.Context, tier domain.Tier) (string, error) {
	if note, ok := b.cache[tier]; ok {
		return note, nil
	}

	entry, known := noteKeys[tier]
	if !known {
		return "", nil
	}

	note := entry.fallback
	if b.notes != nil {
		override, ok, err := b.notes.GetNote(ctx, entry.key, b.culture)
		if err != nil {
			return "", fmt.Errorf("failed to get note %s: %w", entry.key, err)
		}
		if ok && override != "" {
			note = override
		}
	}

	b.cache[tier] = note
	return note, nil
}
