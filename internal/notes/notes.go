package notes

import (
	"context"
	"errors"
	"log"

	"github.com/fjod/go_cart/pickup-service/internal/cache"
	"github.com/fjod/go_cart/pickup-service/internal/metrics"
	"github.com/fjod/go_cart/pickup-service/internal/store"
	"golang.org/x/sync/singleflight"
)

// Service reads availability note overrides through the note cache.
// It implements store.NoteReader.
type Service struct {
	reader  store.NoteReader
	cache   cache.NoteCache
	metrics *metrics.Registry
	sfg     singleflight.Group // Prevents cache stampede
}

func NewService(reader store.NoteReader, noteCache cache.NoteCache, m *metrics.Registry) *Service {
	return &Service{
		reader:  reader,
		cache:   noteCache,
		metrics: m,
	}
}

func (s *Service) GetNote(ctx context.Context, key, culture string) (string, bool, error) {
	v, err, _ := s.sfg.Do(key+"\x00"+culture, func() (interface{}, error) {
		entry, err := s.cache.Get(ctx, key, culture)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("note cache get error: %v \n", err) // log cache error but continue
		}
		s.metrics.ObserveNoteCacheMiss()

		note, found, errGet := s.reader.GetNote(ctx, key, culture)
		if errGet != nil {
			return nil, errGet
		}
		entry = &cache.NoteEntry{Note: note, Found: found}

		go func() {
			if errSet := s.cache.Set(context.Background(), key, culture, entry); errSet != nil {
				log.Printf("note cache set error: %v \n", errSet)
			}
		}()

		return entry, nil
	})
	if err != nil {
		return "", false, err
	}

	entry := v.(*cache.NoteEntry)
	return entry.Note, entry.Found, nil
}

// Invalidate drops the cached note so the next lookup reads the settings store
func (s *Service) Invalidate(ctx context.Context, key, culture string) error {
	return s.cache.Delete(ctx, key, culture)
}
