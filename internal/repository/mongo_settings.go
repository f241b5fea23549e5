package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/pickup-service/internal/domain"
	"github.com/fjod/go_cart/pickup-service/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	storesCollection          = "stores"
	shippingMethodsCollection = "shipping_methods"
	settingsCollection        = "settings"
)

// StoreRepository reads stores and their shipping methods
type StoreRepository struct {
	stores          *mongo.Collection
	shippingMethods *mongo.Collection
}

func NewStoreRepository(db *mongo.Database) *StoreRepository {
	return &StoreRepository{
		stores:          db.Collection(storesCollection),
		shippingMethods: db.Collection(shippingMethodsCollection),
	}
}

func (r *StoreRepository) GetStore(ctx context.Context, storeID string) (*domain.Store, error) {
	var st domain.Store
	err := r.stores.FindOne(ctx, bson.M{"_id": storeID}).Decode(&st)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return &st, nil
}

func (r *StoreRepository) UpsertStore(ctx context.Context, st domain.Store) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.stores.ReplaceOne(ctx, bson.M{"_id": st.ID}, st, opts); err != nil {
		return fmt.Errorf("failed to upsert store: %w", err)
	}
	return nil
}

func (r *StoreRepository) HasActiveShippingMethod(ctx context.Context, storeID, code string) (bool, error) {
	count, err := r.shippingMethods.CountDocuments(ctx, bson.M{
		"store_id":  storeID,
		"code":      code,
		"is_active": true,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count shipping methods: %w", err)
	}
	return count > 0, nil
}

func (r *StoreRepository) SetShippingMethod(ctx context.Context, storeID, code string, active bool) error {
	filter := bson.M{"store_id": storeID, "code": code}
	update := bson.M{"$set": bson.M{"store_id": storeID, "code": code, "is_active": active}}
	if _, err := r.shippingMethods.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to set shipping method: %w", err)
	}
	return nil
}

type noteDocument struct {
	Key     string `bson:"key"`
	Culture string `bson:"culture"`
	Value   string `bson:"value"`
}

// NoteRepository reads localized setting values
type NoteRepository struct {
	collection *mongo.Collection
}

func NewNoteRepository(db *mongo.Database) *NoteRepository {
	return &NoteRepository{collection: db.Collection(settingsCollection)}
}

func (r *NoteRepository) GetNote(ctx context.Context, key, culture string) (string, bool, error) {
	var doc noteDocument
	err := r.collection.FindOne(ctx, bson.M{"key": key, "culture": culture}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get note: %w", err)
	}
	return doc.Value, true, nil
}

func (r *NoteRepository) SetNote(ctx context.Context, key, culture, value string) error {
	filter := bson.M{"key": key, "culture": culture}
	update := bson.M{"$set": noteDocument{Key: key, Culture: culture, Value: value}}
	if _, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to set note: %w", err)
	}
	return nil
}
