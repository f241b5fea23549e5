package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/fjod/go_cart/pickup-service/internal/domain"
	"github.com/fjod/go_cart/pickup-service/internal/filter"
	"github.com/fjod/go_cart/pickup-service/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const locationsCollection = "pickup_locations"

// address field paths inside a location document
var addressPaths = map[string]string{
	domain.FacetCountry: "address.country_name",
	domain.FacetRegion:  "address.region_name",
	domain.FacetCity:    "address.city",
}

// case-insensitive comparison for sorting and matching
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// LocationRepository searches pickup locations stored in MongoDB. The indexed
// search runs as a single aggregation with a $facet stage.
type LocationRepository struct {
	collection *mongo.Collection
}

func NewLocationRepository(db *mongo.Database) *LocationRepository {
	return &LocationRepository{collection: db.Collection(locationsCollection)}
}

// EnsureIndexes creates the indexes the searches rely on
func (r *LocationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "store_id", Value: 1}, {Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "store_id", Value: 1}, {Key: "address.country_name", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create location indexes: %w", err)
	}
	return nil
}

func (r *LocationRepository) UpsertLocation(ctx context.Context, location domain.PickupLocation) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": location.ID}, location, opts); err != nil {
		return fmt.Errorf("failed to upsert location: %w", err)
	}
	return nil
}

func (r *LocationRepository) SearchLocations(ctx context.Context, query store.LocationQuery) ([]domain.PickupLocation, error) {
	opts := options.Find().
		SetSort(sortDocument(query.Sort)).
		SetCollation(caseInsensitive)

	cursor, err := r.collection.Find(ctx, baseMatch(query), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find locations: %w", err)
	}
	defer cursor.Close(ctx)

	locations := make([]domain.PickupLocation, 0)
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, fmt.Errorf("failed to decode locations: %w", err)
	}
	return locations, nil
}

type facetBucket struct {
	Term  string `bson:"_id"`
	Count int    `bson:"count"`
}

type indexedResult struct {
	Locations []domain.PickupLocation  `bson:"locations"`
	Facets    map[string][]facetBucket `bson:",inline"`
}

// SearchIndexedLocations matches keyword and filter and counts every facet
// over the locations matching all filters except the ones on the facet field.
func (r *LocationRepository) SearchIndexedLocations(ctx context.Context, query store.IndexedLocationQuery) (*store.IndexedLocationResult, error) {
	filters, err := filter.Parse(query.Filter)
	if err != nil {
		return nil, err
	}

	branches := bson.D{{Key: "locations", Value: bson.A{
		bson.M{"$match": filterMatch(filters)},
		bson.M{"$sort": sortDocument(query.Sort)},
	}}}

	facetFields := make(map[string]string)
	for i, field := range query.Facets {
		path, ok := addressPaths[strings.ToLower(field)]
		if !ok {
			continue
		}
		name := fmt.Sprintf("facet_%d", i)
		facetFields[name] = field
		branches = append(branches, bson.E{Key: name, Value: bson.A{
			bson.M{"$match": filterMatch(withoutField(filters, field))},
			bson.M{"$match": bson.M{path: bson.M{"$nin": bson.A{nil, ""}}}},
			bson.M{"$group": bson.M{"_id": "$" + path, "count": bson.M{"$sum": 1}}},
		}})
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: baseMatch(query.LocationQuery)}},
		{{Key: "$facet", Value: branches}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline, options.Aggregate().SetCollation(caseInsensitive))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate locations: %w", err)
	}
	defer cursor.Close(ctx)

	var out []indexedResult
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation: %w", err)
	}

	result := &store.IndexedLocationResult{Locations: []domain.PickupLocation{}, Facets: []domain.FacetResult{}}
	if len(out) == 0 {
		return result, nil
	}
	if out[0].Locations != nil {
		result.Locations = out[0].Locations
	}

	for i, field := range query.Facets {
		name := fmt.Sprintf("facet_%d", i)
		if _, ok := facetFields[name]; !ok {
			continue
		}
		terms := make([]domain.FacetTerm, 0, len(out[0].Facets[name]))
		for _, b := range out[0].Facets[name] {
			terms = append(terms, domain.FacetTerm{Term: b.Term, Count: b.Count})
		}
		store.SortFacetTerms(terms)
		result.Facets = append(result.Facets, domain.FacetResult{Field: field, Terms: terms})
	}
	return result, nil
}

func baseMatch(query store.LocationQuery) bson.M {
	match := bson.M{"store_id": query.StoreID}
	if query.IsActive {
		match["is_active"] = true
	}

	keyword := strings.TrimSpace(query.Keyword)
	if keyword != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}
		or := bson.A{}
		for _, path := range []string{"name", "description", "address.line1", "address.line2", "address.city", "address.region_name", "address.postal_code", "address.country_name"} {
			or = append(or, bson.M{path: pattern})
		}
		match["$or"] = or
	}
	return match
}

// filterMatch translates term filters on address fields into a match document.
// Every filter becomes its own clause so filters on the same field all apply.
// Filters on other fields are ignored.
func filterMatch(filters []filter.TermFilter) bson.M {
	clauses := bson.A{}
	for _, f := range filters {
		path, ok := addressPaths[f.FieldName]
		if !ok {
			continue
		}
		values := bson.A{}
		for _, v := range f.Values {
			values = append(values, primitive.Regex{Pattern: "^" + regexp.QuoteMeta(v) + "$", Options: "i"})
		}
		op := "$in"
		if f.Negated {
			op = "$nin"
		}
		clauses = append(clauses, bson.M{path: bson.M{op: values}})
	}
	if len(clauses) == 0 {
		return bson.M{}
	}
	return bson.M{"$and": clauses}
}

func withoutField(filters []filter.TermFilter, field string) []filter.TermFilter {
	result := make([]filter.TermFilter, 0, len(filters))
	for _, f := range filters {
		if !strings.EqualFold(f.FieldName, field) {
			result = append(result, f)
		}
	}
	return result
}

// sortDocument translates "name:desc;city" into a sort document, _id breaks ties
func sortDocument(expr string) bson.D {
	sort := bson.D{}
	seen := make(map[string]bool)
	for _, part := range strings.Split(expr, ";") {
		field, dir, _ := strings.Cut(strings.TrimSpace(part), ":")
		field = strings.ToLower(strings.TrimSpace(field))

		path := addressPaths[field]
		if field == "name" {
			path = "name"
		}
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		order := 1
		if strings.EqualFold(strings.TrimSpace(dir), "desc") {
			order = -1
		}
		sort = append(sort, bson.E{Key: path, Value: order})
	}
	return append(sort, bson.E{Key: "_id", Value: 1})
}
