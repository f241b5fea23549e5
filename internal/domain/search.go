package domain

// ProductRequestItem is a product and how many units the customer wants
type ProductRequestItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// SearchCriteria holds the options shared by every pickup search
type SearchCriteria struct {
	StoreID string
	Culture string
	Keyword string
	Sort    string
	Skip    int
	Take    int
}

// SingleProductCriteria searches pickup locations for one product
type SingleProductCriteria struct {
	SearchCriteria
	Product ProductRequestItem
}

// MultipleProductsCriteria searches pickup locations able to serve every product at once
type MultipleProductsCriteria struct {
	SearchCriteria
	Products map[string]ProductRequestItem
	Filter   string
	Facet    string
}

// CartCriteria searches pickup locations for the content of a user's cart
type CartCriteria struct {
	SearchCriteria
	UserID int64
	Filter string
	Facet  string
}

// ResultItem is one pickup location able to serve the request
type ResultItem struct {
	Location          PickupLocation `json:"location"`
	AvailabilityType  Tier           `json:"availability_type"`
	AvailableQuantity *int64         `json:"available_quantity,omitempty"`
	Note              string         `json:"note,omitempty"`
}

// FacetTerm is a facet value and the number of results carrying it
type FacetTerm struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// FacetResult groups the terms of one facet field
type FacetResult struct {
	Field string      `json:"field"`
	Terms []FacetTerm `json:"terms"`
}

// SearchResult is one page of pickup locations plus the total size of the result set
type SearchResult struct {
	TotalCount int           `json:"total_count"`
	Items      []ResultItem  `json:"items"`
	Facets     []FacetResult `json:"facets,omitempty"`
}

// EmptySearchResult is returned when pickup cannot be offered at all
func EmptySearchResult() *SearchResult {
	return &SearchResult{
		TotalCount: 0,
		Items:      []ResultItem{},
		Facets:     []FacetResult{},
	}
}
