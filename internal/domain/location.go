package domain

import "strings"

// Address is the postal address of a pickup location
type Address struct {
	CountryCode string `json:"country_code,omitempty" bson:"country_code"`
	CountryName string `json:"country_name,omitempty" bson:"country_name"`
	RegionID    string `json:"region_id,omitempty" bson:"region_id"`
	RegionName  string `json:"region_name,omitempty" bson:"region_name"`
	City        string `json:"city,omitempty" bson:"city"`
	PostalCode  string `json:"postal_code,omitempty" bson:"postal_code"`
	Line1       string `json:"line1,omitempty" bson:"line1"`
	Line2       string `json:"line2,omitempty" bson:"line2"`
}

// String renders the address on a single line, skipping empty parts
func (a Address) String() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.Line1, a.Line2, a.City, a.RegionName, a.PostalCode, a.CountryName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// PickupLocation is a customer-facing point where an order can be collected.
// Stock is never held by the location itself: it is read from the main
// fulfillment center and, for transfers, from the transfer centers.
type PickupLocation struct {
	ID                           string   `json:"id" bson:"_id"`
	StoreID                      string   `json:"store_id" bson:"store_id"`
	Name                         string   `json:"name" bson:"name"`
	Description                  string   `json:"description,omitempty" bson:"description"`
	IsActive                     bool     `json:"is_active" bson:"is_active"`
	GeoLocation                  string   `json:"geo_location,omitempty" bson:"geo_location"`
	Address                      Address  `json:"address" bson:"address"`
	FulfillmentCenterID          string   `json:"fulfillment_center_id" bson:"fulfillment_center_id"`
	TransferFulfillmentCenterIDs []string `json:"transfer_fulfillment_center_ids,omitempty" bson:"transfer_fulfillment_center_ids"`
}

// IsTransferCenter reports whether the fulfillment center is configured for transfers
func (l PickupLocation) IsTransferCenter(fulfillmentCenterID string) bool {
	for _, id := range l.TransferFulfillmentCenterIDs {
		if id == fulfillmentCenterID {
			return true
		}
	}
	return false
}
