package domain

import "fmt"

// Tier classifies how soon a location can hand over the requested products.
// The numeric value is the rank: a greater value means better availability.
type Tier int

const (
	TierUnavailable    Tier = 0
	TierGlobalTransfer Tier = 10
	TierTransfer       Tier = 20
	TierToday          Tier = 30
)

// Rank returns the sort weight of the tier
func (t Tier) Rank() int {
	return int(t)
}

// Worst returns the tier with the lower rank
func Worst(a, b Tier) Tier {
	if a < b {
		return a
	}
	return b
}

func (t Tier) String() string {
	switch t {
	case TierToday:
		return "Today"
	case TierTransfer:
		return "Transfer"
	case TierGlobalTransfer:
		return "GlobalTransfer"
	default:
		return "Unavailable"
	}
}

// MarshalText encodes the tier by name
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier name
func (t *Tier) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Today":
		*t = TierToday
	case "Transfer":
		*t = TierTransfer
	case "GlobalTransfer":
		*t = TierGlobalTransfer
	case "Unavailable":
		*t = TierUnavailable
	default:
		return fmt.Errorf("unknown availability tier %q", text)
	}
	return nil
}

// Resolution is the outcome of resolving one product at one location
type Resolution struct {
	Tier     Tier
	Quantity *int64 // set only when the winning rule observed a stock figure
}
