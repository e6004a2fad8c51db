package domain

// SortKey asset field used for table sorting.
type SortKey string

const (
	SortRank       SortKey = "rank"
	SortPrice      SortKey = "price"
	SortChange1h   SortKey = "change1h"
	SortChange12h  SortKey = "change12h"
	SortChange24h  SortKey = "change24h"
	SortChange7d   SortKey = "change7d"
	SortVolume24h  SortKey = "volume24h"
	SortMarketCap  SortKey = "marketCap"
	SortName       SortKey = "name"
	SortSymbol     SortKey = "symbol"
	SortID         SortKey = "id"
	SortCategories SortKey = "categories"
)

// NumericValue returns the field value for numeric keys. ok is false for
// non-numeric or unknown keys, which are not sortable.
func (k SortKey) NumericValue(a Asset) (v float64, ok bool) {
	switch k {
	case SortRank:
		return float64(a.Rank), true
	case SortPrice:
		return a.Price, true
	case SortChange1h:
		return a.Change1h, true
	case SortChange12h:
		return a.Change12h, true
	case SortChange24h:
		return a.Change24h, true
	case SortChange7d:
		return a.Change7d, true
	case SortVolume24h:
		return a.Volume24h, true
	case SortMarketCap:
		return a.MarketCap, true
	default:
		return 0, false
	}
}

// IsNumeric reports whether sorting by the key changes order.
func (k SortKey) IsNumeric() bool {
	_, ok := k.NumericValue(Asset{})
	return ok
}

// SortDirection ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Flip returns the opposite direction.
func (d SortDirection) Flip() SortDirection {
	if d == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// IsValid checks if the SortDirection value is valid.
func (d SortDirection) IsValid() bool {
	return d == SortAsc || d == SortDesc
}

// MovementFilter gainer/loser table filter.
type MovementFilter string

const (
	MovementAll     MovementFilter = "all"
	MovementGainers MovementFilter = "gainers"
	MovementLosers  MovementFilter = "losers"
)

// IsValid checks if the MovementFilter value is valid.
func (f MovementFilter) IsValid() bool {
	return f == MovementAll || f == MovementGainers || f == MovementLosers
}

// Keep reports whether an asset passes the filter.
func (f MovementFilter) Keep(a Asset) bool {
	switch f {
	case MovementGainers:
		return a.Change24h > 0
	case MovementLosers:
		return a.Change24h < 0
	default:
		return true
	}
}
