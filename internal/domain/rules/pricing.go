package rules

import (
	"github.com/Oohan21/utopia-drafts/internal/domain/enums"
	"github.com/Oohan21/utopia-drafts/internal/domain/model"
)

// Prices are in minor currency units.
const (
	MinSalePrice   = 10000
	MinMonthlyRent = 1000
)

// PriceField names the price field a listing kind requires.
func PriceField(kind enums.ListingKind) (string, bool) {
	switch kind {
	case enums.ListingKindSale:
		return model.FieldSalePrice, true
	case enums.ListingKindRent:
		return model.FieldMonthlyRent, true
	default:
		return "", false
	}
}

// PriceLooksLow reports prices that are allowed but probably mistyped.
func PriceLooksLow(kind enums.ListingKind, amount float64) bool {
	switch kind {
	case enums.ListingKindSale:
		return amount < MinSalePrice
	case enums.ListingKindRent:
		return amount < MinMonthlyRent
	default:
		return false
	}
}
