package rules

import (
	"testing"

	"github.com/Oohan21/utopia-drafts/internal/domain/enums"
)

func TestPriceField(t *testing.T) {
	if field, ok := PriceField(enums.ListingKindSale); !ok || field != "sale_price" {
		t.Fatalf("unexpected sale field: %q %v", field, ok)
	}
	if field, ok := PriceField(enums.ListingKindRent); !ok || field != "monthly_rent" {
		t.Fatalf("unexpected rent field: %q %v", field, ok)
	}
	if _, ok := PriceField("lease"); ok {
		t.Fatalf("unknown kind must not select a field")
	}
}

func TestPriceLooksLowThresholds(t *testing.T) {
	cases := []struct {
		kind   enums.ListingKind
		amount float64
		want   bool
	}{
		{enums.ListingKindSale, 9999, true},
		{enums.ListingKindSale, 10000, false},
		{enums.ListingKindRent, 999, true},
		{enums.ListingKindRent, 1000, false},
		{"", 1, false},
	}
	for _, tc := range cases {
		if got := PriceLooksLow(tc.kind, tc.amount); got != tc.want {
			t.Fatalf("PriceLooksLow(%s, %v) = %v, want %v", tc.kind, tc.amount, got, tc.want)
		}
	}
}
