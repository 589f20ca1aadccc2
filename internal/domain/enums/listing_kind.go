package enums

type ListingKind string

const (
	ListingKindSale ListingKind = "sale"
	ListingKindRent ListingKind = "rent"
)
