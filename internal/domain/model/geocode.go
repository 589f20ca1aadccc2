package model

// GeocodeResult is an immutable snapshot of one reverse lookup.
type GeocodeResult struct {
	CityCandidates    []string
	SubCityCandidates []string
	Street            string
	Suburb            string
	Region            string
	FormattedAddress  string
	Country           string
}

type LocationStatus struct {
	State   string `json:"state"`
	Reason  string `json:"reason,omitempty"`
	Token   uint64 `json:"token"`
	Address string `json:"address,omitempty"`
}
