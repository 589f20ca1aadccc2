package geo

import (
	"testing"

	"github.com/Oohan21/utopia-drafts/internal/domain/model"
)

func TestMatchCityCascade(t *testing.T) {
	cities := []model.City{
		{ID: "adama", Name: "Adama"},
		{ID: "addis-ababa", Name: "Addis Ababa"},
		{ID: "bahir-dar", Name: "Bahir Dar"},
		{ID: "dire-dawa", Name: "Dire Dawa"},
	}

	tests := []struct {
		name   string
		result model.GeocodeResult
		cityID string
		ok     bool
	}{
		{
			name:   "exact case insensitive",
			result: model.GeocodeResult{CityCandidates: []string{"ADDIS ABABA"}},
			cityID: "addis-ababa",
			ok:     true,
		},
		{
			name:   "candidate contains reference",
			result: model.GeocodeResult{CityCandidates: []string{"Bahir Dar Special Zone"}},
			cityID: "bahir-dar",
			ok:     true,
		},
		{
			name:   "reference contains candidate",
			result: model.GeocodeResult{CityCandidates: []string{"dire"}},
			cityID: "dire-dawa",
			ok:     true,
		},
		{
			name:   "exact beats earlier substring",
			result: model.GeocodeResult{CityCandidates: []string{"Adama Zone", "Addis Ababa"}},
			cityID: "addis-ababa",
			ok:     true,
		},
		{
			name:   "region fallback",
			result: model.GeocodeResult{CityCandidates: []string{"Sululta"}, Region: "Addis Ababa"},
			cityID: "addis-ababa",
			ok:     true,
		},
		{
			name:   "substring tie resolves to list order",
			result: model.GeocodeResult{CityCandidates: []string{"a"}},
			cityID: "adama",
			ok:     true,
		},
		{
			name:   "no match",
			result: model.GeocodeResult{CityCandidates: []string{"Nairobi"}, Region: "Nairobi County"},
			ok:     false,
		},
		{
			name:   "empty candidates",
			result: model.GeocodeResult{CityCandidates: []string{"", "  "}},
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, ok := MatchCity(tt.result, cities)
			if ok != tt.ok {
				t.Fatalf("unexpected ok: got %v want %v", ok, tt.ok)
			}
			if city.ID != tt.cityID {
				t.Fatalf("unexpected city: got %q want %q", city.ID, tt.cityID)
			}
		})
	}
}

func TestMatchSubCityUsesSubCityCandidates(t *testing.T) {
	subs := []model.SubCity{
		{ID: "yeka", CityID: "addis-ababa", Name: "Yeka"},
		{ID: "bole", CityID: "addis-ababa", Name: "Bole"},
	}
	sub, ok := MatchSubCity(model.GeocodeResult{SubCityCandidates: []string{"Bole Sub-City"}}, subs)
	if !ok || sub.ID != "bole" {
		t.Fatalf("unexpected sub-city match: %+v %v", sub, ok)
	}
}

func TestEnrichmentApplyKeepsUserAddressLines(t *testing.T) {
	d := model.NewDraft("")
	d.SetField(model.FieldAddressLine1, model.String("House 12, my street"))
	d.SetField(model.FieldCity, model.String("adama"))
	d.SetField(model.FieldSubCity, model.String("old-sub"))

	e := buildEnrichment(addisResult())
	e.CityID = "addis-ababa"
	e.Apply(d)

	if d.Text(model.FieldAddressLine1) != "House 12, my street" {
		t.Fatalf("address line 1 was overwritten: %q", d.Text(model.FieldAddressLine1))
	}
	if d.Text(model.FieldAddressLine2) != "Bole" {
		t.Fatalf("empty address line 2 should be filled, got %q", d.Text(model.FieldAddressLine2))
	}
	if d.Text(model.FieldCity) != "addis-ababa" {
		t.Fatalf("city not updated")
	}
	if _, ok := d.Field(model.FieldSubCity); ok {
		t.Fatalf("sub-city of the previous city must be cleared")
	}
	if d.Text(model.FieldSpecificLocation) != "Bole" {
		t.Fatalf("unexpected specific location: %q", d.Text(model.FieldSpecificLocation))
	}
}
