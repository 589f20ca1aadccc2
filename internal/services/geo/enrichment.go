package geo

import (
	"strings"

	"github.com/Oohan21/utopia-drafts/internal/domain/model"
)

// Enrichment is what a successful lookup contributes to the draft.
type Enrichment struct {
	Result           model.GeocodeResult
	CityID           string
	SubCityID        string
	SpecificLocation string
	AddressLine1     string
	AddressLine2     string
}

func buildEnrichment(result model.GeocodeResult) Enrichment {
	street := strings.TrimSpace(result.Street)
	suburb := strings.TrimSpace(result.Suburb)

	specific := suburb
	if specific == "" {
		specific = street
	}
	if specific == "" {
		specific = firstSegment(result.FormattedAddress)
	}

	return Enrichment{
		Result:           result,
		SpecificLocation: specific,
		AddressLine1:     street,
		AddressLine2:     suburb,
	}
}

// Apply writes the enrichment into the draft and reports whether anything changed.
// Address lines are only filled when empty; a new city invalidates the sub-city.
func (e Enrichment) Apply(d *model.Draft) bool {
	changed := false
	set := func(field, value string) {
		if value == "" || d.Text(field) == value {
			return
		}
		d.SetField(field, model.String(value))
		changed = true
	}

	if e.CityID != "" && d.Text(model.FieldCity) != e.CityID {
		set(model.FieldCity, e.CityID)
		if _, ok := d.Field(model.FieldSubCity); ok && e.SubCityID == "" {
			d.SetField(model.FieldSubCity, model.Value{})
			changed = true
		}
	}
	set(model.FieldSubCity, e.SubCityID)
	set(model.FieldSpecificLocation, e.SpecificLocation)

	if strings.TrimSpace(d.Text(model.FieldAddressLine1)) == "" {
		set(model.FieldAddressLine1, e.AddressLine1)
	}
	if strings.TrimSpace(d.Text(model.FieldAddressLine2)) == "" {
		set(model.FieldAddressLine2, e.AddressLine2)
	}

	return changed
}

func firstSegment(address string) string {
	head, _, _ := strings.Cut(address, ",")
	return strings.TrimSpace(head)
}
