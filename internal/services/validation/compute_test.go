package validation

import (
	"testing"

	"github.com/Oohan21/utopia-drafts/internal/domain/enums"
	"github.com/Oohan21/utopia-drafts/internal/domain/model"
)

func completeDraft() *model.Draft {
	d := model.NewDraft("")
	d.SetField(model.FieldTitle, model.String("Two bedroom apartment"))
	d.SetField(model.FieldDescription, model.String("Bright, close to the ring road"))
	d.SetField(model.FieldCity, model.String("addis-ababa"))
	d.SetField(model.FieldSubCity, model.String("bole"))
	d.SetField(model.FieldSpecificLocation, model.String("Bole Medhanialem"))
	d.SetField(model.FieldTotalArea, model.Number(120))
	d.SetField(model.FieldListingKind, model.String("sale"))
	d.SetField(model.FieldSalePrice, model.Number(4500000))
	d.SetMedia(enums.MediaSlotImages, []model.MediaReference{
		model.LiveMedia{ID: "img-1", MediaMeta: model.MediaMeta{Name: "a.jpg"}, Source: model.BytesSource("x")},
	})
	return d
}

func TestComputeCompleteDraft(t *testing.T) {
	state := Compute(completeDraft())
	if !state.Valid() {
		t.Fatalf("expected valid draft, got errors: %v", state.Errors)
	}
	if state.Progress != 100 {
		t.Fatalf("unexpected progress: %d", state.Progress)
	}
	for _, section := range enums.Sections() {
		if state.Sections[section] != 100 {
			t.Fatalf("section %s scored %d", section, state.Sections[section])
		}
	}
	if len(state.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", state.Warnings)
	}
}

func TestComputeZeroTotalAreaBlocksDetails(t *testing.T) {
	d := completeDraft()
	d.SetField(model.FieldTotalArea, model.Number(0))

	state := Compute(d)
	if state.Errors[model.FieldTotalArea] == "" {
		t.Fatalf("expected total_area error, got %v", state.Errors)
	}
	if state.Sections[enums.SectionDetails] != 0 {
		t.Fatalf("unexpected details score: %d", state.Sections[enums.SectionDetails])
	}
	if state.Progress != 83 {
		t.Fatalf("unexpected progress: %d", state.Progress)
	}

	d.SetField(model.FieldTotalArea, model.String("85.5"))
	state = Compute(d)
	if state.Sections[enums.SectionDetails] != 100 {
		t.Fatalf("positive total_area should complete details, got %d", state.Sections[enums.SectionDetails])
	}
}

func TestComputeEmptyDraft(t *testing.T) {
	state := Compute(model.NewDraft(""))
	if state.Valid() {
		t.Fatalf("empty draft must not be valid")
	}
	// only features is complete: round(100/6)
	if state.Progress != 17 {
		t.Fatalf("unexpected progress: %d", state.Progress)
	}
	for _, field := range []string{
		model.FieldTitle, model.FieldDescription, model.FieldCity, model.FieldSubCity,
		model.FieldSpecificLocation, model.FieldTotalArea, model.FieldListingKind, FieldImages,
	} {
		if state.Errors[field] == "" {
			t.Fatalf("expected error for %s", field)
		}
	}
}

func TestComputePricingFollowsListingKind(t *testing.T) {
	d := completeDraft()
	d.SetField(model.FieldListingKind, model.String("rent"))

	state := Compute(d)
	if state.Errors[model.FieldMonthlyRent] != MsgRequired {
		t.Fatalf("rent listing must require monthly_rent, got %v", state.Errors)
	}
	if _, ok := state.Errors[model.FieldSalePrice]; ok {
		t.Fatalf("rent listing must not require sale_price")
	}

	d.SetField(model.FieldMonthlyRent, model.Number(500))
	state = Compute(d)
	if state.Sections[enums.SectionPricing] != 100 {
		t.Fatalf("pricing should be complete")
	}
	if state.Warnings[model.FieldMonthlyRent] != MsgPriceLow {
		t.Fatalf("expected low rent warning, got %v", state.Warnings)
	}
	if !state.Valid() {
		t.Fatalf("warnings must not block: %v", state.Errors)
	}
}

func TestComputeLowSalePriceWarns(t *testing.T) {
	d := completeDraft()
	d.SetField(model.FieldSalePrice, model.Number(9000))
	state := Compute(d)
	if state.Warnings[model.FieldSalePrice] != MsgPriceLow {
		t.Fatalf("expected sale price warning, got %v", state.Warnings)
	}
}

func TestComputeImageResolvability(t *testing.T) {
	d := completeDraft()
	d.SetMedia(enums.MediaSlotImages, []model.MediaReference{
		model.PlaceholderMedia{ID: "p1", IsPlaceholder: true, MediaMeta: model.MediaMeta{Name: "a.jpg"}},
	})
	state := Compute(d)
	if state.Sections[enums.SectionMedia] != 0 {
		t.Fatalf("unresolvable placeholder must not satisfy media")
	}

	d.SetMedia(enums.MediaSlotImages, []model.MediaReference{
		model.PlaceholderMedia{ID: "p2", IsPlaceholder: true, RemoteID: "77", RemoteURL: "https://cdn.example/77.jpg"},
	})
	state = Compute(d)
	if state.Sections[enums.SectionMedia] != 100 {
		t.Fatalf("remote placeholder should satisfy media")
	}
}
