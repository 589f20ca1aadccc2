package validation

import (
	"math"
	"strings"

	"github.com/Oohan21/utopia-drafts/internal/domain/enums"
	"github.com/Oohan21/utopia-drafts/internal/domain/model"
	"github.com/Oohan21/utopia-drafts/internal/domain/rules"
	"github.com/Oohan21/utopia-drafts/internal/pkg/validate"
)

const (
	MsgRequired      = "is required"
	MsgPositive      = "must be greater than zero"
	MsgListingKind   = "must be sale or rent"
	MsgImageRequired = "at least one image is required"
	MsgPriceLow      = "looks unusually low"

	// FieldImages keys the media error; it is not a form field.
	FieldImages = "images"
)

type rule struct {
	section enums.Section
	check   func(d *model.Draft, errs map[string]string)
}

var sectionRules = []rule{
	{enums.SectionBasic, func(d *model.Draft, errs map[string]string) {
		requireText(d, errs, model.FieldTitle)
		requireText(d, errs, model.FieldDescription)
	}},
	{enums.SectionLocation, func(d *model.Draft, errs map[string]string) {
		requireText(d, errs, model.FieldCity)
		requireText(d, errs, model.FieldSubCity)
		requireText(d, errs, model.FieldSpecificLocation)
	}},
	{enums.SectionDetails, func(d *model.Draft, errs map[string]string) {
		requirePositive(d, errs, model.FieldTotalArea)
	}},
	{enums.SectionPricing, func(d *model.Draft, errs map[string]string) {
		field, ok := rules.PriceField(listingKind(d))
		if !ok {
			errs[model.FieldListingKind] = MsgListingKind
			return
		}
		requirePositive(d, errs, field)
	}},
	{enums.SectionFeatures, func(*model.Draft, map[string]string) {}},
	{enums.SectionMedia, func(d *model.Draft, errs map[string]string) {
		for _, ref := range d.MediaIn(enums.MediaSlotImages) {
			if model.Submittable(ref) {
				return
			}
		}
		errs[FieldImages] = MsgImageRequired
	}},
}

// Compute derives field errors, soft warnings and section progress from the draft.
func Compute(d *model.Draft) model.ValidationState {
	state := model.ValidationState{
		Errors:   map[string]string{},
		Warnings: map[string]string{},
		Sections: make(map[enums.Section]int, len(sectionRules)),
	}
	if d == nil {
		d = model.NewDraft("")
	}

	total := 0
	for _, r := range sectionRules {
		errs := map[string]string{}
		r.check(d, errs)
		score := 100
		if len(errs) > 0 {
			score = 0
		}
		for field, msg := range errs {
			state.Errors[field] = msg
		}
		state.Sections[r.section] = score
		total += score
	}
	state.Progress = int(math.Round(float64(total) / float64(len(sectionRules))))

	kind := listingKind(d)
	if field, ok := rules.PriceField(kind); ok {
		if amount := d.Number(field); amount > 0 && rules.PriceLooksLow(kind, amount) {
			state.Warnings[field] = MsgPriceLow
		}
	}

	return state
}

func listingKind(d *model.Draft) enums.ListingKind {
	return enums.ListingKind(strings.ToLower(strings.TrimSpace(d.Text(model.FieldListingKind))))
}

func requireText(d *model.Draft, errs map[string]string, field string) {
	if !validate.Required(d.Text(field)) {
		errs[field] = MsgRequired
	}
}

func requirePositive(d *model.Draft, errs map[string]string, field string) {
	if _, ok := d.Field(field); !ok {
		errs[field] = MsgRequired
		return
	}
	if !validate.Positive(d.Number(field)) {
		errs[field] = MsgPositive
	}
}
