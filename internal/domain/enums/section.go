package enums

type Section string

const (
	SectionBasic    Section = "basic"
	SectionLocation Section = "location"
	SectionDetails  Section = "details"
	SectionPricing  Section = "pricing"
	SectionFeatures Section = "features"
	SectionMedia    Section = "media"
)

// Sections lists the editor sections in display order.
func Sections() []Section {
	return []Section{
		SectionBasic,
		SectionLocation,
		SectionDetails,
		SectionPricing,
		SectionFeatures,
		SectionMedia,
	}
}
