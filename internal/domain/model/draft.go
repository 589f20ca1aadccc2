package model

import (
	"github.com/Oohan21/utopia-drafts/internal/domain/enums"
)

const (
	FieldTitle            = "title"
	FieldDescription      = "description"
	FieldPropertyType     = "property_type"
	FieldListingKind      = "listing_kind"
	FieldCity             = "city"
	FieldSubCity          = "sub_city"
	FieldSpecificLocation = "specific_location"
	FieldAddressLine1     = "address_line_1"
	FieldAddressLine2     = "address_line_2"
	FieldTotalArea        = "total_area"
	FieldBedrooms         = "bedrooms"
	FieldBathrooms        = "bathrooms"
	FieldSalePrice        = "sale_price"
	FieldMonthlyRent      = "monthly_rent"
)

// Coordinates are considered absent while either component is zero.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinates) Present() bool {
	return c.Lat != 0 && c.Lon != 0
}

// Draft is the in-progress listing aggregate owned by a single session.
type Draft struct {
	ListingID        string
	Fields           map[string]Value
	Flags            map[string]bool
	Media            map[enums.MediaSlot][]MediaReference
	Location         Coordinates
	PendingDeletions []string
	Dirty            bool
}

func NewDraft(listingID string) *Draft {
	return &Draft{
		ListingID: listingID,
		Fields:    map[string]Value{},
		Flags:     map[string]bool{},
		Media:     map[enums.MediaSlot][]MediaReference{},
	}
}

func (d *Draft) Field(name string) (Value, bool) {
	v, ok := d.Fields[name]
	return v, ok
}

// Text returns the string value of a field or "" when unset or not a string.
func (d *Draft) Text(name string) string {
	v, ok := d.Fields[name]
	if !ok {
		return ""
	}
	return v.Text()
}

// Number returns the numeric value of a field or 0 when unset or not a number.
func (d *Draft) Number(name string) float64 {
	v, ok := d.Fields[name]
	if !ok {
		return 0
	}
	return v.Number()
}

func (d *Draft) SetField(name string, v Value) {
	if d.Fields == nil {
		d.Fields = map[string]Value{}
	}
	if v.IsNull() {
		delete(d.Fields, name)
	} else {
		d.Fields[name] = v
	}
	d.Dirty = true
}

func (d *Draft) SetFlag(name string, on bool) {
	if d.Flags == nil {
		d.Flags = map[string]bool{}
	}
	if on {
		d.Flags[name] = true
	} else {
		delete(d.Flags, name)
	}
	d.Dirty = true
}

func (d *Draft) MediaIn(slot enums.MediaSlot) []MediaReference {
	return d.Media[slot]
}

func (d *Draft) SetMedia(slot enums.MediaSlot, refs []MediaReference) {
	if d.Media == nil {
		d.Media = map[enums.MediaSlot][]MediaReference{}
	}
	if len(refs) == 0 {
		delete(d.Media, slot)
	} else {
		d.Media[slot] = refs
	}
	d.Dirty = true
}

// Clone returns a deep copy. Media references are immutable values and are shared.
func (d *Draft) Clone() *Draft {
	out := &Draft{
		ListingID: d.ListingID,
		Fields:    make(map[string]Value, len(d.Fields)),
		Flags:     make(map[string]bool, len(d.Flags)),
		Media:     make(map[enums.MediaSlot][]MediaReference, len(d.Media)),
		Location:  d.Location,
		Dirty:     d.Dirty,
	}
	for k, v := range d.Fields {
		out.Fields[k] = v
	}
	for k, v := range d.Flags {
		out.Flags[k] = v
	}
	for slot, refs := range d.Media {
		out.Media[slot] = append([]MediaReference(nil), refs...)
	}
	if len(d.PendingDeletions) > 0 {
		out.PendingDeletions = append([]string(nil), d.PendingDeletions...)
	}
	return out
}
