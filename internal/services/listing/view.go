package listing

import (
	"time"

	"github.com/Oohan21/utopia-drafts/internal/domain/enums"
	"github.com/Oohan21/utopia-drafts/internal/domain/model"
	"github.com/Oohan21/utopia-drafts/internal/services/validation"
)

type MediaView struct {
	ID          string
	Meta        model.MediaMeta
	Placeholder bool
	RemoteID    string
	PreviewURI  string
	Resolvable  bool
}

// View is a read-only copy of the session state for presentation.
type View struct {
	SessionID        string
	ListingID        string
	Fields           map[string]model.Value
	Flags            map[string]bool
	Media            map[enums.MediaSlot][]MediaView
	Location         model.Coordinates
	LocationStatus   model.LocationStatus
	PendingDeletions []string
	Validation       model.ValidationState
	Dirty            bool
	SavedAt          time.Time
}

func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.draft.Clone()
	view := View{
		SessionID:        s.id,
		ListingID:        d.ListingID,
		Fields:           d.Fields,
		Flags:            d.Flags,
		Media:            make(map[enums.MediaSlot][]MediaView, len(d.Media)),
		Location:         d.Location,
		LocationStatus:   s.engine.Status(),
		PendingDeletions: d.PendingDeletions,
		Validation:       validation.Compute(d),
		Dirty:            d.Dirty,
		SavedAt:          s.savedAt,
	}
	for slot, refs := range d.Media {
		items := make([]MediaView, 0, len(refs))
		for _, ref := range refs {
			uri, ok := s.media.ResolvePreview(ref)
			item := MediaView{ID: ref.RefID(), Meta: ref.Meta(), PreviewURI: uri, Resolvable: ok}
			if p, isPlaceholder := ref.(model.PlaceholderMedia); isPlaceholder {
				item.Placeholder = true
				item.RemoteID = p.RemoteID
			}
			items = append(items, item)
		}
		view.Media[slot] = items
	}
	return view
}
