package listing

import (
	"github.com/Oohan21/utopia-drafts/internal/domain/enums"
	"github.com/Oohan21/utopia-drafts/internal/domain/model"
)

// Hydrate builds an edit-mode draft from a stored listing. Existing media become
// remote placeholders so removing them queues a server-side deletion.
func Hydrate(l model.Listing) *model.Draft {
	d := model.NewDraft(l.ID)
	for name, v := range l.Fields {
		if !v.IsNull() {
			d.Fields[name] = v
		}
	}
	for name, on := range l.Flags {
		if on {
			d.Flags[name] = true
		}
	}
	d.Location = l.Location

	if refs := remoteRefs(l.Images); len(refs) > 0 {
		d.Media[enums.MediaSlotImages] = refs
	}
	if l.Video != nil {
		d.Media[enums.MediaSlotVideo] = remoteRefs([]model.RemoteAsset{*l.Video})
	}
	if refs := remoteRefs(l.Documents); len(refs) > 0 {
		d.Media[enums.MediaSlotDocuments] = refs
	}
	d.Dirty = false
	return d
}

func remoteRefs(assets []model.RemoteAsset) []model.MediaReference {
	refs := make([]model.MediaReference, 0, len(assets))
	for _, a := range assets {
		if a.ID == "" {
			continue
		}
		refs = append(refs, model.PlaceholderMedia{
			ID:            "remote-" + a.ID,
			MediaMeta:     model.MediaMeta{Name: a.Name, Size: a.Size, ContentType: a.ContentType},
			IsPlaceholder: true,
			RemoteID:      a.ID,
			RemoteURL:     a.URL,
		})
	}
	return refs
}
