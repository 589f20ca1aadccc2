package model

import "github.com/Oohan21/utopia-drafts/internal/domain/enums"

// RemoteAsset is media already stored by the listing backend.
type RemoteAsset struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Listing is the backend entity a draft is hydrated from or submitted into.
type Listing struct {
	ID        string
	Fields    map[string]Value
	Flags     map[string]bool
	Location  Coordinates
	Images    []RemoteAsset
	Video     *RemoteAsset
	Documents []RemoteAsset
}

type MediaPart struct {
	Slot      enums.MediaSlot
	Position  int
	RemoteID  string
	RemoteURL string
	Meta      MediaMeta
	Source    Source
}

// SubmissionPayload is the composite payload handed to the submission client.
type SubmissionPayload struct {
	ListingID        string
	Fields           map[string]Value
	Flags            map[string]bool
	Location         Coordinates
	Media            []MediaPart
	PendingDeletions []string
}

type ListingSubmittedEvent struct {
	ListingID string `json:"listing_id"`
	OwnerID   int64  `json:"owner_id"`
	Edited    bool   `json:"edited"`
	Images    int    `json:"images"`
	At        int64  `json:"at"`
}
