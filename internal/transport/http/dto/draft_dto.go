package dto

import (
	"encoding/json"
	"time"
)

type StartDraftRequest struct {
	ListingID string `json:"listing_id"`
}

type PatchFieldsRequest struct {
	Fields map[string]json.RawMessage `json:"fields"`
	Flags  map[string]bool            `json:"flags"`
}

type CoordinatesRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type ReorderRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

type CoordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type LocationStatusResponse struct {
	State   string `json:"state"`
	Reason  string `json:"reason,omitempty"`
	Address string `json:"address,omitempty"`
}

type MediaItemResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	LastModified time.Time `json:"last_modified"`
	Placeholder  bool      `json:"placeholder"`
	RemoteID     string    `json:"remote_id,omitempty"`
	PreviewURL   string    `json:"preview_url,omitempty"`
	Resolvable   bool      `json:"resolvable"`
}

type ValidationResponse struct {
	Errors   map[string]string `json:"errors"`
	Warnings map[string]string `json:"warnings"`
	Sections map[string]int    `json:"sections"`
	Progress int               `json:"progress"`
}

type DraftResponse struct {
	SessionID        string                         `json:"session_id"`
	ListingID        string                         `json:"listing_id,omitempty"`
	Fields           map[string]any                 `json:"fields"`
	Flags            map[string]bool                `json:"flags"`
	Media            map[string][]MediaItemResponse `json:"media"`
	Location         CoordinatesResponse            `json:"location"`
	LocationStatus   LocationStatusResponse         `json:"location_status"`
	PendingDeletions []string                       `json:"pending_deletions"`
	Validation       ValidationResponse             `json:"validation"`
	Dirty            bool                           `json:"dirty"`
	SavedAt          *time.Time                     `json:"saved_at"`
}

type SaveDraftResponse struct {
	SavedAt time.Time `json:"saved_at"`
}

type SubmitResponse struct {
	ListingID string `json:"listing_id"`
}
