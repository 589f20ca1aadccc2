package model

import (
	"bytes"
	"io"
	"os"
	"strings"
	"time"
)

// Source is a transient handle to raw media bytes.
type Source interface {
	Open() (io.ReadCloser, error)
}

type BytesSource []byte

func (b BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

type FileSource string

func (f FileSource) Open() (io.ReadCloser, error) {
	return os.Open(string(f))
}

type MediaMeta struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	LastModified time.Time `json:"last_modified"`
}

// MediaReference is either a LiveMedia or a PlaceholderMedia.
type MediaReference interface {
	RefID() string
	Meta() MediaMeta
	isMediaReference()
}

// LiveMedia holds session-local bytes that have not been sent yet.
type LiveMedia struct {
	ID string
	MediaMeta
	Source Source
}

func (l LiveMedia) RefID() string   { return l.ID }
func (l LiveMedia) Meta() MediaMeta { return l.MediaMeta }
func (LiveMedia) isMediaReference() {}

// PlaceholderMedia stands in for media whose bytes are not available in this session.
// RemoteID is set for assets already stored by the backend.
type PlaceholderMedia struct {
	ID string
	MediaMeta
	IsPlaceholder bool
	RemoteID      string
	RemoteURL     string
}

func (p PlaceholderMedia) RefID() string   { return p.ID }
func (p PlaceholderMedia) Meta() MediaMeta { return p.MediaMeta }
func (PlaceholderMedia) isMediaReference() {}

func (p PlaceholderMedia) Persisted() bool {
	return strings.TrimSpace(p.RemoteID) != ""
}

func (p PlaceholderMedia) Resolvable() bool {
	return strings.TrimSpace(p.RemoteURL) != ""
}

// ToPlaceholder converts a live reference into its metadata-only stand-in.
func ToPlaceholder(ref MediaReference) PlaceholderMedia {
	switch typed := ref.(type) {
	case LiveMedia:
		return PlaceholderMedia{ID: typed.ID, MediaMeta: typed.MediaMeta, IsPlaceholder: true}
	case PlaceholderMedia:
		typed.IsPlaceholder = true
		return typed
	default:
		panic("model: unknown media reference type")
	}
}

// Submittable reports whether the reference can be part of a submission.
func Submittable(ref MediaReference) bool {
	switch typed := ref.(type) {
	case LiveMedia:
		return typed.Source != nil
	case PlaceholderMedia:
		return typed.Resolvable()
	default:
		return false
	}
}

type PreviewHandle struct {
	ID    string
	RefID string
	URI   string
}
