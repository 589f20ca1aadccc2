package media

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Oohan21/utopia-drafts/internal/domain/enums"
	"github.com/Oohan21/utopia-drafts/internal/domain/model"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("media reference not found")
)

const (
	ConstraintSlot      = "slot"
	ConstraintEmpty     = "empty"
	ConstraintSize      = "max_size"
	ConstraintMIME      = "mime_type"
	ConstraintMaxImages = "max_images"
	ConstraintReorder   = "reorder"
)

// ValidationError names the attach constraint that was violated.
type ValidationError struct {
	Slot       enums.MediaSlot
	Constraint string
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Slot, e.Message, e.Constraint)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

type Limits struct {
	MaxImageBytes    int64
	MaxVideoBytes    int64
	MaxDocumentBytes int64
	MaxImages        int
}

func DefaultLimits() Limits {
	return Limits{
		MaxImageBytes:    10 << 20,
		MaxVideoBytes:    100 << 20,
		MaxDocumentBytes: 20 << 20,
		MaxImages:        20,
	}
}

// Asset is a raw user selection before it becomes a LiveMedia reference.
type Asset struct {
	Name         string
	Size         int64
	ContentType  string
	LastModified time.Time
	Source       model.Source
}

type Previewer interface {
	Allocate(ctx context.Context, ref model.LiveMedia) (model.PreviewHandle, error)
	Revoke(ctx context.Context, handle model.PreviewHandle) error
}

// Manager owns the preview handles of the live media in one draft.
// It is not safe for concurrent use; the owning session serializes calls.
type Manager struct {
	limits    Limits
	previewer Previewer
	handles   map[string]model.PreviewHandle
	newID     func() string
	logger    *zap.Logger
}

func NewManager(limits Limits, previewer Previewer, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		limits:    limits,
		previewer: previewer,
		handles:   map[string]model.PreviewHandle{},
		newID:     uuid.NewString,
		logger:    logger,
	}
}

func (m *Manager) Limits() Limits {
	return m.limits
}

// Attach validates the asset against the slot rules and adds it to the draft.
// On error the draft is left untouched.
func (m *Manager) Attach(ctx context.Context, d *model.Draft, slot enums.MediaSlot, asset Asset) (model.MediaReference, error) {
	if err := m.check(d, slot, asset); err != nil {
		return nil, err
	}

	ref := model.LiveMedia{
		ID: m.newID(),
		MediaMeta: model.MediaMeta{
			Name:         strings.TrimSpace(asset.Name),
			Size:         asset.Size,
			ContentType:  normalizeContentType(asset.ContentType),
			LastModified: asset.LastModified.UTC(),
		},
		Source: asset.Source,
	}

	var handle model.PreviewHandle
	if m.previewer != nil {
		h, err := m.previewer.Allocate(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("allocate preview: %w", err)
		}
		handle = h
	}

	if slot == enums.MediaSlotVideo {
		for _, prev := range d.MediaIn(slot) {
			m.release(ctx, d, prev)
		}
		d.SetMedia(slot, []model.MediaReference{ref})
	} else {
		refs := append(append([]model.MediaReference(nil), d.MediaIn(slot)...), ref)
		d.SetMedia(slot, refs)
	}

	if m.previewer != nil {
		m.handles[ref.ID] = handle
	}

	m.logger.Debug("media attached",
		zap.String("slot", string(slot)),
		zap.String("ref_id", ref.ID),
		zap.Int64("size", ref.Size),
	)

	return ref, nil
}

// Detach removes a reference. Live media has its preview revoked; a server-persisted
// placeholder is queued for deletion at submission time instead.
func (m *Manager) Detach(ctx context.Context, d *model.Draft, slot enums.MediaSlot, refID string) error {
	refs := d.MediaIn(slot)
	idx := indexOf(refs, refID)
	if idx < 0 {
		return ErrNotFound
	}

	m.release(ctx, d, refs[idx])

	out := make([]model.MediaReference, 0, len(refs)-1)
	out = append(out, refs[:idx]...)
	out = append(out, refs[idx+1:]...)
	d.SetMedia(slot, out)

	return nil
}

// Reorder moves an image; index 0 is the cover.
func (m *Manager) Reorder(d *model.Draft, slot enums.MediaSlot, from, to int) error {
	if slot != enums.MediaSlotImages {
		return &ValidationError{Slot: slot, Constraint: ConstraintReorder, Message: "only images can be reordered"}
	}
	refs := d.MediaIn(slot)
	if from < 0 || from >= len(refs) || to < 0 || to >= len(refs) {
		return &ValidationError{Slot: slot, Constraint: ConstraintReorder, Message: "index out of range"}
	}
	if from == to {
		return nil
	}

	out := make([]model.MediaReference, 0, len(refs))
	moved := refs[from]
	for i, ref := range refs {
		if i == from {
			continue
		}
		out = append(out, ref)
	}
	out = append(out[:to], append([]model.MediaReference{moved}, out[to:]...)...)
	d.SetMedia(slot, out)

	return nil
}

// ResolvePreview returns a displayable URI, or false for a placeholder that must be re-uploaded.
func (m *Manager) ResolvePreview(ref model.MediaReference) (string, bool) {
	switch typed := ref.(type) {
	case model.LiveMedia:
		h, ok := m.handles[typed.ID]
		if !ok {
			return "", false
		}
		return h.URI, true
	case model.PlaceholderMedia:
		if !typed.Resolvable() {
			return "", false
		}
		return typed.RemoteURL, true
	default:
		return "", false
	}
}

func (m *Manager) Outstanding() int {
	return len(m.handles)
}

// Teardown revokes every outstanding handle once. Safe to call repeatedly.
func (m *Manager) Teardown(ctx context.Context) error {
	var errs []error
	for refID, handle := range m.handles {
		delete(m.handles, refID)
		if err := m.previewer.Revoke(ctx, handle); err != nil {
			errs = append(errs, fmt.Errorf("revoke preview %s: %w", handle.ID, err))
		}
	}
	if len(errs) > 0 {
		m.logger.Warn("media teardown finished with errors", zap.Int("failed", len(errs)))
	}
	return errors.Join(errs...)
}

func (m *Manager) release(ctx context.Context, d *model.Draft, ref model.MediaReference) {
	switch typed := ref.(type) {
	case model.LiveMedia:
		handle, ok := m.handles[typed.ID]
		if !ok {
			return
		}
		delete(m.handles, typed.ID)
		if err := m.previewer.Revoke(ctx, handle); err != nil {
			m.logger.Warn("revoke preview failed", zap.Error(err), zap.String("handle_id", handle.ID))
		}
	case model.PlaceholderMedia:
		if typed.Persisted() {
			d.PendingDeletions = append(d.PendingDeletions, typed.RemoteID)
			d.Dirty = true
		}
	}
}

func (m *Manager) check(d *model.Draft, slot enums.MediaSlot, asset Asset) error {
	if !slot.Valid() {
		return &ValidationError{Slot: slot, Constraint: ConstraintSlot, Message: "unknown media slot"}
	}
	if asset.Source == nil || asset.Size <= 0 {
		return &ValidationError{Slot: slot, Constraint: ConstraintEmpty, Message: "file is empty"}
	}

	contentType := normalizeContentType(asset.ContentType)
	switch slot {
	case enums.MediaSlotImages:
		if asset.Size > m.limits.MaxImageBytes {
			return sizeError(slot, m.limits.MaxImageBytes)
		}
		if !strings.HasPrefix(contentType, "image/") {
			return &ValidationError{Slot: slot, Constraint: ConstraintMIME, Message: "image must have an image/* type"}
		}
		if m.limits.MaxImages > 0 && len(d.MediaIn(slot)) >= m.limits.MaxImages {
			return &ValidationError{
				Slot:       slot,
				Constraint: ConstraintMaxImages,
				Message:    fmt.Sprintf("at most %d images allowed", m.limits.MaxImages),
			}
		}
	case enums.MediaSlotVideo:
		if asset.Size > m.limits.MaxVideoBytes {
			return sizeError(slot, m.limits.MaxVideoBytes)
		}
		if !strings.HasPrefix(contentType, "video/") {
			return &ValidationError{Slot: slot, Constraint: ConstraintMIME, Message: "video must have a video/* type"}
		}
	case enums.MediaSlotDocuments:
		if asset.Size > m.limits.MaxDocumentBytes {
			return sizeError(slot, m.limits.MaxDocumentBytes)
		}
	}

	return nil
}

func sizeError(slot enums.MediaSlot, limit int64) error {
	return &ValidationError{
		Slot:       slot,
		Constraint: ConstraintSize,
		Message:    fmt.Sprintf("file exceeds %d MB", limit>>20),
	}
}

func normalizeContentType(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "application/octet-stream"
	}
	parsed, _, err := mime.ParseMediaType(value)
	if err != nil {
		return strings.ToLower(value)
	}
	return parsed
}

func indexOf(refs []model.MediaReference, refID string) int {
	for i, ref := range refs {
		if ref.RefID() == refID {
			return i
		}
	}
	return -1
}
