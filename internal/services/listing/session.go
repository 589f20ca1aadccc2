package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Oohan21/utopia-drafts/internal/domain/enums"
	"github.com/Oohan21/utopia-drafts/internal/domain/model"
	"github.com/Oohan21/utopia-drafts/internal/services/drafts"
	"github.com/Oohan21/utopia-drafts/internal/services/geo"
	"github.com/Oohan21/utopia-drafts/internal/services/media"
	"github.com/Oohan21/utopia-drafts/internal/services/validation"
)

var (
	ErrSessionClosed        = errors.New("draft session closed")
	ErrSessionNotFound      = errors.New("draft session not found")
	ErrSubmissionInProgress = errors.New("submission in progress")
	ErrInvalidField         = errors.New("invalid field name")
	ErrNotSubmittable       = errors.New("draft is not ready for submission")
	ErrListingNotFound      = errors.New("listing not found")
)

// SubmissionError carries field-scoped messages when available, otherwise a single message.
type SubmissionError struct {
	FieldErrors map[string]string
	Message     string
	Err         error
}

func (e *SubmissionError) Error() string {
	msg := e.Message
	if msg == "" && len(e.FieldErrors) > 0 {
		msg = fmt.Sprintf("%d field errors", len(e.FieldErrors))
	}
	if msg == "" {
		msg = "submission failed"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

type DraftStore interface {
	Save(ctx context.Context, key drafts.Key, d *model.Draft) (time.Time, error)
	Load(ctx context.Context, key drafts.Key) (*model.Draft, time.Time, error)
	Clear(ctx context.Context, key drafts.Key) error
}

type SubmissionClient interface {
	Submit(ctx context.Context, payload model.SubmissionPayload) (model.Listing, error)
}

type ListingFetcher interface {
	GetListing(ctx context.Context, listingID string) (model.Listing, error)
}

type Notifier interface {
	ListingSubmitted(ctx context.Context, event model.ListingSubmittedEvent) error
}

type Dependencies struct {
	Geocoder   geo.Geocoder
	References geo.ReferenceSource
	Previewer  media.Previewer
	Drafts     DraftStore
	Submitter  SubmissionClient
	Fetcher    ListingFetcher
	Notifier   Notifier
	Logger     *zap.Logger
}

type Config struct {
	Geo    geo.Config
	Limits media.Limits
}

// Session owns one Draft and serializes every mutation of it.
// Lock order is Session, then Engine; I/O runs on snapshots outside the lock.
type Session struct {
	id    string
	owner int64
	key   drafts.Key

	deps   Dependencies
	media  *media.Manager
	engine *geo.Engine
	now    func() time.Time
	logger *zap.Logger

	mu         sync.Mutex
	draft      *model.Draft
	rev        uint64
	savedAt    time.Time
	lastActive time.Time
	submitting bool
	closed     bool
}

func NewSession(id string, owner int64, d *model.Draft, cfg Config, deps Dependencies) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("session_id", id), zap.Int64("owner_id", owner))
	if d == nil {
		d = model.NewDraft("")
	}

	s := &Session{
		id:     id,
		owner:  owner,
		key:    drafts.Key{OwnerID: owner, ListingID: d.ListingID},
		deps:   deps,
		media:  media.NewManager(cfg.Limits, deps.Previewer, logger),
		engine: geo.NewEngine(cfg.Geo, deps.Geocoder, deps.References, logger),
		now:    time.Now,
		logger: logger,
		draft:  d,
	}
	s.lastActive = s.now()
	s.engine.OnOutcome(s.applyOutcome)
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) OwnerID() int64 {
	return s.owner
}

func (s *Session) DraftKey() drafts.Key {
	return s.key
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// SetField writes one form value; a null value clears the field.
// Changing the city invalidates the selected sub-city.
func (s *Session) SetField(name string, v model.Value) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidField
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writableLocked(); err != nil {
		return err
	}

	if name == model.FieldCity && s.draft.Text(model.FieldCity) != v.Text() {
		s.draft.SetField(model.FieldSubCity, model.Value{})
	}
	s.draft.SetField(name, v)
	s.touchLocked()
	return nil
}

func (s *Session) SetFlag(name string, on bool) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidField
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writableLocked(); err != nil {
		return err
	}
	s.draft.SetFlag(name, on)
	s.touchLocked()
	return nil
}

// SetCoordinates records the pin position and schedules a debounced lookup.
func (s *Session) SetCoordinates(c model.Coordinates) (model.LocationStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writableLocked(); err != nil {
		return model.LocationStatus{}, err
	}

	s.draft.Location = c
	s.draft.Dirty = true
	s.touchLocked()
	s.engine.Schedule(c)
	return s.engine.Status(), nil
}

// LookupLocation resolves the current coordinates immediately.
// A failed lookup is reported in the outcome and never returned as an error.
func (s *Session) LookupLocation(ctx context.Context) (geo.Outcome, error) {
	s.mu.Lock()
	if err := s.writableLocked(); err != nil {
		s.mu.Unlock()
		return geo.Outcome{}, err
	}
	c := s.draft.Location
	s.touchLocked()
	s.mu.Unlock()

	out := s.engine.LookupNow(ctx, c)
	s.applyOutcome(out)
	return out, nil
}

func (s *Session) applyOutcome(out geo.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.engine.IsCurrent(out.Token) {
		return
	}
	if out.State != enums.LookupStateResolved {
		return
	}
	if out.Enrichment.Apply(s.draft) {
		s.rev++
	}
	s.logger.Debug("location enrichment applied",
		zap.Uint64("token", out.Token),
		zap.String("city", out.Enrichment.CityID),
		zap.String("sub_city", out.Enrichment.SubCityID),
	)
}

func (s *Session) AttachMedia(ctx context.Context, slot enums.MediaSlot, asset media.Asset) (model.MediaReference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writableLocked(); err != nil {
		return nil, err
	}

	ref, err := s.media.Attach(ctx, s.draft, slot, asset)
	if err != nil {
		return nil, err
	}
	s.touchLocked()
	return ref, nil
}

func (s *Session) DetachMedia(ctx context.Context, slot enums.MediaSlot, refID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writableLocked(); err != nil {
		return err
	}
	if err := s.media.Detach(ctx, s.draft, slot, refID); err != nil {
		return err
	}
	s.touchLocked()
	return nil
}

func (s *Session) ReorderImages(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writableLocked(); err != nil {
		return err
	}
	if err := s.media.Reorder(s.draft, enums.MediaSlotImages, from, to); err != nil {
		return err
	}
	s.touchLocked()
	return nil
}

// ResolvePreview looks a reference up in any slot and returns its display URI.
func (s *Session) ResolvePreview(refID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slot := range []enums.MediaSlot{enums.MediaSlotImages, enums.MediaSlotVideo, enums.MediaSlotDocuments} {
		for _, ref := range s.draft.MediaIn(slot) {
			if ref.RefID() == refID {
				return s.media.ResolvePreview(ref)
			}
		}
	}
	return "", false
}

func (s *Session) Validation() model.ValidationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return validation.Compute(s.draft)
}

// SaveDraft persists a placeholder-only copy of the draft.
func (s *Session) SaveDraft(ctx context.Context) (time.Time, error) {
	if s.deps.Drafts == nil {
		return time.Time{}, &drafts.StorageError{Op: "save", Key: "", Err: errors.New("draft storage is not configured")}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return time.Time{}, ErrSessionClosed
	}
	snapshot := s.draft.Clone()
	rev := s.rev
	s.mu.Unlock()

	savedAt, err := s.deps.Drafts.Save(ctx, s.key, snapshot)
	if err != nil {
		s.logger.Warn("save draft failed", zap.Error(err))
		return time.Time{}, err
	}

	s.mu.Lock()
	s.savedAt = savedAt
	if s.rev == rev {
		s.draft.Dirty = false
	}
	s.mu.Unlock()
	return savedAt, nil
}

// AutosaveIfDirty saves only when something changed since the last save.
func (s *Session) AutosaveIfDirty(ctx context.Context) (bool, error) {
	s.mu.Lock()
	skip := s.closed || s.submitting || !s.draft.Dirty
	s.mu.Unlock()
	if skip {
		return false, nil
	}
	if _, err := s.SaveDraft(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// RestoreDraft replaces the in-memory draft with the persisted one.
// Live media of the replaced draft is released; restored media needs re-selection.
func (s *Session) RestoreDraft(ctx context.Context) (time.Time, error) {
	if s.deps.Drafts == nil {
		return time.Time{}, drafts.ErrNotFound
	}

	restored, savedAt, err := s.deps.Drafts.Load(ctx, s.key)
	if err != nil {
		return time.Time{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writableLocked(); err != nil {
		return time.Time{}, err
	}

	s.engine.Reset()
	if err := s.media.Teardown(ctx); err != nil {
		s.logger.Warn("release previews before restore", zap.Error(err))
	}
	restored.ListingID = s.key.ListingID
	restored.Dirty = false
	s.draft = restored
	s.savedAt = savedAt
	s.rev++
	s.lastActive = s.now()
	return savedAt, nil
}

// Discard clears the persisted draft and closes the session.
func (s *Session) Discard(ctx context.Context) error {
	var clearErr error
	if s.deps.Drafts != nil {
		clearErr = s.deps.Drafts.Clear(ctx, s.key)
	}
	if err := s.Close(ctx); err != nil {
		return errors.Join(clearErr, err)
	}
	return clearErr
}

// BuildPayload assembles the submission payload, refusing drafts with blocking errors
// or placeholders that need re-upload.
func (s *Session) BuildPayload() (model.SubmissionPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.SubmissionPayload{}, ErrSessionClosed
	}
	return s.buildPayloadLocked()
}

func (s *Session) buildPayloadLocked() (model.SubmissionPayload, error) {
	state := validation.Compute(s.draft)
	fieldErrors := make(map[string]string, len(state.Errors))
	for field, msg := range state.Errors {
		fieldErrors[field] = msg
	}

	payload := model.SubmissionPayload{
		ListingID: s.draft.ListingID,
		Fields:    make(map[string]model.Value, len(s.draft.Fields)),
		Flags:     make(map[string]bool, len(s.draft.Flags)),
		Location:  s.draft.Location,
	}
	for name, v := range s.draft.Fields {
		payload.Fields[name] = v
	}
	for name, on := range s.draft.Flags {
		payload.Flags[name] = on
	}

	for _, slot := range []enums.MediaSlot{enums.MediaSlotImages, enums.MediaSlotVideo, enums.MediaSlotDocuments} {
		for i, ref := range s.draft.MediaIn(slot) {
			part := model.MediaPart{Slot: slot, Position: i, Meta: ref.Meta()}
			switch typed := ref.(type) {
			case model.LiveMedia:
				if typed.Source == nil {
					fieldErrors[string(slot)] = "media must be selected again"
					continue
				}
				part.Source = typed.Source
			case model.PlaceholderMedia:
				if !typed.Resolvable() {
					fieldErrors[string(slot)] = fmt.Sprintf("%s must be uploaded again", typed.Name)
					continue
				}
				part.RemoteID = typed.RemoteID
				part.RemoteURL = typed.RemoteURL
			}
			payload.Media = append(payload.Media, part)
		}
	}

	if len(fieldErrors) > 0 {
		return model.SubmissionPayload{}, &SubmissionError{FieldErrors: fieldErrors, Err: ErrNotSubmittable}
	}

	if len(s.draft.PendingDeletions) > 0 {
		payload.PendingDeletions = append([]string(nil), s.draft.PendingDeletions...)
	}
	return payload, nil
}

// Submit sends the draft. On success the persisted draft is cleared and the session closed.
func (s *Session) Submit(ctx context.Context) (model.Listing, error) {
	if s.deps.Submitter == nil {
		return model.Listing{}, &SubmissionError{Message: "submission is not configured"}
	}

	s.mu.Lock()
	if err := s.writableLocked(); err != nil {
		s.mu.Unlock()
		return model.Listing{}, err
	}
	payload, err := s.buildPayloadLocked()
	if err != nil {
		s.mu.Unlock()
		return model.Listing{}, err
	}
	s.submitting = true
	s.mu.Unlock()

	listing, err := s.deps.Submitter.Submit(ctx, payload)

	s.mu.Lock()
	s.submitting = false
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("listing submission failed", zap.Error(err))
		var subErr *SubmissionError
		if errors.As(err, &subErr) {
			return model.Listing{}, err
		}
		return model.Listing{}, &SubmissionError{Message: "could not submit listing", Err: err}
	}

	if s.deps.Drafts != nil {
		if err := s.deps.Drafts.Clear(ctx, s.key); err != nil {
			s.logger.Warn("clear submitted draft failed", zap.Error(err))
		}
	}
	if s.deps.Notifier != nil {
		images := 0
		for _, part := range payload.Media {
			if part.Slot == enums.MediaSlotImages {
				images++
			}
		}
		event := model.ListingSubmittedEvent{
			ListingID: listing.ID,
			OwnerID:   s.owner,
			Edited:    payload.ListingID != "",
			Images:    images,
			At:        s.now().Unix(),
		}
		if err := s.deps.Notifier.ListingSubmitted(ctx, event); err != nil {
			s.logger.Warn("publish listing submitted event failed", zap.Error(err))
		}
	}
	if err := s.Close(ctx); err != nil {
		s.logger.Warn("close submitted session", zap.Error(err))
	}

	s.logger.Info("listing submitted", zap.String("listing_id", listing.ID))
	return listing, nil
}

// Close stops location lookups and revokes every outstanding preview. Safe to call repeatedly.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.engine.Close()
	return s.media.Teardown(ctx)
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

func (s *Session) writableLocked() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.submitting {
		return ErrSubmissionInProgress
	}
	return nil
}

func (s *Session) touchLocked() {
	s.rev++
	s.lastActive = s.now()
}
