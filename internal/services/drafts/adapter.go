package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Oohan21/utopia-drafts/internal/domain/enums"
	"github.com/Oohan21/utopia-drafts/internal/domain/model"
)

const (
	defaultKeyPrefix  = "listing_draft:"
	defaultStaleAfter = 24 * time.Hour
	defaultMaxBytes   = 5 << 20
	envelopeVersion   = 1
	newListingSegment = "new"
)

var (
	ErrNotFound      = errors.New("draft not found")
	ErrQuotaExceeded = errors.New("draft exceeds storage quota")
)

// StorageError reports a failed save or load. The in-memory draft is never affected.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("draft %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// DurableStore is a key-value persistence boundary.
type DurableStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key scopes a draft to its owner and to the listing being edited; an empty ListingID is a new listing.
type Key struct {
	OwnerID   int64
	ListingID string
}

type Config struct {
	KeyPrefix  string
	StaleAfter time.Duration
	MaxBytes   int
}

type Adapter struct {
	store  DurableStore
	cfg    Config
	now    func() time.Time
	logger *zap.Logger
}

func NewAdapter(store DurableStore, cfg Config, logger *zap.Logger) *Adapter {
	if strings.TrimSpace(cfg.KeyPrefix) == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = defaultStaleAfter
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{store: store, cfg: cfg, now: time.Now, logger: logger}
}

func (a *Adapter) StorageKey(key Key) string {
	listing := strings.TrimSpace(key.ListingID)
	if listing == "" {
		listing = newListingSegment
	}
	return a.cfg.KeyPrefix + strconv.FormatInt(key.OwnerID, 10) + ":" + listing
}

// Save writes a placeholder-only copy of the draft and returns the save timestamp.
func (a *Adapter) Save(ctx context.Context, key Key, d *model.Draft) (time.Time, error) {
	storageKey := a.StorageKey(key)
	if a.store == nil {
		return time.Time{}, &StorageError{Op: "save", Key: storageKey, Err: errors.New("durable store is not configured")}
	}

	savedAt := a.now().UTC()
	payload, err := json.Marshal(encode(d, savedAt))
	if err != nil {
		return time.Time{}, &StorageError{Op: "save", Key: storageKey, Err: fmt.Errorf("encode draft: %w", err)}
	}
	if len(payload) > a.cfg.MaxBytes {
		return time.Time{}, &StorageError{
			Op:  "save",
			Key: storageKey,
			Err: fmt.Errorf("%w: %d > %d bytes", ErrQuotaExceeded, len(payload), a.cfg.MaxBytes),
		}
	}

	if err := a.store.Set(ctx, storageKey, payload, a.cfg.StaleAfter); err != nil {
		return time.Time{}, &StorageError{Op: "save", Key: storageKey, Err: err}
	}

	a.logger.Debug("draft saved", zap.String("key", storageKey), zap.Int("bytes", len(payload)))
	return savedAt, nil
}

// Load returns the stored draft with every media reference as a placeholder.
// Drafts older than the staleness window are removed and reported as ErrNotFound.
func (a *Adapter) Load(ctx context.Context, key Key) (*model.Draft, time.Time, error) {
	storageKey := a.StorageKey(key)
	if a.store == nil {
		return nil, time.Time{}, &StorageError{Op: "load", Key: storageKey, Err: errors.New("durable store is not configured")}
	}

	raw, ok, err := a.store.Get(ctx, storageKey)
	if err != nil {
		return nil, time.Time{}, &StorageError{Op: "load", Key: storageKey, Err: err}
	}
	if !ok {
		return nil, time.Time{}, ErrNotFound
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, time.Time{}, &StorageError{Op: "load", Key: storageKey, Err: fmt.Errorf("decode draft: %w", err)}
	}

	if env.SavedAt.IsZero() || a.now().Sub(env.SavedAt) > a.cfg.StaleAfter {
		if err := a.store.Delete(ctx, storageKey); err != nil {
			a.logger.Warn("delete stale draft failed", zap.String("key", storageKey), zap.Error(err))
		}
		return nil, time.Time{}, ErrNotFound
	}

	return env.decode(), env.SavedAt, nil
}

// Clear removes the stored draft; clearing a missing key succeeds.
func (a *Adapter) Clear(ctx context.Context, key Key) error {
	storageKey := a.StorageKey(key)
	if a.store == nil {
		return &StorageError{Op: "clear", Key: storageKey, Err: errors.New("durable store is not configured")}
	}
	if err := a.store.Delete(ctx, storageKey); err != nil {
		return &StorageError{Op: "clear", Key: storageKey, Err: err}
	}
	return nil
}

type envelope struct {
	Version          int                            `json:"version"`
	SavedAt          time.Time                      `json:"saved_at"`
	ListingID        string                         `json:"listing_id,omitempty"`
	Fields           map[string]model.Value         `json:"fields"`
	Flags            map[string]bool                `json:"flags,omitempty"`
	Location         model.Coordinates              `json:"location"`
	Media            map[enums.MediaSlot][]storedRef `json:"media,omitempty"`
	PendingDeletions []string                       `json:"pending_deletions,omitempty"`
}

type storedRef struct {
	ID            string          `json:"id"`
	Meta          model.MediaMeta `json:"meta"`
	IsPlaceholder bool            `json:"is_placeholder"`
	RemoteID      string          `json:"remote_id,omitempty"`
	RemoteURL     string          `json:"remote_url,omitempty"`
}

func encode(d *model.Draft, savedAt time.Time) envelope {
	snapshot := d.Clone()
	env := envelope{
		Version:          envelopeVersion,
		SavedAt:          savedAt,
		ListingID:        snapshot.ListingID,
		Fields:           snapshot.Fields,
		Flags:            snapshot.Flags,
		Location:         snapshot.Location,
		PendingDeletions: snapshot.PendingDeletions,
	}
	if len(snapshot.Media) > 0 {
		env.Media = make(map[enums.MediaSlot][]storedRef, len(snapshot.Media))
		for slot, refs := range snapshot.Media {
			stored := make([]storedRef, 0, len(refs))
			for _, ref := range refs {
				p := model.ToPlaceholder(ref)
				stored = append(stored, storedRef{
					ID:            p.ID,
					Meta:          p.MediaMeta,
					IsPlaceholder: true,
					RemoteID:      p.RemoteID,
					RemoteURL:     p.RemoteURL,
				})
			}
			env.Media[slot] = stored
		}
	}
	return env
}

func (env envelope) decode() *model.Draft {
	d := model.NewDraft(env.ListingID)
	for name, v := range env.Fields {
		if !v.IsNull() {
			d.Fields[name] = v
		}
	}
	for name, on := range env.Flags {
		if on {
			d.Flags[name] = true
		}
	}
	d.Location = env.Location
	for slot, stored := range env.Media {
		if !slot.Valid() || len(stored) == 0 {
			continue
		}
		refs := make([]model.MediaReference, 0, len(stored))
		for _, s := range stored {
			refs = append(refs, model.PlaceholderMedia{
				ID:            s.ID,
				MediaMeta:     s.Meta,
				IsPlaceholder: true,
				RemoteID:      s.RemoteID,
				RemoteURL:     s.RemoteURL,
			})
		}
		d.Media[slot] = refs
	}
	if len(env.PendingDeletions) > 0 {
		d.PendingDeletions = append([]string(nil), env.PendingDeletions...)
	}
	return d
}
