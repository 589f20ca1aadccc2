package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Oohan21/utopia-drafts/internal/domain/model"
)

const defaultIdleTTL = 2 * time.Hour

// Registry tracks the open sessions of all owners.
type Registry struct {
	cfg     Config
	deps    Dependencies
	idleTTL time.Duration
	newID   func() string
	now     func() time.Time
	logger  *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(cfg Config, deps Dependencies, idleTTL time.Duration) *Registry {
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		cfg:      cfg,
		deps:     deps,
		idleTTL:  idleTTL,
		newID:    uuid.NewString,
		now:      time.Now,
		logger:   logger,
		sessions: map[string]*Session{},
	}
}

// Start opens a session for a new listing, or for editing listingID when it is set.
func (r *Registry) Start(ctx context.Context, owner int64, listingID string) (*Session, error) {
	if owner <= 0 {
		return nil, fmt.Errorf("start draft session: invalid owner id %d", owner)
	}

	d := model.NewDraft("")
	listingID = strings.TrimSpace(listingID)
	if listingID != "" {
		if r.deps.Fetcher == nil {
			return nil, errors.New("start draft session: listing fetcher is not configured")
		}
		l, err := r.deps.Fetcher.GetListing(ctx, listingID)
		if err != nil {
			return nil, fmt.Errorf("fetch listing %s: %w", listingID, err)
		}
		d = Hydrate(l)
		d.ListingID = listingID
	}

	s := NewSession(r.newID(), owner, d, r.cfg, r.deps)
	s.now = r.now
	s.lastActive = r.now()

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	r.logger.Info("draft session started",
		zap.String("session_id", s.id),
		zap.Int64("owner_id", owner),
		zap.String("listing_id", listingID),
	)
	return s, nil
}

// Get returns an open session that belongs to owner.
func (r *Registry) Get(owner int64, id string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok || s.owner != owner || s.Closed() {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// AutosaveAll saves every dirty session and returns how many were written.
func (r *Registry) AutosaveAll(ctx context.Context) (int, error) {
	saved := 0
	var errs []error
	for _, s := range r.snapshot() {
		ok, err := s.AutosaveIfDirty(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("autosave %s: %w", s.id, err))
			continue
		}
		if ok {
			saved++
		}
	}
	return saved, errors.Join(errs...)
}

// Sweep drops closed sessions and closes the ones idle longer than the TTL, saving them first.
func (r *Registry) Sweep(ctx context.Context) int {
	cutoff := r.now().Add(-r.idleTTL)
	expired := 0
	for _, s := range r.snapshot() {
		if s.Closed() {
			r.Remove(s.id)
			continue
		}
		if s.Submitting() || s.LastActive().After(cutoff) {
			continue
		}
		if _, err := s.AutosaveIfDirty(ctx); err != nil {
			r.logger.Warn("save idle draft before expiry failed", zap.String("session_id", s.id), zap.Error(err))
		}
		if err := s.Close(ctx); err != nil {
			r.logger.Warn("close idle session", zap.String("session_id", s.id), zap.Error(err))
		}
		r.Remove(s.id)
		expired++
	}
	return expired
}

// CloseAll closes every session, saving dirty drafts first.
func (r *Registry) CloseAll(ctx context.Context) error {
	var errs []error
	for _, s := range r.snapshot() {
		if _, err := s.AutosaveIfDirty(ctx); err != nil {
			errs = append(errs, err)
		}
		if err := s.Close(ctx); err != nil {
			errs = append(errs, err)
		}
		r.Remove(s.id)
	}
	return errors.Join(errs...)
}
