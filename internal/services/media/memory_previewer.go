package media

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Oohan21/utopia-drafts/internal/domain/model"
)

var ErrHandleNotActive = errors.New("preview handle is not active")

// MemoryPreviewer serves previews straight from the live media source.
// URIs look like "<base>/<handle id>".
type MemoryPreviewer struct {
	base string

	mu     sync.Mutex
	active map[string]model.LiveMedia
}

func NewMemoryPreviewer(base string) *MemoryPreviewer {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = "blob:previews"
	}
	return &MemoryPreviewer{
		base:   base,
		active: map[string]model.LiveMedia{},
	}
}

func (p *MemoryPreviewer) Allocate(_ context.Context, ref model.LiveMedia) (model.PreviewHandle, error) {
	id := uuid.NewString()

	p.mu.Lock()
	p.active[id] = ref
	p.mu.Unlock()

	return model.PreviewHandle{ID: id, RefID: ref.ID, URI: p.base + "/" + id}, nil
}

func (p *MemoryPreviewer) Revoke(_ context.Context, handle model.PreviewHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.active[handle.ID]; !ok {
		return ErrHandleNotActive
	}
	delete(p.active, handle.ID)
	return nil
}

// Lookup returns the media behind an active handle.
func (p *MemoryPreviewer) Lookup(handleID string) (model.LiveMedia, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ref, ok := p.active[handleID]
	return ref, ok
}

func (p *MemoryPreviewer) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}
