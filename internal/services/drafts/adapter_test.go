package drafts

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Oohan21/utopia-drafts/internal/domain/enums"
	"github.com/Oohan21/utopia-drafts/internal/domain/model"
	redrepo "github.com/Oohan21/utopia-drafts/internal/repo/redis"
)

func newTestAdapter(t *testing.T, cfg Config) (*Adapter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewAdapter(redrepo.NewDraftStore(client), cfg, nil), mr
}

func sampleDraft() *model.Draft {
	d := model.NewDraft("")
	d.SetField(model.FieldTitle, model.String("Villa with garden"))
	d.SetField(model.FieldTotalArea, model.Number(320))
	d.SetField(model.FieldBedrooms, model.Number(0))
	d.SetField(model.FieldListingKind, model.String("sale"))
	d.SetFlag("parking", true)
	d.Location = model.Coordinates{Lat: 9.032, Lon: 38.746}
	modified := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	d.SetMedia(enums.MediaSlotImages, []model.MediaReference{
		model.LiveMedia{
			ID:        "img-1",
			MediaMeta: model.MediaMeta{Name: "front.jpg", Size: 2048, ContentType: "image/jpeg", LastModified: modified},
			Source:    model.BytesSource(strings.Repeat("x", 2048)),
		},
		model.PlaceholderMedia{
			ID:            "img-2",
			MediaMeta:     model.MediaMeta{Name: "old.jpg", Size: 100, ContentType: "image/jpeg"},
			IsPlaceholder: true,
			RemoteID:      "55",
			RemoteURL:     "https://cdn.example/55.jpg",
		},
	})
	d.PendingDeletions = []string{"41"}
	return d
}

func TestSaveLoadPreservesFields(t *testing.T) {
	adapter, _ := newTestAdapter(t, Config{})
	key := Key{OwnerID: 7}
	d := sampleDraft()

	if _, err := adapter.Save(context.Background(), key, d); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, _, err := adapter.Load(context.Background(), key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(loaded.Fields) != len(d.Fields) {
		t.Fatalf("unexpected field count: got %d want %d", len(loaded.Fields), len(d.Fields))
	}
	for name, want := range d.Fields {
		if got := loaded.Fields[name]; got != want {
			t.Fatalf("field %s: got %+v want %+v", name, got, want)
		}
	}
	if !loaded.Flags["parking"] {
		t.Fatalf("flags not restored: %v", loaded.Flags)
	}
	if loaded.Location != d.Location {
		t.Fatalf("location not restored: %+v", loaded.Location)
	}
	if len(loaded.PendingDeletions) != 1 || loaded.PendingDeletions[0] != "41" {
		t.Fatalf("pending deletions not restored: %v", loaded.PendingDeletions)
	}
}

func TestSaveConvertsLiveMediaToPlaceholders(t *testing.T) {
	adapter, mr := newTestAdapter(t, Config{})
	key := Key{OwnerID: 7, ListingID: "99"}
	d := sampleDraft()

	if _, err := adapter.Save(context.Background(), key, d); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err := mr.Get(adapter.StorageKey(key))
	if err != nil {
		t.Fatalf("read raw payload: %v", err)
	}
	if strings.Contains(raw, strings.Repeat("x", 64)) {
		t.Fatalf("raw media bytes leaked into the stored draft")
	}

	loaded, _, err := adapter.Load(context.Background(), key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	images := loaded.MediaIn(enums.MediaSlotImages)
	original := d.MediaIn(enums.MediaSlotImages)
	if len(images) != len(original) {
		t.Fatalf("unexpected image count: %d", len(images))
	}
	for i, ref := range images {
		p, ok := ref.(model.PlaceholderMedia)
		if !ok {
			t.Fatalf("image %d is %T, want placeholder", i, ref)
		}
		if !p.IsPlaceholder {
			t.Fatalf("image %d lacks placeholder marker", i)
		}
		want := original[i].Meta()
		if p.Name != want.Name || p.Size != want.Size || p.ContentType != want.ContentType {
			t.Fatalf("image %d meta mismatch: got %+v want %+v", i, p.MediaMeta, want)
		}
		if !p.LastModified.Equal(want.LastModified) {
			t.Fatalf("image %d timestamp mismatch", i)
		}
	}
	if images[0].(model.PlaceholderMedia).Resolvable() {
		t.Fatalf("converted live image must need re-selection")
	}
	if p := images[1].(model.PlaceholderMedia); p.RemoteID != "55" || !p.Resolvable() {
		t.Fatalf("remote placeholder lost its remote identity: %+v", p)
	}
	if _, ok := d.MediaIn(enums.MediaSlotImages)[0].(model.LiveMedia); !ok {
		t.Fatalf("save must not mutate the in-memory draft")
	}
}

func TestSaveOverQuotaReturnsStorageError(t *testing.T) {
	adapter, mr := newTestAdapter(t, Config{MaxBytes: 64})
	key := Key{OwnerID: 1}

	_, err := adapter.Save(context.Background(), key, sampleDraft())
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if mr.Exists(adapter.StorageKey(key)) {
		t.Fatalf("over-quota draft must not be written")
	}
}

func TestLoadRejectsStaleDraft(t *testing.T) {
	adapter, mr := newTestAdapter(t, Config{StaleAfter: 48 * time.Hour})
	adapter.cfg.StaleAfter = 24 * time.Hour
	key := Key{OwnerID: 3}

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	adapter.now = func() time.Time { return base }
	if _, err := adapter.Save(context.Background(), key, sampleDraft()); err != nil {
		t.Fatalf("save: %v", err)
	}

	adapter.now = func() time.Time { return base.Add(23 * time.Hour) }
	if _, _, err := adapter.Load(context.Background(), key); err != nil {
		t.Fatalf("fresh draft should load: %v", err)
	}

	adapter.now = func() time.Time { return base.Add(25 * time.Hour) }
	if _, _, err := adapter.Load(context.Background(), key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for stale draft, got %v", err)
	}
	if mr.Exists(adapter.StorageKey(key)) {
		t.Fatalf("stale draft should be removed")
	}
}

func TestLoadMissingAndCorrupt(t *testing.T) {
	adapter, mr := newTestAdapter(t, Config{})
	key := Key{OwnerID: 4}

	if _, _, err := adapter.Load(context.Background(), key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mr.Set(adapter.StorageKey(key), "{not json"); err != nil {
		t.Fatalf("seed corrupt payload: %v", err)
	}
	_, _, err := adapter.Load(context.Background(), key)
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	adapter, mr := newTestAdapter(t, Config{})
	key := Key{OwnerID: 5, ListingID: "12"}

	if _, err := adapter.Save(context.Background(), key, sampleDraft()); err != nil {
		t.Fatalf("save: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := adapter.Clear(context.Background(), key); err != nil {
			t.Fatalf("clear #%d: %v", i+1, err)
		}
	}
	if mr.Exists(adapter.StorageKey(key)) {
		t.Fatalf("draft still stored after clear")
	}
}

func TestStorageKeyScopesOwnerAndListing(t *testing.T) {
	adapter := NewAdapter(nil, Config{}, nil)
	if got := adapter.StorageKey(Key{OwnerID: 9}); got != "listing_draft:9:new" {
		t.Fatalf("unexpected new-listing key: %s", got)
	}
	if got := adapter.StorageKey(Key{OwnerID: 9, ListingID: "120"}); got != "listing_draft:9:120" {
		t.Fatalf("unexpected edit key: %s", got)
	}
}
