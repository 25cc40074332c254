/*
Package appstate holds each user's favorites and progress collections in
memory and mirrors every change to durable storage.
*/
package appstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"Lumi_V0.1/internal/database"
	"Lumi_V0.1/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Collection names reported to change listeners.
const (
	CollectionFavorites = "favorites"
	CollectionProgress  = "progress"
)

// IDLayout formats progress entry ids. It sorts lexically in time order.
const IDLayout = "2006-01-02T15:04:05.000Z"

// writeTimeout bounds one durable write.
const writeTimeout = 10 * time.Second

// DefaultDateLayout formats ProgressEntry.Date when no layout is configured.
const DefaultDateLayout = "1/2/2006"

// ChangeFunc is called after a collection of userID changed.
type ChangeFunc func(userID, collection string)

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithDateLayout sets the layout used for ProgressEntry.Date.
func WithDateLayout(layout string) Option {
	return func(s *Store) {
		if layout != "" {
			s.dateLayout = layout
		}
	}
}

// WithOnChange registers a listener for collection changes.
func WithOnChange(fn ChangeFunc) Option {
	return func(s *Store) { s.onChange = fn }
}

// Store is the state of a single user. It is safe for concurrent use.
type Store struct {
	userID     string
	kv         database.KV
	now        func() time.Time
	dateLayout string
	onChange   ChangeFunc

	mu        sync.Mutex
	hydrated  bool
	favorites []models.Product
	progress  []models.ProgressEntry
}

// NewStore returns an empty, not yet hydrated store for userID.
func NewStore(userID string, kv database.KV, opts ...Option) *Store {
	s := &Store{
		userID:     userID,
		kv:         kv,
		now:        time.Now,
		dateLayout: DefaultDateLayout,
		favorites:  []models.Product{},
		progress:   []models.ProgressEntry{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UserID returns the owner of the store.
func (s *Store) UserID() string { return s.userID }

// Hydrated reports whether Hydrate has completed.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Hydrate loads both collections from storage. Only the first successful
// call has any effect. Missing or corrupt slots load as empty. A failed read
// is returned and leaves the store unhydrated so a later call can retry;
// hydrating empty there would overwrite the stored data on the next write.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return nil
	}

	var (
		favorites []models.Product
		progress  []models.ProgressEntry
	)

	g, grpCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		favorites, err = loadSlot[models.Product](grpCtx, s.kv, s.userID, database.SlotFavorites)
		return err
	})
	g.Go(func() error {
		var err error
		progress, err = loadSlot[models.ProgressEntry](grpCtx, s.kv, s.userID, database.SlotProgress)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.favorites = favorites
	s.progress = progress
	s.hydrated = true

	log.Ctx(ctx).Debug().
		Str("user_id", s.userID).
		Int("favorites", len(favorites)).
		Int("progress", len(progress)).
		Msg("state hydrated")
	return nil
}

// loadSlot reads and decodes one slot. Absent and unparsable slots yield an
// empty, non-nil slice; storage errors are returned.
func loadSlot[T any](ctx context.Context, kv database.KV, userID, slot string) ([]T, error) {
	raw, err := kv.Get(ctx, userID, slot)
	if errors.Is(err, database.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("user_id", userID).Str("slot", slot).Msg("Failed to read stored state")
		return nil, fmt.Errorf("read %s: %w", slot, err)
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("user_id", userID).Str("slot", slot).Msg("Failed to parse stored state, using empty")
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// AddFavorite appends p unless a favorite with the same name exists.
// It reports whether the product was added.
func (s *Store) AddFavorite(ctx context.Context, p models.Product) bool {
	s.mu.Lock()
	if s.indexFavorite(p.Name) >= 0 {
		s.mu.Unlock()
		return false
	}
	s.favorites = append(s.favorites, p)
	s.flush(ctx, database.SlotFavorites, s.favorites)
	s.mu.Unlock()

	s.changed(CollectionFavorites)
	return true
}

// RemoveFavorite drops every favorite named name and reports whether any matched.
func (s *Store) RemoveFavorite(ctx context.Context, name string) bool {
	s.mu.Lock()
	before := len(s.favorites)
	s.favorites = slices.DeleteFunc(s.favorites, func(p models.Product) bool {
		return p.Name == name
	})
	if len(s.favorites) == before {
		s.mu.Unlock()
		return false
	}
	s.flush(ctx, database.SlotFavorites, s.favorites)
	s.mu.Unlock()

	s.changed(CollectionFavorites)
	return true
}

func (s *Store) IsFavorite(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexFavorite(name) >= 0
}

func (s *Store) indexFavorite(name string) int {
	return slices.IndexFunc(s.favorites, func(p models.Product) bool {
		return p.Name == name
	})
}

// AddProgressEntry stamps e with an id and date and puts it first.
func (s *Store) AddProgressEntry(ctx context.Context, e models.NewProgressEntry) models.ProgressEntry {
	now := s.now()
	entry := models.ProgressEntry{
		ID:           now.UTC().Format(IDLayout),
		Date:         now.Local().Format(s.dateLayout),
		PhotoDataURI: e.PhotoDataURI,
		Analysis:     e.Analysis,
	}

	s.mu.Lock()
	s.progress = slices.Insert(s.progress, 0, entry)
	s.flush(ctx, database.SlotProgress, s.progress)
	s.mu.Unlock()

	s.changed(CollectionProgress)
	return entry
}

// Favorites returns a copy of the favorites in insertion order.
func (s *Store) Favorites() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.favorites)
}

// Progress returns a copy of the progress entries, newest first.
func (s *Store) Progress() []models.ProgressEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.progress)
}

// ProgressEntry looks up an entry by id.
func (s *Store) ProgressEntry(id string) (models.ProgressEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.progress, func(e models.ProgressEntry) bool { return e.ID == id })
	if i < 0 {
		return models.ProgressEntry{}, false
	}
	return s.progress[i], true
}

// flush writes the whole slot. Callers hold s.mu. Nothing is written before
// hydration so an early mutation cannot clobber stored data. The write
// outlives the caller's ctx: a client hanging up must not lose the change.
func (s *Store) flush(ctx context.Context, slot string, v any) {
	if !s.hydrated {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("slot", slot).Msg("Failed to encode state")
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := s.kv.Put(writeCtx, s.userID, slot, raw); err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("user_id", s.userID).
			Str("slot", slot).
			Msg("Failed to persist state")
	}
}

// changed runs the listener. Callers must not hold s.mu; listeners may block
// on network writes.
func (s *Store) changed(collection string) {
	if s.onChange != nil {
		s.onChange(s.userID, collection)
	}
}
