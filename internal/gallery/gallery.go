// Package gallery keeps the user's saved works: named, timestamped snapshots
// of the stroke store, persisted as one JSON array under a single key.
package gallery

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"Paint3D/internal/state"
	"Paint3D/internal/storage"
)

// DefaultKey is the storage key the works list lives under.
const DefaultKey = "paint3d_works"

var (
	ErrNothingToSave = errors.New("nothing to save")
	ErrWorkNotFound  = errors.New("work not found")
)

// Work is a saved snapshot of the stroke list. Works are never modified
// after they are created.
type Work struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	Strokes   []state.Stroke `json:"strokes"`
	Thumbnail string         `json:"thumbnail"`
}

func (w Work) clone() Work {
	strokes := make([]state.Stroke, len(w.Strokes))
	for i, s := range w.Strokes {
		strokes[i] = s.Clone()
	}
	w.Strokes = strokes
	return w
}

// Gallery is the list of saved works backed by a KV store.
type Gallery struct {
	mu     sync.RWMutex
	kv     storage.KV
	key    string
	works  []Work
	logger *zap.Logger

	now   func() time.Time
	newID func() string
}

// Open loads the works stored under key. Missing or unreadable data yields
// an empty gallery; only the log hears about it.
func Open(kv storage.KV, key string, logger *zap.Logger) *Gallery {
	if logger == nil {
		logger = zap.NewNop()
	}
	if key == "" {
		key = DefaultKey
	}
	g := &Gallery{
		kv:     kv,
		key:    key,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	g.Reload()
	return g
}

// Reload re-reads the works from storage.
func (g *Gallery) Reload() {
	works := g.read()
	g.mu.Lock()
	g.works = works
	g.mu.Unlock()
	g.logger.Debug("Gallery loaded", zap.String("key", g.key), zap.Int("works", len(works)))
}

func (g *Gallery) read() []Work {
	data, ok, err := g.kv.Get(g.key)
	if err != nil {
		g.logger.Warn("Could not read saved works, starting empty", zap.String("key", g.key), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	var works []Work
	if err := json.Unmarshal(data, &works); err != nil {
		g.logger.Warn("Saved works are corrupt, starting empty", zap.String("key", g.key), zap.Error(err))
		return nil
	}
	return works
}

func (g *Gallery) persist(works []Work) error {
	data, err := json.Marshal(works)
	if err != nil {
		return fmt.Errorf("encode works: %w", err)
	}
	if err := g.kv.Set(g.key, data); err != nil {
		return fmt.Errorf("store works: %w", err)
	}
	return nil
}

// Save snapshots the store as a new work. A blank name becomes "Work N".
// An empty store is refused with ErrNothingToSave.
func (g *Gallery) Save(name string, store *state.Store) (Work, error) {
	strokes := store.Strokes()
	if len(strokes) == 0 {
		return Work{}, ErrNothingToSave
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Work %d", len(g.works)+1)
	}
	w := Work{
		ID:        g.newID(),
		Name:      name,
		CreatedAt: g.now().UTC().Truncate(time.Second),
		Strokes:   strokes,
		Thumbnail: strokes[len(strokes)-1].Color,
	}

	works := append(append([]Work(nil), g.works...), w)
	if err := g.persist(works); err != nil {
		return Work{}, err
	}
	g.works = works
	g.logger.Info("Work saved",
		zap.String("id", w.ID),
		zap.String("name", w.Name),
		zap.Int("strokes", len(w.Strokes)))
	return w.clone(), nil
}

// Load replaces the store's strokes with a copy of the work's.
func (g *Gallery) Load(id string, store *state.Store) (Work, error) {
	w, err := g.Get(id)
	if err != nil {
		return Work{}, err
	}
	store.Replace(w.Strokes)
	g.logger.Info("Work loaded", zap.String("id", w.ID), zap.String("name", w.Name))
	return w, nil
}

// Delete removes a work.
func (g *Gallery) Delete(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := g.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrWorkNotFound, id)
	}
	works := make([]Work, 0, len(g.works)-1)
	works = append(works, g.works[:idx]...)
	works = append(works, g.works[idx+1:]...)
	if err := g.persist(works); err != nil {
		return err
	}
	g.works = works
	g.logger.Info("Work deleted", zap.String("id", id))
	return nil
}

// Get returns a copy of one work.
func (g *Gallery) Get(id string) (Work, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	idx := g.indexOf(id)
	if idx < 0 {
		return Work{}, fmt.Errorf("%w: %s", ErrWorkNotFound, id)
	}
	return g.works[idx].clone(), nil
}

// List returns copies of all works in save order.
func (g *Gallery) List() []Work {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Work, len(g.works))
	for i, w := range g.works {
		out[i] = w.clone()
	}
	return out
}

func (g *Gallery) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.works)
}

func (g *Gallery) indexOf(id string) int {
	for i, w := range g.works {
		if w.ID == id {
			return i
		}
	}
	return -1
}
