package gallery

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Paint3D/internal/state"
	"Paint3D/internal/storage"
)

var fixedNow = time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

func openTest(t *testing.T, kv storage.KV) *Gallery {
	t.Helper()
	g := Open(kv, "", nil)
	g.now = func() time.Time { return fixedNow }
	n := 0
	g.newID = func() string {
		n++
		return fmt.Sprintf("work-%d", n)
	}
	return g
}

func sampleStore() *state.Store {
	s := state.NewStore(nil)
	s.Append(state.Stroke{ID: "a", Points: []state.Point{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 1}}, Color: "#ff6b6b", Width: 3})
	s.Append(state.Stroke{ID: "b", Points: []state.Point{{X: 2, Y: 0, Z: 2}, {X: 3, Y: 0, Z: 3}, {X: 4, Y: 0, Z: 2}}, Color: "#3498db", Width: 8})
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	g := openTest(t, storage.NewMemoryKV())
	store := sampleStore()
	want := store.Strokes()

	w, err := g.Save("x", store)
	require.NoError(t, err)
	assert.Equal(t, "x", w.Name)
	assert.Equal(t, "#3498db", w.Thumbnail)
	assert.Equal(t, fixedNow, w.CreatedAt)

	store.Clear()
	store.Append(state.Stroke{ID: "later", Points: []state.Point{{X: 5, Y: 0, Z: 5}, {X: 6, Y: 0, Z: 6}}})

	_, err = g.Load(w.ID, store)
	require.NoError(t, err)
	if diff := cmp.Diff(want, store.Strokes()); diff != "" {
		t.Errorf("loaded strokes mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveEmptyStoreRejected(t *testing.T) {
	kv := storage.NewMemoryKV()
	g := openTest(t, kv)
	store := state.NewStore(nil)

	_, err := g.Save("empty", store)
	assert.ErrorIs(t, err, ErrNothingToSave)
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, g.Len())

	_, ok, err := kv.Get(DefaultKey)
	require.NoError(t, err)
	assert.False(t, ok, "nothing is written on rejection")
}

func TestSaveDefaultNames(t *testing.T) {
	g := openTest(t, storage.NewMemoryKV())
	store := sampleStore()

	w1, err := g.Save("   ", store)
	require.NoError(t, err)
	w2, err := g.Save("", store)
	require.NoError(t, err)
	w3, err := g.Save("  My Tree ", store)
	require.NoError(t, err)

	assert.Equal(t, "Work 1", w1.Name)
	assert.Equal(t, "Work 2", w2.Name)
	assert.Equal(t, "My Tree", w3.Name)
}

func TestWorksAreImmutableSnapshots(t *testing.T) {
	g := openTest(t, storage.NewMemoryKV())
	store := sampleStore()

	w, err := g.Save("snap", store)
	require.NoError(t, err)

	store.UndoLast()
	w.Strokes[0].Points[0].X = 42

	got, err := g.Get(w.ID)
	require.NoError(t, err)
	assert.Len(t, got.Strokes, 2)
	assert.Equal(t, 0.0, got.Strokes[0].Points[0].X)
}

func TestPersistenceAcrossOpen(t *testing.T) {
	kv, err := storage.NewFileKV(filepath.Join(t.TempDir(), "works"), nil)
	require.NoError(t, err)

	g := openTest(t, kv)
	_, err = g.Save("first", sampleStore())
	require.NoError(t, err)
	second, err := g.Save("second", sampleStore())
	require.NoError(t, err)

	reopened := Open(kv, DefaultKey, nil)
	works := reopened.List()
	require.Len(t, works, 2)
	assert.Equal(t, "first", works[0].Name)
	assert.Equal(t, "second", works[1].Name)

	require.NoError(t, reopened.Delete(second.ID))
	assert.Len(t, Open(kv, DefaultKey, nil).List(), 1)
}

func TestDeleteUnknown(t *testing.T) {
	g := openTest(t, storage.NewMemoryKV())
	err := g.Delete("nope")
	assert.ErrorIs(t, err, ErrWorkNotFound)

	_, err = g.Load("nope", state.NewStore(nil))
	assert.ErrorIs(t, err, ErrWorkNotFound)
}

func TestCorruptDataFallsBackToEmpty(t *testing.T) {
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(DefaultKey, []byte(`{not json`)))

	g := openTest(t, kv)
	assert.Equal(t, 0, g.Len())

	// Saving over corrupt data replaces it.
	_, err := g.Save("", sampleStore())
	require.NoError(t, err)
	assert.Len(t, Open(kv, DefaultKey, nil).List(), 1)
}

type brokenKV struct{ storage.KV }

func (brokenKV) Get(string) ([]byte, bool, error) { return nil, false, errors.New("disk on fire") }
func (brokenKV) Set(string, []byte) error         { return errors.New("disk on fire") }

func TestUnreadableStorage(t *testing.T) {
	g := openTest(t, brokenKV{})
	assert.Equal(t, 0, g.Len())

	_, err := g.Save("x", sampleStore())
	assert.Error(t, err)
	assert.Equal(t, 0, g.Len(), "failed save leaves the gallery unchanged")
}

func TestReload(t *testing.T) {
	kv := storage.NewMemoryKV()
	a := openTest(t, kv)
	b := Open(kv, DefaultKey, nil)

	_, err := a.Save("from a", sampleStore())
	require.NoError(t, err)
	assert.Equal(t, 0, b.Len())

	b.Reload()
	assert.Equal(t, 1, b.Len())
}
