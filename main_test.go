package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Paint3D/internal/gallery"
	"Paint3D/internal/state"
	"Paint3D/internal/storage"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// seedWorks points the CLI at a fresh file store holding one work.
func seedWorks(t *testing.T) (configPath string, w gallery.Work) {
	t.Helper()
	dir := t.TempDir()
	worksDir := filepath.Join(dir, "works")
	t.Setenv("PAINT3D_STORAGE_BACKEND", "file")
	t.Setenv("PAINT3D_STORAGE_PATH", worksDir)
	t.Setenv("PAINT3D_LOG_LEVEL", "error")

	kv, err := storage.NewFileKV(worksDir, nil)
	require.NoError(t, err)
	store := state.NewStore(nil)
	store.Append(state.Stroke{
		ID:     "s1",
		Points: []state.Point{{X: -1, Z: -1}, {X: 0, Z: 0}, {X: 2, Z: 1}},
		Color:  "#3498db",
		Width:  4,
	})
	w, err = gallery.Open(kv, gallery.DefaultKey, nil).Save("Spiral", store)
	require.NoError(t, err)

	return filepath.Join(dir, "config.yaml"), w
}

func TestWorksList(t *testing.T) {
	cfgFile, w := seedWorks(t)

	out, err := execute(t, "--config", cfgFile, "works", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "STROKES")
	assert.Contains(t, out, w.ID)
	assert.Contains(t, out, "Spiral")
}

func TestWorksShow(t *testing.T) {
	cfgFile, w := seedWorks(t)

	out, err := execute(t, "--config", cfgFile, "works", "show", w.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Spiral")
	assert.Contains(t, out, "Total strokes: 1")
	assert.Contains(t, out, "Color: #3498db")

	_, err = execute(t, "--config", cfgFile, "works", "show", "nope")
	assert.ErrorIs(t, err, gallery.ErrWorkNotFound)
}

func TestWorksExport(t *testing.T) {
	cfgFile, w := seedWorks(t)
	pdf := filepath.Join(t.TempDir(), "spiral.pdf")

	_, err := execute(t, "--config", cfgFile, "works", "export", w.ID, pdf)
	require.NoError(t, err)

	data, err := os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestWorksRm(t *testing.T) {
	cfgFile, w := seedWorks(t)

	out, err := execute(t, "--config", cfgFile, "works", "rm", w.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted "+w.ID)

	out, err = execute(t, "--config", cfgFile, "works", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved works yet.")

	_, err = execute(t, "--config", cfgFile, "works", "rm", w.ID)
	assert.ErrorIs(t, err, gallery.ErrWorkNotFound)
}

func TestInvalidConfigIsRejected(t *testing.T) {
	cfgFile, _ := seedWorks(t)
	require.NoError(t, os.WriteFile(cfgFile, []byte("camera:\n  fov: 0\n"), 0o644))

	_, err := execute(t, "--config", cfgFile, "works", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "camera.fov")
}

func TestViewRejectsBadLink(t *testing.T) {
	cfgFile, _ := seedWorks(t)

	_, err := execute(t, "--config", cfgFile, "view", "paint3d://no-port")
	assert.Error(t, err)
}
