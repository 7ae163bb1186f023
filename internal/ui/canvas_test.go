package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Paint3D/internal/gallery"
	"Paint3D/internal/geom"
	"Paint3D/internal/state"
	"Paint3D/internal/storage"
)

func newCamera() *geom.OrbitCamera {
	return geom.NewOrbitCamera(geom.V(8, 8, 8), geom.Vec3{}, 60, 3, 30)
}

func mouse(x, y float32, b desktop.MouseButton) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     b,
	}
}

func newPainter(t *testing.T) (*PaintWidget, *state.Store) {
	t.Helper()
	test.NewTempApp(t)
	store := state.NewStore(nil)
	w := NewPaintWidget(store, state.NewCapture(store, state.DefaultCaptureOptions()), newCamera())
	w.Resize(fyne.NewSize(640, 480))
	t.Cleanup(w.Detach)
	return w, store
}

func TestPaintWidgetDrawsStroke(t *testing.T) {
	w, store := newPainter(t)

	w.MouseDown(mouse(320, 240, desktop.MouseButtonPrimary))
	require.True(t, w.capture.Drawing())
	w.MouseMoved(mouse(370, 240, 0))
	w.MouseMoved(mouse(420, 250, 0))
	w.MouseUp(mouse(420, 250, desktop.MouseButtonPrimary))

	require.Equal(t, 1, store.Len())
	st := store.Strokes()[0]
	assert.Len(t, st.Points, 3)
	assert.Equal(t, "#ff6b6b", st.Color)
	for _, p := range st.Points {
		assert.InDelta(t, 0, p.Y, 1e-9, "points lie on the drawing plane")
	}
}

func TestPaintWidgetClickWithoutMoveStoresNothing(t *testing.T) {
	w, store := newPainter(t)

	w.MouseDown(mouse(320, 240, desktop.MouseButtonPrimary))
	w.MouseUp(mouse(320, 240, desktop.MouseButtonPrimary))
	assert.Zero(t, store.Len())
	assert.False(t, w.capture.Drawing())
}

func TestPaintWidgetLeavingEndsStroke(t *testing.T) {
	w, store := newPainter(t)

	w.MouseDown(mouse(320, 240, desktop.MouseButtonPrimary))
	w.MouseMoved(mouse(380, 240, 0))
	w.MouseOut()

	assert.False(t, w.capture.Drawing())
	assert.Equal(t, 1, store.Len())
}

func TestPaintWidgetOrbitAndZoom(t *testing.T) {
	w, _ := newPainter(t)
	yaw, dist := w.camera.Yaw, w.camera.Distance

	w.MouseDown(mouse(100, 100, desktop.MouseButtonSecondary))
	w.MouseMoved(mouse(150, 100, 0))
	w.MouseUp(mouse(150, 100, desktop.MouseButtonSecondary))
	assert.NotEqual(t, yaw, w.camera.Yaw)

	w.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, 1)})
	assert.Less(t, w.camera.Distance, dist)
}

func TestPaintWidgetCameraLock(t *testing.T) {
	w, store := newPainter(t)
	w.SetCameraLocked(true)
	require.True(t, w.CameraLocked())
	yaw, dist := w.camera.Yaw, w.camera.Distance

	w.MouseDown(mouse(100, 100, desktop.MouseButtonSecondary))
	w.MouseMoved(mouse(150, 100, 0))
	w.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, -1)})
	assert.Equal(t, yaw, w.camera.Yaw)
	assert.Equal(t, dist, w.camera.Distance)

	// Drawing still works with the camera locked.
	w.MouseDown(mouse(320, 240, desktop.MouseButtonPrimary))
	w.MouseMoved(mouse(380, 240, 0))
	w.MouseUp(mouse(380, 240, desktop.MouseButtonPrimary))
	assert.Equal(t, 1, store.Len())
}

func TestViewerIgnoresDrawing(t *testing.T) {
	test.NewTempApp(t)
	store := state.NewStore(nil)
	w := NewPaintWidget(store, nil, newCamera())
	defer w.Detach()
	w.Resize(fyne.NewSize(640, 480))

	require.True(t, w.ReadOnly())
	w.MouseDown(mouse(320, 240, desktop.MouseButtonPrimary))
	w.MouseMoved(mouse(380, 240, 0))
	w.MouseUp(mouse(380, 240, desktop.MouseButtonPrimary))
	assert.Zero(t, store.Len())
}

func TestPainterWindow(t *testing.T) {
	a := test.NewTempApp(t)
	store := state.NewStore(nil)
	g := gallery.Open(storage.NewMemoryKV(), "paint3d_works", nil)

	w := NewPainter(a, PainterOptions{
		Store:     store,
		Capture:   state.NewCapture(store, state.DefaultCaptureOptions()),
		Camera:    newCamera(),
		Gallery:   g,
		ShareLink: "paint3d://192.168.1.5:8888",
	})
	require.NotNil(t, w.Board())
	assert.False(t, w.Board().ReadOnly())

	w.SetStatus("ready")
	assert.Equal(t, "ready", w.Status())
}

func TestPaletteColorsAreValid(t *testing.T) {
	require.Len(t, Palette, 10)
	seen := map[string]bool{}
	for _, s := range Palette {
		assert.True(t, state.ValidColor(s.Hex), s.Hex)
		assert.False(t, seen[s.Hex], "duplicate %s", s.Hex)
		seen[s.Hex] = true
	}
}
