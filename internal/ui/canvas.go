package ui

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"Paint3D/internal/geom"
	"Paint3D/internal/state"
)

const (
	canvasSize  = 15.0 // side of the white drawing square, world units
	gridSize    = 20.0
	axisLength  = 5.0
	orbitSpeed  = 0.01 // radians per pixel
	zoomStep    = 1.1
	cursorScale = 2.0 // pixels per unit of brush width
)

var (
	backgroundColor = color.NRGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff}
	gridColor       = color.NRGBA{R: 0x2c, G: 0x5a, B: 0xa0, A: 0xff}
	gridCenterColor = color.NRGBA{R: 0x4a, G: 0x90, B: 0xe2, A: 0xff}
	borderColor     = color.NRGBA{R: 0x34, G: 0x98, B: 0xdb, A: 0xff}
	sheetColor      = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x40}
	axisColors      = [3]color.NRGBA{
		{R: 0xff, G: 0x40, B: 0x40, A: 0xff},
		{R: 0x40, G: 0xff, B: 0x40, A: 0xff},
		{R: 0x40, G: 0x80, B: 0xff, A: 0xff},
	}
)

// PaintWidget shows the drawing plane through an orbit camera and feeds
// pointer gestures to a Capture. A read-only widget only displays the store.
type PaintWidget struct {
	widget.BaseWidget

	store   *state.Store
	capture *state.Capture // nil when read only

	mu           sync.Mutex
	camera       *geom.OrbitCamera
	cameraLocked bool
	orbiting     bool
	lastPointer  fyne.Position

	unsubscribe func()
}

var _ fyne.Widget = (*PaintWidget)(nil)
var _ fyne.Draggable = (*PaintWidget)(nil)
var _ fyne.Scrollable = (*PaintWidget)(nil)
var _ desktop.Mouseable = (*PaintWidget)(nil)
var _ desktop.Hoverable = (*PaintWidget)(nil)

// NewPaintWidget builds the canvas. Pass a nil capture for a viewer.
func NewPaintWidget(store *state.Store, capture *state.Capture, camera *geom.OrbitCamera) *PaintWidget {
	w := &PaintWidget{
		store:   store,
		capture: capture,
		camera:  camera,
	}
	w.ExtendBaseWidget(w)
	w.unsubscribe = store.Subscribe(func(state.Op) {
		fyne.Do(w.Refresh)
	})
	return w
}

// Detach stops following the store.
func (w *PaintWidget) Detach() {
	if w.unsubscribe != nil {
		w.unsubscribe()
	}
}

func (w *PaintWidget) ReadOnly() bool { return w.capture == nil }

// SetCameraLocked freezes orbit and zoom so the view stays put while
// drawing.
func (w *PaintWidget) SetCameraLocked(locked bool) {
	w.mu.Lock()
	w.cameraLocked = locked
	w.orbiting = false
	w.mu.Unlock()
}

func (w *PaintWidget) CameraLocked() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cameraLocked
}

func (w *PaintWidget) aspect() float64 {
	s := w.Size()
	if s.Height <= 0 {
		return 1
	}
	return float64(s.Width) / float64(s.Height)
}

// rayAt is the world ray under a widget-relative position.
func (w *PaintWidget) rayAt(pos fyne.Position) geom.Ray {
	s := w.Size()
	x, y := geom.NDC(float64(pos.X), float64(pos.Y), float64(s.Width), float64(s.Height))
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.camera.Ray(x, y, w.aspect())
}

// toScreen projects a world point into widget coordinates.
func (w *PaintWidget) toScreen(p geom.Vec3) (fyne.Position, bool) {
	s := w.Size()
	x, y, ok := w.camera.Project(p, w.aspect())
	if !ok {
		return fyne.Position{}, false
	}
	px, py := geom.Viewport(x, y, float64(s.Width), float64(s.Height))
	return fyne.NewPos(float32(px), float32(py)), true
}

func (w *PaintWidget) MouseDown(e *desktop.MouseEvent) {
	switch e.Button {
	case desktop.MouseButtonPrimary:
		if w.capture != nil && w.capture.Begin(w.rayAt(e.Position)) {
			w.Refresh()
		}
	case desktop.MouseButtonSecondary:
		w.mu.Lock()
		if !w.cameraLocked {
			w.orbiting = true
			w.lastPointer = e.Position
		}
		w.mu.Unlock()
	}
}

func (w *PaintWidget) MouseUp(e *desktop.MouseEvent) {
	switch e.Button {
	case desktop.MouseButtonPrimary:
		w.endStroke()
	case desktop.MouseButtonSecondary:
		w.mu.Lock()
		w.orbiting = false
		w.mu.Unlock()
	}
}

func (w *PaintWidget) Dragged(e *fyne.DragEvent) {
	if w.capture == nil {
		return
	}
	w.capture.Move(w.rayAt(e.Position))
	w.Refresh()
}

func (w *PaintWidget) DragEnd() { w.endStroke() }

func (w *PaintWidget) MouseIn(*desktop.MouseEvent) {}

func (w *PaintWidget) MouseMoved(e *desktop.MouseEvent) {
	w.mu.Lock()
	if w.orbiting {
		dx := e.Position.X - w.lastPointer.X
		dy := e.Position.Y - w.lastPointer.Y
		w.lastPointer = e.Position
		w.camera.Orbit(-float64(dx)*orbitSpeed, float64(dy)*orbitSpeed)
		w.mu.Unlock()
		w.Refresh()
		return
	}
	w.mu.Unlock()

	if w.capture != nil {
		w.capture.Move(w.rayAt(e.Position))
		w.Refresh()
	}
}

// MouseOut ends a stroke like releasing the button does.
func (w *PaintWidget) MouseOut() {
	w.mu.Lock()
	w.orbiting = false
	w.mu.Unlock()
	w.endStroke()
}

func (w *PaintWidget) Scrolled(e *fyne.ScrollEvent) {
	w.mu.Lock()
	if w.cameraLocked {
		w.mu.Unlock()
		return
	}
	if e.Scrolled.DY > 0 {
		w.camera.Zoom(1 / zoomStep)
	} else if e.Scrolled.DY < 0 {
		w.camera.Zoom(zoomStep)
	}
	w.mu.Unlock()
	w.Refresh()
}

func (w *PaintWidget) endStroke() {
	if w.capture == nil || !w.capture.Drawing() {
		return
	}
	// A stored stroke refreshes through the store subscription.
	if !w.capture.End() {
		w.Refresh()
	}
}

func (w *PaintWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &paintRenderer{w: w, background: canvas.NewRectangle(backgroundColor)}
	r.rebuild()
	return r
}

type paintRenderer struct {
	w          *PaintWidget
	background *canvas.Rectangle
	objects    []fyne.CanvasObject
}

func (r *paintRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *paintRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.rebuild()
}

func (r *paintRenderer) MinSize() fyne.Size { return fyne.NewSize(640, 480) }

func (r *paintRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.w)
}

func (r *paintRenderer) Destroy() {}

func (r *paintRenderer) segment(a, b geom.Vec3, c color.Color, width float32) {
	p1, ok1 := r.w.toScreen(a)
	p2, ok2 := r.w.toScreen(b)
	if !ok1 || !ok2 {
		return
	}
	l := canvas.NewLine(c)
	l.StrokeWidth = width
	l.Position1 = p1
	l.Position2 = p2
	r.objects = append(r.objects, l)
}

func (r *paintRenderer) polyline(points []state.Point, c color.Color, width float32) {
	for i := 1; i < len(points); i++ {
		r.segment(points[i-1].Vec(), points[i].Vec(), c, width)
	}
}

// rebuild regenerates every canvas object from the camera and the store.
func (r *paintRenderer) rebuild() {
	w := r.w
	w.mu.Lock()
	defer w.mu.Unlock()

	r.objects = []fyne.CanvasObject{r.background}
	if s := w.Size(); s.Width <= 0 || s.Height <= 0 {
		return
	}

	// Reference grid just under the plane.
	half := gridSize / 2
	for i := -half; i <= half; i++ {
		c := color.Color(gridColor)
		if i == 0 {
			c = gridCenterColor
		}
		r.segment(geom.V(i, -0.01, -half), geom.V(i, -0.01, half), c, 1)
		r.segment(geom.V(-half, -0.01, i), geom.V(half, -0.01, i), c, 1)
	}

	// The drawing sheet: light hatching and its border.
	h := canvasSize / 2
	for z := -h + 0.5; z < h; z += 0.5 {
		r.segment(geom.V(-h, 0, z), geom.V(h, 0, z), sheetColor, 1)
	}
	corners := []geom.Vec3{geom.V(-h, 0, -h), geom.V(h, 0, -h), geom.V(h, 0, h), geom.V(-h, 0, h)}
	for i := range corners {
		r.segment(corners[i], corners[(i+1)%4], borderColor, 2)
	}

	axes := [3]geom.Vec3{geom.V(axisLength, 0, 0), geom.V(0, axisLength, 0), geom.V(0, 0, axisLength)}
	for i, a := range axes {
		r.segment(geom.Vec3{}, a, axisColors[i], 2)
	}

	for _, st := range w.store.Strokes() {
		r.polyline(st.Points, state.ParseColor(st.Color), float32(st.Width))
	}

	if w.capture == nil {
		return
	}
	if cur, ok := w.capture.Current(); ok {
		r.polyline(cur.Points, state.ParseColor(cur.Color), float32(cur.Width))
	}
	r.cursor()
}

func (r *paintRenderer) cursor() {
	capture := r.w.capture
	pos, ok := r.w.toScreen(capture.Cursor())
	if !ok {
		return
	}
	radius := float32(capture.Width()) * cursorScale
	fill := state.ParseColor(capture.Color())
	fill.A = 0x80
	if capture.Drawing() {
		fill.A = 0xd0
		ring := canvas.NewCircle(color.Transparent)
		ring.StrokeColor = state.ParseColor(capture.Color())
		ring.StrokeWidth = 2
		ring.Position1 = fyne.NewPos(pos.X-radius*2, pos.Y-radius*2)
		ring.Position2 = fyne.NewPos(pos.X+radius*2, pos.Y+radius*2)
		r.objects = append(r.objects, ring)
	}
	dot := canvas.NewCircle(fill)
	dot.Position1 = fyne.NewPos(pos.X-radius, pos.Y-radius)
	dot.Position2 = fyne.NewPos(pos.X+radius, pos.Y+radius)
	r.objects = append(r.objects, dot)
}
