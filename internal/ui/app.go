package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"Paint3D/internal/gallery"
	"Paint3D/internal/geom"
	"Paint3D/internal/state"
)

// PainterOptions wires the painting window to its state.
type PainterOptions struct {
	Store   *state.Store
	Capture *state.Capture
	Camera  *geom.OrbitCamera
	Gallery *gallery.Gallery
	Logger  *zap.Logger

	// ShareLink is shown with a copy button when the canvas is shared.
	ShareLink string
}

// Window is a Paint 3D window with a status line.
type Window struct {
	win    fyne.Window
	board  *PaintWidget
	status *widget.Label
}

// NewPainter builds the drawing window: tools on the left, canvas filling
// the rest.
func NewPainter(a fyne.App, o PainterOptions) *Window {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	w := newWindow(a, "Paint 3D", NewPaintWidget(o.Store, o.Capture, o.Camera))

	tools := &toolsPanel{
		win:     w.win,
		board:   w.board,
		store:   o.Store,
		capture: o.Capture,
		gallery: o.Gallery,
		logger:  o.Logger,
		status:  w.status,
	}
	var top fyne.CanvasObject
	if o.ShareLink != "" {
		link := widget.NewLabel("Share: " + o.ShareLink)
		link.Selectable = true
		copyBtn := widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
			w.win.Clipboard().SetContent(o.ShareLink)
			w.status.SetText("Share link copied")
		})
		top = container.NewBorder(nil, nil, nil, copyBtn, link)
	}

	w.win.SetContent(container.NewBorder(top, nil, container.NewVScroll(tools.build()), nil, w.board))
	return w
}

// NewViewer builds a read-only window that follows store. title names the
// share being watched.
func NewViewer(a fyne.App, store *state.Store, camera *geom.OrbitCamera, title string) *Window {
	w := newWindow(a, "Paint 3D - "+title, NewPaintWidget(store, nil, camera))
	w.status.SetText("Connecting to " + title)
	lock := widget.NewCheck("Lock camera", w.board.SetCameraLocked)
	w.win.SetContent(container.NewBorder(nil, container.NewBorder(nil, nil, nil, lock, w.status), nil, nil, w.board))
	return w
}

func newWindow(a fyne.App, title string, board *PaintWidget) *Window {
	win := a.NewWindow(title)
	win.Resize(fyne.NewSize(1280, 800))
	w := &Window{win: win, board: board, status: widget.NewLabel("")}
	win.SetOnClosed(board.Detach)
	return w
}

// SetStatus may be called from any goroutine.
func (w *Window) SetStatus(text string) {
	fyne.Do(func() { w.status.SetText(text) })
}

// Status is the text currently shown in the status line.
func (w *Window) Status() string { return w.status.Text }

func (w *Window) Board() *PaintWidget { return w.board }

// ShowAndRun shows the window and runs the app until it quits.
func (w *Window) ShowAndRun() { w.win.ShowAndRun() }

// Close may be called from any goroutine.
func (w *Window) Close() { fyne.Do(w.win.Close) }
