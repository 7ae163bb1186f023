package ui

import (
	"errors"
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"Paint3D/internal/export"
	"Paint3D/internal/gallery"
	"Paint3D/internal/state"
)

// Swatch is one entry of the brush palette.
type Swatch struct {
	Name string
	Hex  string
}

// Palette is the set of brush colors offered in the tools panel.
var Palette = []Swatch{
	{"Red", "#ff6b6b"},
	{"Orange", "#ffa500"},
	{"Yellow", "#ffd700"},
	{"Green", "#4ecdc4"},
	{"Blue", "#3498db"},
	{"Purple", "#9b59b6"},
	{"Pink", "#ff69b4"},
	{"Black", "#2c3e50"},
	{"White", "#ecf0f1"},
	{"Brown", "#a0522d"},
}

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	swatch   Swatch
	OnTapped func(Swatch)
}

func newColorSwatch(s Swatch, tapped func(Swatch)) *colorSwatch {
	cs := &colorSwatch{swatch: s, OnTapped: tapped}
	cs.ExtendBaseWidget(cs)
	return cs
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(state.ParseColor(s.swatch.Hex))
	rect.SetMinSize(fyne.NewSize(32, 32))
	rect.CornerRadius = 6

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1
	border.CornerRadius = 6

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.swatch)
	}
}

// toolsPanel is the column of controls beside the canvas.
type toolsPanel struct {
	win     fyne.Window
	board   *PaintWidget
	store   *state.Store
	capture *state.Capture
	gallery *gallery.Gallery
	logger  *zap.Logger
	status  *widget.Label
}

func (t *toolsPanel) setStatus(text string) {
	t.status.SetText(text)
}

func (t *toolsPanel) build() fyne.CanvasObject {
	// --- Color Palette ---
	current := widget.NewLabel("")
	showColor := func(s Swatch) {
		current.SetText(fmt.Sprintf("Color: %s", s.Name))
	}
	for _, s := range Palette {
		if s.Hex == t.capture.Color() {
			showColor(s)
		}
	}
	swatches := make([]fyne.CanvasObject, 0, len(Palette))
	for _, s := range Palette {
		swatches = append(swatches, newColorSwatch(s, func(s Swatch) {
			t.capture.SetColor(s.Hex)
			showColor(s)
			t.board.Refresh()
		}))
	}
	colorGrid := container.NewGridWithColumns(5, swatches...)

	// --- Brush Width Slider ---
	widthLabel := widget.NewLabel(fmt.Sprintf("Width: %d", t.capture.Width()))
	widthSlider := widget.NewSlider(1, 10)
	widthSlider.Step = 1
	widthSlider.SetValue(float64(t.capture.Width()))
	widthSlider.OnChanged = func(v float64) {
		t.capture.SetWidth(int(v))
		widthLabel.SetText(fmt.Sprintf("Width: %d", t.capture.Width()))
		t.board.Refresh()
	}

	// --- Canvas Actions ---
	undo := widget.NewButtonWithIcon("Undo", theme.ContentUndoIcon(), func() {
		if _, ok := t.store.UndoLast(); ok {
			t.setStatus("Last stroke undone")
		}
	})
	clearAll := widget.NewButtonWithIcon("Clear", theme.DeleteIcon(), func() {
		dialog.ShowConfirm("Clear drawing", "Do you want to erase your whole drawing?", func(ok bool) {
			if ok {
				t.store.Clear()
				t.setStatus("Canvas cleared")
			}
		}, t.win)
	})
	lock := widget.NewCheck("Lock camera", func(on bool) {
		t.board.SetCameraLocked(on)
	})

	// --- Saving ---
	name := widget.NewEntry()
	name.SetPlaceHolder(fmt.Sprintf("Work %d", t.gallery.Len()+1))
	save := widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), func() {
		w, err := t.gallery.Save(name.Text, t.store)
		switch {
		case errors.Is(err, gallery.ErrNothingToSave):
			dialog.ShowInformation("Nothing to save", "Draw something first to save it.", t.win)
			return
		case err != nil:
			t.logger.Error("Save failed", zap.Error(err))
			dialog.ShowError(err, t.win)
			return
		}
		name.SetText("")
		name.SetPlaceHolder(fmt.Sprintf("Work %d", t.gallery.Len()+1))
		t.setStatus(fmt.Sprintf("Work %q saved", w.Name))
	})
	browse := widget.NewButtonWithIcon("Gallery", theme.FolderOpenIcon(), func() {
		showGallery(t)
	})
	exportPDF := widget.NewButtonWithIcon("Export PDF", theme.DocumentPrintIcon(), t.exportPDF)

	// --- Assemble everything ---
	return container.NewVBox(
		widget.NewLabelWithStyle("Paint 3D", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		current,
		colorGrid,
		widget.NewSeparator(),
		widthLabel,
		widthSlider,
		widget.NewSeparator(),
		container.NewGridWithColumns(2, undo, clearAll),
		lock,
		widget.NewSeparator(),
		name,
		container.NewGridWithColumns(2, save, browse),
		exportPDF,
		layout.NewSpacer(),
		t.status,
	)
}

func (t *toolsPanel) exportPDF() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, t.win)
			return
		}
		if writer == nil {
			return
		}
		defer func() {
			if err := writer.Close(); err != nil {
				t.logger.Warn("Error closing export", zap.Error(err))
			}
		}()

		strokes := t.store.Strokes()
		if err := export.PDF(writer, "Paint 3D", strokes); err != nil {
			t.logger.Error("Export failed", zap.Error(err))
			dialog.ShowError(err, t.win)
			return
		}
		t.logger.Info("Exported PDF", zap.String("uri", writer.URI().String()), zap.Int("strokes", len(strokes)))
		t.setStatus(fmt.Sprintf("Exported %d strokes", len(strokes)))
	}, t.win)
	d.SetFileName("paint3d.pdf")
	d.SetFilter(storage.NewExtensionFileFilter([]string{".pdf"}))
	d.Show()
}
