package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"Paint3D/internal/gallery"
	"Paint3D/internal/state"
)

// showGallery lists saved works with load and delete actions.
func showGallery(t *toolsPanel) {
	rows := container.NewVBox()
	var d dialog.Dialog

	var refresh func()
	refresh = func() {
		rows.Objects = nil
		works := t.gallery.List()
		if len(works) == 0 {
			rows.Add(widget.NewLabel("No saved works yet. Draw something and save it!"))
		}
		for _, w := range works {
			rows.Add(workRow(w, func() {
				if _, err := t.gallery.Load(w.ID, t.store); err != nil {
					dialog.ShowError(err, t.win)
					return
				}
				d.Hide()
				t.setStatus(fmt.Sprintf("Work %q loaded", w.Name))
			}, func() {
				dialog.ShowConfirm("Delete work", fmt.Sprintf("Do you want to delete %q?", w.Name), func(ok bool) {
					if !ok {
						return
					}
					if err := t.gallery.Delete(w.ID); err != nil {
						t.logger.Error("Delete failed", zap.String("id", w.ID), zap.Error(err))
						dialog.ShowError(err, t.win)
						return
					}
					refresh()
				}, t.win)
			}))
		}
		rows.Refresh()
	}
	refresh()

	scroll := container.NewVScroll(rows)
	scroll.SetMinSize(fyne.NewSize(420, 320))
	d = dialog.NewCustom("My Gallery", "Close", scroll, t.win)
	d.Show()
}

func workRow(w gallery.Work, onLoad, onDelete func()) fyne.CanvasObject {
	thumb := canvas.NewRectangle(state.ParseColor(w.Thumbnail))
	thumb.SetMinSize(fyne.NewSize(24, 24))
	thumb.CornerRadius = 4

	info := widget.NewLabel(fmt.Sprintf("%s\n%s · %d strokes",
		w.Name, w.CreatedAt.Local().Format("2006-01-02"), len(w.Strokes)))

	load := widget.NewButtonWithIcon("", theme.DocumentIcon(), onLoad)
	del := widget.NewButtonWithIcon("", theme.DeleteIcon(), onDelete)
	return container.NewBorder(nil, nil, container.NewCenter(thumb), container.NewHBox(load, del), info)
}
