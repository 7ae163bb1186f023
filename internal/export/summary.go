// Package export turns works into files: a top-down PDF drawing and a plain
// text summary.
package export

import (
	"fmt"
	"io"

	"Paint3D/internal/gallery"
)

// Summary writes a human-readable description of a work.
func Summary(w io.Writer, work gallery.Work) error {
	ew := &errWriter{w: w}
	ew.printf("%s\n", work.Name)
	ew.printf("================\n\n")
	ew.printf("ID: %s\n", work.ID)
	ew.printf("Saved: %s\n", work.CreatedAt.Format("2006-01-02 15:04:05"))
	ew.printf("Total strokes: %d\n\n", len(work.Strokes))

	for i, st := range work.Strokes {
		ew.printf("Stroke %d:\n", i+1)
		ew.printf("  Points: %d\n", len(st.Points))
		ew.printf("  Color: %s\n", st.Color)
		ew.printf("  Width: %d\n", st.Width)
		if len(st.Points) > 0 {
			s := st.Points[0]
			ew.printf("  Start: (%.2f, %.2f, %.2f)\n", s.X, s.Y, s.Z)
			if len(st.Points) > 1 {
				e := st.Points[len(st.Points)-1]
				ew.printf("  End: (%.2f, %.2f, %.2f)\n", e.X, e.Y, e.Z)
			}
		}
		ew.printf("\n")
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
