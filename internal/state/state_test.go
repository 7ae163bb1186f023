package state

import (
	"encoding/json"
	"fmt"
	"image/color"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Paint3D/internal/geom"
)

func newTestCapture(t *testing.T) (*Capture, *Store) {
	t.Helper()
	store := NewStore(nil)
	c := NewCapture(store, DefaultCaptureOptions())
	n := 0
	c.newID = func() string {
		n++
		return fmt.Sprintf("stroke-%d", n)
	}
	return c, store
}

func TestCaptureThresholdExample(t *testing.T) {
	c, store := newTestCapture(t)

	c.BeginAt(Point{0, 0, 0})
	assert.False(t, c.MoveTo(Point{0, 0, 0.05}), "below threshold")
	assert.True(t, c.MoveTo(Point{0, 0, 0.2}), "above threshold")
	require.True(t, c.End())

	strokes := store.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, []Point{{0, 0, 0}, {0, 0, 0.2}}, strokes[0].Points)
	assert.Equal(t, "#ff6b6b", strokes[0].Color)
	assert.Equal(t, 3, strokes[0].Width)
}

func TestCaptureDensityControl(t *testing.T) {
	c, store := newTestCapture(t)

	c.BeginAt(Point{1, 0, 1})
	for i := 0; i < 50; i++ {
		c.MoveTo(Point{1 + float64(i%5)*0.01, 0, 1})
	}
	cur, ok := c.Current()
	require.True(t, ok)
	assert.Len(t, cur.Points, 1)

	assert.False(t, c.End(), "single point stroke must be dropped")
	assert.Equal(t, 0, store.Len())
}

func TestCaptureThresholdIsStrict(t *testing.T) {
	c, _ := newTestCapture(t)
	c.BeginAt(Point{0, 0, 0})
	assert.False(t, c.MoveTo(Point{0.1, 0, 0}))
}

func TestCaptureEndWithoutBegin(t *testing.T) {
	c, store := newTestCapture(t)
	assert.False(t, c.End())
	assert.False(t, c.MoveTo(Point{1, 0, 1}))
	assert.Equal(t, geom.V(1, 0, 1), c.Cursor())
	assert.Equal(t, 0, store.Len())
}

func TestCaptureResetsAfterEnd(t *testing.T) {
	c, store := newTestCapture(t)
	c.BeginAt(Point{0, 0, 0})
	c.MoveTo(Point{1, 0, 0})
	c.End()

	assert.False(t, c.Drawing())
	assert.False(t, c.MoveTo(Point{2, 0, 0}))
	assert.Equal(t, 1, store.Len())
	assert.Len(t, store.Strokes()[0].Points, 2)
}

func TestCaptureRays(t *testing.T) {
	c, store := newTestCapture(t)

	down := geom.Ray{Origin: geom.V(0, 5, 0), Dir: geom.V(0, -1, 0)}
	require.True(t, c.Begin(down))

	parallel := geom.Ray{Origin: geom.V(0, 5, 0), Dir: geom.V(1, 0, 0)}
	assert.False(t, c.Move(parallel))

	assert.True(t, c.Move(geom.Ray{Origin: geom.V(2, 5, 0), Dir: geom.V(0, -1, 0)}))
	require.True(t, c.End())

	st := store.Strokes()[0]
	assert.Equal(t, []Point{{0, 0, 0}, {2, 0, 0}}, st.Points)
}

func TestCaptureBeginMissesPlane(t *testing.T) {
	c, _ := newTestCapture(t)
	assert.False(t, c.Begin(geom.Ray{Origin: geom.V(0, 5, 0), Dir: geom.V(0, 1, 0)}))
	assert.False(t, c.Drawing())
}

func TestCaptureColorAndWidth(t *testing.T) {
	c, store := newTestCapture(t)

	assert.False(t, c.SetColor("red"))
	assert.True(t, c.SetColor("#3498db"))
	c.SetWidth(42)
	assert.Equal(t, 10, c.Width())
	c.SetWidth(-1)
	assert.Equal(t, 1, c.Width())
	c.SetWidth(5)

	c.BeginAt(Point{0, 0, 0})
	c.SetColor("#000000")
	c.MoveTo(Point{1, 0, 0})
	c.End()

	st := store.Strokes()[0]
	assert.Equal(t, "#3498db", st.Color, "color is fixed at gesture start")
	assert.Equal(t, 5, st.Width)
}

func drawLine(c *Capture, from, to Point) {
	c.BeginAt(from)
	c.MoveTo(to)
	c.End()
}

func TestStoreUndoAndClear(t *testing.T) {
	c, store := newTestCapture(t)

	_, ok := store.UndoLast()
	assert.False(t, ok, "undo on empty store is a no-op")

	drawLine(c, Point{0, 0, 0}, Point{1, 0, 0})
	drawLine(c, Point{0, 0, 1}, Point{1, 0, 1})
	require.Equal(t, 2, store.Len())

	last, ok := store.UndoLast()
	require.True(t, ok)
	assert.Equal(t, "stroke-2", last.ID)
	assert.Equal(t, "stroke-1", store.Strokes()[0].ID)

	store.Clear()
	assert.Equal(t, 0, store.Len())
}

func TestStoreCopiesAreIsolated(t *testing.T) {
	store := NewStore(nil)
	in := Stroke{ID: "a", Points: []Point{{0, 0, 0}, {1, 0, 0}}, Color: "#ffffff", Width: 2}
	store.Append(in)

	in.Points[0].X = 99
	out := store.Strokes()
	assert.Equal(t, 0.0, out[0].Points[0].X)

	out[0].Points[1].X = 99
	assert.Equal(t, 1.0, store.Strokes()[0].Points[1].X)
}

func TestStoreReplace(t *testing.T) {
	store := NewStore(nil)
	store.Append(Stroke{ID: "old", Points: []Point{{0, 0, 0}, {1, 0, 0}}})

	want := []Stroke{
		{ID: "a", Points: []Point{{0, 0, 0}, {0, 0, 1}}, Color: "#ffa500", Width: 1},
		{ID: "b", Points: []Point{{1, 0, 1}, {2, 0, 2}, {3, 0, 3}}, Color: "#ffd700", Width: 7},
	}
	store.Replace(want)
	if diff := cmp.Diff(want, store.Strokes()); diff != "" {
		t.Errorf("Replace mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreSubscribe(t *testing.T) {
	c, store := newTestCapture(t)

	var kinds []OpKind
	var seqs []uint64
	unsubscribe := store.Subscribe(func(op Op) {
		kinds = append(kinds, op.Kind)
		seqs = append(seqs, op.Seq)
	})

	drawLine(c, Point{0, 0, 0}, Point{1, 0, 0})
	store.UndoLast()
	store.UndoLast() // empty: no op
	store.Clear()
	store.Replace(nil)

	assert.Equal(t, []OpKind{OpAppend, OpUndo, OpClear, OpReplace}, kinds)
	for i := 1; i < len(seqs); i++ {
		assert.Greater(t, seqs[i], seqs[i-1])
	}

	unsubscribe()
	store.Clear()
	assert.Len(t, kinds, 4)
}

func TestStoreApplyMirrorsOps(t *testing.T) {
	c, src := newTestCapture(t)
	mirror := NewStore(nil)
	src.Subscribe(func(op Op) { mirror.Apply(op) })

	drawLine(c, Point{0, 0, 0}, Point{1, 0, 0})
	drawLine(c, Point{0, 0, 1}, Point{1, 0, 1})
	src.UndoLast()
	drawLine(c, Point{0, 0, 2}, Point{1, 0, 2})

	if diff := cmp.Diff(src.Strokes(), mirror.Strokes()); diff != "" {
		t.Errorf("mirror mismatch (-src +mirror):\n%s", diff)
	}

	src.Clear()
	assert.Equal(t, 0, mirror.Len())
}

func TestStoreApplyIgnoresDuplicates(t *testing.T) {
	store := NewStore(nil)
	st := Stroke{ID: "x", Points: []Point{{0, 0, 0}, {1, 0, 0}}}

	assert.True(t, store.Apply(Op{Kind: OpAppend, Stroke: &st, Seq: 7}))
	assert.False(t, store.Apply(Op{Kind: OpAppend, Stroke: &st, Seq: 8}))
	assert.False(t, store.Apply(Op{Kind: OpAppend}))
	assert.False(t, store.Apply(Op{Kind: "bogus"}))
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, uint64(8), store.Snapshot().Seq)
}

func TestStoreConcurrentReaders(t *testing.T) {
	store := NewStore(nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				store.Append(Stroke{ID: fmt.Sprintf("%d-%d", i, j), Points: []Point{{0, 0, 0}, {1, 0, 0}}})
				_ = store.Strokes()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 400, store.Len())
}

func TestClockObserve(t *testing.T) {
	c := NewClock()
	assert.Equal(t, uint64(1), c.Next())
	c.Observe(10)
	assert.Equal(t, uint64(11), c.Next())
	c.Observe(3)
	assert.Equal(t, uint64(12), c.Next())
	assert.NotEmpty(t, c.Site())
}

func TestStrokeJSON(t *testing.T) {
	st := Stroke{ID: "s", Points: []Point{{1, 0, 2.5}}, Color: "#9b59b6", Width: 4}
	data, err := json.Marshal(st)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"s","points":[[1,0,2.5]],"color":"#9b59b6","width":4}`, string(data))

	var back Stroke
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, st, back)

	var p Point
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &p))
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0x6b, B: 0x6b, A: 0xff}, ParseColor("#ff6b6b"))
	assert.Equal(t, color.NRGBA{A: 0xff}, ParseColor("nope"))
	assert.True(t, ValidColor("#A0522D"))
	assert.False(t, ValidColor("#abc"))
}
