package state

import (
	"sync"

	"go.uber.org/zap"
)

// Store is the ordered list of closed strokes. Strokes are never edited in
// place: the list only grows at the end, shrinks from the end, or is
// cleared or replaced as a whole.
type Store struct {
	mu      sync.RWMutex
	strokes []Stroke
	seen    map[string]bool // stroke IDs, for dropping duplicate remote appends

	clock  *Clock
	logger *zap.Logger

	subMu  sync.Mutex
	subs   map[int]func(Op)
	nextID int
}

func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		seen:   make(map[string]bool),
		clock:  NewClock(),
		logger: logger,
		subs:   make(map[int]func(Op)),
	}
}

// Subscribe registers fn to be called after every mutation. Calls happen on
// the goroutine that mutated the store, outside the store lock.
func (s *Store) Subscribe(fn func(Op)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) emit(op Op) {
	s.subMu.Lock()
	fns := make([]func(Op), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(op)
	}
}

// Append adds a copy of st to the end.
func (s *Store) Append(st Stroke) {
	st = st.Clone()
	s.mu.Lock()
	s.strokes = append(s.strokes, st)
	s.seen[st.ID] = true
	op := s.clock.stamp(Op{Kind: OpAppend, Stroke: &st})
	s.mu.Unlock()

	s.logger.Debug("Stroke appended",
		zap.String("id", st.ID),
		zap.Int("points", len(st.Points)))
	s.emit(op)
}

// UndoLast removes the last stroke. It reports false, and does nothing, on
// an empty store.
func (s *Store) UndoLast() (Stroke, bool) {
	s.mu.Lock()
	if len(s.strokes) == 0 {
		s.mu.Unlock()
		return Stroke{}, false
	}
	last := s.strokes[len(s.strokes)-1]
	s.strokes = s.strokes[:len(s.strokes)-1]
	delete(s.seen, last.ID)
	op := s.clock.stamp(Op{Kind: OpUndo})
	s.mu.Unlock()

	s.logger.Debug("Stroke undone", zap.String("id", last.ID))
	s.emit(op)
	return last, true
}

// Clear empties the store unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	n := len(s.strokes)
	s.strokes = nil
	s.seen = make(map[string]bool)
	op := s.clock.stamp(Op{Kind: OpClear})
	s.mu.Unlock()

	s.logger.Debug("Store cleared", zap.Int("removed", n))
	s.emit(op)
}

// Replace swaps the whole list for a copy of strokes.
func (s *Store) Replace(strokes []Stroke) {
	cp := cloneStrokes(strokes)
	s.mu.Lock()
	s.strokes = cp
	s.seen = make(map[string]bool, len(cp))
	for _, st := range cp {
		s.seen[st.ID] = true
	}
	op := s.clock.stamp(Op{Kind: OpReplace, Strokes: cloneStrokes(cp)})
	s.mu.Unlock()

	s.logger.Debug("Store replaced", zap.Int("strokes", len(cp)))
	s.emit(op)
}

// Strokes returns a deep copy of the current list.
func (s *Store) Strokes() []Stroke {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneStrokes(s.strokes)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.strokes)
}

// Snapshot returns the current list as a replace op, stamped with the
// current clock, for bringing a new observer up to date.
func (s *Store) Snapshot() Op {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Op{
		Kind:    OpReplace,
		Strokes: cloneStrokes(s.strokes),
		Seq:     s.clock.lamport.Load(),
		Site:    s.clock.Site(),
	}
}

// Apply replays an op received from another store. Appends of strokes the
// store already holds are ignored. It reports whether the store changed.
func (s *Store) Apply(op Op) bool {
	s.clock.Observe(op.Seq)

	switch op.Kind {
	case OpAppend:
		if op.Stroke == nil {
			return false
		}
		s.mu.RLock()
		dup := s.seen[op.Stroke.ID]
		s.mu.RUnlock()
		if dup {
			s.logger.Debug("Duplicate stroke ignored", zap.String("id", op.Stroke.ID))
			return false
		}
		s.Append(*op.Stroke)
	case OpUndo:
		_, ok := s.UndoLast()
		return ok
	case OpClear:
		s.Clear()
	case OpReplace:
		s.Replace(op.Strokes)
	default:
		s.logger.Warn("Unknown op ignored", zap.String("kind", string(op.Kind)))
		return false
	}
	return true
}
