package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Clock is a Lamport clock stamping the ops of one store.
type Clock struct {
	site    string
	lamport atomic.Uint64
}

func NewClock() *Clock {
	return &Clock{site: uuid.NewString()}
}

func (c *Clock) Site() string { return c.site }

func (c *Clock) Next() uint64 { return c.lamport.Add(1) }

// Observe moves the clock past a sequence number seen from another site.
func (c *Clock) Observe(seq uint64) {
	for {
		cur := c.lamport.Load()
		if seq <= cur || c.lamport.CompareAndSwap(cur, seq) {
			return
		}
	}
}

func (c *Clock) stamp(op Op) Op {
	op.Seq = c.Next()
	op.Site = c.site
	return op
}
