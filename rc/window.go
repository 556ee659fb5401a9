/*
NAME
  window.go

LICENSE
  Copyright (C) 2026 the mpp contributors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the mpp contributors.
*/

package rc

import "github.com/pkg/errors"

// Window is a fixed-capacity ring buffer of int64 samples that tracks its
// own running sum, giving O(1) insert-newest, O(1) sum and O(1) mean. It is
// the Go equivalent of the C source's MppDataV2.
//
// A Window is always fully populated: Reset seeds every slot, and Update
// always evicts the oldest slot, so Sum and Mean are defined from the
// moment a Window is constructed.
type Window struct {
	vals []int64
	pos  int // index of the oldest sample; also the next slot Update will overwrite.
	sum  int64
}

// NewWindow allocates a Window with the given capacity. cap must be
// positive; the C source's allocation-failure path has no Go analogue, so
// ErrWindowCapacity is the only failure a Window constructor can report.
func NewWindow(cap int) (*Window, error) {
	if cap <= 0 {
		return nil, errors.Wrapf(ErrWindowCapacity, "capacity %d", cap)
	}
	return &Window{vals: make([]int64, cap)}, nil
}

// Cap returns the window's fixed capacity.
func (w *Window) Cap() int { return len(w.vals) }

// Reset fills every slot with seed and resets the running sum accordingly.
func (w *Window) Reset(seed int64) {
	for i := range w.vals {
		w.vals[i] = seed
	}
	w.sum = seed * int64(len(w.vals))
	w.pos = 0
}

// Update appends x, evicting the oldest sample while preserving insertion
// order.
func (w *Window) Update(x int64) {
	old := w.vals[w.pos]
	w.vals[w.pos] = x
	w.sum += x - old
	w.pos++
	if w.pos == len(w.vals) {
		w.pos = 0
	}
}

// Sum returns the sum of all live samples.
func (w *Window) Sum() int64 { return w.sum }

// Mean returns the arithmetic mean over the full capacity.
func (w *Window) Mean() int64 { return w.sum / int64(len(w.vals)) }

// Val returns the sample at logical index i, where 0 is the oldest slot and
// Cap()-1 is the newest.
func (w *Window) Val(i int) int64 {
	idx := w.pos + i
	if n := len(w.vals); idx >= n {
		idx -= n
	}
	return w.vals[idx]
}
