/*
NAME
  synth.go

LICENSE
  Copyright (C) 2026 the mpp contributors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the mpp contributors.
*/

package main

import (
	"math"

	"github.com/kevin523/mpp/rc"
)

// frame is one synthetic encode result: the frame type the generator
// picked, and the real bit count and MADI it reports back to the
// controller via EncRcTaskInfo.
type frame struct {
	isIntra bool
	refMode rc.RefMode
	bitReal int64
	madi    uint32
}

// scenario configures a synthetic frame sequence.
type scenario struct {
	Name       string
	Frames     int
	Igop       int
	Vgop       int // virtual-GOP length; when > 0, every Vgop'th non-intra frame is generated as a VI frame.
	BpsTarget  int64
	Noise      float64 // fractional bit-count jitter per frame, e.g. 0.1 = +/-10%.
	IntraBoost float64 // intra frames cost this many times a P frame's share.
}

// generate produces a deterministic synthetic frame sequence for a
// scenario. Jitter comes from a fixed low-discrepancy sequence rather
// than math/rand, so repeated runs of the same scenario always produce
// the same trace.
func generate(s scenario) []frame {
	frames := make([]frame, s.Frames)
	baseBit := s.BpsTarget / 30 // 30fps assumed by the CLI's fixed config.

	for i := range frames {
		isIntra := s.Igop > 0 && i%s.Igop == 0
		isVI := !isIntra && s.Vgop > 0 && i%s.Vgop == 0

		bit := baseBit
		if isIntra {
			bit = int64(float64(baseBit) * s.IntraBoost)
		}

		jitter := 1 + s.Noise*lowDiscrepancy(i)
		bit = int64(float64(bit) * jitter)
		if bit < 0 {
			bit = 0
		}

		refMode := rc.RefNormal
		if isVI {
			refMode = rc.RefToPrevIntra
		}

		frames[i] = frame{
			isIntra: isIntra,
			refMode: refMode,
			bitReal: bit,
			madi:    uint32(10 + 5*math.Abs(lowDiscrepancy(i))),
		}
	}
	return frames
}

// lowDiscrepancy returns the i'th term of the van der Corput sequence
// (base 2), remapped to [-1,1].
func lowDiscrepancy(i int) float64 {
	var result float64
	f := 0.5
	n := i
	for n > 0 {
		if n&1 == 1 {
			result += f
		}
		f /= 2
		n >>= 1
	}
	return 2*result - 1
}
