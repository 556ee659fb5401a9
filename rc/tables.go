/*
NAME
  tables.go

LICENSE
  Copyright (C) 2026 the mpp contributors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the mpp contributors.
*/

package rc

// tabLnX is a cheap ln()-approximation table used to turn a bps ratio
// into a QP-scale delta. Entries 0..63 are carried over verbatim from the
// source. Entry 64 does not exist in the source (its tab_lnx has only 64
// entries) but an index of exactly 64 is reachable after clipping
// idx=(bps<<5)/reference to [0,64]; see DESIGN.md for the out-of-range
// read this resolves and how entry 64 was derived.
var tabLnX = [65]int32{
	-1216, -972, -830, -729, -651, -587, -533, -486,
	-445, -408, -374, -344, -316, -290, -265, -243,
	-221, -201, -182, -164, -147, -131, -115, -100,
	-86, -72, -59, -46, -34, -22, -11, 0,
	10, 21, 31, 41, 50, 60, 69, 78,
	86, 95, 103, 111, 119, 127, 134, 142,
	149, 156, 163, 170, 177, 183, 190, 196,
	202, 208, 214, 220, 226, 232, 237, 243,
	248,
}

// maxIDeltaQP caps the per-GOP intra QP-scale correction by the previous
// intra QP (index 0..50).
var maxIDeltaQP = [51]int32{
	640, 640, 640, 640, 640, 640, 640, 640, 640, 640, 640, 640, 640, 640,
	576, 576, 512, 512, 448, 448, 384, 384, 320, 320, 320, 256, 256, 256,
	192, 192, 192, 192, 192, 128, 128, 128, 128, 128, 128, 64, 64, 64,
	64, 64, 64, 0, 0, 0, 0, 0, 0,
}

// maxIPQPDealt bounds the additional intra/P QP relief applied when
// IQualityDelta is configured, indexed by a clipped MADI bucket.
var maxIPQPDealt = [8]int32{7, 7, 7, 7, 6, 4, 3, 2}

// mbNum buckets the macroblock count for the first-intra start-QP lookup.
var mbNum = [9]uint32{0, 200, 700, 1200, 2000, 4000, 8000, 16000, 20000}

// tabBit pairs each mbNum bucket with a bits-per-macroblock constant.
var tabBit = [9]uint32{3780, 3570, 3150, 2940, 2730, 3780, 2100, 1680, 2100}

// qscale2qp maps a clipped qscale index to a starting QP.
var qscale2qp = [96]uint8{
	15, 15, 15, 15, 15, 16, 18, 20, 21, 22, 23,
	24, 25, 25, 26, 27, 28, 28, 29, 29, 30, 30,
	30, 31, 31, 32, 32, 33, 33, 33, 34, 34, 34,
	34, 35, 35, 35, 36, 36, 36, 36, 36, 37, 37,
	37, 37, 38, 38, 38, 38, 38, 39, 39, 39, 39,
	39, 39, 40, 40, 40, 40, 41, 41, 41, 41, 41,
	41, 41, 42, 42, 42, 42, 42, 42, 42, 42, 43,
	43, 43, 43, 43, 43, 43, 43, 44, 44, 44, 44,
	44, 44, 44, 44, 45, 45, 45, 45,
}

// clipI32 clamps x to [lo, hi].
func clipI32(x, lo, hi int32) int32 {
	switch {
	case x < lo:
		return lo
	case x > hi:
		return hi
	default:
		return x
	}
}

// clipI64 clamps x to [lo, hi].
func clipI64(x, lo, hi int64) int64 {
	switch {
	case x < lo:
		return lo
	case x > hi:
		return hi
	default:
		return x
	}
}

// lnxIndex computes the clipped tabLnX index for a bps ratio against a
// reference rate: idx = clip((bps<<5)/reference, 0, 64).
func lnxIndex(bps, reference int64) int64 {
	if reference == 0 {
		return 0
	}
	return clipI64((bps<<5)/reference, 0, 64)
}
