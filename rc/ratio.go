/*
NAME
  ratio.go

LICENSE
  Copyright (C) 2026 the mpp contributors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the mpp contributors.
*/

package rc

import "math"

// calcNextIRatio updates nextIRatio from the previous intra frame's
// overshoot against its allocated share of the GOP, capped by
// maxIDeltaQP[previous intra QP]. It is the Go equivalent of
// calc_next_i_ratio, run once after an intra frame, before the next
// intra frame's allocation.
func (c *Controller) calcNextIRatio() {
	cfg := &c.cfg
	maxIProp := int64(cfg.MaxIBitProp) * 16
	gopLen := int64(cfg.Igop)

	var bitsAlloc int64
	if gopLen > 1 {
		bitsAlloc = c.gopTotalBits * maxIProp / (maxIProp + 16*(gopLen-1))
	} else {
		bitsAlloc = c.gopTotalBits * maxIProp / maxIProp
	}

	if c.preRealBits <= bitsAlloc && c.nextIRatio == 0 {
		return
	}

	ratio := ((c.preRealBits - bitsAlloc) << 8) / bitsAlloc
	ratio = clipI64(ratio, -256, 256)
	ratio += c.nextIRatio

	if ratio >= 0 {
		idx := int(c.preIQP)
		idx = int(clipI32(int32(idx), 0, int32(len(maxIDeltaQP)-1)))
		if cap := int64(maxIDeltaQP[idx]); ratio > cap {
			ratio = cap
		}
	} else {
		ratio = 0
	}
	c.nextIRatio = ratio
}

// calcCBRRatio is the first-pass CBR feedback law: it combines a bit-diff
// term, a log-ratio instantaneous-bps term, and a water-level term into
// nextRatio. It is the Go equivalent of calc_cbr_ratio.
func (c *Controller) calcCBRRatio() {
	targetBps := c.targetBps
	insBps := c.insBps
	preInsBps := c.lastInstBps
	preTargetBits := c.preTargetBits
	preRealBits := c.preRealBits

	var bitDiffRatio int64
	if preTargetBits > preRealBits {
		bitDiffRatio = 52 * (preRealBits - preTargetBits) / preTargetBits
	} else {
		bitDiffRatio = 64 * (preRealBits - preTargetBits) / preTargetBits
	}

	idx1 := lnxIndex(insBps, targetBps)
	idx2 := lnxIndex(preInsBps, targetBps)
	insRatio := int64(tabLnX[idx1]) - int64(tabLnX[idx2])

	flag := false
	sixteenth := targetBps >> 4
	switch {
	case insBps > preInsBps && targetBps-preInsBps < sixteenth:
		insRatio *= 6
	case insBps < preInsBps && preInsBps-targetBps < sixteenth:
		insRatio *= 4
	default:
		if bitDiffRatio < -128 {
			insRatio = -128
			flag = true
		} else {
			insRatio = 0
		}
	}

	bitDiffRatio = clipI64(bitDiffRatio, -128, 256)
	if !flag {
		insRatio = clipI64(insRatio, -128, 256)
		insRatio += bitDiffRatio
	}

	bpsRatio := clipI64((insBps-targetBps)*3/(targetBps>>4), -32, 32)
	wlRatio := clipI64(4*(c.statWatl-c.watlBase)*3/c.watlBase, -16, 32)

	c.nextRatio = insRatio + bpsRatio + wlRatio
}

// reencCalcCBRRatio recomputes a ratio after a CBR frame that just
// triggered the re-encode gate. Because the stat-bits window has not yet
// been updated with this frame's bit_real, it substitutes bit_real for
// the window's oldest sample to form an up-to-date instantaneous bps
// estimate. It is the Go equivalent of reenc_calc_cbr_ratio.
func (c *Controller) reencCalcCBRRatio(info *EncRcTaskInfo) {
	statTime := int64(c.cfg.StatTimes)
	preInsBps := c.statBitsWin.Sum() / statTime
	insBps := (preInsBps*statTime - c.statBitsWin.Val(0) + info.BitReal) / statTime

	realBit := info.BitReal
	targetBit := info.BitTarget
	targetBps := c.targetBps

	waterLevel := realBit + c.statWatl - c.bitPerFrame
	if realBit+c.statWatl > c.watlThrd {
		waterLevel = c.watlThrd - c.bitPerFrame
	}
	if waterLevel < 0 {
		waterLevel = 0
	}

	var bitDiffRatio int64
	if targetBit > realBit {
		bitDiffRatio = 32 * (realBit - targetBit) / targetBit
	} else {
		bitDiffRatio = 48 * (realBit - targetBit) / realBit
	}

	idx1 := clipI64(insBps/(targetBps>>5), 0, 64)
	idx2 := clipI64(preInsBps/(targetBps>>5), 0, 64)
	insRatio := int64(tabLnX[idx1]) - int64(tabLnX[idx2])

	bpsRatio := 96 * (insBps - targetBps) / targetBps
	wlRatio := 32 * (waterLevel - c.watlBase) / c.watlBase

	if preInsBps < insBps && targetBps != preInsBps {
		insRatio = clipI64(6*insRatio, -192, 256)
	} else if c.frameType == FrameIntra {
		insRatio = clipI64(3*insRatio, -192, 256)
	} else {
		insRatio = 0
	}

	bitDiffRatio = clipI64(bitDiffRatio, -128, 256)
	bpsRatio = clipI64(bpsRatio, -32, 32)
	wlRatio = clipI64(wlRatio, -32, 32)

	c.nextRatio = bitDiffRatio + insRatio + bpsRatio + wlRatio

	if c.frameType == FrameIntra && info.Madi > 0 {
		mbW := (int64(c.cfg.Width) + 15) / 16
		mbH := (int64(c.cfg.Height) + 15) / 16
		tarBpp := float64(targetBit) / float64(mbW*mbH)

		const (
			a = -0.1435
			b = 0.0438
			k = 6.7204
		)
		qpC := int64(math.Round((math.Log(tarBpp)-float64(info.Madi)*b-k)/a + 14))
		if qpC > int64(c.curScaleQP>>6) {
			c.nextRatio = qpC<<6 - int64(c.curScaleQP)
		}
	}
}

// calcVBRRatio is the first-pass VBR feedback law. It is the Go
// equivalent of calc_vbr_ratio.
func (c *Controller) calcVBRRatio() {
	bpsChange := c.targetBps
	maxBpsTarget := int64(c.cfg.BpsMax)
	insBps := c.insBps
	preTargetBits := c.preTargetBits
	preRealBits := c.preRealBits
	preInsBps := c.lastInstBps

	var bitDiffRatio int64
	if preTargetBits > preRealBits {
		bitDiffRatio = 32 * (preRealBits - preTargetBits) / preTargetBits
	} else {
		bitDiffRatio = 64 * (preRealBits - preTargetBits) / preTargetBits
	}

	idx1 := clipI64(insBps/(maxBpsTarget>>5), 0, 64)
	idx2 := clipI64(preInsBps/(maxBpsTarget>>5), 0, 64)
	insRatio := int64(tabLnX[idx1]) - int64(tabLnX[idx2])

	if insBps <= bpsChange || (insBps > bpsChange && insBps <= preInsBps) {
		flag := insBps < preInsBps
		if bpsChange <= preInsBps {
			flag = false
		}
		if !flag {
			bitDiffRatio = clipI64(bitDiffRatio, -128, 256)
		} else {
			insRatio *= 3
		}
	} else {
		insRatio *= 6
	}
	insRatio = clipI64(insRatio, -128, 256)

	bpsRatio := clipI64(3*(insBps-bpsChange)/(maxBpsTarget>>4), -16, 32)

	if c.iScale > 640 {
		bitDiffRatio = clipI64(bitDiffRatio, -16, 32)
		insRatio = clipI64(insRatio, -16, 32)
	}

	c.nextRatio = bitDiffRatio + insRatio + bpsRatio
}

// reencCalcVBRRatio recomputes a ratio after a VBR frame that just
// triggered the re-encode gate. It is the Go equivalent of
// reenc_calc_vbr_ratio.
func (c *Controller) reencCalcVBRRatio(info *EncRcTaskInfo) {
	statTime := int64(c.cfg.StatTimes)
	preInsBps := c.statBitsWin.Sum() / statTime
	insBps := (preInsBps*statTime - c.statBitsWin.Val(0) + info.BitReal) / statTime

	bpsChange := c.targetBps
	maxBpsTarget := int64(c.cfg.BpsMax)
	realBit := info.BitReal
	targetBit := info.BitTarget

	var bitDiffRatio int64
	if targetBit <= realBit {
		bitDiffRatio = 32 * (realBit - targetBit) / targetBit
	} else {
		bitDiffRatio = 32 * (realBit - targetBit) / realBit
	}

	var insRatio int64
	if preInsBps < insBps && bpsChange < insBps {
		idx1 := clipI64(insBps/(maxBpsTarget>>5), 0, 64)
		idx2 := clipI64(preInsBps/(maxBpsTarget>>5), 0, 64)
		insRatio = clipI64(6*(int64(tabLnX[idx1])-int64(tabLnX[idx2])), -192, 256)
	}

	bpsRatio := 96 * (insBps - bpsChange) / bpsChange
	bitDiffRatio = clipI64(bitDiffRatio, -128, 256)
	bpsRatio = clipI64(bpsRatio, -32, 32)

	c.nextRatio = bitDiffRatio + insRatio + bpsRatio
}
