/*
NAME
  reencode.go

LICENSE
  Copyright (C) 2026 the mpp contributors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the mpp contributors.
*/

package rc

// checkReEnc decides whether a just-finished frame overshot its bit
// target badly enough, relative to the instantaneous bps estimate, to
// warrant a re-encode at an adjusted QP. It is the Go equivalent of
// check_re_enc.
func (c *Controller) checkReEnc(info *EncRcTaskInfo) bool {
	if c.reencCnt >= c.cfg.MaxReencodeTimes {
		return false
	}

	var bitThr int64
	switch c.frameType {
	case FrameIntra:
		bitThr = 3 * info.BitTarget / 2
	case FrameInterP:
		bitThr = 3 * info.BitTarget
	}

	if info.BitReal <= bitThr {
		return false
	}

	statTime := int64(c.cfg.StatTimes)
	lastInsBps := c.statBitsWin.Sum() / statTime
	newest := c.statBitsWin.Val(c.statBitsWin.Cap() - 1)
	insBps := (lastInsBps*statTime - newest + info.BitReal) / statTime

	if c.cfg.Mode == CBR {
		targetBps := int64(c.cfg.BpsTarget)
		return targetBps/20 < insBps-lastInsBps &&
			(targetBps+targetBps/10 < insBps || targetBps-targetBps/10 > insBps)
	}

	targetBps := int64(c.cfg.BpsMax)
	return targetBps-(targetBps>>3) < insBps && targetBps/20 < insBps-lastInsBps
}

// CheckSuperFrame reports whether a just-finished frame exceeded its
// per-type super-frame bit threshold. The thresholds default to disabled
// (see initAccounting); this check is passive and is not invoked
// automatically by End — the caller decides whether and how to act on
// it, mirroring check_super_frame in the source.
func (c *Controller) CheckSuperFrame(info *EncRcTaskInfo) bool {
	thr := c.superIFrmBitsThr
	if c.frameType != FrameIntra {
		thr = c.superPFrmBitsThr
	}
	return uint32(info.BitReal) >= uint32(thr)
}
