/*
NAME
  accountant.go

LICENSE
  Copyright (C) 2026 the mpp contributors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the mpp contributors.
*/

package rc

// initAccounting builds the sliding windows and seeds the per-type bit
// scales. It is the Go equivalent of bits_model_init plus bits_frm_init.
func (c *Controller) initAccounting() error {
	cfg := &c.cfg

	var targetBps int64
	if cfg.Mode == CBR {
		targetBps = int64(cfg.BpsTarget)
	} else {
		targetBps = int64(cfg.BpsMax)
	}

	gopLen := int64(cfg.Igop)
	var gopBits int64
	if gopLen >= 1 {
		gopBits = gopLen * targetBps * int64(cfg.Fps.OutDenorm)
	} else {
		gopBits = int64(cfg.Fps.InNum) * targetBps * int64(cfg.Fps.OutDenorm)
	}
	c.gopTotalBits = gopBits / int64(cfg.Fps.OutNum)

	// Disabled sentinel: the source stores these as RK_U32 -1 (i.e.
	// 0xFFFFFFFF) and compares bit_real against them as unsigned, which
	// makes the super-frame check effectively inert until wired up by a
	// caller that sets real thresholds.
	c.superIFrmBitsThr = 0xFFFFFFFF
	c.superPFrmBitsThr = 0xFFFFFFFF
	c.firstFrame = true

	var err error
	if c.iWin, err = NewWindow(iWindowLen); err != nil {
		return err
	}
	if c.viWin, err = NewWindow(iWindowLen); err != nil {
		return err
	}
	if c.pWin, err = NewWindow(pWindow1Len); err != nil {
		return err
	}
	if c.preBitsWin, err = NewWindow(pWindow2Len); err != nil {
		return err
	}
	if c.madiWin, err = NewWindow(pWindow2Len); err != nil {
		return err
	}
	if c.statRateWin, err = NewWindow(int(cfg.Fps.InNum)); err != nil {
		return err
	}
	statLen := int(cfg.Fps.InNum * cfg.StatTimes)
	if c.statBitsWin, err = NewWindow(statLen); err != nil {
		return err
	}
	c.statRateWin.Reset(0)

	c.targetBps = targetBps
	c.bitPerFrame = targetBps / int64(cfg.Fps.InNum)
	c.watlThrd = 3 * targetBps
	c.statWatl = c.watlThrd >> 3
	c.watlBase = c.statWatl

	c.statBitsWin.Reset(c.bitPerFrame)

	c.bitsFrmInit()
	return nil
}

// bitsFrmInit seeds the per-type bit scales and windows from the GOP
// budget, per GOP mode.
func (c *Controller) bitsFrmInit() {
	cfg := &c.cfg
	gopLen := int64(cfg.Igop)

	switch cfg.GopMode {
	case NormalP:
		c.iScale = 160
		c.pScale = 16

		var pBit int64
		if gopLen <= 1 {
			pBit = c.gopTotalBits * 16
		} else {
			pBit = c.gopTotalBits * 16 / (c.iScale + c.pScale*(gopLen-1))
		}
		c.pWin.Reset(pBit)
		c.pSumBits = 5 * pBit

		iBit := pBit * c.iScale / 16
		c.iWin.Reset(iBit)
		c.iSumBits = 2 * iBit

	case SmartP:
		c.iScale = 320
		c.pScale = 16
		c.viScale = 32

		viNum := gopLen / int64(cfg.Vgop)
		if viNum > 0 {
			viNum--
		}

		pBit := c.gopTotalBits * 16 / (c.iScale + c.viScale*viNum + c.pScale*(gopLen-viNum))
		c.pWin.Reset(pBit)
		c.pSumBits = 5 * pBit

		iBit := pBit * c.iScale / 16
		c.iWin.Reset(iBit)
		c.iSumBits = 2 * iBit

		viBit := pBit * c.viScale / 16
		c.viWin.Reset(viBit)
		c.viSumBits = 2 * viBit
	}
}

// updateAccounting folds a just-finished frame's real bit count (and, for
// P frames, its MADI sample) into the running statistics: the leaky-
// bucket water level, the per-type sum/scale, and the stat windows used
// for instantaneous bitrate estimation. It is the Go equivalent of
// bits_model_update.
func (c *Controller) updateAccounting(realBit int64, madi uint32) {
	rate := int64(0)
	if realBit != 0 {
		rate = 1
	}
	c.statRateWin.Update(rate)
	c.statBitsWin.Update(realBit)

	var waterLevel int64
	if realBit+c.statWatl > c.watlThrd {
		waterLevel = c.watlThrd - c.bitPerFrame
	} else {
		waterLevel = realBit + c.statWatl - c.bitPerFrame
	}
	if waterLevel < 0 {
		waterLevel = 0
	}
	c.statWatl = waterLevel

	switch c.frameType {
	case FrameIntra:
		c.iWin.Update(realBit)
		c.iSumBits = c.iWin.Sum()
		c.iScale = 80 * c.iSumBits / (2 * c.pSumBits)

	case FrameInterP:
		c.pWin.Update(realBit)
		c.madiWin.Update(int64(madi))
		c.pSumBits = c.pWin.Sum()
		c.pScale = 16

	case FrameInterVI:
		c.viWin.Update(realBit)
		c.viSumBits = c.viWin.Sum()
		c.viScale = 80 * c.viSumBits / (2 * c.pSumBits)
	}
}

// alloc converts the GOP budget and current scales into this frame's bit
// target, and caches the instantaneous bps estimate for the ratio
// controllers. It is the Go equivalent of bits_model_alloc.
func (c *Controller) alloc(info *EncRcTaskInfo) {
	cfg := &c.cfg
	maxIProp := int64(cfg.MaxIBitProp) * 16
	gopLen := int64(cfg.Igop)
	totalBits := c.gopTotalBits
	insBps := c.statBitsWin.Sum() / int64(cfg.StatTimes)

	c.iScale = 80 * c.iSumBits / (2 * c.pSumBits)
	iScale := c.iScale
	viScale := c.viScale

	var allocBits int64
	if cfg.GopMode == SmartP {
		viNum := gopLen / int64(cfg.Vgop)
		if viNum > 0 {
			viNum--
		}

		switch c.frameType {
		case FrameIntra:
			iScale = clipI64(iScale, 16, 16000)
			totalBits *= iScale
		case FrameInterP:
			iScale = clipI64(iScale, 16, maxIProp)
			totalBits *= 16
		case FrameInterVI:
			iScale = clipI64(iScale, 16, maxIProp)
			totalBits *= viScale
		}
		allocBits = totalBits / (iScale + 16*(gopLen-viNum) + viNum*viScale)
	} else {
		switch c.frameType {
		case FrameIntra:
			if cfg.Mode == CBR {
				iScale = clipI64(iScale, 16, 800)
			} else {
				iScale = clipI64(iScale, 16, 16000)
			}
			totalBits *= iScale
		case FrameInterP:
			iScale = clipI64(iScale, 16, maxIProp)
			totalBits *= 16
		}

		if gopLen > 1 {
			allocBits = totalBits / (iScale + 16*(gopLen-1))
		} else {
			allocBits = totalBits / iScale
		}
	}

	info.BitTarget = allocBits
	c.insBps = insBps
}
