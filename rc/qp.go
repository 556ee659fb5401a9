/*
NAME
  qp.go

LICENSE
  Copyright (C) 2026 the mpp contributors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the mpp contributors.
*/

package rc

// calcFirstIStartQP picks a start QP for the very first intra frame of a
// stream from its macroblock count and bit target, via a bucketed
// qscale lookup. It is the Go equivalent of cal_first_i_start_qp.
func calcFirstIStartQP(targetBit int64, totalMB uint32) QP {
	cnt := 0
	for i := 0; i < 8; i++ {
		if mbNum[i] > totalMB {
			break
		}
		cnt++
	}

	index := (int64(totalMB)*int64(tabBit[cnt]) - 350) / targetBit
	index = clipI64(index, 4, 95)
	return QP(qscale2qp[index])
}

// HalStart picks the frame's start QP: the configured QP under a forced
// override or FixQP, a macroblock/bit-target lookup for the stream's
// first intra frame, or cur_scale_qp adjusted by the accumulated ratio
// deltas for every other frame. It is the Go equivalent of
// rc_model_v2_hal_start.
func (c *Controller) HalStart(task *EncRcTask) error {
	if !c.initialized {
		return ErrNotInitialized
	}

	frm := &task.Frm
	info := &task.Info
	force := &task.Force

	if force.ForceFlag&ForceQPFlag != 0 {
		qp := force.ForceQP
		info.QualityTarget = qp
		info.QualityMax = qp
		info.QualityMin = qp
		return nil
	}

	if c.cfg.Mode == FixQP {
		return nil
	}

	mbW := int64(c.cfg.Width+15) / 16
	mbH := int64(c.cfg.Height+15) / 16

	if c.firstFrame && frm.IsIntra {
		switch {
		case info.QualityTarget < 0 && info.BitTarget != 0:
			c.startQP = calcFirstIStartQP(info.BitTarget, uint32(mbW*mbH))
			c.curScaleQP = ToScaled(c.startQP)
		case info.QualityTarget < 0:
			c.log.Info("fix qp case but init qp not set")
			info.QualityTarget = 26
			c.startQP = 26
			c.curScaleQP = ToScaled(c.startQP)
		default:
			c.startQP = info.QualityTarget
			c.curScaleQP = ToScaled(c.startQP)
		}

		if c.reencCnt > 0 {
			c.curScaleQP += ScaledQP(c.nextRatio)
			c.startQP = c.curScaleQP.QP()
		} else {
			c.startQP -= c.cfg.IQualityDelta
		}

		c.curScaleQP = c.curScaleQP.Clip(ToScaled(info.QualityMin), ToScaled(info.QualityMax))
		c.preIQP = c.curScaleQP.QP()
		c.preQP = c.curScaleQP.QP()
	} else {
		qpScale := c.curScaleQP + ScaledQP(c.nextRatio)

		if frm.IsIntra {
			qpScale = qpScale.Clip(ToScaled(info.QualityMin), ToScaled(info.QualityMax))

			blended := (int64(c.preIQP) + ((int64(qpScale) + c.nextIRatio) >> 6)) / 2
			startQP := QP(blended).Clip(info.QualityMin, info.QualityMax)
			c.preIQP = startQP
			c.startQP = startQP
			c.curScaleQP = qpScale

			var dealtQP QP
			if c.cfg.IQualityDelta > 0 && c.reencCnt == 0 {
				idx := clipI64(c.madiWin.Mean()/4, 0, 7)
				dealtQP = QP(maxIPQPDealt[idx])
				if dealtQP > c.cfg.IQualityDelta {
					dealtQP = c.cfg.IQualityDelta
				}
			}
			if c.cfg.IQualityDelta > 0 {
				c.startQP -= dealtQP
			}
		} else {
			qpScale = qpScale.Clip(ToScaled(info.QualityMin), ToScaled(info.QualityMax))
			c.curScaleQP = qpScale
			c.startQP = qpScale.QP()
			if frm.RefMode == RefToPrevIntra {
				c.startQP -= c.cfg.VIQualityDelta
			}
		}
	}

	c.startQP = c.startQP.Clip(info.QualityMin, info.QualityMax)
	info.QualityTarget = c.startQP

	c.log.Debug("rc hal_start",
		"seqIdx", frm.SeqIdx, "startQP", c.startQP, "curScaleQP", c.curScaleQP)
	return nil
}
