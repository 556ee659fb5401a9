/*
NAME
  controller.go

LICENSE
  Copyright (C) 2026 the mpp contributors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the mpp contributors.
*/

package rc

import "github.com/ausocean/utils/logging"

// Sliding-window capacities, carried over from the C source's macros.
const (
	iWindowLen  = 2
	pWindow1Len = 5
	pWindow2Len = 8
)

// Controller is a per-stream rate-control model. It is not safe for
// concurrent use: the caller must serialize Start/HalStart/End for a
// single stream, as spec'd in the concurrency model. Multiple Controllers
// share no state.
type Controller struct {
	cfg Config
	log logging.Logger

	initialized bool

	frameType     FrameType
	lastFrameType FrameType

	gopTotalBits int64
	bitPerFrame  int64
	firstFrame   bool

	iWin     *Window
	iSumBits int64
	iScale   int64

	viWin     *Window
	viSumBits int64
	viScale   int64

	pWin     *Window
	pSumBits int64
	pScale   int64

	preBitsWin *Window // Mirrors the source's otherwise-unread pre_p_bit window.
	madiWin    *Window

	statRateWin *Window
	statBitsWin *Window

	targetBps     int64
	preTargetBits int64
	preRealBits   int64
	insBps        int64
	lastInstBps   int64

	superIFrmBitsThr int64
	superPFrmBitsThr int64

	watlThrd int64
	statWatl int64
	watlBase int64

	nextIRatio int64
	nextRatio  int64

	preIQP QP
	preQP  QP // Mirrors the source's pre_p_qp, set but never read back.

	curScaleQP ScaledQP
	startQP    QP

	reencCnt uint32
}

// NewController allocates a Controller. Init must be called before use.
func NewController() *Controller {
	return &Controller{}
}

// Init copies cfg, normalizes out-of-range fields, and (re)builds the
// accounting state. Init is idempotent: calling it again on a live
// Controller discards prior accounting state and starts a fresh stream,
// matching the source's bits_model_init which tears down and rebuilds its
// windows unconditionally.
func (c *Controller) Init(cfg Config) error {
	cfg.normalize()
	c.cfg = cfg
	c.log = cfg.Logger

	if cfg.GopMode == SmartP && cfg.Vgop <= 1 {
		return ErrBadVgop
	}

	// bits_model_init allocates its windows unconditionally, even for
	// RC_FIXQP: the mode only changes how rc_model_v2_start and
	// rc_model_v2_end use them, never whether they exist.
	if err := c.initAccounting(); err != nil {
		return err
	}

	c.initialized = true
	c.log.Debug("rc controller initialized",
		"mode", cfg.Mode.String(), "gopMode", cfg.GopMode.String(),
		"igop", cfg.Igop, "gopTotalBits", c.gopTotalBits)
	return nil
}

// Close releases the Controller's windows. Go's garbage collector makes
// this unnecessary for memory safety, but Close mirrors the source's
// explicit rc_model_v2_deinit and gives the lifecycle a symmetric,
// testable end.
func (c *Controller) Close() error {
	c.iWin, c.viWin, c.pWin = nil, nil, nil
	c.preBitsWin, c.madiWin = nil, nil
	c.statRateWin, c.statBitsWin = nil, nil
	c.initialized = false
	return nil
}

// Start classifies the frame, allocates its bit budget, advances the
// ratio controllers, and resets the re-encode counter. It is the Go
// equivalent of rc_model_v2_start.
func (c *Controller) Start(task *EncRcTask) error {
	if !c.initialized {
		return ErrNotInitialized
	}

	frm := &task.Frm
	info := &task.Info

	if c.cfg.Mode == FixQP {
		c.startFixQP(frm, info)
		return nil
	}

	c.frameType = FrameInterP
	if frm.IsIntra {
		c.frameType = FrameIntra
	}
	if frm.RefMode == RefToPrevIntra {
		c.frameType = FrameInterVI
	}

	c.alloc(info)

	c.nextRatio = 0
	if c.lastFrameType == FrameIntra {
		c.calcNextIRatio()
	}

	if !c.firstFrame {
		if c.cfg.Mode == CBR {
			c.calcCBRRatio()
		} else {
			c.calcVBRRatio()
		}
	}

	if c.firstFrame {
		info.QualityTarget = -1
	}
	if frm.IsIntra {
		info.QualityMax = c.cfg.MaxIQuality
		info.QualityMin = c.cfg.MinIQuality
	} else {
		info.QualityMax = c.cfg.MaxQuality
		info.QualityMin = c.cfg.MinQuality
	}

	c.reencCnt = 0

	c.log.Debug("rc start",
		"seqIdx", frm.SeqIdx, "frameType", c.frameType.String(),
		"bitTarget", info.BitTarget, "nextRatio", c.nextRatio)
	return nil
}

// startFixQP implements the FixQP branch of rc_model_v2_start: it
// normalizes the fixed-QP bounds (defaulting any that are unset) and
// echoes the configured quality directly, without touching any feedback
// state.
func (c *Controller) startFixQP(frm *EncFrmStatus, info *EncRcTaskInfo) {
	if c.cfg.MaxQuality <= 0 {
		c.cfg.MaxQuality = c.cfg.InitQuality
	}
	if c.cfg.MinQuality <= 0 {
		c.cfg.MinQuality = c.cfg.InitQuality
	}
	if c.cfg.MaxIQuality <= 0 {
		c.cfg.MaxIQuality = c.cfg.MaxQuality
	}
	if c.cfg.MinIQuality <= 0 {
		c.cfg.MinIQuality = c.cfg.MinQuality
	}

	if frm.IsIntra {
		info.QualityMax = c.cfg.MaxIQuality
		info.QualityMin = c.cfg.MinIQuality
		info.QualityTarget = c.cfg.MinIQuality
	} else {
		info.QualityMax = c.cfg.MaxQuality
		info.QualityMin = c.cfg.MinQuality
		info.QualityTarget = c.cfg.MinQuality
	}
}

// End runs the re-encode gate and, if the frame is being committed rather
// than redone, updates the accounting state and advances the frame-loop
// bookkeeping. It is the Go equivalent of rc_model_v2_end.
func (c *Controller) End(task *EncRcTask) error {
	if !c.initialized {
		return ErrNotInitialized
	}

	frm := &task.Frm
	info := &task.Info

	if c.cfg.Mode != FixQP && task.Force.ForceFlag&ForceQPFlag == 0 {
		if c.checkReEnc(info) {
			if c.cfg.Mode == CBR {
				c.reencCalcCBRRatio(info)
			} else {
				c.reencCalcVBRRatio(info)
			}

			if c.nextRatio != 0 && c.reencCnt < c.cfg.MaxReencodeTimes {
				c.reencCnt++
				frm.Reencode = true
				c.log.Warning("rc re-encode triggered",
					"seqIdx", frm.SeqIdx, "reencCnt", c.reencCnt, "nextRatio", c.nextRatio)
			}
		}
	}

	if !frm.Reencode {
		c.updateAccounting(info.BitReal, info.Madi)
		c.lastInstBps = c.insBps
		c.firstFrame = false
		c.lastFrameType = c.frameType
	}

	c.preTargetBits = info.BitTarget
	c.preRealBits = info.BitReal

	return nil
}

// HalEnd is a lifecycle no-op, carried over from rc_model_v2_hal_end,
// which does nothing in the source either. It exists so Profile can bind
// a full six-callback table.
func (c *Controller) HalEnd(task *EncRcTask) error { return nil }
