/*
NAME
  types.go

LICENSE
  Copyright (C) 2026 the mpp contributors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the mpp contributors.
*/

// Package rc implements the frame-level rate-control model for a
// block-based (AVC/HEVC) encoder front-end: per-frame bit budgeting,
// start-QP selection, and the re-encode feedback loop that keeps both
// stable under CBR and VBR constraints.
//
// The package is a port of Rockchip MPP's rc_model_v2 core. It owns no
// bitstream, hardware, or I/O state: callers supply configuration at
// Init, deliver per-frame encode results through EncRcTask, and read back
// the computed bit targets, QPs, and re-encode signal.
package rc

// Mode selects the rate-control strategy.
type Mode int

const (
	FixQP Mode = iota // Fixed QP: no bit-budget feedback.
	CBR               // Constant bitrate.
	VBR               // Variable bitrate.
)

func (m Mode) String() string {
	switch m {
	case FixQP:
		return "FixQP"
	case CBR:
		return "CBR"
	case VBR:
		return "VBR"
	default:
		return "unknown"
	}
}

// GopMode selects how a GOP's budget is split across frame types.
type GopMode int

const (
	NormalP GopMode = iota // I and P frames only.
	SmartP                 // I, P and periodic virtual-intra (VI) frames.
)

func (g GopMode) String() string {
	switch g {
	case NormalP:
		return "NormalP"
	case SmartP:
		return "SmartP"
	default:
		return "unknown"
	}
}

// FrameType classifies a frame for bit accounting and QP purposes.
type FrameType int

const (
	FrameIntra   FrameType = iota // Self-contained.
	FrameInterP                   // Forward-predicted.
	FrameInterVI                  // Predicted only from the previous intra frame.
)

func (f FrameType) String() string {
	switch f {
	case FrameIntra:
		return "Intra"
	case FrameInterP:
		return "InterP"
	case FrameInterVI:
		return "InterVI"
	default:
		return "unknown"
	}
}

// RefMode describes what a non-intra frame references.
type RefMode int

const (
	RefNormal      RefMode = iota // References the immediately preceding frame.
	RefToPrevIntra                // References the previous intra frame (marks a VI frame in SmartP mode).
)

// ForceFlag carries out-of-band overrides for a single frame.
type ForceFlag uint32

const (
	// ForceQPFlag forces HalStart to echo ForceQP instead of computing one.
	ForceQPFlag ForceFlag = 1 << iota
)

// QP is a quantization parameter in its native integer units.
type QP int32

// ScaledQP is a QP in the internal Q6 fixed-point representation (QP<<6),
// used by the ratio controllers so that feedback deltas can express
// sub-integer adjustments. See ToScaled and QP.
type ScaledQP int32

// ToScaled promotes an integer QP to its scaled representation.
func ToScaled(q QP) ScaledQP { return ScaledQP(q) << 6 }

// QP truncates a scaled QP back to an integer QP.
func (s ScaledQP) QP() QP { return QP(s >> 6) }

// Clip returns s clamped to [lo, hi].
func (s ScaledQP) Clip(lo, hi ScaledQP) ScaledQP {
	switch {
	case s < lo:
		return lo
	case s > hi:
		return hi
	default:
		return s
	}
}

// Clip returns q clamped to [lo, hi].
func (q QP) Clip(lo, hi QP) QP {
	switch {
	case q < lo:
		return lo
	case q > hi:
		return hi
	default:
		return q
	}
}

// EncFrmStatus carries per-frame classification and the re-encode signal
// back to the caller.
type EncFrmStatus struct {
	IsIntra  bool
	RefMode  RefMode
	SeqIdx   uint32
	Reencode bool
}

// EncRcForceCfg carries a per-frame forced-QP override.
type EncRcForceCfg struct {
	ForceFlag ForceFlag
	ForceQP   QP
}

// EncRcTaskInfo carries the bit/quality bounds computed by the controller,
// and, after encode, the actual results the caller feeds back in.
type EncRcTaskInfo struct {
	BitMin    int64
	BitTarget int64
	BitMax    int64

	QualityMin    QP
	QualityTarget QP
	QualityMax    QP

	// BitReal and Madi are filled in by the caller after encoding the frame.
	BitReal int64
	Madi    uint32
}

// EncRcTask is the unit of per-frame state passed through the four
// lifecycle callbacks.
type EncRcTask struct {
	Frm   EncFrmStatus
	Info  EncRcTaskInfo
	Force EncRcForceCfg
}
