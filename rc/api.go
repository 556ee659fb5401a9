/*
NAME
  api.go

LICENSE
  Copyright (C) 2026 the mpp contributors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the mpp contributors.
*/

package rc

// CodingType names the codec a Profile is bound for.
type CodingType int

const (
	CodingAVC CodingType = iota
	CodingHEVC
	CodingMJPEG
)

func (c CodingType) String() string {
	switch c {
	case CodingAVC:
		return "AVC"
	case CodingHEVC:
		return "HEVC"
	case CodingMJPEG:
		return "MJPEG"
	default:
		return "unknown"
	}
}

// Profile is a tagged descriptor binding a codec to the controller's
// lifecycle callbacks, mirroring the source's RcImplApi tables
// (default_h264e, default_h265e, default_jpege). The controller itself is
// codec-agnostic; only the binding differs.
//
// MJPEG's callbacks are all nil: the source's default_jpege table binds
// no rate-control behavior for MJPEG, bypassing the model entirely. A
// caller iterating a Profile's callbacks must check for nil.
type Profile struct {
	Name   string
	Coding CodingType

	Init     func(c *Controller, cfg Config) error
	Deinit   func(c *Controller) error
	Start    func(c *Controller, task *EncRcTask) error
	End      func(c *Controller, task *EncRcTask) error
	HalStart func(c *Controller, task *EncRcTask) error
	HalEnd   func(c *Controller, task *EncRcTask) error
}

// Profiles is the published API table: one entry per bound codec.
var Profiles = map[CodingType]Profile{
	CodingAVC: {
		Name:     "default",
		Coding:   CodingAVC,
		Init:     (*Controller).Init,
		Deinit:   (*Controller).Close,
		Start:    (*Controller).Start,
		End:      (*Controller).End,
		HalStart: (*Controller).HalStart,
		HalEnd:   (*Controller).HalEnd,
	},
	CodingHEVC: {
		Name:     "default",
		Coding:   CodingHEVC,
		Init:     (*Controller).Init,
		Deinit:   (*Controller).Close,
		Start:    (*Controller).Start,
		End:      (*Controller).End,
		HalStart: (*Controller).HalStart,
		HalEnd:   (*Controller).HalEnd,
	},
	CodingMJPEG: {
		Name:   "default",
		Coding: CodingMJPEG,
	},
}
