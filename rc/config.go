/*
NAME
  config.go

LICENSE
  Copyright (C) 2026 the mpp contributors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the mpp contributors.
*/

package rc

import "github.com/ausocean/utils/logging"

// FpsCfg pairs the input frame rate with a denormalized output rate, as
// used by the GOP-bits-per-second computation.
type FpsCfg struct {
	InNum      uint32 // Input frames per second.
	OutNum     uint32 // Output frames per second numerator.
	OutDenorm  uint32 // Output frames per second denormalization factor.
}

// Config holds the rate-control parameters set once at Init and left
// immutable for the life of a Controller.
type Config struct {
	Mode    Mode
	GopMode GopMode

	Igop uint32 // GOP length; 0 means "infinite", normalized to 300.
	Vgop uint32 // Virtual-GOP length; required > 1 in SmartP mode.

	BpsTarget uint32
	BpsMax    uint32
	Fps       FpsCfg

	// StatTimes is the width, in seconds, of the statistics window used
	// for instantaneous bitrate estimation. 0 is normalized to 3.
	StatTimes uint32

	// MaxIBitProp is the maximum percentage of a GOP's budget an intra
	// frame may claim. 0 is normalized to 10 and values above 100 are
	// clipped to 100.
	MaxIBitProp uint32

	Width, Height uint32

	MinQuality, MaxQuality   QP
	MinIQuality, MaxIQuality QP

	IQualityDelta  QP
	VIQualityDelta QP

	MaxReencodeTimes uint32

	// InitQuality seeds FixQP mode; 0 or negative is normalized to 26.
	InitQuality QP

	// Logger receives structured trace and lifecycle logs. A nil Logger is
	// replaced with a logging.Logger that discards everything.
	Logger logging.Logger
}

// normalize applies the clamping rules from the InvalidConfig failure
// kind: malformed configuration is corrected in place rather than
// rejected, and the correction is logged at Info level.
func (c *Config) normalize() {
	if c.Logger == nil {
		c.Logger = logging.New(logging.Info, discardWriter{}, false)
	}

	if c.StatTimes == 0 {
		c.Logger.Info("StatTimes bad or unset, defaulting", "StatTimes", 3)
		c.StatTimes = 3
	}

	if c.MaxIBitProp == 0 {
		c.Logger.Info("MaxIBitProp bad or unset, defaulting", "MaxIBitProp", 10)
		c.MaxIBitProp = 10
	} else if c.MaxIBitProp > 100 {
		c.Logger.Info("MaxIBitProp out of range, clipping", "MaxIBitProp", 100)
		c.MaxIBitProp = 100
	}

	if c.Igop == 0 {
		c.Logger.Info("Igop unset (infinite gop), defaulting for bit calc", "Igop", 300)
		c.Igop = 300
	}

	if c.Mode == FixQP && c.InitQuality <= 0 {
		c.Logger.Info("InitQuality bad or unset, defaulting", "InitQuality", 26)
		c.InitQuality = 26
	}
}

// discardWriter implements io.Writer by discarding everything; it backs
// the default Logger when the caller supplies none.
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
