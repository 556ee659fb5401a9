package rc

import "testing"

// TestCheckReEncRespectsMaxReencodeTimes is scenario 3's gate: once the
// re-encode budget for a frame is exhausted, checkReEnc refuses
// regardless of how badly the frame overshot.
func TestCheckReEncRespectsMaxReencodeTimes(t *testing.T) {
	c := &Controller{cfg: Config{MaxReencodeTimes: 1, StatTimes: 3, Mode: CBR, BpsTarget: 1000000}, log: testLogger()}
	c.reencCnt = 1
	c.frameType = FrameInterP

	win, err := NewWindow(90)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	win.Reset(33333)
	c.statBitsWin = win

	info := &EncRcTaskInfo{BitTarget: 33333, BitReal: 10_000_000}
	if c.checkReEnc(info) {
		t.Fatalf("checkReEnc = true, want false once reencCnt >= MaxReencodeTimes")
	}
}

// TestCheckReEncBelowThresholdIsFalse checks the bit_real <= bit_thr
// short-circuit: an intra frame under 1.5x its target never triggers.
func TestCheckReEncBelowThresholdIsFalse(t *testing.T) {
	c := &Controller{cfg: Config{MaxReencodeTimes: 2, StatTimes: 3, Mode: CBR, BpsTarget: 1000000}, log: testLogger()}
	c.frameType = FrameIntra

	info := &EncRcTaskInfo{BitTarget: 100000, BitReal: 140000} // < 1.5x target.
	if c.checkReEnc(info) {
		t.Fatalf("checkReEnc = true, want false (under 1.5x bit threshold)")
	}
}

// TestCheckReEncCBREqualInsBpsIsFalse is scenario 6: a CBR intra frame at
// 2x its bit target (over the 1.5x floor) still does not trigger a
// re-encode when the substituted instantaneous bps estimate exactly
// matches the prior one, because target_bps/20 < 0 never holds.
func TestCheckReEncCBREqualInsBpsIsFalse(t *testing.T) {
	c := &Controller{cfg: Config{MaxReencodeTimes: 2, StatTimes: 3, Mode: CBR, BpsTarget: 1000000}, log: testLogger()}
	c.frameType = FrameIntra

	// Seed the window so substituting bit_real for the newest sample
	// leaves the stat sum, and so ins_bps, unchanged.
	target := int64(100000)
	win, err := NewWindow(3)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	win.Reset(2 * target)
	c.statBitsWin = win

	info := &EncRcTaskInfo{BitTarget: target, BitReal: 2 * target}
	if c.checkReEnc(info) {
		t.Fatalf("checkReEnc = true, want false (ins_bps == last_ins_bps)")
	}
}

// TestCheckReEncVBRTriggersOnSustainedOvershoot checks the VBR branch:
// an instantaneous bps comfortably above 7/8 of the cap, climbing fast
// enough, does trigger.
func TestCheckReEncVBRTriggersOnSustainedOvershoot(t *testing.T) {
	c := &Controller{cfg: Config{MaxReencodeTimes: 2, StatTimes: 3, Mode: VBR, BpsMax: 1000000}, log: testLogger()}
	c.frameType = FrameInterP

	win, err := NewWindow(90)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	win.Reset(20000) // last_ins_bps = 90*20000/3 = 600000.
	c.statBitsWin = win

	// bit_real drives ins_bps well past 7/8 of bps_max (875000) and the
	// jump past last_ins_bps well past bps_max/20 (50000).
	info := &EncRcTaskInfo{BitTarget: 20000, BitReal: 60_000_000}
	if !c.checkReEnc(info) {
		t.Fatalf("checkReEnc = false, want true (sustained VBR overshoot)")
	}
}

// TestCheckSuperFrameDisabledByDefault checks that the super-frame
// threshold, left at its initAccounting sentinel, never trips.
func TestCheckSuperFrameDisabledByDefault(t *testing.T) {
	c := NewController()
	cfg := baseConfig()
	if err := c.Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}
	c.frameType = FrameIntra

	if c.CheckSuperFrame(&EncRcTaskInfo{BitReal: 1 << 40}) {
		t.Fatalf("CheckSuperFrame = true, want false (disabled sentinel)")
	}
}
