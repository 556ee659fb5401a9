package rc

import (
	"testing"

	"github.com/ausocean/utils/logging"
)

func testLogger() logging.Logger {
	return logging.New(logging.Debug, discardWriter{}, false)
}

func baseConfig() Config {
	return Config{
		Mode:             CBR,
		GopMode:          NormalP,
		Igop:             60,
		BpsTarget:        1000000,
		BpsMax:           1000000,
		Fps:              FpsCfg{InNum: 30, OutNum: 30, OutDenorm: 1},
		StatTimes:        3,
		MaxIBitProp:      10,
		Width:            1920,
		Height:           1080,
		MinQuality:       20,
		MaxQuality:       40,
		MinIQuality:      18,
		MaxIQuality:      38,
		MaxReencodeTimes: 1,
		Logger:           testLogger(),
	}
}

// TestInitNormalPSeeding checks the GOP budget and seeded P-window bits
// for NormalP mode against a hand-computed expectation (scenario 1's
// setup).
func TestInitNormalPSeeding(t *testing.T) {
	c := NewController()
	cfg := baseConfig()
	if err := c.Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if got, want := c.gopTotalBits, int64(2_000_000); got != want {
		t.Fatalf("gopTotalBits = %d, want %d", got, want)
	}

	// p_bit = gop_total_bits*16 / (i_scale=160 + p_scale=16*(igop-1=59))
	// = 32,000,000 / 1104 = 28985 (truncated).
	wantPBit := int64(28985)
	if got := c.pWin.Val(0); got != wantPBit {
		t.Fatalf("seeded p_bit = %d, want %d", got, wantPBit)
	}
	if got, want := c.pSumBits, 5*wantPBit; got != want {
		t.Fatalf("pSumBits = %d, want %d", got, want)
	}
}

// TestInitSmartPVINum exercises scenario 5: SmartP with igop=60, vgop=15
// yields vi_num=3 and the documented denominator.
func TestInitSmartPVINum(t *testing.T) {
	c := NewController()
	cfg := baseConfig()
	cfg.GopMode = SmartP
	cfg.Vgop = 15
	if err := c.Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}

	// denom = i_scale(320) + vi_scale(32)*vi_num(3) + p_scale(16)*(60-3) = 1328.
	wantDenom := int64(320 + 32*3 + 16*57)
	wantPBit := c.gopTotalBits * 16 / wantDenom
	if got := c.pWin.Val(0); got != wantPBit {
		t.Fatalf("seeded p_bit = %d, want %d", got, wantPBit)
	}
}

// TestInitRejectsBadVgop covers the mpp_assert(vgop > 1) guard for
// SmartP mode.
func TestInitRejectsBadVgop(t *testing.T) {
	c := NewController()
	cfg := baseConfig()
	cfg.GopMode = SmartP
	cfg.Vgop = 1
	if err := c.Init(cfg); err != ErrBadVgop {
		t.Fatalf("Init error = %v, want ErrBadVgop", err)
	}
}

// TestConfigNormalizeDefaults checks the InvalidConfig clamping rules.
func TestConfigNormalizeDefaults(t *testing.T) {
	c := NewController()
	cfg := baseConfig()
	cfg.StatTimes = 0
	cfg.MaxIBitProp = 0
	cfg.Igop = 0
	if err := c.Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if c.cfg.StatTimes != 3 {
		t.Fatalf("StatTimes = %d, want 3", c.cfg.StatTimes)
	}
	if c.cfg.MaxIBitProp != 10 {
		t.Fatalf("MaxIBitProp = %d, want 10", c.cfg.MaxIBitProp)
	}
	if c.cfg.Igop != 300 {
		t.Fatalf("Igop = %d, want 300", c.cfg.Igop)
	}
}

// TestUpdateAccountingWaterLevelInvariant is property P2: the leaky
// bucket stays within [0, watl_thrd] across a run of varied real bit
// counts, including large overshoots and zero-bit frames.
func TestUpdateAccountingWaterLevelInvariant(t *testing.T) {
	c := NewController()
	cfg := baseConfig()
	if err := c.Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}

	samples := []int64{0, 50000, 5_000_000, 28985, 1, 10_000_000, 28985}
	c.frameType = FrameInterP
	for _, s := range samples {
		c.updateAccounting(s, 10)
		if c.statWatl < 0 || c.statWatl > c.watlThrd {
			t.Fatalf("stat_watl = %d out of [0,%d] after real_bit=%d", c.statWatl, c.watlThrd, s)
		}
	}
}

// TestAllocClipsIScaleForCBRIntra exercises the NormalP/CBR intra clip
// path ([16,800]) in the allocator.
func TestAllocClipsIScaleForCBRIntra(t *testing.T) {
	c := NewController()
	cfg := baseConfig()
	if err := c.Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}
	// Force iSumBits/pSumBits so the raw i_scale would be far above 800.
	c.iSumBits = 1_000_000
	c.pSumBits = 1000
	c.frameType = FrameIntra

	// The clip applies to the scale used for this frame's share; c.iScale
	// keeps the raw value (40000 here) for the VBR ratio law's check.
	// bit_target = 2,000,000*800 / (800 + 16*59) = 917431.
	info := &EncRcTaskInfo{}
	c.alloc(info)
	if got, want := info.BitTarget, int64(917431); got != want {
		t.Fatalf("BitTarget = %d, want %d (i_scale clipped to 800)", got, want)
	}
}
