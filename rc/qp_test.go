package rc

import "testing"

// TestCalcFirstIStartQP is scenario 2: a 1920x1080 stream's first intra
// frame with bit_target=500000 lands on mbNum bucket cnt=7, qscale index
// 27, and start QP 33.
func TestCalcFirstIStartQP(t *testing.T) {
	mbW := int64(1920+15) / 16
	mbH := int64(1080+15) / 16
	totalMB := uint32(mbW * mbH)
	if totalMB != 8160 {
		t.Fatalf("totalMB = %d, want 8160", totalMB)
	}

	got := calcFirstIStartQP(500000, totalMB)
	if got != 33 {
		t.Fatalf("calcFirstIStartQP = %d, want 33", got)
	}
}

// TestHalStartForcedQP checks that a per-frame forced QP override bypasses
// every other computation and is echoed directly into all three quality
// fields.
func TestHalStartForcedQP(t *testing.T) {
	c := NewController()
	cfg := baseConfig()
	if err := c.Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}

	task := &EncRcTask{
		Frm:   EncFrmStatus{IsIntra: true},
		Force: EncRcForceCfg{ForceFlag: ForceQPFlag, ForceQP: 30},
	}
	if err := c.HalStart(task); err != nil {
		t.Fatalf("HalStart: %v", err)
	}
	if task.Info.QualityTarget != 30 || task.Info.QualityMax != 30 || task.Info.QualityMin != 30 {
		t.Fatalf("forced QP not echoed: %+v", task.Info)
	}
}

// TestHalStartFixQPNoOp checks that HalStart leaves Info untouched in
// FixQP mode, since Start already set the quality target directly.
func TestHalStartFixQPNoOp(t *testing.T) {
	c := NewController()
	cfg := baseConfig()
	cfg.Mode = FixQP
	cfg.InitQuality = 26
	if err := c.Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}

	task := &EncRcTask{Frm: EncFrmStatus{IsIntra: true}}
	if err := c.Start(task); err != nil {
		t.Fatalf("Start: %v", err)
	}
	wantTarget := task.Info.QualityTarget
	if err := c.HalStart(task); err != nil {
		t.Fatalf("HalStart: %v", err)
	}
	if task.Info.QualityTarget != wantTarget {
		t.Fatalf("HalStart mutated FixQP target: got %d, want %d", task.Info.QualityTarget, wantTarget)
	}
}

// TestHalStartClipsToQualityBounds is property P1: HalStart's output QP
// never leaves [QualityMin, QualityMax], even when the accumulated ratio
// would otherwise push it out.
func TestHalStartClipsToQualityBounds(t *testing.T) {
	c := NewController()
	cfg := baseConfig()
	if err := c.Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}

	c.firstFrame = false
	c.curScaleQP = ToScaled(30)
	c.nextRatio = 100000 // absurdly large positive push.

	task := &EncRcTask{
		Frm: EncFrmStatus{IsIntra: false},
		Info: EncRcTaskInfo{
			QualityMin: cfg.MinQuality,
			QualityMax: cfg.MaxQuality,
		},
	}
	if err := c.HalStart(task); err != nil {
		t.Fatalf("HalStart: %v", err)
	}
	if task.Info.QualityTarget > cfg.MaxQuality || task.Info.QualityTarget < cfg.MinQuality {
		t.Fatalf("QualityTarget = %d, want within [%d,%d]", task.Info.QualityTarget, cfg.MinQuality, cfg.MaxQuality)
	}

	c.nextRatio = -100000 // absurdly large negative pull.
	task.Info.QualityTarget = 0
	if err := c.HalStart(task); err != nil {
		t.Fatalf("HalStart: %v", err)
	}
	if task.Info.QualityTarget > cfg.MaxQuality || task.Info.QualityTarget < cfg.MinQuality {
		t.Fatalf("QualityTarget = %d, want within [%d,%d]", task.Info.QualityTarget, cfg.MinQuality, cfg.MaxQuality)
	}
}
