/*
NAME
  plot.go

LICENSE
  Copyright (C) 2026 the mpp contributors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the mpp contributors.
*/

package main

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/kevin523/mpp/rc"
)

// tracePoint is one frame's worth of simulation output, kept for
// post-run summary and plotting.
type tracePoint struct {
	bitTarget int64
	bitReal   int64
	qp        rc.QP
}

// traceSummary reports how tightly a run's real bits tracked its target.
type traceSummary struct {
	meanBitReal        float64
	stdDevBitReal      float64
	maxAbsPctDeviation float64
}

// summarize computes mean, standard deviation, and peak deviation (in
// percent) of bitReal against bpsTarget/fps, using gonum/stat rather
// than hand-rolled accumulation.
func summarize(trace []tracePoint, bpsTarget int64) traceSummary {
	if len(trace) == 0 {
		return traceSummary{}
	}

	vals := make([]float64, len(trace))
	for i, p := range trace {
		vals[i] = float64(p.bitReal)
	}

	mean, std := stat.MeanStdDev(vals, nil)

	perFrameTarget := float64(bpsTarget) / 30
	var maxDev float64
	for _, v := range vals {
		dev := math.Abs(v-perFrameTarget) / perFrameTarget
		if dev > maxDev {
			maxDev = dev
		}
	}

	return traceSummary{meanBitReal: mean, stdDevBitReal: std, maxAbsPctDeviation: maxDev * 100}
}

// plotTrace renders bitTarget vs bitReal per frame over the run to a PNG
// at path. The selected QP is not plotted.
func plotTrace(path, title string, trace []tracePoint) error {
	bitsPlot := plot.New()
	bitsPlot.Title.Text = title + ": bits per frame"
	bitsPlot.X.Label.Text = "frame"
	bitsPlot.Y.Label.Text = "bits"

	target := make(plotter.XYs, len(trace))
	real := make(plotter.XYs, len(trace))
	for i, p := range trace {
		target[i] = plotter.XY{X: float64(i), Y: float64(p.bitTarget)}
		real[i] = plotter.XY{X: float64(i), Y: float64(p.bitReal)}
	}

	if err := plotutil.AddLines(bitsPlot, "target", target, "real", real); err != nil {
		return err
	}

	return bitsPlot.Save(8*vg.Inch, 4*vg.Inch, path)
}
