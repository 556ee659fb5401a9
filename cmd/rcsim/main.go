/*
NAME
  main.go

DESCRIPTION
  rcsim drives the rc package's Controller over a synthetic frame
  sequence and reports how closely the controller's instantaneous
  bitrate tracks its target.

LICENSE
  Copyright (C) 2026 the mpp contributors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the mpp contributors.
*/

// Package main implements rcsim, a simulation driver for package rc.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"

	"github.com/kevin523/mpp/rc"
)

// Logging configuration, in the teacher's style of a small const block
// per concern rather than scattered literals.
const (
	logPath      = "/var/log/rcsim/rcsim.log"
	logMaxSize   = 50 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Debug
	logSuppress  = true
)

func main() {
	scenarioName := flag.String("scenario", "cbr", "built-in scenario: cbr, vbr, or smartp")
	scenarioFile := flag.String("config", "", "path to a JSON scenario file; overrides -scenario")
	watch := flag.Bool("watch", false, "hot-reload -config on change and re-run the simulation")
	plotPath := flag.String("plot", "", "write a trace plot (PNG) to this path; empty disables plotting")
	daemonMode := flag.Bool("daemon", false, "notify systemd readiness and watchdog (for a long-lived -watch run)")
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)

	s, err := loadScenario(*scenarioName, *scenarioFile)
	if err != nil {
		log.Fatal("could not load scenario", "error", err.Error())
	}

	if *daemonMode {
		if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
			log.Warning("systemd readiness notification failed", "error", err.Error())
		}
		go watchdogLoop(log)
	}

	if err := runOnce(s, log, *plotPath); err != nil {
		log.Fatal("simulation failed", "error", err.Error())
	}

	if !*watch || *scenarioFile == "" {
		return
	}
	if err := watchAndRerun(*scenarioFile, log, *plotPath); err != nil {
		log.Fatal("watch loop failed", "error", err.Error())
	}
}

// loadScenario resolves the scenario to run: a named built-in, or a JSON
// file on disk that overrides it.
func loadScenario(name, path string) (scenario, error) {
	if path == "" {
		s, ok := builtinScenarios[name]
		if !ok {
			return scenario{}, errors.Errorf("unknown built-in scenario %q", name)
		}
		return s, nil
	}
	return readScenarioFile(path)
}

func readScenarioFile(path string) (scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scenario{}, errors.Wrapf(err, "reading scenario file %s", path)
	}
	var s scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return scenario{}, errors.Wrapf(err, "parsing scenario file %s", path)
	}
	return s, nil
}

// builtinScenarios are the three named presets exercising CBR, VBR, and
// SmartP respectively.
var builtinScenarios = map[string]scenario{
	"cbr": {
		Name: "cbr", Frames: 300, Igop: 60, BpsTarget: 1_000_000,
		Noise: 0.05, IntraBoost: 6,
	},
	"vbr": {
		Name: "vbr", Frames: 300, Igop: 60, BpsTarget: 1_000_000,
		Noise: 0.3, IntraBoost: 10,
	},
	"smartp": {
		Name: "smartp", Frames: 300, Igop: 60, Vgop: 15, BpsTarget: 1_000_000,
		Noise: 0.1, IntraBoost: 6,
	},
}

// runOnce drives the controller across one generated frame sequence and
// logs a convergence summary.
func runOnce(s scenario, log logging.Logger, plotPath string) error {
	log.Info("running scenario", "name", s.Name, "frames", s.Frames, "igop", s.Igop)

	cfg := rc.Config{
		Mode:             modeFor(s),
		GopMode:          rc.NormalP,
		Igop:             uint32(s.Igop),
		BpsTarget:        uint32(s.BpsTarget),
		BpsMax:           uint32(s.BpsTarget),
		Fps:              rc.FpsCfg{InNum: 30, OutNum: 30, OutDenorm: 1},
		StatTimes:        3,
		MaxIBitProp:      10,
		Width:            1920,
		Height:           1080,
		MinQuality:       20,
		MaxQuality:       51,
		MinIQuality:      20,
		MaxIQuality:      51,
		IQualityDelta:    2,
		VIQualityDelta:   1,
		MaxReencodeTimes: 2,
		Logger:           log,
	}
	if s.Name == "smartp" {
		cfg.GopMode = rc.SmartP
		cfg.Vgop = 15
	}

	c := rc.NewController()
	if err := c.Init(cfg); err != nil {
		return errors.Wrap(err, "init controller")
	}
	defer c.Close()

	synthetic := generate(s)
	trace := make([]tracePoint, 0, len(synthetic))

	var seqIdx uint32
	for _, f := range synthetic {
		task := &rc.EncRcTask{
			Frm: rc.EncFrmStatus{IsIntra: f.isIntra, RefMode: f.refMode, SeqIdx: seqIdx},
		}
		seqIdx++

		if err := c.Start(task); err != nil {
			return errors.Wrap(err, "start")
		}
		if err := c.HalStart(task); err != nil {
			return errors.Wrap(err, "hal_start")
		}

		task.Info.BitReal = f.bitReal
		task.Info.Madi = f.madi

		if err := c.End(task); err != nil {
			return errors.Wrap(err, "end")
		}
		for task.Frm.Reencode {
			task.Frm.Reencode = false
			if err := c.HalStart(task); err != nil {
				return errors.Wrap(err, "hal_start (re-encode)")
			}
			if err := c.End(task); err != nil {
				return errors.Wrap(err, "end (re-encode)")
			}
		}
		if err := c.HalEnd(task); err != nil {
			return errors.Wrap(err, "hal_end")
		}

		trace = append(trace, tracePoint{
			bitTarget: task.Info.BitTarget,
			bitReal:   task.Info.BitReal,
			qp:        task.Info.QualityTarget,
		})
	}

	summary := summarize(trace, s.BpsTarget)
	log.Info("scenario complete",
		"name", s.Name, "meanBitReal", summary.meanBitReal,
		"maxAbsPctDeviation", summary.maxAbsPctDeviation)

	if plotPath != "" {
		if err := plotTrace(plotPath, s.Name, trace); err != nil {
			return errors.Wrap(err, "plot trace")
		}
		log.Info("wrote trace plot", "path", plotPath)
	}
	return nil
}

func modeFor(s scenario) rc.Mode {
	if s.Name == "vbr" {
		return rc.VBR
	}
	return rc.CBR
}

// watchAndRerun reloads the scenario file on every write and re-runs the
// simulation, for iterating on a scenario definition without restarting
// the process.
func watchAndRerun(path string, log logging.Logger, plotPath string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "new fsnotify watcher")
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return errors.Wrapf(err, "watching %s", path)
	}
	log.Info("watching scenario file for changes", "path", path)

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s, err := readScenarioFile(path)
			if err != nil {
				log.Error("reloading scenario file failed", "error", err.Error())
				continue
			}
			if err := runOnce(s, log, plotPath); err != nil {
				log.Error("simulation run failed", "error", err.Error())
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error("fsnotify watcher error", "error", err.Error())
		}
	}
}

// watchdogLoop pings systemd's watchdog at half its timeout so a hung
// simulation gets killed and restarted by the service manager rather
// than wedging silently.
func watchdogLoop(log logging.Logger) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}
	t := time.NewTicker(interval / 2)
	defer t.Stop()
	for range t.C {
		if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
			log.Warning("watchdog notification failed", "error", err.Error())
		}
	}
}

func init() {
	// Guard against a malformed built-in scenario table at binary startup,
	// since it backs every -scenario flag value.
	for name, s := range builtinScenarios {
		if s.Frames <= 0 || s.BpsTarget <= 0 {
			panic(fmt.Sprintf("rcsim: built-in scenario %q is malformed", name))
		}
	}
}
