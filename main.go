// vrtask runs a full simulated session of the motion-discrimination task:
// a scripted participant calibrates, trains against the adaptive staircase,
// and completes the main phase, with every trial persisted and a session
// report written at the end. Point the engine at real device adapters to
// run it against hardware.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"vrtask/adapters/badgerstore"
	"vrtask/adapters/excel"
	"vrtask/adapters/rng"
	"vrtask/adapters/sim"
	"vrtask/app"
	"vrtask/internal"
	"vrtask/internal/config"
)

// tickRate is the simulated display refresh.
const tickRate = 90

// maxTicks caps a runaway session (about two hours of simulated time).
const maxTicks = 2 * 60 * 60 * tickRate

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "vrtask: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := internal.DefaultLogger

	store, err := badgerstore.Open(badgerstore.Config{
		Path:       cfg.Store.Path,
		InMemory:   cfg.Store.InMemory,
		SyncWrites: !cfg.Store.InMemory,
		QueueSize:  256,
	}, log)
	if err != nil {
		return err
	}
	defer store.Close()

	participant := sim.NewParticipant(cfg.Session.Seed+1, 0.8)
	clock := sim.NewClock(time.Now())

	engine, err := app.NewEngine(app.Deps{
		RNG:    rng.New(cfg.Session.Seed),
		Gaze:   participant,
		Input:  participant,
		Clock:  clock,
		Render: participant,
		Store:  store,
		Log:    log,
	})
	if err != nil {
		return err
	}
	if err := engine.GenerateExperiment(cfg); err != nil {
		return err
	}
	if err := engine.BeginExperiment(); err != nil {
		return err
	}

	dt := time.Second / tickRate
	ticks := 0
	for engine.GetExperimentStatus().Status == app.StatusRunning {
		engine.Tick(dt)
		participant.Advance(dt)
		clock.Advance(dt)
		ticks++
		if ticks >= maxTicks {
			log.Warn("tick budget exhausted; forcing session end")
			engine.ForceEnd()
		}
	}

	report := engine.GetExperimentStatus()
	log.Info("session %s finished as %s after %s simulated",
		report.Session, report.Status, (time.Duration(ticks) * dt).Round(time.Second))

	if cfg.Report.Enabled {
		quality := engine.Calibration().Quality()
		if err := excel.WriteReport(cfg.Report.OutputPath, engine.GetSession(), quality); err != nil {
			return err
		}
		log.Info("report written to %s", cfg.Report.OutputPath)
	}
	return nil
}
