// Command episim runs the epidemic simulation headless, logging a daily
// report and optionally recording run history to SQLite.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/mini-epidemic/internal/engine"
	"github.com/talgya/mini-epidemic/internal/entropy"
	"github.com/talgya/mini-epidemic/internal/persistence"
)

func main() {
	opts, err := loadOptions()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: opts.LogLevel,
	}))
	slog.SetDefault(logger)

	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	cfg := opts.Sim
	if cfg.Seed == 0 {
		cfg.Seed = entropy.CryptoSeed()
	}

	// ── Population ────────────────────────────────────────────────────
	sim, err := engine.NewSimulation(cfg, entropy.NewRand(cfg.Seed))
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	slog.Info("population ready",
		"agents", sim.Population(),
		"width", cfg.Width,
		"height", cfg.Height,
		"placement", cfg.Placement,
		"seed", cfg.Seed,
	)

	// ── Run history (optional) ────────────────────────────────────────
	var recorder *persistence.Recorder
	if opts.DBPath != "" {
		db, err := persistence.Open(opts.DBPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		recorder, err = persistence.NewRecorder(db, cfg, cfg.Seed)
		if err != nil {
			slog.Error("failed to start run", "error", err)
			os.Exit(1)
		}
		slog.Info("recording run history", "path", opts.DBPath, "run", recorder.RunID)
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine()
	eng.MaxTicks = opts.Ticks
	eng.Interval = opts.Interval

	eng.OnTick = func(tick uint64) {
		sim.Tick()
		reportDay(sim)
		if recorder != nil {
			recorder.Observe(sim)
		}
		if sim.Population() == 0 {
			slog.Warn("population extinct", "day", sim.Day())
			eng.Stop()
		}
	}
	eng.OnWeek = func(tick uint64) {
		if recorder == nil {
			return
		}
		// Flush weekly.
		if err := recorder.Flush(sim); err != nil {
			slog.Error("weekly flush failed", "error", err)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	start := time.Now()
	eng.Run()

	if recorder != nil {
		slog.Info("final flush...")
		if err := recorder.Flush(sim); err != nil {
			slog.Error("final flush failed", "error", err)
		}
	}

	stats := sim.Stats()
	fmt.Printf("\nSimulation has ended after %s days (%s): %s alive, %s healthy, %s ill.\n",
		humanize.Comma(int64(sim.Day())),
		time.Since(start).Round(time.Millisecond),
		humanize.Comma(int64(stats.Population)),
		humanize.Comma(int64(stats.Healthy)),
		humanize.Comma(int64(stats.Ill)),
	)
}

// reportDay logs the census of the most recent day.
func reportDay(sim *engine.Simulation) {
	c := sim.Stats()
	slog.Info("daily report",
		"day", sim.DayLabel(),
		"alive", humanize.Comma(int64(c.Population)),
		"infected", c.Infected,
		"ill", c.Ill,
		"convalescing", c.Convalescing,
		"healthy", c.Healthy,
		"births", c.Births,
		"deaths", c.Deaths,
		"infections", c.Infections,
		"avg_immunity", fmt.Sprintf("%.3f", c.AvgImmunity),
	)
}
