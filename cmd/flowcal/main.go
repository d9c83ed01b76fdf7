package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"flowcal/internal/config"
	appLog "flowcal/internal/log"
	"flowcal/internal/model"
	"flowcal/internal/series"
	"flowcal/internal/store"
	"flowcal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
}

func main() {
	// .env is optional; flags and the YAML config are the real sources.
	_ = godotenv.Load()

	appLog.Info("flowcal starting", "version", "0.1.0-dev")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	loc, err := conf.Location()
	if err != nil {
		appLog.Error("invalid timezone in config, using UTC", err, "timezone", conf.Timezone)
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", loc.String(),
		"sweep", conf.SweepCron,
		"auto_review_tags", conf.AutoReviewTags,
	)

	engine := &series.Engine{Location: loc}
	events := &store.Memory{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	// Periodic elapsed-event sweep, the collection-maintenance analogue of
	// the refresh loop in similar daemons.
	sweeper := series.Sweeper{AutoReviewTags: conf.AutoReviewTags}
	sched := cron.New()
	_, err = sched.AddFunc(conf.SweepCron, func() {
		runSweep(events, sweeper)
	})
	if err != nil {
		appLog.Error("invalid sweep cron spec", err, "spec", conf.SweepCron)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	if err := web.NewServer(conf, engine, events).Start(ctx); err != nil {
		appLog.Error("HTTP server failed", err)
		os.Exit(1)
	}

	// Give the cron scheduler a moment to finish an in-flight sweep.
	time.Sleep(100 * time.Millisecond)
	appLog.Info("flowcal exiting")
}

func runSweep(events *store.Memory, sweeper series.Sweeper) {
	before := events.Len()
	_ = events.Update(func(current []model.Event) ([]model.Event, error) {
		return sweeper.MarkElapsed(current, time.Now()), nil
	})
	appLog.Debug("sweep completed", "events", before)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/flowcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")

	flag.Parse()

	return cfg
}
