package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nlowe/moodlight/blaster"
	"github.com/nlowe/moodlight/config"
	"github.com/nlowe/moodlight/discovery"
	"github.com/nlowe/moodlight/light"
	moodlog "github.com/nlowe/moodlight/log"
	"github.com/nlowe/moodlight/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logging isn't configured yet, fall back to a plain line on stderr.
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	if err = moodlog.Setup(cfg.LogLevel); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log := moodlog.ForComponent("moodlightd")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err = run(ctx, cfg); err != nil {
		log.With(moodlog.Error(err)).Error("moodlightd exited with an error")
		os.Exit(1)
	}

	log.Info("Goodbye!")
}

func run(ctx context.Context, cfg config.Config) error {
	log := moodlog.ForComponent("moodlightd")
	log.Info("Starting Up")

	w, sub, disconnect, err := configureMQTT(ctx, cfg)
	if err != nil {
		return err
	}

	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		log.Info("Disconnecting from mqtt")
		if err := disconnect(shutdownCtx); err != nil {
			log.With(moodlog.Error(err)).Error("Failed to disconnect from mqtt")
		}
	}()

	renderer := blaster.New(cfg.Blaster, blaster.Pins{R: cfg.PinR, G: cfg.PinG, B: cfg.PinB})

	d := &daemon{
		cfg: cfg,

		w:   w,
		sub: sub,

		engine: light.NewEngine(renderer, cfg.StepDuration, cfg.TransitionDuration),
		rainbow: light.Rainbow{
			StepDuration: cfg.StepDuration,
			MaxCycle:     cfg.RainbowMaxCycle,
			MinCycle:     cfg.RainbowMinCycle,
		},

		retained: store.NewRetained(w, sub, cfg.StateTopic()),

		announcer: discovery.NewAnnouncer(
			cfg.DiscoveryPrefix,
			cfg.DeviceName,
			cfg.UniqueID(),
			cfg.CommandTopic(),
			cfg.StateTopic(),
		),

		commands:  make(chan []byte, 8),
		snapshots: make(chan []byte, 1),
		status:    make(chan []byte, 1),

		log: moodlog.ForComponent("loop"),
	}

	if cfg.StateFile != "" {
		d.file = store.NewFile(cfg.StateFile)
	}

	return d.run(ctx)
}
