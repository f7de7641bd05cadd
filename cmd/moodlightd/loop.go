package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nlowe/moodlight/config"
	"github.com/nlowe/moodlight/discovery"
	"github.com/nlowe/moodlight/hass"
	"github.com/nlowe/moodlight/light"
	moodlog "github.com/nlowe/moodlight/log"
	"github.com/nlowe/moodlight/mqtt"
	"github.com/nlowe/moodlight/store"
)

// retainedLoadTimeout bounds how long startup waits for a retained snapshot when no state file is configured.
const retainedLoadTimeout = 5 * time.Second

// daemon owns the one live light.State and runs the event loop. All state access happens on the loop goroutine; MQTT
// handlers only enqueue raw payloads. The loop dispatches exactly one handler to completion per wake, so a transition
// ramp blocks rainbow ticks, further commands, and shutdown until it finishes.
type daemon struct {
	cfg config.Config

	w   mqtt.Writer
	sub mqtt.Subscriber

	engine  *light.Engine
	rainbow light.Rainbow

	file     *store.File // nil when MOODLIGHT_STATE_FILE is empty
	retained *store.Retained

	announcer *discovery.Announcer

	commands  chan []byte
	snapshots chan []byte
	status    chan []byte

	state light.State

	log *slog.Logger
}

func (d *daemon) run(ctx context.Context) error {
	var err error
	if d.file != nil {
		d.state, err = d.file.Load(ctx)
	} else {
		loadCtx, loadCancel := context.WithTimeout(ctx, retainedLoadTimeout)
		d.state, err = d.retained.Load(loadCtx)
		loadCancel()
	}
	if err != nil {
		return err
	}

	// Bring the fixture in line with the recovered state before accepting events.
	if err = d.engine.Apply(&d.state); err != nil {
		d.log.With(moodlog.Error(err)).Error("Applying recovered state failed")
	}

	if err = d.subscribe(ctx); err != nil {
		return err
	}

	if err = d.announcer.Announce(ctx, d.w); err != nil {
		d.log.With(moodlog.Error(err)).Error("Failed to publish discovery configs")
	}

	d.persist(ctx)

	ticker := time.NewTicker(d.cfg.StepDuration)
	defer ticker.Stop()

	d.log.Info("Entering event loop")

	for {
		select {
		case <-ctx.Done():
			return d.shutdown()
		case <-ticker.C:
			d.tick()
		case payload := <-d.commands:
			d.handleCommand(ctx, payload)
		case payload := <-d.snapshots:
			d.handleSnapshot(ctx, payload)
		case payload := <-d.status:
			d.handleStatus(ctx, payload)
		}
	}
}

func (d *daemon) subscribe(ctx context.Context) error {
	if err := d.sub.Subscribe(ctx, enqueue(d.commands, d.log), mqtt.Subscription{
		Topic:   d.cfg.CommandTopic(),
		Options: mqtt.ReadOptions{QoS: mqtt.QOSAtLeastOnce},
	}); err != nil {
		return err
	}

	// Watch the state topic for a full-state handoff published by another process. Our own retained snapshot was
	// already consulted at startup, so ignore retained copies and our own publishes here.
	if err := d.sub.Subscribe(ctx, enqueue(d.snapshots, d.log), mqtt.Subscription{
		Topic: d.cfg.StateTopic(),
		Options: mqtt.ReadOptions{
			QoS:            mqtt.QOSAtLeastOnce,
			NoLocal:        true,
			RetainHandling: mqtt.RetainHandlingIgnoreRetained,
		},
	}); err != nil {
		return err
	}

	// Home Assistant announces its own availability when it restarts; re-announce discovery when that happens.
	return d.sub.Subscribe(ctx, enqueue(d.status, d.log), mqtt.Subscription{
		Topic: discovery.HomeAssistantStatusTopic(d.cfg.DiscoveryPrefix),
	})
}

// tick advances the rainbow cycle by one step. Gating lives here, not in the stepper: a light that is off or static
// holds its hue.
func (d *daemon) tick() {
	if !d.state.Power.On() || d.state.Mode != light.ModeRainbow {
		return
	}

	d.rainbow.Step(&d.state)
	if err := d.engine.Apply(&d.state); err != nil {
		d.log.With(moodlog.Error(err)).Error("Applying rainbow step failed")
	}
}

func (d *daemon) handleCommand(ctx context.Context, payload []byte) {
	var msg light.ControlMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		d.log.With(moodlog.Error(err), slog.String("payload", string(payload))).Warn("Discarding malformed control message")
		return
	}

	d.state.Edit(msg)

	if err := d.engine.Apply(&d.state); err != nil {
		// The fixture may now be stale relative to the logical state; the next successful render catches it up.
		d.log.With(moodlog.Error(err)).Error("Applying new state failed")
		return
	}

	d.log.With(slog.Any("state", d.state)).Info("Control message processed")
	d.persist(ctx)
}

func (d *daemon) handleSnapshot(ctx context.Context, payload []byte) {
	var s light.State
	if err := json.Unmarshal(payload, &s); err != nil {
		d.log.With(moodlog.Error(err), slog.String("payload", string(payload))).Warn("Discarding malformed snapshot")
		return
	}

	// Replace wholesale: the publisher already resolved the merge.
	d.state = s

	d.log.With(slog.Any("state", d.state)).Info("Adopted externally published snapshot")

	if err := d.engine.Apply(&d.state); err != nil {
		d.log.With(moodlog.Error(err)).Error("Applying snapshot failed")
	}

	if err := d.sub.Unsubscribe(ctx, d.cfg.StateTopic()); err != nil {
		d.log.With(moodlog.Error(err)).Warn("Failed to unsubscribe from state topic")
	}
}

func (d *daemon) handleStatus(ctx context.Context, payload []byte) {
	if hass.Availability(payload) != hass.Available {
		return
	}

	d.log.Info("Home Assistant is back, re-announcing")

	if err := d.announcer.Announce(ctx, d.w); err != nil {
		d.log.With(moodlog.Error(err)).Error("Failed to publish discovery configs")
	}

	d.persist(ctx)
}

// persist writes the current state to every configured backend: the retained state message always, the state file when
// one is configured. Persistence failures are logged, never fatal.
func (d *daemon) persist(ctx context.Context) {
	if err := d.retained.Save(ctx, d.state); err != nil {
		d.log.With(moodlog.Error(err)).Error("Failed to publish retained state")
	}

	if d.file != nil {
		if err := d.file.Save(ctx, d.state); err != nil {
			d.log.With(moodlog.Error(err)).Error("Failed to save state file")
		}
	}
}

// shutdown publishes the final state so the next start (or another process) can pick up exactly where we left off. The
// loop context is already done, so persistence runs on a fresh short-lived context; the mqtt disconnect in run's caller
// drains the outgoing queue afterwards.
func (d *daemon) shutdown() error {
	d.log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	d.persist(ctx)
	return nil
}

// enqueue adapts a channel into a mqtt.Handler. Handlers must not block and the payload slice is not valid after the
// handler returns, so the payload is copied and dropped if the loop is too far behind.
func enqueue(ch chan []byte, log *slog.Logger) mqtt.HandlerFunc {
	return func(_ mqtt.Writer, topic string, payload []byte) {
		p := make([]byte, len(payload))
		copy(p, payload)

		select {
		case ch <- p:
		default:
			log.With(slog.String("topic", topic)).Warn("Event queue full, dropping message")
		}
	}
}
