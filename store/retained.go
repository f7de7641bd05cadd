package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nlowe/moodlight/light"
	"github.com/nlowe/moodlight/log"
	"github.com/nlowe/moodlight/mqtt"
)

// Retained persists state as an MQTT retained message, so the latest snapshot survives a daemon restart and is visible
// to other subscribers on the state topic.
type Retained struct {
	w     mqtt.Writer
	s     mqtt.Subscriber
	topic string

	log *slog.Logger
}

var _ Store = &Retained{}

// NewRetained constructs a Retained store that publishes to (and recovers from) the provided state topic.
func NewRetained(w mqtt.Writer, s mqtt.Subscriber, topic string) *Retained {
	return &Retained{
		w:     w,
		s:     s,
		topic: topic,

		log: log.ForComponent("store.retained").With(slog.String("topic", topic)),
	}
}

// Load subscribes to the state topic and adopts the first retained message as the authoritative snapshot, then
// unsubscribes. The provided context bounds the wait: if it expires before any retained message arrives (the broker
// holds none), Load yields light.DefaultState without error. A malformed retained payload is logged and likewise
// yields the default state.
func (r *Retained) Load(ctx context.Context) (light.State, error) {
	snapshots := make(chan light.State, 1)

	handler := mqtt.HandlerFunc(func(_ mqtt.Writer, _ string, payload []byte) {
		var s light.State
		if err := json.Unmarshal(payload, &s); err != nil {
			r.log.With(log.Error(err)).Warn("Retained snapshot failed to parse, ignoring")
			return
		}

		select {
		case snapshots <- s:
		default:
		}
	})

	sub := mqtt.Subscription{
		Topic:   r.topic,
		Options: mqtt.ReadOptions{QoS: mqtt.QOSAtLeastOnce},
	}

	if err := r.s.Subscribe(ctx, handler, sub); err != nil {
		return light.DefaultState(), fmt.Errorf("store: subscribe to %s: %w", r.topic, err)
	}

	defer func() {
		// The subscription context may already be done; unsubscribing must still go out.
		if err := r.s.Unsubscribe(context.WithoutCancel(ctx), r.topic); err != nil {
			r.log.With(log.Error(err)).Warn("Failed to unsubscribe from state topic")
		}
	}()

	select {
	case s := <-snapshots:
		r.log.With(slog.Any("state", s)).Debug("Adopted retained snapshot")
		return s, nil
	case <-ctx.Done():
		r.log.Debug("No retained snapshot, using default state")
		return light.DefaultState(), nil
	}
}

// Save publishes the JSON serialization of s to the state topic as a retained message at QoS 1, so the broker holds
// the latest snapshot for restarts and other subscribers.
func (r *Retained) Save(ctx context.Context, s light.State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("store: marshal state: %w", err)
	}

	opts := mqtt.WriteOptions{QoS: mqtt.QOSAtLeastOnce, Retain: true}
	if err = r.w.WriteTopic(ctx, r.topic, opts, data); err != nil {
		return fmt.Errorf("store: publish state to %s: %w", r.topic, err)
	}

	return nil
}
