// Package store persists the fixture state for crash recovery and multi-process handoff. Two interchangeable backends
// are provided: a local JSON file and an MQTT retained message.
package store

import (
	"context"

	"github.com/nlowe/moodlight/light"
)

// Store loads and saves fixture state snapshots. Load never fails on an absent or malformed snapshot; it substitutes
// light.DefaultState instead so a damaged snapshot can not keep the daemon from starting.
type Store interface {
	Load(ctx context.Context) (light.State, error)
	Save(ctx context.Context, s light.State) error
}
