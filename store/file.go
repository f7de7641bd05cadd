package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/nlowe/moodlight/light"
	"github.com/nlowe/moodlight/log"
)

// File persists state as a JSON document at a fixed path. Save overwrites the file wholesale.
type File struct {
	path string

	log *slog.Logger
}

var _ Store = &File{}

// NewFile constructs a File store backed by the document at path.
func NewFile(path string) *File {
	return &File{
		path: path,

		log: log.ForComponent("store.file").With(slog.String("path", path)),
	}
}

// Load reads the state document. A missing file yields light.DefaultState; a present but malformed file logs a warning
// and also yields light.DefaultState. Only I/O errors other than absence are returned.
func (f *File) Load(_ context.Context) (light.State, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		f.log.Debug("State file does not exist, using default state")
		return light.DefaultState(), nil
	} else if err != nil {
		return light.DefaultState(), fmt.Errorf("store: read %s: %w", f.path, err)
	}

	var s light.State
	if err = json.Unmarshal(data, &s); err != nil {
		f.log.With(log.Error(err)).Warn("State file failed to parse, using default state")
		return light.DefaultState(), nil
	}

	f.log.With(slog.Any("state", s)).Debug("Loaded saved state")
	return s, nil
}

// Save overwrites the state document with the JSON serialization of s.
func (f *File) Save(_ context.Context, s light.State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("store: marshal state: %w", err)
	}

	f.log.With(slog.String("state", string(data))).Debug("Saving state")

	if err = os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", f.path, err)
	}

	return nil
}
