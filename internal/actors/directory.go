// package actors maintains the directory of accounts available for join
// actions.
//
// The directory is read from a TOML file and hot-reloaded when the file
// changes; the rest of the application only reads it. Actor records are
// owned by whoever maintains the file.
package actors

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/groupscout/groupscout/internal/models"
)

// actorFile mirrors the on-disk layout:
//
//	[[actor]]
//	id = "primary"
//	label = "Main account"
//	ready = true
type actorFile struct {
	Actor []actorEntry `toml:"actor"`
}

type actorEntry struct {
	ID    string `toml:"id"`
	Label string `toml:"label"`
	Ready bool   `toml:"ready"`
}

// Directory holds the current actor list and serves reads to the session and
// UI layers.
type Directory struct {
	path   string
	logger *log.Logger

	mu     sync.RWMutex
	actors []models.Actor
}

// NewDirectory creates a directory backed by the given TOML file and performs
// the initial load.
func NewDirectory(path string, logger *log.Logger) (*Directory, error) {
	d := &Directory{path: path, logger: logger}
	if err := d.Reload(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewStaticDirectory creates a directory from a fixed actor list, with no
// backing file. Used by tests and the demo wiring.
func NewStaticDirectory(actors []models.Actor, logger *log.Logger) *Directory {
	return &Directory{logger: logger, actors: append([]models.Actor(nil), actors...)}
}

// Reload re-reads the backing file and swaps the actor list.
func (d *Directory) Reload() error {
	if d.path == "" {
		return nil
	}

	data, err := os.ReadFile(d.path)
	if err != nil {
		return fmt.Errorf("failed to read actors file: %w", err)
	}

	var parsed actorFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse actors file: %w", err)
	}

	actors := make([]models.Actor, 0, len(parsed.Actor))
	for _, entry := range parsed.Actor {
		if entry.ID == "" {
			continue
		}
		status := models.ActorNotReady
		if entry.Ready {
			status = models.ActorReady
		}
		label := entry.Label
		if label == "" {
			label = entry.ID
		}
		actors = append(actors, models.Actor{ID: entry.ID, Label: label, Status: status})
	}
	sort.Slice(actors, func(i, j int) bool { return actors[i].ID < actors[j].ID })

	d.mu.Lock()
	d.actors = actors
	d.mu.Unlock()

	if d.logger != nil {
		d.logger.Debug("actor directory reloaded", "count", len(actors))
	}
	return nil
}

// All returns a copy of every actor record.
func (d *Directory) All() []models.Actor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.Actor(nil), d.actors...)
}

// Ready returns the actors currently eligible to perform joins.
func (d *Directory) Ready() []models.Actor {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ready := make([]models.Actor, 0, len(d.actors))
	for _, a := range d.actors {
		if a.Status == models.ActorReady {
			ready = append(ready, a)
		}
	}
	return ready
}

// Get looks up an actor by id.
func (d *Directory) Get(id string) (models.Actor, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, a := range d.actors {
		if a.ID == id {
			return a, true
		}
	}
	return models.Actor{}, false
}
