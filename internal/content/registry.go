// Package content loads the declarative physics-parameter tables the
// operator builders consume. Tables are JSON files mapping symbolic labels
// to per-label physics records; the registry is an immutable, explicitly
// injected service (never a process-wide global).
package content

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dudecon/SpaceWheat-sub011/internal/quantum"
)

// Registry indexes label → physics record. Read-only after Load; a single
// Registry may safely serve many environments concurrently.
type Registry struct {
	log   zerolog.Logger
	icons map[string]quantum.IconPhysics
}

// Load reads every *.json file in dir. Each file holds a label→record map;
// later files override earlier ones label-by-label, which is reported. A
// malformed file fails the whole load: content errors are an operator
// mistake, not a runtime condition to degrade through.
func Load(dir string, log zerolog.Logger) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading content dir %s: %w", dir, err)
	}

	reg := &Registry{
		log:   log.With().Str("component", "content").Logger(),
		icons: make(map[string]quantum.IconPhysics),
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading content file %s: %w", path, err)
		}
		var table map[string]quantum.IconPhysics
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("parsing content file %s: %w", path, err)
		}
		for label, icon := range table {
			if _, exists := reg.icons[label]; exists {
				reg.log.Warn().Str("label", label).Str("file", name).Msg("label redefined, overriding")
			}
			reg.icons[label] = icon
		}
		reg.log.Debug().Str("file", name).Int("labels", len(table)).Msg("content file loaded")
	}

	reg.log.Info().Int("labels", len(reg.icons)).Str("dir", dir).Msg("content registry loaded")
	return reg, nil
}

// NewFromMap wraps an in-memory table. Used by tests and embedded defaults.
func NewFromMap(icons map[string]quantum.IconPhysics, log zerolog.Logger) *Registry {
	copied := make(map[string]quantum.IconPhysics, len(icons))
	for k, v := range icons {
		copied[k] = v
	}
	return &Registry{log: log, icons: copied}
}

// Icon returns the record for a label.
func (r *Registry) Icon(label string) (quantum.IconPhysics, bool) {
	icon, ok := r.icons[label]
	return icon, ok
}

// Labels returns every known label, sorted.
func (r *Registry) Labels() []string {
	out := make([]string, 0, len(r.icons))
	for label := range r.icons {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// Table returns a copy of the whole label→record map, the shape the
// builders consume.
func (r *Registry) Table() map[string]quantum.IconPhysics {
	out := make(map[string]quantum.IconPhysics, len(r.icons))
	for k, v := range r.icons {
		out[k] = v
	}
	return out
}

// Len returns the number of known labels.
func (r *Registry) Len() int { return len(r.icons) }
