// Package receivers loads static metadata for the receivers feeding the
// system: display name, position and receiver type.
package receivers

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/johnmartel/AisCoverage/internal/core/coverage"
	"gopkg.in/yaml.v3"
)

// rawReceiver is the on-disk YAML shape. visible defaults to true.
type rawReceiver struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Type      string  `yaml:"type"`
	Visible   *bool   `yaml:"visible"`
}

type rawFile struct {
	Receivers []rawReceiver `yaml:"receivers"`
}

// Registry is an immutable id -> metadata table. The zero value is empty.
type Registry struct {
	entries map[string]coverage.SourceInfo
}

// Load reads the registry from path. An empty path or a missing file yields an
// empty registry.
func Load(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return &Registry{}, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Registry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading receiver registry %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a registry from YAML bytes.
func Parse(data []byte) (*Registry, error) {
	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing receiver registry: %w", err)
	}

	r := &Registry{entries: make(map[string]coverage.SourceInfo, len(raw.Receivers))}
	for i, rr := range raw.Receivers {
		id := strings.TrimSpace(rr.ID)
		if id == "" {
			return nil, fmt.Errorf("receiver #%d: id must not be empty", i)
		}
		if id == coverage.SuperSourceID {
			return nil, fmt.Errorf("receiver id %q is reserved", id)
		}
		if _, exists := r.entries[id]; exists {
			return nil, fmt.Errorf("duplicate receiver id %q", id)
		}
		if rr.Latitude < -90 || rr.Latitude > 90 || rr.Longitude < -180 || rr.Longitude > 180 {
			return nil, fmt.Errorf("receiver %q: position out of range", id)
		}

		visible := true
		if rr.Visible != nil {
			visible = *rr.Visible
		}
		name := rr.Name
		if name == "" {
			name = id
		}
		r.entries[id] = coverage.SourceInfo{
			Name:         name,
			Latitude:     rr.Latitude,
			Longitude:    rr.Longitude,
			Visible:      visible,
			ReceiverType: coverage.ParseReceiverType(rr.Type),
		}
	}
	return r, nil
}

// Lookup implements coverage.SourceInfoLookup.
func (r *Registry) Lookup(id string) (coverage.SourceInfo, bool) {
	if r == nil || r.entries == nil {
		return coverage.SourceInfo{}, false
	}
	info, ok := r.entries[id]
	return info, ok
}

// IDs returns the registered receiver ids in sorted order.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}
