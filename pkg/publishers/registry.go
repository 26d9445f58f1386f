package publishers

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Builder creates a Publisher from a config entry.
type Builder func(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error)

// Registry maps publisher types to builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// DefaultRegistry knows the http and queue publisher types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TypeHTTP, newHTTPPublisher)
	r.Register(TypeQueue, newQueuePublisher)
	return r
}

// Register associates a builder with a publisher type. Blank types and nil builders are ignored.
func (r *Registry) Register(typ string, builder Builder) {
	if typ = strings.TrimSpace(strings.ToLower(typ)); typ == "" || builder == nil {
		return
	}
	r.mu.Lock()
	r.builders[typ] = builder
	r.mu.Unlock()
}

// PublisherFor builds the publisher for one config entry.
func (r *Registry) PublisherFor(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	r.mu.RLock()
	builder := r.builders[strings.ToLower(cfg.Type)]
	r.mu.RUnlock()

	if builder == nil {
		return nil, fmt.Errorf("publisher %q: no builder registered for type %q", cfg.ID, cfg.Type)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	pub, err := builder(ctx, cfg, ensureLogger(log))
	if err != nil {
		return nil, fmt.Errorf("publisher %q: %w", cfg.ID, err)
	}
	return pub, nil
}

// LoadFanout reads the publishers file and builds a Fanout over its
// enabled entries. An empty path yields a Fanout with no publishers.
func LoadFanout(ctx context.Context, path string, reg *Registry, log Logger) (*Fanout, error) {
	log = ensureLogger(log)
	if strings.TrimSpace(path) == "" {
		return NewFanout(log), nil
	}
	if reg == nil {
		reg = DefaultRegistry()
	}

	cfgReg, err := LoadRegistry(path)
	if err != nil {
		return nil, err
	}

	enabled := cfgReg.Enabled()
	pubs := make([]Publisher, 0, len(enabled))
	for _, cfg := range enabled {
		pub, err := reg.PublisherFor(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("build publishers: %w", err)
		}
		pubs = append(pubs, pub)
	}

	log.InfoObj("publishers ready", "publishers_loaded", map[string]any{
		"count": len(pubs),
		"file":  path,
	})
	return NewFanout(log, pubs...), nil
}
