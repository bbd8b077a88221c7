// Package bots holds the bots the highrise command can run by name.
package bots

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lightforgemedia/go-highrise/pkg/client"
)

// Factory builds a fresh bot.
type Factory func() client.Bot

// Registry maps bot names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name. Registering a name twice is an error.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("bots: register %q: name and factory are required", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("bots: %q already registered", name)
	}
	r.factories[name] = f
	return nil
}

// New builds the bot registered under name.
func (r *Registry) New(name string) (client.Bot, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("bots: unknown bot %q (available: %v)", name, r.Names())
	}
	return f(), nil
}

// Names lists registered bots in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns a registry holding the bots shipped with this module.
func Default() *Registry {
	r := NewRegistry()
	_ = r.Register("echo", func() client.Bot { return &Echo{} })
	_ = r.Register("greeter", func() client.Bot { return NewGreeter() })
	return r
}
