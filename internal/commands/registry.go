package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps command names and aliases to commands.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Command
	primary []Command // sorted by Name
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Command)}
}

// Register adds c under its name and aliases. Names are case-insensitive.
// Nothing is registered if any of them is taken.
func (r *Registry) Register(c Command) error {
	keys := append([]string{c.Name()}, c.Aliases()...)
	for i, k := range keys {
		keys[i] = normalizeName(k)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range keys {
		if other, taken := r.byName[k]; taken {
			return fmt.Errorf("command name %q already registered by %s", k, other.Name())
		}
	}
	for _, k := range keys {
		r.byName[k] = c
	}

	i := sort.Search(len(r.primary), func(i int) bool {
		return r.primary[i].Name() >= c.Name()
	})
	r.primary = append(r.primary, nil)
	copy(r.primary[i+1:], r.primary[i:])
	r.primary[i] = c
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.byName[normalizeName(name)]
	return cmd, ok
}

// All returns every registered command once, sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Command, len(r.primary))
	copy(out, r.primary)
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DefaultRegistry holds the commands registered by this package's init
// functions.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry and panics on a name
// clash.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
