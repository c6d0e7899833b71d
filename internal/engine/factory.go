package engine

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Constructor builds an engine from resolved provider settings.
type Constructor func(cfg Config) (Engine, error)

var (
	registryMu         sync.RWMutex
	engineConstructors = make(map[string]Constructor)
)

// RegisterEngine registers an engine constructor by name.
func RegisterEngine(name string, constructor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	engineConstructors[strings.ToLower(name)] = constructor
}

// New creates an engine by name.
func New(name string, cfg Config) (Engine, error) {
	registryMu.RLock()
	constructor, ok := engineConstructors[strings.ToLower(name)]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown engine: %s (supported: %s)", name, strings.Join(Available(), ", "))
	}
	return constructor(cfg)
}

// Available returns the registered engine names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(engineConstructors))
	for name := range engineConstructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
