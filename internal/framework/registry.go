/*
PURPOSE:
  Maps framework identifiers to wrappers that turn a generic TestSpec into a
  runnable TestProcess for one inference framework.

REQUIREMENTS:
  User-specified:
  - Lookup by case-sensitive identifier.
  - Unknown identifiers fail per test, never for the whole run.

  Implementation-discovered:
  - New frameworks are added by registering a wrapper, dispatch code is untouched.
  - The registry is read from several workers when the run is parallel.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine, internal/cli (frameworks command)
  - Uses: internal/process, internal/executor

ERROR HANDLING:
  - ErrUnknownFramework from Lookup.
  - ErrMissingBenchmarks when a binary wrapper has no benchmarks directory.

RELATED FILES:
  - internal/framework/wrappers.go
  - internal/framework/pathrule.go
*/

package framework

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/daryltucker/bench-runner/internal/executor"
	"github.com/daryltucker/bench-runner/internal/model"
	"github.com/daryltucker/bench-runner/internal/process"
)

var (
	// ErrUnknownFramework is returned by Lookup for an unregistered identifier.
	ErrUnknownFramework = errors.New("unknown framework")
	// ErrMissingBenchmarks is returned when a wrapper needs a benchmarks directory and none was given.
	ErrMissingBenchmarks = errors.New("benchmarks directory is not set")
	// ErrInvalidTest is returned when a test lacks a field the wrapper needs.
	ErrInvalidTest = errors.New("invalid test")
)

// Wrapper builds runnable processes for one framework.
type Wrapper interface {
	CreateProcess(test model.TestSpec, ex executor.Executor, benchmarksPath string) (*process.TestProcess, error)
}

// Describer is implemented by wrappers that can describe themselves for listings.
type Describer interface {
	Describe() string
}

// Registry is a dispatch table from framework identifier to Wrapper.
type Registry struct {
	mu       sync.RWMutex
	wrappers map[string]Wrapper
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{wrappers: make(map[string]Wrapper)}
}

// Register adds a wrapper. Registering the same name twice is an error.
func (r *Registry) Register(name string, w Wrapper) error {
	if name == "" {
		return fmt.Errorf("framework name cannot be empty")
	}
	if w == nil {
		return fmt.Errorf("wrapper for %q cannot be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wrappers[name]; ok {
		return fmt.Errorf("framework %q is already registered", name)
	}
	r.wrappers[name] = w
	return nil
}

// MustRegister is Register for startup code; it panics on error.
func (r *Registry) MustRegister(name string, w Wrapper) {
	if err := r.Register(name, w); err != nil {
		panic(err)
	}
}

// Lookup returns the wrapper registered under name.
func (r *Registry) Lookup(name string) (Wrapper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wrappers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFramework, name)
	}
	return w, nil
}

// Names returns the registered identifiers in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.wrappers))
	for name := range r.wrappers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
