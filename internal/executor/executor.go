/*
PURPOSE:
  Abstracts where a benchmark subprocess runs: directly on the host or inside a
  running Docker container.

REQUIREMENTS:
  User-specified:
  - Executor kind is chosen once per run and shared by all tests.
  - An unrecognised kind is fatal before any test runs.

  Implementation-discovered:
  - Each row records a description of the infrastructure the test ran on.
  - A per-test deadline must terminate the subprocess instead of hanging the run.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (resolution), internal/process (Run)
  - Uses: os/exec (host), github.com/docker/docker (container)

ERROR HANDLING:
  - ErrUnsupportedKind from New/ParseKind.
  - ErrSpawn when a command cannot be started; ErrTimeout when its deadline expires.
  - A non-zero exit code is NOT an error, it is reported in Result.ExitCode.

USAGE:
  ex, err := executor.New(ctx, executor.KindHost, executor.Options{Logger: logger})
  res, err := ex.Run(ctx, executor.Command{Name: "benchmark_app", Args: args})

RELATED FILES:
  - internal/executor/host.go
  - internal/executor/container.go
*/

package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var (
	// ErrUnsupportedKind is returned for an executor kind that is not recognised.
	ErrUnsupportedKind = errors.New("unsupported executor kind")
	// ErrSpawn is returned when a command could not be started.
	ErrSpawn = errors.New("failed to spawn process")
	// ErrTimeout is returned when a command was killed because its deadline expired.
	ErrTimeout = errors.New("process timed out")
)

// Kind selects the execution environment.
type Kind string

const (
	KindHost      Kind = "host_machine"
	KindContainer Kind = "docker_container"
)

// ParseKind normalises a user supplied executor tag.
// "container_environment" is accepted as an alias of docker_container.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(KindHost):
		return KindHost, nil
	case string(KindContainer), "container_environment":
		return KindContainer, nil
	}
	return Kind(s), fmt.Errorf("%w: %q (expected %s or %s)", ErrUnsupportedKind, s, KindHost, KindContainer)
}

// Command is one external invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

// Argv returns the full argument vector.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command line for logs and result rows.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, a := range c.Argv() {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Result is the outcome of a finished command.
type Result struct {
	ExitCode int
	Output   string
}

// Executor runs external commands in some environment.
type Executor interface {
	Kind() Kind
	// Infrastructure describes the environment for the result table.
	Infrastructure(ctx context.Context) string
	// Run blocks until cmd finishes. It returns an error only when cmd could not
	// be started or was killed; a non-zero exit code is reported in Result.
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Options configures executor construction.
type Options struct {
	Logger *slog.Logger

	// Container executor only.
	ContainerName  string
	ContainerImage string   // started as ContainerName when the container does not exist
	Mounts         []string // host:container bind mounts for a container started from ContainerImage
	Docker         APIClient
}

// New resolves kind into a concrete Executor.
func New(ctx context.Context, kind Kind, opts Options) (Executor, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	k, err := ParseKind(string(kind))
	if err != nil {
		return nil, err
	}

	switch k {
	case KindHost:
		return NewHostExecutor(opts.Logger), nil
	case KindContainer:
		ex, err := NewContainerExecutor(ctx, opts)
		if err != nil {
			return nil, err
		}
		return ex, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
}
