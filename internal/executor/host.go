package executor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// killGrace is how long a cancelled process gets to exit before its pipes are closed.
const killGrace = 5 * time.Second

// HostExecutor runs commands as child processes of bench-runner.
type HostExecutor struct {
	logger *slog.Logger
}

// NewHostExecutor creates a HostExecutor.
func NewHostExecutor(logger *slog.Logger) *HostExecutor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HostExecutor{logger: logger.With("executor", string(KindHost))}
}

func (h *HostExecutor) Kind() Kind { return KindHost }

// Infrastructure reports hostname, platform and CPU.
func (h *HostExecutor) Infrastructure(_ context.Context) string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	info := fmt.Sprintf("host=%s os=%s/%s cpus=%d", hostname, runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	if cpu := cpuModel(); cpu != "" {
		info += " cpu=" + cpu
	}
	return info
}

// Run starts cmd and waits for it. On context expiry the whole process group is killed.
func (h *HostExecutor) Run(ctx context.Context, cmd Command) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{ExitCode: -1}, contextError(err)
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	var out bytes.Buffer
	c.Stdout = &out
	c.Stderr = &out
	c.WaitDelay = killGrace
	setProcessGroup(c)

	h.logger.Debug("Starting process", "command", cmd.String())

	if err := c.Start(); err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("%w: %s: %v", ErrSpawn, cmd.Name, err)
	}

	err := c.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{ExitCode: -1, Output: out.String()}, contextError(ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{ExitCode: exitErr.ExitCode(), Output: out.String()}, nil
		}
		return Result{ExitCode: -1, Output: out.String()}, fmt.Errorf("wait for %s: %w", cmd.Name, err)
	}
	return Result{ExitCode: 0, Output: out.String()}, nil
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

// cpuModel returns the first "model name" entry of /proc/cpuinfo, if any.
func cpuModel() string {
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if ok && strings.TrimSpace(key) == "model name" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
