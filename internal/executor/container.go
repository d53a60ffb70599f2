package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/google/uuid"
	specs "github.com/opencontainers/image-spec/specs-go/v1"
)

// APIClient is the subset of the Docker Engine API used by ContainerExecutor.
type APIClient interface {
	Ping(ctx context.Context) (types.Ping, error)
	ServerVersion(ctx context.Context) (types.Version, error)
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *specs.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerExecCreate(ctx context.Context, container string, options container.ExecOptions) (container.ExecCreateResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, config container.ExecStartOptions) (types.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (container.ExecInspect, error)
	Close() error
}

// exitPollInterval and exitPollAttempts bound the wait for an exec to be
// reported as finished after its output stream closed.
const (
	exitPollInterval = 50 * time.Millisecond
	exitPollAttempts = 40
)

// ContainerExecutor runs commands with `docker exec` semantics inside a running container.
type ContainerExecutor struct {
	api    APIClient
	name   string
	logger *slog.Logger
}

// NewContainerExecutor connects to the Docker daemon and makes sure the target
// container is running, starting it from opts.ContainerImage when it does not exist.
func NewContainerExecutor(ctx context.Context, opts Options) (*ContainerExecutor, error) {
	if opts.ContainerName == "" {
		return nil, fmt.Errorf("docker_container executor requires a container name")
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	api := opts.Docker
	if api == nil {
		cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if err != nil {
			return nil, fmt.Errorf("failed to create docker client: %w", err)
		}
		api = cli
	}

	e := &ContainerExecutor{
		api:    api,
		name:   opts.ContainerName,
		logger: opts.Logger.With("executor", string(KindContainer), "container", opts.ContainerName),
	}

	if _, err := api.Ping(ctx); err != nil {
		api.Close()
		return nil, fmt.Errorf("docker daemon is not reachable: %w", err)
	}
	if err := e.ensureRunning(ctx, opts); err != nil {
		api.Close()
		return nil, err
	}
	return e, nil
}

func (e *ContainerExecutor) Kind() Kind { return KindContainer }

// Close releases the Docker client.
func (e *ContainerExecutor) Close() error {
	return e.api.Close()
}

func (e *ContainerExecutor) ensureRunning(ctx context.Context, opts Options) error {
	info, err := e.api.ContainerInspect(ctx, e.name)
	if err == nil {
		if info.ContainerJSONBase != nil && info.State != nil && info.State.Running {
			return nil
		}
		e.logger.Info("Starting stopped container")
		if err := e.api.ContainerStart(ctx, e.name, container.StartOptions{}); err != nil {
			return fmt.Errorf("failed to start container %s: %w", e.name, err)
		}
		return nil
	}
	if !errdefs.IsNotFound(err) || opts.ContainerImage == "" {
		return fmt.Errorf("container %s is not available: %w", e.name, err)
	}

	e.logger.Info("Creating container", "image", opts.ContainerImage)
	binds := append([]string{"/dev:/dev"}, opts.Mounts...)
	resp, err := e.api.ContainerCreate(ctx,
		&container.Config{
			Image:     opts.ContainerImage,
			Tty:       true,
			OpenStdin: true,
		},
		&container.HostConfig{
			Binds:       binds,
			Privileged:  true,
			NetworkMode: "host",
		}, nil, nil, e.name)
	if err != nil {
		return fmt.Errorf("failed to create container %s: %w", e.name, err)
	}
	if err := e.api.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container %s: %w", e.name, err)
	}
	return nil
}

// Check verifies that the daemon answers and the container is running.
func (e *ContainerExecutor) Check(ctx context.Context) error {
	if _, err := e.api.Ping(ctx); err != nil {
		return fmt.Errorf("docker daemon is not reachable: %w", err)
	}
	info, err := e.api.ContainerInspect(ctx, e.name)
	if err != nil {
		return fmt.Errorf("container %s is not available: %w", e.name, err)
	}
	if info.ContainerJSONBase == nil || info.State == nil || !info.State.Running {
		return fmt.Errorf("container %s is not running", e.name)
	}
	return nil
}

// Infrastructure reports the container image and Docker host.
func (e *ContainerExecutor) Infrastructure(ctx context.Context) string {
	parts := []string{"container=" + e.name}
	if info, err := e.api.ContainerInspect(ctx, e.name); err == nil && info.Config != nil {
		parts = append(parts, "image="+info.Config.Image)
	}
	if v, err := e.api.ServerVersion(ctx); err == nil {
		parts = append(parts,
			"docker="+v.Version,
			fmt.Sprintf("os=%s/%s", v.Os, v.Arch),
			"kernel="+v.KernelVersion,
		)
	}
	return strings.Join(parts, " ")
}

// Run executes cmd inside the container and waits for it to exit.
func (e *ContainerExecutor) Run(ctx context.Context, cmd Command) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{ExitCode: -1}, contextError(err)
	}

	e.logger.Debug("Starting process", "command", cmd.String())

	pidFile := pidFilePath()
	created, err := e.api.ContainerExecCreate(ctx, e.name, container.ExecOptions{
		Cmd:          wrapWithPidFile(pidFile, cmd.Argv()),
		Env:          cmd.Env,
		WorkingDir:   cmd.Dir,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("%w: exec create in %s: %v", ErrSpawn, e.name, err)
	}

	attach, err := e.api.ContainerExecAttach(ctx, created.ID, container.ExecStartOptions{})
	if err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("%w: exec attach in %s: %v", ErrSpawn, e.name, err)
	}
	defer attach.Close()

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		_, err := stdcopy.StdCopy(&out, &out, attach.Reader)
		done <- err
	}()

	select {
	case <-ctx.Done():
		attach.Close()
		<-done
		e.kill(created.ID, pidFile)
		return Result{ExitCode: -1, Output: out.String()}, contextError(ctx.Err())
	case err := <-done:
		if err != nil && err != io.EOF {
			return Result{ExitCode: -1, Output: out.String()}, fmt.Errorf("failed to read exec output: %w", err)
		}
	}

	code, err := e.exitCode(ctx, created.ID)
	if err != nil {
		return Result{ExitCode: -1, Output: out.String()}, err
	}
	return Result{ExitCode: code, Output: out.String()}, nil
}

func (e *ContainerExecutor) exitCode(ctx context.Context, execID string) (int, error) {
	for i := 0; i < exitPollAttempts; i++ {
		info, err := e.api.ContainerExecInspect(ctx, execID)
		if err != nil {
			return -1, fmt.Errorf("failed to inspect exec %s: %w", execID, err)
		}
		if !info.Running {
			return info.ExitCode, nil
		}
		time.Sleep(exitPollInterval)
	}
	return -1, fmt.Errorf("exec %s still running after output closed", execID)
}

// pidFileDir is where exec'd benchmarks record their in-container pid.
const pidFileDir = "/tmp"

func pidFilePath() string {
	return fmt.Sprintf("%s/bench-runner-%s.pid", pidFileDir, uuid.NewString())
}

// wrapWithPidFile makes the exec write its own pid, as seen inside the
// container, before replacing itself with argv. ContainerExecInspect only
// reports the pid in the host namespace. The file of a benchmark that exits on
// its own stays behind in the container's /tmp.
func wrapWithPidFile(pidFile string, argv []string) []string {
	script := fmt.Sprintf(`echo $$ > %s && exec "$@"`, pidFile)
	return append([]string{"sh", "-c", script, "sh"}, argv...)
}

// killScript signals the process group of the recorded pid, falling back to
// the pid alone, and removes the pid file.
func killScript(pidFile string) []string {
	script := fmt.Sprintf(`pid=$(cat %[1]s 2>/dev/null) && { kill -9 -- -$pid 2>/dev/null || kill -9 $pid; }; rm -f %[1]s`, pidFile)
	return []string{"sh", "-c", script}
}

// kill terminates the process started by an exec. The run context is already
// done at this point, so a short-lived background context is used.
func (e *ContainerExecutor) kill(execID, pidFile string) {
	ctx, cancel := context.WithTimeout(context.Background(), killGrace)
	defer cancel()

	info, err := e.api.ContainerExecInspect(ctx, execID)
	if err != nil || !info.Running {
		return
	}
	e.logger.Warn("Killing timed out process", "exec", execID, "pid_file", pidFile)
	killer, err := e.api.ContainerExecCreate(ctx, e.name, container.ExecOptions{
		Cmd: killScript(pidFile),
	})
	if err != nil {
		e.logger.Error("Failed to kill timed out process", "exec", execID, "error", err)
		return
	}
	resp, err := e.api.ContainerExecAttach(ctx, killer.ID, container.ExecStartOptions{})
	if err != nil {
		e.logger.Error("Failed to kill timed out process", "exec", execID, "error", err)
		return
	}
	_, _ = io.Copy(io.Discard, resp.Reader)
	resp.Close()
}
