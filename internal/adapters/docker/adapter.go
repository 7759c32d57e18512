package docker

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/melih/mapserver/internal/core/domain"
)

// killTimeout bounds cleanup calls made after the run context is done.
const killTimeout = 10 * time.Second

// Adapter implements ports.ContainerEngine using Docker SDK
type Adapter struct {
	cli *client.Client
}

// NewAdapter creates a new Docker adapter instance. An empty host uses the environment.
func NewAdapter(host string) (*Adapter, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli}, nil
}

// Close releases the underlying client.
func (a *Adapter) Close() error {
	return a.cli.Close()
}

// Version returns the docker server version
func (a *Adapter) Version(ctx context.Context) (string, error) {
	v, err := a.cli.ServerVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get docker version: %w", err)
	}
	return fmt.Sprintf("Docker %s (API %s, %s/%s)", v.Version, v.APIVersion, v.Os, v.Arch), nil
}

// BuildImage builds a Docker image from a local directory
func (a *Adapter) BuildImage(ctx context.Context, contextDir, dockerfile, tag string) (string, error) {
	// 1. Create Build Context (Tar)
	tar, err := archive.TarWithOptions(contextDir, &archive.TarOptions{
		ExcludePatterns: []string{".git"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create build context: %w", err)
	}
	defer tar.Close()

	if dockerfile == "" {
		dockerfile = "Dockerfile"
	}

	// 2. Build Docker Image
	resp, err := a.cli.ImageBuild(ctx, tar, types.ImageBuildOptions{
		Tags:        []string{tag},
		Dockerfile:  dockerfile,
		Remove:      true, // Remove intermediate containers
		ForceRemove: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build image: %w", err)
	}
	defer resp.Body.Close()

	// The build only finishes once the body is drained; errors arrive as stream messages.
	var out bytes.Buffer
	if err := jsonmessage.DisplayJSONMessagesStream(resp.Body, &out, 0, false, nil); err != nil {
		return out.String(), fmt.Errorf("image build failed: %w", err)
	}

	return out.String(), nil
}

// RunContainer creates and starts a container, waits for it to exit and collects its logs.
// The container is killed when ctx is done and always removed.
func (a *Adapter) RunContainer(ctx context.Context, spec domain.ContainerSpec) (domain.ContainerResult, error) {
	started := time.Now()

	mounts := make([]mount.Mount, 0, len(spec.Mounts))
	for source, target := range spec.Mounts {
		mounts = append(mounts, mount.Mount{
			Type:   mount.TypeBind,
			Source: source,
			Target: target,
		})
	}

	// 1. Create Container
	resp, err := a.cli.ContainerCreate(ctx, &container.Config{
		Image:      spec.Image,
		Cmd:        spec.Command,
		WorkingDir: spec.WorkingDir,
		Env:        spec.Env,
	}, &container.HostConfig{
		Mounts: mounts,
	}, nil, nil, "")
	if err != nil {
		return domain.ContainerResult{}, fmt.Errorf("failed to create container: %w", err)
	}
	result := domain.ContainerResult{ID: resp.ID}
	defer a.remove(resp.ID)

	// 2. Start Container
	if err := a.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return result, fmt.Errorf("failed to start container: %w", err)
	}

	// 3. Wait for exit
	statusCh, errCh := a.cli.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case status := <-statusCh:
		result.ExitCode = status.StatusCode
		if status.Error != nil {
			err = fmt.Errorf("container wait: %s", status.Error.Message)
		}
	case err = <-errCh:
	case <-ctx.Done():
		err = ctx.Err()
	}

	if ctx.Err() != nil {
		a.kill(resp.ID)
		err = ctx.Err()
	}

	result.Output = a.logs(resp.ID)
	result.Duration = time.Since(started)

	return result, err
}

func (a *Adapter) logs(id string) string {
	ctx, cancel := context.WithTimeout(context.Background(), killTimeout)
	defer cancel()

	reader, err := a.cli.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return ""
	}
	defer reader.Close()

	var out bytes.Buffer
	// Containers run without a TTY so stdout and stderr are multiplexed.
	_, _ = stdcopy.StdCopy(&out, &out, reader)
	return out.String()
}

func (a *Adapter) kill(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), killTimeout)
	defer cancel()
	_ = a.cli.ContainerKill(ctx, id, "SIGKILL")
}

func (a *Adapter) remove(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), killTimeout)
	defer cancel()
	_ = a.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: true})
}
