// Package docker drives the docker CLI for container discovery and
// liveness checks. No daemon API client is used; everything goes through
// the binary so the tool works wherever docker (or a compatible CLI) does.
package docker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrDockerUnavailable means the docker binary is not on PATH.
	ErrDockerUnavailable = errors.New("docker CLI not found on PATH")

	// ErrNoContainerFound means discovery ran but matched nothing.
	ErrNoContainerFound = errors.New("no running MySQL or MariaDB container found")

	// ErrContainerNotRunning means the named container failed its
	// point-in-time liveness check.
	ErrContainerNotRunning = errors.New("container is not running")
)

// ContainerRef names a container by the name docker knows it by.
type ContainerRef struct {
	Name string
}

// Runner executes one docker CLI invocation and returns its stdout.
type Runner interface {
	Output(ctx context.Context, args ...string) ([]byte, error)
}

type cliRunner struct{}

func (cliRunner) Output(ctx context.Context, args ...string) ([]byte, error) {
	if _, err := exec.LookPath("docker"); err != nil {
		return nil, ErrDockerUnavailable
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("docker %s: %s", args[0], msg)
		}
		return nil, fmt.Errorf("docker %s: %w", args[0], err)
	}
	return stdout.Bytes(), nil
}
