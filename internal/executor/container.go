package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dbmint/dbmint/internal/docker"
	"github.com/dbmint/dbmint/internal/sqlgen"
)

// ContainerChannel streams the script into a mysql client exec'd inside a
// running container. The admin password is handed to that process through
// its environment via docker's -e NAME forwarding form, so it appears in
// neither the argument list nor the script body.
type ContainerChannel struct {
	Target  *Target
	Locator Locator

	// DockerPath overrides the docker binary, for tests.
	DockerPath string
}

const passwordEnvKey = "MYSQL_PWD"

func (c *ContainerChannel) Execute(ctx context.Context, script sqlgen.Script) (Outcome, error) {
	running, err := c.Locator.IsRunning(ctx, c.Target.Container)
	if err != nil {
		return Outcome{}, err
	}
	if !running {
		return Outcome{}, fmt.Errorf("container %q (it may be stopped or misnamed): %w",
			c.Target.Container.Name, docker.ErrContainerNotRunning)
	}

	args := []string{"exec", "-i"}
	if c.Target.Admin.Password != "" {
		args = append(args, "-e", passwordEnvKey)
	}
	args = append(args, c.Target.Container.Name,
		clientBinary, "--protocol=tcp", "-h", c.Target.InnerHost, "-u", c.Target.Admin.User, "--batch")

	dockerPath := c.DockerPath
	if dockerPath == "" {
		dockerPath = "docker"
	}

	cmd := exec.CommandContext(ctx, dockerPath, args...)
	cmd.Stdin = strings.NewReader(string(script))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if c.Target.Admin.Password != "" {
		cmd.Env = append(os.Environ(), passwordEnvKey+"="+c.Target.Admin.Password)
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Outcome{Success: false, Log: stderr.String()}, nil
		}
		return Outcome{}, fmt.Errorf("failed to run docker exec: %w", err)
	}
	return Outcome{Success: true, Log: stderr.String()}, nil
}
