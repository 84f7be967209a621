package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dbmint/dbmint/internal/docker"
	"github.com/dbmint/dbmint/internal/sqlgen"
)

// stubDockerScript records its arguments, stdin, and whether MYSQL_PWD was
// present in its environment, then exits with $STUB_EXIT.
const stubDockerScript = `#!/bin/sh
printf '%s\n' "$@" > "$CAPTURE_DIR/args"
cat > "$CAPTURE_DIR/stdin"
printenv MYSQL_PWD > "$CAPTURE_DIR/env" || : > "$CAPTURE_DIR/env"
if [ -n "$STUB_STDERR" ]; then
  printf '%s\n' "$STUB_STDERR" >&2
fi
exit "${STUB_EXIT:-0}"
`

func setupStubDocker(t *testing.T, exitCode, stderrLine string) (dockerPath, captureDir string) {
	t.Helper()
	skipWithoutShell(t)

	captureDir = t.TempDir()
	dockerPath = filepath.Join(t.TempDir(), "docker")
	if err := os.WriteFile(dockerPath, []byte(stubDockerScript), 0o755); err != nil {
		t.Fatalf("Failed to write stub docker: %v", err)
	}

	t.Setenv("CAPTURE_DIR", captureDir)
	t.Setenv("STUB_EXIT", exitCode)
	t.Setenv("STUB_STDERR", stderrLine)
	return dockerPath, captureDir
}

func runningContainerChannel(dockerPath, password string) *ContainerChannel {
	return &ContainerChannel{
		Target: &Target{
			Kind:      KindContainer,
			Admin:     AdminCredentials{Host: "127.0.0.1", User: "root", Password: password},
			Container: docker.ContainerRef{Name: "shop-mysql"},
			InnerHost: "localhost",
		},
		Locator:    &fakeLocator{running: map[string]bool{"shop-mysql": true}},
		DockerPath: dockerPath,
	}
}

func TestContainerChannelExecuteStreamsScript(t *testing.T) {
	dockerPath, captureDir := setupStubDocker(t, "0", "")

	channel := runningContainerChannel(dockerPath, "sekrit")
	script := "CREATE DATABASE `shop`;\n"
	outcome, err := channel.Execute(context.Background(), sqlgen.Script(script))
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("Expected success, got log: %s", outcome.Log)
	}

	args, err := os.ReadFile(filepath.Join(captureDir, "args"))
	if err != nil {
		t.Fatalf("Stub did not record arguments: %v", err)
	}
	want := strings.Join([]string{
		"exec", "-i", "-e", "MYSQL_PWD", "shop-mysql",
		"mysql", "--protocol=tcp", "-h", "localhost", "-u", "root", "--batch",
	}, "\n")
	if got := strings.TrimSpace(string(args)); got != want {
		t.Fatalf("Unexpected docker arguments:\n%s", got)
	}
	if strings.Contains(string(args), "sekrit") {
		t.Fatal("Password must never appear in the argument list")
	}

	stdin, err := os.ReadFile(filepath.Join(captureDir, "stdin"))
	if err != nil {
		t.Fatalf("Stub did not record stdin: %v", err)
	}
	if string(stdin) != script {
		t.Fatalf("Expected script on stdin, got %q", stdin)
	}

	env, err := os.ReadFile(filepath.Join(captureDir, "env"))
	if err != nil {
		t.Fatalf("Stub did not record environment: %v", err)
	}
	if strings.TrimSpace(string(env)) != "sekrit" {
		t.Fatalf("Expected password in MYSQL_PWD, got %q", env)
	}
}

func TestContainerChannelExecuteOmitsPasswordEnvWhenEmpty(t *testing.T) {
	dockerPath, captureDir := setupStubDocker(t, "0", "")

	channel := runningContainerChannel(dockerPath, "")
	if _, err := channel.Execute(context.Background(), "SELECT 1;\n"); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	args, err := os.ReadFile(filepath.Join(captureDir, "args"))
	if err != nil {
		t.Fatalf("Stub did not record arguments: %v", err)
	}
	want := strings.Join([]string{
		"exec", "-i", "shop-mysql",
		"mysql", "--protocol=tcp", "-h", "localhost", "-u", "root", "--batch",
	}, "\n")
	if got := strings.TrimSpace(string(args)); got != want {
		t.Fatalf("Unexpected docker arguments:\n%s", got)
	}
}

func TestContainerChannelExecuteRefusesStoppedContainer(t *testing.T) {
	dockerPath, captureDir := setupStubDocker(t, "0", "")

	channel := runningContainerChannel(dockerPath, "pw")
	channel.Locator = &fakeLocator{running: map[string]bool{}}

	_, err := channel.Execute(context.Background(), "SELECT 1;\n")
	if !errors.Is(err, docker.ErrContainerNotRunning) {
		t.Fatalf("Expected ErrContainerNotRunning, got %v", err)
	}

	if _, err := os.Stat(filepath.Join(captureDir, "args")); !os.IsNotExist(err) {
		t.Fatal("Expected docker not to be invoked for a stopped container")
	}
}

func TestContainerChannelExecuteLocatorErrorPropagates(t *testing.T) {
	dockerPath, _ := setupStubDocker(t, "0", "")

	channel := runningContainerChannel(dockerPath, "pw")
	channel.Locator = &fakeLocator{runningErr: docker.ErrDockerUnavailable}

	_, err := channel.Execute(context.Background(), "SELECT 1;\n")
	if !errors.Is(err, docker.ErrDockerUnavailable) {
		t.Fatalf("Expected ErrDockerUnavailable, got %v", err)
	}
}

func TestContainerChannelExecuteClientFailure(t *testing.T) {
	diagnostic := "ERROR 2002 (HY000): Can't connect to server on 'localhost'"
	dockerPath, _ := setupStubDocker(t, "1", diagnostic)

	channel := runningContainerChannel(dockerPath, "pw")
	outcome, err := channel.Execute(context.Background(), "SELECT 1;\n")
	if err != nil {
		t.Fatalf("Expected a captured failure, got error: %v", err)
	}
	if outcome.Success {
		t.Fatal("Expected failure outcome")
	}
	if !strings.Contains(outcome.Log, "ERROR 2002") {
		t.Fatalf("Expected diagnostics in the log, got %q", outcome.Log)
	}
}
