package provision

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dbmint/dbmint/internal/config"
	"github.com/dbmint/dbmint/internal/docker"
	"github.com/dbmint/dbmint/internal/executor"
	"github.com/dbmint/dbmint/internal/sqlgen"
)

type stubChannel struct {
	outcome executor.Outcome
	err     error
	script  sqlgen.Script
}

func (s *stubChannel) Execute(_ context.Context, script sqlgen.Script) (executor.Outcome, error) {
	s.script = script
	if s.err != nil {
		return executor.Outcome{}, s.err
	}
	return s.outcome, nil
}

type fakeLocator struct {
	candidates []docker.ContainerRef
	err        error
}

func (f *fakeLocator) ListCandidates(_ context.Context) ([]docker.ContainerRef, error) {
	return f.candidates, f.err
}

func (f *fakeLocator) IsRunning(_ context.Context, _ docker.ContainerRef) (bool, error) {
	return true, nil
}

func haveClient(string) (string, error) { return "/usr/bin/mysql", nil }

func noClient(string) (string, error) {
	return "", errors.New("executable file not found in $PATH")
}

func devInputs() Inputs {
	return Inputs{
		Environment:   config.EnvDev,
		Host:          "127.0.0.1",
		AdminUser:     "root",
		AdminPassword: "adminpw",
		Database:      "shop",
		Username:      "shop_user",
		UserHost:      "%",
		Password:      "apppw",
		GrantFull:     true,
	}
}

func newTestOrchestrator(credDir string, channel executor.Channel, out, errOut *bytes.Buffer) *Orchestrator {
	return NewOrchestrator(Options{
		LookPath:   haveClient,
		NewChannel: func(_ *executor.Target) executor.Channel { return channel },
		CredDir:    credDir,
		Out:        out,
		ErrOut:     errOut,
		Now:        func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) },
	})
}

func assertNoCredentialDir(t *testing.T, credDir string) {
	t.Helper()
	if _, err := os.Stat(filepath.Join(credDir, "db_credential")); !os.IsNotExist(err) {
		t.Fatal("Expected no credential directory after a failed run")
	}
}

func TestOrchestratorRunSucceeds(t *testing.T) {
	credDir := t.TempDir()
	var out, errOut bytes.Buffer
	channel := &stubChannel{outcome: executor.Outcome{Success: true}}

	o := newTestOrchestrator(credDir, channel, &out, &errOut)
	if err := o.Run(context.Background(), devInputs()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if o.Phase() != PhaseSucceeded {
		t.Fatalf("Expected PhaseSucceeded, got %v", o.Phase())
	}

	if !strings.Contains(string(channel.script), "CREATE DATABASE IF NOT EXISTS `shop`") {
		t.Fatalf("Expected create-database statement in script, got:\n%s", channel.script)
	}

	credPath := filepath.Join(credDir, "db_credential", "shop_dev.cred")
	content, err := os.ReadFile(credPath)
	if err != nil {
		t.Fatalf("Expected credential file at %s: %v", credPath, err)
	}
	for _, want := range []string{"environment: dev", "database: shop", "user: shop_user", "password: apppw"} {
		if !strings.Contains(string(content), want) {
			t.Fatalf("Credential file missing %q:\n%s", want, content)
		}
	}

	if !strings.Contains(out.String(), `✓ Provisioned database "shop"`) {
		t.Fatalf("Expected success line, got %q", out.String())
	}
	if !strings.Contains(out.String(), credPath) {
		t.Fatalf("Expected credential path in output, got %q", out.String())
	}
}

func TestOrchestratorRunScriptFailure(t *testing.T) {
	credDir := t.TempDir()
	var out, errOut bytes.Buffer
	channel := &stubChannel{outcome: executor.Outcome{
		Success: false,
		Log:     "ERROR 1045 (28000): Access denied for user 'root'@'localhost'",
	}}

	o := newTestOrchestrator(credDir, channel, &out, &errOut)
	err := o.Run(context.Background(), devInputs())
	if err == nil {
		t.Fatal("Expected an error for a failed script")
	}
	if !strings.Contains(err.Error(), `provisioning failed for database "shop"`) {
		t.Fatalf("Unexpected error: %v", err)
	}
	if o.Phase() != PhaseFailed {
		t.Fatalf("Expected PhaseFailed, got %v", o.Phase())
	}

	for _, want := range []string{"ERROR 1045", "Check the following", "docker ps", "CREATE USER and GRANT"} {
		if !strings.Contains(errOut.String(), want) {
			t.Fatalf("Expected %q in diagnostics, got:\n%s", want, errOut.String())
		}
	}

	assertNoCredentialDir(t, credDir)
}

func TestOrchestratorRunChannelError(t *testing.T) {
	credDir := t.TempDir()
	var out, errOut bytes.Buffer
	channel := &stubChannel{err: docker.ErrContainerNotRunning}

	o := newTestOrchestrator(credDir, channel, &out, &errOut)
	err := o.Run(context.Background(), devInputs())
	if !errors.Is(err, docker.ErrContainerNotRunning) {
		t.Fatalf("Expected wrapped channel error, got %v", err)
	}
	if o.Phase() != PhaseFailed {
		t.Fatalf("Expected PhaseFailed, got %v", o.Phase())
	}
	if !strings.Contains(errOut.String(), "Check the following") {
		t.Fatalf("Expected checklist after an execution attempt, got:\n%s", errOut.String())
	}

	assertNoCredentialDir(t, credDir)
}

func TestOrchestratorRunResolutionFailure(t *testing.T) {
	credDir := t.TempDir()
	var out, errOut bytes.Buffer

	channelBuilt := false
	o := NewOrchestrator(Options{
		Locator:  &fakeLocator{},
		LookPath: noClient,
		NewChannel: func(_ *executor.Target) executor.Channel {
			channelBuilt = true
			return &stubChannel{}
		},
		CredDir: credDir,
		Out:     &out,
		ErrOut:  &errOut,
	})

	err := o.Run(context.Background(), devInputs())
	if !errors.Is(err, docker.ErrNoContainerFound) {
		t.Fatalf("Expected ErrNoContainerFound, got %v", err)
	}
	if o.Phase() != PhaseFailed {
		t.Fatalf("Expected PhaseFailed, got %v", o.Phase())
	}
	if channelBuilt {
		t.Fatal("Expected no channel before a target is resolved")
	}
	if strings.Contains(errOut.String(), "Check the following") {
		t.Fatal("Expected no checklist before an execution attempt")
	}

	assertNoCredentialDir(t, credDir)
}

func TestOrchestratorRunInterrupted(t *testing.T) {
	credDir := t.TempDir()
	var out, errOut bytes.Buffer
	channel := &stubChannel{outcome: executor.Outcome{Success: true}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newTestOrchestrator(credDir, channel, &out, &errOut)
	err := o.Run(ctx, devInputs())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if o.Phase() != PhaseFailed {
		t.Fatalf("Expected PhaseFailed, got %v", o.Phase())
	}

	assertNoCredentialDir(t, credDir)
}

func TestOrchestratorRunAppliesUserHostDefault(t *testing.T) {
	credDir := t.TempDir()
	var out, errOut bytes.Buffer
	channel := &stubChannel{outcome: executor.Outcome{Success: true}}

	in := devInputs()
	in.UserHost = ""

	o := newTestOrchestrator(credDir, channel, &out, &errOut)
	if err := o.Run(context.Background(), in); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if !strings.Contains(string(channel.script), "'shop_user'@'%'") {
		t.Fatalf("Expected default user host in script, got:\n%s", channel.script)
	}

	content, err := os.ReadFile(filepath.Join(credDir, "db_credential", "shop_dev.cred"))
	if err != nil {
		t.Fatalf("Failed to read credential file: %v", err)
	}
	if !strings.Contains(string(content), "user_host: %") {
		t.Fatalf("Expected default user host in credential file, got:\n%s", content)
	}
}

func TestOrchestratorVerboseChannelLine(t *testing.T) {
	var out, errOut bytes.Buffer
	channel := &stubChannel{outcome: executor.Outcome{Success: true}}

	o := NewOrchestrator(Options{
		LookPath:   haveClient,
		NewChannel: func(_ *executor.Target) executor.Channel { return channel },
		CredDir:    t.TempDir(),
		Out:        &out,
		ErrOut:     &errOut,
		Verbose:    true,
	})
	if err := o.Run(context.Background(), devInputs()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if !strings.Contains(errOut.String(), "/usr/bin/mysql") {
		t.Fatalf("Expected channel note in verbose output, got %q", errOut.String())
	}
}

func TestPhaseString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseCollectingInputs, "collecting inputs"},
		{PhaseChannelSelected, "channel selected"},
		{PhaseExecuting, "executing"},
		{PhaseSucceeded, "succeeded"},
		{PhaseFailed, "failed"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}
