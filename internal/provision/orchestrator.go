// Package provision drives a single provisioning run: select an execution
// channel, run the generated script, and commit the credential file.
package provision

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/dbmint/dbmint/internal/config"
	"github.com/dbmint/dbmint/internal/credfile"
	"github.com/dbmint/dbmint/internal/docker"
	"github.com/dbmint/dbmint/internal/executor"
	"github.com/dbmint/dbmint/internal/sqlgen"
)

// Phase tracks how far a run has progressed. Failures after PhaseExecuting
// carry server diagnostics; failures before it are setup problems.
type Phase int

const (
	PhaseCollectingInputs Phase = iota
	PhaseChannelSelected
	PhaseExecuting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseChannelSelected:
		return "channel selected"
	case PhaseExecuting:
		return "executing"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "collecting inputs"
	}
}

// Inputs is everything a run needs, fully resolved. No prompting happens
// past this point.
type Inputs struct {
	Environment config.Environment

	Host          string
	AdminUser     string
	AdminPassword string
	ContainerHint string

	Database string
	Username string
	UserHost string
	Password string

	// Generated marks the password as machine-generated, which changes the
	// success message but nothing else.
	Generated bool

	GrantFull bool
}

// Options configures a run. Zero values select the production defaults.
type Options struct {
	Locator  executor.Locator
	Pick     func(candidates []docker.ContainerRef) (string, error)
	LookPath func(file string) (string, error)

	// NewChannel defaults to executor.NewChannel.
	NewChannel func(target *executor.Target) executor.Channel

	// CredDir is where the db_credential directory is created. Defaults to
	// the current directory.
	CredDir string

	Out    io.Writer
	ErrOut io.Writer

	Now func() time.Time

	Verbose bool
}

// Orchestrator runs provisioning once. It is not safe for concurrent use;
// create one per run.
type Orchestrator struct {
	opts  Options
	phase Phase
}

func NewOrchestrator(opts Options) *Orchestrator {
	if opts.NewChannel == nil {
		opts.NewChannel = executor.NewChannel
	}
	if opts.CredDir == "" {
		opts.CredDir = "."
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{opts: opts, phase: PhaseCollectingInputs}
}

// Phase reports the state the last Run reached.
func (o *Orchestrator) Phase() Phase {
	return o.phase
}

// Run executes provisioning end to end. On failure nothing is written under
// CredDir; the credential file appears only after the script succeeded.
func (o *Orchestrator) Run(ctx context.Context, in Inputs) error {
	if in.UserHost == "" {
		in.UserHost = sqlgen.DefaultUserHost
	}

	target, err := executor.ResolveTarget(ctx, executor.ResolveOptions{
		Admin: executor.AdminCredentials{
			Host:     in.Host,
			User:     in.AdminUser,
			Password: in.AdminPassword,
		},
		ContainerHint: in.ContainerHint,
		Locator:       o.opts.Locator,
		Pick:          o.opts.Pick,
		LookPath:      o.opts.LookPath,
	})
	if err != nil {
		o.phase = PhaseFailed
		return fmt.Errorf("failed to select an execution channel: %w", err)
	}
	o.phase = PhaseChannelSelected

	if o.opts.Verbose {
		switch target.Kind {
		case executor.KindDirect:
			fmt.Fprintf(o.opts.ErrOut, "ℹ️  Using local mysql client at %s\n", target.ClientPath)
		case executor.KindContainer:
			fmt.Fprintf(o.opts.ErrOut, "ℹ️  Running through container %q\n", target.Container.Name)
		}
	}

	script := sqlgen.BuildScript(sqlgen.Request{
		Database:  in.Database,
		Username:  in.Username,
		UserHost:  in.UserHost,
		Password:  in.Password,
		GrantFull: in.GrantFull,
	})

	channel := o.opts.NewChannel(target)
	o.phase = PhaseExecuting

	outcome, err := channel.Execute(ctx, script)
	if ctxErr := ctx.Err(); ctxErr != nil {
		o.phase = PhaseFailed
		return fmt.Errorf("provisioning interrupted: %w", ctxErr)
	}
	if err != nil {
		o.phase = PhaseFailed
		o.printFailure(in, "")
		return fmt.Errorf("failed to execute provisioning script: %w", err)
	}
	if !outcome.Success {
		o.phase = PhaseFailed
		o.printFailure(in, outcome.Log)
		return fmt.Errorf("provisioning failed for database %q", in.Database)
	}

	path, err := credfile.Write(o.opts.CredDir, credfile.Record{
		Environment: string(in.Environment),
		Host:        in.Host,
		Database:    in.Database,
		User:        in.Username,
		UserHost:    in.UserHost,
		Password:    in.Password,
	}, o.opts.Now())
	if err != nil {
		o.phase = PhaseFailed
		return fmt.Errorf("provisioned %q but failed to save credentials: %w", in.Database, err)
	}

	o.phase = PhaseSucceeded
	color.New(color.FgGreen).Fprintf(o.opts.Out, "✓ Provisioned database %q with user %s@%s\n",
		in.Database, in.Username, in.UserHost)
	fmt.Fprintf(o.opts.Out, "Credentials saved to %s\n", path)
	if in.Generated {
		fmt.Fprintln(o.opts.Out, "The generated password is stored in the credential file.")
	}
	return nil
}

// printFailure emits the server diagnostics, when any were captured,
// followed by the troubleshooting checklist.
func (o *Orchestrator) printFailure(in Inputs, log string) {
	errOut := o.opts.ErrOut
	if trimmed := strings.TrimRight(log, "\n"); trimmed != "" {
		fmt.Fprintln(errOut, trimmed)
	}
	color.New(color.FgRed).Fprintf(errOut, "✗ Provisioning failed for database %q\n", in.Database)
	fmt.Fprintln(errOut, "Check the following:")
	fmt.Fprintf(errOut, "  1. The admin password for %s is correct\n", in.AdminUser)
	fmt.Fprintf(errOut, "  2. The MySQL server is reachable at %s\n", in.Host)
	fmt.Fprintln(errOut, "  3. The admin account can CREATE USER and GRANT")
	fmt.Fprintln(errOut, "  4. The container is running (docker ps)")
	fmt.Fprintln(errOut, "  5. The mysql client exists inside the container")
}
