// Package executor runs provisioning SQL against a resolved target, either
// by invoking the local mysql client or by exec'ing into a running
// container. The admin password never appears on a command line: the direct
// channel passes it through a transient option file and the containerized
// channel through the exec'd process environment.
package executor

import (
	"context"

	"github.com/dbmint/dbmint/internal/docker"
	"github.com/dbmint/dbmint/internal/sqlgen"
)

const clientBinary = "mysql"

// AdminCredentials is the privileged account used to run provisioning,
// distinct from the application user being created.
type AdminCredentials struct {
	Host     string
	User     string
	Password string
}

// Outcome is the result of attempting a script: whether the client exited
// zero, plus everything it wrote to stderr.
type Outcome struct {
	Success bool
	Log     string
}

// Channel runs a SQL batch against its target. A non-nil error means the
// channel could not attempt execution at all; a client that ran and failed
// is reported through Outcome, never through the error.
type Channel interface {
	Execute(ctx context.Context, script sqlgen.Script) (Outcome, error)
}

// Locator is the container discovery surface consumed during resolution and
// by the containerized channel's pre-execution liveness check.
type Locator interface {
	ListCandidates(ctx context.Context) ([]docker.ContainerRef, error)
	IsRunning(ctx context.Context, ref docker.ContainerRef) (bool, error)
}

// NewChannel builds the channel for a resolved target.
func NewChannel(target *Target) Channel {
	if target.Kind == KindContainer {
		return &ContainerChannel{Target: target, Locator: docker.NewLocator()}
	}
	return &DirectChannel{Target: target}
}
