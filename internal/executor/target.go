package executor

import (
	"context"
	"errors"
	"os/exec"

	"github.com/dbmint/dbmint/internal/docker"
)

// ErrClientUnavailable means no mysql client binary is on PATH and no
// container could take its place.
var ErrClientUnavailable = errors.New("mysql client binary not found on PATH")

// Kind selects an execution channel variant.
type Kind int

const (
	KindDirect Kind = iota
	KindContainer
)

func (k Kind) String() string {
	if k == KindContainer {
		return "containerized"
	}
	return "direct"
}

// Target is where and how the provisioning script runs. ResolveTarget
// builds it exactly once per invocation; nothing mutates it afterwards.
type Target struct {
	Kind  Kind
	Admin AdminCredentials

	// ClientPath is the resolved mysql binary for the direct channel.
	ClientPath string

	// Container is the exec target for the containerized channel.
	Container docker.ContainerRef

	// InnerHost is the host the in-container client connects to. A pinned
	// container addresses its own server as localhost; a discovered
	// container addresses the resolved host.
	InnerHost string
}

// ResolveOptions carries the inputs for target resolution.
type ResolveOptions struct {
	Admin AdminCredentials

	// ContainerHint pins execution to a configured container.
	ContainerHint string

	Locator Locator

	// Pick is consulted when discovery returns more than one candidate. It
	// returns the raw selection input: a 1-based index, a name, or empty
	// for the first entry. When nil the first candidate is taken.
	Pick func(candidates []docker.ContainerRef) (string, error)

	// LookPath defaults to exec.LookPath.
	LookPath func(file string) (string, error)
}

// ResolveTarget decides the execution channel for this invocation. The
// precedence is fixed: a configured container hint wins, then a local
// client binary, then a discovered container. Liveness of the chosen
// container is not checked here; the channel re-validates immediately
// before use.
func ResolveTarget(ctx context.Context, opts ResolveOptions) (*Target, error) {
	if opts.ContainerHint != "" {
		return &Target{
			Kind:      KindContainer,
			Admin:     opts.Admin,
			Container: docker.ContainerRef{Name: opts.ContainerHint},
			InnerHost: "localhost",
		}, nil
	}

	lookPath := opts.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if path, err := lookPath(clientBinary); err == nil {
		return &Target{
			Kind:       KindDirect,
			Admin:      opts.Admin,
			ClientPath: path,
		}, nil
	}

	if opts.Locator == nil {
		return nil, ErrClientUnavailable
	}

	candidates, err := opts.Locator.ListCandidates(ctx)
	if err != nil {
		return nil, err
	}

	switch len(candidates) {
	case 0:
		return nil, docker.ErrNoContainerFound
	case 1:
		return discoveredTarget(opts.Admin, candidates[0]), nil
	}

	if opts.Pick == nil {
		return discoveredTarget(opts.Admin, candidates[0]), nil
	}
	input, err := opts.Pick(candidates)
	if err != nil {
		return nil, err
	}
	return discoveredTarget(opts.Admin, docker.Choose(candidates, input)), nil
}

func discoveredTarget(admin AdminCredentials, ref docker.ContainerRef) *Target {
	return &Target{
		Kind:      KindContainer,
		Admin:     admin,
		Container: ref,
		InnerHost: admin.Host,
	}
}
