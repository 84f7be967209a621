package docker

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// serverNameTokens mark a container name as a MySQL-compatible server.
// Matching is a case-insensitive substring test, so image-derived names
// like "myapp_mysql_1" or "MariaDB-test" qualify.
var serverNameTokens = []string{"mysql", "mariadb"}

// Locator finds candidate server containers via the docker CLI.
type Locator struct {
	runner Runner
}

// NewLocator returns a locator backed by the real docker binary.
func NewLocator() *Locator {
	return &Locator{runner: cliRunner{}}
}

// NewLocatorWithRunner substitutes the CLI invocation, for tests.
func NewLocatorWithRunner(r Runner) *Locator {
	return &Locator{runner: r}
}

// ListCandidates returns the names of running containers whose name
// suggests a MySQL-compatible server, in the order docker reports them.
func (l *Locator) ListCandidates(ctx context.Context) ([]ContainerRef, error) {
	out, err := l.runner.Output(ctx, "ps", "--filter", "status=running", "--format", "{{.Names}}")
	if err != nil {
		return nil, err
	}

	var refs []ContainerRef
	for _, line := range strings.Split(string(out), "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		lower := strings.ToLower(name)
		for _, token := range serverNameTokens {
			if strings.Contains(lower, token) {
				refs = append(refs, ContainerRef{Name: name})
				break
			}
		}
	}
	return refs, nil
}

// IsRunning reports the point-in-time state of a single container. A name
// docker does not recognize counts as not running; only an unusable docker
// CLI is an error.
func (l *Locator) IsRunning(ctx context.Context, ref ContainerRef) (bool, error) {
	out, err := l.runner.Output(ctx, "inspect", "-f", "{{.State.Running}}", ref.Name)
	if err != nil {
		if errors.Is(err, ErrDockerUnavailable) {
			return false, err
		}
		return false, nil
	}
	return strings.TrimSpace(string(out)) == "true", nil
}

// Choose resolves selection input against an ordered candidate list. Input
// may be a 1-based index or a container name; empty input picks the first
// candidate. Anything matching neither is accepted verbatim as a name and
// left for the pre-execution liveness check to reject.
func Choose(candidates []ContainerRef, input string) ContainerRef {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		if len(candidates) > 0 {
			return candidates[0]
		}
		return ContainerRef{}
	}

	if n, err := strconv.Atoi(trimmed); err == nil && n >= 1 && n <= len(candidates) {
		return candidates[n-1]
	}

	for _, candidate := range candidates {
		if candidate.Name == trimmed {
			return candidate
		}
	}
	return ContainerRef{Name: trimmed}
}
