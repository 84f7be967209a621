package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dbmint/dbmint/internal/sqlgen"
)

// DirectChannel invokes the local mysql client over TCP. The admin
// credentials travel in a transient option file that is removed on every
// exit path, including cancellation.
type DirectChannel struct {
	Target *Target
}

func (d *DirectChannel) Execute(ctx context.Context, script sqlgen.Script) (Outcome, error) {
	optionFile, err := writeOptionFile(d.Target.Admin)
	if err != nil {
		return Outcome{}, err
	}
	defer func() { _ = os.Remove(optionFile) }()

	clientPath := d.Target.ClientPath
	if clientPath == "" {
		clientPath = clientBinary
	}

	// --defaults-extra-file must be the first argument the client sees.
	cmd := exec.CommandContext(ctx, clientPath,
		"--defaults-extra-file="+optionFile, "--protocol=tcp", "--batch")
	cmd.Stdin = strings.NewReader(string(script))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Outcome{Success: false, Log: stderr.String()}, nil
		}
		return Outcome{}, fmt.Errorf("failed to run %s: %w", clientPath, err)
	}
	return Outcome{Success: true, Log: stderr.String()}, nil
}

// writeOptionFile creates an owner-only [client] section holding host,
// user, and password. os.CreateTemp already creates the file mode 0600.
func writeOptionFile(admin AdminCredentials) (string, error) {
	f, err := os.CreateTemp("", "dbmint-client-*.cnf")
	if err != nil {
		return "", fmt.Errorf("failed to create option file: %w", err)
	}

	var b strings.Builder
	b.WriteString("[client]\n")
	fmt.Fprintf(&b, "host=%s\n", quoteOptionValue(admin.Host))
	fmt.Fprintf(&b, "user=%s\n", quoteOptionValue(admin.User))
	if admin.Password != "" {
		fmt.Fprintf(&b, "password=%s\n", quoteOptionValue(admin.Password))
	}

	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write option file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to close option file: %w", err)
	}
	return f.Name(), nil
}

// quoteOptionValue double-quotes an option value, escaping backslashes and
// quotes the way the client's option parser expects.
func quoteOptionValue(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}
