// Package credfile persists provisioning results to owner-only credential
// files under db_credential/.
package credfile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Dir is the artifact directory, relative to the base directory.
const Dir = "db_credential"

// Record is the credential set written after a successful provisioning run.
type Record struct {
	Environment string
	Host        string
	Database    string
	User        string
	UserHost    string
	Password    string
}

// Write persists the record to db_credential/<database>_<environment>.cred
// under baseDir, overwriting any previous artifact for the same database
// and environment. The directory ends up mode 0700 and the file mode 0600
// even when either already existed with looser permissions.
func Write(baseDir string, rec Record, now time.Time) (string, error) {
	dir := filepath.Join(baseDir, Dir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to restrict %s: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.cred", rec.Database, rec.Environment))
	body := fmt.Sprintf(
		"created_at: %s\nenvironment: %s\nhost: %s\ndatabase: %s\nuser: %s\nuser_host: %s\npassword: %s\n",
		now.UTC().Format(time.RFC3339),
		rec.Environment,
		rec.Host,
		rec.Database,
		rec.User,
		rec.UserHost,
		rec.Password,
	)

	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return "", fmt.Errorf("failed to restrict %s: %w", path, err)
	}
	return path, nil
}
