package wizard

import (
	"fmt"
	"strings"

	"github.com/dbmint/dbmint/internal/secret"
)

// ValidateDatabaseName checks that a database name was entered. Names pass
// through otherwise untouched; quoting happens at script build time, so
// SQL-special characters are legal here.
func ValidateDatabaseName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("database name is required")
	}
	return nil
}

// ValidateUsername checks that a username was entered.
func ValidateUsername(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("username is required")
	}
	return nil
}

// ValidatePassword applies the manual-entry password rules.
func ValidatePassword(password string) error {
	return secret.Validate(password)
}
