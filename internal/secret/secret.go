// Package secret generates and validates user passwords.
package secret

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// GeneratedLength is the length of a generated password in characters.
const GeneratedLength = 32

// Generate returns a new random password: 16 bytes from the system CSPRNG,
// hex encoded. There is no fallback generator; if the CSPRNG fails the run
// fails.
func Generate() (string, error) {
	buf := make([]byte, GeneratedLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Validate checks a manually entered password. Slashes and backslashes are
// rejected; they do not survive the quoting layers between the option file,
// the shell, and the server.
func Validate(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if strings.ContainsAny(password, `/\`) {
		return fmt.Errorf("password must not contain / or \\")
	}
	return nil
}
