package secret

import (
	"strings"
	"testing"
)

func TestGenerateLengthAndCharset(t *testing.T) {
	t.Parallel()

	password, err := Generate()
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if len(password) != GeneratedLength {
		t.Fatalf("Expected %d characters, got %d (%q)", GeneratedLength, len(password), password)
	}

	for _, ch := range password {
		if !strings.ContainsRune("0123456789abcdef", ch) {
			t.Fatalf("Expected lowercase hex, got %q in %q", ch, password)
		}
	}
}

func TestGenerateIsNotConstant(t *testing.T) {
	t.Parallel()

	first, err := Generate()
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	second, err := Generate()
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if first == second {
		t.Fatalf("Expected distinct passwords, got %q twice", first)
	}
}

func TestGeneratedPasswordValidates(t *testing.T) {
	t.Parallel()

	password, err := Generate()
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if err := Validate(password); err != nil {
		t.Fatalf("Expected generated password to validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "plain", password: "hunter22"},
		{name: "symbols allowed", password: "p@ss w0rd!"},
		{name: "empty", password: "", wantErr: true},
		{name: "forward slash", password: "a/b", wantErr: true},
		{name: "backslash", password: `a\b`, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tt.password)
			if tt.wantErr && err == nil {
				t.Fatalf("Expected error for %q, got nil", tt.password)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Expected %q to validate, got %v", tt.password, err)
			}
		})
	}
}
