package wizard

import "testing"

func TestValidateDatabaseName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple name", "shop", false},
		{"name with backtick", "we`ird", false},
		{"name with dash", "shop-db", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDatabaseName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple name", "shop_user", false},
		{"name with quote", "o'brien", false},
		{"empty", "", true},
		{"whitespace only", "  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	if err := ValidatePassword("s3cret!pass"); err != nil {
		t.Fatalf("Expected valid password, got %v", err)
	}
	if err := ValidatePassword("with/slash"); err == nil {
		t.Fatal("Expected slash to be rejected")
	}
	if err := ValidatePassword(`with\backslash`); err == nil {
		t.Fatal("Expected backslash to be rejected")
	}
	if err := ValidatePassword(""); err == nil {
		t.Fatal("Expected empty password to be rejected")
	}
}
