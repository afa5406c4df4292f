package identity

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	credential, err := HashPassword("Sup3rsafe")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	if credential == "Sup3rsafe" {
		t.Fatal("credential must not equal the plaintext")
	}

	if !VerifyPassword("Sup3rsafe", credential) {
		t.Fatal("expected original password to verify")
	}

	if VerifyPassword("Sup3rsafa", credential) {
		t.Fatal("expected different password to fail verification")
	}
}

func TestHashPasswordSaltsPerCall(t *testing.T) {
	first, err := HashPassword("Sup3rsafe")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	second, err := HashPassword("Sup3rsafe")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	if first == second {
		t.Fatal("expected distinct credentials for repeated hashing")
	}
}

func TestValidateEmail(t *testing.T) {
	cases := []struct {
		email string
		valid bool
	}{
		{"fan@example.com", true},
		{"first.last@sub.example.co", true},
		{"missing-at.example.com", false},
		{"@example.com", false},
		{"fan@example", false},
		{"fan@example.", false},
		{"fan@.com", false},
		{"", false},
		{"fan name@example.com", false},
	}

	for _, tc := range cases {
		if got := ValidateEmail(tc.email); got != tc.valid {
			t.Errorf("ValidateEmail(%q) = %v, want %v", tc.email, got, tc.valid)
		}
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	cases := []struct {
		name     string
		password string
		valid    bool
		reason   string
	}{
		{"ok", "Str0ngpass", true, ""},
		{"too short", "Ab1", false, "password must be at least 8 characters"},
		{"no uppercase", "weakpass1", false, "password must contain an uppercase letter"},
		{"no lowercase", "WEAKPASS1", false, "password must contain a lowercase letter"},
		{"no digit", "Weakpassword", false, "password must contain a digit"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			valid, reason := ValidatePasswordStrength(tc.password)
			if valid != tc.valid {
				t.Fatalf("expected valid=%v got %v", tc.valid, valid)
			}
			if reason != tc.reason {
				t.Fatalf("expected reason %q got %q", tc.reason, reason)
			}
		})
	}
}
