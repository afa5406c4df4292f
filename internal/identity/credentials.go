// Package identity provides credential hashing and the input validation
// rules applied at signup. All functions are pure with respect to their
// inputs; the only nondeterminism is the per-call bcrypt salt.
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword derives a salted bcrypt digest from the plaintext password.
// The salt is generated per call, so hashing the same input twice yields
// different credentials.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether the plaintext password matches the stored
// credential. The comparison is constant time.
func VerifyPassword(plain, credential string) bool {
	return bcrypt.CompareHashAndPassword([]byte(credential), []byte(plain)) == nil
}

// ValidateEmail checks the local@domain.tld shape: a non-empty local part,
// exactly one separating @, and a domain with an interior dot.
func ValidateEmail(s string) bool {
	at := strings.LastIndex(s, "@")
	if at <= 0 {
		return false
	}
	domain := s[at+1:]
	dot := strings.LastIndex(domain, ".")
	if dot <= 0 || dot == len(domain)-1 {
		return false
	}
	return !strings.ContainsAny(s, " \t\r\n")
}

// ValidatePasswordStrength applies the signup password policy and returns
// the first failing rule as the reason.
func ValidatePasswordStrength(s string) (bool, string) {
	if len(s) < 8 {
		return false, "password must be at least 8 characters"
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	switch {
	case !hasUpper:
		return false, "password must contain an uppercase letter"
	case !hasLower:
		return false, "password must contain a lowercase letter"
	case !hasDigit:
		return false, "password must contain a digit"
	}

	return true, ""
}
