package login

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// PasswordPolicy defines the requirements for password complexity
type PasswordPolicy struct {
	MinLength          int
	RequireUppercase   bool
	RequireLowercase   bool
	RequireDigit       bool
	RequireSpecialChar bool
	MaxRepeatedChars   int
}

// DefaultPasswordPolicy only enforces a minimum length of six characters.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: 6}
}

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// Check returns every rule the password breaks, or nil.
func (p PasswordPolicy) Check(password string) []string {
	var reasons []string
	if utf8.RuneCountInString(password) < p.MinLength {
		reasons = append(reasons, fmt.Sprintf("password must be at least %d characters long", p.MinLength))
	}
	if p.RequireUppercase && !upperRe.MatchString(password) {
		reasons = append(reasons, "password must contain at least one uppercase letter")
	}
	if p.RequireLowercase && !lowerRe.MatchString(password) {
		reasons = append(reasons, "password must contain at least one lowercase letter")
	}
	if p.RequireDigit && !digitRe.MatchString(password) {
		reasons = append(reasons, "password must contain at least one digit")
	}
	if p.RequireSpecialChar && !specialRe.MatchString(password) {
		reasons = append(reasons, "password must contain at least one special character")
	}
	if p.MaxRepeatedChars > 0 && hasRepeatedChars(password, p.MaxRepeatedChars+1) {
		reasons = append(reasons, fmt.Sprintf("password cannot contain more than %d consecutive repeated characters", p.MaxRepeatedChars))
	}
	return reasons
}

// hasRepeatedChars reports whether some character repeats n times in a row.
func hasRepeatedChars(password string, n int) bool {
	for i := 0; i+n <= len(password); i++ {
		if strings.Count(password[i:i+n], string(password[i])) == n {
			return true
		}
	}
	return false
}
