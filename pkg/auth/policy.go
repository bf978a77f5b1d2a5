package auth

import (
	"strings"
	"unicode"
)

// Policy violation codes, surfaced verbatim in API error responses.
const (
	CodePasswordTooShort         = "PASSWORD_TOO_SHORT"
	CodePasswordWithoutLowercase = "PASSWORD_WITHOUT_LOWERCASE"
	CodePasswordWithoutUppercase = "PASSWORD_WITHOUT_UPPERCASE"
	CodePasswordWithoutNumber    = "PASSWORD_WITHOUT_NUMBER"
	CodePasswordWithoutSpecial   = "PASSWORD_WITHOUT_SPECIAL_CHARACTER"
)

// PolicyError reports every unmet password rule at once.
type PolicyError struct {
	Codes []string
}

// Error lists the violation codes.
func (e *PolicyError) Error() string {
	return "password does not meet policy: " + strings.Join(e.Codes, ", ")
}

// PasswordValidator checks a candidate password against a complexity policy.
type PasswordValidator interface {
	// Validate returns nil or a *PolicyError carrying all violations.
	Validate(password string) error
}

// PolicyValidator is the default complexity policy: minimum length plus one
// character from each class.
type PolicyValidator struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
	RequireSpecial   bool
}

// NewPolicyValidator creates the default policy (8+ chars, all classes).
func NewPolicyValidator() *PolicyValidator {
	return &PolicyValidator{
		MinLength:        8,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireNumber:    true,
		RequireSpecial:   true,
	}
}

// Validate checks the password and collects every violation.
func (p *PolicyValidator) Validate(password string) error {
	var codes []string

	if p.MinLength > 0 && len(password) < p.MinLength {
		codes = append(codes, CodePasswordTooShort)
	}
	if p.RequireLowercase && !containsClass(password, unicode.IsLower) {
		codes = append(codes, CodePasswordWithoutLowercase)
	}
	if p.RequireUppercase && !containsClass(password, unicode.IsUpper) {
		codes = append(codes, CodePasswordWithoutUppercase)
	}
	if p.RequireNumber && !containsClass(password, unicode.IsDigit) {
		codes = append(codes, CodePasswordWithoutNumber)
	}
	if p.RequireSpecial && !containsClass(password, isSpecial) {
		codes = append(codes, CodePasswordWithoutSpecial)
	}

	if len(codes) > 0 {
		return &PolicyError{Codes: codes}
	}
	return nil
}

func containsClass(s string, class func(rune) bool) bool {
	for _, r := range s {
		if class(r) {
			return true
		}
	}
	return false
}

func isSpecial(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r)
}
