// internal/common/validation/contact.go
package validation

import "regexp"

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	// SNS delivers only to E.164 numbers: a leading plus, a non-zero first
	// digit, then six to fourteen more digits.
	phonePattern = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)
)

// ValidateEmail reports whether the address is well formed enough to hand to
// SES. Deliverability is SES's problem, not ours.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone reports whether the number is E.164 and usable for SMS.
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
