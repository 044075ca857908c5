package account

import "regexp"

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	phoneNoise   = regexp.MustCompile(`[^0-9+]`)
)

// ValidEmail reports whether s looks like local@domain.tld.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidPhone strips everything except digits and '+' and checks for an
// optional leading '+' followed by 10-15 digits. The caller stores the
// original string, not the cleaned one.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(phoneNoise.ReplaceAllString(s, ""))
}

const (
	minPasswordLen = 6
	minNicknameLen = 3
)
