package temptalk

import "regexp"

var userRefPattern = regexp.MustCompile(`^(?:<@!?(\d+)>|(\d+))$`)

// ParseUserReference extracts the user id from a platform mention ("<@123>",
// "<@!123>") or a bare numeric id. It fails with ErrInvalidReference before
// any guild lookup is attempted.
func ParseUserReference(s string) (string, error) {
	m := userRefPattern.FindStringSubmatch(s)
	if m == nil {
		return "", ErrInvalidReference
	}
	if m[1] != "" {
		return m[1], nil
	}
	return m[2], nil
}
