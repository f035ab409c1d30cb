package validation

import (
	"unicode"
	"unicode/utf8"
)

// IsValidUsername: at least two characters, letters and digits only.
func IsValidUsername(username string) bool {
	if utf8.RuneCountInString(username) < 2 {
		return false
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// IsValidPassword enforces:
// - at least 8 characters
// - contains at least one number
func IsValidPassword(password string) bool {
	if utf8.RuneCountInString(password) < 8 {
		return false
	}
	for _, r := range password {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
