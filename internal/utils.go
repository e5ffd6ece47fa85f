package internal

import (
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

const (
	EmailRegexTemplate = `^[\w.\+\.\-]+@([\w\-]+\.)+[\w]{2,}$`
	// MaxNameLength is the longest display name accepted for a user.
	MaxNameLength = 128
	// PasswordHashCost is the bcrypt cost used to hash user passwords.
	PasswordHashCost = 10
)

var emailRegex = regexp.MustCompile(EmailRegexTemplate)

// ValidEmail helper function allows to validate an email address.
func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// HashPassword helper function hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword helper function reports whether password matches the bcrypt
// hash provided.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
