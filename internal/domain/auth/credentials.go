package auth

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minNicknameLen = 2
	maxNicknameLen = 24
	minPasswordLen = 8
	// bcrypt only reads the first 72 bytes.
	maxPasswordBytes = 72
)

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", invalidInput("email is required", nil)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalidInput("invalid email address", err)
	}
	return email, nil
}

// normalizeNickname returns the leaderboard display name for an account.
// Runs of whitespace collapse to one space. Names that could pass for an
// anonymous leaderboard tag are refused.
func normalizeNickname(raw string) (string, error) {
	name := strings.Join(strings.Fields(raw), " ")
	n := utf8.RuneCountInString(name)
	if n < minNicknameLen || n > maxNicknameLen {
		return "", invalidInput(fmt.Sprintf("nickname must be %d to %d characters", minNicknameLen, maxNicknameLen), nil)
	}
	first, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsLetter(first) && !unicode.IsDigit(first) {
		return "", invalidInput("nickname must start with a letter or digit", nil)
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' || r == '.' {
			continue
		}
		return "", invalidInput(fmt.Sprintf("nickname cannot contain %q", r), nil)
	}
	if strings.HasPrefix(strings.ToLower(name), "anonymous") {
		return "", invalidInput("nickname is reserved", nil)
	}
	return name, nil
}

func checkPassword(password string) error {
	switch {
	case utf8.RuneCountInString(password) < minPasswordLen:
		return invalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLen), nil)
	case len(password) > maxPasswordBytes:
		return invalidInput(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes), nil)
	}
	var letter, digit bool
	for _, r := range password {
		letter = letter || unicode.IsLetter(r)
		digit = digit || unicode.IsDigit(r)
	}
	if !letter || !digit {
		return invalidInput("password must contain a letter and a digit", nil)
	}
	return nil
}
