package http

import (
	"net/mail"
	"unicode/utf8"
)

// Field constraints carried over from the account wire contract: username
// 3-20 characters, email RFC-shaped and at most 50 characters, password 6-40
// characters on sign-up.
const (
	usernameMinLen = 3
	usernameMaxLen = 20
	emailMaxLen    = 50
	passwordMinLen = 6
	passwordMaxLen = 40
)

func validUsername(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= usernameMinLen && n <= usernameMaxLen
}

func validEmail(s string) bool {
	if s == "" || utf8.RuneCountInString(s) > emailMaxLen {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// Reject display-name forms like "Alice <a@x.com>".
	return addr.Address == s
}

func validPassword(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= passwordMinLen && n <= passwordMaxLen
}
