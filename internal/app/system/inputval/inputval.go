// internal/app/system/inputval/inputval.go

// Package inputval validates request input before it reaches a store.
package inputval

import (
	"net/mail"
	"strings"
)

// IsValidEmail reports whether s is a bare RFC 5322 address ("a@b"),
// with no display name and no surrounding junk. Single-label domains are
// allowed (useful for dev/test environments).
func IsValidEmail(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// ParseAddress accepts "Name <a@b>" forms; we only want the bare
	// address itself.
	return addr.Name == "" && addr.Address == s
}
