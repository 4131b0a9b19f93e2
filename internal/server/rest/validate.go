package rest

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/lifedesk/internal/common"
	"github.com/google/uuid"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores anything longer
	maxNameLength     = 100
	maxFieldLength    = 255
	maxNotesLength    = 2000
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, fmt.Sprintf(format, args...))
}

// normalizeEmail trims and lowercases an address and rejects anything that
// is not a bare addr-spec.
func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", invalid("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email is not valid")
	}
	return email, nil
}

func requireText(field, raw string, max int) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", invalid("%s is required", field)
	}
	return optionalText(field, v, max)
}

func optionalText(field, raw string, max int) (string, error) {
	v := strings.TrimSpace(raw)
	if utf8.RuneCountInString(v) > max {
		return "", invalid("%s must be at most %d characters", field, max)
	}
	return v, nil
}

func newPassword(raw string) (string, error) {
	switch n := len(raw); {
	case n < minPasswordLength:
		return "", invalid("password must be at least %d characters", minPasswordLength)
	case n > maxPasswordLength:
		return "", invalid("password must be at most %d bytes", maxPasswordLength)
	}
	return raw, nil
}

func requirePassword(raw string) (string, error) {
	if raw == "" {
		return "", invalid("password is required")
	}
	return raw, nil
}

func requireID(field, raw string) (string, error) {
	if _, err := uuid.Parse(raw); err != nil {
		return "", invalid("%s is not a valid id", field)
	}
	return raw, nil
}
