package auth

import (
	"encoding/base32"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ResetTokenPrefix starts every password reset token
const ResetTokenPrefix = "reset-token-"

var (
	errMalformedResetToken = errors.New("malformed reset token")

	// base32 keeps the user segment free of the '-' separator
	userEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// NewResetToken returns an opaque single use token naming userID.
// Format: reset-token-<base32 user id>-<random uuid>.
func NewResetToken(userID string) string {
	return ResetTokenPrefix + userEncoding.EncodeToString([]byte(userID)) + "-" + uuid.New().String()
}

// ParseResetToken checks the token shape and returns the user id it names.
// It does not check whether the token was ever issued.
func ParseResetToken(token string) (string, error) {
	if !strings.HasPrefix(token, ResetTokenPrefix) {
		return "", errMalformedResetToken
	}

	parts := strings.SplitN(strings.TrimPrefix(token, ResetTokenPrefix), "-", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", errMalformedResetToken
	}

	if _, err := uuid.Parse(parts[1]); err != nil {
		return "", errMalformedResetToken
	}

	raw, err := userEncoding.DecodeString(parts[0])
	if err != nil || len(raw) == 0 {
		return "", errMalformedResetToken
	}

	return string(raw), nil
}
