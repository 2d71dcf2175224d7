package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashRefreshToken returns the SHA-256 digest of a refresh token string.
// Refresh tokens are persisted only in this form so a leaked table does not
// yield usable session credentials.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
