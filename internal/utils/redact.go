package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SessionTag is a short stable fingerprint of a session id, safe to log.
func SessionTag(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(id))
	return "s-" + hex.EncodeToString(sum[:4])
}
