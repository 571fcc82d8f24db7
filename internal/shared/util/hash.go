package util

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strings"
)

// HashUserKey returns a filesystem-safe identifier for a user ID.
func HashUserKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// OwnsKey reports whether storageKey lives under the user's namespace.
func OwnsKey(userID, storageKey string) bool {
	if userID == "" || storageKey == "" {
		return false
	}
	clean := path.Clean(strings.ReplaceAll(storageKey, "\\", "/"))
	if clean != storageKey || strings.HasPrefix(clean, "/") {
		return false
	}
	dir, file := path.Split(clean)
	return file != "" && dir == HashUserKey(userID)+"/"
}
