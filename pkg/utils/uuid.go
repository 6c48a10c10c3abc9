package utils

import (
	"path/filepath"

	"github.com/google/uuid"
)

// GenerateUUID returns a random (v4) UUID string.
func GenerateUUID() string {
	return uuid.NewString()
}

// IsUUID reports whether s parses as a UUID.
func IsUUID(s string) bool {
	return uuid.Validate(s) == nil
}

// TempPath builds a collision-free file path in dir: prefix-<uuid>ext.
func TempPath(dir, prefix, ext string) string {
	return filepath.Join(dir, prefix+"-"+GenerateUUID()+ext)
}
