// Package uuid wraps google/uuid for the identifiers stored in the database.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a version 7 UUID. Its leading bits are a millisecond
// timestamp, so ids sort by creation time.
func New() string {
	if id, err := googleuuid.NewV7(); err == nil {
		return id.String()
	}
	return googleuuid.NewString()
}

// Parse accepts any RFC 4122 spelling and returns the canonical lowercase
// form, which is how ids are stored.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid reports whether s parses as a UUID.
func IsValid(s string) bool {
	return googleuuid.Validate(s) == nil
}
