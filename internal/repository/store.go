package repository

import (
	"context"
	"errors"
)

var (
	// ErrKeyNotFound is returned by Load when nothing was saved under the key.
	ErrKeyNotFound = errors.New("repository: key not found")
	// ErrCorruptValue is returned by Load when the stored value cannot be decoded.
	ErrCorruptValue = errors.New("repository: stored value is corrupt")
)

// Keys used by the application.
const (
	KeyTasks = "tasks"
	KeyUsers = "users"
	KeyTeams = "teams"
)

// FilterKey is the key under which a user's board filter is kept.
func FilterKey(userID string) string {
	return "filters:" + userID
}

// Store persists JSON documents by key.
type Store interface {
	// Load decodes the value saved under key into dest.
	Load(ctx context.Context, key string, dest any) error

	// Save encodes value and stores it under key, replacing any previous value.
	Save(ctx context.Context, key string, value any) error
}

// IsMissing reports whether err means "no usable value": absent or corrupt.
func IsMissing(err error) bool {
	return errors.Is(err, ErrKeyNotFound) || errors.Is(err, ErrCorruptValue)
}
