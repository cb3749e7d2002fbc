package core

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// NewID returns a new time-ordered (v7) UUID, so that ordering by ID follows creation order.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", errors.Wrap(err, "generating ID")
	}
	return id.String(), nil
}

// IsID reports whether s is a well-formed UUID.
func IsID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
