package domain

import "fmt"

// ConflictError is returned by repositories when a unique index rejects a write
// that passed the application-level uniqueness checks.
type ConflictError struct {
	Entity string
	Field  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Entity, e.Field)
}
