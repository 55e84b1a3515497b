package jobs

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidJobType      = errors.New("invalid job type")
	ErrInvalidJobPayload   = errors.New("invalid job payload")
	ErrPayloadTypeMismatch = errors.New("payload type mismatch for job type")
)

// PayloadError ties a rejected payload to its job type and, when known, the
// offending field. It unwraps to one of the sentinels above.
type PayloadError struct {
	Type  JobType
	Field string
	Err   error
}

func (e *PayloadError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: field %q", e.Type, e.Err, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }

func payloadErr(t JobType, field string, err error) error {
	return &PayloadError{Type: t, Field: field, Err: err}
}

// IsPermanent reports whether err comes from the job itself rather than a
// dependency, so retrying cannot succeed.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrInvalidJobType) ||
		errors.Is(err, ErrInvalidJobPayload) ||
		errors.Is(err, ErrPayloadTypeMismatch)
}
