package postconfig

import (
	"errors"
	"fmt"
)

// ErrRecordMissing reports that the configuration row is absent, which means
// Initialize was never run against this database.
var ErrRecordMissing = errors.New("post configuration record missing")

// StorageError wraps a failure of the backing database.
type StorageError struct {
	Op    string
	Field Field
	Err   error
}

func (e *StorageError) Error() string {
	if e.Field != 0 {
		return fmt.Sprintf("postconfig: %s %s: %v", e.Op, e.Field, e.Err)
	}
	return fmt.Sprintf("postconfig: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Code is used as err_code in handler logs.
func (e *StorageError) Code() string { return "STORAGE_ERROR" }

// InvalidFieldError reports a field outside the closed set, or a value of the
// wrong kind for a field. It signals a programming error.
type InvalidFieldError struct {
	Field Field
	Name  string
	Kind  string
}

func (e *InvalidFieldError) Error() string {
	switch {
	case e.Name != "":
		return fmt.Sprintf("postconfig: unknown field %q", e.Name)
	case e.Kind != "":
		return fmt.Sprintf("postconfig: field %s does not accept a %s value", e.Field, e.Kind)
	}
	return fmt.Sprintf("postconfig: unknown field %d", int(e.Field))
}

// Code is used as err_code in handler logs.
func (e *InvalidFieldError) Code() string { return "INVALID_FIELD" }

// IsInvalidField reports whether err is or wraps an InvalidFieldError.
func IsInvalidField(err error) bool {
	var target *InvalidFieldError
	return errors.As(err, &target)
}
