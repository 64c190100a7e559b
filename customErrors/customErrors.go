package customErrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("NOT FOUND")
	ErrInvalidInput = errors.New("INVALID INPUT")
	ErrConflict     = errors.New("CONFLICT")
	ErrInternal     = errors.New("INTERNAL")
)

// ErrorResponse is the structured failure the storage layer returns. Code is
// always one of the sentinel errors above, so errors.Is works on results from
// every layer.
type ErrorResponse struct {
	Code    error  `json:"-"`
	Message string `json:"message"`
}

func (e ErrorResponse) Error() string {
	return fmt.Sprintf("code: %s, message: %s", e.Code, e.Message)
}

func (e ErrorResponse) Unwrap() error {
	return e.Code
}
