package oemcert

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyToken     = errors.New("empty token")
	ErrMissingResults = errors.New("response has no results field")
	ErrMissingDevice  = errors.New("probe has a certificate but no device")
	ErrMissingSerial  = errors.New("probe device has no serial")
)

// StatusError is returned by Query when the API answers with anything
// other than 200 OK.
type StatusError struct {
	StatusCode int
	Status     string // e.g. "403 Forbidden"
	Body       string // first few KiB of the body
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response status: %s", e.Status)
}
