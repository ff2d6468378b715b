package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jimezsa/imsctl/internal/network"
)

var ErrNotFound = errors.New("record not found")

// FetchError reports a read (list or get) that the API answered with a
// non-success status or an undecodable body.
type FetchError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s %s: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s %s: http %d", e.Method, e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() []error {
	if e.Err != nil {
		return []error{network.ErrRequestFailed, e.Err}
	}
	return []error{network.ErrRequestFailed}
}

func (e *FetchError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// SubmitError reports a write (create, update, delete, upload) that the API
// rejected.
type SubmitError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *SubmitError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("submit %s %s: http %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("submit %s %s: http %d", e.Method, e.URL, e.StatusCode)
}

func (e *SubmitError) Unwrap() error {
	return network.ErrRequestFailed
}

func (e *SubmitError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// NetworkError reports a request that never produced a response.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusCode extracts the HTTP status from an API error, or 0.
func StatusCode(err error) int {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode
	}
	var submitErr *SubmitError
	if errors.As(err, &submitErr) {
		return submitErr.StatusCode
	}
	return 0
}
