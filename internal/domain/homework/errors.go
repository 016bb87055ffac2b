package homework

import (
	"errors"
	"fmt"
)

// ErrFetch is the class of every failure to obtain a usable response from the API.
var ErrFetch = errors.New("fetch failed")

// ErrFormat is the class of every failure caused by an unexpected payload shape.
var ErrFormat = errors.New("unexpected response format")

var (
	ErrMissingField  = fmt.Errorf("%w: missing field", ErrFormat)
	ErrWrongShape    = fmt.Errorf("%w: wrong shape", ErrFormat)
	ErrUnknownStatus = fmt.Errorf("%w: unknown status", ErrFormat)
)

// FetchErrorKind tells apart the ways a fetch can fail.
type FetchErrorKind string

const (
	FetchKindTransport FetchErrorKind = "transport"
	FetchKindStatus    FetchErrorKind = "status"
	FetchKindAPIError  FetchErrorKind = "api_error"
	FetchKindDecode    FetchErrorKind = "decode"
)

// FetchError describes a failed request to the status endpoint.
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int // zero unless an HTTP response was received
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchKindTransport:
		return fmt.Sprintf("API is unreachable: %v", e.Err)
	case FetchKindStatus:
		return fmt.Sprintf("API returned status %d: %v", e.StatusCode, e.Err)
	case FetchKindAPIError:
		if e.StatusCode != 0 {
			return fmt.Sprintf("API reported an error (status %d): %v", e.StatusCode, e.Err)
		}
		return fmt.Sprintf("API reported an error: %v", e.Err)
	case FetchKindDecode:
		return fmt.Sprintf("API response is not valid JSON: %v", e.Err)
	default:
		return fmt.Sprintf("%s: %v", ErrFetch, e.Err)
	}
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetch, e.Err}
}
