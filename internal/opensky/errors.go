package opensky

import (
	"errors"
	"fmt"
)

// Kind classifies a failed fetch.
type Kind int

const (
	KindUnknown Kind = iota
	KindOffline
	KindInvalidRequest
	KindHTTP
	KindDecoding
)

func (k Kind) String() string {
	switch k {
	case KindOffline:
		return "offline"
	case KindInvalidRequest:
		return "invalid_request"
	case KindHTTP:
		return "http"
	case KindDecoding:
		return "decoding"
	default:
		return "unknown"
	}
}

// APIError is the error body the API may send with a non-2xx status.
type APIError struct {
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// FetchError is returned by Client.Fetch for every failure.
type FetchError struct {
	Kind       Kind
	StatusCode int       // HTTP status, zero when no response was received
	API        *APIError // decoded error body, if any
	Err        error     // underlying cause
}

// Error returns the message shown to users.
func (e *FetchError) Error() string {
	switch e.Kind {
	case KindOffline:
		return "No internet connection available"
	case KindInvalidRequest:
		return "Invalid request"
	case KindDecoding:
		return "Failed to decode response"
	case KindHTTP:
		if e.API != nil {
			return fmt.Sprintf("%s (Code: %d)", e.API.Message, e.StatusCode)
		}
		if e.StatusCode >= 500 {
			return fmt.Sprintf("Server error occurred with status code: %d", e.StatusCode)
		}
		return fmt.Sprintf("Client error occurred with status code: %d", e.StatusCode)
	default:
		if e.StatusCode > 0 {
			return fmt.Sprintf("Unknown error occurred with status code: %d", e.StatusCode)
		}
		return "Unknown error occurred"
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// KindOf extracts the Kind from err; anything that is not a *FetchError is
// KindUnknown.
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// IsOffline reports whether err is an offline failure.
func IsOffline(err error) bool {
	return err != nil && KindOf(err) == KindOffline
}
