package apiclient

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call for the view layer.
type Kind int

const (
	// KindNetwork covers transport failures and timeouts. Cached state must not change.
	KindNetwork Kind = iota
	// KindAuth is a 401; the session has already been logged out by the time it is returned.
	KindAuth
	// KindValidation carries field-level details to show next to the inputs.
	KindValidation
	// KindBusiness is a rule rejection; the caller should reload from the server.
	KindBusiness
	// KindServer is a 5xx or an unreadable response.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindBusiness:
		return "business"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// Error is returned for every failed call made through Client.
type Error struct {
	Kind       Kind
	StatusCode int
	Code       string
	Message    string
	Details    map[string]string
	Timeout    bool
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api %s error [%d] %s", e.Kind, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("api %s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("api %s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindServer when err did not come from Client.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindServer
}

func IsAuth(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindAuth
}

func IsValidation(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindValidation
}

func IsNetwork(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindNetwork
}

func IsBusiness(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindBusiness
}

// FieldErrors returns validation details keyed by field, or nil.
func FieldErrors(err error) map[string]string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindValidation {
		return apiErr.Details
	}
	return nil
}

// UserMessage turns any error into the message a view shows.
func UserMessage(err error) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	switch apiErr.Kind {
	case KindNetwork:
		if apiErr.Timeout {
			return "The server took too long to respond. Please try again."
		}
		return "Could not reach the server. Please check your connection and try again."
	case KindAuth:
		return "Your session has expired. Please log in again."
	case KindServer:
		return "The server encountered an error. Please try again later."
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return "The request was rejected."
}
