package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/validator"
)

// Exit codes.
const (
	ExitOK            = 0
	ExitError         = 1
	ExitUsage         = 2
	ExitLoginRequired = 3
)

// SessionExpiredMessage is printed whenever the server ends the session.
const SessionExpiredMessage = "session expired, please log in"

type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...interface{}) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

var errLoginRequired = errors.New("not logged in, run 'attendance login'")

// describe turns an error into the message shown to the user and an exit code.
func describe(err error) (string, int) {
	var usage *usageError
	if errors.As(err, &usage) {
		return usage.msg, ExitUsage
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return formatFields("invalid input", verrs.ToMap()), ExitUsage
	}

	switch {
	case errors.Is(err, errLoginRequired), errors.Is(err, auth.ErrNotAuthenticated):
		return errLoginRequired.Error(), ExitLoginRequired
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "invalid employee id or password", ExitLoginRequired
	case errors.Is(err, auth.ErrTokenExpired):
		return SessionExpiredMessage, ExitLoginRequired
	case errors.Is(err, auth.ErrSessionInvalid):
		return "the saved session could not be verified, please log in again", ExitLoginRequired
	case errors.Is(err, attendance.ErrActionInFlight):
		return err.Error(), ExitError
	}

	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case apiclient.KindAuth:
			return SessionExpiredMessage, ExitLoginRequired
		case apiclient.KindValidation:
			return formatFields(apiErr.Message, apiErr.Details), ExitUsage
		case apiclient.KindNetwork:
			if apiErr.Timeout {
				return "the server did not answer in time, please try again", ExitError
			}
			return "could not reach the server, please try again", ExitError
		case apiclient.KindBusiness:
			return apiErr.Message, ExitError
		case apiclient.KindServer:
			return "the server failed to handle the request, please try again later", ExitError
		}
	}

	return err.Error(), ExitError
}

func formatFields(msg string, fields map[string]string) string {
	if len(fields) == 0 {
		return msg
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(msg)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n  %s: %s", k, fields[k])
	}
	return b.String()
}
