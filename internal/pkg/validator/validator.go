package validator

import (
	"regexp"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used on the wire.
const DateLayout = "2006-01-02"

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// Add appends a field error.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// OrNil returns nil when there are no errors so callers can return it as error.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Employee identifiers are short alphanumeric codes, optionally dashed.
var employeeIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,31}$`)

func IsValidEmployeeID(id string) bool {
	return employeeIDRegex.MatchString(id)
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email validation
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidDate parses a YYYY-MM-DD calendar day.
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse(DateLayout, dateStr)
	return date, err == nil
}

// IsValidClock parses a 24-hour "HH:MM" wall time into its offset from midnight.
func IsValidClock(hhmm string) (time.Duration, bool) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, false
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, true
}

// IsValidMonth reports whether year/month form a usable calendar month.
func IsValidMonth(year, month int) bool {
	return year >= 1970 && year <= 9999 && month >= 1 && month <= 12
}
