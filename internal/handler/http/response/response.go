package response

import (
	"encoding/json"
	"net/http"
)

// Response is the envelope every endpoint answers with.
// Exactly one of Data and Error is meaningful, selected by Success.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
	Meta    *Meta        `json:"meta,omitempty"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Meta describes a list payload.
type Meta struct {
	Count  int `json:"count"`
	Unread int `json:"unread,omitempty"`
}

// Error codes shared by the generic helpers.
const (
	CodeBadRequest = "BAD_REQUEST"
	CodeValidation = "VALIDATION_ERROR"
	CodeAuth       = "UNAUTHORIZED"
	CodeForbidden  = "FORBIDDEN"
	CodeNotFound   = "NOT_FOUND"
	CodeInternal   = "INTERNAL_SERVER_ERROR"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		_ = json.NewEncoder(w).Encode(Response{
			Error: &ErrorDetail{Code: "ENCODING_ERROR", Message: "Failed to encode response"},
		})
	}
}

func ok(w http.ResponseWriter, status int, message string, data interface{}, meta *Meta) {
	writeJSON(w, status, Response{Success: true, Message: message, Data: data, Meta: meta})
}

func fail(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	writeJSON(w, status, Response{Error: &ErrorDetail{Code: code, Message: message, Details: details}})
}

// Success responses
func Success(w http.ResponseWriter, data interface{}) {
	ok(w, http.StatusOK, "", data, nil)
}

func SuccessWithMessage(w http.ResponseWriter, message string, data interface{}) {
	ok(w, http.StatusOK, message, data, nil)
}

func SuccessWithMeta(w http.ResponseWriter, data interface{}, meta *Meta) {
	ok(w, http.StatusOK, "", data, meta)
}

func Created(w http.ResponseWriter, message string, data interface{}) {
	ok(w, http.StatusCreated, message, data, nil)
}

// List writes a list with its count. A nil slice is written as [].
func List[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	SuccessWithMeta(w, items, &Meta{Count: len(items)})
}

// Error responses
func BadRequest(w http.ResponseWriter, message string, details map[string]string) {
	fail(w, http.StatusBadRequest, CodeBadRequest, message, details)
}

func ValidationError(w http.ResponseWriter, details map[string]string) {
	fail(w, http.StatusUnprocessableEntity, CodeValidation, "Validation failed", details)
}

func Unauthorized(w http.ResponseWriter, message string) {
	fail(w, http.StatusUnauthorized, CodeAuth, message, nil)
}

func Forbidden(w http.ResponseWriter, message string) {
	fail(w, http.StatusForbidden, CodeForbidden, message, nil)
}

func NotFound(w http.ResponseWriter, message string) {
	fail(w, http.StatusNotFound, CodeNotFound, message, nil)
}

func InternalServerError(w http.ResponseWriter, message string) {
	fail(w, http.StatusInternalServerError, CodeInternal, message, nil)
}

// ConflictWithCode reports a business-rule rejection; the code tells the client which rule.
func ConflictWithCode(w http.ResponseWriter, code, message string) {
	fail(w, http.StatusConflict, code, message, nil)
}
