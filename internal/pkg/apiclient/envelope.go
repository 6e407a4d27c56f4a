package apiclient

import (
	"bytes"
	"encoding/json"
)

// Envelope is the wrapper around every API response.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// errorBody is the structured form of the error field; a plain string is also accepted.
type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e Envelope) errorBody() errorBody {
	raw := bytes.TrimSpace(e.Error)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return errorBody{Message: e.Message}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return errorBody{Message: s}
	}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message == "" {
			body.Message = e.Message
		}
		return body
	}

	return errorBody{Message: string(raw)}
}

func (e Envelope) hasData() bool {
	raw := bytes.TrimSpace(e.Data)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}
