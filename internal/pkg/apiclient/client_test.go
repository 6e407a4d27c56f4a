package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() (string, bool) { return string(s), s != "" }

type payload struct {
	Name string `json:"name"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/api", time.Second, opts...)
	require.NoError(t, err)
	return c
}

func TestClient_AttachesTokenAndDecodesData(t *testing.T) {
	var gotAuth, gotPath, gotQuery, gotRequestID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotRequestID = r.Header.Get("X-Request-ID")
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": map[string]string{"name": "hana"}})
	}, WithTokenSource(staticToken("tok-1")))

	var out payload
	err := c.Get(context.Background(), "/time/history", url.Values{"year": {"2024"}, "month": {"5"}}, &out)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "/api/time/history", gotPath)
	assert.Equal(t, "month=5&year=2024", gotQuery)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "hana", out.Name)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}, WithTokenSource(staticToken("")))

	require.NoError(t, c.Post(context.Background(), "/auth/login", map[string]string{"employeeId": "E1"}, nil))
	assert.Empty(t, gotAuth)
}

func TestClient_NullDataLeavesOutUntouched(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": nil})
	})

	out := &payload{Name: "unchanged"}
	require.NoError(t, c.Get(context.Background(), "/time/today", nil, out))
	assert.Equal(t, "unchanged", out.Name)
}

func TestClient_UnauthorizedFiresHandler(t *testing.T) {
	var fired int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"success": false, "error": "token expired"})
	}, WithUnauthorizedHandler(func() { atomic.AddInt32(&fired, 1) }))

	err := c.Get(context.Background(), "/auth/profile", nil, nil)
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
	assert.Equal(t, "Your session has expired. Please log in again.", UserMessage(err))
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    interface{}
		kind    Kind
		message string
	}{
		{
			name:    "string error",
			status:  http.StatusConflict,
			body:    map[string]interface{}{"success": false, "error": "request already processed"},
			kind:    KindBusiness,
			message: "request already processed",
		},
		{
			name:   "structured validation error",
			status: http.StatusUnprocessableEntity,
			body: map[string]interface{}{"success": false, "error": map[string]interface{}{
				"code": "VALIDATION_ERROR", "message": "Validation failed", "details": map[string]string{"reason": "reason is required"},
			}},
			kind:    KindValidation,
			message: "Validation failed",
		},
		{
			name:    "success false on 200",
			status:  http.StatusOK,
			body:    map[string]interface{}{"success": false, "error": "already clocked in"},
			kind:    KindBusiness,
			message: "already clocked in",
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    map[string]interface{}{"success": false, "message": "boom"},
			kind:    KindServer,
			message: "boom",
		},
		{
			name:    "forbidden without body",
			status:  http.StatusForbidden,
			body:    nil,
			kind:    KindBusiness,
			message: "Forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.body == nil {
					w.WriteHeader(tt.status)
					return
				}
				writeJSON(w, tt.status, tt.body)
			})

			err := c.Get(context.Background(), "/x", nil, nil)
			require.Error(t, err)
			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestClient_ValidationDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"success": false, "error": map[string]interface{}{
			"code": "VALIDATION_ERROR", "message": "Validation failed", "details": map[string]string{"endDate": "endDate must not be before startDate"},
		}})
	})

	err := c.Post(context.Background(), "/requests/leave", map[string]string{}, nil)
	assert.True(t, IsValidation(err))
	assert.Equal(t, map[string]string{"endDate": "endDate must not be before startDate"}, FieldErrors(err))
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, 50*time.Millisecond)
	require.NoError(t, err)

	err = c.Get(context.Background(), "/time/today", nil, nil)
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Timeout)
}

func TestClient_NoRetry(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"success": false})
	})

	assert.Error(t, c.Post(context.Background(), "/time/clock-in", map[string]string{}, nil))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_MalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>proxy</html>"))
	})

	err := c.Get(context.Background(), "/time/today", nil, nil)
	assert.Equal(t, KindServer, KindOf(err))
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := NewClient("localhost:3001", time.Second)
	assert.Error(t, err)
}

func TestClient_Download(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/exports/missing.csv" {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "error": map[string]string{"code": "NOT_FOUND", "message": "Export not found"}})
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("employeeId,name\nEMP001,Budi\n"))
	}, WithTokenSource(staticToken("tok-1")))

	var buf bytes.Buffer
	n, err := c.Download(context.Background(), "/exports/a.csv", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, "employeeId,name\nEMP001,Budi\n", buf.String())

	_, err = c.Download(context.Background(), "/exports/missing.csv", &buf)
	require.Error(t, err)
	assert.True(t, IsBusiness(err))
}
