package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-client/internal/backend"
	"github.com/cmlabs-hris/attendance-client/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-client/internal/repository/memory"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type testEnv struct {
	router http.Handler
	users  user.Repository
	auth   AuthHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	JWTService, err := jwt.NewJWTService(handlerTestSecret, "1h")
	require.NoError(t, err)
	workday, err := attendance.ParseWorkday("09:00", "18:00", 15*time.Minute, time.UTC)
	require.NoError(t, err)

	users := memory.NewUserRepository()
	records := memory.NewAttendanceRepository()
	alerts := backend.NewAlertService(memory.NewAlertRepository())
	requests := backend.NewRequestService(memory.NewLeaveRequestRepository(), memory.NewTimeModificationRepository(), users, records, workday)

	handlers := Handlers{
		Auth:       NewAuthHandler(backend.NewAuthService(users, JWTService)),
		Attendance: NewAttendanceHandler(backend.NewAttendanceService(records, users, alerts, workday)),
		Request:    NewRequestHandler(requests),
		Manager:    NewManagerHandler(backend.NewManagerService(users, records, alerts, requests, storage.NewMemoryStorage(), workday)),
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	return &testEnv{
		router: NewRouter(RouterConfig{Logger: logger}, JWTService, handlers),
		users:  users,
		auth:   handlers.Auth,
	}
}

func (e *testEnv) createUser(t *testing.T, employeeID string, role user.Role) {
	t.Helper()
	hash, err := backend.HashPassword("password123")
	require.NoError(t, err)
	err = e.users.Create(context.Background(), user.Account{
		User:         user.User{EmployeeID: employeeID, Name: "User " + employeeID, Department: "Engineering", Role: role, IsActive: true},
		PasswordHash: hash,
	})
	require.NoError(t, err)
}

func (e *testEnv) login(t *testing.T, employeeID string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/auth/login", "", auth.LoginRequest{EmployeeID: employeeID, Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data auth.LoginResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func readBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

// Test Login - Success
func TestAuthHandler_Login_Success(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "EMP001", user.RoleEmployee)

	body, _ := json.Marshal(auth.LoginRequest{EmployeeID: "EMP001", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	w := httptest.NewRecorder()

	// Act
	env.auth.Login(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	resp := readBody(t, w)
	assert.True(t, resp["success"].(bool))
	assert.Equal(t, "Login successful", resp["message"])

	data := resp["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	u := data["user"].(map[string]interface{})
	assert.Equal(t, "EMP001", u["employeeId"])
	assert.Equal(t, "EMPLOYEE", u["role"])
}

// Test Login - Invalid Credentials
func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "EMP001", user.RoleEmployee)

	// Act
	w := env.do(t, http.MethodPost, "/auth/login", "", auth.LoginRequest{EmployeeID: "EMP001", Password: "wrong"})

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := readBody(t, w)
	assert.False(t, resp["success"].(bool))
	assert.Nil(t, resp["data"])
}

// Test Login - Invalid JSON
func TestAuthHandler_Login_InvalidJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("invalid json")))
	w := httptest.NewRecorder()

	// Act
	env.auth.Login(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// Test Login - Validation
func TestAuthHandler_Login_ValidationDetails(t *testing.T) {
	env := newTestEnv(t)

	// Act
	w := env.do(t, http.MethodPost, "/auth/login", "", auth.LoginRequest{EmployeeID: "", Password: ""})

	// Assert
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := readBody(t, w)
	details := resp["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Equal(t, "employeeId is required", details["employeeId"])
	assert.Equal(t, "password is required", details["password"])
}

func TestAuthHandler_Profile_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/auth/profile", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Profile_ReadAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "EMP001", user.RoleEmployee)
	token := env.login(t, "EMP001")

	w := env.do(t, http.MethodGet, "/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := readBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "User EMP001", data["name"])

	name := "Budi Santoso"
	email := "budi@example.com"

	// Act
	w = env.do(t, http.MethodPut, "/auth/profile", token, user.ProfileUpdate{Name: &name, Email: &email})

	// Assert
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data = readBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, name, data["name"])
	assert.Equal(t, email, data["email"])
	assert.Equal(t, "Engineering", data["department"])

	bad := "not-an-email"
	w = env.do(t, http.MethodPut, "/auth/profile", token, user.ProfileUpdate{Email: &bad})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRouter_ManagerRoutesRequireManager(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "EMP001", user.RoleEmployee)
	env.createUser(t, "MGR001", user.RoleManager)

	employee := env.login(t, "EMP001")
	manager := env.login(t, "MGR001")

	w := env.do(t, http.MethodGet, "/manager/team", employee, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/manager/team", manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := readBody(t, w)
	team := resp["data"].([]interface{})
	require.Len(t, team, 1)
	assert.Equal(t, "EMP001", team[0].(map[string]interface{})["employeeId"])
	assert.Equal(t, float64(1), resp["meta"].(map[string]interface{})["count"])
}

func TestRouter_UnknownRoutesAndActions(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "EMP001", user.RoleEmployee)
	token := env.login(t, "EMP001")

	w := env.do(t, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, readBody(t, w)["success"].(bool))

	w = env.do(t, http.MethodPost, "/time/teleport", token, map[string]string{"timestamp": time.Now().Format(time.RFC3339)})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_TodayWithoutRecord(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "EMP001", user.RoleEmployee)
	token := env.login(t, "EMP001")

	// Act
	w := env.do(t, http.MethodGet, "/time/today", token, nil)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	resp := readBody(t, w)
	assert.True(t, resp["success"].(bool))
	assert.Nil(t, resp["data"])
}

func TestRouter_ClockConflictCodes(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "EMP001", user.RoleEmployee)
	token := env.login(t, "EMP001")
	body := map[string]string{"timestamp": time.Now().Format(time.RFC3339Nano)}

	w := env.do(t, http.MethodPost, "/time/break-start", token, body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NOT_CLOCKED_IN", readBody(t, w)["error"].(map[string]interface{})["code"])

	w = env.do(t, http.MethodPost, "/time/clock-in", token, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/time/clock-in", token, body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_CLOCKED_IN", readBody(t, w)["error"].(map[string]interface{})["code"])

	future := map[string]string{"timestamp": time.Now().Add(time.Hour).Format(time.RFC3339)}
	w = env.do(t, http.MethodPost, "/time/clock-out", token, future)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	yesterday := map[string]string{"timestamp": time.Now().AddDate(0, 0, -1).Format(time.RFC3339)}
	w = env.do(t, http.MethodPost, "/time/clock-out", token, yesterday)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "current day")
}
