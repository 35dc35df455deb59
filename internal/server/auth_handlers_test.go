package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Success",
			body:           map[string]string{"username": "testuser", "email": "test@test.com", "password": "password"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Duplicate Username",
			body:           map[string]string{"username": "testuser", "email": "other@test.com", "password": "password"},
			expectedStatus: http.StatusConflict,
			expectedCode:   "DUPLICATE_KEY",
		},
		{
			name:           "Missing Password",
			body:           map[string]string{"username": "another", "email": "another@test.com"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "Invalid Email",
			body:           map[string]string{"username": "another", "email": "nope", "password": "password"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/signup", tt.body, "")
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, errorBody(t, resp)["code"])
				return
			}
			cookies := resp.Cookies()
			require.NotEmpty(t, cookies)
			assert.Equal(t, sessionCookie, cookies[0].Name)
			assert.True(t, cookies[0].HttpOnly)
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "u1")

	resp := env.do(t, http.MethodPost, "/login", map[string]string{"username": "u1", "password": "password"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Token   string `json:"token"`
		Message string `json:"message"`
	}
	decode(t, resp, &out)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "Hello, u1!", out.Message)

	for _, body := range []map[string]string{
		{"username": "u1", "password": "wrong"},
		{"username": "nobody", "password": "password"},
	} {
		resp := env.do(t, http.MethodPost, "/login", body, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid credentials.", errorBody(t, resp)["error"])
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "u1")

	resp := env.do(t, http.MethodPost, "/messages/new", map[string]string{"text": "before logout"}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/logout", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/messages/new", map[string]string{"text": "after logout"}, token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Access unauthorized.", errorBody(t, resp)["error"])
}

func TestLogoutRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/logout", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionCookie(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "u1")

	req := httptest.NewRequest(http.MethodPost, "/messages/new", nil)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	// authenticated but the empty body fails validation, not authorization
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInvalidTokenIsAnonymous(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/", nil, "not-a-token")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var timeline []interface{}
	decode(t, resp, &timeline)
	assert.Empty(t, timeline)
}
