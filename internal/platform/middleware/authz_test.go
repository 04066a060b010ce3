// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/elib/internal/platform/ctxutil"
	"github.com/taibuivan/elib/internal/platform/middleware"
	"github.com/taibuivan/elib/internal/platform/sec"
)

// stubVerifier maps raw tokens to fixed outcomes.
type stubVerifier map[string]*sec.Principal

func (stub stubVerifier) ParseAndAuthenticate(token string) (*sec.Principal, error) {
	switch token {
	case "expired":
		return nil, sec.ErrExpiredToken
	}
	if principal, ok := stub[token]; ok {
		return principal, nil
	}
	return nil, errors.New("bad token")
}

func newVerifier() stubVerifier {
	reader := sec.NewPrincipal("alice", sec.RoleReader)
	librarian := sec.NewPrincipal("lena", sec.RoleLibrarian)
	return stubVerifier{"reader-token": &reader, "librarian-token": &librarian}
}

// echoSubject writes the principal subject, or "anonymous".
var echoSubject = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
	if principal := ctxutil.GetPrincipal(request.Context()); principal != nil {
		_, _ = writer.Write([]byte(principal.Subject))
		return
	}
	_, _ = writer.Write([]byte("anonymous"))
})

func errorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	body := map[string]any{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	code, _ := body["code"].(string)
	return code
}

/*
TestAuthenticate covers anonymous, valid, malformed, invalid and expired bearer tokens.
*/
func TestAuthenticate(t *testing.T) {
	handler := middleware.Authenticate(newVerifier())(echoSubject)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
		wantCode   string
	}{
		{"no_header", "", http.StatusOK, "anonymous", ""},
		{"valid_token", "Bearer reader-token", http.StatusOK, "alice", ""},
		{"lowercase_scheme", "bearer reader-token", http.StatusOK, "alice", ""},
		{"wrong_scheme", "Basic abc", http.StatusUnauthorized, "", "INVALID_TOKEN"},
		{"empty_token", "Bearer ", http.StatusUnauthorized, "", "INVALID_TOKEN"},
		{"invalid_token", "Bearer forged", http.StatusUnauthorized, "", "INVALID_TOKEN"},
		{"expired_token", "Bearer expired", http.StatusUnauthorized, "", "EXPIRED_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/books", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, recorder))
				return
			}
			assert.Equal(t, tt.wantBody, recorder.Body.String())
		})
	}
}

/*
TestRequireRole checks 401 for anonymous, 403 for a missing role and 200 on a match.
*/
func TestRequireRole(t *testing.T) {
	handler := middleware.Authenticate(newVerifier())(
		middleware.RequireRole(sec.RoleAdministrator, sec.RoleLibrarian)(echoSubject),
	)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"reader", "Bearer reader-token", http.StatusForbidden},
		{"librarian", "Bearer librarian-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/books/add-new", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)
			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

/*
TestRequireAuth checks that anonymous requests are rejected.
*/
func TestRequireAuth(t *testing.T) {
	handler := middleware.Authenticate(newVerifier())(middleware.RequireAuth(echoSubject))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/books", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	request := httptest.NewRequest(http.MethodGet, "/books", nil)
	request.Header.Set("Authorization", "Bearer reader-token")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
}
