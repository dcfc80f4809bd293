package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pos-backend/pkg/auth"
	"github.com/angelmondragon/pos-backend/pkg/config"
	"github.com/angelmondragon/pos-backend/pkg/enums"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "pos-test", ExpirationMinutes: 60}

type stubSessionVerifier struct {
	ok  bool
	err error
}

func (s stubSessionVerifier) HasSession(context.Context, string) (bool, error) {
	return s.ok, s.err
}

func mintToken(t *testing.T, userID uuid.UUID, role enums.UserRole) (string, string) {
	t.Helper()
	token, claims, err := auth.MintAccessToken(testJWT, time.Now(), auth.AccessTokenPayload{UserID: userID, Role: role})
	require.NoError(t, err)
	return token, claims.ID
}

type captured struct {
	userID   uuid.UUID
	role     enums.UserRole
	accessID string
	called   bool
}

func captureHandler(c *captured) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.userID, _ = UserIDFromContext(r.Context())
		c.role = RoleFromContext(r.Context())
		c.accessID = AccessIDFromContext(r.Context())
		c.called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	var c captured
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(captureHandler(&c))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.False(t, c.called)
}

func TestAuthAcceptsBearerHeader(t *testing.T) {
	userID := uuid.New()
	token, jti := mintToken(t, userID, enums.UserRoleSeller)
	var c captured
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(captureHandler(&c))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, userID, c.userID)
	assert.Equal(t, enums.UserRoleSeller, c.role)
	assert.Equal(t, jti, c.accessID)
}

func TestAuthAcceptsTokenCookie(t *testing.T) {
	userID := uuid.New()
	token, _ := mintToken(t, userID, enums.UserRoleAdmin)
	var c captured
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(captureHandler(&c))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, enums.UserRoleAdmin, c.role)
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	token, _ := mintToken(t, uuid.New(), enums.UserRoleSeller)
	var c captured

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	Auth(testJWT, stubSessionVerifier{ok: false}, nil)(captureHandler(&c)).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = httptest.NewRecorder()
	Auth(testJWT, stubSessionVerifier{err: errors.New("redis down")}, nil)(captureHandler(&c)).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.False(t, c.called)
}

func TestOptionalAuthSeedsLiveCallerOnly(t *testing.T) {
	userID := uuid.New()
	token, jti := mintToken(t, userID, enums.UserRoleAdmin)

	cases := []struct {
		name     string
		token    string
		verifier stubSessionVerifier
		wantRole enums.UserRole
	}{
		{name: "anonymous", verifier: stubSessionVerifier{ok: true}},
		{name: "live session", token: token, verifier: stubSessionVerifier{ok: true}, wantRole: enums.UserRoleAdmin},
		{name: "revoked session", token: token, verifier: stubSessionVerifier{ok: false}},
		{name: "session store down", token: token, verifier: stubSessionVerifier{err: errors.New("redis down")}},
		{name: "garbage token", token: "not-a-jwt", verifier: stubSessionVerifier{ok: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var c captured
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			resp := httptest.NewRecorder()
			OptionalAuth(testJWT, tc.verifier, nil)(captureHandler(&c)).ServeHTTP(resp, req)

			require.Equal(t, http.StatusOK, resp.Code)
			require.True(t, c.called)
			assert.Equal(t, tc.wantRole, c.role)
			if tc.wantRole != "" {
				assert.Equal(t, userID, c.userID)
				assert.Equal(t, jti, c.accessID)
			} else {
				assert.Empty(t, c.accessID)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	var c captured
	handler := RequireRole(nil, enums.UserRoleAdmin)(captureHandler(&c))

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), uuid.New(), enums.UserRoleSeller, "a"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.False(t, c.called)

	req = req.WithContext(WithIdentity(req.Context(), uuid.New(), enums.UserRoleAdmin, "b"))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRecovererReturns500(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "INTERNAL_ERROR")
}

func TestRequestIDPropagates(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, "abc", resp.Header().Get(requestIDHeader))

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(resp.Header().Get(requestIDHeader))
	assert.NoError(t, err)
}

func TestRequestIDReplacesUnusableValues(t *testing.T) {
	var seen string
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(requestIDHeader)
	}))

	for _, inbound := range []string{"pos 1", "till\tone", strings.Repeat("a", 129), "caf\u00e9"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, inbound)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)

		_, err := uuid.Parse(resp.Header().Get(requestIDHeader))
		assert.NoError(t, err, inbound)
		assert.Equal(t, resp.Header().Get(requestIDHeader), seen)
	}
}
