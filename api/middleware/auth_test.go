package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ojastore/storefront-backend/pkg/auth"
	"github.com/ojastore/storefront-backend/pkg/auth/session"
	"github.com/ojastore/storefront-backend/pkg/config"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}

func TestAuthRejections(t *testing.T) {
	live, _ := mintTestToken(t, uuid.New())
	cases := []struct {
		name     string
		header   string
		verifier stubSessionVerifier
		status   int
	}{
		{name: "missing token", verifier: stubSessionVerifier{ok: true}, status: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer invalid", verifier: stubSessionVerifier{ok: true}, status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + live, verifier: stubSessionVerifier{ok: true}, status: http.StatusUnauthorized},
		{name: "revoked session", header: "Bearer " + live, verifier: stubSessionVerifier{ok: false}, status: http.StatusUnauthorized},
		{name: "session store down", header: "Bearer " + live, verifier: stubSessionVerifier{err: errors.New("redis down")}, status: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := Auth(testJWT, tc.verifier, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run")
			}))
			req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestAuthSeedsPrincipal(t *testing.T) {
	userID := uuid.New()
	token, accessID := mintTestToken(t, userID)

	var gotUser, gotAccess string
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotAccess = AccessIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID.String(), gotUser)
	assert.Equal(t, accessID, gotAccess)
}

func TestOptionalAuthFallsThroughForBadTokens(t *testing.T) {
	revoked, _ := mintTestToken(t, uuid.New())
	cases := map[string]struct {
		header   string
		verifier stubSessionVerifier
	}{
		"no header":       {header: "", verifier: stubSessionVerifier{ok: true}},
		"garbage token":   {header: "Bearer nope", verifier: stubSessionVerifier{ok: true}},
		"revoked session": {header: "Bearer " + revoked, verifier: stubSessionVerifier{ok: false}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var gotUser string
			called := false
			handler := OptionalAuth(testJWT, tc.verifier, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotUser = UserIDFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)
			if !called {
				t.Fatalf("expected request to continue")
			}
			if gotUser != "" {
				t.Fatalf("expected anonymous request, got user %s", gotUser)
			}
		})
	}
}

func mintTestToken(t *testing.T, userID uuid.UUID) (string, string) {
	t.Helper()
	accessID := session.NewAccessID()
	token, err := auth.MintAccessToken(testJWT, time.Now(), auth.AccessTokenPayload{
		UserID: userID,
		Email:  "ada@example.com",
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token, accessID
}

type stubSessionVerifier struct {
	ok  bool
	err error
}

func (s stubSessionVerifier) HasSession(ctx context.Context, accessID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.ok, nil
}

func TestOptionalAuthSurfacesSessionStoreFailure(t *testing.T) {
	token, _ := mintTestToken(t, uuid.New())
	called := false
	chain := OptionalAuth(testJWT, stubSessionVerifier{err: errors.New("redis down")}, nil)(
		Identity(IdentityOptions{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})),
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, called, "a signed-in shopper must not continue as a guest")
	assert.Empty(t, rec.Result().Cookies(), "no guest cookie is issued")
}
