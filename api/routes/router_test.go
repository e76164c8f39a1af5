package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ojastore/storefront-backend/internal/cart"
	"github.com/ojastore/storefront-backend/internal/identity"
	"github.com/ojastore/storefront-backend/internal/profile"
	pkgAuth "github.com/ojastore/storefront-backend/pkg/auth"
	"github.com/ojastore/storefront-backend/pkg/config"
	"github.com/ojastore/storefront-backend/pkg/logger"
	"github.com/ojastore/storefront-backend/pkg/metrics"
)

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return accessID == "live-session", nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type recordingCart struct {
	owners []identity.Owner
}

func (c *recordingCart) List(ctx context.Context, owner identity.Owner) (cart.ListDTO, error) {
	c.owners = append(c.owners, owner)
	return cart.ListDTO{Items: []cart.ItemDTO{}}, nil
}

func (c *recordingCart) Add(ctx context.Context, owner identity.Owner, req cart.AddItemRequest) (cart.ItemDTO, error) {
	return cart.ItemDTO{ProductID: req.ProductID, Quantity: 1}, nil
}

func (c *recordingCart) UpdateQuantity(ctx context.Context, owner identity.Owner, req cart.UpdateQuantityRequest) (cart.UpdateResult, error) {
	return cart.UpdateResult{Removed: true}, nil
}

func (c *recordingCart) Remove(ctx context.Context, owner identity.Owner, productID int64) error {
	return nil
}

type stubProfile struct{}

func (stubProfile) Get(ctx context.Context, userID uuid.UUID) (profile.ProfileDTO, error) {
	return profile.ProfileDTO{ID: userID, Email: "ada@example.com"}, nil
}

func (stubProfile) Update(ctx context.Context, userID uuid.UUID, req profile.UpdateRequest) (profile.ProfileDTO, error) {
	return profile.ProfileDTO{ID: userID}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", AllowedOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "oja-storefront", ExpirationMinutes: 60},
		Session: config.SessionConfig{
			CookieName: "session-id",
			MaxAge:     365 * 24 * time.Hour,
		},
	}
}

func newTestRouter(t *testing.T, deps Dependencies) (http.Handler, *config.Config) {
	t.Helper()
	cfg := testConfig()
	if deps.Sessions == nil {
		deps.Sessions = stubSessionManager{}
	}
	return NewRouter(cfg, logger.Nop(), deps), cfg
}

func bearer(t *testing.T, cfg *config.Config, userID uuid.UUID, accessID string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: userID, JTI: accessID})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthLive(t *testing.T) {
	router, _ := newTestRouter(t, Dependencies{})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestCartIssuesGuestCookieAndReusesIt(t *testing.T) {
	carts := &recordingCart{}
	router, _ := newTestRouter(t, Dependencies{Cart: carts})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", first.Code)
	}
	cookies := first.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "session-id" {
		t.Fatalf("expected session cookie, got %v", cookies)
	}

	second := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	second.AddCookie(cookies[0])
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, second)
	if len(resp.Result().Cookies()) != 0 {
		t.Fatalf("cookie should not be reissued")
	}

	if len(carts.owners) != 2 || carts.owners[0].SessionID != carts.owners[1].SessionID {
		t.Fatalf("expected the same guest owner twice, got %+v", carts.owners)
	}
}

func TestCartUsesAccountWhenTokenIsValid(t *testing.T) {
	carts := &recordingCart{}
	router, cfg := newTestRouter(t, Dependencies{Cart: carts})
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", bearer(t, cfg, userID, "live-session"))
	req.AddCookie(&http.Cookie{Name: "session-id", Value: "guest_123"})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if carts.owners[0].IsGuest() || *carts.owners[0].UserID != userID {
		t.Fatalf("expected account owner, got %+v", carts.owners[0])
	}

	// A revoked session falls back to the guest cookie.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", bearer(t, cfg, userID, "revoked"))
	req.AddCookie(&http.Cookie{Name: "session-id", Value: "guest_123"})
	router.ServeHTTP(httptest.NewRecorder(), req)
	if !carts.owners[1].IsGuest() || carts.owners[1].SessionID != "guest_123" {
		t.Fatalf("expected guest fallback, got %+v", carts.owners[1])
	}
}

func TestProfileRequiresAccount(t *testing.T) {
	router, cfg := newTestRouter(t, Dependencies{Profile: stubProfile{}})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for guest got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.Header.Set("Authorization", bearer(t, cfg, uuid.New(), "live-session"))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for account got %d", resp.Code)
	}
}

func TestCartPatchRemovalShape(t *testing.T) {
	router, _ := newTestRouter(t, Dependencies{Cart: &recordingCart{}})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPatch, "/api/v1/cart", strings.NewReader(`{"productId":5,"quantity":-1}`)))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"removed":true`) || !strings.Contains(resp.Body.String(), `"success":true`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestMetricsEndpointExposesRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	router, _ := newTestRouter(t, Dependencies{Gatherer: reg, HTTP: metrics.NewHTTPMetrics(reg)})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `http_requests_total{method="GET",route="/health/live",status="200"} 1`) {
		t.Fatalf("expected health request counted:\n%s", resp.Body.String())
	}
}

func TestCORSPreflightAllowsCredentials(t *testing.T) {
	router, _ := newTestRouter(t, Dependencies{})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("expected origin echoed, got %q", resp.Header().Get("Access-Control-Allow-Origin"))
	}
	if resp.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("expected credentials allowed")
	}
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	router, _ := newTestRouter(t, Dependencies{})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
