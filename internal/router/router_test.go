package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"crimewatch/internal/config"
	"crimewatch/internal/domain/mailer"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type noopTransport struct{}

func (noopTransport) Send(ctx context.Context, msg *mailer.Message) error { return nil }
func (noopTransport) Verify(ctx context.Context) error                    { return nil }

type noopRenderer struct{}

func (noopRenderer) Render(kind mailer.EventKind, data any) (string, string, error) {
	return "subject", "<p>body</p>", nil
}

type noopDirectory struct{}

func (noopDirectory) ActiveSubscribers(ctx context.Context) ([]string, error) { return nil, nil }
func (noopDirectory) StationOCSEmail(ctx context.Context, stationID string) (string, error) {
	return "", nil
}

func newTestRouter(cfg *config.Config) *gin.Engine {
	svc := mailer.NewService(noopTransport{}, noopRenderer{}, noopDirectory{}, nil, mailer.Options{})
	return New(cfg, mailer.NewHandler(svc))
}

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Mode: gin.TestMode},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
	}
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"Server is running"}`, w.Body.String())
}

func TestEmailRoutesOpenWithoutConfiguredKeys(t *testing.T) {
	r := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/email/subscribe", strings.NewReader(`{"email":"a@b.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEmailRoutesRequireAPIKeyWhenConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.APIKeys = []string{"secret-key"}
	r := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/email/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/email/status", nil)
	req.Header.Set("X-API-Key", "wrong-key")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/email/status", nil)
	req.Header.Set("X-API-Key", "secret-key")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthBypassesAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.APIKeys = []string{"secret-key"}
	r := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
