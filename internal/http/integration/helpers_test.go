package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/wellbot/internal/auth"
	"github.com/geocoder89/wellbot/internal/config"
	apphttp "github.com/geocoder89/wellbot/internal/http"
	"github.com/geocoder89/wellbot/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

const testSecret = "test-secret-key"

func testConfig() config.Config {
	return config.Config{
		Env:          "test",
		JWTSecret:    testSecret,
		JWTTTL:       time.Hour,
		PagesDir:     "testdata-missing",
		MaxBodyBytes: 1 << 20,
		MimicUserID:  1,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newRouter(t *testing.T, users handlers.UserStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()

	return apphttp.NewRouter(discardLogger(), cfg, apphttp.Deps{
		Users:  users,
		Tokens: auth.NewManager(cfg.JWTSecret, cfg.JWTTTL),
	})
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body: %v body=%s", err, w.Body.String())
	}
	return out
}

// registerAndLogin runs the happy path and returns the session token.
func registerAndLogin(t *testing.T, r http.Handler, email string) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/register", map[string]string{
		"name": "Ada", "email": email, "password": "correct horse",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register status %d body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/login", map[string]string{
		"email": email, "password": "correct horse",
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login status %d body=%s", w.Code, w.Body.String())
	}

	token, _ := decode(t, w)["token"].(string)
	if token == "" {
		t.Fatalf("login returned no token: %s", w.Body.String())
	}
	return token
}
