package integration_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/wellbot/internal/auth"
	"github.com/geocoder89/wellbot/internal/repo/memory"
)

func TestFlow_RegisterLoginProfile(t *testing.T) {
	r := newRouter(t, memory.NewUsersRepo())

	token := registerAndLogin(t, r, "ada@example.com")

	w := doJSON(t, r, http.MethodGet, "/user/profile", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("profile status %d body=%s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["name"] != "Ada" || body["email"] != "ada@example.com" {
		t.Fatalf("unexpected profile %v", body)
	}
	if _, leaked := body["password"]; leaked {
		t.Fatalf("profile must not expose the password hash")
	}
}

func TestFlow_RegisterTwiceIsAccepted(t *testing.T) {
	r := newRouter(t, memory.NewUsersRepo())
	registerAndLogin(t, r, "twice@example.com")

	w := doJSON(t, r, http.MethodPost, "/register", map[string]string{
		"name": "Other", "email": "twice@example.com", "password": "x",
	}, "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("status %d body=%s", w.Code, w.Body.String())
	}
	if decode(t, w)["message"] != "User already exists. Please login." {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestFlow_ProfileTokenErrors(t *testing.T) {
	users := memory.NewUsersRepo()
	r := newRouter(t, users)

	expired := auth.NewManager(testSecret, time.Hour, auth.WithClock(func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}))
	oldToken, err := expired.IssueToken("1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	foreign, err := auth.NewManager("another-secret", time.Hour).IssueToken("1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	ghost, err := auth.NewManager(testSecret, time.Hour).IssueToken("999")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cases := []struct {
		name       string
		token      string
		wantStatus int
		wantMsg    string
	}{
		{"missing", "", http.StatusUnauthorized, "Token is missing!"},
		{"expired", oldToken, http.StatusUnauthorized, "Token expired, please login again"},
		{"wrong secret", foreign, http.StatusUnauthorized, "Invalid token"},
		{"garbage", "not.a.jwt", http.StatusUnauthorized, "Invalid token"},
		{"unknown user", ghost, http.StatusNotFound, "User not found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodGet, "/user/profile", nil, tc.token)
			if w.Code != tc.wantStatus {
				t.Fatalf("status %d, want %d body=%s", w.Code, tc.wantStatus, w.Body.String())
			}
			body := decode(t, w)
			if body["message"] != tc.wantMsg {
				t.Fatalf("message %v, want %q", body["message"], tc.wantMsg)
			}
			if body["requestId"] == "" || body["requestId"] == nil {
				t.Fatalf("error body should carry requestId: %v", body)
			}
		})
	}
}

func TestFlow_AnalysisExample(t *testing.T) {
	r := newRouter(t, memory.NewUsersRepo())

	w := doJSON(t, r, http.MethodPost, "/analysis", map[string]any{"weight": 70, "height": 175}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}

	body := decode(t, w)
	if body["bmi"] != 22.86 || body["status"] != "Normal Weight" || body["message"] != "Great job! Maintain your current lifestyle." {
		t.Fatalf("unexpected assessment %v", body)
	}
}

func TestFlow_ChatWithoutModel(t *testing.T) {
	r := newRouter(t, memory.NewUsersRepo())

	w := doJSON(t, r, http.MethodPost, "/api/chat", map[string]string{"message": "hello"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if decode(t, w)["response"] != "I am unable to connect to my brain right now. Please check my API Key settings." {
		t.Fatalf("unexpected reply %s", w.Body.String())
	}
}

func TestFlow_MimicLoginReachesProfile(t *testing.T) {
	users := memory.NewUsersRepo()
	r := newRouter(t, users)
	registerAndLogin(t, r, "demo@example.com")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mimic_login", nil))
	if w.Code != http.StatusFound {
		t.Fatalf("status %d", w.Code)
	}

	loc := w.Header().Get("Location")
	token := strings.TrimPrefix(loc, "/dashboard?token=")
	if token == loc {
		t.Fatalf("unexpected redirect %q", loc)
	}

	w = doJSON(t, r, http.MethodGet, "/user/profile", nil, token)
	if w.Code != http.StatusOK || decode(t, w)["email"] != "demo@example.com" {
		t.Fatalf("mimic token should resolve to user 1: %d %s", w.Code, w.Body.String())
	}
}

func TestFlow_HealthAndMetrics(t *testing.T) {
	r := newRouter(t, memory.NewUsersRepo())

	for _, path := range []string{"/healthz", "/readyz", "/metrics", "/api/health-data"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s status %d", path, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), "wellbot_http_requests_total") {
		t.Fatalf("metrics missing request counter")
	}
}

func TestFlow_MissingPageIs404(t *testing.T) {
	r := newRouter(t, memory.NewUsersRepo())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/symptoms", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d", w.Code)
	}
}
