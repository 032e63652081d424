package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/wellbot/internal/domain/user"
	"github.com/geocoder89/wellbot/internal/http/handlers"
	"github.com/geocoder89/wellbot/internal/oauth"
	"github.com/geocoder89/wellbot/internal/security"
	"github.com/gin-gonic/gin"
)

type fakeProvider struct {
	exchangeFn func(ctx context.Context, code string) (oauth.Identity, error)
}

func (f *fakeProvider) Name() string { return "google" }

func (f *fakeProvider) AuthCodeURL(state string) string {
	return "https://idp.example/auth?state=" + state
}

func (f *fakeProvider) Exchange(ctx context.Context, code string) (oauth.Identity, error) {
	return f.exchangeFn(ctx, code)
}

func newOAuthRouter(p oauth.Provider, states oauth.StateStore, users *fakeUsers, tokens *fakeTokens) *gin.Engine {
	h := handlers.NewOAuthHandler(p, states, users, tokens, nil, nil)
	r := gin.New()
	r.GET("/login/google", h.Start)
	r.GET("/google/callback", h.Callback)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestOAuth_StartStoresState(t *testing.T) {
	states := oauth.NewMemoryStateStore(time.Minute)
	r := newOAuthRouter(&fakeProvider{}, states, &fakeUsers{}, &fakeTokens{})

	w := get(r, "/login/google")
	if w.Code != http.StatusFound {
		t.Fatalf("status %d", w.Code)
	}

	loc := w.Header().Get("Location")
	state := strings.TrimPrefix(loc, "https://idp.example/auth?state=")
	if state == "" || state == loc {
		t.Fatalf("unexpected redirect %q", loc)
	}
	if err := states.Consume(context.Background(), state); err != nil {
		t.Fatalf("state was not stored: %v", err)
	}
}

func TestOAuth_CallbackCreatesUser(t *testing.T) {
	states := oauth.NewMemoryStateStore(time.Minute)
	_ = states.Put(context.Background(), "s1")

	var created user.NewUser
	users := &fakeUsers{
		createFn: func(_ context.Context, in user.NewUser) (user.User, error) {
			created = in
			return user.User{ID: 5, Name: in.Name, Email: in.Email}, nil
		},
	}
	p := &fakeProvider{exchangeFn: func(_ context.Context, code string) (oauth.Identity, error) {
		if code != "c1" {
			return oauth.Identity{}, errors.New("bad code")
		}
		return oauth.Identity{Email: "grace@example.com"}, nil
	}}
	tokens := &fakeTokens{}

	w := get(newOAuthRouter(p, states, users, tokens), "/google/callback?state=s1&code=c1")

	if w.Code != http.StatusFound {
		t.Fatalf("status %d body=%s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != "/dashboard?token=token-for-5" {
		t.Fatalf("unexpected redirect %q", got)
	}
	if created.Name != "grace" {
		t.Fatalf("name should fall back to the email local part, got %q", created.Name)
	}
	if !security.CheckPassword(created.PasswordHash, "google_oauth_grace@example.com") {
		t.Fatalf("unexpected placeholder password hash")
	}
}

func TestOAuth_CallbackExistingUser(t *testing.T) {
	states := oauth.NewMemoryStateStore(time.Minute)
	_ = states.Put(context.Background(), "s1")

	users := &fakeUsers{
		getByEmailFn: func(_ context.Context, email string) (user.User, error) {
			return user.User{ID: 3, Email: email}, nil
		},
		createFn: func(context.Context, user.NewUser) (user.User, error) {
			t.Fatalf("existing user must not be recreated")
			return user.User{}, nil
		},
	}
	p := &fakeProvider{exchangeFn: func(context.Context, string) (oauth.Identity, error) {
		return oauth.Identity{Email: "ada@example.com", Name: "Ada"}, nil
	}}

	w := get(newOAuthRouter(p, states, users, &fakeTokens{}), "/google/callback?state=s1&code=c1")
	if got := w.Header().Get("Location"); got != "/dashboard?token=token-for-3" {
		t.Fatalf("unexpected redirect %q (status %d)", got, w.Code)
	}
}

func TestOAuth_CallbackFailures(t *testing.T) {
	p := &fakeProvider{exchangeFn: func(_ context.Context, code string) (oauth.Identity, error) {
		switch code {
		case "noemail":
			return oauth.Identity{}, oauth.ErrNoEmail
		default:
			return oauth.Identity{}, errors.New("token exchange refused")
		}
	}}

	cases := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"unknown state", "/google/callback?state=forged&code=c1", http.StatusInternalServerError, "OAuth Error: " + oauth.ErrInvalidState.Error()},
		{"exchange fails", "/google/callback?state=s1&code=bad", http.StatusInternalServerError, "OAuth Error: token exchange refused"},
		{"no email", "/google/callback?state=s1&code=noemail", http.StatusBadRequest, "Error: Could not retrieve email from Google."},
		{"provider error", "/google/callback?error=access_denied&state=s1", http.StatusInternalServerError, "OAuth Error: access_denied"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			states := oauth.NewMemoryStateStore(time.Minute)
			_ = states.Put(context.Background(), "s1")

			w := get(newOAuthRouter(p, states, &fakeUsers{}, &fakeTokens{}), tc.path)
			if w.Code != tc.wantStatus {
				t.Fatalf("status %d, want %d body=%s", w.Code, tc.wantStatus, w.Body.String())
			}
			if w.Body.String() != tc.wantBody {
				t.Fatalf("body %q, want %q", w.Body.String(), tc.wantBody)
			}
		})
	}
}

func TestOAuth_NotConfigured(t *testing.T) {
	r := newOAuthRouter(nil, oauth.NewMemoryStateStore(time.Minute), &fakeUsers{}, &fakeTokens{})

	w := get(r, "/login/google")
	if w.Code != http.StatusInternalServerError || !strings.HasPrefix(w.Body.String(), "OAuth Error:") {
		t.Fatalf("status %d body=%s", w.Code, w.Body.String())
	}
}
