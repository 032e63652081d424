package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleProvider_AuthCodeURL(t *testing.T) {
	g := NewGoogleProvider("client-id", "secret", "http://localhost:8080/google/callback")

	u, err := url.Parse(g.AuthCodeURL("state-123"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "select_account", q.Get("prompt"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "http://localhost:8080/google/callback", q.Get("redirect_uri"))
}

func newFakeGoogle(t *testing.T, userinfo string) *GoogleProvider {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(userinfo))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	g := NewGoogleProvider("id", "secret", "http://localhost/cb")
	g.cfg.Endpoint.TokenURL = srv.URL + "/token"
	g.userInfoURL = srv.URL + "/userinfo"
	return g
}

func TestGoogleProvider_Exchange(t *testing.T) {
	g := newFakeGoogle(t, `{"email":"ada@example.com","name":"Ada"}`)

	id, err := g.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, Identity{Email: "ada@example.com", Name: "Ada"}, id)
}

func TestGoogleProvider_ExchangeNoEmail(t *testing.T) {
	g := newFakeGoogle(t, `{"name":"Anon"}`)

	_, err := g.Exchange(context.Background(), "good-code")
	assert.ErrorIs(t, err, ErrNoEmail)
}

func TestGoogleProvider_ExchangeBadCode(t *testing.T) {
	g := newFakeGoogle(t, `{}`)

	_, err := g.Exchange(context.Background(), "bad-code")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoEmail))
}

func TestMemoryStateStore_SingleUse(t *testing.T) {
	s := NewMemoryStateStore(time.Minute)
	ctx := context.Background()

	state, err := NewState(ctx, s)
	require.NoError(t, err)

	require.NoError(t, s.Consume(ctx, state))
	assert.ErrorIs(t, s.Consume(ctx, state), ErrInvalidState)
	assert.ErrorIs(t, s.Consume(ctx, "never-issued"), ErrInvalidState)
	assert.ErrorIs(t, s.Consume(ctx, ""), ErrInvalidState)
}

type fakeKV struct {
	mu   sync.Mutex
	m    map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeKV() *fakeKV {
	return &fakeKV{m: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) SetWithTTL(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Take(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", false, f.err
	}
	v, ok := f.m[key]
	delete(f.m, key)
	return v, ok, nil
}

func TestRedisStateStore(t *testing.T) {
	kv := newFakeKV()
	s := NewRedisStateStore(kv, 0)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "abc"))
	assert.Equal(t, StateTTL, kv.ttls["wellbot:oauth_state:abc"])

	require.NoError(t, s.Consume(ctx, "abc"))
	assert.ErrorIs(t, s.Consume(ctx, "abc"), ErrInvalidState)
}

func TestRedisStateStore_BackendError(t *testing.T) {
	kv := newFakeKV()
	kv.err = errors.New("connection refused")
	s := NewRedisStateStore(kv, time.Minute)

	err := s.Consume(context.Background(), "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidState)
}
