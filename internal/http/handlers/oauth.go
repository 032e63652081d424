package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/wellbot/internal/config"
	"github.com/geocoder89/wellbot/internal/domain/user"
	"github.com/geocoder89/wellbot/internal/oauth"
	"github.com/geocoder89/wellbot/internal/security"
	"github.com/gin-gonic/gin"
)

// OAuthHandler runs the browser redirect flow. Failures are plain text
// because the user is looking at them in a browser tab.
type OAuthHandler struct {
	provider oauth.Provider
	states   oauth.StateStore
	users    UserStore
	tokens   TokenIssuer
	metrics  LoginObserver
	log      *slog.Logger
}

func NewOAuthHandler(provider oauth.Provider, states oauth.StateStore, users UserStore, tokens TokenIssuer, metrics LoginObserver, log *slog.Logger) *OAuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &OAuthHandler{
		provider: provider,
		states:   states,
		users:    users,
		tokens:   tokens,
		metrics:  metrics,
		log:      log,
	}
}

func (h *OAuthHandler) observe(outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveLogin(h.providerName(), outcome)
	}
}

func (h *OAuthHandler) providerName() string {
	if h.provider == nil {
		return "oauth"
	}
	return h.provider.Name()
}

func (h *OAuthHandler) oauthError(ctx *gin.Context, err error) {
	h.observe("error")
	h.log.ErrorContext(ctx.Request.Context(), "oauth login failed", "provider", h.providerName(), "err", err)
	ctx.String(http.StatusInternalServerError, "OAuth Error: %s", err.Error())
}

func (h *OAuthHandler) Start(ctx *gin.Context) {
	if h.provider == nil {
		h.oauthError(ctx, errors.New("google login is not configured"))
		return
	}

	state, err := oauth.NewState(ctx.Request.Context(), h.states)
	if err != nil {
		h.oauthError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

func (h *OAuthHandler) Callback(ctx *gin.Context) {
	if h.provider == nil {
		h.oauthError(ctx, errors.New("google login is not configured"))
		return
	}

	if msg := ctx.Query("error"); msg != "" {
		h.oauthError(ctx, errors.New(msg))
		return
	}

	if err := h.states.Consume(ctx.Request.Context(), ctx.Query("state")); err != nil {
		h.oauthError(ctx, err)
		return
	}

	xctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	ident, err := h.provider.Exchange(xctx, ctx.Query("code"))
	if errors.Is(err, oauth.ErrNoEmail) {
		h.observe("no_email")
		ctx.String(http.StatusBadRequest, "Error: Could not retrieve email from Google.")
		return
	}
	if err != nil {
		h.oauthError(ctx, err)
		return
	}

	u, err := h.findOrCreate(ident)
	if err != nil {
		h.oauthError(ctx, err)
		return
	}

	token, err := h.tokens.IssueToken(strconv.FormatInt(u.ID, 10))
	if err != nil {
		h.oauthError(ctx, err)
		return
	}

	h.observe("ok")
	h.log.InfoContext(ctx.Request.Context(), "oauth login", "provider", h.providerName(), "user_id", u.ID)
	ctx.Redirect(http.StatusFound, dashboardURL(token))
}

// findOrCreate returns the account for ident, creating it on first login.
func (h *OAuthHandler) findOrCreate(ident oauth.Identity) (user.User, error) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.GetByEmail(cctx, ident.Email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, err
	}

	name := ident.Name
	if name == "" {
		name = user.NameFromEmail(ident.Email)
	}

	// accounts created here have no usable password of their own
	hash, err := security.HashPassword("google_oauth_" + ident.Email)
	if err != nil {
		return user.User{}, err
	}

	u, err = h.users.Create(cctx, user.NewUser{Name: name, Email: ident.Email, PasswordHash: hash})
	if errors.Is(err, user.ErrEmailAlreadyUsed) {
		return h.users.GetByEmail(cctx, ident.Email)
	}
	return u, err
}
