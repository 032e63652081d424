package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/geocoder89/wellbot/internal/config"
	"github.com/geocoder89/wellbot/internal/domain/user"
	"github.com/geocoder89/wellbot/internal/http/middlewares"
	"github.com/geocoder89/wellbot/internal/security"
	"github.com/gin-gonic/gin"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, in user.NewUser) (user.User, error)
}

type UserStore interface {
	UserReader
	UserWriter
}

type TokenIssuer interface {
	IssueToken(subject string) (string, error)
}

// LoginObserver counts login attempts by method and outcome.
type LoginObserver interface {
	ObserveLogin(method, outcome string)
}

type AuthHandler struct {
	users   UserStore
	tokens  TokenIssuer
	metrics LoginObserver
	log     *slog.Logger
}

func NewAuthHandler(users UserStore, tokens TokenIssuer, metrics LoginObserver, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		users:   users,
		tokens:  tokens,
		metrics: metrics,
		log:     log,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,wellbot_email"`
	Password string `json:"password" binding:"required"`
	Language string `json:"language"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) observe(method, outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveLogin(method, outcome)
	}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := shouldBindJSON(ctx, &req); err != nil {
		rules := failedRules(err)
		if rules["wellbot_email"] && !rules["required"] {
			RespondBadRequest(ctx, "Invalid email format", parseBindError(err, &req))
			return
		}
		RespondBadRequest(ctx, "Missing required fields", parseBindError(err, &req))
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	_, err := h.users.GetByEmail(cctx, req.Email)
	switch {
	case err == nil:
		RespondMessage(ctx, http.StatusAccepted, "User already exists. Please login.")
		return
	case !errors.Is(err, user.ErrNotFound):
		h.log.ErrorContext(ctx.Request.Context(), "register lookup failed", "err", err)
		RespondInternal(ctx, "Could not create user")
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.users.Create(cctx, user.NewUser{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Language:     req.Language,
	})
	if err != nil {
		// lost a race with a concurrent registration for the same email
		if errors.Is(err, user.ErrEmailAlreadyUsed) {
			RespondMessage(ctx, http.StatusAccepted, "User already exists. Please login.")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "register create failed", "err", err)
		RespondInternal(ctx, "Could not create user")
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "user registered", "user_id", u.ID)
	RespondMessage(ctx, http.StatusCreated, "User registered successfully!")
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if err := shouldBindJSON(ctx, &req); err != nil {
		h.observe("password", "bad_request")
		RespondUnauthorized(ctx, "invalid_credentials", "Could not verify")
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if errors.Is(err, user.ErrNotFound) {
		h.observe("password", "unknown_user")
		RespondUnauthorized(ctx, "user_not_found", "User not found")
		return
	}
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "login lookup failed", "err", err)
		RespondInternal(ctx, "Could not verify")
		return
	}

	if !security.CheckPassword(foundUser.PasswordHash, req.Password) {
		h.observe("password", "bad_password")
		RespondUnauthorized(ctx, "invalid_credentials", "Could not verify")
		return
	}

	token, err := h.tokens.IssueToken(strconv.FormatInt(foundUser.ID, 10))
	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	h.observe("password", "ok")
	ctx.JSON(http.StatusOK, gin.H{"token": token})
}

// Profile needs RequireAuth in front of it.
func (h *AuthHandler) Profile(ctx *gin.Context) {
	raw, _ := middlewares.UserIDFromContext(ctx)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		RespondNotFound(ctx, "User not found")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)
	if errors.Is(err, user.ErrNotFound) {
		h.log.WarnContext(ctx.Request.Context(), "profile for unknown user", "user_id", id)
		RespondNotFound(ctx, "User not found")
		return
	}
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "profile lookup failed", "err", err)
		RespondInternal(ctx, "Could not load profile")
		return
	}

	ctx.JSON(http.StatusOK, u.Profile())
}

// MimicLogin issues a token for a fixed user and lands on the dashboard.
// The router only mounts it outside prod.
func (h *AuthHandler) MimicLogin(userID int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := h.tokens.IssueToken(strconv.FormatInt(userID, 10))
		if err != nil {
			RespondInternal(ctx, "Could not generate token")
			return
		}

		h.observe("mimic", "ok")
		h.log.DebugContext(ctx.Request.Context(), "mimic login", "user_id", userID)
		ctx.Redirect(http.StatusFound, dashboardURL(token))
	}
}

func dashboardURL(token string) string {
	return "/dashboard?token=" + url.QueryEscape(token)
}
