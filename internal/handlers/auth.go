package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// AuthHandler implements the account lifecycle endpoints.
type AuthHandler struct {
	Users    UserStore
	Sessions SessionManager
	Mailer   Mailer
	Limiter  RateLimiter
	NowFunc  func() time.Time
}

func (h AuthHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc().UTC()
	}
	return time.Now().UTC()
}

type signUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

type authResponse struct {
	User   models.User          `json:"user"`
	Tokens models.SessionTokens `json:"tokens"`
}

// SignUp handles POST /api/v1/auth/signup.
func (h AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "signup") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many signup attempts")
		return
	}

	var req signUpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)

	if !usernamePattern.MatchString(req.Username) {
		respondError(ctx, w, http.StatusBadRequest, "username must be 3-30 characters of a-z, 0-9, or _")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid email address")
		return
	}
	if len(req.Password) < 8 {
		respondError(ctx, w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to create account")
		return
	}

	now := h.now()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  req.Username,
		Email:     req.Email,
		FullName:  req.FullName,
		Password:  string(hash),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "username or email already in use")
			return
		}
		logger.Error("create user", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to create account")
		return
	}

	tokens, err := h.Sessions.Issue(ctx, user.ID)
	if err != nil {
		logger.Error("issue session", "userId", user.ID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "account created but session could not be issued")
		return
	}

	respond(ctx, w, http.StatusCreated, authResponse{User: user, Tokens: tokens}, "account created")
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Login handles POST /api/v1/auth/login. The identifier may be a username
// or an email address.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "login") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Identifier = strings.TrimSpace(strings.ToLower(req.Identifier))
	if req.Identifier == "" || req.Password == "" {
		respondError(ctx, w, http.StatusBadRequest, "identifier and password are required")
		return
	}

	var (
		user models.User
		err  error
	)
	if strings.Contains(req.Identifier, "@") {
		user, err = h.Users.FindByEmail(ctx, req.Identifier)
	} else {
		user, err = h.Users.FindByUsername(ctx, req.Identifier)
	}
	if err != nil {
		logger.Warn("login user lookup failed", "identifier", req.Identifier, "error", err)
		respondError(ctx, w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.Warn("login password mismatch", "userId", user.ID)
		respondError(ctx, w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	tokens, err := h.Sessions.Issue(ctx, user.ID)
	if err != nil {
		logger.Error("issue session", "userId", user.ID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create session")
		return
	}

	respond(ctx, w, http.StatusOK, authResponse{User: user, Tokens: tokens}, "logged in")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /api/v1/auth/refresh.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		respondError(ctx, w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	tokens, err := h.Sessions.Refresh(ctx, req.RefreshToken)
	if err != nil {
		logging.FromContext(ctx).Warn("refresh rejected", "error", err)
		respondError(ctx, w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	respond(ctx, w, http.StatusOK, tokens, "session refreshed")
}

// Logout handles POST /api/v1/auth/logout. Revocation is idempotent.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}

	h.Sessions.Revoke(ctx, req.RefreshToken)
	respond(ctx, w, http.StatusOK, nil, "logged out")
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

// RequestPasswordReset handles POST /api/v1/auth/password-reset. The
// response never reveals whether the address has an account.
func (h AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "password-reset") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many reset attempts")
		return
	}

	var req passwordResetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid email address")
		return
	}

	user, err := h.Users.FindByEmail(ctx, req.Email)
	if err == nil && h.Mailer != nil {
		tokens, issueErr := h.Sessions.Issue(ctx, user.ID)
		if issueErr != nil {
			logger.Error("issue reset session", "userId", user.ID, "error", issueErr)
		} else {
			body := "Use this token to reset your password: " + tokens.AccessToken
			if sendErr := h.Mailer.Send(ctx, user.Email, "Password reset", body); sendErr != nil {
				logger.Error("send reset mail", "userId", user.ID, "error", sendErr)
			}
		}
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		logger.Error("reset user lookup failed", "error", err)
	}

	respond(ctx, w, http.StatusOK, nil, "if the address exists, a reset mail has been sent")
}
