package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stackquiz/accounts-api/internal/config"
	"github.com/stackquiz/accounts-api/internal/domain/user"
	"github.com/stackquiz/accounts-api/internal/mail"
	"github.com/stackquiz/accounts-api/internal/observability"
	"github.com/stackquiz/accounts-api/internal/repo/postgres"
	"github.com/stackquiz/accounts-api/internal/security"
	"github.com/stackquiz/accounts-api/internal/utils"
	"github.com/stackquiz/accounts-api/internal/validation"
)

type AuthStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, name, email, passwordHash, role string) (user.User, error)
	GetByResetToken(ctx context.Context, digest string, now time.Time) (user.User, error)
	SetResetToken(ctx context.Context, id, digest string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id string) error
	ResetPassword(ctx context.Context, id, passwordHash string) error
}

type TokenIssuer interface {
	GenerateSessionToken(userID, email, role string) (string, error)
	GenerateResetToken() (raw, digest string, expiresAt time.Time, err error)
	HashResetToken(raw string) string
}

type AuthHandler struct {
	users  AuthStore
	tokens TokenIssuer
	mailer mail.Mailer
	prom   *observability.Prom
	cfg    config.Config
}

func NewAuthHandler(users AuthStore, tokens TokenIssuer, mailer mail.Mailer, prom *observability.Prom, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		mailer: mailer,
		prom:   prom,
		cfg:    cfg,
	}
}

// Pointer fields distinguish "absent" from "empty"; the rule chain reports the
// two differently.
type RegisterRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// Advisory duplicate check for the rule chain; the unique constraint on
	// create still has the final word.
	emailTaken := false

	if req.Email != nil {
		_, err := h.users.GetByEmail(cctx, *req.Email)

		switch {
		case err == nil:
			emailTaken = true
		case errors.Is(err, postgres.ErrUserNotFound):
		default:
			RespondInternal(ctx, err)
			return
		}
	}

	if ruleErr := validation.Register(validation.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		EmailTaken: emailTaken,
	}); ruleErr != nil {
		RespondFailure(ctx, http.StatusBadRequest, ruleErr.Message)
		return
	}

	hash, err := security.HashPassword(*req.Password)

	if err != nil {
		RespondInternal(ctx, err)
		return
	}

	u, err := h.users.Create(cctx, *req.Name, *req.Email, hash, user.RoleUser)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailTaken) {
			RespondFailure(ctx, http.StatusBadRequest, "User already exist with this email")
			return
		}

		RespondInternal(ctx, err)
		return
	}

	token, err := h.tokens.GenerateSessionToken(u.ID, u.Email, u.Role)

	if err != nil {
		RespondInternal(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success":          true,
		"message":          "User Created Successfully",
		"user":             u,
		"accountCreatedOn": utils.FormatAccountCreated(u.CreatedAt),
		"token":            token,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			// Identical body for unknown email and wrong password.
			RespondFailure(ctx, http.StatusUnauthorized, "Invalid credential")
			return
		}

		RespondInternal(ctx, err)
		return
	}

	if err := security.CheckPassword(foundUser.PasswordHash, req.Password); err != nil {
		RespondFailure(ctx, http.StatusUnauthorized, "Invalid credential")
		return
	}

	token, err := h.tokens.GenerateSessionToken(foundUser.ID, foundUser.Email, foundUser.Role)

	if err != nil {
		RespondInternal(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login Successfully",
		"user":    foundUser,
		"token":   token,
	})
}

func (h *AuthHandler) ForgotPassword(ctx *gin.Context) {
	var req ForgotPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondFailure(ctx, http.StatusNotFound, "This email not matched")
			return
		}

		RespondInternal(ctx, err)
		return
	}

	raw, digest, expiresAt, err := h.tokens.GenerateResetToken()

	if err != nil {
		RespondInternal(ctx, err)
		return
	}

	if err := h.users.SetResetToken(cctx, foundUser.ID, digest, expiresAt); err != nil {
		RespondInternal(ctx, err)
		return
	}

	resetURL := fmt.Sprintf("%s/password/reset/%s", h.cfg.ResetURLBase, raw)

	msg := mail.Message{
		To:      foundUser.Email,
		Subject: "StackQuiz Password Recovery",
		Body: fmt.Sprintf(
			"Your password reset link is: \n\n %s \n\n If it was not request by you pls don't share this and ignore this message.",
			resetURL,
		),
	}

	sendErr := h.mailer.Send(ctx.Request.Context(), msg)

	if h.prom != nil {
		h.prom.ObserveMail(sendErr)
	}

	if sendErr != nil {
		// Single attempt, no retry: roll back only the two reset fields so the
		// stale token cannot linger. The lookup context may have expired while
		// the mailer was hanging, so the rollback gets its own.
		clearCtx, clearCancel := config.WithTimeout(3 * time.Second)
		defer clearCancel()

		if clearErr := h.users.ClearResetToken(clearCtx, foundUser.ID); clearErr != nil {
			RespondInternal(ctx, clearErr)
			return
		}

		RespondInternal(ctx, sendErr)
		return
	}

	RespondMessage(ctx, http.StatusOK,
		fmt.Sprintf("We have sent you a password reset email in %s successfully", foundUser.Email))
}

func (h *AuthHandler) ResetPassword(ctx *gin.Context) {
	digest := h.tokens.HashResetToken(ctx.Param("token"))

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByResetToken(cctx, digest, time.Now().UTC())

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			// Same message for unknown and expired tokens.
			RespondFailure(ctx, http.StatusBadRequest, "Your password reset link is expired. Try again")
			return
		}

		RespondInternal(ctx, err)
		return
	}

	var req ResetPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.Password != req.ConfirmPassword {
		RespondFailure(ctx, http.StatusBadRequest, "Password doesn't matched")
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, err)
		return
	}

	// Updates the hash and clears both reset fields in one statement.
	if err := h.users.ResetPassword(cctx, foundUser.ID, hash); err != nil {
		RespondInternal(ctx, err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "Password Reset Successfully")
}
