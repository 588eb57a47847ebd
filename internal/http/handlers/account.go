package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stackquiz/accounts-api/internal/config"
	"github.com/stackquiz/accounts-api/internal/domain/user"
	"github.com/stackquiz/accounts-api/internal/http/middlewares"
	"github.com/stackquiz/accounts-api/internal/repo/postgres"
	"github.com/stackquiz/accounts-api/internal/security"
)

type AccountStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateProfile(ctx context.Context, id, name, email string) (user.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// AccountHandler covers the self-service routes. It always re-reads the store
// so responses reflect writes immediately, regardless of the auth cache.
type AccountHandler struct {
	users AccountStore
}

func NewAccountHandler(users AccountStore) *AccountHandler {
	return &AccountHandler{users: users}
}

type UpdatePasswordRequest struct {
	OldPassword     string `json:"oldPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// The profile route can change name and email only; role never.
type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
}

func (h *AccountHandler) GetUserDetails(ctx *gin.Context) {
	current, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondFailure(ctx, http.StatusUnauthorized, "Please login to access this resource")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, current.ID)

	if err != nil {
		RespondInternal(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    u,
	})
}

func (h *AccountHandler) UpdateUserPassword(ctx *gin.Context) {
	current, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondFailure(ctx, http.StatusUnauthorized, "Please login to access this resource")
		return
	}

	var req UpdatePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// Fetch a fresh record: the cached copy may predate a recent change.
	u, err := h.users.GetByID(cctx, current.ID)

	if err != nil {
		RespondInternal(ctx, err)
		return
	}

	if err := security.CheckPassword(u.PasswordHash, req.OldPassword); err != nil {
		RespondFailure(ctx, http.StatusBadRequest, "Old password not verified")
		return
	}

	if req.NewPassword != req.ConfirmPassword {
		RespondFailure(ctx, http.StatusBadRequest, "Password doesn't matched")
		return
	}

	hash, err := security.HashPassword(req.NewPassword)

	if err != nil {
		RespondInternal(ctx, err)
		return
	}

	if err := h.users.UpdatePassword(cctx, u.ID, hash); err != nil {
		RespondInternal(ctx, err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "Password Update Successfully")
}

func (h *AccountHandler) UpdateUserProfile(ctx *gin.Context) {
	current, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondFailure(ctx, http.StatusUnauthorized, "Please login to access this resource")
		return
	}

	var req UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.UpdateProfile(cctx, current.ID, req.Name, req.Email)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailTaken) {
			RespondFailure(ctx, http.StatusBadRequest, "User already exist with this email")
			return
		}

		RespondInternal(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    u,
	})
}
