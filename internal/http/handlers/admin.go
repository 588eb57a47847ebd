package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stackquiz/accounts-api/internal/config"
	"github.com/stackquiz/accounts-api/internal/domain/user"
	"github.com/stackquiz/accounts-api/internal/repo/postgres"
)

type AdminStore interface {
	List(ctx context.Context) ([]user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	UpdateAdmin(ctx context.Context, id, name, email, role string) (user.User, error)
	Delete(ctx context.Context, id string) error
}

type AdminHandler struct {
	users AdminStore
}

func NewAdminHandler(users AdminStore) *AdminHandler {
	return &AdminHandler{users: users}
}

type AdminUpdateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Role  string `json:"role" binding:"required,oneof=User Admin"`
}

func (h *AdminHandler) GetAllUsers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	users, err := h.users.List(cctx)

	if err != nil {
		RespondInternal(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
	})
}

func (h *AdminHandler) GetSingleUser(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondFailure(ctx, http.StatusNotFound, "User not found")
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

func (h *AdminHandler) UpdateUser(ctx *gin.Context) {
	id := ctx.Param("id")

	var req AdminUpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// The email may stay on the same account; only a *different* holder is a
	// conflict. Nothing is mutated on the conflict path.
	existing, err := h.users.GetByEmail(cctx, req.Email)

	switch {
	case err == nil:
		if existing.ID != id {
			RespondFailure(ctx, http.StatusBadRequest, "User already exist with this email")
			return
		}
	case errors.Is(err, postgres.ErrUserNotFound):
	default:
		RespondInternal(ctx, err)
		return
	}

	u, err := h.users.UpdateAdmin(cctx, id, req.Name, req.Email, req.Role)

	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrUserNotFound):
			RespondFailure(ctx, http.StatusNotFound, "User not found")
		case errors.Is(err, postgres.ErrEmailTaken):
			RespondFailure(ctx, http.StatusBadRequest, "User already exist with this email")
		default:
			RespondInternal(ctx, err)
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    u,
	})
}

func (h *AdminHandler) DeleteUser(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.users.Delete(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondFailure(ctx, http.StatusNotFound, "User not found")
			return
		}

		RespondInternal(ctx, err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "User deleted successfully")
}
