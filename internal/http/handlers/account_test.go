package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stackquiz/accounts-api/internal/domain/user"
	"github.com/stackquiz/accounts-api/internal/http/handlers"
	"github.com/stackquiz/accounts-api/internal/http/middlewares"
	"github.com/stackquiz/accounts-api/internal/repo/postgres"
	"github.com/stackquiz/accounts-api/internal/security"
)

func asUser(u user.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		middlewares.SetCurrentUser(c, u)
		c.Next()
	}
}

func TestGetUserDetails(t *testing.T) {
	repo := &fakeUsersRepo{
		getByIDFn: func(ctx context.Context, id string) (user.User, error) {
			return user.User{ID: id, Name: "Alice", Email: "alice@example.com", Role: user.RoleUser, PasswordHash: "$2a$10$secret"}, nil
		},
	}

	h := handlers.NewAccountHandler(repo)
	router := setupRouter(http.MethodGet, "/myaccount",
		asUser(user.User{ID: "user-1"}), h.GetUserDetails)

	w := doJSON(t, router, http.MethodGet, "/myaccount", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)

	u, ok := body["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("user missing from response: %s", w.Body.String())
	}
	if u["email"] != "alice@example.com" {
		t.Errorf("user.email = %q", u["email"])
	}
	if _, leaked := u["passwordHash"]; leaked {
		t.Error("password hash leaked into the response")
	}
}

func TestUpdateUserPassword(t *testing.T) {
	oldHash, err := security.HashPassword("old-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "wrong old password",
			body:        `{"oldPassword":"not-the-one","newPassword":"new-password1","confirmPassword":"new-password1"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Old password not verified",
		},
		{
			name:        "confirmation mismatch",
			body:        `{"oldPassword":"old-password","newPassword":"new-password1","confirmPassword":"new-password2"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Password doesn't matched",
		},
		{
			name:        "success",
			body:        `{"oldPassword":"old-password","newPassword":"new-password1","confirmPassword":"new-password1"}`,
			wantStatus:  http.StatusOK,
			wantMessage: "Password Update Successfully",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			updated := false

			repo := &fakeUsersRepo{
				getByIDFn: func(ctx context.Context, id string) (user.User, error) {
					return user.User{ID: id, PasswordHash: oldHash}, nil
				},
				updatePasswordFn: func(ctx context.Context, id, passwordHash string) error {
					updated = true

					if err := security.CheckPassword(passwordHash, "new-password1"); err != nil {
						t.Error("stored hash does not match the new password")
					}
					return nil
				},
			}

			h := handlers.NewAccountHandler(repo)
			router := setupRouter(http.MethodPut, "/password/update",
				asUser(user.User{ID: "user-1"}), h.UpdateUserPassword)

			w := doJSON(t, router, http.MethodPut, "/password/update", tc.body)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.wantStatus, w.Body.String())
			}

			body := decodeBody(t, w)
			if body["message"] != tc.wantMessage {
				t.Errorf("message = %q, want %q", body["message"], tc.wantMessage)
			}

			if tc.wantStatus == http.StatusOK && !updated {
				t.Error("password was never updated")
			}
			if tc.wantStatus != http.StatusOK && updated {
				t.Error("password updated on a failure path")
			}
		})
	}
}

func TestUpdateUserProfile(t *testing.T) {
	var gotName, gotEmail string

	repo := &fakeUsersRepo{
		updateProfileFn: func(ctx context.Context, id, name, email string) (user.User, error) {
			gotName, gotEmail = name, email
			// role comes back unchanged; the profile path cannot touch it
			return user.User{ID: id, Name: name, Email: email, Role: user.RoleUser}, nil
		},
	}

	h := handlers.NewAccountHandler(repo)
	router := setupRouter(http.MethodPut, "/myaccount/update",
		asUser(user.User{ID: "user-1", Role: user.RoleUser}), h.UpdateUserProfile)

	w := doJSON(t, router, http.MethodPut, "/myaccount/update",
		`{"name":"Alice B","email":"aliceb@example.com","role":"Admin"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}

	if gotName != "Alice B" || gotEmail != "aliceb@example.com" {
		t.Errorf("profile update got name=%q email=%q", gotName, gotEmail)
	}

	body := decodeBody(t, w)
	u, _ := body["user"].(map[string]interface{})
	if u["role"] != user.RoleUser {
		t.Errorf("role changed via profile update: %q", u["role"])
	}
}

func TestUpdateUserProfileEmailConflict(t *testing.T) {
	repo := &fakeUsersRepo{
		updateProfileFn: func(ctx context.Context, id, name, email string) (user.User, error) {
			return user.User{}, postgres.ErrEmailTaken
		},
	}

	h := handlers.NewAccountHandler(repo)
	router := setupRouter(http.MethodPut, "/myaccount/update",
		asUser(user.User{ID: "user-1"}), h.UpdateUserProfile)

	w := doJSON(t, router, http.MethodPut, "/myaccount/update",
		`{"name":"Alice","email":"taken@example.com"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	body := decodeBody(t, w)
	if body["message"] != "User already exist with this email" {
		t.Errorf("message = %q", body["message"])
	}
}
