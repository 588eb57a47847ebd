package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stackquiz/accounts-api/internal/domain/user"
	"github.com/stackquiz/accounts-api/internal/http/handlers"
	"github.com/stackquiz/accounts-api/internal/repo/postgres"
)

func TestGetAllUsers(t *testing.T) {
	repo := &fakeUsersRepo{
		listFn: func(ctx context.Context) ([]user.User, error) {
			return []user.User{
				{ID: "user-1", Email: "a@b.com", Role: user.RoleUser},
				{ID: "user-2", Email: "admin@b.com", Role: user.RoleAdmin},
			}, nil
		},
	}

	h := handlers.NewAdminHandler(repo)
	router := setupRouter(http.MethodGet, "/admin/users", h.GetAllUsers)

	w := doJSON(t, router, http.MethodGet, "/admin/users", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)

	users, ok := body["users"].([]interface{})
	if !ok {
		t.Fatalf("users missing from response: %s", w.Body.String())
	}
	if len(users) != 2 {
		t.Errorf("len(users) = %d, want 2", len(users))
	}
}

func TestGetSingleUserNotFound(t *testing.T) {
	h := handlers.NewAdminHandler(&fakeUsersRepo{})
	router := setupRouter(http.MethodGet, "/admin/user/:id", h.GetSingleUser)

	w := doJSON(t, router, http.MethodGet, "/admin/user/ghost", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	body := decodeBody(t, w)
	if body["message"] != "User not found" {
		t.Errorf("message = %q", body["message"])
	}
}

func TestAdminUpdateUser(t *testing.T) {
	tests := []struct {
		name        string
		targetID    string
		body        string
		repoSetUp   func(*fakeUsersRepo)
		wantStatus  int
		wantMessage string
		wantUpdate  bool
	}{
		{
			name:     "email held by a different user",
			targetID: "user-1",
			body:     `{"name":"Alice","email":"taken@b.com","role":"User"}`,
			repoSetUp: func(f *fakeUsersRepo) {
				f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
					return user.User{ID: "user-2", Email: email}, nil
				}
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "User already exist with this email",
			wantUpdate:  false,
		},
		{
			name:     "email already on the same account",
			targetID: "user-1",
			body:     `{"name":"Alice","email":"alice@b.com","role":"Admin"}`,
			repoSetUp: func(f *fakeUsersRepo) {
				f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
					return user.User{ID: "user-1", Email: email}, nil
				}
			},
			wantStatus: http.StatusOK,
			wantUpdate: true,
		},
		{
			name:       "fresh email",
			targetID:   "user-1",
			body:       `{"name":"Alice","email":"new@b.com","role":"User"}`,
			wantStatus: http.StatusOK,
			wantUpdate: true,
		},
		{
			name:     "target does not exist",
			targetID: "ghost",
			body:     `{"name":"Alice","email":"new@b.com","role":"User"}`,
			repoSetUp: func(f *fakeUsersRepo) {
				f.updateAdminFn = func(ctx context.Context, id, name, email, role string) (user.User, error) {
					return user.User{}, postgres.ErrUserNotFound
				}
			},
			wantStatus:  http.StatusNotFound,
			wantMessage: "User not found",
			wantUpdate:  false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			updated := false

			repo := &fakeUsersRepo{
				updateAdminFn: func(ctx context.Context, id, name, email, role string) (user.User, error) {
					updated = true
					return user.User{ID: id, Name: name, Email: email, Role: role}, nil
				},
			}

			if tc.repoSetUp != nil {
				tc.repoSetUp(repo)
			}

			h := handlers.NewAdminHandler(repo)
			router := setupRouter(http.MethodPut, "/admin/account/update/:id", h.UpdateUser)

			w := doJSON(t, router, http.MethodPut, "/admin/account/update/"+tc.targetID, tc.body)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.wantStatus, w.Body.String())
			}

			if tc.wantMessage != "" {
				body := decodeBody(t, w)
				if body["message"] != tc.wantMessage {
					t.Errorf("message = %q, want %q", body["message"], tc.wantMessage)
				}
			}

			if updated != tc.wantUpdate {
				t.Errorf("updated = %v, want %v", updated, tc.wantUpdate)
			}
		})
	}
}

func TestAdminUpdateUserRejectsUnknownRole(t *testing.T) {
	h := handlers.NewAdminHandler(&fakeUsersRepo{})
	router := setupRouter(http.MethodPut, "/admin/account/update/:id", h.UpdateUser)

	w := doJSON(t, router, http.MethodPut, "/admin/account/update/user-1",
		`{"name":"Alice","email":"a@b.com","role":"Root"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (%s)", w.Code, w.Body.String())
	}
}

func TestAdminUpdateUserCanChangeRole(t *testing.T) {
	var gotRole string

	repo := &fakeUsersRepo{
		updateAdminFn: func(ctx context.Context, id, name, email, role string) (user.User, error) {
			gotRole = role
			return user.User{ID: id, Name: name, Email: email, Role: role}, nil
		},
	}

	h := handlers.NewAdminHandler(repo)
	router := setupRouter(http.MethodPut, "/admin/account/update/:id", h.UpdateUser)

	w := doJSON(t, router, http.MethodPut, "/admin/account/update/user-1",
		`{"name":"Alice","email":"a@b.com","role":"Admin"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}

	if gotRole != user.RoleAdmin {
		t.Errorf("role = %q, want Admin", gotRole)
	}
}

func TestDeleteUser(t *testing.T) {
	tests := []struct {
		name        string
		repoSetUp   func(*fakeUsersRepo)
		wantStatus  int
		wantMessage string
	}{
		{
			name: "not found",
			repoSetUp: func(f *fakeUsersRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return postgres.ErrUserNotFound
				}
			},
			wantStatus:  http.StatusNotFound,
			wantMessage: "User not found",
		},
		{
			name:        "success",
			wantStatus:  http.StatusOK,
			wantMessage: "User deleted successfully",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeUsersRepo{}

			if tc.repoSetUp != nil {
				tc.repoSetUp(repo)
			}

			h := handlers.NewAdminHandler(repo)
			router := setupRouter(http.MethodDelete, "/admin/user/delete/:id", h.DeleteUser)

			w := doJSON(t, router, http.MethodDelete, "/admin/user/delete/user-1", "")

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.wantStatus, w.Body.String())
			}

			body := decodeBody(t, w)
			if body["message"] != tc.wantMessage {
				t.Errorf("message = %q, want %q", body["message"], tc.wantMessage)
			}
		})
	}
}
