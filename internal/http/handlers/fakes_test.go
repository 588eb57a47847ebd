package handlers_test

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stackquiz/accounts-api/internal/domain/user"
	"github.com/stackquiz/accounts-api/internal/mail"
	"github.com/stackquiz/accounts-api/internal/repo/postgres"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake store implementing the handler-side store interfaces with function
// fields, so each test overrides only what it needs.

type fakeUsersRepo struct {
	getByEmailFn      func(ctx context.Context, email string) (user.User, error)
	getByIDFn         func(ctx context.Context, id string) (user.User, error)
	getByResetTokenFn func(ctx context.Context, digest string, now time.Time) (user.User, error)
	createFn          func(ctx context.Context, name, email, passwordHash, role string) (user.User, error)
	updateProfileFn   func(ctx context.Context, id, name, email string) (user.User, error)
	updateAdminFn     func(ctx context.Context, id, name, email, role string) (user.User, error)
	updatePasswordFn  func(ctx context.Context, id, passwordHash string) error
	setResetTokenFn   func(ctx context.Context, id, digest string, expiresAt time.Time) error
	clearResetTokenFn func(ctx context.Context, id string) error
	resetPasswordFn   func(ctx context.Context, id, passwordHash string) error
	listFn            func(ctx context.Context) ([]user.User, error)
	deleteFn          func(ctx context.Context, id string) error
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return user.User{}, postgres.ErrUserNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return user.User{}, postgres.ErrUserNotFound
}

func (f *fakeUsersRepo) GetByResetToken(ctx context.Context, digest string, now time.Time) (user.User, error) {
	if f.getByResetTokenFn != nil {
		return f.getByResetTokenFn(ctx, digest, now)
	}
	return user.User{}, postgres.ErrUserNotFound
}

func (f *fakeUsersRepo) Create(ctx context.Context, name, email, passwordHash, role string) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, name, email, passwordHash, role)
	}
	return user.User{}, nil
}

func (f *fakeUsersRepo) UpdateProfile(ctx context.Context, id, name, email string) (user.User, error) {
	if f.updateProfileFn != nil {
		return f.updateProfileFn(ctx, id, name, email)
	}
	return user.User{}, nil
}

func (f *fakeUsersRepo) UpdateAdmin(ctx context.Context, id, name, email, role string) (user.User, error) {
	if f.updateAdminFn != nil {
		return f.updateAdminFn(ctx, id, name, email, role)
	}
	return user.User{}, nil
}

func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if f.updatePasswordFn != nil {
		return f.updatePasswordFn(ctx, id, passwordHash)
	}
	return nil
}

func (f *fakeUsersRepo) SetResetToken(ctx context.Context, id, digest string, expiresAt time.Time) error {
	if f.setResetTokenFn != nil {
		return f.setResetTokenFn(ctx, id, digest, expiresAt)
	}
	return nil
}

func (f *fakeUsersRepo) ClearResetToken(ctx context.Context, id string) error {
	if f.clearResetTokenFn != nil {
		return f.clearResetTokenFn(ctx, id)
	}
	return nil
}

func (f *fakeUsersRepo) ResetPassword(ctx context.Context, id, passwordHash string) error {
	if f.resetPasswordFn != nil {
		return f.resetPasswordFn(ctx, id, passwordHash)
	}
	return nil
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]user.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeMailer struct {
	mu     sync.Mutex
	sendFn func(ctx context.Context, msg mail.Message) error
	sent   []mail.Message
}

func (f *fakeMailer) Send(ctx context.Context, msg mail.Message) error {
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.mu.Unlock()

	if f.sendFn != nil {
		return f.sendFn(ctx, msg)
	}
	return nil
}

// mounts one handler per test

func setupRouter(method, path string, handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, handlers...)

	return r
}
