package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stackquiz/accounts-api/internal/domain/user"
	"github.com/stackquiz/accounts-api/internal/observability"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is raised off the users_email_uniq constraint, which is the
	// single source of truth for duplicates. Pre-checks are advisory only.
	ErrEmailTaken = errors.New("email already in use")
)

const userColumns = `id, name, email, password_hash, role, reset_password_token, reset_password_expire, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.ResetPasswordToken,
		&u.ResetPasswordExpire,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

// A malformed uuid in an id comparison raises 22P02; it can never match a
// row, so callers see the same ErrUserNotFound as for an absent one.
func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "users_email_uniq" {
		return ErrEmailTaken
	}

	return err
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	var err error

	dbErr := r.observe("users.get_by_email", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
		return err
	})

	return u, dbErr
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User
	var err error

	dbErr := r.observe("users.get_by_id", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return err
	})

	return u, dbErr
}

// GetByResetToken finds the user whose stored reset digest matches and whose
// expiry is still strictly in the future. Anything else is ErrUserNotFound.
func (r *UsersRepo) GetByResetToken(ctx context.Context, digest string, now time.Time) (user.User, error) {
	var u user.User
	var err error

	dbErr := r.observe("users.get_by_reset_token", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+`
			 FROM users
			 WHERE reset_password_token = $1 AND reset_password_expire > $2`,
			digest, now))
		return err
	})

	return u, dbErr
}

func (r *UsersRepo) Create(ctx context.Context, name, email, passwordHash, role string) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.observe("users.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt,
		)
		return execErr
	})

	if err != nil {
		return user.User{}, mapUniqueViolation(err)
	}

	return u, nil
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, id, name, email string) (user.User, error) {
	var u user.User
	var err error

	dbErr := r.observe("users.update_profile", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`UPDATE users
			 SET name = $2, email = $3, updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+userColumns,
			id, name, email))
		return err
	})

	if dbErr != nil {
		return user.User{}, mapUniqueViolation(dbErr)
	}

	return u, nil
}

// UpdateAdmin is the only write path allowed to change a user's role.
func (r *UsersRepo) UpdateAdmin(ctx context.Context, id, name, email, role string) (user.User, error) {
	var u user.User
	var err error

	dbErr := r.observe("users.update_admin", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`UPDATE users
			 SET name = $2, email = $3, role = $4, updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+userColumns,
			id, name, email, role))
		return err
	})

	if dbErr != nil {
		return user.User{}, mapUniqueViolation(dbErr)
	}

	return u, nil
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.observe("users.update_password", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
			id, passwordHash)

		if err != nil {
			if isInvalidID(err) {
				return ErrUserNotFound
			}
			return err
		}

		if tag.RowsAffected() == 0 {
			return ErrUserNotFound
		}

		return nil
	})
}

func (r *UsersRepo) SetResetToken(ctx context.Context, id, digest string, expiresAt time.Time) error {
	return r.observe("users.set_reset_token", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE users
			 SET reset_password_token = $2, reset_password_expire = $3, updated_at = NOW()
			 WHERE id = $1`,
			id, digest, expiresAt)

		if err != nil {
			if isInvalidID(err) {
				return ErrUserNotFound
			}
			return err
		}

		if tag.RowsAffected() == 0 {
			return ErrUserNotFound
		}

		return nil
	})
}

func (r *UsersRepo) ClearResetToken(ctx context.Context, id string) error {
	return r.observe("users.clear_reset_token", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE users
			 SET reset_password_token = NULL, reset_password_expire = NULL, updated_at = NOW()
			 WHERE id = $1`,
			id)

		if isInvalidID(err) {
			return ErrUserNotFound
		}
		return err
	})
}

// ResetPassword updates the hash and clears both reset fields in one statement.
func (r *UsersRepo) ResetPassword(ctx context.Context, id, passwordHash string) error {
	return r.observe("users.reset_password", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE users
			 SET password_hash = $2,
			     reset_password_token = NULL,
			     reset_password_expire = NULL,
			     updated_at = NOW()
			 WHERE id = $1`,
			id, passwordHash)

		if err != nil {
			if isInvalidID(err) {
				return ErrUserNotFound
			}
			return err
		}

		if tag.RowsAffected() == 0 {
			return ErrUserNotFound
		}

		return nil
	})
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var users []user.User

	err := r.observe("users.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			users = append(users, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	return r.observe("users.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

		if err != nil {
			if isInvalidID(err) {
				return ErrUserNotFound
			}
			return err
		}

		if tag.RowsAffected() == 0 {
			return ErrUserNotFound
		}

		return nil
	})
}
