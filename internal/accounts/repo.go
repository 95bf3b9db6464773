package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type Repo struct {
	DB         *pgxpool.Pool
	BcryptCost int
}

func (r *Repo) cost() int {
	if r.BcryptCost > 0 {
		return r.BcryptCost
	}
	return bcrypt.DefaultCost
}

func (r *Repo) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}

	var exists int64
	err := r.DB.QueryRow(ctx,
		`SELECT id FROM users WHERE LOWER(username) = LOWER($1)`, in.Username).Scan(&exists)
	if err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if in.Email != "" {
		err := r.DB.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, in.Email).Scan(&exists)
		if err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), r.cost())
	if err != nil {
		return nil, err
	}

	var email *string
	if in.Email != "" {
		email = &in.Email
	}

	u := &User{Username: in.Username, Email: email, PasswordHash: string(hash), Role: in.Role}
	err = r.DB.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		u.Username, email, u.PasswordHash, u.Role,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		// the pre-checks race with concurrent registrations; the
		// unique indexes are the authority
		return nil, mapUniqueViolation(err)
	}
	return u, nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	switch pgErr.ConstraintName {
	case "users_username_lower_idx":
		return ErrUsernameTaken
	case "users_email_idx":
		return ErrEmailTaken
	}
	return err
}

// Authenticate returns ErrBadCredentials for an unknown username and a
// wrong password alike.
func (r *Repo) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := r.getBy(ctx, `LOWER(username) = LOWER($1)`, username)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

func (r *Repo) GetUser(ctx context.Context, id int64) (*User, error) {
	u, err := r.getBy(ctx, `id = $1`, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *Repo) getBy(ctx context.Context, where string, arg any) (*User, error) {
	u := &User{}
	err := r.DB.QueryRow(ctx, `
		SELECT id, username, email, password_hash, role, created_at
		FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}
