package accounts

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapUniqueViolation(t *testing.T) {
	t.Run("username index maps to ErrUsernameTaken", func(t *testing.T) {
		err := mapUniqueViolation(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_lower_idx"})
		if !errors.Is(err, ErrUsernameTaken) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("email index maps to ErrEmailTaken", func(t *testing.T) {
		err := mapUniqueViolation(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_idx"})
		if !errors.Is(err, ErrEmailTaken) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("wrapped pg errors still map", func(t *testing.T) {
		wrapped := fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_username_lower_idx"})
		if !errors.Is(mapUniqueViolation(wrapped), ErrUsernameTaken) {
			t.Error("wrapped violation not mapped")
		}
	})

	t.Run("other constraints pass through", func(t *testing.T) {
		var in error = &pgconn.PgError{Code: "23505", ConstraintName: "orders_pkey"}
		if got := mapUniqueViolation(in); got != in {
			t.Errorf("got %v", got)
		}
	})

	t.Run("non unique-violation errors pass through", func(t *testing.T) {
		in := errors.New("connection reset")
		if got := mapUniqueViolation(in); got != in {
			t.Errorf("got %v", got)
		}
	})
}
