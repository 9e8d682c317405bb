package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/understanding-check/internal/rbac"
)

// UserStore keeps experimenter accounts in the users table.
type UserStore struct{ db *sql.DB }

func NewUserStore(db *sql.DB) *UserStore { return &UserStore{db: db} }

// HashPassword returns the bcrypt hash stored for a password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Create adds an account and returns its id.
func (s *UserStore) Create(ctx context.Context, username, password, role string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", errors.New("username required")
	}
	if !rbac.DefaultPolicy.HasRole(role) {
		return "", fmt.Errorf("unknown role %q", role)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `INSERT INTO users (id, username, role, password_hash, created_at)
		VALUES ($1,$2,$3,$4,$5)`, id, username, role, hash, time.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("create user %s: %w", username, err)
	}
	return id, nil
}

func (s *UserStore) Verify(r *http.Request, username, password string) (string, string, error) {
	var id, role, hash string
	err := s.db.QueryRowContext(r.Context(),
		`SELECT id, role, password_hash FROM users WHERE username=$1`, username,
	).Scan(&id, &role, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrBadCredentials
	}
	if err != nil {
		return "", "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", "", ErrBadCredentials
	}
	return id, role, nil
}

// AttachRoleFromDB replaces the token's role with the one stored for the
// subject, so demoting an account takes effect before its token expires.
// Subjects without a users row (the configured admin) keep the claim role.
func AttachRoleFromDB(db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			p, _ := PrincipalFromContext(ctx)
			err := db.QueryRowContext(ctx, `SELECT role FROM users WHERE id=$1`, p.Sub).Scan(&p.Role)
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, p)))
			case errors.Is(err, sql.ErrNoRows):
				next.ServeHTTP(w, r)
			default:
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}
