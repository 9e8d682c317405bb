package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/understanding-check/internal/db"
	"github.com/mind-engage/understanding-check/internal/rbac"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestIssueAndParse(t *testing.T) {
	a := NewAuthService("k1")
	tok, err := a.IssueJWT("alice", "experimenter")
	require.NoError(t, err)

	c, err := a.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Sub)
	assert.Equal(t, "experimenter", c.Role)

	_, err = NewAuthService("other").Parse(tok)
	assert.Error(t, err)
}

func TestJWTMiddlewareSetsContext(t *testing.T) {
	a := NewAuthService("k1")
	var sub, role string
	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, role = SubjectFromContext(r.Context()), rbac.RoleFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := a.IssueJWT("bob", "admin")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bob", sub)
	assert.Equal(t, "admin", role)
}

func login(t *testing.T, h http.Handler, user, pass string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": user, "password": pass})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))
	return rec
}

func TestLoginHandler(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	defer dbh.Close()

	users := NewUserStore(dbh)
	id, err := users.Create(ctx, "erin", "pw-erin", "experimenter")
	require.NoError(t, err)
	_, err = users.Create(ctx, "x", "pw", "wizard")
	assert.Error(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("pw-admin"), bcrypt.MinCost)
	require.NoError(t, err)

	a := NewAuthService("k1")
	h := LoginHandler(a, FirstOf{AdminCredentials{User: "admin", PassHash: string(hash)}, users}, quiet)

	rec := login(t, h, "admin", "pw-admin")
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	c, err := a.Parse(out["access_token"])
	require.NoError(t, err)
	assert.Equal(t, "admin", c.Role)

	rec = login(t, h, "erin", "pw-erin")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	c, err = a.Parse(out["access_token"])
	require.NoError(t, err)
	assert.Equal(t, id, c.Sub)
	assert.Equal(t, "experimenter", c.Role)

	assert.Equal(t, http.StatusUnauthorized, login(t, h, "erin", "nope").Code)
	assert.Equal(t, http.StatusUnauthorized, login(t, h, "nobody", "pw").Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttachRoleFromDB(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	defer dbh.Close()

	id, err := NewUserStore(dbh).Create(ctx, "erin", "pw", "admin")
	require.NoError(t, err)
	_, err = dbh.ExecContext(ctx, `UPDATE users SET role=$1 WHERE id=$2`, "experimenter", id)
	require.NoError(t, err)

	var got Principal
	h := AttachRoleFromDB(dbh)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFromContext(r.Context())
		assert.Equal(t, got.Role, rbac.RoleFromContext(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithPrincipal(ctx, Principal{Sub: id, Role: "admin"}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, Principal{Sub: id, Role: "experimenter"}, got, "stored role wins over the token")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithPrincipal(ctx, Principal{Sub: "admin", Role: "admin"}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, Principal{Sub: "admin", Role: "admin"}, got, "accounts without a row keep the claim role")
}
