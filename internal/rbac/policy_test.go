package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyAllows(t *testing.T) {
	p := Policy{
		"experimenter": {"check:view", "results:*"},
		"admin":        {"*"},
		"viewer":       {},
	}
	assert.True(t, p.Allows("experimenter", "check:view"))
	assert.True(t, p.Allows("experimenter", "results:view"))
	assert.False(t, p.Allows("experimenter", "check:create"))
	assert.False(t, p.Allows("experimenter", "resultsx"))
	assert.True(t, p.Allows("admin", "anything"))
	assert.False(t, p.Allows("nobody", "check:view"))
	assert.True(t, p.AllowsAny("experimenter", "check:create", "check:view"))
	assert.True(t, p.HasRole("viewer"))
	assert.False(t, p.HasRole("nobody"))
}

func TestDefaultPolicy(t *testing.T) {
	assert.True(t, DefaultPolicy.Allows("experimenter", "check:create"))
	assert.True(t, DefaultPolicy.Allows("experimenter", "results:view"))
	assert.True(t, DefaultPolicy.Allows("admin", "check:delete"))
	assert.False(t, DefaultPolicy.Allows("experimenter", "check:delete"))
}

func TestRequire(t *testing.T) {
	h := Require("check:create")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for role, want := range map[string]int{
		"":             http.StatusForbidden,
		"experimenter": http.StatusNoContent,
		"admin":        http.StatusNoContent,
		"participant":  http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodPost, "/checks", nil)
		if role != "" {
			req = req.WithContext(WithRole(context.Background(), role))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "role %q", role)
	}
}

func TestRequireAny(t *testing.T) {
	h := RequireAny("check:delete", "results:view")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(WithRole(context.Background(), "experimenter"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
