package rbac

import (
	"net/http"
)

// Require rejects requests whose role lacks perm under DefaultPolicy.
func Require(perm string) func(http.Handler) http.Handler {
	return DefaultPolicy.Require(perm)
}

// RequireAny passes if the role holds at least one of perms.
func RequireAny(perms ...string) func(http.Handler) http.Handler {
	return DefaultPolicy.RequireAny(perms...)
}

func (p Policy) Require(perm string) func(http.Handler) http.Handler {
	return p.gate(func(role string) bool { return p.Allows(role, perm) })
}

func (p Policy) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return p.gate(func(role string) bool { return p.AllowsAny(role, perms...) })
}

func (p Policy) gate(ok func(role string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" || !ok(role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
