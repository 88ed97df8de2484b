// Package guard decides whether the current session may enter a role-gated
// area. Guards only read the session.
package guard

import (
	"net/http"

	"github.com/seenimoa/bonosportal/pkg/models"
)

// Default redirect targets.
const (
	HomePath  = "/home"
	LoginPath = "/login"
)

// SessionView is the read-only part of the session a guard needs.
// *session.Store satisfies it.
type SessionView interface {
	IsAuthenticated() bool
	HasRole(name string) bool
}

// Decision is the outcome of a guard check.
type Decision struct {
	Allow    bool
	Redirect string // set when Allow is false
}

// Guard admits authenticated sessions carrying Role. An empty Role admits
// any authenticated session.
type Guard struct {
	Role     string
	Redirect string
}

// Issuer guards the issuer area.
func Issuer() Guard { return Guard{Role: models.RoleEmisor, Redirect: HomePath} }

// Investor guards the investor area.
func Investor() Guard { return Guard{Role: models.RoleInversor, Redirect: HomePath} }

// Authenticated guards pages that only need a signed-in user.
func Authenticated() Guard { return Guard{Redirect: LoginPath} }

// Check evaluates the guard against the session.
func (g Guard) Check(s SessionView) Decision {
	if s != nil && s.IsAuthenticated() && (g.Role == "" || s.HasRole(g.Role)) {
		return Decision{Allow: true}
	}
	return Decision{Redirect: g.Redirect}
}

// Middleware redirects requests the guard rejects with 302 Found.
func (g Guard) Middleware(s SessionView) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := g.Check(s)
			if !d.Allow {
				http.Redirect(w, r, d.Redirect, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
