package session

import "context"

// Guard is the route guard: a pending navigation resolves to either the
// requested route or the login route, depending on a point-in-time session
// check.
type Guard struct {
	Session    *Session
	LoginRoute string
}

// Resolve returns whether navigation may proceed and, when it may not, the
// route to redirect to.
func (g Guard) Resolve(ctx context.Context) (allowed bool, redirect string) {
	if g.Session.Check(ctx) {
		return true, ""
	}
	route := g.LoginRoute
	if route == "" {
		route = "/login"
	}
	return false, route
}
