// Package auth provides the authentication middleware of the web application.
//
// For every request outside /static, /metrics and /logout it reads the session
// cookie, resolves the user's role and permissions from the database and stores
// the result as *auth.Context in fiber locals. Requests without a valid session
// are redirected to the login page; signed-in users opening the login page are
// sent to the dashboard.
//
// Usage:
//
//	app.Use(authmiddleware.New(authService))
package auth
