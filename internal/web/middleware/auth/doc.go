// Package auth provides the session middleware of the web application.
//
// It reads the session cookie, loads the signed-in user's principal and
// publishes both to fiber.Locals for handlers and templates. Requests without
// a valid session are redirected to the login page, except for public paths
// such as the login page itself, static files and health checks.
//
// Usage:
//
//	app.Use(authmiddleware.New(sessions, authService))
package auth
