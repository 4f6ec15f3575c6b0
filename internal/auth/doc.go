// Package auth provides authentication and authorization for the dashboard.
//
// Users sign in against the local database (Argon2id hashes). Authorization is
// role based: every user has one role, a role carries a set of permissions
// through role_permissions, and a role flagged as superadmin passes every check
// and sees every store. Store access for everyone else comes from
// store_members.
//
// Routes are protected with Gate, which evaluates a Requirement against the
// Principal loaded for the request:
//
//	app.Get("/settings/base",
//	    auth.Gate(authService, auth.Requirement{Permission: auth.PermBaseSettings}),
//	    handler,
//	)
//
// A denied request gets a 403 with the access denied page and a Refresh
// header that sends the browser back to the home route.
package auth
