// Package notify turns failed operations into log lines and toast messages.
//
// Toasts are queued per session in the session storage and drained by
// Middleware into the "Toasts" local of the next rendered page, so they
// survive the redirect that usually follows a form post.
package notify
