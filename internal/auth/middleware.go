package auth

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	// LocalsPrincipal holds the *Principal of the request.
	LocalsPrincipal = "Principal"

	// DeniedTemplate is the access denied page.
	DeniedTemplate = "errors/access_denied"

	// LoginPath is where requests without a principal are sent.
	LoginPath = "/login"

	// HomePath is where denied requests are sent after the delay.
	HomePath = "/"

	deniedLayout = "layouts/base"
)

// PrincipalFrom returns the principal stored by the session middleware.
func PrincipalFrom(c *fiber.Ctx) (*Principal, bool) {
	p, ok := c.Locals(LocalsPrincipal).(*Principal)

	return p, ok && p != nil
}

// SetPrincipal stores p for the request and exposes permission helpers to the views.
func SetPrincipal(c *fiber.Ctx, p *Principal) {
	c.Locals(LocalsPrincipal, p)
	c.Locals("CurrentUser", p.Name())
	c.Locals("IsSuperAdmin", p.SuperAdmin)
	c.Locals("hasPermission", p.Has)
}

// Gate creates Fiber middleware that lets the request through only if req allows
// the principal. Requests without a principal are redirected to the login page.
func Gate(authService *Service, req Requirement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return c.Redirect(LoginPath)
		}

		if req.Allows(p) {
			return c.Next()
		}

		log.Warn().
			Uint64("user_id", p.UserID).
			Str("permission", req.Permission).
			Bool("require_superadmin", req.RequireSuperAdmin).
			Str("path", c.Path()).
			Msg("access denied")

		return Deny(c, authService.DeniedRedirectDelay)
	}
}

// RequirePermission is Gate for a single permission.
func RequirePermission(authService *Service, permission string) fiber.Handler {
	return Gate(authService, Requirement{Permission: permission})
}

// RequireSuperAdmin is Gate for superadmin only pages.
func RequireSuperAdmin(authService *Service) fiber.Handler {
	return Gate(authService, Requirement{RequireSuperAdmin: true})
}

// Deny renders the access denied page with status 403 and schedules a
// browser redirect to the home route after delay seconds.
func Deny(c *fiber.Ctx, delay int) error {
	if delay < 0 {
		delay = 0
	}

	c.Set("Refresh", strconv.Itoa(delay)+"; url="+HomePath)

	return c.Status(fiber.StatusForbidden).Render(DeniedTemplate, fiber.Map{
		"Title":    "アクセス権限がありません",
		"Delay":    delay,
		"HomePath": HomePath,
	}, deniedLayout)
}
