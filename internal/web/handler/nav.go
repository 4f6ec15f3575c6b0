package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/castboard/castboard/internal/auth"
	"github.com/castboard/castboard/internal/web/navigation"
)

// Nav returns the navigation context of a page for the current principal and store.
func Nav(c *fiber.Ctx, title, section string) *navigation.Context {
	p, _ := auth.PrincipalFrom(c)
	nav := navigation.NewContext(title, section).For(p)

	if st, ok := CurrentStore(c); ok {
		nav.InStore(st.Name)
	}

	return nav
}

// Render renders name inside the base layout.
func Render(c *fiber.Ctx, name string, data fiber.Map) error {
	return c.Render(name, data, BaseLayout)
}
