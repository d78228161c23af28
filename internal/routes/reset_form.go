package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/syncreg/syncreg/internal/account"
)

// RegisterResetFormRoutes binds the browser-facing reset endpoint. The HTML
// forms themselves are served elsewhere; this endpoint only consumes their
// submitted fields (username, password, confirm, key).
func RegisterResetFormRoutes(app *fiber.App, svc *account.Service) {
	app.Post("/weave-password-reset", func(c *fiber.Ctx) error {
		// users type their email address as often as their username
		username := account.ExtractUsername(c.FormValue("username"))
		password := c.FormValue("password")
		confirm := c.FormValue("confirm")
		key := c.FormValue("key")

		// a bare username kicks off the reset; the full form redeems it
		if password == "" && confirm == "" && key == "" {
			if username == "" {
				return sendError(c, account.ErrMissingUsername)
			}
			if err := svc.RequestPasswordReset(c.UserContext(), username, proofFromRequest(c)); err != nil {
				return sendError(c, err)
			}
			return c.SendString("reset code sent")
		}

		if err := svc.RedeemPasswordReset(c.UserContext(), username, key, password, confirm); err != nil {
			return sendError(c, err)
		}
		return c.SendString("success")
	})
}
