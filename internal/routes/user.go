package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/syncreg/syncreg/internal/account"
	"github.com/syncreg/syncreg/internal/middleware"
)

// sharedSecretHeader lets trusted provisioning services bypass captcha.
const sharedSecretHeader = "X-Weave-Secret"

type createRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	CaptchaChallenge string `json:"captcha-challenge"`
	CaptchaResponse  string `json:"captcha-response"`
}

// RegisterUserRoutes wires the user API: existence, creation, deletion, node
// lookup, reset request/cancel, email and password changes.
//
// Success bodies are plain text and error bodies numeric, matching what sync
// clients expect from this API family.
func RegisterUserRoutes(app *fiber.App, svc *account.Service, ownerAuth fiber.Handler, resetLimiter fiber.Handler) {
	group := app.Group("/user/1.0")

	group.Get("/:username", func(c *fiber.Ctx) error {
		exists, err := svc.Exists(c.UserContext(), c.Params("username"))
		if err != nil {
			return sendError(c, err)
		}
		if exists {
			return c.SendString("1")
		}
		return c.SendString("0")
	})

	group.Put("/:username", func(c *fiber.Ctx) error {
		var req createRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(account.WireMalformedJSON)
		}
		name, err := svc.CreateAccount(c.UserContext(), account.NewAccount{
			Username: c.Params("username"),
			Email:    req.Email,
			Password: req.Password,
			Proof: account.CaptchaProof{
				Challenge: req.CaptchaChallenge,
				Response:  req.CaptchaResponse,
				RemoteIP:  c.IP(),
				Secret:    c.Get(sharedSecretHeader),
			},
		})
		if err != nil {
			return sendError(c, err)
		}
		return c.SendString(name)
	})

	group.Delete("/:username", ownerAuth, func(c *fiber.Ctx) error {
		password, _ := c.Locals(middleware.LocalPassword).(string)
		deleted, err := svc.DeleteAccount(c.UserContext(), c.Params("username"), password)
		if err != nil {
			return sendError(c, err)
		}
		if deleted {
			return c.SendString("1")
		}
		return c.SendString("0")
	})

	group.Get("/:username/node/weave", func(c *fiber.Ctx) error {
		url, err := svc.ResolveNode(c.UserContext(), c.Params("username"))
		if err != nil {
			if code := account.WireCode(err); code == account.WireInvalidUsername {
				return c.SendStatus(http.StatusNotFound)
			}
			return sendError(c, err)
		}
		return c.SendString(url)
	})

	group.Get("/:username/password_reset", resetLimiter, func(c *fiber.Ctx) error {
		err := svc.RequestPasswordReset(c.UserContext(), c.Params("username"), proofFromRequest(c))
		if err != nil {
			return sendError(c, err)
		}
		return c.SendString("success")
	})

	group.Delete("/:username/password_reset", func(c *fiber.Ctx) error {
		err := svc.CancelPasswordReset(c.UserContext(), c.Params("username"), proofFromRequest(c))
		if err != nil {
			return sendError(c, err)
		}
		return c.SendString("success")
	})

	group.Post("/:username/email", ownerAuth, func(c *fiber.Ctx) error {
		password, _ := c.Locals(middleware.LocalPassword).(string)
		// the body is the bare address in plain text
		newEmail, err := svc.ChangeEmail(c.UserContext(), c.Params("username"),
			password, string(c.Body()))
		if err != nil {
			return sendError(c, err)
		}
		return c.SendString(newEmail)
	})

	group.Post("/:username/password", ownerAuth, func(c *fiber.Ctx) error {
		password, _ := c.Locals(middleware.LocalPassword).(string)
		err := svc.ChangePassword(c.UserContext(), c.Params("username"),
			password, "", string(c.Body()))
		if err != nil {
			return sendError(c, err)
		}
		return c.SendString("success")
	})
}

// proofFromRequest reads captcha fields from the query string or form body,
// whichever the client used, plus the shared-secret header.
func proofFromRequest(c *fiber.Ctx) account.CaptchaProof {
	challenge := c.Query("captcha-challenge")
	if challenge == "" {
		challenge = c.FormValue("captcha-challenge")
	}
	response := c.Query("captcha-response")
	if response == "" {
		response = c.FormValue("captcha-response")
	}
	return account.CaptchaProof{
		Challenge: challenge,
		Response:  response,
		RemoteIP:  c.IP(),
		Secret:    c.Get(sharedSecretHeader),
	}
}
