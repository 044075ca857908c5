package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/armhelper/accounts/internal/account"
)

// RegisterAccountRoutes wires registration, authentication and stats
// endpoints. Responses follow the {success, ...} shape the armHelper client
// expects.
func RegisterAccountRoutes(r fiber.Router, svc *account.Service, rateLimiter fiber.Handler, logger *slog.Logger) {
	r.Post("/accounts/register", func(c *fiber.Ctx) error {
		var req struct {
			Email    string `json:"email"`
			Phone    string `json:"phone"`
			Password string `json:"password"`
			Nickname string `json:"nickname"`
		}
		if err := c.BodyParser(&req); err != nil {
			return failureJSON(c, http.StatusBadRequest, err.Error())
		}
		user, err := svc.Register(c.UserContext(), account.RegisterInput{
			Email:    req.Email,
			Phone:    req.Phone,
			Password: req.Password,
			Nickname: req.Nickname,
		})
		if err != nil {
			return accountError(c, err)
		}
		if logger != nil {
			logger.Info("account registered",
				slog.String("user_id", user.UserID),
				slog.String("nickname", user.Nickname),
			)
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"success":  true,
			"user_id":  user.UserID,
			"nickname": user.Nickname,
		})
	})

	r.Post("/accounts/authenticate", rateLimiter, func(c *fiber.Ctx) error {
		var req struct {
			Login    string `json:"login"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return failureJSON(c, http.StatusBadRequest, err.Error())
		}
		user, err := svc.Authenticate(c.UserContext(), req.Login, req.Password)
		if err != nil {
			return accountError(c, err)
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"success":  true,
			"user_id":  user.UserID,
			"nickname": user.Nickname,
			"email":    user.Email,
		})
	})

	r.Get("/accounts/stats", func(c *fiber.Ctx) error {
		stats, err := svc.Stats(c.UserContext())
		if err != nil {
			return accountError(c, err)
		}
		return c.Status(http.StatusOK).JSON(stats)
	})
}

// accountError maps a service failure onto an HTTP status while passing the
// human-readable message through untouched.
func accountError(c *fiber.Ctx, err error) error {
	var acctErr *account.Error
	if !errors.As(err, &acctErr) {
		return failureJSON(c, http.StatusInternalServerError, "internal error")
	}
	return failureJSON(c, statusForKind(acctErr.Kind), acctErr.Message)
}

func statusForKind(kind account.Kind) int {
	switch kind {
	case account.KindFieldsRequired, account.KindInvalidEmail, account.KindInvalidPhone,
		account.KindPasswordTooShort, account.KindNicknameTooShort:
		return http.StatusBadRequest
	case account.KindEmailTaken, account.KindPhoneTaken, account.KindNicknameTaken:
		return http.StatusConflict
	case account.KindInvalidCredentials:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func failureJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": message})
}
