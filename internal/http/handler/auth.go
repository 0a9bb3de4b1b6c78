package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"patientdocs/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register godoc
// @Summary      Register a doctor or patient account
// @Description  Patient accounts get a linked patient record.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      service.RegisterInput  true  "account"
// @Success      201   {object}  service.AuthResult
// @Failure      400   {object}  middleware.ErrorPayload
// @Failure      409   {object}  middleware.ErrorPayload
// @Failure      429   {object}  middleware.ErrorPayload
// @Router       /auth/register [post]
func Register(svc service.AuthService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RegisterInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		res, err := svc.Register(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, logger, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// Login godoc
// @Summary   Log in with email and password
// @Tags      auth
// @Accept    json
// @Produce   json
// @Param     body  body      loginRequest  true  "credentials"
// @Success   200   {object}  service.AuthResult
// @Failure   400   {object}  middleware.ErrorPayload
// @Failure   401   {object}  middleware.ErrorPayload
// @Failure   429   {object}  middleware.ErrorPayload
// @Router    /auth/login [post]
func Login(svc service.AuthService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in loginRequest
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		res, err := svc.Login(c.UserContext(), in.Email, in.Password)
		if err != nil {
			return writeServiceError(c, logger, err)
		}
		return c.JSON(res)
	}
}
