package middleware

import "github.com/gofiber/fiber/v2"

// ErrorPayload is the standardized error response body.
type ErrorPayload struct {
	RequestID string        `json:"request_id"`
	Error     ErrorEnvelope `json:"error"`
}

type ErrorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError writes a standardized JSON error response. message must be safe
// to show to clients.
func WriteError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(ErrorPayload{
		RequestID: RequestIDFrom(c),
		Error: ErrorEnvelope{
			Code:    code,
			Message: message,
		},
	})
}
