package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"patientdocs/internal/service"
)

type publicDocumentResponse struct {
	Document *service.PublicDocument `json:"document"`
}

// AccessViaQR godoc
// @Summary   Document metadata for a QR token
// @Tags      public
// @Produce   json
// @Param     token  path      string  true  "QR token"
// @Success   200    {object}  publicDocumentResponse
// @Failure   404    {object}  middleware.ErrorPayload
// @Failure   429    {object}  middleware.ErrorPayload
// @Router    /public/documents/access/{token} [get]
func AccessViaQR(svc service.DocumentService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.ResolveQR(c.UserContext(), c.Params("token"))
		if err != nil {
			return writeQRError(c, logger, err)
		}
		return c.JSON(publicDocumentResponse{Document: doc})
	}
}

// DownloadViaQR godoc
// @Summary   Download a document with a QR token
// @Tags      public
// @Produce   octet-stream
// @Param     token  path  string  true  "QR token"
// @Success   200
// @Failure   404  {object}  middleware.ErrorPayload
// @Failure   429  {object}  middleware.ErrorPayload
// @Router    /public/documents/download/{token} [get]
func DownloadViaQR(svc service.DocumentService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dc, err := svc.DownloadViaQR(c.UserContext(), c.Params("token"))
		if err != nil {
			return writeQRError(c, logger, err)
		}
		return sendDocument(c, dc)
	}
}

// writeQRError hides why a token failed: unknown, expired and revoked look alike.
func writeQRError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	if errors.Is(err, service.ErrNotFound) {
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "invalid or expired QR code")
	}
	return writeServiceError(c, logger, err)
}
