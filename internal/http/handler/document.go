package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"patientdocs/internal/http/middleware"
	"patientdocs/internal/model"
	"patientdocs/internal/service"
)

// UploadField is the multipart field carrying the file.
const UploadField = "document"

type uploadResponse struct {
	Message  string          `json:"message"`
	Document *model.Document `json:"document"`
}

type listResponse struct {
	Documents []service.DocumentSummary `json:"documents"`
}

type qrRequest struct {
	DurationHours int `json:"durationHours"`
}

type shareRequest struct {
	UserIDs     []string   `json:"userIds"`
	AccessUntil *time.Time `json:"accessUntil"`
	AccessLevel string     `json:"accessLevel"`
}

type shareResponse struct {
	Message string `json:"message"`
	service.ShareResult
}

type messageResponse struct {
	Message string `json:"message"`
}

func unauthorized(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
}

// sendDocument streams decrypted content as an attachment.
func sendDocument(c *fiber.Ctx, dc *service.DocumentContent) error {
	c.Attachment(dc.Document.OriginalName)
	c.Set(fiber.HeaderContentType, dc.Document.MimeType)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(dc.Content)
}

// UploadDocument godoc
// @Summary      Upload an encrypted document
// @Description  The file is encrypted before it reaches object storage.
// @Tags         documents
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        document      formData  file    true   "file"
// @Param        patientId     formData  string  true   "patient record id"
// @Param        documentType  formData  string  true   "medical_record|lab_result|prescription|imaging|other"
// @Param        description   formData  string  false  "description"
// @Param        tags          formData  string  false  "comma separated tags"
// @Param        accessLevel   formData  string  false  "private|doctor_only|shared"
// @Success      201  {object}  uploadResponse
// @Failure      400  {object}  middleware.ErrorPayload
// @Failure      401  {object}  middleware.ErrorPayload
// @Router       /documents/upload [post]
func UploadDocument(svc service.DocumentService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			return unauthorized(c)
		}

		fh, err := c.FormFile(UploadField)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "no file uploaded")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		doc, err := svc.Upload(c.UserContext(), p, service.UploadInput{
			Reader:       f,
			OriginalName: fh.Filename,
			MimeType:     ct,
			Size:         fh.Size,
			PatientID:    c.FormValue("patientId"),
			DocumentType: c.FormValue("documentType"),
			Description:  c.FormValue("description"),
			Tags:         c.FormValue("tags"),
			AccessLevel:  c.FormValue("accessLevel"),
		})
		if err != nil {
			return writeServiceError(c, logger, err)
		}
		return c.Status(fiber.StatusCreated).JSON(uploadResponse{
			Message:  "Document uploaded and encrypted successfully",
			Document: doc,
		})
	}
}

// ListPatientDocuments godoc
// @Summary   List a patient's documents visible to the caller
// @Tags      documents
// @Security  BearerAuth
// @Produce   json
// @Param     patientId  path      string  true  "patient record id"
// @Success   200        {object}  listResponse
// @Failure   400        {object}  middleware.ErrorPayload
// @Router    /documents/patient/{patientId} [get]
func ListPatientDocuments(svc service.DocumentService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			return unauthorized(c)
		}
		docs, err := svc.ListForPatient(c.UserContext(), p, c.Params("patientId"))
		if err != nil {
			return writeServiceError(c, logger, err)
		}
		return c.JSON(listResponse{Documents: docs})
	}
}

// DownloadDocument godoc
// @Summary   Download and decrypt a document
// @Tags      documents
// @Security  BearerAuth
// @Produce   octet-stream
// @Param     documentId  path  string  true  "document id"
// @Success   200
// @Failure   403  {object}  middleware.ErrorPayload
// @Failure   404  {object}  middleware.ErrorPayload
// @Router    /documents/download/{documentId} [get]
func DownloadDocument(svc service.DocumentService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			return unauthorized(c)
		}
		dc, err := svc.Download(c.UserContext(), p, c.Params("documentId"))
		if err != nil {
			return writeServiceError(c, logger, err)
		}
		return sendDocument(c, dc)
	}
}

// IssueQRCode godoc
// @Summary      Issue a time-limited QR access token
// @Description  Replaces any previous token of the document.
// @Tags         documents
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        documentId  path      string     true   "document id"
// @Param        body        body      qrRequest  false  "duration"
// @Success      200         {object}  service.QRGrant
// @Failure      400         {object}  middleware.ErrorPayload
// @Failure      403         {object}  middleware.ErrorPayload
// @Router       /documents/{documentId}/qr-code [post]
func IssueQRCode(svc service.DocumentService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			return unauthorized(c)
		}

		var req qrRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
			}
		}
		if q := c.Query("durationHours"); q != "" && req.DurationHours == 0 {
			h, err := strconv.Atoi(q)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_DURATION", "invalid durationHours")
			}
			req.DurationHours = h
		}

		grant, err := svc.IssueQR(c.UserContext(), p, c.Params("documentId"), req.DurationHours)
		if err != nil {
			return writeServiceError(c, logger, err)
		}
		return c.JSON(grant)
	}
}

// ShareDocument godoc
// @Summary   Share a document with users or change its access level
// @Tags      documents
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     documentId  path      string        true  "document id"
// @Param     body        body      shareRequest  true  "share settings"
// @Success   200         {object}  shareResponse
// @Failure   400         {object}  middleware.ErrorPayload
// @Failure   403         {object}  middleware.ErrorPayload
// @Router    /documents/{documentId}/share [post]
func ShareDocument(svc service.DocumentService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			return unauthorized(c)
		}

		var req shareRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		res, err := svc.Share(c.UserContext(), p, c.Params("documentId"), service.ShareInput{
			UserIDs:     req.UserIDs,
			AccessUntil: req.AccessUntil,
			AccessLevel: req.AccessLevel,
		})
		if err != nil {
			return writeServiceError(c, logger, err)
		}
		return c.JSON(shareResponse{Message: "Document sharing updated successfully", ShareResult: *res})
	}
}

// DeleteDocument godoc
// @Summary   Soft-delete a document
// @Tags      documents
// @Security  BearerAuth
// @Produce   json
// @Param     documentId  path      string  true  "document id"
// @Success   200         {object}  messageResponse
// @Failure   403         {object}  middleware.ErrorPayload
// @Failure   404         {object}  middleware.ErrorPayload
// @Router    /documents/{documentId} [delete]
func DeleteDocument(svc service.DocumentService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			return unauthorized(c)
		}
		if err := svc.Delete(c.UserContext(), p, c.Params("documentId")); err != nil {
			return writeServiceError(c, logger, err)
		}
		return c.JSON(messageResponse{Message: "Document deleted successfully"})
	}
}

// DocumentStats godoc
// @Summary   Document statistics for the caller
// @Tags      documents
// @Security  BearerAuth
// @Produce   json
// @Success   200  {object}  model.DocumentStats
// @Router    /documents/stats [get]
func DocumentStats(svc service.DocumentService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			return unauthorized(c)
		}
		stats, err := svc.Stats(c.UserContext(), p)
		if err != nil {
			return writeServiceError(c, logger, err)
		}
		return c.JSON(stats)
	}
}
