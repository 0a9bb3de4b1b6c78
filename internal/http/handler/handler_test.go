package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"patientdocs/internal/auth"
	"patientdocs/internal/http/middleware"
	"patientdocs/internal/model"
	"patientdocs/internal/ratelimit"
	"patientdocs/internal/service"
	serviceMocks "patientdocs/internal/service/mocks"
)

var (
	doctor  = model.Doctor{ID: uuid.NewString()}
	nopLog  = zap.NewNop()
	docID   = uuid.NewString()
	patient = uuid.NewString()
)

// newApp builds an app whose requests are already authenticated as p.
func newApp(p model.Principal) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	if p != nil {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals(middleware.PrincipalLocalKey, p)
			return c.Next()
		})
	}
	return app
}

func decodeError(t *testing.T, r io.Reader) errorPayload {
	t.Helper()
	var res errorPayload
	require.NoError(t, json.NewDecoder(r).Decode(&res))
	return res
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp.Body).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func multipartUpload(t *testing.T, field, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		part.Write(content)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadDocument(t *testing.T) {
	fields := map[string]string{
		"patientId":    patient,
		"documentType": "lab_result",
		"tags":         "blood,2025",
		"accessLevel":  "doctor_only",
	}

	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(doctor)
		app.Post("/documents/upload", UploadDocument(mockSvc, nopLog))

		body, ct := multipartUpload(t, UploadField, "test.txt", []byte("hello world"), fields)

		expectedDoc := &model.Document{ID: docID, OriginalName: "test.txt", StoragePath: "documents/x.enc", IV: "abcd"}
		mockSvc.On("Upload", mock.Anything, doctor, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.OriginalName == "test.txt" &&
				in.PatientID == patient &&
				in.DocumentType == "lab_result" &&
				in.Tags == "blood,2025" &&
				in.AccessLevel == "doctor_only" &&
				in.Size == 11 &&
				in.Reader != nil
		})).Return(expectedDoc, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		raw, _ := io.ReadAll(resp.Body)
		var result struct {
			Message  string         `json:"message"`
			Document map[string]any `json:"document"`
		}
		require.NoError(t, json.Unmarshal(raw, &result))
		assert.Equal(t, docID, result.Document["id"])
		assert.NotContains(t, string(raw), "documents/x.enc", "storage path never leaves the server")
		assert.NotContains(t, result.Document, "iv")
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		app := newApp(doctor)
		app.Post("/documents/upload", UploadDocument(new(serviceMocks.MockDocumentService), nopLog))

		req := httptest.NewRequest(http.MethodPost, "/documents/upload", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("wrong field name", func(t *testing.T) {
		app := newApp(doctor)
		app.Post("/documents/upload", UploadDocument(new(serviceMocks.MockDocumentService), nopLog))

		body, ct := multipartUpload(t, "file", "test.txt", []byte("x"), fields)
		req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("validation error", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(doctor)
		app.Post("/documents/upload", UploadDocument(mockSvc, nopLog))

		body, ct := multipartUpload(t, UploadField, "test.exe", []byte("MZ"), fields)
		mockSvc.On("Upload", mock.Anything, doctor, mock.Anything).
			Return(nil, errors.Join(service.ErrValidation, errors.New("file type is not allowed"))).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(doctor)
		app.Post("/documents/upload", UploadDocument(mockSvc, nopLog))

		body, ct := multipartUpload(t, UploadField, "test.txt", []byte("hello"), fields)
		mockSvc.On("Upload", mock.Anything, doctor, mock.Anything).Return(nil, errors.New("upload failed")).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		res := decodeError(t, resp.Body)
		assert.Equal(t, "INTERNAL_ERROR", res.Error.Code)
		assert.NotContains(t, res.Error.Message, "upload failed")
		mockSvc.AssertExpectations(t)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		app := newApp(nil)
		app.Post("/documents/upload", UploadDocument(new(serviceMocks.MockDocumentService), nopLog))

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/documents/upload", nil))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestListPatientDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp(doctor)
	app.Get("/documents/patient/:patientId", ListPatientDocuments(mockSvc, nopLog))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("ListForPatient", mock.Anything, doctor, patient).
			Return([]service.DocumentSummary{{ID: docID, OriginalName: "a.pdf", HasQRCode: true}}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/patient/"+patient, nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Documents []map[string]any `json:"documents"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		require.Len(t, result.Documents, 1)
		assert.Equal(t, true, result.Documents[0]["hasQrCode"])
	})

	t.Run("invalid id", func(t *testing.T) {
		mockSvc.On("ListForPatient", mock.Anything, doctor, "nope").
			Return(nil, errors.Join(service.ErrValidation, errors.New("invalid patient ID format"))).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/patient/nope", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
	mockSvc.AssertExpectations(t)
}

func TestDownloadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp(doctor)
	app.Get("/documents/download/:documentId", DownloadDocument(mockSvc, nopLog))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Download", mock.Anything, doctor, docID).Return(&service.DocumentContent{
			Document: &model.Document{ID: docID, OriginalName: "scan.pdf", MimeType: "application/pdf"},
			Content:  []byte("%PDF-1.7"),
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/download/"+docID, nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), `attachment; filename="scan.pdf"`)
		assert.Equal(t, int64(8), resp.ContentLength)

		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "%PDF-1.7", string(b))
	})

	t.Run("forbidden", func(t *testing.T) {
		mockSvc.On("Download", mock.Anything, doctor, docID).Return(nil, service.ErrAccessDenied).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/download/"+docID, nil))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "ACCESS_DENIED", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Download", mock.Anything, doctor, docID).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/download/"+docID, nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("decryption failure", func(t *testing.T) {
		mockSvc.On("Download", mock.Anything, doctor, docID).Return(nil, service.ErrDecryption).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/download/"+docID, nil))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "DECRYPTION_ERROR", decodeError(t, resp.Body).Error.Code)
	})
	mockSvc.AssertExpectations(t)
}

func TestIssueQRCode(t *testing.T) {
	grant := &service.QRGrant{
		Token:         strings.Repeat("a", 64),
		DataURL:       "data:image/png;base64,AAAA",
		AccessURL:     "http://localhost:5173/document-access/" + strings.Repeat("a", 64),
		ExpiresAt:     time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		DurationHours: 48,
	}

	tests := []struct {
		name         string
		body         string
		query        string
		wantDuration int
		ret          error
		wantStatus   int
	}{
		{name: "json body", body: `{"durationHours":48}`, wantDuration: 48, wantStatus: http.StatusOK},
		{name: "empty body uses default", wantDuration: 0, wantStatus: http.StatusOK},
		{name: "query fallback", query: "?durationHours=12", wantDuration: 12, wantStatus: http.StatusOK},
		{name: "too long", body: `{"durationHours":9999}`, wantDuration: 9999, ret: service.ErrValidation, wantStatus: http.StatusBadRequest},
		{name: "denied", body: `{"durationHours":1}`, wantDuration: 1, ret: service.ErrAccessDenied, wantStatus: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(serviceMocks.MockDocumentService)
			app := newApp(doctor)
			app.Post("/documents/:documentId/qr-code", IssueQRCode(mockSvc, nopLog))

			if tt.ret != nil {
				mockSvc.On("IssueQR", mock.Anything, doctor, docID, tt.wantDuration).Return(nil, tt.ret).Once()
			} else {
				mockSvc.On("IssueQR", mock.Anything, doctor, docID, tt.wantDuration).Return(grant, nil).Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/documents/"+docID+"/qr-code"+tt.query, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			resp, _ := app.Test(req)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == http.StatusOK {
				var got map[string]any
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
				assert.Equal(t, grant.DataURL, got["dataURL"])
				assert.Equal(t, grant.AccessURL, got["accessUrl"])
				assert.NotContains(t, got, "token")
			}
			mockSvc.AssertExpectations(t)
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		app := newApp(doctor)
		app.Post("/documents/:documentId/qr-code", IssueQRCode(new(serviceMocks.MockDocumentService), nopLog))

		req := httptest.NewRequest(http.MethodPost, "/documents/"+docID+"/qr-code", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestShareDocument(t *testing.T) {
	other := uuid.NewString()
	until := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(doctor)
		app.Post("/documents/:documentId/share", ShareDocument(mockSvc, nopLog))

		mockSvc.On("Share", mock.Anything, doctor, docID, mock.MatchedBy(func(in service.ShareInput) bool {
			return len(in.UserIDs) == 1 && in.UserIDs[0] == other &&
				in.AccessUntil != nil && in.AccessUntil.Equal(until) &&
				in.AccessLevel == "shared"
		})).Return(&service.ShareResult{
			SharedWith:  []model.ShareEntry{{UserID: other, Role: model.ShareRole, AccessUntil: until}},
			AccessLevel: model.AccessShared,
		}, nil).Once()

		body := `{"userIds":["` + other + `"],"accessUntil":"2030-01-01T00:00:00Z","accessLevel":"shared"}`
		req := httptest.NewRequest(http.MethodPost, "/documents/"+docID+"/share", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "shared", got["accessLevel"])
		assert.Len(t, got["sharedWith"], 1)
		assert.NotEmpty(t, got["message"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("not owner", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(doctor)
		app.Post("/documents/:documentId/share", ShareDocument(mockSvc, nopLog))
		mockSvc.On("Share", mock.Anything, doctor, docID, mock.Anything).Return(nil, service.ErrAccessDenied).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/"+docID+"/share", strings.NewReader(`{"accessLevel":"private"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp(doctor)
	app.Delete("/documents/:documentId", DeleteDocument(mockSvc, nopLog))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, doctor, docID).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/"+docID, nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, doctor, docID).Return(service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/"+docID, nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, doctor, docID).Return(errors.New("delete error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/"+docID, nil))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
	mockSvc.AssertExpectations(t)
}

func TestDocumentStats(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	p := model.PatientPrincipal{ID: uuid.NewString(), PatientRecordID: patient}
	app := newApp(p)
	app.Get("/documents/stats", DocumentStats(mockSvc, nopLog))

	mockSvc.On("Stats", mock.Anything, p).Return(&model.DocumentStats{
		TotalDocuments:  3,
		TotalSize:       42,
		DocumentsByType: map[model.DocumentType]int{model.DocumentTypeImaging: 3},
	}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/stats", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got model.DocumentStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 3, got.TotalDocuments)
	assert.Equal(t, 3, got.DocumentsByType[model.DocumentTypeImaging])
	mockSvc.AssertExpectations(t)
}

func TestPublicQR(t *testing.T) {
	token := strings.Repeat("b", 64)
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp(nil)
	app.Get("/public/documents/access/:token", AccessViaQR(mockSvc, nopLog))
	app.Get("/public/documents/download/:token", DownloadViaQR(mockSvc, nopLog))

	t.Run("metadata", func(t *testing.T) {
		mockSvc.On("ResolveQR", mock.Anything, token).Return(&service.PublicDocument{ID: docID, OriginalName: "x.png"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/public/documents/access/"+token, nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got struct {
			Document service.PublicDocument `json:"document"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, docID, got.Document.ID)
	})

	t.Run("expired", func(t *testing.T) {
		mockSvc.On("ResolveQR", mock.Anything, token).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/public/documents/access/"+token, nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "invalid or expired QR code", decodeError(t, resp.Body).Error.Message)
	})

	t.Run("download", func(t *testing.T) {
		mockSvc.On("DownloadViaQR", mock.Anything, token).Return(&service.DocumentContent{
			Document: &model.Document{ID: docID, OriginalName: "x.png", MimeType: "image/png"},
			Content:  []byte{0x89, 'P', 'N', 'G'},
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/public/documents/download/"+token, nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	})
	mockSvc.AssertExpectations(t)
}

func TestPublicQR_FailureLogOmitsToken(t *testing.T) {
	token := strings.Repeat("c", 64)
	core, logs := observer.New(zapcore.InfoLevel)
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp(nil)
	app.Get("/public/documents/download/:token", DownloadViaQR(mockSvc, zap.New(core)))

	mockSvc.On("DownloadViaQR", mock.Anything, token).Return(nil, service.ErrDecryption).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/public/documents/download/"+token, nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/public/documents/download/:token", fields["path"])
	for k, v := range fields {
		assert.NotContains(t, fmt.Sprint(v), token, "field %q", k)
	}
	mockSvc.AssertExpectations(t)
}

func TestIsCapabilityRequest(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		return c.SendString(strconv.FormatBool(IsCapabilityRequest(c)))
	})

	tests := []struct {
		path string
		want string
	}{
		{"/public/documents/access/" + strings.Repeat("a", 64), "true"},
		{"/public/documents/download/" + strings.Repeat("a", 64), "true"},
		{"/documents/download/" + docID, "false"},
		{"/health", "false"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.want, string(body))
		})
	}
}

func TestAuthHandlers(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuthService)
	app := newApp(nil)
	app.Post("/auth/register", Register(mockSvc, nopLog))
	app.Post("/auth/login", Login(mockSvc, nopLog))

	post := func(path, body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("register", func(t *testing.T) {
		in := service.RegisterInput{Username: "ann", Email: "ann@example.com", Password: "secret1", Role: "patient"}
		mockSvc.On("Register", mock.Anything, in).Return(&service.AuthResult{
			User:  &model.User{ID: "u1", Email: in.Email, PasswordHash: "$2a$hash", Role: model.RolePatient},
			Token: "jwt",
		}, nil).Once()

		resp := post("/auth/register", `{"username":"ann","email":"ann@example.com","password":"secret1","role":"patient"}`)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		raw, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(raw), `"token":"jwt"`)
		assert.NotContains(t, string(raw), "$2a$hash")
	})

	t.Run("register duplicate", func(t *testing.T) {
		mockSvc.On("Register", mock.Anything, mock.Anything).Return(nil, service.ErrEmailTaken).Once()

		resp := post("/auth/register", `{"username":"ann","email":"ann@example.com","password":"secret1","role":"doctor"}`)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "EMAIL_TAKEN", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("login bad credentials", func(t *testing.T) {
		mockSvc.On("Login", mock.Anything, "ann@example.com", "wrong").Return(nil, service.ErrInvalidCredentials).Once()

		resp := post("/auth/login", `{"email":"ann@example.com","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("invalid body", func(t *testing.T) {
		resp := post("/auth/login", `{`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
	mockSvc.AssertExpectations(t)
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	docSvc := new(serviceMocks.MockDocumentService)
	jwt := auth.NewJWTManager("test-secret", time.Hour)
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "routing_test_total", Help: "test"}))

	RegisterRoutes(app, Deps{
		Documents: docSvc,
		Auth:      new(serviceMocks.MockAuthService),
		Tokens:    jwt,
		Limiter:   middleware.RateLimit(ratelimit.NewMemoryStore(), 1, time.Minute, nopLog),
		Gatherer:  reg,
		Logger:    nopLog,
	})

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("documents require a token", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/stats", nil))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("documents accept a valid token", func(t *testing.T) {
		u := &model.User{ID: uuid.NewString(), Role: model.RoleDoctor}
		token, _, err := jwt.Generate(u)
		require.NoError(t, err)

		docSvc.On("Stats", mock.Anything, model.Doctor{ID: u.ID}).
			Return(&model.DocumentStats{DocumentsByType: map[model.DocumentType]int{}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/stats", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, _ := app.Test(req)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		docSvc.AssertExpectations(t)
	})

	t.Run("public routes are rate limited", func(t *testing.T) {
		token := strings.Repeat("c", 64)
		docSvc.On("ResolveQR", mock.Anything, token).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/public/documents/access/"+token, nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/public/documents/access/"+token, nil))
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "RATE_LIMITED", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		b, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(b), "routing_test_total")
	})
}
