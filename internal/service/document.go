package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"patientdocs/internal/access"
	"patientdocs/internal/capability"
	"patientdocs/internal/cryptox"
	"patientdocs/internal/model"
	"patientdocs/internal/qr"
	"patientdocs/internal/repository"
	"patientdocs/internal/storage"
)

var tracer = otel.Tracer("patientdocs/internal/service")

// AllowedMimeTypes are the upload formats accepted for medical documents.
var AllowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"text/plain": true,
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/tiff": true,
}

// DocumentConfig carries the settings the document service needs at start.
type DocumentConfig struct {
	EncryptionKey  []byte
	QRDefaultHours int
	QRMaxHours     int
	FrontendURL    string
	MaxUploadBytes int64
}

// UploadInput describes a document upload.
type UploadInput struct {
	Reader       io.Reader
	OriginalName string
	MimeType     string
	Size         int64
	PatientID    string
	DocumentType string
	Description  string
	Tags         string
	AccessLevel  string
}

// ShareInput describes a share update. Empty UserIDs leaves the share list
// untouched; a nil AccessUntil means 24 hours from now.
type ShareInput struct {
	UserIDs     []string
	AccessUntil *time.Time
	AccessLevel string
}

// DocumentSummary is the list view of a document. It never carries ciphertext.
type DocumentSummary struct {
	ID           string             `json:"id"`
	OriginalName string             `json:"originalName"`
	DocumentType model.DocumentType `json:"documentType"`
	Description  string             `json:"description"`
	Size         int64              `json:"size"`
	Tags         []string           `json:"tags"`
	AccessLevel  model.AccessLevel  `json:"accessLevel"`
	UploadedBy   string             `json:"uploadedBy"`
	UploadedAt   time.Time          `json:"uploadedAt"`
	HasQRCode    bool               `json:"hasQrCode"`
}

// PublicDocument is what a QR token holder may see about a document.
type PublicDocument struct {
	ID           string             `json:"id"`
	OriginalName string             `json:"originalName"`
	DocumentType model.DocumentType `json:"documentType"`
	Description  string             `json:"description"`
	Size         int64              `json:"size"`
	UploadedAt   time.Time          `json:"uploadedAt"`
	ExpiresAt    time.Time          `json:"expiresAt"`
}

// DocumentContent is a decrypted document ready to stream.
type DocumentContent struct {
	Document *model.Document
	Content  []byte
}

// QRGrant is the result of issuing a QR capability.
type QRGrant struct {
	Token         string    `json:"-"`
	DataURL       string    `json:"dataURL"`
	AccessURL     string    `json:"accessUrl"`
	ExpiresAt     time.Time `json:"expiresAt"`
	DurationHours int       `json:"durationHours"`
}

// ShareResult reports the sharing state after Share.
type ShareResult struct {
	SharedWith  []model.ShareEntry `json:"sharedWith"`
	AccessLevel model.AccessLevel  `json:"accessLevel"`
}

// DocumentService defines the use cases for encrypted patient documents.
type DocumentService interface {
	// Upload encrypts the content, stores the ciphertext, then saves metadata.
	// The stored object is removed again if the metadata cannot be saved.
	Upload(ctx context.Context, p model.Principal, in UploadInput) (*model.Document, error)

	// ListForPatient returns the patient's documents p may access.
	ListForPatient(ctx context.Context, p model.Principal, patientID string) ([]DocumentSummary, error)

	// Download returns the decrypted document if p may access it.
	Download(ctx context.Context, p model.Principal, id string) (*DocumentContent, error)

	// IssueQR replaces the document's QR token with a new one.
	IssueQR(ctx context.Context, p model.Principal, id string, durationHours int) (*QRGrant, error)

	// ResolveQR returns public metadata for a live QR token.
	ResolveQR(ctx context.Context, token string) (*PublicDocument, error)

	// DownloadViaQR returns the decrypted document for a live QR token.
	DownloadViaQR(ctx context.Context, token string) (*DocumentContent, error)

	// Share updates the share list and access level. Owner only.
	Share(ctx context.Context, p model.Principal, id string, in ShareInput) (*ShareResult, error)

	// Delete soft-deletes the document. Owner only.
	Delete(ctx context.Context, p model.Principal, id string) error

	// Stats summarizes the active documents visible to p.
	Stats(ctx context.Context, p model.Principal) (*model.DocumentStats, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store storage.Storage
	repo  repository.DocumentRepository
	cfg   DocumentConfig
	now   func() time.Time
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, cfg DocumentConfig) DocumentService {
	return &documentService{store: store, repo: repo, cfg: cfg, now: time.Now}
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func validateID(field, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return validationError("invalid %s format", field)
	}
	return nil
}

func parseTags(raw string) []string {
	tags := make([]string, 0)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func (s *documentService) Upload(ctx context.Context, p model.Principal, in UploadInput) (*model.Document, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Upload")
	defer span.End()

	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	if in.PatientID == "" || in.DocumentType == "" {
		return nil, validationError("patient ID and document type are required")
	}
	if err := validateID("patient ID", in.PatientID); err != nil {
		return nil, err
	}
	docType := model.DocumentType(in.DocumentType)
	if !docType.Valid() {
		return nil, validationError("unknown document type %q", in.DocumentType)
	}
	level := model.AccessPrivate
	if in.AccessLevel != "" {
		level = model.AccessLevel(in.AccessLevel)
		if !level.Valid() {
			return nil, validationError("unknown access level %q", in.AccessLevel)
		}
	}
	if !AllowedMimeTypes[in.MimeType] {
		return nil, validationError("file type %q is not allowed", in.MimeType)
	}
	if s.cfg.MaxUploadBytes > 0 && in.Size > s.cfg.MaxUploadBytes {
		return nil, validationError("file exceeds %d bytes", s.cfg.MaxUploadBytes)
	}

	var limit int64 = -1
	if s.cfg.MaxUploadBytes > 0 {
		limit = s.cfg.MaxUploadBytes + 1
	}
	plaintext, err := readAll(in.Reader, limit)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(plaintext) == 0 {
		return nil, validationError("file is empty")
	}
	if s.cfg.MaxUploadBytes > 0 && int64(len(plaintext)) > s.cfg.MaxUploadBytes {
		return nil, validationError("file exceeds %d bytes", s.cfg.MaxUploadBytes)
	}

	ciphertextHex, ivHex, err := cryptox.Encrypt(plaintext, s.cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	id := uuid.New().String()
	ext := filepath.Ext(in.OriginalName)
	key := filepath.ToSlash(filepath.Join("documents", id+".enc"))

	span.SetAttributes(attribute.String("document.id", id), attribute.Int("document.size", len(plaintext)))

	objInfo, err := s.store.Put(ctx, key, strings.NewReader(ciphertextHex), storage.PutObjectOptions{
		Size:        int64(len(ciphertextHex)),
		ContentType: "text/plain",
		Metadata: map[string]string{
			"document-id": id,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	now := s.now().UTC()
	doc := &model.Document{
		ID:           id,
		Filename:     id + ext,
		OriginalName: in.OriginalName,
		MimeType:     in.MimeType,
		Size:         int64(len(plaintext)),
		StoragePath:  objInfo.Key,
		IV:           ivHex,
		PatientID:    in.PatientID,
		UploadedBy:   p.UserID(),
		DocumentType: docType,
		Description:  in.Description,
		Tags:         parseTags(in.Tags),
		AccessLevel:  level,
		SharedWith:   []model.ShareEntry{},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *documentService) ListForPatient(ctx context.Context, p model.Principal, patientID string) ([]DocumentSummary, error) {
	if err := validateID("patient ID", patientID); err != nil {
		return nil, err
	}
	docs, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]DocumentSummary, 0, len(docs))
	for i := range docs {
		d := &docs[i]
		if !access.CanAccess(d, p, now) {
			continue
		}
		out = append(out, DocumentSummary{
			ID:           d.ID,
			OriginalName: d.OriginalName,
			DocumentType: d.DocumentType,
			Description:  d.Description,
			Size:         d.Size,
			Tags:         d.Tags,
			AccessLevel:  d.AccessLevel,
			UploadedBy:   d.UploaderName,
			UploadedAt:   d.CreatedAt,
			HasQRCode:    capability.Active(d.QR, now),
		})
	}
	return out, nil
}

func (s *documentService) Download(ctx context.Context, p model.Principal, id string) (*DocumentContent, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Download", trace.WithAttributes(attribute.String("document.id", id)))
	defer span.End()

	doc, err := s.findAccessible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return s.decrypt(ctx, doc)
}

func (s *documentService) IssueQR(ctx context.Context, p model.Principal, id string, durationHours int) (*QRGrant, error) {
	if durationHours <= 0 {
		durationHours = s.cfg.QRDefaultHours
	}
	if s.cfg.QRMaxHours > 0 && durationHours > s.cfg.QRMaxHours {
		return nil, validationError("durationHours must not exceed %d", s.cfg.QRMaxHours)
	}

	doc, err := s.findAccessible(ctx, p, id)
	if err != nil {
		return nil, err
	}

	qrCap, err := capability.Issue(s.now(), time.Duration(durationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetQRCapability(ctx, doc.ID, qrCap); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	accessURL := capability.AccessURL(s.cfg.FrontendURL, qrCap.Token)
	dataURL, err := qr.DataURL(accessURL)
	if err != nil {
		return nil, err
	}
	return &QRGrant{
		Token:         qrCap.Token,
		DataURL:       dataURL,
		AccessURL:     accessURL,
		ExpiresAt:     qrCap.ExpiresAt,
		DurationHours: durationHours,
	}, nil
}

func (s *documentService) ResolveQR(ctx context.Context, token string) (*PublicDocument, error) {
	doc, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return &PublicDocument{
		ID:           doc.ID,
		OriginalName: doc.OriginalName,
		DocumentType: doc.DocumentType,
		Description:  doc.Description,
		Size:         doc.Size,
		UploadedAt:   doc.CreatedAt,
		ExpiresAt:    doc.QR.ExpiresAt,
	}, nil
}

func (s *documentService) DownloadViaQR(ctx context.Context, token string) (*DocumentContent, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.DownloadViaQR")
	defer span.End()

	doc, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.decrypt(ctx, doc)
}

func (s *documentService) Share(ctx context.Context, p model.Principal, id string, in ShareInput) (*ShareResult, error) {
	doc, err := s.findOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}

	shared := doc.SharedWith
	if len(in.UserIDs) > 0 {
		until := s.now().Add(24 * time.Hour)
		if in.AccessUntil != nil {
			until = *in.AccessUntil
		}
		shared = make([]model.ShareEntry, 0, len(in.UserIDs))
		for _, uid := range in.UserIDs {
			if err := validateID("user ID", uid); err != nil {
				return nil, err
			}
			shared = append(shared, model.ShareEntry{UserID: uid, Role: model.ShareRole, AccessUntil: until.UTC()})
		}
	}

	level := doc.AccessLevel
	if in.AccessLevel != "" {
		level = model.AccessLevel(in.AccessLevel)
		if !level.Valid() {
			return nil, validationError("unknown access level %q", in.AccessLevel)
		}
	}

	if err := s.repo.UpdateSharing(ctx, doc.ID, shared, level); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if shared == nil {
		shared = []model.ShareEntry{}
	}
	return &ShareResult{SharedWith: shared, AccessLevel: level}, nil
}

func (s *documentService) Delete(ctx context.Context, p model.Principal, id string) error {
	doc, err := s.findOwned(ctx, p, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, doc.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *documentService) Stats(ctx context.Context, p model.Principal) (*model.DocumentStats, error) {
	filter := model.MatchPrincipal(p,
		func(model.Doctor) *repository.StatsFilter { return &repository.StatsFilter{} },
		func(pp model.PatientPrincipal) *repository.StatsFilter {
			// A patient without a linked record has nothing to count.
			if pp.PatientRecordID == "" {
				return nil
			}
			return &repository.StatsFilter{PatientID: pp.PatientRecordID}
		},
	)
	if filter == nil {
		return &model.DocumentStats{DocumentsByType: map[model.DocumentType]int{}}, nil
	}
	return s.repo.Stats(ctx, *filter)
}

func (s *documentService) find(ctx context.Context, id string) (*model.Document, error) {
	if err := validateID("document ID", id); err != nil {
		return nil, err
	}
	doc, err := s.repo.FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) findAccessible(ctx context.Context, p model.Principal, id string) (*model.Document, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanAccess(doc, p, s.now()) {
		return nil, ErrAccessDenied
	}
	return doc, nil
}

func (s *documentService) findOwned(ctx context.Context, p model.Principal, id string) (*model.Document, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.IsOwner(doc, p) {
		return nil, ErrAccessDenied
	}
	return doc, nil
}

// findByToken resolves a QR token. Malformed, unknown, expired and deleted
// all collapse into ErrNotFound.
func (s *documentService) findByToken(ctx context.Context, token string) (*model.Document, error) {
	if len(token) != 2*capability.TokenBytes {
		return nil, ErrNotFound
	}
	now := s.now()
	doc, err := s.repo.FindByActiveQRToken(ctx, token, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !capability.Active(doc.QR, now) {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *documentService) decrypt(ctx context.Context, doc *model.Document) (*DocumentContent, error) {
	rc, _, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("fetch ciphertext: %w", err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, fmt.Errorf("read ciphertext: %w", err)
	}

	plaintext, err := cryptox.Decrypt(buf.String(), doc.IV, s.cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return &DocumentContent{Document: doc, Content: plaintext}, nil
}

// readAll reads r fully, stopping after limit bytes when limit is positive.
func readAll(r io.Reader, limit int64) ([]byte, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit)
	}
	return io.ReadAll(r)
}
