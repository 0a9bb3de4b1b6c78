package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"patientdocs/internal/model"
	"patientdocs/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `d.id, d.filename, d.original_name, d.mime_type, d.size, d.storage_path, d.iv,
		d.patient_id, d.uploaded_by, d.document_type, d.description, d.tags, d.access_level,
		d.shared_with, d.qr_token, d.qr_expires_at, d.is_active, d.created_at, d.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanDocument reads documentColumns, plus the joined uploader name when extra is set.
func scanDocument(row rowScanner, extra ...any) (*model.Document, error) {
	var (
		d          model.Document
		tags       []byte
		sharedWith []byte
		qrToken    sql.NullString
		qrExpires  sql.NullTime
	)
	dest := []any{
		&d.ID, &d.Filename, &d.OriginalName, &d.MimeType, &d.Size, &d.StoragePath, &d.IV,
		&d.PatientID, &d.UploadedBy, &d.DocumentType, &d.Description, &tags, &d.AccessLevel,
		&sharedWith, &qrToken, &qrExpires, &d.IsActive, &d.CreatedAt, &d.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if err := unmarshalJSONColumn(tags, &d.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if err := unmarshalJSONColumn(sharedWith, &d.SharedWith); err != nil {
		return nil, fmt.Errorf("decode shared_with: %w", err)
	}
	if qrToken.Valid && qrExpires.Valid {
		d.QR = &model.QRCapability{Token: qrToken.String, ExpiresAt: qrExpires.Time}
	}
	return &d, nil
}

func unmarshalJSONColumn(b []byte, v any) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, v)
}

func marshalJSONColumn[T any](v []T) (string, error) {
	if v == nil {
		v = []T{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	tags, err := marshalJSONColumn(doc.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	shared, err := marshalJSONColumn(doc.SharedWith)
	if err != nil {
		return nil, fmt.Errorf("encode shared_with: %w", err)
	}

	const q = `
		INSERT INTO documents AS d (id, filename, original_name, mime_type, size, storage_path, iv,
			patient_id, uploaded_by, document_type, description, tags, access_level, shared_with,
			is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Filename,
		doc.OriginalName,
		doc.MimeType,
		doc.Size,
		doc.StoragePath,
		doc.IV,
		doc.PatientID,
		doc.UploadedBy,
		doc.DocumentType,
		doc.Description,
		tags,
		doc.AccessLevel,
		shared,
		doc.IsActive,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return scanDocument(row)
}

// FindActiveByID fetches a single active document by its ID.
func (r *DocumentPostgres) FindActiveByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents d
		WHERE d.id = $1 AND d.is_active
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// ListByPatient returns a patient's active documents with the uploader's name joined in.
func (r *DocumentPostgres) ListByPatient(ctx context.Context, patientID string) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `, u.username
		FROM documents d
		JOIN users u ON u.id = d.uploaded_by
		WHERE d.patient_id = $1 AND d.is_active
		ORDER BY d.created_at DESC, d.id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		var uploader string
		d, err := scanDocument(rows, &uploader)
		if err != nil {
			return nil, err
		}
		d.UploaderName = uploader
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// FindByActiveQRToken resolves a QR token. Unknown, expired and soft-deleted
// all come back as sql.ErrNoRows.
func (r *DocumentPostgres) FindByActiveQRToken(ctx context.Context, token string, now time.Time) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents d
		WHERE d.qr_token = $1 AND d.qr_expires_at > $2 AND d.is_active
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, token, now))
}

// UpdateSharing replaces shared_with and access_level in a single statement.
func (r *DocumentPostgres) UpdateSharing(ctx context.Context, id string, sharedWith []model.ShareEntry, level model.AccessLevel) error {
	shared, err := marshalJSONColumn(sharedWith)
	if err != nil {
		return fmt.Errorf("encode shared_with: %w", err)
	}
	const q = `
		UPDATE documents
		SET shared_with = $2, access_level = $3, updated_at = now()
		WHERE id = $1 AND is_active
	`
	return r.execOne(ctx, q, id, shared, level)
}

// SetQRCapability overwrites any previous token, which invalidates it.
func (r *DocumentPostgres) SetQRCapability(ctx context.Context, id string, qr model.QRCapability) error {
	const q = `
		UPDATE documents
		SET qr_token = $2, qr_expires_at = $3, updated_at = now()
		WHERE id = $1 AND is_active
	`
	return r.execOne(ctx, q, id, qr.Token, qr.ExpiresAt)
}

// SoftDelete flips is_active; the row and its ciphertext stay in place.
func (r *DocumentPostgres) SoftDelete(ctx context.Context, id string) error {
	const q = `
		UPDATE documents
		SET is_active = false, updated_at = now()
		WHERE id = $1 AND is_active
	`
	return r.execOne(ctx, q, id)
}

// Stats returns totals and per-type counts over active documents.
func (r *DocumentPostgres) Stats(ctx context.Context, f repository.StatsFilter) (*model.DocumentStats, error) {
	const qTotals = `
		SELECT COUNT(*), COALESCE(SUM(size), 0)
		FROM documents
		WHERE is_active AND ($1 = '' OR patient_id::text = $1)
	`
	out := &model.DocumentStats{DocumentsByType: map[model.DocumentType]int{}}
	if err := r.db.QueryRowContext(ctx, qTotals, f.PatientID).Scan(&out.TotalDocuments, &out.TotalSize); err != nil {
		return nil, err
	}

	const qByType = `
		SELECT document_type, COUNT(*)
		FROM documents
		WHERE is_active AND ($1 = '' OR patient_id::text = $1)
		GROUP BY document_type
		ORDER BY document_type
	`
	rows, err := r.db.QueryContext(ctx, qByType, f.PatientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t model.DocumentType
			n int
		)
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		out.DocumentsByType[t] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// execOne runs an UPDATE that must touch exactly one active row.
func (r *DocumentPostgres) execOne(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
