package repository

import (
	"context"
	"time"

	"patientdocs/internal/model"
)

// DocumentRepository defines data access for document metadata using SQL queries only.
// No business logic here, strictly persistence operations. Soft-deleted rows
// are invisible to every method.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindActiveByID returns an active document by its ID.
	FindActiveByID(ctx context.Context, id string) (*model.Document, error)

	// ListByPatient returns the active documents filed under a patient record,
	// newest first, with UploaderName joined from users.
	ListByPatient(ctx context.Context, patientID string) ([]model.Document, error)

	// FindByActiveQRToken returns the active document whose QR token matches
	// and has not expired at now.
	FindByActiveQRToken(ctx context.Context, token string, now time.Time) (*model.Document, error)

	// UpdateSharing replaces the share list and access level of an active document.
	UpdateSharing(ctx context.Context, id string, sharedWith []model.ShareEntry, level model.AccessLevel) error

	// SetQRCapability overwrites the QR token of an active document.
	SetQRCapability(ctx context.Context, id string, qr model.QRCapability) error

	// SoftDelete marks an active document inactive.
	SoftDelete(ctx context.Context, id string) error

	// Stats aggregates active documents, optionally restricted to one patient record.
	Stats(ctx context.Context, f StatsFilter) (*model.DocumentStats, error)
}

// StatsFilter narrows Stats. An empty PatientID means all patients.
type StatsFilter struct {
	PatientID string
}
