package model

import "time"

// DocumentType classifies an uploaded medical document.
type DocumentType string

const (
	DocumentTypeMedicalRecord DocumentType = "medical_record"
	DocumentTypeLabResult     DocumentType = "lab_result"
	DocumentTypePrescription  DocumentType = "prescription"
	DocumentTypeImaging       DocumentType = "imaging"
	DocumentTypeOther         DocumentType = "other"
)

// Valid reports whether t is one of the recognized document types.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeMedicalRecord, DocumentTypeLabResult, DocumentTypePrescription,
		DocumentTypeImaging, DocumentTypeOther:
		return true
	}
	return false
}

// AccessLevel controls which principals besides the owner may read a document.
type AccessLevel string

const (
	AccessPrivate    AccessLevel = "private"
	AccessDoctorOnly AccessLevel = "doctor_only"
	AccessShared     AccessLevel = "shared"
)

func (l AccessLevel) Valid() bool {
	switch l {
	case AccessPrivate, AccessDoctorOnly, AccessShared:
		return true
	}
	return false
}

// ShareRole is the role recorded on share entries created by the share operation.
const ShareRole = "shared"

// ShareEntry grants a single user read access until AccessUntil.
type ShareEntry struct {
	UserID      string    `json:"userId"`
	Role        string    `json:"role"`
	AccessUntil time.Time `json:"accessUntil"`
}

// QRCapability is a bearer token that stands in for authentication on the
// public document routes until ExpiresAt.
type QRCapability struct {
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Document is the metadata of an encrypted document.
// The ciphertext lives in object storage under StoragePath and is only
// readable together with IV.
type Document struct {
	ID           string        `json:"id"`
	Filename     string        `json:"filename"`
	OriginalName string        `json:"originalName"`
	MimeType     string        `json:"mimeType"`
	Size         int64         `json:"size"`
	StoragePath  string        `json:"-"`
	IV           string        `json:"-"`
	PatientID    string        `json:"patientId"`
	UploadedBy   string        `json:"uploadedBy"`
	UploaderName string        `json:"uploaderName,omitempty"`
	DocumentType DocumentType  `json:"documentType"`
	Description  string        `json:"description"`
	Tags         []string      `json:"tags"`
	AccessLevel  AccessLevel   `json:"accessLevel"`
	SharedWith   []ShareEntry  `json:"sharedWith"`
	QR           *QRCapability `json:"-"`
	IsActive     bool          `json:"isActive"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// DocumentStats aggregates active documents visible to a principal.
type DocumentStats struct {
	TotalDocuments  int                  `json:"totalDocuments"`
	TotalSize       int64                `json:"totalSize"`
	DocumentsByType map[DocumentType]int `json:"documentsByType"`
}
