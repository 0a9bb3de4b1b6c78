package service

import "errors"

// Sentinel errors returned by the services. Handlers map them to HTTP
// statuses with errors.Is; validation failures wrap ErrValidation with detail.
var (
	ErrValidation         = errors.New("validation failed")
	ErrAccessDenied       = errors.New("access denied")
	ErrNotFound           = errors.New("document not found")
	ErrEncryption         = errors.New("document encryption failed")
	ErrDecryption         = errors.New("document decryption failed")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrReaderNil          = errors.New("reader is nil")
)
