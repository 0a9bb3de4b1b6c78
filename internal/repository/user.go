package repository

import (
	"context"

	"patientdocs/internal/model"
)

// UserRepository persists doctor and patient accounts.
type UserRepository interface {
	// Create inserts a user. A taken email yields ErrDuplicate.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// CreatePatientAccount inserts the patient record and the user linked to it
	// in one transaction.
	CreatePatientAccount(ctx context.Context, u *model.User, p *model.Patient) (*model.User, error)

	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
}
