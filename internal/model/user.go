package model

import "time"

// Role is the persisted form of a principal kind.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

func (r Role) Valid() bool {
	return r == RoleDoctor || r == RolePatient
}

// User is a doctor or patient account.
type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Role            Role      `json:"role"`
	Contact         string    `json:"contact,omitempty"`
	PatientRecordID string    `json:"patientRecordId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Patient is the clinical record a patient account is linked to.
type Patient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
