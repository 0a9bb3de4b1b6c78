package model

import "fmt"

// Principal is the authenticated caller. The set of implementations is closed:
// only Doctor and Patient satisfy it.
type Principal interface {
	UserID() string
	Role() Role
	sealed()
}

// Doctor is an authenticated doctor account.
type Doctor struct {
	ID string
}

func (d Doctor) UserID() string { return d.ID }
func (Doctor) Role() Role       { return RoleDoctor }
func (Doctor) sealed()          {}

// PatientPrincipal is an authenticated patient account, linked to the patient
// record its documents are filed under.
type PatientPrincipal struct {
	ID              string
	PatientRecordID string
}

func (p PatientPrincipal) UserID() string { return p.ID }
func (PatientPrincipal) Role() Role       { return RolePatient }
func (PatientPrincipal) sealed()          {}

// MatchPrincipal dispatches on the concrete principal kind. Every kind needs a
// handler, so a new role does not compile until all call sites handle it.
func MatchPrincipal[T any](p Principal, doctor func(Doctor) T, patient func(PatientPrincipal) T) T {
	switch v := p.(type) {
	case Doctor:
		return doctor(v)
	case PatientPrincipal:
		return patient(v)
	}
	panic(fmt.Sprintf("model: unknown principal %T", p))
}

// NewPrincipal builds the principal for a persisted role.
func NewPrincipal(role Role, userID, patientRecordID string) (Principal, error) {
	switch role {
	case RoleDoctor:
		return Doctor{ID: userID}, nil
	case RolePatient:
		return PatientPrincipal{ID: userID, PatientRecordID: patientRecordID}, nil
	}
	return nil, fmt.Errorf("unknown role %q", role)
}

// PrincipalOf returns the principal acting for u.
func PrincipalOf(u *User) (Principal, error) {
	return NewPrincipal(u.Role, u.ID, u.PatientRecordID)
}
