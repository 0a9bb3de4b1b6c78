// Package access decides which principals may read or manage a document.
package access

import (
	"time"

	"patientdocs/internal/model"
)

// CanAccess reports whether p may read doc at now. It is pure: it neither
// mutates doc nor consults anything beyond its arguments.
//
// Access is granted to the owner, to any user holding a share entry that has
// not yet expired, and to doctors when the document is doctor_only or shared.
// Expired share entries are ignored, not removed.
func CanAccess(doc *model.Document, p model.Principal, now time.Time) bool {
	if doc == nil || p == nil {
		return false
	}
	if IsOwner(doc, p) {
		return true
	}
	uid := p.UserID()
	for _, s := range doc.SharedWith {
		if s.UserID == uid && s.AccessUntil.After(now) {
			return true
		}
	}
	return model.MatchPrincipal(p,
		func(model.Doctor) bool {
			return doc.AccessLevel == model.AccessDoctorOnly || doc.AccessLevel == model.AccessShared
		},
		func(model.PatientPrincipal) bool { return false },
	)
}

// IsOwner reports whether p uploaded doc. Only owners may share or delete.
func IsOwner(doc *model.Document, p model.Principal) bool {
	return doc != nil && p != nil && p.UserID() != "" && doc.UploadedBy == p.UserID()
}
