// Package capability issues and checks the QR bearer tokens that grant
// anonymous, time-boxed access to a single document.
package capability

import (
	"fmt"
	"strings"
	"time"

	"patientdocs/internal/cryptox"
	"patientdocs/internal/model"
)

// TokenBytes is the amount of randomness in a token (256 bits).
const TokenBytes = 32

// Issue creates a new token valid for d from now.
func Issue(now time.Time, d time.Duration) (model.QRCapability, error) {
	if d <= 0 {
		return model.QRCapability{}, fmt.Errorf("capability duration must be positive, got %s", d)
	}
	tok, err := cryptox.RandomToken(TokenBytes)
	if err != nil {
		return model.QRCapability{}, fmt.Errorf("generate token: %w", err)
	}
	return model.QRCapability{Token: tok, ExpiresAt: now.Add(d)}, nil
}

// Active reports whether q is still usable at now. Expiry is strict: a token
// whose ExpiresAt is not after now is dead.
func Active(q *model.QRCapability, now time.Time) bool {
	return q != nil && q.Token != "" && now.Before(q.ExpiresAt)
}

// AccessURL is the frontend page a QR code points at.
func AccessURL(frontendURL, token string) string {
	return strings.TrimRight(frontendURL, "/") + "/document-access/" + token
}
