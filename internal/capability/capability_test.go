package capability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patientdocs/internal/model"
)

func TestIssue(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	q, err := Issue(now, 24*time.Hour)
	require.NoError(t, err)
	assert.Len(t, q.Token, 2*TokenBytes)
	assert.Equal(t, now.Add(24*time.Hour), q.ExpiresAt)

	other, err := Issue(now, 24*time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, q.Token, other.Token)

	_, err = Issue(now, 0)
	assert.Error(t, err)
}

func TestActive(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	q := &model.QRCapability{Token: "abc", ExpiresAt: now.Add(24 * time.Hour)}

	assert.True(t, Active(q, now.Add(23*time.Hour)))
	assert.False(t, Active(q, now.Add(24*time.Hour)))
	assert.False(t, Active(q, now.Add(25*time.Hour)))
	assert.False(t, Active(nil, now))
	assert.False(t, Active(&model.QRCapability{ExpiresAt: now.Add(time.Hour)}, now))
}

func TestAccessURL(t *testing.T) {
	assert.Equal(t, "http://localhost:5173/document-access/tok", AccessURL("http://localhost:5173/", "tok"))
	assert.Equal(t, "https://app.example/document-access/tok", AccessURL("https://app.example", "tok"))
}
