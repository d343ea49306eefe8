package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/aegis/pkg/utils/errors"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestIssueAndParse(t *testing.T) {
	m := NewManager(testKey, "aegis-test", time.Hour)

	token, expiresAt, err := m.IssueToken("alice", "tenantA")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "tenantA", claims.Domain)
	assert.Equal(t, "aegis-test", claims.Issuer)
}

func TestParseRejectsWrongKey(t *testing.T) {
	m := NewManager(testKey, "aegis-test", time.Hour)
	other := NewManager("ffffffffffffffffffffffffffffffff", "aegis-test", time.Hour)

	token, _, err := m.IssueToken("alice", "tenantA")
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTokenInvalid)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := NewManager(testKey, "aegis-test", -time.Minute)

	token, _, err := m.IssueToken("alice", "tenantA")
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTokenInvalid)
}

func TestParseRejectsGarbage(t *testing.T) {
	m := NewManager(testKey, "aegis-test", time.Hour)

	_, err := m.ParseToken("not.a.token")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTokenInvalid)
}

func TestEmptyDomainOmitted(t *testing.T) {
	m := NewManager(testKey, "aegis-test", time.Hour)

	token, _, err := m.IssueToken("alice", "")
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Empty(t, claims.Domain)
}
