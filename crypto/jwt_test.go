package crypto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TuneScotty/drawit-server/domain"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	t.Parallel()
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate("user-1", "ana")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, username, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
	assert.Equal(t, "ana", username)
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	t.Parallel()
	m := NewJWTManager("test-secret", -time.Minute)

	token, err := m.Generate("user-1", "ana")
	require.NoError(t, err)

	_, _, err = m.Verify(token)
	assert.ErrorIs(t, err, domain.ErrExpiredToken)
}

func TestJWTManager_WrongKey(t *testing.T) {
	t.Parallel()
	issuer := NewJWTManager("secret-a", time.Hour)
	verifier := NewJWTManager("secret-b", time.Hour)

	token, err := issuer.Generate("user-1", "ana")
	require.NoError(t, err)

	_, _, err = verifier.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidTokenSignature)
}

func TestJWTManager_GarbageToken(t *testing.T) {
	t.Parallel()
	m := NewJWTManager("test-secret", time.Hour)

	_, _, err := m.Verify("not.a.token")
	assert.ErrorIs(t, err, domain.ErrCorruptedToken)
}
