package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the suite fast
func testHasher() *PasswordHasher {
	return NewPasswordHasher(Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32})
}

func TestPasswordHasher_Hash(t *testing.T) {
	h := testHasher()

	t.Run("deterministic for same password and salt", func(t *testing.T) {
		assert.Equal(t, h.Hash("secret-pass", "salt"), h.Hash("secret-pass", "salt"))
	})

	t.Run("different passwords give different digests", func(t *testing.T) {
		assert.NotEqual(t, h.Hash("secret-pass", "salt"), h.Hash("secret-pasS", "salt"))
	})

	t.Run("different salts give different digests", func(t *testing.T) {
		assert.NotEqual(t, h.Hash("secret-pass", "salt-a"), h.Hash("secret-pass", "salt-b"))
	})
}

func TestPasswordHasher_NewSalt(t *testing.T) {
	h := testHasher()

	a, err := h.NewSalt()
	require.NoError(t, err)
	b, err := h.NewSalt()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestPasswordHasher_Verify(t *testing.T) {
	h := testHasher()
	digest := h.Hash("correct horse", "pepper")

	assert.True(t, h.Verify("correct horse", "pepper", digest))
	assert.False(t, h.Verify("wrong horse", "pepper", digest))
	assert.False(t, h.Verify("correct horse", "other", digest))
	assert.False(t, h.Verify("correct horse", "pepper", ""))
}

func TestNewTokenManager_Validation(t *testing.T) {
	_, err := NewTokenManager("", time.Hour, "")
	assert.Error(t, err)

	_, err = NewTokenManager("secret", 0, "")
	assert.Error(t, err)
}

func TestTokenManager_IssueVerify(t *testing.T) {
	m, err := NewTokenManager("top-secret", time.Hour, "task-manager")
	require.NoError(t, err)

	token, err := m.Issue("alice")
	require.NoError(t, err)

	username, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestTokenManager_Verify_Rejects(t *testing.T) {
	m, err := NewTokenManager("top-secret", time.Hour, "task-manager")
	require.NoError(t, err)

	t.Run("expired token", func(t *testing.T) {
		issuedAt := time.Now().Add(-2 * time.Hour)
		m.now = func() time.Time { return issuedAt }
		token, err := m.Issue("alice")
		require.NoError(t, err)
		m.now = time.Now

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other, err := NewTokenManager("another-secret", time.Hour, "task-manager")
		require.NoError(t, err)
		token, err := other.Issue("alice")
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unexpected signing method", func(t *testing.T) {
		claims := Claims{
			Username: "alice",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "task-manager",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		claims := Claims{
			Username:         "alice",
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "task-manager"},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("top-secret"))
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing username", func(t *testing.T) {
		token, err := m.Issue("")
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
