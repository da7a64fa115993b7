package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(t *testing.T) *Issuer {
	t.Helper()

	iss, err := NewIssuer(Config{
		AccessSecret:  []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	})
	require.NoError(t, err)
	return iss
}

func TestNewIssuer_RejectsBadConfig(t *testing.T) {
	t.Parallel()

	_, err := NewIssuer(Config{RefreshSecret: []byte("r")})
	require.Error(t, err)

	_, err = NewIssuer(Config{
		AccessSecret:  []byte("a"),
		RefreshSecret: []byte("r"),
		AccessTTL:     time.Hour,
		RefreshTTL:    time.Hour,
	})
	require.Error(t, err)
}

func TestIssuer_Defaults(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer(t)
	assert.Equal(t, DefaultAccessTTL, iss.TTL(Access))
	assert.Equal(t, DefaultRefreshTTL, iss.TTL(Refresh))
	assert.Less(t, iss.TTL(Access), iss.TTL(Refresh))
}

func TestIssuer_IssueDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer(t)
	for _, typ := range []Type{Access, Refresh} {
		issued, err := iss.Issue("user@example.com", typ)
		require.NoError(t, err)
		require.NotEmpty(t, issued.Token)
		require.NotEmpty(t, issued.JTI)

		claims, err := iss.Decode(issued.Token)
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", claims.Identity())
		assert.Equal(t, issued.JTI, claims.JTI())
		assert.Equal(t, typ, claims.Type)
		assert.Equal(t, DefaultIssuer, claims.Issuer)
		assert.WithinDuration(t, issued.IssuedAt.Add(iss.TTL(typ)), claims.ExpiresAt.Time, time.Second)
	}
}

func TestIssuer_FreshJTIPerToken(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer(t)
	seen := map[string]bool{}
	for range 50 {
		issued, err := iss.Issue("user@example.com", Access)
		require.NoError(t, err)
		require.False(t, seen[issued.JTI])
		seen[issued.JTI] = true
	}
}

func TestIssuer_Decode_Failures(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer(t)
	good, err := iss.Issue("user@example.com", Access)
	require.NoError(t, err)

	other, err := NewIssuer(Config{
		AccessSecret:  []byte("another-secret"),
		RefreshSecret: []byte("another-refresh"),
	})
	require.NoError(t, err)
	foreign, err := other.Issue("user@example.com", Access)
	require.NoError(t, err)

	expired, err := iss.WithClock(func() time.Time { return time.Now().Add(-time.Hour) }).
		Issue("user@example.com", Access)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Type: Access,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    DefaultIssuer,
			Subject:   "user@example.com",
			ID:        "x",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "garbage", raw: "not-a-valid-jwt"},
		{name: "tampered", raw: good.Token + "k"},
		{name: "foreign key", raw: foreign.Token},
		{name: "expired", raw: expired.Token},
		{name: "alg none", raw: unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := iss.Decode(tt.raw)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.True(t, errors.Is(err, ErrInvalidToken))
		})
	}
}

func TestIssuer_DecodeType(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer(t)
	access, err := iss.Issue("user@example.com", Access)
	require.NoError(t, err)
	refresh, err := iss.Issue("user@example.com", Refresh)
	require.NoError(t, err)

	_, err = iss.DecodeType(access.Token, Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
	var wrong *WrongTypeError
	require.ErrorAs(t, err, &wrong)
	assert.Equal(t, Refresh, wrong.Want)
	assert.EqualError(t, err, "Only refresh tokens are allowed")

	_, err = iss.DecodeType(refresh.Token, Access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := iss.DecodeType(refresh.Token, Refresh)
	require.NoError(t, err)
	assert.Equal(t, refresh.JTI, claims.JTI())
}

func TestIssuer_RejectsUnknownType(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer(t)
	_, err := iss.Issue("user@example.com", Type("session"))
	require.Error(t, err)

	_, err = iss.Issue("", Access)
	require.Error(t, err)
}
