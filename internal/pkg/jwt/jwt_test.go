package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("secret", "", time.Hour)

	token, expiresAt, err := svc.GenerateAccessToken(Claims{PhoneNumber: "+911", UID: "u1", DisplayName: "Asha", Support: true})
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	raw, err := decoded.AsMap(t.Context())
	require.NoError(t, err)

	claims, err := svc.ParseClaims(raw)
	require.NoError(t, err)
	assert.Equal(t, Claims{PhoneNumber: "+911", UID: "u1", DisplayName: "Asha", Support: true}, claims)
}

func TestParseClaims_CustomSupportClaim(t *testing.T) {
	svc := NewJWTService("secret", "isSupport", time.Hour)

	claims, err := svc.ParseClaims(map[string]any{"type": "access", "phone_number": "+911", "uid": "u1", "isSupport": true, "support": false})
	require.NoError(t, err)
	assert.True(t, claims.Support)
}

func TestParseClaims_Invalid(t *testing.T) {
	svc := NewJWTService("secret", "", time.Hour)

	for name, raw := range map[string]map[string]any{
		"refresh token": {"type": "refresh", "phone_number": "+911", "uid": "u1"},
		"no phone":      {"type": "access", "uid": "u1"},
		"no uid":        {"type": "access", "phone_number": "+911"},
	} {
		_, err := svc.ParseClaims(raw)
		assert.ErrorIs(t, err, ErrInvalidClaims, name)
	}
}
