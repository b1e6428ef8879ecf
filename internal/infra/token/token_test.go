package token

import (
	"testing"
	"time"

	"github.com/Adwaitfound/tlp-provisioner/internal/application/dto"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/errs"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func testPayload() dto.SetupTokenPayload {
	return dto.SetupTokenPayload{
		AgencyID:          "3f0c0b52-07c8-4b38-b601-33f6a184cbbd",
		AdminEmail:        "owner@acme-legal.com",
		SupabaseProjectID: "abcdefghij1234567890",
		AnonKey:           "anon-key",
		ServiceRoleKey:    "service-role-key",
		VercelURL:         "https://tlp-acme-legal.vercel.app",
	}
}

func Test_Verify_Given_Generated_Token_When_Verified_Then_Payload_Round_Trips(t *testing.T) {
	SUT := NewCodec(&Config{SigningSecret: "test-secret"})

	signed, err := SUT.Generate(testPayload())
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	payload, err := SUT.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, testPayload(), *payload)
}

func Test_Verify_Given_Token_Signed_With_Other_Secret_When_Verified_Then_InvalidTokenError(t *testing.T) {
	issuer := NewCodec(&Config{SigningSecret: "issuer-secret"})
	SUT := NewCodec(&Config{SigningSecret: "verifier-secret"})

	signed, err := issuer.Generate(testPayload())
	require.NoError(t, err)

	_, err = SUT.Verify(signed)
	require.Error(t, err)
	var invalid errs.InvalidTokenError
	require.ErrorAs(t, err, &invalid)
}

func Test_Verify_Given_Expired_Token_When_Verified_Then_InvalidTokenError(t *testing.T) {
	SUT := NewCodec(&Config{SigningSecret: "test-secret"})

	signed, err := SUT.Generate(testPayload())
	require.NoError(t, err)

	SUT.now = func() time.Time {
		return time.Now().Add(25 * time.Hour)
	}
	_, err = SUT.Verify(signed)
	require.Error(t, err)
	var invalid errs.InvalidTokenError
	require.ErrorAs(t, err, &invalid)
}

func Test_Verify_Given_Token_Of_Other_Type_When_Verified_Then_InvalidTokenError(t *testing.T) {
	SUT := NewCodec(&Config{SigningSecret: "test-secret"})
	claims := setupClaims{
		AgencyID: "3f0c0b52-07c8-4b38-b601-33f6a184cbbd",
		Type:     "password-reset",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = SUT.Verify(signed)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected token type")
}

func Test_Verify_Given_Garbage_Token_When_Verified_Then_InvalidTokenError(t *testing.T) {
	SUT := NewCodec(&Config{SigningSecret: "test-secret"})

	_, err := SUT.Verify("not.a.jwt")
	require.Error(t, err)
	var invalid errs.InvalidTokenError
	require.ErrorAs(t, err, &invalid)
}
