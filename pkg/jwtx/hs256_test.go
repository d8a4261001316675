package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/siteauth/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestHS256SignVerify(t *testing.T) {
	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)
	require.Equal(t, "HS256", signer.Alg())

	claims := jwtx.NewInternalClaims("cli", []string{"users:reset_all"}, time.Minute, "siteauth", time.Now())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	got, err := jwtx.NewVerifierHS256(testSecret, "siteauth", 0).Verify(token)
	require.NoError(t, err)
	require.Equal(t, "cli", got.Subject)
	require.True(t, got.HasScope("users:reset_all"))
}

func TestNewSignerHS256_ShortSecret(t *testing.T) {
	_, err := jwtx.NewSignerHS256("short")
	require.Error(t, err)
}

func TestHS256Verify_Rejects(t *testing.T) {
	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)
	now := time.Now()

	valid, err := signer.Sign(jwtx.NewInternalClaims("cli", nil, time.Minute, "siteauth", now))
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := jwtx.NewVerifierHS256(strings.Repeat("x", 32), "siteauth", 0).Verify(valid)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := jwtx.NewVerifierHS256(testSecret, "elsewhere", 0).Verify(valid)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("expired", func(t *testing.T) {
		old, err := signer.Sign(jwtx.NewInternalClaims("cli", nil, time.Minute, "siteauth", now.Add(-time.Hour)))
		require.NoError(t, err)
		_, err = jwtx.NewVerifierHS256(testSecret, "siteauth", 0).Verify(old)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := jwtx.NewVerifierHS256(testSecret, "", 0).Verify("not.a.jwt")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("alg none", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwtx.NewInternalClaims("cli", nil, time.Minute, "", now))
		raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = jwtx.NewVerifierHS256(testSecret, "", 0).Verify(raw)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("empty verifier secret", func(t *testing.T) {
		_, err := jwtx.NewVerifierHS256("", "", 0).Verify(valid)
		require.Error(t, err)
	})
}
