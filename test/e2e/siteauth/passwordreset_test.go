package siteauth_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/siteauth/pkg/authsdk"
)

func TestPasswordResetFlow(t *testing.T) {
	env := startSiteauth(t, relaxedLimits)
	ctx := context.Background()
	setupOwner(t, env)

	anon := env.client()
	require.NoError(t, anon.RequestPasswordReset(ctx, ownerEmail))
	token := env.resetToken(t)

	_, err := anon.ConfirmPasswordReset(ctx, token, "freshly reset password")
	require.NoError(t, err)

	_, err = anon.Login(ctx, ownerEmail, ownerPassword)
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.TypeUnauthorized)

	_, err = anon.Login(ctx, ownerEmail, "freshly reset password")
	require.NoError(t, err)

	t.Run("token is single use", func(t *testing.T) {
		_, err := env.client().ConfirmPasswordReset(ctx, token, "yet another password")
		requireAPIError(t, err, http.StatusBadRequest, authsdk.TypeInvalidOrExpired)
	})

	t.Run("unknown email is not disclosed", func(t *testing.T) {
		require.NoError(t, env.client().RequestPasswordReset(ctx, "nobody@example.com"))
	})
}

func TestResetAllPasswords(t *testing.T) {
	env := startSiteauth(t, relaxedLimits)
	ctx := context.Background()
	owner := setupOwner(t, env)

	internal := env.client()
	internal.BearerToken = env.siteauth(t, "internal-token", "--subject", "e2e")
	require.NoError(t, internal.ResetAllPasswords(ctx))

	t.Run("existing session is revoked", func(t *testing.T) {
		_, err := owner.UpdateSetup(ctx, authsdk.SetupData{
			Name: ownerName, Email: ownerEmail, Password: "irrelevant long password",
		})
		requireAPIError(t, err, http.StatusUnauthorized, authsdk.TypeUnauthorized)
	})

	_, err := env.client().Login(ctx, ownerEmail, ownerPassword)
	requireAPIError(t, err, http.StatusForbidden, authsdk.TypePasswordResetRequired)

	token := env.resetToken(t)
	_, err = env.client().ConfirmPasswordReset(ctx, token, "post incident password")
	require.NoError(t, err)

	_, err = env.client().Login(ctx, ownerEmail, "post incident password")
	require.NoError(t, err)
}

func TestResetAllPasswords_RequiresCredentials(t *testing.T) {
	env := startSiteauth(t, relaxedLimits)
	err := env.client().ResetAllPasswords(context.Background())
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.TypeUnauthorized)
}
