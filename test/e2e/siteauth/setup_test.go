package siteauth_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/siteauth/pkg/authsdk"
)

func TestSetupFlow(t *testing.T) {
	env := startSiteauth(t, relaxedLimits)
	ctx := context.Background()
	anon := env.client()

	status, err := anon.SetupStatus(ctx)
	require.NoError(t, err)
	require.False(t, status.Status)

	owner := setupOwner(t, env)

	status, err = anon.SetupStatus(ctx)
	require.NoError(t, err)
	require.True(t, status.Status)
	require.Equal(t, siteTitle, status.Title)

	t.Run("second setup is refused", func(t *testing.T) {
		_, err := anon.Setup(ctx, authsdk.SetupData{
			Name:     "Mallory",
			Email:    "mallory@example.com",
			Password: "another long password",
		})
		requireAPIError(t, err, http.StatusForbidden, authsdk.TypeAlreadyConfigured)
	})

	t.Run("owner updates setup", func(t *testing.T) {
		updated, err := owner.UpdateSetup(ctx, authsdk.SetupData{
			Name:      "Olive O.",
			Email:     ownerEmail,
			Password:  "a brand new passphrase",
			BlogTitle: "Renamed Notes",
		})
		require.NoError(t, err)
		require.Equal(t, "Olive O.", updated.Name)

		_, err = anon.Login(ctx, ownerEmail, "a brand new passphrase")
		require.NoError(t, err)
	})

	t.Run("anonymous update is unauthorized", func(t *testing.T) {
		_, err := env.client().UpdateSetup(ctx, authsdk.SetupData{
			Name: "x", Email: "x@example.com", Password: "long enough password",
		})
		requireAPIError(t, err, http.StatusUnauthorized, authsdk.TypeUnauthorized)
	})
}

func TestInvitationFlow(t *testing.T) {
	env := startSiteauth(t, relaxedLimits)
	ctx := context.Background()
	setupOwner(t, env)

	token := env.siteauth(t, "invite", "--email", "ed@example.com", "--role", "Editor")

	anon := env.client()
	valid, err := anon.CheckInvitation(ctx, "ed@example.com")
	require.NoError(t, err)
	require.True(t, valid)

	_, err = anon.AcceptInvitation(ctx, authsdk.InvitationAccept{
		Token:    "lul11111",
		Email:    "not-invited@example.org",
		Password: "lel123456",
		Name:     "not invited",
	})
	requireAPIError(t, err, http.StatusNotFound, authsdk.TypeNotFound)

	editor, err := anon.AcceptInvitation(ctx, authsdk.InvitationAccept{
		Token:    token,
		Email:    "ed@example.com",
		Password: "editor long password",
		Name:     "Ed Editor",
	})
	require.NoError(t, err)
	require.Equal(t, "Editor", editor.Role)

	valid, err = anon.CheckInvitation(ctx, "ed@example.com")
	require.NoError(t, err)
	require.False(t, valid, "consumed invitation is no longer valid")

	_, err = env.client().AcceptInvitation(ctx, authsdk.InvitationAccept{
		Token:    token,
		Email:    "second@example.com",
		Password: "another long password",
		Name:     "Second",
	})
	requireAPIError(t, err, http.StatusNotFound, authsdk.TypeNotFound)
}
