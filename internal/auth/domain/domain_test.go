package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRolePrivileged(t *testing.T) {
	require.True(t, RoleOwner.Privileged())
	require.True(t, RoleAdministrator.Privileged())
	for _, r := range []Role{RoleEditor, RoleAuthor, RoleContributor} {
		require.False(t, r.Privileged(), r)
	}
	require.NotContains(t, InvitableRoles, RoleOwner)
}

func TestInviteRedeemable(t *testing.T) {
	now := time.Now()
	inv := Invite{ExpiresAt: now.Add(time.Hour)}
	require.True(t, inv.Redeemable(now))

	inv.Consumed = true
	require.False(t, inv.Redeemable(now))

	inv = Invite{ExpiresAt: now}
	require.False(t, inv.Redeemable(now))
}
