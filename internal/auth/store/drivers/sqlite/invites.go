package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
)

type invitesRepo struct {
	db dbtx
}

const inviteColumns = `id, token_hash, email, role, invited_by, expires_at, consumed, consumed_by, created_at, updated_at`

func scanInvite(row scanner) (domain.Invite, error) {
	var (
		inv                           domain.Invite
		role                          string
		invitedBy, consumedBy         sql.NullString
		expiresAt, createdAt, updated int64
	)
	err := row.Scan(&inv.ID, &inv.TokenHash, &inv.Email, &role, &invitedBy,
		&expiresAt, &inv.Consumed, &consumedBy, &createdAt, &updated)
	if err != nil {
		return domain.Invite{}, err
	}
	inv.Role = domain.Role(role)
	inv.InvitedBy = invitedBy.String
	inv.ConsumedBy = consumedBy.String
	inv.ExpiresAt = fromMillis(expiresAt)
	inv.CreatedAt = fromMillis(createdAt)
	inv.UpdatedAt = fromMillis(updated)
	return inv, nil
}

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.Invite) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invites (id, token_hash, email, role, invited_by, expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.TokenHash, inv.Email, string(inv.Role), mapStringNull(inv.InvitedBy),
		toMillis(inv.ExpiresAt), toMillis(inv.CreatedAt), toMillis(inv.UpdatedAt),
	)
	return mapConflict(err)
}

func (r *invitesRepo) GetActiveInviteByTokenHash(ctx context.Context, hash string, now time.Time) (domain.Invite, error) {
	inv, err := scanInvite(r.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM invites
		  WHERE token_hash = ? AND consumed = 0 AND expires_at > ?`,
		hash, toMillis(now),
	))
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitesRepo) GetActiveInviteByEmail(ctx context.Context, email string, now time.Time) (domain.Invite, error) {
	inv, err := scanInvite(r.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM invites
		  WHERE email = ? AND consumed = 0 AND expires_at > ?
		  ORDER BY created_at DESC LIMIT 1`,
		email, toMillis(now),
	))
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitesRepo) ConsumeInvite(ctx context.Context, inviteID, userID string, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invites SET consumed = 1, consumed_by = ?, updated_at = ?
		  WHERE id = ? AND consumed = 0`,
		mapStringNull(userID), toMillis(now), inviteID,
	)
	return requireRow(res, err)
}

func (r *invitesRepo) DeleteExpiredInvites(ctx context.Context, now time.Time) (int64, error) {
	return rowsAffected(r.db.ExecContext(ctx,
		`DELETE FROM invites WHERE consumed = 0 AND expires_at <= ?`, toMillis(now),
	))
}
