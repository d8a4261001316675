package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, name, email, password_hash, status, role, last_seen, created_at, updated_at`

func scanUser(row scanner) (domain.User, error) {
	var (
		u                  domain.User
		status, role       string
		lastSeen           sql.NullInt64
		createdAt, updated int64
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &status, &role, &lastSeen, &createdAt, &updated); err != nil {
		return domain.User{}, err
	}
	u.Status = domain.UserStatus(status)
	u.Role = domain.Role(role)
	u.LastSeen = mapNullTimePtr(lastSeen)
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updated)
	return u, nil
}

func (r *usersRepo) getOne(ctx context.Context, query string, args ...any) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *usersRepo) GetOwner(ctx context.Context) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE role = ?`, string(domain.RoleOwner))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, status, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Status), string(u.Role),
		toMillis(u.CreatedAt), toMillis(u.UpdatedAt),
	)
	return mapConflict(err)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, u domain.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, password_hash = ?, updated_at = ? WHERE id = ?`,
		u.Name, u.Email, u.PasswordHash, toMillis(time.Now()), u.ID,
	)
	return requireRow(res, mapConflict(err))
}

func (r *usersRepo) ResetPassword(ctx context.Context, userID, expectedHash, newHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		    SET password_hash = ?,
		        status = CASE WHEN status = 'locked' THEN 'active' ELSE status END,
		        updated_at = ?
		  WHERE id = ? AND password_hash = ?`,
		newHash, toMillis(time.Now()), userID, expectedHash,
	)
	return requireRow(res, err)
}

func (r *usersRepo) LockAll(ctx context.Context) (int64, error) {
	return rowsAffected(r.db.ExecContext(ctx,
		`UPDATE users SET status = 'locked', updated_at = ?`, toMillis(time.Now()),
	))
}

func (r *usersRepo) ListPrivileged(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role IN (?, ?) ORDER BY created_at`,
		string(domain.RoleOwner), string(domain.RoleAdministrator),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *usersRepo) TouchLastSeen(ctx context.Context, userID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET last_seen = ? WHERE id = ?`, toMillis(at), userID)
	return requireRow(res, err)
}
