package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/bidtrack/pkg/models"
)

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO users (name, email, role, blocked, password_hash, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Name, u.Email, u.Role, boolToInt(u.Blocked), u.PasswordHash, ts, ts)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, email, role, blocked, password_hash, created, updated FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *SQLiteRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, email, role, blocked, password_hash, created, updated FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *SQLiteRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	return r.listUsersWhere(ctx, ``)
}

func (r *SQLiteRepo) ListAdmins(ctx context.Context) ([]models.User, error) {
	return r.listUsersWhere(ctx, `WHERE role = 'admin' AND blocked = 0`)
}

func (r *SQLiteRepo) listUsersWhere(ctx context.Context, where string) ([]models.User, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, name, email, role, blocked, password_hash, created, updated FROM users `+where+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		var blocked int
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &blocked, &u.PasswordHash, &u.Created, &u.Updated); err != nil {
			return nil, err
		}
		u.Blocked = blocked != 0
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) SetUserBlocked(ctx context.Context, id int64, blocked bool) error {
	_, err := r.conn.Exec(ctx, `UPDATE users SET blocked = ?, updated = ? WHERE id = ?`, boolToInt(blocked), now(), id)
	return err
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var blocked int
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &blocked, &u.PasswordHash, &u.Created, &u.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	u.Blocked = blocked != 0
	return &u, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
