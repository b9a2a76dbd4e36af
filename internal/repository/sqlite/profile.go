package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/bidtrack/pkg/models"
)

func (r *SQLiteRepo) CreateProfile(ctx context.Context, p *models.Profile) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("profile is nil")
	}
	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO profiles (name, owner_id, created, updated) VALUES (?, ?, ?, ?)`,
		p.Name, p.OwnerID, ts, ts)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, owner_id, created, updated FROM profiles WHERE id = ?`, id)
	var p models.Profile
	var owner sql.NullInt64
	if err := row.Scan(&p.ID, &p.Name, &owner, &p.Created, &p.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if owner.Valid {
		p.OwnerID = &owner.Int64
	}
	return &p, nil
}

func (r *SQLiteRepo) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, name, owner_id, created, updated FROM profiles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Profile
	for rows.Next() {
		var p models.Profile
		var owner sql.NullInt64
		if err := rows.Scan(&p.ID, &p.Name, &owner, &p.Created, &p.Updated); err != nil {
			return nil, err
		}
		if owner.Valid {
			p.OwnerID = &owner.Int64
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateProfile(ctx context.Context, p *models.Profile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}
	_, err := r.conn.Exec(ctx, `UPDATE profiles SET name = ?, owner_id = ?, updated = ? WHERE id = ?`,
		p.Name, p.OwnerID, now(), p.ID)
	return err
}

func (r *SQLiteRepo) DeleteProfile(ctx context.Context, id int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
