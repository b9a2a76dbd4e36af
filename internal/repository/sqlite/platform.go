package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/bidtrack/pkg/models"
)

func (r *SQLiteRepo) CreatePlatform(ctx context.Context, p *models.Platform) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("platform is nil")
	}
	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO platforms (name, connect_usd, connect_inr, created, updated) VALUES (?, ?, ?, ?, ?)`,
		p.Name, p.ConnectUSD, p.ConnectINR, ts, ts)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetPlatform(ctx context.Context, id int64) (*models.Platform, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, connect_usd, connect_inr, created, updated FROM platforms WHERE id = ?`, id)
	var p models.Platform
	if err := row.Scan(&p.ID, &p.Name, &p.ConnectUSD, &p.ConnectINR, &p.Created, &p.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *SQLiteRepo) ListPlatforms(ctx context.Context) ([]models.Platform, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, name, connect_usd, connect_inr, created, updated FROM platforms ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Platform
	for rows.Next() {
		var p models.Platform
		if err := rows.Scan(&p.ID, &p.Name, &p.ConnectUSD, &p.ConnectINR, &p.Created, &p.Updated); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) UpdatePlatform(ctx context.Context, p *models.Platform) error {
	if p == nil {
		return fmt.Errorf("platform is nil")
	}
	_, err := r.conn.Exec(ctx, `UPDATE platforms SET name = ?, connect_usd = ?, connect_inr = ?, updated = ? WHERE id = ?`,
		p.Name, p.ConnectUSD, p.ConnectINR, now(), p.ID)
	return err
}

func (r *SQLiteRepo) DeletePlatform(ctx context.Context, id int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM platforms WHERE id = ?`, id)
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
