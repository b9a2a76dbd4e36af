package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/bidtrack/pkg/models"
)

func (r *SQLiteRepo) CreatePortfolio(ctx context.Context, p *models.Portfolio) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("portfolio is nil")
	}
	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO portfolios (user_id, title, url, description, technologies, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Title, p.URL, p.Description, encodeList(p.Technologies), ts, ts)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetPortfolio(ctx context.Context, id int64) (*models.Portfolio, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, user_id, title, url, description, technologies, created, updated FROM portfolios WHERE id = ?`, id)
	var p models.Portfolio
	var technologies string
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.URL, &p.Description, &technologies, &p.Created, &p.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p.Technologies = decodeList(technologies)
	return &p, nil
}

func (r *SQLiteRepo) ListPortfoliosByUser(ctx context.Context, userID int64) ([]models.Portfolio, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, user_id, title, url, description, technologies, created, updated FROM portfolios WHERE user_id = ? ORDER BY created DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Portfolio
	for rows.Next() {
		var p models.Portfolio
		var technologies string
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.URL, &p.Description, &technologies, &p.Created, &p.Updated); err != nil {
			return nil, err
		}
		p.Technologies = decodeList(technologies)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) UpdatePortfolio(ctx context.Context, p *models.Portfolio) error {
	if p == nil {
		return fmt.Errorf("portfolio is nil")
	}
	_, err := r.conn.Exec(ctx, `UPDATE portfolios SET title = ?, url = ?, description = ?, technologies = ?, updated = ? WHERE id = ? AND user_id = ?`,
		p.Title, p.URL, p.Description, encodeList(p.Technologies), now(), p.ID, p.UserID)
	return err
}

func (r *SQLiteRepo) DeletePortfolio(ctx context.Context, id, userID int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM portfolios WHERE id = ? AND user_id = ?`, id, userID)
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
