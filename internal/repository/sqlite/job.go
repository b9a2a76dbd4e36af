package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/bidtrack/pkg/models"
)

func (r *SQLiteRepo) CreateJob(ctx context.Context, j *models.Job) (int64, error) {
	if j == nil {
		return 0, fmt.Errorf("job is nil")
	}
	res, err := r.conn.Exec(ctx, `INSERT INTO jobs_catalog (platform_id, external_id, title, url, description, posted_at, created) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.PlatformID, j.ExternalID, j.Title, j.URL, j.Description, j.PostedAt, now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, platform_id, external_id, title, url, description, posted_at, created FROM jobs_catalog WHERE id = ?`, id)
	var j models.Job
	var platformID, postedAt sql.NullInt64
	if err := row.Scan(&j.ID, &platformID, &j.ExternalID, &j.Title, &j.URL, &j.Description, &postedAt, &j.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if platformID.Valid {
		j.PlatformID = &platformID.Int64
	}
	if postedAt.Valid {
		j.PostedAt = &postedAt.Int64
	}
	return &j, nil
}
