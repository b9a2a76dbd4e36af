package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/bidtrack/pkg/models"
)

func (r *SQLiteRepo) CreateIgnoredJob(ctx context.Context, ig *models.IgnoredJob) (int64, error) {
	if ig == nil {
		return 0, fmt.Errorf("ignored job is nil")
	}
	res, err := r.conn.Exec(ctx, `INSERT INTO ignored_jobs (user_id, job_id, reason, created) VALUES (?, ?, ?, ?)`,
		ig.UserID, ig.JobID, ig.Reason, now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) FindIgnoredJob(ctx context.Context, userID, jobID int64) (*models.IgnoredJob, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, user_id, job_id, reason, created FROM ignored_jobs WHERE user_id = ? AND job_id = ?`, userID, jobID)
	var ig models.IgnoredJob
	if err := row.Scan(&ig.ID, &ig.UserID, &ig.JobID, &ig.Reason, &ig.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &ig, nil
}
