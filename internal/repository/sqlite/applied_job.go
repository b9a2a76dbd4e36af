package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/garnizeh/bidtrack/pkg/models"
	"github.com/garnizeh/bidtrack/pkg/repository"
)

const appliedJobColumns = `id, user_id, platform_id, profile_id, job_id, connects, stage, applied_at, replied_at, interviewed_at, hired_at, notes, technologies, attachments, created, updated`

func (r *SQLiteRepo) CreateAppliedJob(ctx context.Context, a *models.AppliedJob) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("applied job is nil")
	}
	if a.Stage == "" {
		a.Stage = models.StageApplied
	}
	ts := now()
	if a.AppliedAt == 0 {
		a.AppliedAt = ts
	}
	res, err := r.conn.Exec(ctx, `INSERT INTO applied_jobs (user_id, platform_id, profile_id, job_id, connects, stage, applied_at, replied_at, interviewed_at, hired_at, notes, technologies, attachments, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.PlatformID, a.ProfileID, a.JobID, a.Connects, a.Stage, a.AppliedAt, a.RepliedAt, a.InterviewedAt, a.HiredAt, a.Notes, encodeList(a.Technologies), encodeList(a.Attachments), ts, ts)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetAppliedJob(ctx context.Context, id int64) (*models.AppliedJob, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+appliedJobColumns+` FROM applied_jobs WHERE id = ?`, id)
	a, err := scanAppliedJob(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *SQLiteRepo) FindApplication(ctx context.Context, userID int64, jobID, profileID *int64) (*models.AppliedJob, error) {
	// manually entered jobs carry no job reference; they never collide
	if jobID == nil {
		return nil, nil
	}

	where := []string{"user_id = ?", "job_id = ?"}
	args := []any{userID, *jobID}
	if profileID != nil {
		where = append(where, "profile_id = ?")
		args = append(args, *profileID)
	} else {
		where = append(where, "profile_id IS NULL")
	}

	row := r.conn.QueryRow(ctx, `SELECT `+appliedJobColumns+` FROM applied_jobs WHERE `+strings.Join(where, " AND ")+` LIMIT 1`, args...)
	a, err := scanAppliedJob(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *SQLiteRepo) UpdateAppliedJob(ctx context.Context, a *models.AppliedJob) error {
	if a == nil {
		return fmt.Errorf("applied job is nil")
	}
	_, err := r.conn.Exec(ctx, `UPDATE applied_jobs SET platform_id = ?, profile_id = ?, job_id = ?, connects = ?, stage = ?, applied_at = ?, replied_at = ?, interviewed_at = ?, hired_at = ?, notes = ?, technologies = ?, attachments = ?, updated = ? WHERE id = ?`,
		a.PlatformID, a.ProfileID, a.JobID, a.Connects, a.Stage, a.AppliedAt, a.RepliedAt, a.InterviewedAt, a.HiredAt, a.Notes, encodeList(a.Technologies), encodeList(a.Attachments), now(), a.ID)
	return err
}

func (r *SQLiteRepo) ListAppliedJobs(ctx context.Context, q repository.AppliedJobQuery) ([]models.AppliedJob, error) {
	where, args := appliedJobWhere(q)
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	rows, err := r.conn.QueryRows(ctx, `SELECT `+appliedJobColumns+` FROM applied_jobs`+where+` ORDER BY applied_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AppliedJob
	for rows.Next() {
		a, err := scanAppliedJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) CountAppliedJobs(ctx context.Context, q repository.AppliedJobQuery) (int64, error) {
	where, args := appliedJobWhere(q)
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM applied_jobs`+where, args...)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

func appliedJobWhere(q repository.AppliedJobQuery) (string, []any) {
	var where []string
	var args []any
	if q.UserID != nil {
		where = append(where, "user_id = ?")
		args = append(args, *q.UserID)
	}
	if q.PlatformID != nil {
		where = append(where, "platform_id = ?")
		args = append(args, *q.PlatformID)
	}
	if q.Stage != "" {
		where = append(where, "stage = ?")
		args = append(args, q.Stage)
	}
	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func scanAppliedJob(scan func(dest ...any) error) (*models.AppliedJob, error) {
	var a models.AppliedJob
	var platformID, profileID, jobID, repliedAt, interviewedAt, hiredAt sql.NullInt64
	var technologies, attachments string
	if err := scan(&a.ID, &a.UserID, &platformID, &profileID, &jobID, &a.Connects, &a.Stage, &a.AppliedAt, &repliedAt, &interviewedAt, &hiredAt, &a.Notes, &technologies, &attachments, &a.Created, &a.Updated); err != nil {
		return nil, err
	}
	if platformID.Valid {
		a.PlatformID = &platformID.Int64
	}
	if profileID.Valid {
		a.ProfileID = &profileID.Int64
	}
	if jobID.Valid {
		a.JobID = &jobID.Int64
	}
	if repliedAt.Valid {
		a.RepliedAt = &repliedAt.Int64
	}
	if interviewedAt.Valid {
		a.InterviewedAt = &interviewedAt.Int64
	}
	if hiredAt.Valid {
		a.HiredAt = &hiredAt.Int64
	}
	a.Technologies = decodeList(technologies)
	a.Attachments = decodeList(attachments)
	return &a, nil
}
