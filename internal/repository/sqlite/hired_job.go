package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/bidtrack/pkg/models"
)

// CreateHire inserts the hire record and flips the source applied job to
// the hired stage in one transaction so the two rows cannot diverge.
func (r *SQLiteRepo) CreateHire(ctx context.Context, h *models.HiredJob) (int64, error) {
	if h == nil {
		return 0, fmt.Errorf("hired job is nil")
	}
	ts := now()
	if h.HiredAt == 0 {
		h.HiredAt = ts
	}

	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO hired_jobs (applied_job_id, client_name, developer_id, bidder_id, budget_type, budget_amount, hired_at, notes, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.AppliedJobID, h.ClientName, h.DeveloperID, h.BidderID, h.BudgetType, h.BudgetAmount, h.HiredAt, h.Notes, ts)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE applied_jobs SET stage = ?, hired_at = ?, updated = ? WHERE id = ?`,
		models.StageHired, h.HiredAt, ts, h.AppliedJobID); err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *SQLiteRepo) GetHireByAppliedJob(ctx context.Context, appliedJobID int64) (*models.HiredJob, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, applied_job_id, client_name, developer_id, bidder_id, budget_type, budget_amount, hired_at, notes, created FROM hired_jobs WHERE applied_job_id = ?`, appliedJobID)
	h, err := scanHiredJob(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return h, nil
}

func (r *SQLiteRepo) ListHiresByBidder(ctx context.Context, bidderID int64) ([]models.HiredJob, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, applied_job_id, client_name, developer_id, bidder_id, budget_type, budget_amount, hired_at, notes, created FROM hired_jobs WHERE bidder_id = ? ORDER BY hired_at DESC`, bidderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.HiredJob
	for rows.Next() {
		h, err := scanHiredJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}

func scanHiredJob(scan func(dest ...any) error) (*models.HiredJob, error) {
	var h models.HiredJob
	var developerID sql.NullInt64
	if err := scan(&h.ID, &h.AppliedJobID, &h.ClientName, &developerID, &h.BidderID, &h.BudgetType, &h.BudgetAmount, &h.HiredAt, &h.Notes, &h.Created); err != nil {
		return nil, err
	}
	if developerID.Valid {
		h.DeveloperID = &developerID.Int64
	}
	return &h, nil
}
