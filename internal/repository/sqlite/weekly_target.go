package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/garnizeh/bidtrack/pkg/models"
)

func (r *SQLiteRepo) CreateTarget(ctx context.Context, t *models.WeeklyTarget) (int64, error) {
	if t == nil {
		return 0, fmt.Errorf("weekly target is nil")
	}
	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO weekly_targets (user_id, week_start, week_end, target_amount, achieved_amount, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.WeekStart, t.WeekEnd, t.TargetAmount, t.AchievedAmount, ts, ts)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) UpdateTarget(ctx context.Context, t *models.WeeklyTarget) error {
	if t == nil {
		return fmt.Errorf("weekly target is nil")
	}
	_, err := r.conn.Exec(ctx, `UPDATE weekly_targets SET target_amount = ?, achieved_amount = ?, updated = ? WHERE id = ?`,
		t.TargetAmount, t.AchievedAmount, now(), t.ID)
	return err
}

func (r *SQLiteRepo) GetTargetByWindow(ctx context.Context, userID, weekStart, weekEnd int64) (*models.WeeklyTarget, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, user_id, week_start, week_end, target_amount, achieved_amount, created, updated FROM weekly_targets WHERE user_id = ? AND week_start = ? AND week_end = ?`, userID, weekStart, weekEnd)
	return scanTarget(row.Scan)
}

func (r *SQLiteRepo) GetTargetAt(ctx context.Context, userID, at int64) (*models.WeeklyTarget, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, user_id, week_start, week_end, target_amount, achieved_amount, created, updated FROM weekly_targets WHERE user_id = ? AND week_start <= ? AND week_end >= ? ORDER BY week_start DESC LIMIT 1`, userID, at, at)
	return scanTarget(row.Scan)
}

func (r *SQLiteRepo) ListTargetsContaining(ctx context.Context, userIDs []int64, start, end int64) ([]models.WeeklyTarget, error) {
	q := `SELECT id, user_id, week_start, week_end, target_amount, achieved_amount, created, updated FROM weekly_targets WHERE week_start <= ? AND week_end >= ?`
	args := []any{start, end}
	if len(userIDs) > 0 {
		q += ` AND user_id IN (` + placeholders(len(userIDs)) + `)`
		for _, id := range userIDs {
			args = append(args, id)
		}
	}
	q += ` ORDER BY user_id, week_start`

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.WeeklyTarget
	for rows.Next() {
		var t models.WeeklyTarget
		if err := rows.Scan(&t.ID, &t.UserID, &t.WeekStart, &t.WeekEnd, &t.TargetAmount, &t.AchievedAmount, &t.Created, &t.Updated); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTarget(scan func(dest ...any) error) (*models.WeeklyTarget, error) {
	var t models.WeeklyTarget
	if err := scan(&t.ID, &t.UserID, &t.WeekStart, &t.WeekEnd, &t.TargetAmount, &t.AchievedAmount, &t.Created, &t.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
