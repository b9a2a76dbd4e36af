package sqlite

import (
	"context"
	"strings"

	"github.com/garnizeh/bidtrack/pkg/models"
	"github.com/garnizeh/bidtrack/pkg/repository"
)

// statsConds builds the shared WHERE conditions of all aggregation
// queries. The date policy matches a row when any of its stage
// timestamps falls inside the range.
func statsConds(f repository.StatsFilter) ([]string, []any) {
	var conds []string
	var args []any

	if len(f.PlatformIDs) > 0 {
		conds = append(conds, `platform_id IN (`+placeholders(len(f.PlatformIDs))+`)`)
		for _, id := range f.PlatformIDs {
			args = append(args, id)
		}
	}
	if f.ProfileID != nil {
		conds = append(conds, `profile_id = ?`)
		args = append(args, *f.ProfileID)
	}
	if len(f.UserIDs) > 0 {
		conds = append(conds, `user_id IN (`+placeholders(len(f.UserIDs))+`)`)
		for _, id := range f.UserIDs {
			args = append(args, id)
		}
	}
	if f.Start != nil && f.End != nil {
		conds = append(conds, `((applied_at BETWEEN ? AND ?) OR (replied_at BETWEEN ? AND ?) OR (interviewed_at BETWEEN ? AND ?))`)
		args = append(args, *f.Start, *f.End, *f.Start, *f.End, *f.Start, *f.End)
	}

	return conds, args
}

const groupedMetrics = `COUNT(*),
	COALESCE(SUM(connects), 0),
	COALESCE(SUM(CASE WHEN stage = 'hired' THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN replied_at IS NOT NULL THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN interviewed_at IS NOT NULL THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN stage = 'not-hired' THEN 1 ELSE 0 END), 0)`

func (r *SQLiteRepo) StatsTotals(ctx context.Context, f repository.StatsFilter) (*models.StatsTotals, error) {
	conds, args := statsConds(f)
	where := ""
	if len(conds) > 0 {
		where = ` WHERE ` + strings.Join(conds, " AND ")
	}

	row := r.conn.QueryRow(ctx, `SELECT `+groupedMetrics+` FROM applied_jobs`+where, args...)
	var t models.StatsTotals
	if err := row.Scan(&t.AppliedJobs, &t.Connects, &t.HiredJobs, &t.Replied, &t.Interviewed, &t.NotHired); err != nil {
		return nil, err
	}

	// hired budget requires the hire records of the filtered applications
	budgetConds := make([]string, 0, len(conds)+1)
	for _, c := range conds {
		budgetConds = append(budgetConds, qualify(c))
	}
	budgetWhere := ""
	if len(budgetConds) > 0 {
		budgetWhere = ` WHERE ` + strings.Join(budgetConds, " AND ")
	}
	row = r.conn.QueryRow(ctx, `SELECT COALESCE(SUM(h.budget_amount), 0) FROM hired_jobs h JOIN applied_jobs a ON a.id = h.applied_job_id`+budgetWhere, args...)
	if err := row.Scan(&t.HiredBudget); err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *SQLiteRepo) GroupedByPlatform(ctx context.Context, f repository.StatsFilter) ([]repository.GroupedRow, error) {
	return r.grouped(ctx, f, "platform_id")
}

func (r *SQLiteRepo) GroupedByUser(ctx context.Context, f repository.StatsFilter) ([]repository.GroupedRow, error) {
	return r.grouped(ctx, f, "user_id")
}

func (r *SQLiteRepo) GroupedByProfile(ctx context.Context, f repository.StatsFilter) ([]repository.GroupedRow, error) {
	return r.grouped(ctx, f, "profile_id")
}

func (r *SQLiteRepo) grouped(ctx context.Context, f repository.StatsFilter, dim string) ([]repository.GroupedRow, error) {
	conds, args := statsConds(f)
	conds = append([]string{dim + ` IS NOT NULL`}, conds...)

	q := `SELECT ` + dim + `, ` + groupedMetrics + ` FROM applied_jobs WHERE ` + strings.Join(conds, " AND ") + ` GROUP BY ` + dim
	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.GroupedRow
	for rows.Next() {
		var g repository.GroupedRow
		if err := rows.Scan(&g.Key, &g.Applied, &g.Connects, &g.Hired, &g.Replied, &g.Interviewed, &g.NotHired); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) ConnectsByUserPlatform(ctx context.Context, f repository.StatsFilter) ([]repository.ConnectsRow, error) {
	return r.connectsBy(ctx, f, "user_id")
}

func (r *SQLiteRepo) ConnectsByProfilePlatform(ctx context.Context, f repository.StatsFilter) ([]repository.ConnectsRow, error) {
	return r.connectsBy(ctx, f, "profile_id")
}

// connectsBy groups connects by (dimension, platform) so the caller can
// price them with the platform-specific per-connect rate.
func (r *SQLiteRepo) connectsBy(ctx context.Context, f repository.StatsFilter, dim string) ([]repository.ConnectsRow, error) {
	conds, args := statsConds(f)
	conds = append([]string{dim + ` IS NOT NULL`, `platform_id IS NOT NULL`}, conds...)

	q := `SELECT ` + dim + `, platform_id, COALESCE(SUM(connects), 0) FROM applied_jobs WHERE ` + strings.Join(conds, " AND ") + ` GROUP BY ` + dim + `, platform_id`
	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.ConnectsRow
	for rows.Next() {
		var c repository.ConnectsRow
		if err := rows.Scan(&c.Key, &c.PlatformID, &c.Connects); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// qualify prefixes bare applied_jobs column references with the "a."
// alias used by the hired-budget join.
func qualify(cond string) string {
	for _, col := range []string{"platform_id", "profile_id", "user_id", "applied_at", "replied_at", "interviewed_at"} {
		cond = strings.ReplaceAll(cond, col, "a."+col)
	}
	return cond
}
