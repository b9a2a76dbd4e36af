package sqlite

import (
	"context"
	"fmt"

	"github.com/garnizeh/bidtrack/pkg/models"
)

func (r *SQLiteRepo) CreateChangeLog(ctx context.Context, l *models.ChangeLog) (int64, error) {
	if l == nil {
		return 0, fmt.Errorf("change log is nil")
	}
	res, err := r.conn.Exec(ctx, `INSERT INTO change_logs (entity, entity_id, user_id, changes, created) VALUES (?, ?, ?, ?, ?)`,
		l.Entity, l.EntityID, l.UserID, string(l.Changes), now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) ListChangeLogs(ctx context.Context, entity string, entityID int64) ([]models.ChangeLog, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, entity, entity_id, user_id, changes, created FROM change_logs WHERE entity = ? AND entity_id = ? ORDER BY created DESC`, entity, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChangeLog
	for rows.Next() {
		var l models.ChangeLog
		var changes string
		if err := rows.Scan(&l.ID, &l.Entity, &l.EntityID, &l.UserID, &changes, &l.Created); err != nil {
			return nil, err
		}
		l.Changes = []byte(changes)
		out = append(out, l)
	}
	return out, rows.Err()
}
