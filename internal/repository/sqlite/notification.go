package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/bidtrack/pkg/models"
)

func (r *SQLiteRepo) CreateNotification(ctx context.Context, n *models.Notification) (int64, error) {
	if n == nil {
		return 0, fmt.Errorf("notification is nil")
	}
	if n.Priority == "" {
		n.Priority = models.PriorityLow
	}
	var metadata any
	if len(n.Metadata) > 0 {
		metadata = string(n.Metadata)
	}
	res, err := r.conn.Exec(ctx, `INSERT INTO notifications (user_id, actor_id, type, title, body, priority, read, metadata, created) VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		n.UserID, n.ActorID, n.Type, n.Title, n.Body, n.Priority, metadata, now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) ListNotifications(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	q := `SELECT id, user_id, actor_id, type, title, body, priority, read, metadata, created FROM notifications WHERE user_id = ?`
	if unreadOnly {
		q += ` AND read = 0`
	}
	q += ` ORDER BY created DESC LIMIT ? OFFSET ?`

	rows, err := r.conn.QueryRows(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		var actorID sql.NullInt64
		var read int
		var metadata sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &actorID, &n.Type, &n.Title, &n.Body, &n.Priority, &read, &metadata, &n.Created); err != nil {
			return nil, err
		}
		if actorID.Valid {
			n.ActorID = &actorID.Int64
		}
		n.Read = read != 0
		if metadata.Valid {
			n.Metadata = []byte(metadata.String)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) CountNotifications(ctx context.Context, userID int64, unreadOnly bool) (int64, error) {
	q := `SELECT COUNT(*) FROM notifications WHERE user_id = ?`
	if unreadOnly {
		q += ` AND read = 0`
	}
	row := r.conn.QueryRow(ctx, q, userID)
	var cnt int64
	if err := row.Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *SQLiteRepo) MarkNotificationRead(ctx context.Context, id, userID int64) error {
	res, err := r.conn.Exec(ctx, `UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?`, id, userID)
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

func (r *SQLiteRepo) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	_, err := r.conn.Exec(ctx, `UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0`, userID)
	return err
}

func (r *SQLiteRepo) DeleteNotification(ctx context.Context, id, userID int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM notifications WHERE id = ? AND user_id = ?`, id, userID)
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
