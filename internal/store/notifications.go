package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rewear-app/rewear/internal/model"
)

const notificationColumns = `id, user_id, title, message, type, is_read, related_id, related_type, created_at`

func scanNotification(row interface{ Scan(...any) error }) (*model.Notification, error) {
	n := &model.Notification{}
	var relatedType sql.NullString
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.IsRead,
		&n.RelatedID, &relatedType, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	n.RelatedType = relatedType.String
	return n, nil
}

// CreateNotification records a notification for a user. An empty type
// defaults to "info".
func CreateNotification(ctx context.Context, db *sql.DB, n *model.Notification) (*model.Notification, error) {
	if n.Type == "" {
		n.Type = model.NotificationTypeInfo
	}

	var relatedType any
	if n.RelatedType != "" {
		relatedType = n.RelatedType
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, title, message, type, related_id, related_type)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.UserID, n.Title, n.Message, n.Type, n.RelatedID, relatedType,
	)
	if err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting notification id: %w", err)
	}

	created, err := scanNotification(db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("getting notification: %w", err)
	}
	return created, nil
}

// ListNotifications returns a user's notifications, newest first.
func ListNotifications(ctx context.Context, db *sql.DB, userID int64) ([]model.Notification, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead marks one of the user's own notifications as
// read and returns it, or nil if no such notification belongs to them.
func MarkNotificationRead(ctx context.Context, db *sql.DB, id, userID int64) (*model.Notification, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("marking notification read: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, nil
	}

	updated, err := scanNotification(db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("getting notification: %w", err)
	}
	return updated, nil
}

// MarkAllNotificationsRead marks all of a user's unread notifications
// as read and returns how many were updated.
func MarkAllNotificationsRead(ctx context.Context, db *sql.DB, userID int64) (int64, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("marking all notifications read: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}
