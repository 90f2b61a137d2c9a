package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rewear-app/rewear/internal/model"
)

// CreateFeedback records a post-swap rating.
func CreateFeedback(ctx context.Context, db *sql.DB, swapID, fromUserID, toUserID int64, rating int, comment string) (*model.Feedback, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO feedback (swap_id, from_user_id, to_user_id, rating, comment)
		 VALUES (?, ?, ?, ?, ?)`,
		swapID, fromUserID, toUserID, rating, comment,
	)
	if err != nil {
		return nil, fmt.Errorf("creating feedback: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting feedback id: %w", err)
	}

	return GetFeedback(ctx, db, id)
}

// GetFeedback returns a feedback record by ID.
func GetFeedback(ctx context.Context, db *sql.DB, id int64) (*model.Feedback, error) {
	f := &model.Feedback{}
	var comment sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, swap_id, from_user_id, to_user_id, rating, comment, created_at
		 FROM feedback WHERE id = ?`, id,
	).Scan(&f.ID, &f.SwapID, &f.FromUserID, &f.ToUserID, &f.Rating, &comment, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting feedback: %w", err)
	}
	f.Comment = comment.String
	return f, nil
}

// ListFeedback returns all feedback records, newest first.
func ListFeedback(ctx context.Context, db *sql.DB) ([]model.Feedback, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, swap_id, from_user_id, to_user_id, rating, comment, created_at
		 FROM feedback ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing feedback: %w", err)
	}
	defer rows.Close()

	var feedback []model.Feedback
	for rows.Next() {
		var f model.Feedback
		var comment sql.NullString
		if err := rows.Scan(&f.ID, &f.SwapID, &f.FromUserID, &f.ToUserID, &f.Rating, &comment, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning feedback: %w", err)
		}
		f.Comment = comment.String
		feedback = append(feedback, f)
	}
	return feedback, rows.Err()
}
