package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rewear-app/rewear/internal/model"
)

const swapColumns = `s.id, s.requester_id, s.item_id, s.owner_id, s.status, s.message,
	s.created_at, s.updated_at, i.title, ru.name, ou.name`

const swapFrom = ` FROM swaps s
	JOIN items i ON i.id = s.item_id
	JOIN users ru ON ru.id = s.requester_id
	JOIN users ou ON ou.id = s.owner_id`

func scanSwap(row interface{ Scan(...any) error }) (*model.Swap, error) {
	s := &model.Swap{}
	var message sql.NullString
	err := row.Scan(&s.ID, &s.RequesterID, &s.ItemID, &s.OwnerID, &s.Status, &message,
		&s.CreatedAt, &s.UpdatedAt, &s.ItemTitle, &s.RequesterName, &s.OwnerName)
	if err != nil {
		return nil, err
	}
	s.Message = message.String
	return s, nil
}

// CreateSwap records a new pending swap request. The owner is the
// item's owner at this moment and is never re-derived.
func CreateSwap(ctx context.Context, db *sql.DB, requesterID, itemID, ownerID int64, message string) (*model.Swap, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO swaps (requester_id, item_id, owner_id, message) VALUES (?, ?, ?, ?)`,
		requesterID, itemID, ownerID, message,
	)
	if err != nil {
		return nil, fmt.Errorf("creating swap: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting swap id: %w", err)
	}

	return GetSwap(ctx, db, id)
}

// GetSwap returns a swap by ID.
func GetSwap(ctx context.Context, db *sql.DB, id int64) (*model.Swap, error) {
	s, err := scanSwap(db.QueryRowContext(ctx,
		`SELECT `+swapColumns+swapFrom+` WHERE s.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting swap: %w", err)
	}
	return s, nil
}

// ListSwaps returns swaps newest first, optionally filtered to one
// participant (requester or owner) and/or a status.
func ListSwaps(ctx context.Context, db *sql.DB, userID int64, status string) ([]model.Swap, error) {
	query := `SELECT ` + swapColumns + swapFrom + ` WHERE 1=1`
	var args []any

	if userID > 0 {
		query += ` AND (s.requester_id = ? OR s.owner_id = ?)`
		args = append(args, userID, userID)
	}
	if status != "" {
		query += ` AND s.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY s.created_at DESC, s.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing swaps: %w", err)
	}
	defer rows.Close()

	var swaps []model.Swap
	for rows.Next() {
		s, err := scanSwap(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning swap: %w", err)
		}
		swaps = append(swaps, *s)
	}
	return swaps, rows.Err()
}

// TransitionSwap sets a swap's status and updates the item's status in
// the same transaction: accepting marks the item pending, completing
// marks it swapped, rejecting or cancelling releases a pending item
// back to available unless another accepted swap still holds it.
// Returns nil if the swap does not exist.
func TransitionSwap(ctx context.Context, db *sql.DB, id int64, newStatus string) (*model.Swap, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var itemID int64
	err = tx.QueryRowContext(ctx, `SELECT item_id FROM swaps WHERE id = ?`, id).Scan(&itemID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up swap: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE swaps SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		newStatus, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating swap status: %w", err)
	}

	switch newStatus {
	case model.SwapStatusAccepted:
		_, err = tx.ExecContext(ctx,
			`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND status = ?`,
			model.ItemStatusPending, itemID, model.ItemStatusAvailable,
		)
	case model.SwapStatusCompleted:
		_, err = tx.ExecContext(ctx,
			`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			model.ItemStatusSwapped, itemID,
		)
	case model.SwapStatusRejected, model.SwapStatusCancelled:
		// Release the item only when no other accepted swap still
		// holds it pending.
		_, err = tx.ExecContext(ctx,
			`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND status = ?
			   AND NOT EXISTS (
			       SELECT 1 FROM swaps
			       WHERE item_id = ? AND status = ? AND id != ?
			   )`,
			model.ItemStatusAvailable, itemID, model.ItemStatusPending,
			itemID, model.SwapStatusAccepted, id,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("updating item status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing swap transition: %w", err)
	}

	return GetSwap(ctx, db, id)
}

// DeleteSwap removes a swap and any feedback attached to it.
func DeleteSwap(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM feedback WHERE swap_id = ?`, id); err != nil {
		return fmt.Errorf("deleting swap feedback: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM swaps WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting swap: %w", err)
	}

	return tx.Commit()
}

// CountSwaps returns the total number of swaps.
func CountSwaps(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM swaps`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting swaps: %w", err)
	}
	return count, nil
}

// CountSwapsForUser counts swaps where the user is either participant.
func CountSwapsForUser(ctx context.Context, db *sql.DB, userID int64) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM swaps WHERE requester_id = ? OR owner_id = ?`,
		userID, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting user swaps: %w", err)
	}
	return count, nil
}

// CountSwapsByStatus returns swap counts grouped by status.
func CountSwapsByStatus(ctx context.Context, db *sql.DB) (map[string]int, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM swaps GROUP BY status`,
	)
	if err != nil {
		return nil, fmt.Errorf("counting swaps by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
