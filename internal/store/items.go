package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rewear-app/rewear/internal/model"
)

// sortableItemColumns whitelists the fields a caller may sort by.
var sortableItemColumns = map[string]string{
	"created_at":      "i.created_at",
	"updated_at":      "i.updated_at",
	"title":           "i.title",
	"category":        "i.category",
	"size":            "i.size",
	"condition":       "i.condition",
	"status":          "i.status",
	"points_required": "i.points_required",
}

// ItemFilter describes the predicate, ordering, and pagination for
// listing items. Zero values mean "no constraint".
type ItemFilter struct {
	Category  string
	Size      string
	Condition string
	Status    string
	Search    string
	SortBy    string
	SortOrder string // "asc" or "desc"
	Page      int
	Limit     int
}

const itemColumns = `i.id, i.user_id, i.title, i.description, i.size, i.condition,
	i.image_urls, i.category, i.tags, i.status, i.points_required, i.approved,
	i.created_at, i.updated_at, u.name, u.avatar_url`

const itemFrom = ` FROM items i JOIN users u ON u.id = i.user_id`

func scanItem(row interface{ Scan(...any) error }) (*model.Item, error) {
	item := &model.Item{}
	var description, size, category, ownerAvatar sql.NullString
	var imageURLs, tags string
	err := row.Scan(&item.ID, &item.UserID, &item.Title, &description, &size, &item.Condition,
		&imageURLs, &category, &tags, &item.Status, &item.PointsRequired, &item.Approved,
		&item.CreatedAt, &item.UpdatedAt, &item.OwnerName, &ownerAvatar)
	if err != nil {
		return nil, err
	}
	item.Description = description.String
	item.Size = size.String
	item.Category = category.String
	item.OwnerAvatarURL = ownerAvatar.String
	item.ImageURLs = decodeStrings(imageURLs)
	item.Tags = decodeStrings(tags)
	return item, nil
}

// encodeStrings serializes a string list for storage. Nil encodes as
// an empty list so responses never carry null for list fields.
func encodeStrings(list []string) string {
	if list == nil {
		list = []string{}
	}
	data, _ := json.Marshal(list)
	return string(data)
}

// escapeLike escapes LIKE metacharacters so a search term matches as a
// plain substring.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func decodeStrings(data string) []string {
	var list []string
	if err := json.Unmarshal([]byte(data), &list); err != nil || list == nil {
		return []string{}
	}
	return list
}

// CreateItem inserts an item and credits the owner's upload reward in
// a single transaction, so a listed item and its reward cannot diverge.
func CreateItem(ctx context.Context, db *sql.DB, item *model.Item, reward int) (*model.Item, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO items (user_id, title, description, size, condition, image_urls, category, tags, status, points_required)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.UserID, item.Title, item.Description, item.Size, item.Condition,
		encodeStrings(item.ImageURLs), item.Category, encodeStrings(item.Tags),
		model.ItemStatusAvailable, item.PointsRequired,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	if reward != 0 {
		_, err = tx.ExecContext(ctx,
			`UPDATE users SET points = points + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			reward, item.UserID,
		)
		if err != nil {
			return nil, fmt.Errorf("crediting upload reward: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item creation: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID with owner info joined.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+itemFrom+` WHERE i.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns a page of items matching the filter plus the total
// match count. Search matches title, description, or tags
// case-insensitively. Default order is newest first.
func ListItems(ctx context.Context, db *sql.DB, f ItemFilter) ([]model.Item, int, error) {
	where := ` WHERE 1=1`
	var args []any

	if f.Category != "" {
		where += ` AND i.category = ?`
		args = append(args, f.Category)
	}
	if f.Size != "" {
		where += ` AND i.size = ?`
		args = append(args, f.Size)
	}
	if f.Condition != "" {
		where += ` AND i.condition = ?`
		args = append(args, f.Condition)
	}
	if f.Status != "" {
		where += ` AND i.status = ?`
		args = append(args, f.Status)
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		where += ` AND (LOWER(i.title) LIKE ? ESCAPE '\' OR LOWER(i.description) LIKE ? ESCAPE '\' OR LOWER(i.tags) LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern, pattern)
	}

	var total int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*)`+itemFrom+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting items: %w", err)
	}

	// Ordering: only whitelisted columns, newest first by default.
	// Ties break on id so pagination is stable.
	column, ok := sortableItemColumns[f.SortBy]
	direction := "ASC"
	if !ok {
		column = "i.created_at"
		direction = "DESC"
	} else if f.SortOrder == "desc" {
		direction = "DESC"
	}
	orderBy := fmt.Sprintf(` ORDER BY %s %s, i.id %s`, column, direction, direction)

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	query := `SELECT ` + itemColumns + itemFrom + where + orderBy + ` LIMIT ? OFFSET ?`
	args = append(args, limit, (page-1)*limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, total, rows.Err()
}

// ListAllItems returns every item regardless of status, newest first.
func ListAllItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+itemFrom+` ORDER BY i.created_at DESC, i.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing all items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ListItemsByUser returns a user's items, newest first. When
// availableOnly is set, only available items are returned.
func ListItemsByUser(ctx context.Context, db *sql.DB, userID int64, availableOnly bool) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + itemFrom + ` WHERE i.user_id = ?`
	args := []any{userID}
	if availableOnly {
		query += ` AND i.status = ?`
		args = append(args, model.ItemStatusAvailable)
	}
	query += ` ORDER BY i.created_at DESC, i.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing user items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem writes an item's mutable fields. Ownership, status, and
// approval are deliberately not written here.
func UpdateItem(ctx context.Context, db *sql.DB, item *model.Item) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET title = ?, description = ?, size = ?, condition = ?,
		 image_urls = ?, category = ?, tags = ?, points_required = ?,
		 updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		item.Title, item.Description, item.Size, item.Condition,
		encodeStrings(item.ImageURLs), item.Category, encodeStrings(item.Tags),
		item.PointsRequired, item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// DeleteItem removes an item permanently, along with any swaps (and
// their feedback) that reference it.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM feedback WHERE swap_id IN (SELECT id FROM swaps WHERE item_id = ?)`, id,
	); err != nil {
		return fmt.Errorf("deleting item swap feedback: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM swaps WHERE item_id = ?`, id); err != nil {
		return fmt.Errorf("deleting item swaps: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	return tx.Commit()
}

// SetItemApproved sets an item's approval flag and returns the updated
// item, or nil if the item does not exist.
func SetItemApproved(ctx context.Context, db *sql.DB, id int64, approved bool) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET approved = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		approved, id,
	)
	if err != nil {
		return nil, fmt.Errorf("setting item approval: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, nil
	}
	return GetItem(ctx, db, id)
}

// CountItems returns the total number of items.
func CountItems(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return count, nil
}

// CountItemsForUser returns how many items a user has listed.
func CountItemsForUser(ctx context.Context, db *sql.DB, userID int64) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE user_id = ?`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting user items: %w", err)
	}
	return count, nil
}

// CountItemsByCategory returns item counts grouped by category.
// Uncategorized items are grouped under the empty string.
func CountItemsByCategory(ctx context.Context, db *sql.DB) (map[string]int, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT COALESCE(category, ''), COUNT(*) FROM items GROUP BY category`,
	)
	if err != nil {
		return nil, fmt.Errorf("counting items by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("scanning category count: %w", err)
		}
		counts[category] = count
	}
	return counts, rows.Err()
}
