package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rewear-app/rewear/internal/model"
)

const userColumns = `id, name, email, password_hash, points, is_admin, banned,
	avatar_url, bio, location, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	var avatar, bio, location sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Points, &u.IsAdmin, &u.Banned,
		&avatar, &bio, &location, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.AvatarURL = avatar.String
	u.Bio = bio.String
	u.Location = location.String
	return u, nil
}

// CreateUser creates a new user with the given initial points grant.
// The email must already be normalized.
func CreateUser(ctx context.Context, db *sql.DB, name, email, passwordHash string, points int) (*model.User, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, points) VALUES (?, ?, ?, ?)`,
		name, email, passwordHash, points,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns a user by normalized email.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// ListUsers returns all users, oldest first.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// AddPoints adjusts a user's points balance by delta.
func AddPoints(ctx context.Context, db *sql.DB, id int64, delta int) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET points = points + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		delta, id,
	)
	if err != nil {
		return fmt.Errorf("adjusting points: %w", err)
	}
	return nil
}

// SetUserBanned sets a user's ban flag and returns the updated user,
// or nil if the user does not exist.
func SetUserBanned(ctx context.Context, db *sql.DB, id int64, banned bool) (*model.User, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET banned = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		banned, id,
	)
	if err != nil {
		return nil, fmt.Errorf("setting user ban: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, nil
	}
	return GetUser(ctx, db, id)
}

// SetUserAdmin sets a user's admin flag.
func SetUserAdmin(ctx context.Context, db *sql.DB, id int64, admin bool) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET is_admin = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		admin, id,
	)
	if err != nil {
		return fmt.Errorf("setting user admin: %w", err)
	}
	return nil
}

// CountUsers returns the total number of users.
func CountUsers(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}
