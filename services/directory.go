package services

import (
	"context"
	"database/sql"
	"fmt"
)

// Directory answers the membership and admin questions that gate writes.
// The aggregator and simplifier never consult it; they operate on already
// authorized group ids.
type Directory interface {
	// IsMember reports whether the user belongs to the group (any role).
	IsMember(ctx context.Context, userID, groupID string) (bool, error)

	// IsAdmin reports whether the user is a site-wide administrator.
	IsAdmin(ctx context.Context, userID string) (bool, error)

	// MemberEmails returns the notification addresses of a group's members.
	MemberEmails(ctx context.Context, groupID string) ([]string, error)

	// GroupName returns the display name of a group, "" when unknown.
	GroupName(ctx context.Context, groupID string) (string, error)
}

// SQLDirectory reads the directory tables maintained by the external user
// and group management system.
type SQLDirectory struct {
	db *sql.DB
}

var _ Directory = (*SQLDirectory)(nil)

func NewSQLDirectory(db *sql.DB) *SQLDirectory {
	return &SQLDirectory{db: db}
}

func (d *SQLDirectory) IsMember(ctx context.Context, userID, groupID string) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM group_members
			WHERE group_id = $1 AND user_id = $2
		)
	`, groupID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return exists, nil
}

func (d *SQLDirectory) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var isAdmin bool
	err := d.db.QueryRowContext(ctx, `
		SELECT COALESCE(site_admin, FALSE) FROM users WHERE id = $1
	`, userID).Scan(&isAdmin)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return isAdmin, nil
}

func (d *SQLDirectory) MemberEmails(ctx context.Context, groupID string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT u.email
		FROM group_members gm
		INNER JOIN users u ON gm.user_id = u.id
		WHERE gm.group_id = $1
		ORDER BY u.email
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list member emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan member email: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

func (d *SQLDirectory) GroupName(ctx context.Context, groupID string) (string, error) {
	var name string
	err := d.db.QueryRowContext(ctx, `SELECT name FROM groups WHERE id = $1`, groupID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get group name: %w", err)
	}
	return name, nil
}
