package models

import (
	"database/sql"
	"time"
)

// User mirrors a row of the users table.
type User struct {
	UserID     string         `db:"user_id"`
	Email      string         `db:"email"`
	FirstName  string         `db:"first_name"`
	LastName   string         `db:"last_name"`
	Role       string         `db:"role"`
	Department sql.NullString `db:"department"`
	IsActive   bool           `db:"is_active"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`
}
