package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// BudgetRequest mirrors a row of the budget_requests table.
type BudgetRequest struct {
	RequestID     string          `db:"request_id"`
	OwnerID       string          `db:"owner_id"`
	OwnerName     string          `db:"owner_name"`
	Department    string          `db:"department"`
	Category      string          `db:"category"`
	Title         string          `db:"title"`
	Description   string          `db:"description"`
	Amount        decimal.Decimal `db:"amount"`
	Justification string          `db:"justification"`
	Urgency       string          `db:"urgency"`
	AccountCode   sql.NullString  `db:"account_code"`
	Attachments   []string        `db:"attachments"`
	Status        string          `db:"status"`
	ValidatedBy   sql.NullString  `db:"validated_by"`
	ValidatedAt   sql.NullTime    `db:"validated_at"`
	Version       int64           `db:"version"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// RequestItem mirrors a row of the request_items table.
type RequestItem struct {
	ItemID      string          `db:"item_id"`
	RequestID   string          `db:"request_id"`
	Position    int             `db:"position"`
	Description string          `db:"description"`
	Quantity    int             `db:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	TotalPrice  decimal.Decimal `db:"total_price"`
}

// RequestComment mirrors a row of the request_comments table.
type RequestComment struct {
	CommentID  string    `db:"comment_id"`
	RequestID  string    `db:"request_id"`
	AuthorID   string    `db:"author_id"`
	AuthorName string    `db:"author_name"`
	Content    string    `db:"content"`
	CreatedAt  time.Time `db:"created_at"`
}
