package repositories

import (
	"context"

	"github.com/SscSPs/budget_request_app/internal/core/domain"
)

// BudgetRequestUpdate describes a write-back of an aggregate loaded at ExpectedVersion.
type BudgetRequestUpdate struct {
	Request         domain.BudgetRequest
	ExpectedVersion int64
	// ReplaceItems rewrites the item rows from Request.Items.
	ReplaceItems bool
	// NewComments are inserted alongside the row update.
	NewComments []domain.Comment
}

// BudgetRequestReader defines read operations for budget requests
type BudgetRequestReader interface {
	// FindBudgetRequestByID loads the aggregate with its items and comments (most recent first).
	// It returns apperrors.ErrNotFound when no row exists.
	FindBudgetRequestByID(ctx context.Context, requestID string) (*domain.BudgetRequest, error)

	// QueryBudgetRequests returns one page of requests matching pred, newest first.
	QueryBudgetRequests(ctx context.Context, pred domain.Predicate, page domain.PageRequest) (domain.Page[domain.BudgetRequest], error)

	// AggregateStats computes dashboard figures over the requests matching pred.
	AggregateStats(ctx context.Context, pred domain.Predicate) (domain.RequestStats, error)
}

// BudgetRequestWriter defines write operations for budget requests
type BudgetRequestWriter interface {
	// SaveBudgetRequest persists a new aggregate with its items.
	SaveBudgetRequest(ctx context.Context, req domain.BudgetRequest) error

	// UpdateBudgetRequest writes the aggregate back if its stored version still equals
	// upd.ExpectedVersion, bumping it by one. A mismatch yields apperrors.ErrConflict.
	UpdateBudgetRequest(ctx context.Context, upd BudgetRequestUpdate) error

	// DeleteBudgetRequest removes the request guarded by its version; items and comments cascade.
	DeleteBudgetRequest(ctx context.Context, requestID string, expectedVersion int64) error
}

// BudgetRequestRepositoryFacade combines all budget-request repository interfaces
type BudgetRequestRepositoryFacade interface {
	BudgetRequestReader
	BudgetRequestWriter
}

// BudgetRequestRepositoryWithTx extends BudgetRequestRepositoryFacade with transaction capabilities
type BudgetRequestRepositoryWithTx interface {
	BudgetRequestRepositoryFacade
	TransactionManager
}
