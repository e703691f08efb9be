package services

import (
	"context"

	"github.com/SscSPs/budget_request_app/internal/core/domain"
	"github.com/SscSPs/budget_request_app/internal/dto"
)

// BudgetRequestReaderSvc defines read operations for budget requests
type BudgetRequestReaderSvc interface {
	// GetBudgetRequest returns one request if actor may see it.
	GetBudgetRequest(ctx context.Context, actor domain.Principal, requestID string) (*domain.BudgetRequest, error)

	// ListBudgetRequests returns the page of requests visible to actor that match params.
	ListBudgetRequests(ctx context.Context, actor domain.Principal, params dto.ListBudgetRequestsParams) (domain.Page[domain.BudgetRequest], error)

	// ExportBudgetRequests returns every visible request matching params, up to the export cap.
	ExportBudgetRequests(ctx context.Context, actor domain.Principal, params dto.ListBudgetRequestsParams) ([]domain.BudgetRequest, error)

	// GetStats returns dashboard figures over actor's scope.
	GetStats(ctx context.Context, actor domain.Principal) (domain.RequestStats, error)

	// ListStatuses describes every status and its legal successors.
	ListStatuses(ctx context.Context) []dto.StatusInfoResponse
}

// BudgetRequestWriterSvc defines write operations for budget requests
type BudgetRequestWriterSvc interface {
	// CreateBudgetRequest opens a new request owned by actor.
	CreateBudgetRequest(ctx context.Context, actor domain.Principal, req dto.CreateBudgetRequestRequest) (*domain.BudgetRequest, error)

	// UpdateBudgetRequest edits an editable request.
	UpdateBudgetRequest(ctx context.Context, actor domain.Principal, requestID string, req dto.UpdateBudgetRequestRequest) (*domain.BudgetRequest, error)

	// DeleteBudgetRequest removes a draft request.
	DeleteBudgetRequest(ctx context.Context, actor domain.Principal, requestID string) error
}

// BudgetRequestWorkflowSvc drives status transitions
type BudgetRequestWorkflowSvc interface {
	// TransitionStatus moves a request along the approval chain.
	TransitionStatus(ctx context.Context, actor domain.Principal, requestID string, req dto.UpdateStatusRequest) (*domain.BudgetRequest, error)
}

// BudgetRequestSvcFacade combines all budget-request service interfaces
type BudgetRequestSvcFacade interface {
	BudgetRequestReaderSvc
	BudgetRequestWriterSvc
	BudgetRequestWorkflowSvc
}

// TransitionPublisher receives transition events after they are persisted.
// Implementations must not block the caller.
type TransitionPublisher interface {
	Publish(ctx context.Context, ev domain.TransitionOccurred)
}
