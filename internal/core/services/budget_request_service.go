package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/budget_request_app/internal/apperrors"
	"github.com/SscSPs/budget_request_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_request_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_request_app/internal/core/ports/services"
	"github.com/SscSPs/budget_request_app/internal/dto"
)

const (
	defaultPageSize      = 10
	defaultMaxPageSize   = 100
	defaultMaxExportRows = 5000
)

// budgetRequestService implements portssvc.BudgetRequestSvcFacade.
// Every write follows load -> engine -> version-guarded save -> publish.
type budgetRequestService struct {
	BaseService
	repo      portsrepo.BudgetRequestRepositoryFacade
	engine    *domain.WorkflowEngine
	publisher portssvc.TransitionPublisher

	pageSize      int
	maxPageSize   int
	maxExportRows int
}

// BudgetRequestOption configures the budget request service
type BudgetRequestOption func(*budgetRequestService)

// WithWorkflowEngine replaces the engine built over the default status graph.
func WithWorkflowEngine(e *domain.WorkflowEngine) BudgetRequestOption {
	return func(s *budgetRequestService) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithTransitionPublisher sets where transition events go after a successful save.
func WithTransitionPublisher(p portssvc.TransitionPublisher) BudgetRequestOption {
	return func(s *budgetRequestService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithPaging sets the default and maximum page sizes for listings.
func WithPaging(pageSize, maxPageSize int) BudgetRequestOption {
	return func(s *budgetRequestService) {
		if pageSize > 0 {
			s.pageSize = pageSize
		}
		if maxPageSize > 0 {
			s.maxPageSize = maxPageSize
		}
	}
}

// WithMaxExportRows caps the number of rows an export returns.
func WithMaxExportRows(n int) BudgetRequestOption {
	return func(s *budgetRequestService) {
		if n > 0 {
			s.maxExportRows = n
		}
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.TransitionOccurred) {}

// NewBudgetRequestService creates a budget request service over repo.
func NewBudgetRequestService(repo portsrepo.BudgetRequestRepositoryFacade, options ...BudgetRequestOption) portssvc.BudgetRequestSvcFacade {
	svc := &budgetRequestService{
		repo:          repo,
		engine:        domain.NewWorkflowEngine(domain.DefaultStatusGraph()),
		publisher:     noopPublisher{},
		pageSize:      defaultPageSize,
		maxPageSize:   defaultMaxPageSize,
		maxExportRows: defaultMaxExportRows,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.BudgetRequestSvcFacade = (*budgetRequestService)(nil)

// logRefusal logs expected refusals at warn level and infrastructure failures at error level.
func (s *budgetRequestService) logRefusal(ctx context.Context, err error, msg string, keyvals ...any) {
	if apperrors.HTTPStatus(err) >= 500 {
		s.LogError(ctx, err, msg, keyvals...)
		return
	}
	s.LogWarn(ctx, err, msg, keyvals...)
}

func (s *budgetRequestService) load(ctx context.Context, requestID string) (*domain.BudgetRequest, error) {
	req, err := s.repo.FindBudgetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: budget request %s", apperrors.ErrNotFound, requestID)
		}
		s.LogError(ctx, err, "Failed to load budget request", slog.String("request_id", requestID))
		return nil, fmt.Errorf("loading budget request %s: %w", requestID, err)
	}
	return req, nil
}

func (s *budgetRequestService) GetBudgetRequest(ctx context.Context, actor domain.Principal, requestID string) (*domain.BudgetRequest, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := domain.CanView(actor, req); err != nil {
		s.LogWarn(ctx, err, "Budget request read refused", slog.String("request_id", requestID))
		return nil, err
	}
	return req, nil
}

func (s *budgetRequestService) ListBudgetRequests(ctx context.Context, actor domain.Principal, params dto.ListBudgetRequestsParams) (domain.Page[domain.BudgetRequest], error) {
	filter, err := params.ToFilter()
	if err != nil {
		return domain.Page[domain.BudgetRequest]{}, err
	}
	pr := domain.NormalizePage(params.Page, params.Limit, s.pageSize, s.maxPageSize)

	page, err := s.repo.QueryBudgetRequests(ctx, domain.ScopedQuery(actor, filter), pr)
	if err != nil {
		s.LogError(ctx, err, "Failed to list budget requests")
		return domain.Page[domain.BudgetRequest]{}, fmt.Errorf("listing budget requests: %w", err)
	}
	s.LogDebug(ctx, "Listed budget requests", slog.Int("total", page.Total), slog.Int("page", page.Page))
	return page, nil
}

func (s *budgetRequestService) ExportBudgetRequests(ctx context.Context, actor domain.Principal, params dto.ListBudgetRequestsParams) ([]domain.BudgetRequest, error) {
	filter, err := params.ToFilter()
	if err != nil {
		return nil, err
	}
	pr := domain.PageRequest{Page: 1, PageSize: s.maxExportRows}

	page, err := s.repo.QueryBudgetRequests(ctx, domain.ScopedQuery(actor, filter), pr)
	if err != nil {
		s.LogError(ctx, err, "Failed to query budget requests for export")
		return nil, fmt.Errorf("exporting budget requests: %w", err)
	}
	if page.Total > len(page.Items) {
		s.GetLogger(ctx).Warn("Export truncated", slog.Int("total", page.Total), slog.Int("exported", len(page.Items)))
	}
	return page.Items, nil
}

func (s *budgetRequestService) GetStats(ctx context.Context, actor domain.Principal) (domain.RequestStats, error) {
	stats, err := s.repo.AggregateStats(ctx, domain.StatsScopePredicate(actor))
	if err != nil {
		s.LogError(ctx, err, "Failed to compute budget request stats")
		return domain.RequestStats{}, fmt.Errorf("computing stats: %w", err)
	}
	return stats, nil
}

func (s *budgetRequestService) ListStatuses(_ context.Context) []dto.StatusInfoResponse {
	return dto.ToStatusInfoResponses(s.engine.Graph())
}

func (s *budgetRequestService) CreateBudgetRequest(ctx context.Context, actor domain.Principal, in dto.CreateBudgetRequestRequest) (*domain.BudgetRequest, error) {
	if err := dto.Validate(in); err != nil {
		s.LogWarn(ctx, err, "Invalid budget request payload")
		return nil, err
	}

	req, err := s.engine.Create(actor, in.ToInput())
	if err != nil {
		s.LogWarn(ctx, err, "Budget request creation refused")
		return nil, err
	}

	if err := s.repo.SaveBudgetRequest(ctx, *req); err != nil {
		s.LogError(ctx, err, "Failed to save budget request", slog.String("request_id", req.ID))
		return nil, fmt.Errorf("saving budget request: %w", err)
	}

	s.LogInfo(ctx, "Budget request created",
		slog.String("request_id", req.ID),
		slog.String("status", string(req.Status)),
		slog.String("amount", req.Amount.StringFixed(2)),
	)
	return req, nil
}

func (s *budgetRequestService) UpdateBudgetRequest(ctx context.Context, actor domain.Principal, requestID string, in dto.UpdateBudgetRequestRequest) (*domain.BudgetRequest, error) {
	if err := dto.Validate(in); err != nil {
		s.LogWarn(ctx, err, "Invalid budget request patch", slog.String("request_id", requestID))
		return nil, err
	}

	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	loaded := req.Version

	patch := in.ToPatch()
	if err := s.engine.Edit(actor, req, patch); err != nil {
		s.LogWarn(ctx, err, "Budget request edit refused", slog.String("request_id", requestID), slog.String("status", string(req.Status)))
		return nil, err
	}

	upd := portsrepo.BudgetRequestUpdate{
		Request:         *req,
		ExpectedVersion: loaded,
		ReplaceItems:    patch.Items != nil,
	}
	if err := s.repo.UpdateBudgetRequest(ctx, upd); err != nil {
		s.logRefusal(ctx, err, "Failed to save budget request edit", slog.String("request_id", requestID))
		return nil, err
	}
	req.Version = loaded + 1

	s.LogInfo(ctx, "Budget request updated", slog.String("request_id", requestID))
	return req, nil
}

func (s *budgetRequestService) DeleteBudgetRequest(ctx context.Context, actor domain.Principal, requestID string) error {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return err
	}
	if err := s.engine.CheckDelete(actor, req); err != nil {
		s.LogWarn(ctx, err, "Budget request deletion refused", slog.String("request_id", requestID), slog.String("status", string(req.Status)))
		return err
	}
	if err := s.repo.DeleteBudgetRequest(ctx, requestID, req.Version); err != nil {
		s.logRefusal(ctx, err, "Failed to delete budget request", slog.String("request_id", requestID))
		return err
	}
	s.LogInfo(ctx, "Budget request deleted", slog.String("request_id", requestID))
	return nil
}

func (s *budgetRequestService) TransitionStatus(ctx context.Context, actor domain.Principal, requestID string, in dto.UpdateStatusRequest) (*domain.BudgetRequest, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	loaded := req.Version

	ev, err := s.engine.Transition(actor, req, in.Status, in.Comment)
	if err != nil {
		s.LogWarn(ctx, err, "Status transition refused",
			slog.String("request_id", requestID),
			slog.String("from", string(req.Status)),
			slog.String("to", string(in.Status)),
		)
		return nil, err
	}

	upd := portsrepo.BudgetRequestUpdate{Request: *req, ExpectedVersion: loaded}
	if ev.Comment != "" {
		// The engine prepends the new comment.
		upd.NewComments = []domain.Comment{req.Comments[0]}
	}
	if err := s.repo.UpdateBudgetRequest(ctx, upd); err != nil {
		s.logRefusal(ctx, err, "Failed to persist status transition", slog.String("request_id", requestID))
		return nil, err
	}
	req.Version = loaded + 1

	s.LogInfo(ctx, "Budget request status changed",
		slog.String("request_id", requestID),
		slog.String("from", string(ev.FromStatus)),
		slog.String("to", string(ev.ToStatus)),
	)
	s.publisher.Publish(ctx, ev)
	return req, nil
}
