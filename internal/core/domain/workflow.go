package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/budget_request_app/internal/apperrors"
	"github.com/google/uuid"
)

// Clock returns the current time.
type Clock func() time.Time

// IDGenerator returns a fresh identifier.
type IDGenerator func() string

// WorkflowEngine applies create, edit, delete and status-transition rules to a request in memory.
// It never persists anything; callers save the mutated aggregate.
type WorkflowEngine struct {
	graph  StatusGraph
	policy RolePolicy
	now    Clock
	newID  IDGenerator
}

// EngineOption customises a WorkflowEngine.
type EngineOption func(*WorkflowEngine)

// WithClock overrides the engine clock.
func WithClock(c Clock) EngineOption {
	return func(e *WorkflowEngine) { e.now = c }
}

// WithIDGenerator overrides the id generator used for new requests, items and comments.
func WithIDGenerator(g IDGenerator) EngineOption {
	return func(e *WorkflowEngine) { e.newID = g }
}

// NewWorkflowEngine builds an engine over graph.
func NewWorkflowEngine(graph StatusGraph, opts ...EngineOption) *WorkflowEngine {
	e := &WorkflowEngine{
		graph:  graph,
		policy: NewRolePolicy(graph),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the status graph the engine validates against.
func (e *WorkflowEngine) Graph() StatusGraph {
	return e.graph
}

// Create builds a new request owned by actor.
func (e *WorkflowEngine) Create(actor Principal, in NewBudgetRequestInput) (*BudgetRequest, error) {
	if err := CanCreate(actor); err != nil {
		return nil, err
	}
	in.OwnerID = actor.UserID
	if in.OwnerName == "" {
		in.OwnerName = actor.DisplayName
	}
	if in.Department == "" {
		in.Department = actor.Department
	}
	return NewBudgetRequest(in, e.newID, e.now())
}

// Edit applies patch on behalf of actor.
func (e *WorkflowEngine) Edit(actor Principal, req *BudgetRequest, patch BudgetRequestPatch) error {
	if err := CanEdit(actor, req); err != nil {
		return err
	}
	return req.Edit(patch, e.newID, e.now())
}

// CheckDelete returns nil when actor may delete req.
func (e *WorkflowEngine) CheckDelete(actor Principal, req *BudgetRequest) error {
	if err := CanEdit(actor, req); err != nil {
		return err
	}
	if !req.CanDelete() {
		return fmt.Errorf("%w: status is %s", apperrors.ErrNotDeletable, req.Status)
	}
	return nil
}

// Transition moves req to target on behalf of actor. On error req is untouched.
// The returned event describes the change for downstream consumers.
func (e *WorkflowEngine) Transition(actor Principal, req *BudgetRequest, target RequestStatus, comment string) (TransitionOccurred, error) {
	from := req.Status
	if !target.IsValid() {
		return TransitionOccurred{}, fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidTransition, target)
	}
	if !e.graph.HasEntry(from) {
		return TransitionOccurred{}, fmt.Errorf("%w: status %s has no configured transitions", apperrors.ErrInvalidTransition, from)
	}
	if !e.graph.CanTransition(from, target) {
		return TransitionOccurred{}, fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, from, target)
	}
	if err := e.policy.Authorize(actor, req, target); err != nil {
		return TransitionOccurred{}, err
	}

	now := e.now()
	req.Status = target
	req.UpdatedAt = now

	if target.RequiresValidatorStamp() {
		validator := actor.UserID
		stampedAt := now
		req.ValidatedBy = &validator
		req.ValidatedAt = &stampedAt
	}

	comment = strings.TrimSpace(comment)
	if comment != "" {
		c := Comment{
			ID:         e.newID(),
			AuthorID:   actor.UserID,
			AuthorName: actor.DisplayName,
			Content:    comment,
			CreatedAt:  now,
		}
		req.Comments = append([]Comment{c}, req.Comments...)
	}

	return TransitionOccurred{
		RequestID:  req.ID,
		Title:      req.Title,
		OwnerID:    req.OwnerID,
		Department: req.Department,
		Amount:     req.Amount,
		FromStatus: from,
		ToStatus:   target,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		Comment:    comment,
		Timestamp:  now,
	}, nil
}
