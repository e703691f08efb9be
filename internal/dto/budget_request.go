package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/budget_request_app/internal/apperrors"
	"github.com/SscSPs/budget_request_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RequestItemRequest is one item line in a create/update payload.
type RequestItemRequest struct {
	Description string           `json:"description" binding:"required,max=500"`
	Quantity    int              `json:"quantity" binding:"required,gt=0"`
	UnitPrice   decimal.Decimal  `json:"unitPrice"`
	TotalPrice  *decimal.Decimal `json:"totalPrice"` // Optional, computed when absent
}

// CreateBudgetRequestRequest defines the data needed to open a budget request.
// Department defaults to the caller's department. Amount is ignored when items are given.
type CreateBudgetRequestRequest struct {
	Title         string               `json:"title" binding:"required,max=200"`
	Description   string               `json:"description" binding:"required"`
	Department    string               `json:"department" binding:"max=100"`
	Category      string               `json:"category" binding:"max=100"`
	Justification string               `json:"justification"`
	Urgency       domain.Urgency       `json:"urgency" binding:"omitempty,urgency"`
	AccountCode   *string              `json:"accountCode" binding:"omitempty,max=50"`
	Attachments   []string             `json:"attachments" binding:"omitempty,dive,required"`
	Amount        decimal.Decimal      `json:"amount"`
	Items         []RequestItemRequest `json:"items" binding:"omitempty,dive"`
	Submit        bool                 `json:"submit"` // Create directly in submitted state
}

// UpdateBudgetRequestRequest defines the fields an owner may change while the request is editable.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateBudgetRequestRequest struct {
	Title         *string               `json:"title" binding:"omitempty,max=200"`
	Description   *string               `json:"description"`
	Category      *string               `json:"category" binding:"omitempty,max=100"`
	Justification *string               `json:"justification"`
	Urgency       *domain.Urgency       `json:"urgency" binding:"omitempty,urgency"`
	AccountCode   *string               `json:"accountCode" binding:"omitempty,max=50"`
	Attachments   *[]string             `json:"attachments"`
	Amount        *decimal.Decimal      `json:"amount"`
	Items         *[]RequestItemRequest `json:"items"`
}

// UpdateStatusRequest asks for a status transition.
type UpdateStatusRequest struct {
	Status  domain.RequestStatus `json:"status" binding:"required,request_status"`
	Comment string               `json:"comment" binding:"max=2000"`
}

// ListBudgetRequestsParams defines query parameters for listing and exporting requests.
type ListBudgetRequestsParams struct {
	Page       int    `form:"page,default=1" binding:"min=0"`
	Limit      int    `form:"limit,default=10" binding:"min=0"`
	Status     string `form:"status" binding:"omitempty,request_status"`
	Department string `form:"department"`
	AgentID    string `form:"agentId"`
	Urgency    string `form:"urgency" binding:"omitempty,urgency"`
	Category   string `form:"category"`
	AmountMin  string `form:"amountMin"`
	AmountMax  string `form:"amountMax"`
	DateFrom   string `form:"dateFrom"` // RFC3339 or YYYY-MM-DD
	DateTo     string `form:"dateTo"`   // RFC3339 or YYYY-MM-DD, a bare date covers the whole day
}

func toItemInputs(items []RequestItemRequest) []domain.RequestItemInput {
	out := make([]domain.RequestItemInput, len(items))
	for i, it := range items {
		out[i] = domain.RequestItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
		}
	}
	return out
}

// ToInput converts the payload into the aggregate constructor input. Ownership is set by the engine.
func (r CreateBudgetRequestRequest) ToInput() domain.NewBudgetRequestInput {
	return domain.NewBudgetRequestInput{
		Department:    strings.TrimSpace(r.Department),
		Category:      r.Category,
		Title:         r.Title,
		Description:   r.Description,
		Justification: r.Justification,
		Urgency:       r.Urgency,
		AccountCode:   r.AccountCode,
		Attachments:   r.Attachments,
		Amount:        r.Amount,
		Items:         toItemInputs(r.Items),
		Submit:        r.Submit,
	}
}

// ToPatch converts the payload into an aggregate patch; absent fields stay nil.
func (r UpdateBudgetRequestRequest) ToPatch() domain.BudgetRequestPatch {
	patch := domain.BudgetRequestPatch{
		Category:      r.Category,
		Title:         r.Title,
		Description:   r.Description,
		Justification: r.Justification,
		Urgency:       r.Urgency,
		AccountCode:   r.AccountCode,
		Attachments:   r.Attachments,
		Amount:        r.Amount,
	}
	if r.Items != nil {
		items := toItemInputs(*r.Items)
		patch.Items = &items
	}
	return patch
}

func parseAmount(name, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a number", apperrors.ErrValidation, name)
	}
	return &d, nil
}

func parseDate(name, raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be RFC3339 or YYYY-MM-DD", apperrors.ErrValidation, name)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// ToFilter converts the query parameters into a domain filter.
func (p ListBudgetRequestsParams) ToFilter() (domain.ListFilter, error) {
	f := domain.ListFilter{
		Status:     domain.RequestStatus(p.Status),
		Department: strings.TrimSpace(p.Department),
		OwnerID:    p.AgentID,
		Urgency:    domain.Urgency(p.Urgency),
		Category:   p.Category,
	}
	var err error
	if f.AmountMin, err = parseAmount("amountMin", p.AmountMin); err != nil {
		return domain.ListFilter{}, err
	}
	if f.AmountMax, err = parseAmount("amountMax", p.AmountMax); err != nil {
		return domain.ListFilter{}, err
	}
	if f.DateFrom, err = parseDate("dateFrom", p.DateFrom, false); err != nil {
		return domain.ListFilter{}, err
	}
	if f.DateTo, err = parseDate("dateTo", p.DateTo, true); err != nil {
		return domain.ListFilter{}, err
	}
	return f, nil
}

// RequestItemResponse defines the data returned for an item.
type RequestItemResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// CommentResponse defines the data returned for a comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// BudgetRequestResponse defines the data returned for a budget request.
type BudgetRequestResponse struct {
	ID            string                `json:"id"`
	AgentID       string                `json:"agentId"`
	AgentName     string                `json:"agentName"`
	Department    string                `json:"department"`
	Category      string                `json:"category"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Amount        decimal.Decimal       `json:"amount"`
	Justification string                `json:"justification"`
	Urgency       domain.Urgency        `json:"urgency"`
	AccountCode   *string               `json:"accountCode,omitempty"`
	Attachments   []string              `json:"attachments"`
	Status        domain.RequestStatus  `json:"status"`
	StatusLabel   string                `json:"statusLabel"`
	Items         []RequestItemResponse `json:"items"`
	Comments      []CommentResponse     `json:"comments"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
	ValidatedBy   *string               `json:"validatedBy,omitempty"`
	ValidatedAt   *time.Time            `json:"validatedAt,omitempty"`
	Version       int64                 `json:"version"`
}

// ToBudgetRequestResponse converts a domain.BudgetRequest to its DTO.
func ToBudgetRequestResponse(r *domain.BudgetRequest) BudgetRequestResponse {
	items := make([]RequestItemResponse, len(r.Items))
	for i, item := range r.Items {
		items[i] = RequestItemResponse{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		}
	}
	comments := make([]CommentResponse, len(r.Comments))
	for i, c := range r.Comments {
		comments[i] = CommentResponse{
			ID:        c.ID,
			UserID:    c.AuthorID,
			UserName:  c.AuthorName,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		}
	}
	attachments := r.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return BudgetRequestResponse{
		ID:            r.ID,
		AgentID:       r.OwnerID,
		AgentName:     r.OwnerName,
		Department:    r.Department,
		Category:      r.Category,
		Title:         r.Title,
		Description:   r.Description,
		Amount:        r.Amount,
		Justification: r.Justification,
		Urgency:       r.Urgency,
		AccountCode:   r.AccountCode,
		Attachments:   attachments,
		Status:        r.Status,
		StatusLabel:   r.Status.Label(),
		Items:         items,
		Comments:      comments,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		ValidatedBy:   r.ValidatedBy,
		ValidatedAt:   r.ValidatedAt,
		Version:       r.Version,
	}
}

// PaginationResponse carries offset pagination metadata.
type PaginationResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ListBudgetRequestsResponse wraps one page of requests.
type ListBudgetRequestsResponse struct {
	Data       []BudgetRequestResponse `json:"data"`
	Pagination PaginationResponse      `json:"pagination"`
}

// ToListBudgetRequestsResponse converts a domain page to its DTO.
func ToListBudgetRequestsResponse(page domain.Page[domain.BudgetRequest]) ListBudgetRequestsResponse {
	data := make([]BudgetRequestResponse, len(page.Items))
	for i := range page.Items {
		data[i] = ToBudgetRequestResponse(&page.Items[i])
	}
	return ListBudgetRequestsResponse{
		Data: data,
		Pagination: PaginationResponse{
			Page:       page.Page,
			Limit:      page.PageSize,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	}
}

// StatusInfoResponse describes one status for display and navigation.
type StatusInfoResponse struct {
	Value        domain.RequestStatus   `json:"value"`
	Label        string                 `json:"label"`
	NextStatuses []domain.RequestStatus       `json:"nextStatuses"`
	Transitions  []StatusTransitionResponse `json:"transitions"`
	Terminal     bool                       `json:"terminal"`
}

// StatusTransitionResponse is one legal successor and the roles that may take the edge.
// Admin appears on every edge.
type StatusTransitionResponse struct {
	To    domain.RequestStatus `json:"to"`
	Label string               `json:"label"`
	Roles []domain.Role        `json:"roles"`
}

// ToStatusInfoResponses lists every status with its legal successors in graph.
func ToStatusInfoResponses(graph domain.StatusGraph) []StatusInfoResponse {
	out := make([]StatusInfoResponse, len(domain.AllStatuses))
	for i, s := range domain.AllStatuses {
		next := graph.LegalNextStates(s)
		transitions := make([]StatusTransitionResponse, len(next))
		for j, to := range next {
			transitions[j] = StatusTransitionResponse{
				To:    to,
				Label: to.Label(),
				Roles: append(graph.AllowedRoles(s, to), domain.RoleAdmin),
			}
		}
		out[i] = StatusInfoResponse{
			Value:        s,
			Label:        s.Label(),
			NextStatuses: next,
			Transitions:  transitions,
			Terminal:     graph.IsTerminal(s),
		}
	}
	return out
}
