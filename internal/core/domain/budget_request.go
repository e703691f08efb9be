package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/budget_request_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Urgency is the requester's assessment of how soon funds are needed.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// IsValid reports whether u is a known urgency level.
func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// RequestItem is one priced line of a budget request.
type RequestItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`   // > 0
	UnitPrice   decimal.Decimal `json:"unitPrice"`  // >= 0
	TotalPrice  decimal.Decimal `json:"totalPrice"` // quantity * unitPrice, kept by the caller
}

// Comment is an append-only audit note on a request.
type Comment struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BudgetRequest is the aggregate root: the request plus its items and comment trail.
type BudgetRequest struct {
	ID            string          `json:"id"`
	OwnerID       string          `json:"ownerId"`
	OwnerName     string          `json:"ownerName"`
	Department    string          `json:"department"`
	Category      string          `json:"category"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Justification string          `json:"justification"`
	Urgency       Urgency         `json:"urgency"`
	AccountCode   *string         `json:"accountCode,omitempty"`
	Attachments   []string        `json:"attachments"`
	Status        RequestStatus   `json:"status"`
	Items         []RequestItem   `json:"items"`
	Comments      []Comment       `json:"comments"` // most recent first
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	ValidatedBy   *string         `json:"validatedBy,omitempty"`
	ValidatedAt   *time.Time      `json:"validatedAt,omitempty"`
	Version       int64           `json:"version"` // optimistic concurrency counter
}

// RequestItemInput is the caller-supplied shape of an item.
// TotalPrice is computed from Quantity and UnitPrice when nil.
type RequestItemInput struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  *decimal.Decimal
}

// NewBudgetRequestInput carries everything needed to create a request.
// Amount is only used when Items is empty.
type NewBudgetRequestInput struct {
	OwnerID       string
	OwnerName     string
	Department    string
	Category      string
	Title         string
	Description   string
	Justification string
	Urgency       Urgency
	AccountCode   *string
	Attachments   []string
	Amount        decimal.Decimal
	Items         []RequestItemInput
	Submit        bool
}

// BudgetRequestPatch holds the fields an edit may replace. Nil means unchanged.
// A non-nil Items replaces the whole collection and recomputes Amount.
type BudgetRequestPatch struct {
	Category      *string
	Title         *string
	Description   *string
	Justification *string
	Urgency       *Urgency
	AccountCode   *string
	Attachments   *[]string
	Amount        *decimal.Decimal
	Items         *[]RequestItemInput
}

// AmountScale is the number of decimal places money columns keep.
const AmountScale = 2

func checkScale(field string, d decimal.Decimal) error {
	if !d.Equal(d.Round(AmountScale)) {
		return fmt.Errorf("%w: %s cannot have more than %d decimal places", apperrors.ErrValidation, field, AmountScale)
	}
	return nil
}

// NewRequestItem validates in and builds an item with a fresh id.
func NewRequestItem(id string, in RequestItemInput) (RequestItem, error) {
	if strings.TrimSpace(in.Description) == "" {
		return RequestItem{}, fmt.Errorf("%w: item description is required", apperrors.ErrValidation)
	}
	if in.Quantity <= 0 {
		return RequestItem{}, fmt.Errorf("%w: item quantity must be positive", apperrors.ErrValidation)
	}
	if in.UnitPrice.IsNegative() {
		return RequestItem{}, fmt.Errorf("%w: item unit price cannot be negative", apperrors.ErrValidation)
	}
	if err := checkScale("item unit price", in.UnitPrice); err != nil {
		return RequestItem{}, err
	}
	total := in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
	if in.TotalPrice != nil {
		if err := checkScale("item total price", *in.TotalPrice); err != nil {
			return RequestItem{}, err
		}
		total = *in.TotalPrice
	}
	return RequestItem{
		ID:          id,
		Description: in.Description,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		TotalPrice:  total,
	}, nil
}

func buildItems(inputs []RequestItemInput, newID IDGenerator) ([]RequestItem, error) {
	items := make([]RequestItem, 0, len(inputs))
	for i, in := range inputs {
		item, err := NewRequestItem(newID(), in)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// SumItems returns the sum of the items' total prices.
func SumItems(items []RequestItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.TotalPrice)
	}
	return sum
}

// NewBudgetRequest validates in and returns a draft (or submitted, when in.Submit is set) request.
func NewBudgetRequest(in NewBudgetRequestInput, newID IDGenerator, now time.Time) (*BudgetRequest, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(in.Department) == "" {
		return nil, fmt.Errorf("%w: department is required", apperrors.ErrValidation)
	}
	urgency := in.Urgency
	if urgency == "" {
		urgency = UrgencyMedium
	}
	if !urgency.IsValid() {
		return nil, fmt.Errorf("%w: unknown urgency %q", apperrors.ErrValidation, in.Urgency)
	}

	items, err := buildItems(in.Items, newID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		if err := checkScale("amount", in.Amount); err != nil {
			return nil, err
		}
	}

	status := StatusDraft
	if in.Submit {
		status = StatusSubmitted
	}
	attachments := in.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	req := &BudgetRequest{
		ID:            newID(),
		OwnerID:       in.OwnerID,
		OwnerName:     in.OwnerName,
		Department:    in.Department,
		Category:      in.Category,
		Title:         in.Title,
		Description:   in.Description,
		Amount:        in.Amount,
		Justification: in.Justification,
		Urgency:       urgency,
		AccountCode:   in.AccountCode,
		Attachments:   attachments,
		Status:        status,
		Items:         items,
		Comments:      []Comment{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	req.RecomputeAmount()
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	}
	return req, nil
}

// IsEditable reports whether the request may still be modified.
func (r *BudgetRequest) IsEditable() bool {
	return r.Status.IsEditable()
}

// CanDelete reports whether the request may be deleted.
func (r *BudgetRequest) CanDelete() bool {
	return r.Status == StatusDraft
}

// IsOwnedBy reports whether userID created the request.
func (r *BudgetRequest) IsOwnedBy(userID string) bool {
	return r.OwnerID != "" && r.OwnerID == userID
}

// Edit applies patch. The request is left unchanged when an error is returned.
func (r *BudgetRequest) Edit(patch BudgetRequestPatch, newID IDGenerator, now time.Time) error {
	if !r.IsEditable() {
		return fmt.Errorf("%w: status is %s", apperrors.ErrNotEditable, r.Status)
	}

	next := *r
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return fmt.Errorf("%w: title is required", apperrors.ErrValidation)
		}
		next.Title = *patch.Title
	}
	if patch.Description != nil {
		if strings.TrimSpace(*patch.Description) == "" {
			return fmt.Errorf("%w: description is required", apperrors.ErrValidation)
		}
		next.Description = *patch.Description
	}
	if patch.Category != nil {
		next.Category = *patch.Category
	}
	if patch.Justification != nil {
		next.Justification = *patch.Justification
	}
	if patch.Urgency != nil {
		if !patch.Urgency.IsValid() {
			return fmt.Errorf("%w: unknown urgency %q", apperrors.ErrValidation, *patch.Urgency)
		}
		next.Urgency = *patch.Urgency
	}
	if patch.AccountCode != nil {
		code := *patch.AccountCode
		next.AccountCode = &code
	}
	if patch.Attachments != nil {
		next.Attachments = append([]string{}, (*patch.Attachments)...)
	}
	if patch.Items != nil {
		items, err := buildItems(*patch.Items, newID)
		if err != nil {
			return err
		}
		next.Items = items
	}
	if patch.Amount != nil && len(next.Items) == 0 {
		if err := checkScale("amount", *patch.Amount); err != nil {
			return err
		}
		next.Amount = *patch.Amount
	}
	next.RecomputeAmount()
	if !next.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	}

	next.UpdatedAt = now
	*r = next
	return nil
}

// RecomputeAmount sets Amount to the sum of the items when there are any.
func (r *BudgetRequest) RecomputeAmount() {
	if len(r.Items) > 0 {
		r.Amount = SumItems(r.Items)
	}
}
