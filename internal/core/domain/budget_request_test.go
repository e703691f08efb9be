package domain_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/budget_request_app/internal/apperrors"
	"github.com/SscSPs/budget_request_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs(prefix string) domain.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func stringPtr(s string) *string {
	return &s
}

func validInput() domain.NewBudgetRequestInput {
	return domain.NewBudgetRequestInput{
		OwnerID:       "agent-1",
		OwnerName:     "Awa Diallo",
		Department:    "Informatique",
		Category:      "equipment",
		Title:         "Laptops",
		Description:   "Two laptops for the lab",
		Justification: "Old machines are out of warranty",
		Urgency:       domain.UrgencyHigh,
		Items: []domain.RequestItemInput{
			{Description: "Laptop", Quantity: 2, UnitPrice: decimal.RequireFromString("650.50")},
			{Description: "Dock", Quantity: 1, UnitPrice: decimal.RequireFromString("120")},
		},
	}
}

func TestNewBudgetRequest_ComputesAmountFromItems(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	req, err := domain.NewBudgetRequest(validInput(), sequentialIDs("id"), now)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDraft, req.Status)
	assert.True(t, decimal.RequireFromString("1421").Equal(req.Amount), "amount %s", req.Amount)
	assert.True(t, decimal.RequireFromString("1301").Equal(req.Items[0].TotalPrice))
	assert.Len(t, req.Items, 2)
	assert.Equal(t, now, req.CreatedAt)
	assert.Nil(t, req.ValidatedBy)
	assert.Empty(t, req.Comments)
}

func TestNewBudgetRequest_ItemsOverrideDirectAmount(t *testing.T) {
	in := validInput()
	in.Amount = decimal.NewFromInt(5)
	req, err := domain.NewBudgetRequest(in, sequentialIDs("id"), time.Now())
	require.NoError(t, err)
	assert.True(t, domain.SumItems(req.Items).Equal(req.Amount))
}

func TestNewBudgetRequest_DirectAmountWithoutItems(t *testing.T) {
	in := validInput()
	in.Items = nil
	in.Amount = decimal.NewFromInt(300)
	in.Submit = true

	req, err := domain.NewBudgetRequest(in, sequentialIDs("id"), time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, req.Status)
	assert.True(t, decimal.NewFromInt(300).Equal(req.Amount))
	assert.Empty(t, req.Items)
}

func TestNewBudgetRequest_SuppliedTotalPriceIsKept(t *testing.T) {
	in := validInput()
	in.Items = []domain.RequestItemInput{
		{Description: "Licence", Quantity: 3, UnitPrice: decimal.NewFromInt(100), TotalPrice: decimalPtr(decimal.NewFromInt(250))},
	}
	req, err := domain.NewBudgetRequest(in, sequentialIDs("id"), time.Now())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(250).Equal(req.Amount))
}

func TestNewBudgetRequest_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.NewBudgetRequestInput)
	}{
		{"empty title", func(in *domain.NewBudgetRequestInput) { in.Title = "  " }},
		{"empty description", func(in *domain.NewBudgetRequestInput) { in.Description = "" }},
		{"empty department", func(in *domain.NewBudgetRequestInput) { in.Department = "" }},
		{"zero amount without items", func(in *domain.NewBudgetRequestInput) { in.Items = nil; in.Amount = decimal.Zero }},
		{"negative amount", func(in *domain.NewBudgetRequestInput) { in.Items = nil; in.Amount = decimal.NewFromInt(-1) }},
		{"zero quantity", func(in *domain.NewBudgetRequestInput) { in.Items[0].Quantity = 0 }},
		{"negative unit price", func(in *domain.NewBudgetRequestInput) { in.Items[0].UnitPrice = decimal.NewFromInt(-3) }},
		{"unknown urgency", func(in *domain.NewBudgetRequestInput) { in.Urgency = "yesterday" }},
		{"sub-cent amount", func(in *domain.NewBudgetRequestInput) { in.Items = nil; in.Amount = decimal.RequireFromString("0.004") }},
		{"sub-cent unit price", func(in *domain.NewBudgetRequestInput) {
			in.Items[0].UnitPrice = decimal.RequireFromString("0.005")
		}},
		{"sub-cent total price", func(in *domain.NewBudgetRequestInput) {
			in.Items[0].TotalPrice = decimalPtr(decimal.RequireFromString("10.001"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := domain.NewBudgetRequest(in, sequentialIDs("id"), time.Now())
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestBudgetRequest_EditOnlyWhileEditable(t *testing.T) {
	for _, status := range domain.AllStatuses {
		t.Run(string(status), func(t *testing.T) {
			req, err := domain.NewBudgetRequest(validInput(), sequentialIDs("id"), time.Now())
			require.NoError(t, err)
			req.Status = status
			before := *req

			err = req.Edit(domain.BudgetRequestPatch{Title: stringPtr("Renamed")}, sequentialIDs("e"), time.Now())
			if status == domain.StatusDraft || status == domain.StatusSubmitted {
				require.NoError(t, err)
				assert.Equal(t, "Renamed", req.Title)
			} else {
				assert.ErrorIs(t, err, apperrors.ErrNotEditable)
				assert.Equal(t, before.Title, req.Title)
			}
		})
	}
}

func TestBudgetRequest_EditReplacesItemsAndRecomputesAmount(t *testing.T) {
	req, err := domain.NewBudgetRequest(validInput(), sequentialIDs("id"), time.Now())
	require.NoError(t, err)

	items := []domain.RequestItemInput{
		{Description: "Projector", Quantity: 1, UnitPrice: decimal.RequireFromString("899.99")},
	}
	later := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, req.Edit(domain.BudgetRequestPatch{Items: &items}, sequentialIDs("item"), later))

	assert.Len(t, req.Items, 1)
	assert.Equal(t, "item-1", req.Items[0].ID)
	assert.True(t, decimal.RequireFromString("899.99").Equal(req.Amount))
	assert.Equal(t, later, req.UpdatedAt)
}

func TestBudgetRequest_FailedEditLeavesRequestUntouched(t *testing.T) {
	req, err := domain.NewBudgetRequest(validInput(), sequentialIDs("id"), time.Now())
	require.NoError(t, err)
	before := *req

	bad := []domain.RequestItemInput{{Description: "Chair", Quantity: -1, UnitPrice: decimal.NewFromInt(10)}}
	err = req.Edit(domain.BudgetRequestPatch{Title: stringPtr("Changed"), Items: &bad}, sequentialIDs("e"), time.Now())
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, before, *req)
}

func TestBudgetRequest_CanDelete(t *testing.T) {
	for _, status := range domain.AllStatuses {
		req := &domain.BudgetRequest{Status: status}
		assert.Equal(t, status == domain.StatusDraft, req.CanDelete(), string(status))
	}
}

func TestNewBudgetRequest_TwoDecimalPlacesAccepted(t *testing.T) {
	in := validInput()
	in.Items = []domain.RequestItemInput{
		{Description: "Cable", Quantity: 3, UnitPrice: decimal.RequireFromString("0.01")},
		{Description: "Adapter", Quantity: 1, UnitPrice: decimal.RequireFromString("4.5")},
	}
	req, err := domain.NewBudgetRequest(in, sequentialIDs("id"), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "4.53", req.Amount.StringFixed(2))
}

func TestBudgetRequest_EditRejectsSubCentAmounts(t *testing.T) {
	in := validInput()
	in.Items = nil
	in.Amount = decimal.NewFromInt(100)
	req, err := domain.NewBudgetRequest(in, sequentialIDs("id"), time.Now())
	require.NoError(t, err)
	before := *req

	err = req.Edit(domain.BudgetRequestPatch{Amount: decimalPtr(decimal.RequireFromString("12.345"))}, sequentialIDs("e"), time.Now())
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	items := []domain.RequestItemInput{{Description: "Toner", Quantity: 2, UnitPrice: decimal.RequireFromString("0.005")}}
	err = req.Edit(domain.BudgetRequestPatch{Items: &items}, sequentialIDs("e"), time.Now())
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	assert.Equal(t, before, *req)
}

func TestBudgetRequest_RecomputeAmount(t *testing.T) {
	req := &domain.BudgetRequest{Amount: decimal.NewFromInt(7)}
	req.RecomputeAmount()
	assert.True(t, decimal.NewFromInt(7).Equal(req.Amount), "no items keeps the direct amount")

	req.Items = []domain.RequestItem{
		{TotalPrice: decimal.RequireFromString("10.25")},
		{TotalPrice: decimal.RequireFromString("4.75")},
	}
	req.RecomputeAmount()
	assert.True(t, decimal.NewFromInt(15).Equal(req.Amount))
}
