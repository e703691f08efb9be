package mapping_test

import (
	"testing"
	"time"

	"github.com/SscSPs/budget_request_app/internal/core/domain"
	"github.com/SscSPs/budget_request_app/internal/utils/mapping"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetRequestMapping_NullableFields(t *testing.T) {
	validator := "chef-1"
	stamped := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	d := domain.BudgetRequest{
		ID:          "req-1",
		Status:      domain.StatusChefApproved,
		Amount:      decimal.NewFromInt(10),
		ValidatedBy: &validator,
		ValidatedAt: &stamped,
		Items: []domain.RequestItem{
			{ID: "i1", Description: "Pen", Quantity: 10, UnitPrice: decimal.NewFromInt(1), TotalPrice: decimal.NewFromInt(10)},
		},
	}

	m := mapping.ToModelBudgetRequest(d)
	assert.True(t, m.ValidatedBy.Valid)
	assert.True(t, m.ValidatedAt.Valid)
	assert.False(t, m.AccountCode.Valid)
	assert.Equal(t, []string{}, m.Attachments)

	items := mapping.ToModelRequestItems(d.ID, d.Items)
	require.Len(t, items, 1)
	assert.Equal(t, 0, items[0].Position)
	assert.Equal(t, "req-1", items[0].RequestID)

	back := mapping.ToDomainBudgetRequest(m, items, nil)
	require.NotNil(t, back.ValidatedBy)
	assert.Equal(t, "chef-1", *back.ValidatedBy)
	assert.Equal(t, stamped, *back.ValidatedAt)
	assert.Nil(t, back.AccountCode)
	assert.Empty(t, back.Comments)
	assert.Equal(t, "Pen", back.Items[0].Description)
}
