package domain_test

import (
	"testing"

	"github.com/SscSPs/budget_request_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	requests := []domain.BudgetRequest{
		{Status: domain.StatusDraft, Amount: decimal.NewFromInt(10)},
		{Status: domain.StatusChefReview, Amount: decimal.NewFromInt(20)},
		{Status: domain.StatusRecteurReview, Amount: decimal.NewFromInt(25)},
		{Status: domain.StatusChefApproved, Amount: decimal.NewFromInt(30)},
		{Status: domain.StatusDirectionRejected, Amount: decimal.NewFromInt(40)},
		{Status: domain.StatusExecuted, Amount: decimal.NewFromInt(50)},
	}

	s := domain.ComputeStats(requests)

	assert.Equal(t, 6, s.TotalRequests)
	assert.Equal(t, 2, s.PendingRequests)
	assert.Equal(t, 1, s.ApprovedRequests)
	assert.Equal(t, 1, s.RejectedRequests)
	assert.Equal(t, 1, s.ExecutedRequests)
	assert.True(t, decimal.NewFromInt(175).Equal(s.TotalAmount))
	assert.True(t, decimal.NewFromInt(45).Equal(s.PendingAmount))
	assert.True(t, decimal.NewFromInt(30).Equal(s.ApprovedAmount))
	assert.True(t, decimal.NewFromInt(40).Equal(s.RejectedAmount))
	assert.True(t, decimal.NewFromInt(50).Equal(s.ExecutedAmount))
}

func TestComputeStats_Empty(t *testing.T) {
	s := domain.ComputeStats(nil)
	assert.Zero(t, s.TotalRequests)
	assert.True(t, s.TotalAmount.IsZero())
}

func TestNextReviewers(t *testing.T) {
	q, ok := domain.NextReviewers(domain.StatusSubmitted, "GC")
	assert.True(t, ok)
	assert.Equal(t, domain.RecipientQuery{Role: domain.RoleChefDepartement, Department: "GC"}, q)

	q, ok = domain.NextReviewers(domain.StatusChefApproved, "GC")
	assert.True(t, ok)
	assert.Equal(t, domain.RoleDirection, q.Role)
	assert.Empty(t, q.Department)

	_, ok = domain.NextReviewers(domain.StatusExecuted, "GC")
	assert.False(t, ok)
}
