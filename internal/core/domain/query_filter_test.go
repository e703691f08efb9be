package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/budget_request_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func corpus() []domain.BudgetRequest {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id, owner, dept string, status domain.RequestStatus, amount int64, urgency domain.Urgency, day int) domain.BudgetRequest {
		return domain.BudgetRequest{
			ID:         id,
			OwnerID:    owner,
			Department: dept,
			Status:     status,
			Amount:     decimal.NewFromInt(amount),
			Urgency:    urgency,
			CreatedAt:  base.AddDate(0, 0, day),
		}
	}
	return []domain.BudgetRequest{
		mk("r1", "agent-1", "Informatique", domain.StatusDraft, 100, domain.UrgencyLow, 1),
		mk("r2", "agent-1", "Informatique", domain.StatusSubmitted, 200, domain.UrgencyHigh, 2),
		mk("r3", "agent-2", "Informatique", domain.StatusChefApproved, 300, domain.UrgencyMedium, 3),
		mk("r4", "agent-3", "GC", domain.StatusDirectionApproved, 400, domain.UrgencyCritical, 4),
		mk("r5", "agent-3", "GC", domain.StatusRecteurApproved, 500, domain.UrgencyHigh, 5),
		mk("r6", "agent-2", "Informatique", domain.StatusDraft, 600, domain.UrgencyLow, 6),
		mk("r7", "agent-3", "GC", domain.StatusExecuted, 700, domain.UrgencyMedium, 7),
	}
}

func ids(page domain.Page[domain.BudgetRequest]) []string {
	out := make([]string, 0, len(page.Items))
	for _, r := range page.Items {
		out = append(out, r.ID)
	}
	return out
}

func TestVisibleRequests_RoleScopes(t *testing.T) {
	tests := []struct {
		name  string
		actor domain.Principal
		want  []string
	}{
		{"agent sees own", domain.Principal{UserID: "agent-1", Role: domain.RoleAgent}, []string{"r2", "r1"}},
		{"chef sees department without drafts", domain.Principal{UserID: "c", Role: domain.RoleChefDepartement, Department: "Informatique"}, []string{"r3", "r2"}},
		{"direction sees its stage", domain.Principal{UserID: "d", Role: domain.RoleDirection}, []string{"r4", "r3"}},
		{"recteur sees its stage", domain.Principal{UserID: "r", Role: domain.RoleRecteur}, []string{"r5", "r4"}},
		{"auditeur sees all", domain.Principal{UserID: "a", Role: domain.RoleAuditeur}, []string{"r7", "r6", "r5", "r4", "r3", "r2", "r1"}},
		{"unknown role sees nothing", domain.Principal{UserID: "x", Role: "visitor"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := domain.VisibleRequests(tt.actor, corpus(), domain.ListFilter{}, 1, 20)
			assert.Equal(t, tt.want, ids(page))
			assert.Equal(t, len(tt.want), page.Total)
		})
	}
}

func TestVisibleRequests_CallerFiltersNarrowBaseScope(t *testing.T) {
	admin := domain.Principal{UserID: "adm", Role: domain.RoleAdmin}
	from := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter domain.ListFilter
		want   []string
	}{
		{"status", domain.ListFilter{Status: domain.StatusDraft}, []string{"r6", "r1"}},
		{"department", domain.ListFilter{Department: "GC"}, []string{"r7", "r5", "r4"}},
		{"urgency", domain.ListFilter{Urgency: domain.UrgencyHigh}, []string{"r5", "r2"}},
		{"amount range", domain.ListFilter{AmountMin: decimalPtr(decimal.NewFromInt(250)), AmountMax: decimalPtr(decimal.NewFromInt(500))}, []string{"r5", "r4", "r3"}},
		{"date range inclusive", domain.ListFilter{DateFrom: &from, DateTo: &to}, []string{"r5", "r4", "r3", "r2"}},
		{"combined", domain.ListFilter{Department: "Informatique", OwnerID: "agent-2"}, []string{"r6", "r3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := domain.VisibleRequests(admin, corpus(), tt.filter, 1, 20)
			assert.Equal(t, tt.want, ids(page))
		})
	}

	// a filter can never widen the base predicate
	agent := domain.Principal{UserID: "agent-1", Role: domain.RoleAgent}
	page := domain.VisibleRequests(agent, corpus(), domain.ListFilter{OwnerID: "agent-3"}, 1, 20)
	assert.Empty(t, page.Items)
}

func TestVisibleRequests_Pagination(t *testing.T) {
	admin := domain.Principal{UserID: "adm", Role: domain.RoleAdmin}

	page := domain.VisibleRequests(admin, corpus(), domain.ListFilter{}, 2, 3)
	assert.Equal(t, []string{"r4", "r3", "r2"}, ids(page))
	assert.Equal(t, 7, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.Page)

	last := domain.VisibleRequests(admin, corpus(), domain.ListFilter{}, 3, 3)
	assert.Equal(t, []string{"r1"}, ids(last))

	beyond := domain.VisibleRequests(admin, corpus(), domain.ListFilter{}, 9, 3)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 7, beyond.Total)

	defaults := domain.VisibleRequests(admin, corpus(), domain.ListFilter{}, 0, 0)
	assert.Equal(t, 1, defaults.Page)
	assert.Equal(t, 10, defaults.PageSize)
	assert.Equal(t, 1, defaults.TotalPages)
}

func TestNormalizePage(t *testing.T) {
	assert.Equal(t, domain.PageRequest{Page: 1, PageSize: 10}, domain.NormalizePage(-3, 0, 10, 100))
	assert.Equal(t, domain.PageRequest{Page: 4, PageSize: 100}, domain.NormalizePage(4, 500, 10, 100))
	assert.Equal(t, 60, domain.NormalizePage(4, 20, 10, 100).Offset())
}

func TestPredicate_MatchNoneAndEmptyAnd(t *testing.T) {
	r := corpus()[0]
	assert.False(t, domain.MatchNone().Matches(&r))
	assert.True(t, domain.And().Matches(&r))
	assert.True(t, domain.OneOf(domain.FieldStatus, "draft", "submitted").Matches(&r))
	assert.False(t, domain.OneOf(domain.FieldStatus).Matches(&r))
}
