package domain

import "github.com/shopspring/decimal"

// RequestStats are the dashboard figures over a set of requests.
type RequestStats struct {
	TotalRequests    int             `json:"totalRequests"`
	PendingRequests  int             `json:"pendingRequests"`
	ApprovedRequests int             `json:"approvedRequests"`
	RejectedRequests int             `json:"rejectedRequests"`
	ExecutedRequests int             `json:"executedRequests"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	PendingAmount    decimal.Decimal `json:"pendingAmount"`
	ApprovedAmount   decimal.Decimal `json:"approvedAmount"`
	RejectedAmount   decimal.Decimal `json:"rejectedAmount"`
	ExecutedAmount   decimal.Decimal `json:"executedAmount"`
}

// NewRequestStats returns zeroed stats.
func NewRequestStats() RequestStats {
	return RequestStats{
		TotalAmount:    decimal.Zero,
		PendingAmount:  decimal.Zero,
		ApprovedAmount: decimal.Zero,
		RejectedAmount: decimal.Zero,
		ExecutedAmount: decimal.Zero,
	}
}

// Add folds count requests in status totalling amount into s.
func (s *RequestStats) Add(status RequestStatus, count int, amount decimal.Decimal) {
	s.TotalRequests += count
	s.TotalAmount = s.TotalAmount.Add(amount)
	switch {
	case status.IsPendingReview():
		s.PendingRequests += count
		s.PendingAmount = s.PendingAmount.Add(amount)
	case status.IsApproval():
		s.ApprovedRequests += count
		s.ApprovedAmount = s.ApprovedAmount.Add(amount)
	case status.IsRejection():
		s.RejectedRequests += count
		s.RejectedAmount = s.RejectedAmount.Add(amount)
	case status == StatusExecuted:
		s.ExecutedRequests += count
		s.ExecutedAmount = s.ExecutedAmount.Add(amount)
	}
}

// ComputeStats aggregates requests.
func ComputeStats(requests []BudgetRequest) RequestStats {
	s := NewRequestStats()
	for _, r := range requests {
		s.Add(r.Status, 1, r.Amount)
	}
	return s
}
