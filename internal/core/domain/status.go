package domain

import "strings"

// RequestStatus is the lifecycle state of a budget request.
type RequestStatus string

const (
	StatusDraft             RequestStatus = "draft"
	StatusSubmitted         RequestStatus = "submitted"
	StatusChefReview        RequestStatus = "chef_review"
	StatusChefApproved      RequestStatus = "chef_approved"
	StatusChefRejected      RequestStatus = "chef_rejected"
	StatusDirectionReview   RequestStatus = "direction_review"
	StatusDirectionApproved RequestStatus = "direction_approved"
	StatusDirectionRejected RequestStatus = "direction_rejected"
	StatusRecteurReview     RequestStatus = "recteur_review"
	StatusRecteurApproved   RequestStatus = "recteur_approved"
	StatusRecteurRejected   RequestStatus = "recteur_rejected"
	StatusExecuted          RequestStatus = "executed"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []RequestStatus{
	StatusDraft,
	StatusSubmitted,
	StatusChefReview,
	StatusChefApproved,
	StatusChefRejected,
	StatusDirectionReview,
	StatusDirectionApproved,
	StatusDirectionRejected,
	StatusRecteurReview,
	StatusRecteurApproved,
	StatusRecteurRejected,
	StatusExecuted,
}

// statusLabels is the French display vocabulary. Presentation only.
var statusLabels = map[RequestStatus]string{
	StatusDraft:             "Brouillon",
	StatusSubmitted:         "Soumise",
	StatusChefReview:        "En revue (chef de département)",
	StatusChefApproved:      "Validée par le chef de département",
	StatusChefRejected:      "Rejetée par le chef de département",
	StatusDirectionReview:   "En revue (direction)",
	StatusDirectionApproved: "Validée par la direction",
	StatusDirectionRejected: "Rejetée par la direction",
	StatusRecteurReview:     "En revue (recteur)",
	StatusRecteurApproved:   "Validée par le recteur",
	StatusRecteurRejected:   "Rejetée par le recteur",
	StatusExecuted:          "Exécutée",
}

// IsValid reports whether s is one of the twelve known statuses.
func (s RequestStatus) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the display label, or the raw value for unknown statuses.
func (s RequestStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsApproval reports whether s records an approval decision.
func (s RequestStatus) IsApproval() bool {
	return strings.Contains(string(s), "approved")
}

// IsRejection reports whether s records a rejection decision.
func (s RequestStatus) IsRejection() bool {
	return strings.Contains(string(s), "rejected")
}

// RequiresValidatorStamp reports whether entering s stamps validatedBy/validatedAt.
func (s RequestStatus) RequiresValidatorStamp() bool {
	return s.IsApproval() || s.IsRejection()
}

// IsPendingReview reports whether s is one of the *_review stops.
func (s RequestStatus) IsPendingReview() bool {
	return strings.Contains(string(s), "review")
}

// IsEditable reports whether a request in s may still be modified by its owner.
func (s RequestStatus) IsEditable() bool {
	return s == StatusDraft || s == StatusSubmitted
}
