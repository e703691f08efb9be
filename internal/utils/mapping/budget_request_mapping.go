package mapping

import (
	"database/sql"

	"github.com/SscSPs/budget_request_app/internal/core/domain"
	"github.com/SscSPs/budget_request_app/internal/models"
)

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// ToModelBudgetRequest converts a domain BudgetRequest to its row model. Items and comments are mapped separately.
func ToModelBudgetRequest(d domain.BudgetRequest) models.BudgetRequest {
	m := models.BudgetRequest{
		RequestID:     d.ID,
		OwnerID:       d.OwnerID,
		OwnerName:     d.OwnerName,
		Department:    d.Department,
		Category:      d.Category,
		Title:         d.Title,
		Description:   d.Description,
		Amount:        d.Amount,
		Justification: d.Justification,
		Urgency:       string(d.Urgency),
		AccountCode:   toNullString(d.AccountCode),
		Attachments:   d.Attachments,
		Status:        string(d.Status),
		ValidatedBy:   toNullString(d.ValidatedBy),
		Version:       d.Version,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if m.Attachments == nil {
		m.Attachments = []string{}
	}
	if d.ValidatedAt != nil {
		m.ValidatedAt = sql.NullTime{Time: *d.ValidatedAt, Valid: true}
	}
	return m
}

// ToDomainBudgetRequest converts a row model plus its child rows to the aggregate.
func ToDomainBudgetRequest(m models.BudgetRequest, items []models.RequestItem, comments []models.RequestComment) domain.BudgetRequest {
	d := domain.BudgetRequest{
		ID:            m.RequestID,
		OwnerID:       m.OwnerID,
		OwnerName:     m.OwnerName,
		Department:    m.Department,
		Category:      m.Category,
		Title:         m.Title,
		Description:   m.Description,
		Amount:        m.Amount,
		Justification: m.Justification,
		Urgency:       domain.Urgency(m.Urgency),
		AccountCode:   fromNullString(m.AccountCode),
		Attachments:   m.Attachments,
		Status:        domain.RequestStatus(m.Status),
		Items:         ToDomainRequestItems(items),
		Comments:      ToDomainComments(comments),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		ValidatedBy:   fromNullString(m.ValidatedBy),
		Version:       m.Version,
	}
	if d.Attachments == nil {
		d.Attachments = []string{}
	}
	if m.ValidatedAt.Valid {
		t := m.ValidatedAt.Time
		d.ValidatedAt = &t
	}
	return d
}

// ToModelRequestItems converts items, recording their order.
func ToModelRequestItems(requestID string, items []domain.RequestItem) []models.RequestItem {
	ms := make([]models.RequestItem, len(items))
	for i, item := range items {
		ms[i] = models.RequestItem{
			ItemID:      item.ID,
			RequestID:   requestID,
			Position:    i,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		}
	}
	return ms
}

// ToDomainRequestItems converts item rows, already ordered by position.
func ToDomainRequestItems(ms []models.RequestItem) []domain.RequestItem {
	ds := make([]domain.RequestItem, len(ms))
	for i, m := range ms {
		ds[i] = domain.RequestItem{
			ID:          m.ItemID,
			Description: m.Description,
			Quantity:    m.Quantity,
			UnitPrice:   m.UnitPrice,
			TotalPrice:  m.TotalPrice,
		}
	}
	return ds
}

// ToModelComment converts a comment.
func ToModelComment(requestID string, c domain.Comment) models.RequestComment {
	return models.RequestComment{
		CommentID:  c.ID,
		RequestID:  requestID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
	}
}

// ToDomainComments converts comment rows, already ordered most recent first.
func ToDomainComments(ms []models.RequestComment) []domain.Comment {
	ds := make([]domain.Comment, len(ms))
	for i, m := range ms {
		ds[i] = domain.Comment{
			ID:         m.CommentID,
			AuthorID:   m.AuthorID,
			AuthorName: m.AuthorName,
			Content:    m.Content,
			CreatedAt:  m.CreatedAt,
		}
	}
	return ds
}
