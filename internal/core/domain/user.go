package domain

import "time"

// User is a member of staff known to the service. Users are provisioned by the
// identity system; this service only reads them to address notifications.
type User struct {
	UserID     string `json:"userID"` // Primary Key (e.g., UUID)
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
	IsActive   bool   `json:"isActive"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"` // Used for soft delete
}

// FullName returns "First Last".
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// RecipientQuery selects the users to notify: everyone with Role, restricted to
// Department when it is set.
type RecipientQuery struct {
	Role       Role
	Department string
}

// NextReviewers returns who has to act once a request reaches status, or false when
// nobody is waiting on it.
func NextReviewers(status RequestStatus, department string) (RecipientQuery, bool) {
	switch status {
	case StatusSubmitted, StatusChefReview:
		return RecipientQuery{Role: RoleChefDepartement, Department: department}, true
	case StatusChefApproved, StatusDirectionReview:
		return RecipientQuery{Role: RoleDirection}, true
	case StatusDirectionApproved, StatusRecteurReview:
		return RecipientQuery{Role: RoleRecteur}, true
	case StatusRecteurApproved:
		return RecipientQuery{Role: RoleAdmin}, true
	}
	return RecipientQuery{}, false
}
