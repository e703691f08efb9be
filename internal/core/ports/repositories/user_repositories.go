package repositories

import (
	"context"

	"github.com/SscSPs/budget_request_app/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindActiveUsers lists active users matching q, used to address notifications.
	FindActiveUsers(ctx context.Context, q domain.RecipientQuery) ([]domain.User, error)
}
