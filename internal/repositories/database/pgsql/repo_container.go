package pgsql

import (
	portsrepo "github.com/SscSPs/budget_request_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		BudgetRequestRepo: newPgxBudgetRequestRepository(dbPool),
		UserRepo:          newPgxUserRepository(dbPool),
	}
}
