package services

import (
	portsrepo "github.com/SscSPs/budget_request_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_request_app/internal/core/ports/services"
	"github.com/SscSPs/budget_request_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, publisher portssvc.TransitionPublisher) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		BudgetRequest: NewBudgetRequestService(
			repos.BudgetRequestRepo,
			WithTransitionPublisher(publisher),
			WithPaging(cfg.DefaultPageSize, cfg.MaxPageSize),
			WithMaxExportRows(cfg.MaxExportRows),
		),
	}
}
