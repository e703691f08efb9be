package domain

import (
	"fmt"

	"github.com/SscSPs/budget_request_app/internal/apperrors"
)

// RoleRule decides whether actor may move req to target. It returns nil when allowed
// or an error wrapping apperrors.ErrForbidden with the reason.
type RoleRule func(g StatusGraph, actor Principal, req *BudgetRequest, target RequestStatus) error

// RolePolicy authorizes transitions with one rule per role.
type RolePolicy struct {
	graph StatusGraph
	rules map[Role]RoleRule
}

// NewRolePolicy returns the policy used by the workflow engine, backed by graph.
func NewRolePolicy(graph StatusGraph) RolePolicy {
	return RolePolicy{
		graph: graph,
		rules: map[Role]RoleRule{
			RoleAgent:           agentRule,
			RoleChefDepartement: chefRule,
			RoleDirection:       edgeRule,
			RoleRecteur:         edgeRule,
			RoleAuditeur:        auditeurRule,
			RoleAdmin:           adminRule,
		},
	}
}

// Authorize returns nil when actor may move req to target.
func (p RolePolicy) Authorize(actor Principal, req *BudgetRequest, target RequestStatus) error {
	rule, ok := p.rules[actor.Role]
	if !ok {
		return forbidden("unknown role %q", actor.Role)
	}
	return rule(p.graph, actor, req, target)
}

func forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperrors.ErrForbidden, fmt.Sprintf(format, args...))
}

func edgeRule(g StatusGraph, actor Principal, req *BudgetRequest, target RequestStatus) error {
	if !g.RoleMayDrive(actor.Role, req.Status, target) {
		return forbidden("role %s cannot move a request from %s to %s", actor.Role, req.Status, target)
	}
	return nil
}

func agentRule(g StatusGraph, actor Principal, req *BudgetRequest, target RequestStatus) error {
	if !req.IsOwnedBy(actor.UserID) {
		return forbidden("only the owner can change this request")
	}
	if !req.IsEditable() {
		return forbidden("agents can only act on draft or submitted requests, this one is %s", req.Status)
	}
	return edgeRule(g, actor, req, target)
}

func chefRule(g StatusGraph, actor Principal, req *BudgetRequest, target RequestStatus) error {
	if actor.Department == "" || req.Department != actor.Department {
		return forbidden("request belongs to another department")
	}
	return edgeRule(g, actor, req, target)
}

func auditeurRule(StatusGraph, Principal, *BudgetRequest, RequestStatus) error {
	return forbidden("auditors have read-only access")
}

func adminRule(StatusGraph, Principal, *BudgetRequest, RequestStatus) error {
	return nil
}

// CanEdit returns nil when actor may edit or delete req: its owner or an admin.
func CanEdit(actor Principal, req *BudgetRequest) error {
	switch {
	case actor.Role == RoleAdmin:
		return nil
	case actor.Role == RoleAuditeur:
		return forbidden("auditors have read-only access")
	case req.IsOwnedBy(actor.UserID):
		return nil
	}
	return forbidden("only the owner can modify this request")
}

// CanCreate returns nil when actor's role may open new requests.
func CanCreate(actor Principal) error {
	switch actor.Role {
	case RoleAgent, RoleAdmin:
		return nil
	}
	return forbidden("role %s cannot create requests", actor.Role)
}

// CanView returns nil when actor may read req. Agents and department heads see by id exactly
// what their list scope shows; the direction and recteur scopes are work queues and do not
// restrict reading.
func CanView(actor Principal, req *BudgetRequest) error {
	switch actor.Role {
	case RoleAgent, RoleChefDepartement:
		if !VisibilityPredicate(actor).Matches(req) {
			return forbidden("request is outside your scope")
		}
	}
	return nil
}
