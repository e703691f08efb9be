package domain

// Edge is one legal status change together with the roles that may drive it.
// Admins are not listed: RolePolicy lets them drive every legal edge.
type Edge struct {
	From  RequestStatus
	To    RequestStatus
	Roles []Role
}

// StatusGraph is the immutable table of legal transitions.
// It is the single source of truth for which edges exist and which roles may take them.
type StatusGraph struct {
	edges map[RequestStatus]map[RequestStatus][]Role
}

var (
	reviewerChef      = []Role{RoleChefDepartement}
	reviewerDirection = []Role{RoleDirection}
	reviewerRecteur   = []Role{RoleRecteur}
)

// defaultEdges is the institution's approval chain. The *_review states are optional stops:
// a reviewer may decide directly from the previous stage.
var defaultEdges = []Edge{
	{From: StatusDraft, To: StatusSubmitted, Roles: []Role{RoleAgent, RoleChefDepartement}},

	{From: StatusSubmitted, To: StatusChefReview, Roles: reviewerChef},
	{From: StatusSubmitted, To: StatusChefApproved, Roles: reviewerChef},
	{From: StatusSubmitted, To: StatusChefRejected, Roles: reviewerChef},
	{From: StatusChefReview, To: StatusChefApproved, Roles: reviewerChef},
	{From: StatusChefReview, To: StatusChefRejected, Roles: reviewerChef},

	{From: StatusChefApproved, To: StatusDirectionReview, Roles: reviewerDirection},
	{From: StatusChefApproved, To: StatusDirectionApproved, Roles: reviewerDirection},
	{From: StatusChefApproved, To: StatusDirectionRejected, Roles: reviewerDirection},
	{From: StatusDirectionReview, To: StatusDirectionApproved, Roles: reviewerDirection},
	{From: StatusDirectionReview, To: StatusDirectionRejected, Roles: reviewerDirection},

	{From: StatusDirectionApproved, To: StatusRecteurReview, Roles: reviewerRecteur},
	{From: StatusDirectionApproved, To: StatusRecteurApproved, Roles: reviewerRecteur},
	{From: StatusDirectionApproved, To: StatusRecteurRejected, Roles: reviewerRecteur},
	{From: StatusRecteurReview, To: StatusRecteurApproved, Roles: reviewerRecteur},
	{From: StatusRecteurReview, To: StatusRecteurRejected, Roles: reviewerRecteur},

	{From: StatusRecteurApproved, To: StatusExecuted, Roles: nil},

	// Reopening a rejected request is an admin decision.
	{From: StatusChefRejected, To: StatusDraft, Roles: nil},
	{From: StatusDirectionRejected, To: StatusDraft, Roles: nil},
	{From: StatusRecteurRejected, To: StatusDraft, Roles: nil},
}

var defaultGraph = NewStatusGraph(defaultEdges, StatusExecuted)

// DefaultStatusGraph returns the graph built at process start.
func DefaultStatusGraph() StatusGraph {
	return defaultGraph
}

// NewStatusGraph builds a graph from edges. Statuses listed in terminal get an entry with no
// outgoing edges; a status that appears nowhere has no entry at all.
func NewStatusGraph(edges []Edge, terminal ...RequestStatus) StatusGraph {
	table := make(map[RequestStatus]map[RequestStatus][]Role)
	for _, s := range terminal {
		table[s] = map[RequestStatus][]Role{}
	}
	for _, e := range edges {
		targets, ok := table[e.From]
		if !ok {
			targets = make(map[RequestStatus][]Role)
			table[e.From] = targets
		}
		roles := make([]Role, len(e.Roles))
		copy(roles, e.Roles)
		targets[e.To] = roles
	}
	return StatusGraph{edges: table}
}

// HasEntry reports whether the graph knows status s at all.
func (g StatusGraph) HasEntry(s RequestStatus) bool {
	_, ok := g.edges[s]
	return ok
}

// IsTerminal reports whether s is configured with no outgoing edges.
func (g StatusGraph) IsTerminal(s RequestStatus) bool {
	targets, ok := g.edges[s]
	return ok && len(targets) == 0
}

// LegalNextStates returns the statuses reachable from current, in lifecycle order.
func (g StatusGraph) LegalNextStates(current RequestStatus) []RequestStatus {
	targets := g.edges[current]
	next := make([]RequestStatus, 0, len(targets))
	for _, s := range AllStatuses {
		if _, ok := targets[s]; ok {
			next = append(next, s)
		}
	}
	return next
}

// CanTransition reports whether from -> to is an edge of the graph.
func (g StatusGraph) CanTransition(from, to RequestStatus) bool {
	_, ok := g.edges[from][to]
	return ok
}

// AllowedRoles returns the non-admin roles that may drive from -> to, or nil when the edge does not exist.
func (g StatusGraph) AllowedRoles(from, to RequestStatus) []Role {
	roles, ok := g.edges[from][to]
	if !ok {
		return nil
	}
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// RoleMayDrive reports whether role is listed on the from -> to edge.
func (g StatusGraph) RoleMayDrive(role Role, from, to RequestStatus) bool {
	for _, r := range g.edges[from][to] {
		if r == role {
			return true
		}
	}
	return false
}
