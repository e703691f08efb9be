package domain

// Role is the institutional role of a principal.
type Role string

const (
	RoleAgent           Role = "agent"
	RoleChefDepartement Role = "chef_departement"
	RoleDirection       Role = "direction"
	RoleRecteur         Role = "recteur"
	RoleAuditeur        Role = "auditeur"
	RoleAdmin           Role = "admin"
)

// AllRoles lists every known role.
var AllRoles = []Role{RoleAgent, RoleChefDepartement, RoleDirection, RoleRecteur, RoleAuditeur, RoleAdmin}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// Principal is the authenticated actor on whose behalf an operation runs.
// It is trusted as supplied by the auth layer.
type Principal struct {
	UserID      string `json:"userID"`
	Role        Role   `json:"role"`
	Department  string `json:"department,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}
