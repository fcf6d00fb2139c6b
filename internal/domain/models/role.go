// internal/domain/models/role.go
package models

// Role is the access level a collaborator holds on a map.
//
// Ownership is not a Role: the owner is recorded on the Map document itself
// and never appears in the collaborator list or the grant index.
type Role string

const (
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// Valid reports whether r is one of the two grantable roles.
func (r Role) Valid() bool {
	return r == RoleEditor || r == RoleViewer
}
