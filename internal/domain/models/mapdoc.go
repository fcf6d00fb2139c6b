// internal/domain/models/mapdoc.go
package models

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collaborator is one entry in a map's collaborator list: an identity
// (normalized email) plus the role granted to it.
type Collaborator struct {
	Email string `bson:"email" json:"email"`
	Role  Role   `bson:"role" json:"role"`
}

// Map is the shared container resource. The Collaborators list on the map
// document is the source of truth for who has access; the map_grants
// collection is a derived index reconciled transactionally whenever this
// list changes.
//
// NOTE:
//   - The owner is never present in Collaborators (ownership is implicit).
//   - Collaborators is stored as an array rather than a BSON map because
//     identities are email addresses, and dotted keys do not index or
//     query cleanly in MongoDB.
type Map struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	Name          string             `bson:"name" json:"name"`
	NameCI        string             `bson:"name_ci" json:"name_ci"`
	Owner         string             `bson:"owner" json:"owner"`
	Collaborators []Collaborator     `bson:"collaborators" json:"collaborators"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CollaboratorRoles returns the collaborator list as an email→role mapping.
func (m Map) CollaboratorRoles() map[string]Role {
	roles := make(map[string]Role, len(m.Collaborators))
	for _, c := range m.Collaborators {
		roles[c.Email] = c.Role
	}
	return roles
}

// RoleOf returns the role granted to email, if any.
func (m Map) RoleOf(email string) (Role, bool) {
	for _, c := range m.Collaborators {
		if c.Email == email {
			return c.Role, true
		}
	}
	return "", false
}

// CollaboratorList converts an email→role mapping into the stored array
// form, sorted by email so the document layout is deterministic.
func CollaboratorList(roles map[string]Role) []Collaborator {
	list := make([]Collaborator, 0, len(roles))
	for email, role := range roles {
		list = append(list, Collaborator{Email: email, Role: role})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Email < list[j].Email })
	return list
}
