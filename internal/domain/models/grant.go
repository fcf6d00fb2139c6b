// internal/domain/models/grant.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GrantKeySeparator joins the two components of a grant key. Any external
// layer that re-derives grant keys (e.g. declarative per-document store
// rules) must use the same separator.
const GrantKeySeparator = "_"

// GrantKey derives the document _id for the grant held by collaborator
// email on mapID. The key is always computed from its two components and
// never independently assigned, which makes "does X have access to map Y"
// a single point lookup.
func GrantKey(mapID primitive.ObjectID, email string) string {
	return mapID.Hex() + GrantKeySeparator + email
}

// MapGrant is the denormalized access index entry: exactly one document per
// (map, collaborator) pair, keyed by GrantKey. Grants exist only for
// collaborators listed on the map document, never for the owner, and are
// created, re-roled, and revoked solely as a side effect of map mutations.
// DisplayName is the one collaborator-owned field: a local override of the
// map's name, untouched by the owner's edits.
type MapGrant struct {
	Key          string             `bson:"_id" json:"key"`
	MapID        primitive.ObjectID `bson:"map_id" json:"map_id"`
	Collaborator string             `bson:"collaborator" json:"collaborator"`
	Role         Role               `bson:"role" json:"role"`
	DisplayName  string             `bson:"display_name" json:"display_name"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
