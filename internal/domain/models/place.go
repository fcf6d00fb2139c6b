// internal/domain/models/place.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlaceGroup is the closed set of buckets a place can be filed under.
type PlaceGroup string

const (
	PlaceGroupFavorite PlaceGroup = "favorite"
	PlaceGroupWantToGo PlaceGroup = "want_to_go"
	PlaceGroupVisited  PlaceGroup = "visited"
)

// Valid reports whether g is a known place group.
func (g PlaceGroup) Valid() bool {
	switch g {
	case PlaceGroupFavorite, PlaceGroupWantToGo, PlaceGroupVisited:
		return true
	}
	return false
}

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Place is a named point of interest belonging to exactly one map. Places
// have no existence independent of their map: deleting the map cascades to
// its places.
type Place struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	MapID    primitive.ObjectID `bson:"map_id" json:"map_id"`
	Name     string             `bson:"name" json:"name"`
	Emoji    string             `bson:"emoji" json:"emoji"`
	Group    PlaceGroup         `bson:"group" json:"group"`
	Geometry GeoPoint           `bson:"geometry" json:"geometry"`

	// Optional external references from the place-lookup service.
	PlaceRef string `bson:"place_ref,omitempty" json:"place_ref,omitempty"`
	Address  string `bson:"address,omitempty" json:"address,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
