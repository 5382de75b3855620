package model

// BodyRecord pairs a NAIF integer ID with a canonical body name
type BodyRecord struct {
	NAIFID int      `json:"naif_id" yaml:"naif_id"`
	Name   string   `json:"name" yaml:"name"`
	Kind   BodyKind `json:"kind" yaml:"kind"`
}

// BodyKind classifies entries of the static body table
type BodyKind string

const (
	BodyStar      BodyKind = "star"
	BodyPlanet    BodyKind = "planet"
	BodySatellite BodyKind = "satellite"
	BodyDwarf     BodyKind = "dwarf_planet_or_asteroid"
	BodyComet     BodyKind = "comet"
)
