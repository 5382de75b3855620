package model

import (
	"encoding/json"
	"fmt"
)

// Unit is a physical unit tag. It is metadata only; no conversion is done.
type Unit string

const (
	UnitNone       Unit = ""
	UnitDegrees    Unit = "deg"
	UnitKilometers Unit = "km"
	UnitKm3PerS2   Unit = "km3 / s2" // gravitational parameter
)

// Quantity is a parsed value with an attached unit
type Quantity struct {
	Value Value `json:"value" yaml:"value"`
	Unit  Unit  `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// HasUnit reports whether a unit is attached
func (q Quantity) HasUnit() bool {
	return q.Unit != UnitNone
}

func (q Quantity) String() string {
	if !q.HasUnit() {
		return q.Value.String()
	}
	return fmt.Sprintf("%s %s", q.Value, q.Unit)
}

// MarshalJSON writes unit-less quantities as their bare value so that an
// annotated table stays readable next to a raw one.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.HasUnit() {
		return json.Marshal(q.Value)
	}
	type quantity Quantity
	return json.Marshal(quantity(q))
}

// MarshalYAML follows MarshalJSON
func (q Quantity) MarshalYAML() (interface{}, error) {
	if !q.HasUnit() {
		return q.Value, nil
	}
	return map[string]interface{}{
		"value": q.Value,
		"unit":  string(q.Unit),
	}, nil
}
