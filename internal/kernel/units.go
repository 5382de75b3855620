package kernel

import (
	"strings"

	"github.com/ppiankov/planets/internal/model"
)

// unitRule attaches a unit to keys ending in one of its suffixes
type unitRule struct {
	suffixes []string
	unit     model.Unit
}

// unitRules are checked in order; the first matching suffix wins
var unitRules = []unitRule{
	{suffixes: []string{"N_GEOMAG_CTR_DIPOLE_LON", "N_GEOMAG_CTR_DIPOLE_LAT"}, unit: model.UnitDegrees},
	{suffixes: []string{"_RADII"}, unit: model.UnitKilometers},
	{suffixes: []string{"_GM"}, unit: model.UnitKm3PerS2},
}

// UnitFor returns the unit implied by a key name, or UnitNone
func UnitFor(key string) model.Unit {
	for _, rule := range unitRules {
		for _, suffix := range rule.suffixes {
			if strings.HasSuffix(key, suffix) {
				return rule.unit
			}
		}
	}
	return model.UnitNone
}

// AttachUnit wraps q with the unit implied by key. Text values and quantities
// that already carry a unit are returned unchanged, so attaching twice is a
// no-op.
func AttachUnit(key string, q model.Quantity) model.Quantity {
	if q.HasUnit() || q.Value.IsText() {
		return q
	}
	q.Unit = UnitFor(key)
	return q
}

// Annotated is the unit-annotated view of a Constants table
type Annotated struct {
	keys  []string
	items map[string]model.Quantity
}

// Annotate builds the unit-annotated view of c. The raw table is not modified.
func Annotate(c *Constants) *Annotated {
	a := &Annotated{items: make(map[string]model.Quantity, c.Len())}
	c.Each(func(key string, v model.Value) bool {
		a.keys = append(a.keys, key)
		a.items[key] = AttachUnit(key, model.Quantity{Value: v})
		return true
	})
	return a
}

// Annotate re-applies the unit rules; the result equals the receiver
func (a *Annotated) Annotate() *Annotated {
	out := &Annotated{
		keys:  append([]string(nil), a.keys...),
		items: make(map[string]model.Quantity, len(a.items)),
	}
	for _, k := range a.keys {
		out.items[k] = AttachUnit(k, a.items[k])
	}
	return out
}

// Get returns the quantity stored under key
func (a *Annotated) Get(key string) (model.Quantity, bool) {
	q, ok := a.items[key]
	return q, ok
}

// Keys returns keys in table order
func (a *Annotated) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Len is the number of keys
func (a *Annotated) Len() int {
	return len(a.keys)
}

// MarshalJSON writes an ordered object of quantities
func (a *Annotated) MarshalJSON() ([]byte, error) {
	return marshalOrdered(a.keys, func(k string) interface{} { return a.items[k] })
}

// MarshalYAML writes an ordered mapping of quantities
func (a *Annotated) MarshalYAML() (interface{}, error) {
	return orderedNode(a.keys, func(k string) interface{} { return a.items[k] })
}
