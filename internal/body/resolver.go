package body

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// ErrInvalidKind is returned for a radius kind other than equatorial, polar
// or mean
var ErrInvalidKind = errors.New("invalid radius kind")

// RadiusKind selects which radius RadiusKm reports
type RadiusKind string

const (
	Equatorial RadiusKind = "equatorial"
	Polar      RadiusKind = "polar"
	Mean       RadiusKind = "mean"
)

// ParseRadiusKind validates a kind string, ignoring case
func ParseRadiusKind(s string) (RadiusKind, error) {
	switch k := RadiusKind(strings.ToLower(strings.TrimSpace(s))); k {
	case Equatorial, Polar, Mean:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q (use equatorial, polar or mean)", ErrInvalidKind, s)
	}
}

// Of computes the radius of this kind from a radii vector. Vectors with
// fewer than three components have no answer.
func (k RadiusKind) Of(r Radii) (float64, bool) {
	if !r.Complete() {
		return 0, false
	}
	a, c := r.Values[0], r.Values[2]
	switch k {
	case Equatorial:
		return a, true
	case Polar:
		return c, true
	case Mean:
		return (2*a + c) / 3, true
	default:
		return 0, false
	}
}

// Resolver answers name and radius queries against one radii table. It is
// read-only after construction and safe for concurrent use.
type Resolver struct {
	radii RadiiTable
}

// NewResolver wraps a radii table
func NewResolver(radii RadiiTable) *Resolver {
	if radii == nil {
		radii = RadiiTable{}
	}
	return &Resolver{radii: radii}
}

// NewResolverFromConstants extracts the radii table from parsed constants.
// The returned error lists unreadable entries; the resolver is usable
// regardless.
func NewResolverFromConstants(src ConstantSource) (*Resolver, error) {
	table, err := RadiiFromConstants(src)
	return NewResolver(table), err
}

// NameFor returns the canonical name of a NAIF ID
func (r *Resolver) NameFor(id int) string {
	return NameFor(id)
}

// Radii returns the radii vector for a body name
func (r *Resolver) Radii(name string) (Radii, bool) {
	return RadiiForName(name, r.radii)
}

// RadiiByID returns the radii vector stored for id
func (r *Resolver) RadiiByID(id int) (Radii, bool) {
	rr, ok := r.radii[id]
	return rr, ok
}

// RadiusKm returns the requested radius of a named body in kilometers. An
// unknown kind is an error; an unknown body or incomplete radii report
// ok == false.
func (r *Resolver) RadiusKm(name, kind string) (km float64, ok bool, err error) {
	k, err := ParseRadiusKind(kind)
	if err != nil {
		return 0, false, err
	}
	radii, found := r.Radii(name)
	if !found {
		return 0, false, nil
	}
	km, ok = k.Of(radii)
	return km, ok, nil
}

// Len is the number of bodies with radii
func (r *Resolver) Len() int {
	return len(r.radii)
}

// Suggest ranks registry names against a query, best first, for "did you
// mean" hints after a failed lookup
func Suggest(query string, limit int) []string {
	names := make([]string, len(registry))
	for i, rec := range registry {
		names[i] = rec.Name
	}

	matches := fuzzy.Find(query, names)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, m.Str)
	}
	return out
}
