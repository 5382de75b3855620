package body

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/planets/internal/model"
	"go.uber.org/multierr"
)

// Radii is the triaxial radii vector of a body in kilometers
type Radii struct {
	NAIFID int       `json:"naif_id" yaml:"naif_id"`
	Values []float64 `json:"values" yaml:"values"` // equatorial a, equatorial b, polar c
}

// Complete reports whether all three axes are present
func (r Radii) Complete() bool {
	return len(r.Values) >= 3
}

// RadiiTable maps NAIF IDs to radii
type RadiiTable map[int]Radii

// ConstantSource is the read side of a parsed constants table
type ConstantSource interface {
	Keys() []string
	Get(key string) (model.Value, bool)
}

var radiiKey = regexp.MustCompile(`^BODY(\d+)_RADII$`)

// RadiiFromConstants collects every BODY<id>_RADII entry. Entries that cannot
// be read as numbers are skipped and reported together in the returned error;
// the table holds everything that could be read.
func RadiiFromConstants(src ConstantSource) (RadiiTable, error) {
	table := make(RadiiTable)

	var errs error
	for _, key := range src.Keys() {
		m := radiiKey.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}

		v, _ := src.Get(key)
		values, err := radiiValues(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		table[id] = Radii{NAIFID: id, Values: values}
	}

	return table, errs
}

// radiiValues reads a vector of scalars, or recovers numbers from a value
// that was handed over as text such as "[6378.1 6378.1 6356.8]"
func radiiValues(v model.Value) ([]float64, error) {
	if fs, ok := v.Floats(); ok {
		return fs, nil
	}

	var text string
	switch {
	case v.IsText():
		text, _ = v.AsText()
	case v.IsVector():
		text = v.String()
	default:
		return nil, fmt.Errorf("unexpected %s value", v.Kind())
	}

	text = strings.Map(func(r rune) rune {
		if strings.ContainsRune("()[]", r) {
			return ' '
		}
		return r
	}, text)

	var out []float64
	for _, field := range strings.Fields(text) {
		f, err := strconv.ParseFloat(strings.TrimSuffix(field, ","), 64)
		if err != nil {
			return nil, fmt.Errorf("parse radius %q: %w", field, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// RadiiForName finds the radii of a named body. Lookup order: exact name
// (case-insensitive), then substring containment in either direction over the
// name table in order, then the moon/luna/sun aliases. A name that resolves
// to a body without radii still falls through to the aliases.
func RadiiForName(name string, table RadiiTable) (Radii, bool) {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return Radii{}, false
	}

	if id, ok := matchName(query); ok {
		if r, ok := table[id]; ok {
			return r, true
		}
	}

	if id, ok := aliases[query]; ok {
		if r, ok := table[id]; ok {
			return r, true
		}
	}
	return Radii{}, false
}

// matchName resolves a lower-case query against the registry
func matchName(query string) (int, bool) {
	if r, ok := byName[query]; ok {
		return r.NAIFID, true
	}
	for _, r := range registry {
		known := strings.ToLower(r.Name)
		if strings.Contains(known, query) || strings.Contains(query, known) {
			return r.NAIFID, true
		}
	}
	return 0, false
}
