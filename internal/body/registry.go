// Package body maps NAIF integer IDs to body names and resolves body radii
// from parsed kernel constants.
package body

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"github.com/ppiankov/planets/internal/model"
)

// registry is the static NAIF ID table. Order matters: substring lookups
// return the first record that matches.
var registry = []model.BodyRecord{
	{NAIFID: 10, Name: "Sun", Kind: model.BodyStar},

	{NAIFID: 199, Name: "Mercury", Kind: model.BodyPlanet},
	{NAIFID: 299, Name: "Venus", Kind: model.BodyPlanet},
	{NAIFID: 399, Name: "Earth", Kind: model.BodyPlanet},
	{NAIFID: 499, Name: "Mars", Kind: model.BodyPlanet},
	{NAIFID: 599, Name: "Jupiter", Kind: model.BodyPlanet},
	{NAIFID: 699, Name: "Saturn", Kind: model.BodyPlanet},
	{NAIFID: 799, Name: "Uranus", Kind: model.BodyPlanet},
	{NAIFID: 899, Name: "Neptune", Kind: model.BodyPlanet},
	{NAIFID: 999, Name: "Pluto", Kind: model.BodyDwarf},

	{NAIFID: 301, Name: "Moon", Kind: model.BodySatellite},

	{NAIFID: 401, Name: "Phobos", Kind: model.BodySatellite},
	{NAIFID: 402, Name: "Deimos", Kind: model.BodySatellite},

	{NAIFID: 501, Name: "Io", Kind: model.BodySatellite},
	{NAIFID: 502, Name: "Europa", Kind: model.BodySatellite},
	{NAIFID: 503, Name: "Ganymede", Kind: model.BodySatellite},
	{NAIFID: 504, Name: "Callisto", Kind: model.BodySatellite},
	{NAIFID: 505, Name: "Amalthea", Kind: model.BodySatellite},
	{NAIFID: 506, Name: "Himalia", Kind: model.BodySatellite},
	{NAIFID: 507, Name: "Elara", Kind: model.BodySatellite},
	{NAIFID: 508, Name: "Pasiphae", Kind: model.BodySatellite},
	{NAIFID: 509, Name: "Sinope", Kind: model.BodySatellite},
	{NAIFID: 510, Name: "Lysithea", Kind: model.BodySatellite},
	{NAIFID: 511, Name: "Carme", Kind: model.BodySatellite},
	{NAIFID: 512, Name: "Ananke", Kind: model.BodySatellite},
	{NAIFID: 513, Name: "Leda", Kind: model.BodySatellite},
	{NAIFID: 514, Name: "Thebe", Kind: model.BodySatellite},
	{NAIFID: 515, Name: "Adrastea", Kind: model.BodySatellite},
	{NAIFID: 516, Name: "Metis", Kind: model.BodySatellite},

	{NAIFID: 601, Name: "Mimas", Kind: model.BodySatellite},
	{NAIFID: 602, Name: "Enceladus", Kind: model.BodySatellite},
	{NAIFID: 603, Name: "Tethys", Kind: model.BodySatellite},
	{NAIFID: 604, Name: "Dione", Kind: model.BodySatellite},
	{NAIFID: 605, Name: "Rhea", Kind: model.BodySatellite},
	{NAIFID: 606, Name: "Titan", Kind: model.BodySatellite},
	{NAIFID: 607, Name: "Hyperion", Kind: model.BodySatellite},
	{NAIFID: 608, Name: "Iapetus", Kind: model.BodySatellite},
	{NAIFID: 609, Name: "Phoebe", Kind: model.BodySatellite},
	{NAIFID: 610, Name: "Janus", Kind: model.BodySatellite},
	{NAIFID: 611, Name: "Epimetheus", Kind: model.BodySatellite},
	{NAIFID: 612, Name: "Helene", Kind: model.BodySatellite},
	{NAIFID: 613, Name: "Telesto", Kind: model.BodySatellite},
	{NAIFID: 614, Name: "Calypso", Kind: model.BodySatellite},
	{NAIFID: 615, Name: "Atlas", Kind: model.BodySatellite},
	{NAIFID: 616, Name: "Prometheus", Kind: model.BodySatellite},
	{NAIFID: 617, Name: "Pandora", Kind: model.BodySatellite},

	{NAIFID: 701, Name: "Ariel", Kind: model.BodySatellite},
	{NAIFID: 702, Name: "Umbriel", Kind: model.BodySatellite},
	{NAIFID: 703, Name: "Titania", Kind: model.BodySatellite},
	{NAIFID: 704, Name: "Oberon", Kind: model.BodySatellite},
	{NAIFID: 705, Name: "Miranda", Kind: model.BodySatellite},

	{NAIFID: 801, Name: "Triton", Kind: model.BodySatellite},
	{NAIFID: 802, Name: "Nereid", Kind: model.BodySatellite},
	{NAIFID: 803, Name: "Naiad", Kind: model.BodySatellite},
	{NAIFID: 804, Name: "Thalassa", Kind: model.BodySatellite},
	{NAIFID: 805, Name: "Despina", Kind: model.BodySatellite},
	{NAIFID: 806, Name: "Galatea", Kind: model.BodySatellite},
	{NAIFID: 807, Name: "Larissa", Kind: model.BodySatellite},
	{NAIFID: 808, Name: "Proteus", Kind: model.BodySatellite},

	{NAIFID: 901, Name: "Charon", Kind: model.BodySatellite},
	{NAIFID: 902, Name: "Nix", Kind: model.BodySatellite},
	{NAIFID: 903, Name: "Hydra", Kind: model.BodySatellite},
	{NAIFID: 904, Name: "Kerberos", Kind: model.BodySatellite},
	{NAIFID: 905, Name: "Styx", Kind: model.BodySatellite},

	{NAIFID: 1, Name: "Ceres", Kind: model.BodyDwarf},
	{NAIFID: 2, Name: "Pallas", Kind: model.BodyDwarf},
	{NAIFID: 3, Name: "Juno", Kind: model.BodyDwarf},
	{NAIFID: 4, Name: "Vesta", Kind: model.BodyDwarf},
	{NAIFID: 9, Name: "Eris", Kind: model.BodyDwarf},

	{NAIFID: 1000012, Name: "67P/Churyumov-Gerasimenko", Kind: model.BodyComet},
	{NAIFID: 1000036, Name: "Halley", Kind: model.BodyComet},
}

// barycenterCenters names the system for each barycenter center digit
var barycenterCenters = [...]string{
	1: "Mercury", 2: "Venus", 3: "Earth", 4: "Mars", 5: "Jupiter",
	6: "Saturn", 7: "Uranus", 8: "Neptune", 9: "Pluto",
}

// aliases map informal names onto registry IDs. They apply only when the
// name table itself does not resolve a query.
var aliases = map[string]int{
	"moon": 301,
	"luna": 301,
	"sun":  10,
}

var (
	byID   = make(map[int]model.BodyRecord, len(registry))
	byName = make(map[string]model.BodyRecord, len(registry))
)

func init() {
	for _, r := range registry {
		if _, dup := byID[r.NAIFID]; dup {
			panic(fmt.Sprintf("body: duplicate NAIF ID %d", r.NAIFID))
		}
		key := strings.ToLower(r.Name)
		if _, dup := byName[key]; dup {
			panic(fmt.Sprintf("body: duplicate name %q", r.Name))
		}
		byID[r.NAIFID] = r
		byName[key] = r
	}
}

// NameFor returns the canonical name of id. Unlisted IDs divisible by 100
// with a center digit of 1-9 are named "<Planet> Barycenter"; anything else
// is "Unknown (<id>)".
func NameFor(id int) string {
	if r, ok := byID[id]; ok {
		return r.Name
	}
	if id > 0 && id%100 == 0 {
		if center := id / 100; center >= 1 && center <= 9 {
			return barycenterCenters[center] + " Barycenter"
		}
	}
	return fmt.Sprintf("Unknown (%d)", id)
}

// Lookup returns the record for id
func Lookup(id int) (model.BodyRecord, bool) {
	r, ok := byID[id]
	return r, ok
}

// IDFor returns the NAIF ID of an exactly named body, ignoring case
func IDFor(name string) (int, bool) {
	r, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return r.NAIFID, ok
}

// Records returns every registered body in table order
func Records() []model.BodyRecord {
	out := make([]model.BodyRecord, len(registry))
	copy(out, registry)
	return out
}

// Names returns every registered name in natural order
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, r := range registry {
		names = append(names, r.Name)
	}
	sort.Sort(natural.StringSlice(names))
	return names
}
