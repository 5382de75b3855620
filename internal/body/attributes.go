package body

import (
	"math"
	"strings"
)

const (
	astronomicalUnit = 1.495978707e11 // m
	stefanBoltzmann  = 5.670374419e-8 // W m-2 K-4
	hour             = 3600.0
	day              = 24 * hour
)

// Attributes holds descriptive planetary data for a handful of bodies.
// Values are SI unless the field says otherwise; absent values are nil.
type Attributes struct {
	Name string `json:"name" yaml:"name"`

	// FixedRadiusKm is set for bodies that generic kernels do not cover
	FixedRadiusKm *float64 `json:"fixed_radius_km,omitempty" yaml:"fixed_radius_km,omitempty"`

	Gravity      *float64 `json:"g,omitempty" yaml:"g,omitempty"`
	SolarConst   *float64 `json:"S,omitempty" yaml:"S,omitempty"`
	Pressure     *float64 `json:"psurf,omitempty" yaml:"psurf,omitempty"`
	Albedo       *float64 `json:"albedo,omitempty" yaml:"albedo,omitempty"`
	Emissivity   *float64 `json:"emissivity,omitempty" yaml:"emissivity,omitempty"`
	HeatFlow     *float64 `json:"Qb,omitempty" yaml:"Qb,omitempty"`
	Inertia      *float64 `json:"Gamma,omitempty" yaml:"Gamma,omitempty"`
	CondSurface  *float64 `json:"ks,omitempty" yaml:"ks,omitempty"`
	CondDepth    *float64 `json:"kd,omitempty" yaml:"kd,omitempty"`
	RhoSurface   *float64 `json:"rhos,omitempty" yaml:"rhos,omitempty"`
	RhoDepth     *float64 `json:"rhod,omitempty" yaml:"rhod,omitempty"`
	ScaleHeight  *float64 `json:"H,omitempty" yaml:"H,omitempty"`
	HeatCapacity *float64 `json:"cp0,omitempty" yaml:"cp0,omitempty"`

	CpCoeff    []float64 `json:"cpCoeff,omitempty" yaml:"cpCoeff,omitempty"`       // heat capacity polynomial
	AlbedoCoef []float64 `json:"albedoCoef,omitempty" yaml:"albedoCoef,omitempty"` // variable albedo model

	SemiMajor    *float64 `json:"rsm,omitempty" yaml:"rsm,omitempty"`
	Year         *float64 `json:"year,omitempty" yaml:"year,omitempty"`
	Eccentricity *float64 `json:"eccentricity,omitempty" yaml:"eccentricity,omitempty"`
	Day          *float64 `json:"day,omitempty" yaml:"day,omitempty"`
	Obliquity    *float64 `json:"obliquity,omitempty" yaml:"obliquity,omitempty"` // degrees
	Perihelion   *float64 `json:"Lp,omitempty" yaml:"Lp,omitempty"`               // longitude, degrees

	TsAvg *float64 `json:"Tsavg,omitempty" yaml:"Tsavg,omitempty"`
	TsMax *float64 `json:"Tsmax,omitempty" yaml:"Tsmax,omitempty"`
	TsMin *float64 `json:"Tsmin,omitempty" yaml:"Tsmin,omitempty"`
}

// Field is one labelled attribute
type Field struct {
	Key         string  `json:"key"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit,omitempty"`
	Description string  `json:"description"`
}

// SemiMajorAU is the orbit semi-major axis in astronomical units
func (a Attributes) SemiMajorAU() (float64, bool) {
	if a.SemiMajor == nil {
		return 0, false
	}
	return *a.SemiMajor / astronomicalUnit, true
}

// Teq is the radiative equilibrium temperature in K at latitude (degrees).
// It needs a solar constant, albedo and emissivity.
func (a Attributes) Teq(latitude float64) (float64, bool) {
	if a.SolarConst == nil || a.Albedo == nil || a.Emissivity == nil {
		return 0, false
	}
	flux := (1 - *a.Albedo) * *a.SolarConst * math.Cos(latitude*math.Pi/180)
	if flux <= 0 {
		return 0, true
	}
	return math.Pow(flux/(4*(*a.Emissivity)*stefanBoltzmann), 0.25), true
}

// Fields lists the scalar attributes that are set, in a fixed display order
func (a Attributes) Fields() []Field {
	var out []Field
	add := func(key string, v *float64, unit, desc string) {
		if v != nil {
			out = append(out, Field{Key: key, Value: *v, Unit: unit, Description: desc})
		}
	}

	add("R", a.FixedRadiusKm, "km", "Mean radius")
	add("g", a.Gravity, "m / s2", "Surface gravitational acceleration")
	add("S", a.SolarConst, "W / m2", "Annual mean solar constant")
	add("psurf", a.Pressure, "Pa", "Surface pressure")
	add("albedo", a.Albedo, "", "Bond albedo")
	add("emissivity", a.Emissivity, "", "IR emissivity")
	add("Qb", a.HeatFlow, "W / m2", "Basal heat flow")
	add("Gamma", a.Inertia, "J / (m2 K s(1/2))", "Thermal inertia")
	add("ks", a.CondSurface, "W / (m K)", "Conductivity at surface")
	add("kd", a.CondDepth, "W / (m K)", "Conductivity at depth")
	add("rhos", a.RhoSurface, "kg / m3", "Density at surface")
	add("rhod", a.RhoDepth, "kg / m3", "Density at depth")
	add("H", a.ScaleHeight, "m", "e-folding scale of conductivity and density")
	add("cp0", a.HeatCapacity, "J / (kg K)", "Heat capacity at average surface temperature")
	add("rsm", a.SemiMajor, "m", "Semi-major axis")
	if au, ok := a.SemiMajorAU(); ok {
		add("rAU", &au, "AU", "Semi-major axis")
	}
	add("year", a.Year, "s", "Sidereal length of year")
	add("eccentricity", a.Eccentricity, "", "Orbital eccentricity")
	add("day", a.Day, "s", "Mean length of solar day")
	add("obliquity", a.Obliquity, "deg", "Obliquity to orbit")
	add("Lp", a.Perihelion, "deg", "Longitude of perihelion")
	add("Tsavg", a.TsAvg, "K", "Mean surface temperature")
	add("Tsmax", a.TsMax, "K", "Maximum surface temperature")
	add("Tsmin", a.TsMin, "K", "Minimum surface temperature")
	return out
}

func f(v float64) *float64 { return &v }

func degrees(rad float64) *float64 { return f(rad * 180 / math.Pi) }

var attributes = buildAttributes()

func buildAttributes() []Attributes {
	mercury := Attributes{
		Name: "Mercury", Gravity: f(3.70), Albedo: f(0.119), Emissivity: f(0.95),
		SolarConst: f(9126.6), Pressure: f(1e-9),
		SemiMajor: f(57.91e9), Year: f(87.969 * day), Eccentricity: f(0.2056),
		Day: f(4222.6 * hour), Obliquity: f(0.01),
		TsAvg: f(440), TsMax: f(725),
	}
	venus := Attributes{
		Name: "Venus", Gravity: f(8.87), Albedo: f(0.750), Emissivity: f(0.95),
		SolarConst: f(2613.9), Pressure: f(9.3e4),
		SemiMajor: f(108.21e9), Year: f(224.701 * day), Eccentricity: f(0.0067),
		Day: f(2802.0 * hour), Obliquity: f(177.36),
		TsAvg: f(737), TsMax: f(737),
	}
	earth := Attributes{
		Name: "Earth", Gravity: f(9.798), SolarConst: f(1361), Albedo: f(0.306),
		Emissivity: f(0.95), Pressure: f(1.013e5),
		SemiMajor: f(149.60e9), Year: f(365.256 * day), Eccentricity: f(0.0167),
		Day: f(24.0 * hour), Obliquity: f(23.45),
		TsAvg: f(288), TsMax: f(320),
	}
	mars := Attributes{
		Name: "Mars", Gravity: f(3.71), Albedo: f(0.250), Emissivity: f(0.95),
		SolarConst: f(589.2), Pressure: f(632),
		SemiMajor: f(227.92e9), Year: f(686.98 * day), Eccentricity: f(0.0935),
		Day: f(24.6597 * hour), Obliquity: f(25.19),
		TsAvg: f(210), TsMax: f(295),
	}
	jupiter := Attributes{
		Name: "Jupiter", Gravity: f(24.79), Albedo: f(0.343), SolarConst: f(50.5),
		SemiMajor: f(778.57e9), Year: f(4332.0 * day), Eccentricity: f(0.0),
		Day: f(9.9259 * hour), Obliquity: degrees(0.0546288),
		TsAvg: f(165),
	}
	saturn := Attributes{
		Name: "Saturn", Gravity: f(10.44), Albedo: f(0.342), SolarConst: f(14.90),
		SemiMajor: f(1433.0e9), Year: f(10759.0 * day), Eccentricity: f(0.0565),
		Day: f(10.656 * hour), Obliquity: f(26.73),
		TsAvg: f(134),
	}
	uranus := Attributes{
		Name: "Uranus", Gravity: f(8.87), Albedo: f(0.300), SolarConst: f(3.71),
		SemiMajor: f(2872.46e9), Year: f(30685.4 * day), Eccentricity: f(0.0457),
		Day: f(17.24 * hour), Obliquity: f(97.77),
		TsAvg: f(76),
	}
	neptune := Attributes{
		Name: "Neptune", Gravity: f(11.15), Albedo: f(0.290), SolarConst: f(1.51),
		SemiMajor: f(4495.06e9), Year: f(60189.0 * day), Eccentricity: f(0.0113),
		Day: f(16.11 * hour), Obliquity: f(28.32),
		TsAvg: f(72),
	}
	pluto := Attributes{
		Name: "Pluto", Gravity: f(0.58), Albedo: f(0.5), Emissivity: f(0.95),
		SolarConst: f(0.89), Pressure: f(1.0),
		SemiMajor: f(5906.0e9), Year: f(90465.0 * day), Eccentricity: f(0.2488),
		Day: f(153.2820 * hour), Obliquity: f(122.53),
		TsAvg: f(50),
	}
	moonCp := []float64{8.9093e-9, -1.234e-5, 2.3616e-3, 2.7431, -3.6125}
	moon := Attributes{
		Name: "Moon", Gravity: f(1.62), SolarConst: f(1361.0), Pressure: f(3.0e-10),
		Albedo: f(0.12), AlbedoCoef: []float64{0.06, 0.25}, Emissivity: f(0.95),
		HeatFlow: f(0.018), Inertia: f(55.0),
		CondSurface: f(7.4e-4), CondDepth: f(3.4e-3), RhoSurface: f(1100), RhoDepth: f(1800),
		ScaleHeight: f(0.07), HeatCapacity: f(600), CpCoeff: moonCp,
		SemiMajor: earth.SemiMajor, Year: earth.Year, Eccentricity: earth.Eccentricity,
		Day: f(29.53059 * day), Obliquity: degrees(0.026878), Perihelion: f(0),
		TsAvg: f(250), TsMax: f(400), TsMin: f(95),
	}
	titan := Attributes{
		Name: "Titan", Gravity: f(1.35), SolarConst: saturn.SolarConst, Albedo: f(0.22),
		Emissivity: f(0.95), Pressure: f(1.5e5),
		SemiMajor: saturn.SemiMajor, Year: saturn.Year, Eccentricity: saturn.Eccentricity,
		Day: f(15.9452 * day), Obliquity: saturn.Obliquity,
		TsAvg: f(92), TsMax: f(94),
	}
	icyCp := []float64{90.0, 7.49}
	europa := Attributes{
		Name: "Europa", Gravity: f(1.31), Pressure: f(1.0e-7),
		SolarConst: jupiter.SolarConst, Albedo: f(0.6), Emissivity: f(0.90), HeatFlow: f(0.030),
		CondSurface: f(2e-3), CondDepth: f(1e-2), RhoSurface: f(100), RhoDepth: f(450),
		ScaleHeight: f(0.07), HeatCapacity: f(900), CpCoeff: icyCp,
		SemiMajor: jupiter.SemiMajor, Year: jupiter.Year, Eccentricity: jupiter.Eccentricity,
		Day: f(3.06822e5), Obliquity: jupiter.Obliquity, Perihelion: f(0),
		TsAvg: f(103), TsMax: f(130),
	}
	ganymede := Attributes{
		Name: "Ganymede", Gravity: f(1.43), Pressure: f(1.0e-6),
		SolarConst: jupiter.SolarConst, Albedo: f(0.4), Emissivity: f(0.90), HeatFlow: f(0.030),
		CondSurface: f(2e-3), CondDepth: f(1e-2), RhoSurface: f(100), RhoDepth: f(450),
		ScaleHeight: f(0.07), HeatCapacity: f(900), CpCoeff: icyCp,
		SemiMajor: jupiter.SemiMajor, Year: jupiter.Year, Eccentricity: jupiter.Eccentricity,
		Day: f(6.18192e5), Obliquity: jupiter.Obliquity, Perihelion: f(0),
		TsAvg: f(110), TsMax: f(140),
	}
	triton := Attributes{
		Name: "Triton", Gravity: f(0.78), Pressure: f(2e-5),
		SolarConst: neptune.SolarConst, Albedo: f(0.76), Emissivity: f(0.95),
		SemiMajor: neptune.SemiMajor, Year: neptune.Year, Eccentricity: neptune.Eccentricity,
		Day: f(5.877 * day), Obliquity: f(156.0),
		TsAvg: f(34.5),
	}
	bennu := Attributes{
		Name: "Bennu", FixedRadiusKm: f(0.2625),
		Gravity: f(1.0e-5), SolarConst: f(1072.7), Albedo: f(0.045), Emissivity: f(0.95),
		HeatFlow: f(0.0),
		CondSurface: moon.CondSurface, CondDepth: moon.CondDepth,
		RhoSurface: moon.RhoSurface, RhoDepth: moon.RhoDepth,
		ScaleHeight: moon.ScaleHeight, HeatCapacity: moon.HeatCapacity, CpCoeff: moonCp,
		SemiMajor: f(1.685e11), Year: earth.Year, Eccentricity: f(0.204),
		Day: f(15469.2), Obliquity: degrees(3.106686), Perihelion: f(0),
		TsAvg: f(270), TsMax: f(400),
	}

	return []Attributes{
		mercury, venus, earth, mars, jupiter, saturn, uranus, neptune, pluto,
		moon, titan, europa, ganymede, triton, bennu,
	}
}

// AttributesFor returns the attribute record of a body, matched by name
// ignoring case. "Luna" is accepted for the Moon.
func AttributesFor(name string) (Attributes, bool) {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "luna" {
		query = "moon"
	}
	for _, a := range attributes {
		if strings.ToLower(a.Name) == query {
			return a, true
		}
	}
	return Attributes{}, false
}

// AttributeNames lists the bodies that carry attributes, in table order
func AttributeNames() []string {
	out := make([]string, len(attributes))
	for i, a := range attributes {
		out[i] = a.Name
	}
	return out
}
