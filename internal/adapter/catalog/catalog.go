// Package catalog implements domain.ChemicalCatalog from a YAML document.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/plume-impact-service/internal/domain"
)

//go:embed chemicals.yaml
var builtin []byte

// Catalog is an immutable, case-insensitive chemical property lookup.
type Catalog struct {
	chemicals map[string]domain.ChemicalProperties
}

type document struct {
	Chemicals map[string]yaml.Node `yaml:"chemicals"`
}

type entry struct {
	Aliases              []string `yaml:"aliases"`
	VaporPressurePa      float64  `yaml:"vapor_pressure_pa"`
	LiquidDensity        float64  `yaml:"liquid_density_kg_m3"`
	HeatOfVaporization   float64  `yaml:"heat_of_vaporization_j_kg"`
	TemperatureK         float64  `yaml:"temperature_k"`
	TankPressurePa       float64  `yaml:"tank_pressure_pa"`
	TankTemperatureK     float64  `yaml:"tank_temperature_k"`
	HoleDiameterM        float64  `yaml:"hole_diameter_m"`
	DischargeCoefficient float64  `yaml:"discharge_coefficient"`
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(builtin)
}

// Load reads a catalog file. An empty path returns the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chemical catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalog document. Fields missing from an entry keep the
// values from domain.DefaultChemicalProperties.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse chemical catalog: %w", err)
	}

	c := &Catalog{chemicals: make(map[string]domain.ChemicalProperties, len(doc.Chemicals))}
	for name, node := range doc.Chemicals {
		e := fromProperties(domain.DefaultChemicalProperties())
		if err := node.Decode(&e); err != nil {
			return nil, fmt.Errorf("parse chemical %q: %w", name, err)
		}
		if e.VaporPressurePa < 0 || e.LiquidDensity <= 0 || e.TemperatureK <= 0 {
			return nil, fmt.Errorf("parse chemical %q: vapor pressure, density and temperature must be positive", name)
		}
		props := e.toProperties()
		for _, key := range append([]string{name}, e.Aliases...) {
			c.chemicals[normalize(key)] = props
		}
	}
	return c, nil
}

// Lookup returns the properties for a chemical name or alias.
func (c *Catalog) Lookup(name string) (domain.ChemicalProperties, bool) {
	p, ok := c.chemicals[normalize(name)]
	return p, ok
}

// Len returns the number of names and aliases in the catalog.
func (c *Catalog) Len() int {
	return len(c.chemicals)
}

func normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func fromProperties(p domain.ChemicalProperties) entry {
	return entry{
		VaporPressurePa:      p.VaporPressurePa,
		LiquidDensity:        p.LiquidDensity,
		HeatOfVaporization:   p.HeatOfVaporization,
		TemperatureK:         p.TemperatureK,
		TankPressurePa:       p.TankPressurePa,
		TankTemperatureK:     p.TankTemperatureK,
		HoleDiameterM:        p.HoleDiameterM,
		DischargeCoefficient: p.DischargeCoefficient,
	}
}

func (e entry) toProperties() domain.ChemicalProperties {
	return domain.ChemicalProperties{
		VaporPressurePa:      e.VaporPressurePa,
		LiquidDensity:        e.LiquidDensity,
		HeatOfVaporization:   e.HeatOfVaporization,
		TemperatureK:         e.TemperatureK,
		TankPressurePa:       e.TankPressurePa,
		TankTemperatureK:     e.TankTemperatureK,
		HoleDiameterM:        e.HoleDiameterM,
		DischargeCoefficient: e.DischargeCoefficient,
	}
}
