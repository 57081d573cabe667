package domain

import "math"

// Physical constants for the source strength models.
const (
	ambientPressurePa = 101325.0
	referenceHeightM  = 10.0
	roughnessLengthM  = 0.03 // open country
	airGasConstant    = 287.05
	gravity           = 9.81
)

// ChemicalProperties are the material properties used by the source strength
// models.
type ChemicalProperties struct {
	VaporPressurePa      float64
	LiquidDensity        float64 // kg/m3
	HeatOfVaporization   float64 // J/kg
	TemperatureK         float64
	TankPressurePa       float64
	TankTemperatureK     float64
	HoleDiameterM        float64
	DischargeCoefficient float64
}

// DefaultChemicalProperties returns the properties assumed for an unknown
// chemical: a water-like liquid at 25°C in an unpressurized tank with a 5 cm
// sharp-edged hole.
func DefaultChemicalProperties() ChemicalProperties {
	return ChemicalProperties{
		VaporPressurePa:      3000,
		LiquidDensity:        1000,
		HeatOfVaporization:   2.5e6,
		TemperatureK:         298.15,
		TankPressurePa:       ambientPressurePa,
		TankTemperatureK:     298.15,
		HoleDiameterM:        0.05,
		DischargeCoefficient: 0.61,
	}
}

// ChemicalCatalog looks up material properties by chemical name.
type ChemicalCatalog interface {
	Lookup(name string) (ChemicalProperties, bool)
}

// PuddleEvaporationRate estimates the evaporation rate in kg/s from a puddle of
// the given area under wind speed u.
func PuddleEvaporationRate(p ChemicalProperties, windSpeed, areaSquareMeters float64) float64 {
	if !(areaSquareMeters > 0) || !(windSpeed > 0) || !(p.TemperatureK > 0) {
		return 0
	}
	uStar := frictionVelocity(windSpeed)
	k := massTransferCoefficient(p.VaporPressurePa)
	saturated := p.VaporPressurePa / (airGasConstant * p.TemperatureK)
	rate := saturated * uStar * k * areaSquareMeters
	if !(rate > 0) {
		return 0
	}
	return rate
}

func frictionVelocity(windSpeed float64) float64 {
	return 0.03 * windSpeed / math.Log(referenceHeightM/roughnessLengthM)
}

func massTransferCoefficient(vaporPressurePa float64) float64 {
	if vaporPressurePa >= ambientPressurePa {
		vaporPressurePa = 0.99 * ambientPressurePa
	}
	correction := math.Log(1 - vaporPressurePa/ambientPressurePa)
	if correction == 0 {
		correction = 1e-6
	}
	return 0.1 / math.Abs(correction)
}

// TankDischargeRate estimates the liquid mass flow in kg/s through a hole in a
// tank wall using the Bernoulli orifice equation. The driving pressure is
// floored slightly above ambient so that a vented tank still drains.
func TankDischargeRate(p ChemicalProperties) float64 {
	if !(p.HoleDiameterM > 0) || !(p.LiquidDensity > 0) {
		return 0
	}
	holeArea := math.Pi * math.Pow(p.HoleDiameterM/2, 2)
	driving := p.TankPressurePa + p.LiquidDensity*gravity*p.HoleDiameterM
	if driving < ambientPressurePa {
		driving = 1.01 * ambientPressurePa
	}
	return p.DischargeCoefficient * holeArea * math.Sqrt(2*p.LiquidDensity*(driving-ambientPressurePa))
}

// ResolveEmissionRate fills in the source emission rate from the request's
// release scenario when the request does not carry a positive rate. Catalog
// properties for the named chemical override the defaults.
func ResolveEmissionRate(req ReleaseRequest, catalog ChemicalCatalog) ReleaseRequest {
	if req.Source == nil || req.Source.EmissionRate > 0 || req.Release == nil {
		return req
	}

	props := DefaultChemicalProperties()
	if catalog != nil && req.Chemical != "" {
		if found, ok := catalog.Lookup(req.Chemical); ok {
			props = found
		}
	}

	u := fallbackWindSpeed
	if req.Weather != nil && req.Weather.WindSpeed != nil {
		u = *req.Weather.WindSpeed
	}

	source := *req.Source
	switch req.Release.Model {
	case "puddle":
		source.EmissionRate = PuddleEvaporationRate(props, u, req.Release.PuddleAreaSquareMeters)
	case "tank":
		source.EmissionRate = TankDischargeRate(props)
	default:
		return req
	}
	req.Source = &source
	return req
}
