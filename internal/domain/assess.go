package domain

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// assessmentNamespace scopes the name-based assessment ids.
var assessmentNamespace = uuid.MustParse("5b0c3c5e-8f2e-4a59-9d2b-7f4b1e2f6a10")

// Assessor turns a release request into an Assessment. It is safe for
// concurrent use.
type Assessor struct {
	builder       PlumeBuilder
	defaultLength float64
	catalog       ChemicalCatalog
}

// NewAssessor returns an Assessor. A nil builder uses the sigma-y geometry
// with default sampling; a non-positive length uses DefaultPlumeLengthMeters.
// catalog may be nil.
func NewAssessor(builder PlumeBuilder, defaultLengthMeters float64, catalog ChemicalCatalog) *Assessor {
	if builder == nil {
		builder = NewGaussianBuilder(DefaultPlumeSamples, DefaultWidthMultiplier)
	}
	return &Assessor{
		builder:       builder,
		defaultLength: plumeLength(defaultLengthMeters),
		catalog:       catalog,
	}
}

// PlumeLength returns the plume length used for req: the request's own length
// when set, otherwise the assessor default.
func (a *Assessor) PlumeLength(req ReleaseRequest) float64 {
	if req.PlumeLengthMeters > 0 {
		return plumeLength(req.PlumeLengthMeters)
	}
	return a.defaultLength
}

// Assess computes the plume and its impacted receptors from one snapshot of the
// request and returns them together. Missing weather, wind direction or source
// produces an assessment with a nil plume and no impacts.
func (a *Assessor) Assess(req ReleaseRequest) Assessment {
	req = ResolveEmissionRate(req, a.catalog)

	length := a.PlumeLength(req)

	var q float64
	if req.Source != nil {
		q = req.Source.EmissionRate
	}

	plume := a.builder.BuildPlume(req.Source, req.Weather, length)
	impacts := Analyze(plume, req.Receptors, req.Source, req.Weather, q)

	summary := HazardSummary{
		Stability:     Classify(req.Weather),
		EmissionRate:  q,
		ImpactedCount: len(impacts),
	}
	for _, imp := range impacts {
		if imp.EstimatedConcentration > summary.MaxConcentration {
			summary.MaxConcentration = imp.EstimatedConcentration
		}
	}
	if plume != nil {
		summary.Stability = plume.Stability
		summary.PlumeAreaSquareMeters = finiteOrZero(plume.AreaSquareMeters())
	}

	return Assessment{
		ID:             AssessmentID(req.ID, req.Revision),
		RequestID:      req.ID,
		Revision:       req.Revision,
		Source:         req.Source,
		Chemical:       req.Chemical,
		Weather:        req.Weather,
		WeatherSource:  req.WeatherSource,
		ReceptorSource: req.ReceptorSource,
		Plume:          plume,
		Impacts:        impacts,
		Summary:        summary,
		ProcessedAt:    clock.Now().UTC(),
	}
}

// AssessmentID returns the deterministic id of the assessment for a request
// revision.
func AssessmentID(requestID string, revision int64) string {
	return uuid.NewSHA1(assessmentNamespace, fmt.Appendf(nil, "%s|%d", requestID, revision)).String()
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
