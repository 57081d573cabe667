package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/plume-impact-service/internal/domain"
)

// AssessmentTransformer implements Transformer: it parses a release request,
// fills in missing weather and receptors from the optional providers, and
// assesses it.
type AssessmentTransformer struct {
	assessor     *domain.Assessor
	weather      domain.WeatherProvider
	receptors    domain.ReceptorFinder
	searchRadius float64
	logger       *slog.Logger
}

// NewTransformer creates an AssessmentTransformer. Pass nil providers to
// disable enrichment. A non-positive searchRadius searches out to the plume
// length the assessor will use for each request.
func NewTransformer(assessor *domain.Assessor, weather domain.WeatherProvider, receptors domain.ReceptorFinder, searchRadius float64, logger *slog.Logger) *AssessmentTransformer {
	return &AssessmentTransformer{
		assessor:     assessor,
		weather:      weather,
		receptors:    receptors,
		searchRadius: searchRadius,
		logger:       logger,
	}
}

// Transform parses a raw message and assesses it. Parse failures are returned
// so the pipeline can skip the message.
func (t *AssessmentTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.Assessment, error) {
	req, err := domain.ParseReleaseRequest(raw)
	if err != nil {
		return domain.Assessment{}, err
	}
	return t.AssessRequest(ctx, req), nil
}

// AssessRequest enriches an already parsed request and assesses it. The
// weather and receptor snapshot is fixed before the plume is computed.
func (t *AssessmentTransformer) AssessRequest(ctx context.Context, req domain.ReleaseRequest) domain.Assessment {
	req = domain.EnrichWithWeather(ctx, req, t.weather, t.logger)
	radius := t.searchRadius
	if !(radius > 0) {
		radius = t.assessor.PlumeLength(req)
	}
	req = domain.EnrichWithReceptors(ctx, req, t.receptors, radius, t.logger)

	a := t.assessor.Assess(req)
	t.logger.Debug("request assessed",
		"request_id", a.RequestID,
		"revision", a.Revision,
		"stability", a.Summary.Stability,
		"impacted", a.Summary.ImpactedCount,
		"weather_source", a.WeatherSource,
		"receptor_source", a.ReceptorSource,
	)
	return a
}
