package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/plume-impact-service/internal/domain"
	"github.com/couchcryptid/plume-impact-service/internal/observability"
)

// maxRequestBytes bounds a calculation request body.
const maxRequestBytes = 1 << 20

// RequestAssessor enriches and assesses one release request.
type RequestAssessor interface {
	AssessRequest(ctx context.Context, req domain.ReleaseRequest) domain.Assessment
}

// AssessmentStore holds the latest assessment per request id.
type AssessmentStore interface {
	Publish(a domain.Assessment) bool
	Get(requestID string) (domain.Assessment, bool)
}

// API serves on-demand dispersion calculations and the latest published
// assessments.
type API struct {
	assessor RequestAssessor
	store    AssessmentStore
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewAPI creates the calculation API.
func NewAPI(assessor RequestAssessor, store AssessmentStore, metrics *observability.Metrics, logger *slog.Logger) *API {
	return &API{assessor: assessor, store: store, metrics: metrics, logger: logger}
}

// Routes returns the /api/v1 handler.
func (a *API) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/dispersion/calculate", a.handleCalculate)
	mux.HandleFunc("GET /api/v1/assessments/{id}", a.handleGetAssessment)
	return mux
}

func (a *API) handleCalculate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "read request body: "+err.Error())
		return
	}

	req, err := domain.ParseReleaseRequest(domain.RawEvent{Value: body})
	if err != nil {
		a.metrics.TransformErrors.Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	assessment := a.assessor.AssessRequest(r.Context(), req)
	if !a.store.Publish(assessment) {
		a.metrics.SupersededDropped.Inc()
		a.logger.Info("dropping superseded assessment", "request_id", assessment.RequestID, "revision", assessment.Revision)
		writeError(w, http.StatusConflict, fmt.Sprintf("request %q has a newer revision than %d", assessment.RequestID, assessment.Revision))
		return
	}

	a.metrics.ImpactedReceptors.Observe(float64(assessment.Summary.ImpactedCount))
	if assessment.Plume != nil {
		a.metrics.PlumeArea.Observe(assessment.Summary.PlumeAreaSquareMeters)
	}
	writeJSON(w, http.StatusOK, assessment)
}

func (a *API) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	assessment, ok := a.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no assessment for request %q", id))
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}
