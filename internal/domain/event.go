package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// SourceKind is the physical form of the released material.
type SourceKind string

const (
	SourceGas      SourceKind = "GAS"
	SourceLiquid   SourceKind = "LIQUID"
	SourceChemical SourceKind = "CHEMICAL"
)

// ReleaseSource is the point release being assessed. EmissionRate (Q) is a
// unit-agnostic mass or volume per second; concentrations carry the same unit
// per cubic meter.
type ReleaseSource struct {
	Latitude     float64    `json:"latitude"`
	Longitude    float64    `json:"longitude"`
	EmissionRate float64    `json:"emission_rate"`
	Kind         SourceKind `json:"source_kind"`
}

// WeatherObservation is a point-in-time weather snapshot. Optional fields are
// pointers; a nil WindDirection means no plume can be computed.
type WeatherObservation struct {
	WindSpeed     *float64 `json:"wind_speed_mps,omitempty"`     // m/s
	WindDirection *float64 `json:"wind_direction_deg,omitempty"` // degrees the wind blows from
	Temperature   float64  `json:"temperature_c"`
	Humidity      *float64 `json:"humidity_pct,omitempty"`
	Condition     string   `json:"condition,omitempty"`
}

// Receptor is a point of interest checked for exposure.
type Receptor struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ImpactedReceptor is a receptor found inside a plume, with its position
// relative to the plume axis and the estimated concentration there.
type ImpactedReceptor struct {
	Receptor
	DownwindDistance       float64 `json:"downwind_distance_m"`
	CrosswindDistance      float64 `json:"crosswind_distance_m"` // positive to the right of the plume axis
	Distance               float64 `json:"distance_m"`
	EstimatedConcentration float64 `json:"estimated_concentration"`
}

// ReleaseScenario selects a source strength model used to derive the emission
// rate when the request does not carry one.
type ReleaseScenario struct {
	Model                  string  `json:"model"` // "puddle" or "tank"
	PuddleAreaSquareMeters float64 `json:"puddle_area_m2,omitempty"`
}

// Enrichment outcomes recorded on a request for weather and receptors.
const (
	EnrichmentRequest  = "request"
	EnrichmentProvider = "provider"
	EnrichmentFailed   = "failed"
	EnrichmentNone     = "none"
)

// ReleaseRequest is one calculation request as consumed from the source topic,
// the HTTP API, or the assess command.
type ReleaseRequest struct {
	ID                string              `json:"id"`
	Revision          int64               `json:"revision,omitempty"`
	Source            *ReleaseSource      `json:"source,omitempty"`
	Chemical          string              `json:"chemical,omitempty"`
	Release           *ReleaseScenario    `json:"release,omitempty"`
	Weather           *WeatherObservation `json:"weather,omitempty"`
	Receptors         []Receptor          `json:"receptors,omitempty"`
	PlumeLengthMeters float64             `json:"plume_length_m,omitempty"`

	WeatherSource  string `json:"weather_source,omitempty"`
	ReceptorSource string `json:"receptor_source,omitempty"`
}

// HazardSummary condenses an assessment for display and alerting.
type HazardSummary struct {
	Stability             StabilityClass `json:"stability"`
	EmissionRate          float64        `json:"emission_rate"`
	ImpactedCount         int            `json:"impacted_count"`
	MaxConcentration      float64        `json:"max_concentration"`
	PlumeAreaSquareMeters float64        `json:"plume_area_m2"`
}

// Assessment is the atomic output unit: the plume and its impacted receptors
// computed from one consistent input snapshot.
type Assessment struct {
	ID             string              `json:"id"`
	RequestID      string              `json:"request_id"`
	Revision       int64               `json:"revision"`
	Source         *ReleaseSource      `json:"source,omitempty"`
	Chemical       string              `json:"chemical,omitempty"`
	Weather        *WeatherObservation `json:"weather,omitempty"`
	WeatherSource  string              `json:"weather_source,omitempty"`
	ReceptorSource string              `json:"receptor_source,omitempty"`
	Plume          *Plume              `json:"plume"`
	Impacts        []ImpactedReceptor  `json:"impacts"`
	Summary        HazardSummary       `json:"summary"`
	ProcessedAt    time.Time           `json:"processed_at"`
}
