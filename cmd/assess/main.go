// Command assess runs the plume assessment on release requests read from a
// JSON file and prints the result. It uses the same domain package as the
// service, so the output matches what the pipeline publishes.
//
// Usage:
//
//	go run ./cmd/assess -in request.json -format summary
//	go run ./cmd/assess -in data/mock/release_requests.json -format geojson -geometry wedge
//
// The input is a single release request object, an array of requests, or an
// array of {"request": {...}} fixture entries.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/plume-impact-service/internal/adapter/catalog"
	"github.com/couchcryptid/plume-impact-service/internal/domain"
)

const (
	formatJSON    = "json"
	formatGeoJSON = "geojson"
	formatSummary = "summary"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("assess", flag.ContinueOnError)
	in := fs.String("in", "-", "release request JSON file, - for stdin")
	format := fs.String("format", formatJSON, "output format: json, geojson or summary")
	geometry := fs.String("geometry", domain.GeometryGaussian, "plume geometry: gaussian or wedge")
	samples := fs.Int("samples", domain.DefaultPlumeSamples, "downwind samples for the gaussian geometry")
	width := fs.Float64("width", domain.DefaultWidthMultiplier, "sigma-y width multiplier for the gaussian geometry")
	length := fs.Float64("length", domain.DefaultPlumeLengthMeters, "default plume length in meters")
	catalogPath := fs.String("catalog", "", "chemical catalog YAML file, built-in catalog when empty")
	at := fs.String("at", "", "fixed RFC 3339 processing time for reproducible output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch *format {
	case formatJSON, formatGeoJSON, formatSummary:
	default:
		return fmt.Errorf("unknown format %q: want json, geojson or summary", *format)
	}

	if *at != "" {
		ts, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("parse -at: %w", err)
		}
		domain.SetClock(clockwork.NewFakeClockAt(ts))
		defer domain.SetClock(nil)
	}

	data, err := readInput(*in, stdin)
	if err != nil {
		return err
	}
	requests, err := decodeRequests(data)
	if err != nil {
		return err
	}

	chemicals, err := catalog.Load(*catalogPath)
	if err != nil {
		return err
	}
	builder, err := domain.NewPlumeBuilder(*geometry, *samples, *width)
	if err != nil {
		return err
	}
	assessor := domain.NewAssessor(builder, *length, chemicals)

	assessments := make([]domain.Assessment, 0, len(requests))
	for _, req := range requests {
		assessments = append(assessments, assessor.Assess(req))
	}

	switch *format {
	case formatGeoJSON:
		return writeFeatureCollection(stdout, assessments)
	case formatSummary:
		return writeSummaries(stdout, assessments)
	default:
		return writeJSON(stdout, assessments)
	}
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// decodeRequests accepts one request, an array of requests, or an array of
// fixture entries wrapping a request.
func decodeRequests(data []byte) ([]domain.ReleaseRequest, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	var docs []json.RawMessage
	if data[0] == '[' {
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, fmt.Errorf("parse request list: %w", err)
		}
	} else {
		docs = []json.RawMessage{data}
	}

	requests := make([]domain.ReleaseRequest, 0, len(docs))
	for i, doc := range docs {
		var wrapped struct {
			Request json.RawMessage `json:"request"`
		}
		if err := json.Unmarshal(doc, &wrapped); err == nil && len(wrapped.Request) > 0 {
			doc = wrapped.Request
		}
		req, err := domain.ParseReleaseRequest(domain.RawEvent{Value: doc})
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func writeJSON(w io.Writer, assessments []domain.Assessment) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(assessments) == 1 {
		return enc.Encode(assessments[0])
	}
	return enc.Encode(assessments)
}

type feature struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

// writeFeatureCollection renders each plume and each impacted receptor as a
// GeoJSON feature.
func writeFeatureCollection(w io.Writer, assessments []domain.Assessment) error {
	fc := featureCollection{Type: "FeatureCollection", Features: []feature{}}
	for _, a := range assessments {
		if a.Plume != nil {
			geom, err := a.Plume.GeoJSON()
			if err != nil {
				return fmt.Errorf("encode plume %s: %w", a.RequestID, err)
			}
			fc.Features = append(fc.Features, feature{
				Type:     "Feature",
				Geometry: geom,
				Properties: map[string]any{
					"request_id":    a.RequestID,
					"stability":     a.Summary.Stability,
					"axis_bearing":  a.Plume.AxisBearing,
					"plume_area_m2": a.Summary.PlumeAreaSquareMeters,
				},
			})
		}
		for _, imp := range a.Impacts {
			point := fmt.Sprintf(`{"type":"Point","coordinates":[%g,%g]}`, imp.Longitude, imp.Latitude)
			fc.Features = append(fc.Features, feature{
				Type:     "Feature",
				Geometry: json.RawMessage(point),
				Properties: map[string]any{
					"request_id":              a.RequestID,
					"id":                      imp.ID,
					"name":                    imp.Name,
					"kind":                    imp.Kind,
					"downwind_distance_m":     imp.DownwindDistance,
					"crosswind_distance_m":    imp.CrosswindDistance,
					"estimated_concentration": imp.EstimatedConcentration,
				},
			})
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(fc)
}

func writeSummaries(w io.Writer, assessments []domain.Assessment) error {
	var b strings.Builder
	for i, a := range assessments {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s (revision %d)\n", a.RequestID, a.Revision)
		if a.Plume == nil {
			fmt.Fprintf(&b, "  no plume: %s\n", noPlumeReason(a))
		} else {
			fmt.Fprintf(&b, "  stability %s, emission rate %.4g, plume %.0f m toward %.0f°, area %.0f m²\n",
				a.Summary.Stability, a.Summary.EmissionRate, a.Plume.LengthMeters, a.Plume.AxisBearing, a.Summary.PlumeAreaSquareMeters)
		}
		b.WriteString(domain.FormatImpactSummary(a.Impacts))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func noPlumeReason(a domain.Assessment) string {
	switch {
	case a.Source == nil:
		return "release source missing"
	case a.Weather == nil:
		return "weather unavailable"
	default:
		return "wind direction unavailable"
	}
}
