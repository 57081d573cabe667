// Command validate performs end-to-end integrity checks on the release request
// fixtures: every request parses, every plume is a closed ring anchored at the
// source, every impacted receptor really lies inside its plume, and repeated
// assessments are identical.
//
// Usage:
//
//	go run ./cmd/validate -fixture data/mock/release_requests.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"slices"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/plume-impact-service/internal/adapter/catalog"
	"github.com/couchcryptid/plume-impact-service/internal/domain"
)

// fixture is one entry of the release request fixture file.
type fixture struct {
	ExpectedStability domain.StabilityClass `json:"expected_stability"`
	ExpectedImpacts   []string              `json:"expected_impacts"`
	Request           json.RawMessage       `json:"request"`
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// assessed pairs a parsed request with its assessment.
type assessed struct {
	fixture    fixture
	request    domain.ReleaseRequest
	assessment domain.Assessment
}

func main() {
	fixturePath := flag.String("fixture", "data/mock/release_requests.json", "path to the release request fixture")
	catalogPath := flag.String("catalog", "", "chemical catalog YAML file, built-in catalog when empty")
	flag.Parse()

	if code := run(*fixturePath, *catalogPath); code != 0 {
		os.Exit(code)
	}
}

func run(fixturePath, catalogPath string) int {
	// Fixed clock so repeated assessments compare equal.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Plume Assessment Integrity Validation ===")
	fmt.Println()

	fixtures, err := loadFixtures(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load fixtures: %v\n", err)
		return 1
	}
	chemicals, err := catalog.Load(catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load catalog: %v\n", err)
		return 1
	}

	gaussian := domain.NewAssessor(nil, 0, chemicals)
	wedge := domain.NewAssessor(domain.WedgeBuilder{}, 0, chemicals)

	parsePhase, results := validateParsing(fixtures, gaussian)
	phases := []*phase{
		parsePhase,
		validateGeometry(results),
		validateImpacts(results),
		validateDeterminism(results, gaussian),
		validateWedge(results, wedge),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Requests: %d fixtures, %d assessed, %d with plume\n",
		len(fixtures), len(results), countPlumes(results))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadFixtures(path string) ([]fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fixtures []fixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return nil, err
	}
	return fixtures, nil
}

func countPlumes(results []assessed) int {
	n := 0
	for _, r := range results {
		if r.assessment.Plume != nil {
			n++
		}
	}
	return n
}

// ── Phase 1: Parsing ──

func validateParsing(fixtures []fixture, assessor *domain.Assessor) (*phase, []assessed) {
	p := &phase{name: "Phase 1: Request Parsing"}
	results := make([]assessed, 0, len(fixtures))
	seen := map[string]int{}

	for i, f := range fixtures {
		req, err := domain.ParseReleaseRequest(domain.RawEvent{Value: f.Request})
		if err != nil {
			p.errorf("fixture %d: %v", i, err)
			continue
		}
		key := fmt.Sprintf("%s@%d", req.ID, req.Revision)
		if prev, ok := seen[key]; ok {
			p.errorf("fixture %d: duplicate request %s (first at %d)", i, key, prev)
		}
		seen[key] = i

		a := assessor.Assess(req)
		if a.Summary.Stability != f.ExpectedStability {
			p.errorf("%s: stability %s, expected %s", req.ID, a.Summary.Stability, f.ExpectedStability)
		}
		results = append(results, assessed{fixture: f, request: req, assessment: a})
	}
	return p, results
}

// ── Phase 2: Plume Geometry ──

func validateGeometry(results []assessed) *phase {
	p := &phase{name: "Phase 2: Plume Geometry"}

	for _, r := range results {
		req, plume := r.request, r.assessment.Plume
		hasDirection := req.Weather != nil && req.Weather.WindDirection != nil && req.Source != nil
		if !hasDirection {
			if plume != nil {
				p.errorf("%s: plume built without wind direction", req.ID)
			}
			continue
		}
		if plume == nil {
			p.errorf("%s: no plume despite wind direction", req.ID)
			continue
		}

		ring := plume.Ring
		if len(ring) != 2*domain.DefaultPlumeSamples+2 {
			p.errorf("%s: ring has %d vertices, expected %d", req.ID, len(ring), 2*domain.DefaultPlumeSamples+2)
		}
		if len(ring) < 4 {
			p.errorf("%s: ring too short (%d vertices)", req.ID, len(ring))
			continue
		}
		if ring[0] != ring[len(ring)-1] {
			p.errorf("%s: ring not closed", req.ID)
		}
		if ring[0].X != req.Source.Longitude || ring[0].Y != req.Source.Latitude {
			p.errorf("%s: ring starts at (%g, %g), not at the source", req.ID, ring[0].Y, ring[0].X)
		}
		wantBearing := math.Mod(*req.Weather.WindDirection+180, 360)
		if math.Abs(plume.AxisBearing-wantBearing) > 1e-9 {
			p.errorf("%s: axis bearing %g, expected %g", req.ID, plume.AxisBearing, wantBearing)
		}
		if !(r.assessment.Summary.PlumeAreaSquareMeters > 0) {
			p.errorf("%s: plume area %g is not positive", req.ID, r.assessment.Summary.PlumeAreaSquareMeters)
		}
	}
	return p
}

// ── Phase 3: Impacts ──

func validateImpacts(results []assessed) *phase {
	p := &phase{name: "Phase 3: Impacted Receptors"}

	for _, r := range results {
		a := r.assessment
		if a.Impacts == nil {
			p.errorf("%s: impacts is nil, expected an empty list", a.RequestID)
		}
		if a.Summary.ImpactedCount != len(a.Impacts) {
			p.errorf("%s: summary counts %d impacts, list has %d", a.RequestID, a.Summary.ImpactedCount, len(a.Impacts))
		}

		got := make([]string, 0, len(a.Impacts))
		last := -1
		for _, imp := range a.Impacts {
			got = append(got, imp.ID)
			idx := slices.IndexFunc(r.request.Receptors, func(rc domain.Receptor) bool { return rc.ID == imp.ID })
			if idx < 0 {
				p.errorf("%s: impacted receptor %s not in the request", a.RequestID, imp.ID)
				continue
			}
			if idx < last {
				p.errorf("%s: impacted receptor %s out of input order", a.RequestID, imp.ID)
			}
			last = idx
			if a.Plume == nil || !a.Plume.Contains(imp.Latitude, imp.Longitude) {
				p.errorf("%s: impacted receptor %s is outside the plume", a.RequestID, imp.ID)
			}
			if imp.EstimatedConcentration < 0 || math.IsNaN(imp.EstimatedConcentration) || math.IsInf(imp.EstimatedConcentration, 0) {
				p.errorf("%s: receptor %s has concentration %g", a.RequestID, imp.ID, imp.EstimatedConcentration)
			}
		}

		if a.Plume != nil {
			for _, rc := range r.request.Receptors {
				if a.Plume.Contains(rc.Latitude, rc.Longitude) && !slices.Contains(got, rc.ID) {
					p.errorf("%s: receptor %s is inside the plume but not reported", a.RequestID, rc.ID)
				}
			}
		}

		want := r.fixture.ExpectedImpacts
		if want == nil {
			want = []string{}
		}
		if diff := cmp.Diff(want, got); diff != "" {
			p.errorf("%s: impacted receptors mismatch (-want +got):\n%s", a.RequestID, diff)
		}
	}
	return p
}

// ── Phase 4: Determinism ──

func validateDeterminism(results []assessed, assessor *domain.Assessor) *phase {
	p := &phase{name: "Phase 4: Deterministic Assessment"}

	for _, r := range results {
		again := assessor.Assess(r.request)
		if diff := cmp.Diff(r.assessment, again); diff != "" {
			p.errorf("%s: repeated assessment differs (-first +second):\n%s", r.request.ID, diff)
		}
		if r.assessment.ID != domain.AssessmentID(r.request.ID, r.request.Revision) {
			p.errorf("%s: assessment id %s is not derived from the request", r.request.ID, r.assessment.ID)
		}
	}
	return p
}

// ── Phase 5: Wedge Geometry ──

func validateWedge(results []assessed, assessor *domain.Assessor) *phase {
	p := &phase{name: "Phase 5: Wedge Geometry"}

	for _, r := range results {
		a := assessor.Assess(r.request)
		if (a.Plume == nil) != (r.assessment.Plume == nil) {
			p.errorf("%s: wedge and gaussian disagree on whether a plume exists", r.request.ID)
			continue
		}
		if a.Plume == nil {
			continue
		}
		ring := a.Plume.Ring
		if ring[0] != ring[len(ring)-1] {
			p.errorf("%s: wedge ring not closed", r.request.ID)
		}
		if ring[0] != r.assessment.Plume.Ring[0] {
			p.errorf("%s: wedge and gaussian rings start at different vertices", r.request.ID)
		}
		if a.Plume.Stability != r.assessment.Plume.Stability {
			p.errorf("%s: wedge stability %s, gaussian %s", r.request.ID, a.Plume.Stability, r.assessment.Plume.Stability)
		}
	}
	return p
}
