package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidCoordinates is returned for a release source outside the valid
// latitude/longitude range.
var ErrInvalidCoordinates = errors.New("invalid source coordinates")

// ParseReleaseRequest deserializes a RawEvent's value into a ReleaseRequest.
// A request without an id takes the message key, or a content hash when the
// key is empty too.
func ParseReleaseRequest(raw RawEvent) (ReleaseRequest, error) {
	req, err := DecodeReleaseRequest(raw.Value)
	if err != nil {
		return ReleaseRequest{}, err
	}
	if req.ID == "" && len(raw.Key) > 0 {
		req.ID = string(raw.Key)
	}
	if req.ID == "" {
		req.ID = generateRequestID(raw.Value)
	}
	return req, nil
}

// DecodeReleaseRequest parses and normalizes a release request document.
func DecodeReleaseRequest(data []byte) (ReleaseRequest, error) {
	var req ReleaseRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return ReleaseRequest{}, fmt.Errorf("parse release request: %w", err)
	}
	return NormalizeReleaseRequest(req)
}

// NormalizeReleaseRequest validates the source location, normalizes the
// source kind, caps the plume length, and drops receptors that carry unusable
// coordinates.
func NormalizeReleaseRequest(req ReleaseRequest) (ReleaseRequest, error) {
	req.ID = strings.TrimSpace(req.ID)
	req.Chemical = strings.TrimSpace(req.Chemical)

	if req.Source != nil {
		if !validCoordinates(req.Source.Latitude, req.Source.Longitude) {
			return ReleaseRequest{}, fmt.Errorf("%w: lat=%v lon=%v", ErrInvalidCoordinates, req.Source.Latitude, req.Source.Longitude)
		}
		source := *req.Source
		source.Kind = normalizeSourceKind(source.Kind)
		if !(source.EmissionRate > 0) {
			source.EmissionRate = 0
		}
		req.Source = &source
	}

	switch {
	case !(req.PlumeLengthMeters > 0):
		req.PlumeLengthMeters = 0
	case req.PlumeLengthMeters > MaxPlumeLengthMeters:
		req.PlumeLengthMeters = MaxPlumeLengthMeters
	}

	if req.Release != nil {
		release := *req.Release
		release.Model = strings.ToLower(strings.TrimSpace(release.Model))
		req.Release = &release
	}

	if len(req.Receptors) > 0 {
		kept := make([]Receptor, 0, len(req.Receptors))
		for _, r := range req.Receptors {
			if validCoordinates(r.Latitude, r.Longitude) {
				kept = append(kept, r)
			}
		}
		req.Receptors = kept
	}
	return req, nil
}

// normalizeSourceKind accepts GAS, LIQUID and CHEMICAL in any case. Anything
// else is treated as a gas release.
func normalizeSourceKind(kind SourceKind) SourceKind {
	switch SourceKind(strings.ToUpper(strings.TrimSpace(string(kind)))) {
	case SourceLiquid:
		return SourceLiquid
	case SourceChemical:
		return SourceChemical
	default:
		return SourceGas
	}
}

func validCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// generateRequestID derives a stable id from the raw payload so a replayed
// message maps to the same assessment.
func generateRequestID(payload []byte) string {
	hash := sha256.Sum256(payload)
	return "req-" + hex.EncodeToString(hash[:8])
}
