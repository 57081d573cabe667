package domain

import (
	"fmt"
	"strings"
)

// NoImpactsSummary is rendered when no receptor lies inside the plume.
const NoImpactsSummary = "No receptors inside the plume."

// FormatImpactSummary renders impacted receptors as numbered lines in input
// order.
func FormatImpactSummary(impacts []ImpactedReceptor) string {
	if len(impacts) == 0 {
		return NoImpactsSummary
	}
	var b strings.Builder
	for i, imp := range impacts {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s (%s) — Estimated Concentration: %s",
			i+1, imp.Name, imp.Kind, formatConcentration(imp.EstimatedConcentration))
	}
	return b.String()
}

func formatConcentration(c float64) string {
	if c != 0 && (c < 0.001 || c >= 1e6) {
		return fmt.Sprintf("%.3e", c)
	}
	return fmt.Sprintf("%.4f", c)
}
