package negotiation

import (
	"fmt"
	"strings"

	"parley/internal/catalog"
)

const peerSummaryHeader = "Other suppliers in this negotiation:"

// PeerSummary renders a redacted view of every supplier except
// excludeID for use as private brand context. It never includes the
// excluded supplier and never copies price figures from offers: each
// peer is reduced to a quoted/responded marker and a qualitative
// price posture derived from its static multiplier. A peer with no
// offer yet is treated as having sent empty text.
func PeerSummary(excludeID int, suppliers []catalog.Supplier, offers map[int]string) string {
	var b strings.Builder
	b.WriteString(peerSummaryHeader)
	for _, supplier := range suppliers {
		if supplier.ID == excludeID {
			continue
		}
		mention := "has responded"
		if strings.Contains(offers[supplier.ID], "$") {
			mention = "has quoted"
		}
		posture := "higher-priced"
		if supplier.PriceMultiplier <= 1.0 {
			posture = "competitive"
		}
		fmt.Fprintf(&b, "\n  - %s (quality %.1f/5, lead %dd) %s — appears %s.",
			supplier.Name, supplier.QualityRating, supplier.BaseLeadTimeDays, mention, posture)
	}
	return b.String()
}
