package negotiation

import (
	"strings"
	"testing"

	"parley/internal/catalog"
)

func disclosureSuppliers() []catalog.Supplier {
	return []catalog.Supplier{
		{ID: 1, Name: "Supplier A", QualityRating: 4.0, BaseLeadTimeDays: 45, PriceMultiplier: 0.85},
		{ID: 2, Name: "Supplier B", QualityRating: 4.7, BaseLeadTimeDays: 25, PriceMultiplier: 1.05},
		{ID: 3, Name: "Supplier C", QualityRating: 4.0, BaseLeadTimeDays: 15, PriceMultiplier: 1.20},
	}
}

func TestPeerSummaryExcludesTarget(t *testing.T) {
	summary := PeerSummary(2, disclosureSuppliers(), nil)

	if strings.Contains(summary, "Supplier B") {
		t.Fatalf("summary leaked the excluded supplier:\n%s", summary)
	}
	for _, name := range []string{"Supplier A", "Supplier C"} {
		if !strings.Contains(summary, name) {
			t.Fatalf("summary missing peer %s:\n%s", name, summary)
		}
	}
}

func TestPeerSummaryQuoteDetection(t *testing.T) {
	offers := map[int]string{
		1: "We can offer $15.80 per unit FOB.",
		3: "Let me check with my production team.",
	}
	summary := PeerSummary(2, disclosureSuppliers(), offers)

	if !strings.Contains(summary, "Supplier A (quality 4.0/5, lead 45d) has quoted") {
		t.Fatalf("expected Supplier A marked as quoted:\n%s", summary)
	}
	if !strings.Contains(summary, "Supplier C (quality 4.0/5, lead 15d) has responded") {
		t.Fatalf("expected Supplier C marked as responded only:\n%s", summary)
	}
	if strings.Contains(summary, "$15.80") {
		t.Fatalf("summary copied an exact price:\n%s", summary)
	}
}

func TestPeerSummaryPricePosture(t *testing.T) {
	summary := PeerSummary(2, disclosureSuppliers(), nil)

	if !strings.Contains(summary, "Supplier A (quality 4.0/5, lead 45d) has responded — appears competitive.") {
		t.Fatalf("expected competitive posture for the sub-1.0 multiplier:\n%s", summary)
	}
	if !strings.Contains(summary, "Supplier C (quality 4.0/5, lead 15d) has responded — appears higher-priced.") {
		t.Fatalf("expected higher-priced posture for the 1.2 multiplier:\n%s", summary)
	}
}

func TestPeerSummaryMissingOfferTolerated(t *testing.T) {
	// No offers recorded at all: every peer still appears, just without
	// the quoted marker.
	summary := PeerSummary(1, disclosureSuppliers(), map[int]string{})
	if strings.Contains(summary, "has quoted") {
		t.Fatalf("no offers recorded, nothing should be quoted:\n%s", summary)
	}
	if !strings.HasPrefix(summary, "Other suppliers in this negotiation:") {
		t.Fatalf("unexpected header:\n%s", summary)
	}
}
