package prompt

import (
	"strings"
	"testing"

	"parley/internal/catalog"
)

func testSupplier() catalog.Supplier {
	return catalog.Supplier{
		ID:               2,
		Name:             "Supplier B",
		QualityRating:    4.7,
		CostTier:         "moderate",
		BaseLeadTimeDays: 25,
		PaymentTerms:     "30/70 (order/delivery)",
		PriceMultiplier:  1.05,
	}
}

func testProducts() []catalog.Product {
	return []catalog.Product{
		{
			Code:      "US-RUN-01",
			Name:      "Vector Runner",
			TargetFOB: 18.5,
			Components: []catalog.Component{
				{Type: "upper", Name: "Engineered mesh", Composition: "92% polyester", Supplier: "Meshworks"},
				{Type: "outsole", Name: "Carbon rubber outsole"},
			},
		},
	}
}

func TestBrandSystemContents(t *testing.T) {
	suppliers := []catalog.Supplier{testSupplier()}
	text := BrandSystem(testProducts(), suppliers, map[string]int{"US-RUN-01": 5000}, "prefer faster delivery")

	for _, want := range []string{
		"Alex Chen",
		"Vector Runner (code: US-RUN-01), qty: 5000 units",
		"Supplier B (id: 2): quality 4.7/5, lead time 25 days",
		"prefer faster delivery",
		"Do not reveal what other suppliers are quoting in exact figures",
		"NEVER use bracket placeholders",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("brand system prompt missing %q:\n%s", want, text)
		}
	}
}

func TestBrandSystemOmitsEmptyNote(t *testing.T) {
	text := BrandSystem(testProducts(), []catalog.Supplier{testSupplier()}, nil, "")
	if strings.Contains(text, "additional note") {
		t.Fatal("empty note must not produce a note section")
	}
}

func TestRFQInstructionAddressesSupplier(t *testing.T) {
	text := RFQInstruction("Supplier C")
	if !strings.Contains(text, "Supplier C") {
		t.Fatalf("RFQ instruction missing supplier name: %s", text)
	}
}

func TestCounterInstructionDisclosureWrapper(t *testing.T) {
	withDisclosure := CounterInstruction("Supplier A", "Other suppliers in this negotiation: ...")
	if !strings.Contains(withDisclosure, "[Internal context — do NOT quote exact numbers to the supplier:") {
		t.Fatalf("expected private-context wrapper:\n%s", withDisclosure)
	}

	without := CounterInstruction("Supplier A", "")
	if strings.Contains(without, "Internal context") {
		t.Fatal("empty disclosure must not add a context block")
	}
}

func TestSupplierSystemContents(t *testing.T) {
	text := SupplierSystem(testSupplier(), testProducts(), map[string]float64{"US-RUN-01": 19.43})

	for _, want := range []string{
		"You are Supplier B, a footwear supplier with a quality rating of 4.7/5",
		"base lead time is 25 days",
		"opening quote $19.43 per unit",
		"• [upper] Engineered mesh — 92% polyester (from Meshworks)",
		"Always sign with your actual name: Supplier B",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("supplier system prompt missing %q:\n%s", want, text)
		}
	}
}

func TestPromptsRenderWholeNumberRatings(t *testing.T) {
	supplier := testSupplier()
	supplier.QualityRating = 4

	brand := BrandSystem(testProducts(), []catalog.Supplier{supplier}, nil, "")
	if !strings.Contains(brand, "quality 4.0/5") {
		t.Fatalf("whole-number rating must keep one decimal place:\n%s", brand)
	}

	system := SupplierSystem(supplier, testProducts(), nil)
	if !strings.Contains(system, "quality rating of 4.0/5") {
		t.Fatalf("whole-number rating must keep one decimal place:\n%s", system)
	}
}

func TestDecisionInstructionListsOffers(t *testing.T) {
	offers := []FinalOffer{
		{Supplier: testSupplier(), Text: "Final price $18.90 with 20-day lead."},
	}
	text := DecisionInstruction(offers)

	if !strings.Contains(text, "--- Supplier B (id: 2) ---") {
		t.Fatalf("decision prompt missing offer header:\n%s", text)
	}
	if !strings.Contains(text, "Final price $18.90") {
		t.Fatalf("decision prompt missing offer text:\n%s", text)
	}
	if !strings.Contains(text, "one entry per supplier") {
		t.Fatalf("decision prompt missing comparison requirement:\n%s", text)
	}
}
