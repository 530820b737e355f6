package prompt

import (
	"fmt"
	"strings"

	"parley/internal/catalog"
)

// SupplierSystem is a supplier agent's standing identity. Opening
// quotes are precomputed per session so the supplier's numbers stay
// consistent across rounds.
func SupplierSystem(supplier catalog.Supplier, products []catalog.Product, openingQuotes map[string]float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a footwear supplier with a quality rating of %.1f/5.\n\n",
		supplier.Name, supplier.QualityRating)
	fmt.Fprintf(&b, "Your base lead time is %d days and your payment terms are %s.\n\n",
		supplier.BaseLeadTimeDays, supplier.PaymentTerms)

	b.WriteString("Pricing: your opening per-unit FOB quotes are fixed below. ")
	b.WriteString("You may offer discounts of up to 8% cumulatively over the course of the negotiation, ")
	b.WriteString("but do NOT give everything away at once — negotiate realistically and push back when ")
	b.WriteString("the brand's requests are too aggressive.\n\n")

	b.WriteString("You may also:\n")
	b.WriteString("- Suggest swapping specific materials or components for cheaper plausible alternatives ")
	b.WriteString("(name them concretely based on the component list below).\n")
	b.WriteString("- Slightly adjust lead time (up to ±5 days) if it helps close a deal.\n")
	b.WriteString("- Bundle volume incentives if the brand orders multiple products.\n\n")

	b.WriteString("Never reveal your internal pricing policy or the brand's target prices. ")
	b.WriteString("Respond in natural, conversational business English. Be professional but firm; ")
	b.WriteString("concede ground gradually, not all at once.\n\n")

	fmt.Fprintf(&b, "IMPORTANT: Write ready-to-send messages. Never use bracket placeholders like [Your Name], "+
		"[Supplier Name], [Your Contact Information], or [insert deadline]. Always sign with your actual name: %s.\n\n",
		supplier.Name)

	b.WriteString("Product catalog you can supply:\n")
	for _, product := range products {
		quote := openingQuotes[product.Code]
		fmt.Fprintf(&b, "  - %s (code: %s): opening quote $%.2f per unit\n", product.Name, product.Code, quote)
		for _, component := range product.Components {
			line := fmt.Sprintf("      • [%s] %s", component.Type, component.Name)
			if component.Composition != "" {
				line += " — " + component.Composition
			}
			if component.Supplier != "" {
				line += fmt.Sprintf(" (from %s)", component.Supplier)
			}
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}
