// Package prompt builds the system and instruction prompts for the
// brand and supplier agents.
package prompt

import (
	"fmt"
	"strings"

	"parley/internal/catalog"
)

// BrandSystem is the brand agent's standing identity and negotiation
// brief, shared by every supplier thread.
func BrandSystem(products []catalog.Product, suppliers []catalog.Supplier, quantities map[string]int, note string) string {
	var b strings.Builder
	b.WriteString("You are Alex Chen, Senior Procurement Manager at UrbanStride Footwear.\n\n")
	b.WriteString("You are sourcing the following products:\n")
	for _, product := range products {
		fmt.Fprintf(&b, "  - %s (code: %s), qty: %d units\n", product.Name, product.Code, quantities[product.Code])
	}
	b.WriteString("\nYou know these suppliers and their quality ratings:\n")
	for _, supplier := range suppliers {
		fmt.Fprintf(&b, "  - %s (id: %d): quality %.1f/5, lead time %d days, payment terms: %s\n",
			supplier.Name, supplier.ID, supplier.QualityRating, supplier.BaseLeadTimeDays, supplier.PaymentTerms)
	}
	if note != "" {
		fmt.Fprintf(&b, "\nThe brand team has this additional note: %s\n", note)
	}
	b.WriteString("\nYour goal: negotiate the best overall deal balancing cost, quality, lead time, and payment terms. ")
	b.WriteString("Push for lower prices, better terms, and faster delivery. Be professional but firm. ")
	b.WriteString("Do not reveal what other suppliers are quoting in exact figures — only use relative comparisons ")
	b.WriteString("(e.g. 'another supplier came in lower on price').\n\n")
	b.WriteString("IMPORTANT: Write ready-to-send messages. NEVER use bracket placeholders such as [Name], [Company], ")
	b.WriteString("[Your Contact Information], [insert deadline], [Supplier Name], or any other [bracketed text]. ")
	b.WriteString("Use your real identity above, address suppliers by their known name, and omit any information ")
	b.WriteString("you don't have rather than inserting a placeholder.")
	return b.String()
}

// RFQInstruction asks the brand agent for the round-1 opening message.
func RFQInstruction(supplierName string) string {
	return fmt.Sprintf("Generate an RFQ message addressed to %s, listing the products and quantities you need quoted. "+
		"Keep it concise and professional. Sign off with your name and title only — no placeholder contact information.",
		supplierName)
}

// CounterInstruction asks the brand agent for a counter-proposal.
// Disclosure, when non-empty, is attached as private context that must
// never be echoed verbatim to the supplier.
func CounterInstruction(supplierName, disclosure string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are negotiating with %s. Based on their response above, write a professional "+
		"counter-proposal or follow-up addressed to them by name. Push for better pricing, terms, or lead time. "+
		"If you have context about competing offers, use it as leverage without revealing exact figures.",
		supplierName)
	if disclosure != "" {
		fmt.Fprintf(&b, "\n\n[Internal context — do NOT quote exact numbers to the supplier: %s]", disclosure)
	}
	return b.String()
}

// FinalOffer pairs a supplier with its last reply for the decision prompt.
type FinalOffer struct {
	Supplier catalog.Supplier
	Text     string
}

// DecisionInstruction asks the brand agent for the final structured
// winner selection.
func DecisionInstruction(offers []FinalOffer) string {
	var b strings.Builder
	b.WriteString("You have completed negotiations with all suppliers. Here is a summary of their final offers:\n")
	for _, offer := range offers {
		fmt.Fprintf(&b, "\n--- %s (id: %d) ---\n%s\n", offer.Supplier.Name, offer.Supplier.ID, offer.Text)
	}
	b.WriteString("\nSupplier profiles for reference:\n")
	for _, offer := range offers {
		supplier := offer.Supplier
		fmt.Fprintf(&b, "  - %s (id: %d): quality %.1f/5, lead time %d days, payment: %s\n",
			supplier.Name, supplier.ID, supplier.QualityRating, supplier.BaseLeadTimeDays, supplier.PaymentTerms)
	}
	b.WriteString("\nSelect the best supplier considering cost, quality rating, lead time, and payment terms. ")
	b.WriteString("Provide a detailed comparison and clear reasoning. ")
	b.WriteString("The comparison field must contain one entry per supplier.")
	return b.String()
}
