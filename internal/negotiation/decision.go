package negotiation

import (
	"context"
	"encoding/json"
	"fmt"

	"parley/internal/catalog"
	"parley/internal/llm"
	"parley/internal/prompt"
)

// decisionResponse mirrors the strict-schema wire shape. Strict
// structured outputs forbid dynamic object keys, so the comparison
// travels as an ordered array of rows tagged with supplier_name and is
// normalized into the map form afterwards.
type decisionResponse struct {
	WinnerSupplierID int             `json:"winner_supplier_id"`
	WinnerName       string          `json:"winner_name"`
	Reasoning        string          `json:"reasoning"`
	Comparison       []comparisonRow `json:"comparison"`
}

type comparisonRow struct {
	SupplierName string `json:"supplier_name"`
	ComparisonEntry
}

func decisionSchema() llm.ResponseFormat {
	row := llm.Object(map[string]*llm.Schema{
		"supplier_name":            llm.String(),
		"cost_assessment":          llm.String(),
		"quality_assessment":       llm.String(),
		"lead_time_assessment":     llm.String(),
		"payment_terms_assessment": llm.String(),
		"overall_score":            llm.String(),
	},
		"supplier_name",
		"cost_assessment",
		"quality_assessment",
		"lead_time_assessment",
		"payment_terms_assessment",
		"overall_score",
	)
	schema := llm.Object(map[string]*llm.Schema{
		"winner_supplier_id": llm.Integer(),
		"winner_name":        llm.String(),
		"reasoning":          llm.String(),
		"comparison":         llm.Array(row),
	},
		"winner_supplier_id",
		"winner_name",
		"reasoning",
		"comparison",
	)
	return llm.ResponseFormat{Name: "negotiation_decision", Schema: schema}
}

// Decide requests the final structured decision over the last offers.
func (a *BrandAgent) Decide(ctx context.Context, offers map[int]string) (Decision, error) {
	finalOffers := make([]prompt.FinalOffer, 0, len(a.suppliers))
	for _, supplier := range a.suppliers {
		finalOffers = append(finalOffers, prompt.FinalOffer{
			Supplier: supplier,
			Text:     offers[supplier.ID],
		})
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: a.system},
		{Role: llm.RoleUser, Content: prompt.DecisionInstruction(finalOffers)},
	}

	raw, err := a.generator.CompleteStructured(ctx, messages, decisionSchema())
	if err != nil {
		return Decision{}, fmt.Errorf("brand decision: %w", err)
	}

	var response decisionResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return Decision{}, fmt.Errorf("%w: decode decision payload: %v", ErrSchemaValidation, err)
	}
	return normalizeDecision(response, a.suppliers)
}

// normalizeDecision converts the ordered comparison rows into the
// name-keyed map and enforces the decision invariants: one entry per
// supplier with no duplicates or strays, and a known winner id.
// Violations are reported, never repaired.
func normalizeDecision(response decisionResponse, suppliers []catalog.Supplier) (Decision, error) {
	if len(response.Comparison) != len(suppliers) {
		return Decision{}, fmt.Errorf("%w: expected %d comparison entries, got %d",
			ErrSchemaValidation, len(suppliers), len(response.Comparison))
	}

	known := make(map[string]struct{}, len(suppliers))
	for _, supplier := range suppliers {
		known[supplier.Name] = struct{}{}
	}

	comparison := make(map[string]ComparisonEntry, len(response.Comparison))
	for _, row := range response.Comparison {
		if _, ok := known[row.SupplierName]; !ok {
			return Decision{}, fmt.Errorf("%w: comparison names unknown supplier %q",
				ErrSchemaValidation, row.SupplierName)
		}
		if _, dup := comparison[row.SupplierName]; dup {
			return Decision{}, fmt.Errorf("%w: duplicate comparison entry for %q",
				ErrSchemaValidation, row.SupplierName)
		}
		comparison[row.SupplierName] = row.ComparisonEntry
	}

	winnerKnown := false
	for _, supplier := range suppliers {
		if supplier.ID == response.WinnerSupplierID {
			winnerKnown = true
			break
		}
	}
	if !winnerKnown {
		return Decision{}, fmt.Errorf("%w: winner id %d does not match any supplier",
			ErrSchemaValidation, response.WinnerSupplierID)
	}

	return Decision{
		WinnerSupplierID: response.WinnerSupplierID,
		WinnerName:       response.WinnerName,
		Reasoning:        response.Reasoning,
		Comparison:       comparison,
	}, nil
}
