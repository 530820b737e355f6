package negotiation

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"parley/internal/catalog"
	"parley/internal/llm"
	"parley/internal/prompt"
)

// BrandAgent negotiates on behalf of the brand. One instance spans all
// supplier threads but each call sees only a single supplier's thread.
type BrandAgent struct {
	generator llm.Client
	suppliers []catalog.Supplier
	system    string
}

func NewBrandAgent(generator llm.Client, suppliers []catalog.Supplier, products []catalog.Product, quantities map[string]int, note string) *BrandAgent {
	return &BrandAgent{
		generator: generator,
		suppliers: suppliers,
		system:    prompt.BrandSystem(products, suppliers, quantities, note),
	}
}

// Opening generates the round-1 RFQ addressed to one supplier.
func (a *BrandAgent) Opening(ctx context.Context, supplier catalog.Supplier) (string, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: a.system},
		{Role: llm.RoleUser, Content: prompt.RFQInstruction(supplier.Name)},
	}
	reply, err := a.generator.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("brand rfq for %s: %w", supplier.Name, err)
	}
	return reply, nil
}

// Counter generates a counter-proposal from the supplier's thread.
// Disclosure, when non-empty, rides along as private context and is
// never placed in the supplier's own view.
func (a *BrandAgent) Counter(ctx context.Context, supplier catalog.Supplier, thread *Thread, disclosure string) (string, error) {
	messages := brandView(a.system, thread.Turns())
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: prompt.CounterInstruction(supplier.Name, disclosure),
	})
	reply, err := a.generator.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("brand counter for %s: %w", supplier.Name, err)
	}
	return reply, nil
}

// SupplierAgent answers for one supplier using only its own thread.
type SupplierAgent struct {
	generator llm.Client
	supplier  catalog.Supplier
	system    string
}

func NewSupplierAgent(generator llm.Client, supplier catalog.Supplier, products []catalog.Product, openingQuotes map[string]float64) *SupplierAgent {
	return &SupplierAgent{
		generator: generator,
		supplier:  supplier,
		system:    prompt.SupplierSystem(supplier, products, openingQuotes),
	}
}

// Reply generates the supplier's answer to the latest brand turn.
func (a *SupplierAgent) Reply(ctx context.Context, thread *Thread) (string, error) {
	messages := supplierView(a.system, thread.Turns())
	reply, err := a.generator.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%s reply: %w", a.supplier.Name, err)
	}
	return reply, nil
}

// brandView maps the canonical thread into the brand's chat history:
// its own turns are assistant turns, supplier turns are user input.
func brandView(system string, turns []Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(turns)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	for _, turn := range turns {
		role := llm.RoleAssistant
		if turn.Role == RoleSupplier {
			role = llm.RoleUser
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Content})
	}
	return messages
}

// supplierView is the inverse mapping.
func supplierView(system string, turns []Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(turns)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	for _, turn := range turns {
		role := llm.RoleAssistant
		if turn.Role == RoleBrand {
			role = llm.RoleUser
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Content})
	}
	return messages
}

// OpeningQuotes derives a supplier's opening per-unit quotes: target
// FOB times the supplier's multiplier with a ±3% jitter, rounded to
// cents. Computed once per session so quotes stay consistent.
func OpeningQuotes(supplier catalog.Supplier, products []catalog.Product, rng *rand.Rand) map[string]float64 {
	quotes := make(map[string]float64, len(products))
	for _, product := range products {
		jitter := 0.97 + 0.06*randomFloat(rng)
		price := product.TargetFOB * supplier.PriceMultiplier * jitter
		quotes[product.Code] = math.Round(price*100) / 100
	}
	return quotes
}

func randomFloat(rng *rand.Rand) float64 {
	if rng != nil {
		return rng.Float64()
	}
	return rand.Float64()
}
