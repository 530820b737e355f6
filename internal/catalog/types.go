package catalog

// Supplier is the static negotiation profile of one counterparty.
// Profiles are immutable for the lifetime of a session.
type Supplier struct {
	ID               int     `json:"id" yaml:"id"`
	Name             string  `json:"name" yaml:"name"`
	QualityRating    float64 `json:"quality_rating" yaml:"quality_rating"`
	CostTier         string  `json:"cost_tier" yaml:"cost_tier"`
	BaseLeadTimeDays int     `json:"base_lead_time_days" yaml:"base_lead_time_days"`
	PaymentTerms     string  `json:"payment_terms" yaml:"payment_terms"`
	PriceMultiplier  float64 `json:"price_multiplier" yaml:"price_multiplier"`
}

type Product struct {
	Code         string      `json:"code"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	TargetFOB    float64     `json:"targetFob"`
	CategoryPath string      `json:"categoryPath"`
	Components   []Component `json:"components"`
}

// Component describes one bill-of-material line; all attribute fields
// are optional and omitted when empty.
type Component struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Composition string `json:"composition,omitempty"`
	Supplier    string `json:"supplier,omitempty"`
	Position    string `json:"position,omitempty"`
	Color       string `json:"color,omitempty"`
	Code        string `json:"code,omitempty"`
	Size        string `json:"size,omitempty"`
	Material    string `json:"material,omitempty"`
	Weight      string `json:"weight,omitempty"`
	Function    string `json:"function,omitempty"`
}
