// Package negotiation drives a simulated brand-vs-suppliers
// negotiation: per-supplier conversation threads, the round scheduler,
// the competitive-disclosure policy, and the final structured decision.
package negotiation

import "errors"

type Role string

const (
	RoleBrand    Role = "brand"
	RoleSupplier Role = "supplier"
)

// Turn is one message in a supplier's conversation thread.
type Turn struct {
	Role    Role
	Content string
}

// ComparisonEntry is the per-supplier assessment inside a Decision.
type ComparisonEntry struct {
	CostAssessment         string `json:"cost_assessment"`
	QualityAssessment      string `json:"quality_assessment"`
	LeadTimeAssessment     string `json:"lead_time_assessment"`
	PaymentTermsAssessment string `json:"payment_terms_assessment"`
	OverallScore           string `json:"overall_score"`
}

// Decision is the final winner selection. Comparison is keyed by
// supplier display name and covers every supplier exactly once.
type Decision struct {
	WinnerSupplierID int
	WinnerName       string
	Reasoning        string
	Comparison       map[string]ComparisonEntry
}

// ErrSchemaValidation marks a structured decision response that broke
// the comparison or winner invariants.
var ErrSchemaValidation = errors.New("decision schema validation failed")
