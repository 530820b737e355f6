package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultSuppliers returns the built-in three-supplier roster used when
// no roster file is configured.
func DefaultSuppliers() []Supplier {
	return []Supplier{
		{
			ID:               1,
			Name:             "Supplier A",
			QualityRating:    4.0,
			CostTier:         "cheapest",
			BaseLeadTimeDays: 45,
			PaymentTerms:     "33/33/33 (order/shipment/delivery)",
			PriceMultiplier:  0.85,
		},
		{
			ID:               2,
			Name:             "Supplier B",
			QualityRating:    4.7,
			CostTier:         "moderate",
			BaseLeadTimeDays: 25,
			PaymentTerms:     "30/70 (order/delivery)",
			PriceMultiplier:  1.05,
		},
		{
			ID:               3,
			Name:             "Supplier C",
			QualityRating:    4.0,
			CostTier:         "expensive",
			BaseLeadTimeDays: 15,
			PaymentTerms:     "30/70 (order/delivery)",
			PriceMultiplier:  1.20,
		},
	}
}

type rosterFile struct {
	Suppliers []Supplier `yaml:"suppliers"`
}

// LoadRoster reads a supplier roster from a YAML file.
func LoadRoster(path string) ([]Supplier, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}
	suppliers, err := ParseRoster(payload)
	if err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}
	return suppliers, nil
}

func ParseRoster(payload []byte) ([]Supplier, error) {
	var file rosterFile
	if err := yaml.Unmarshal(payload, &file); err != nil {
		return nil, err
	}
	if err := validateRoster(file.Suppliers); err != nil {
		return nil, err
	}
	return file.Suppliers, nil
}

func validateRoster(suppliers []Supplier) error {
	if len(suppliers) == 0 {
		return fmt.Errorf("roster has no suppliers")
	}
	seenIDs := make(map[int]struct{}, len(suppliers))
	seenNames := make(map[string]struct{}, len(suppliers))
	for _, supplier := range suppliers {
		if supplier.ID <= 0 {
			return fmt.Errorf("supplier %q: id must be positive", supplier.Name)
		}
		if supplier.Name == "" {
			return fmt.Errorf("supplier id %d: name is required", supplier.ID)
		}
		if _, dup := seenIDs[supplier.ID]; dup {
			return fmt.Errorf("duplicate supplier id %d", supplier.ID)
		}
		if _, dup := seenNames[supplier.Name]; dup {
			return fmt.Errorf("duplicate supplier name %q", supplier.Name)
		}
		seenIDs[supplier.ID] = struct{}{}
		seenNames[supplier.Name] = struct{}{}
		if supplier.QualityRating <= 0 || supplier.QualityRating > 5 {
			return fmt.Errorf("supplier %q: quality rating must be in (0, 5]", supplier.Name)
		}
		if supplier.BaseLeadTimeDays <= 0 {
			return fmt.Errorf("supplier %q: lead time must be positive", supplier.Name)
		}
		if supplier.PriceMultiplier <= 0 {
			return fmt.Errorf("supplier %q: price multiplier must be positive", supplier.Name)
		}
	}
	return nil
}
