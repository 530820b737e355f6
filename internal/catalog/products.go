package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed products.json
var defaultProductsPayload []byte

type productsFile struct {
	Products []Product `json:"products"`
}

// DefaultProducts returns the embedded product catalog.
func DefaultProducts() []Product {
	products, err := ParseProducts(defaultProductsPayload)
	if err != nil {
		// The embedded catalog is validated by tests; a parse failure
		// here means a broken build.
		panic(fmt.Sprintf("embedded product catalog invalid: %v", err))
	}
	return products
}

// LoadProducts reads a product catalog from a JSON file.
func LoadProducts(path string) ([]Product, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read products %s: %w", path, err)
	}
	products, err := ParseProducts(payload)
	if err != nil {
		return nil, fmt.Errorf("parse products %s: %w", path, err)
	}
	return products, nil
}

func ParseProducts(payload []byte) ([]Product, error) {
	var file productsFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return nil, err
	}
	if len(file.Products) == 0 {
		return nil, fmt.Errorf("catalog has no products")
	}
	seen := make(map[string]struct{}, len(file.Products))
	for _, product := range file.Products {
		if product.Code == "" {
			return nil, fmt.Errorf("product %q: code is required", product.Name)
		}
		if product.Name == "" {
			return nil, fmt.Errorf("product %s: name is required", product.Code)
		}
		if product.TargetFOB <= 0 {
			return nil, fmt.Errorf("product %s: targetFob must be positive", product.Code)
		}
		if _, dup := seen[product.Code]; dup {
			return nil, fmt.Errorf("duplicate product code %s", product.Code)
		}
		seen[product.Code] = struct{}{}
	}
	return file.Products, nil
}
