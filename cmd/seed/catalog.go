package main

import (
	"fmt"
	"os"
	"strings"

	"delivery-service/internal/infra"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type catalogEntry struct {
	Name string `yaml:"name"`
	// kept as the raw scalar so the price is parsed as a decimal, never as a float
	Price yaml.Node `yaml:"price"`
}

// loadCatalog reads a YAML list of {name, price}. JSON input parses as well.
func loadCatalog(path string) ([]infra.NewProduct, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return parseCatalog(data)
}

func parseCatalog(data []byte) ([]infra.NewProduct, error) {
	var entries []catalogEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	products := make([]infra.NewProduct, 0, len(entries))
	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("entry %d: name is required", i)
		}
		if e.Price.Kind != yaml.ScalarNode || e.Price.Value == "" {
			return nil, fmt.Errorf("entry %d (%s): price is required", i, name)
		}
		price, err := decimal.NewFromString(e.Price.Value)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): price %q: %w", i, name, e.Price.Value, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("entry %d (%s): price must not be negative", i, name)
		}
		products = append(products, infra.NewProduct{Name: name, Price: price})
	}
	return products, nil
}
