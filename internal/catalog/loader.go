package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/tillgreens/microfarm/internal/domain"
)

// Sentinel errors for catalog loading
var (
	ErrDuplicateProduct = errors.New("duplicate product name")
	ErrDuplicateVariety = errors.New("duplicate variety name")
	ErrInvalidCatalog   = errors.New("invalid catalog")
)

// blendTolerance is how far a blend's percentages may drift from 100
const blendTolerance = 0.01

// Config represents the JSON catalog of sellable products and the
// varieties they resolve to
type Config struct {
	Version     string `json:"version"`
	Description string `json:"description"`

	Products  []ProductDef `json:"products"`
	Varieties []VarietyDef `json:"varieties"`
}

// ProductDef is a single product definition in the JSON
type ProductDef struct {
	Name            string              `json:"name"`
	FillWeightGrams float64             `json:"fill_weight_grams"`
	Blend           []BlendComponentDef `json:"blend,omitempty"`
}

// BlendComponentDef is one variety's share of a blended product
type BlendComponentDef struct {
	Variety string  `json:"variety"`
	Percent float64 `json:"percent"`
}

// VarietyDef is a single variety definition in the JSON
type VarietyDef struct {
	Name     string `json:"name"`
	Cultivar string `json:"cultivar,omitempty"`
}

// Loader handles loading and validating the catalog file
type Loader interface {
	Load(path string) (*Config, error)
	Validate(config *Config) error
}

type catalogLoader struct{}

// NewLoader creates a new Loader instance
func NewLoader() Loader {
	return &catalogLoader{}
}

// Load reads and parses a catalog JSON file
func (l *catalogLoader) Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	if err := l.Validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks catalog invariants: unique names, positive fill
// weights, blend percentages summing to 100.
func (l *catalogLoader) Validate(config *Config) error {
	varieties := make(map[string]struct{}, len(config.Varieties))
	for _, v := range config.Varieties {
		if v.Name == "" {
			return fmt.Errorf("%w: variety with empty name", ErrInvalidCatalog)
		}
		if _, exists := varieties[v.Name]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateVariety, v.Name)
		}
		varieties[v.Name] = struct{}{}
	}

	products := make(map[string]struct{}, len(config.Products))
	for _, p := range config.Products {
		if p.Name == "" {
			return fmt.Errorf("%w: product with empty name", ErrInvalidCatalog)
		}
		if _, exists := products[p.Name]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateProduct, p.Name)
		}
		products[p.Name] = struct{}{}

		if p.FillWeightGrams <= 0 {
			return fmt.Errorf("%w: product %s fill weight must be positive", ErrInvalidCatalog, p.Name)
		}

		if len(p.Blend) == 0 {
			continue
		}
		total := 0.0
		for _, c := range p.Blend {
			if c.Percent <= 0 {
				return fmt.Errorf("%w: product %s blend component %s percent must be positive",
					ErrInvalidCatalog, p.Name, c.Variety)
			}
			total += c.Percent
		}
		if math.Abs(total-100) > blendTolerance {
			return fmt.Errorf("%w: product %s blend sums to %v, want 100",
				ErrInvalidCatalog, p.Name, total)
		}
	}
	return nil
}

// toDomain converts a catalog config into domain products and varieties
func (c *Config) toDomain() ([]domain.Product, []domain.Variety) {
	products := make([]domain.Product, 0, len(c.Products))
	for _, p := range c.Products {
		dp := domain.Product{
			Name:            p.Name,
			FillWeightGrams: p.FillWeightGrams,
		}
		for _, b := range p.Blend {
			dp.Blend = append(dp.Blend, domain.BlendComponent{
				Variety: b.Variety,
				Percent: b.Percent,
			})
		}
		products = append(products, dp)
	}

	varieties := make([]domain.Variety, 0, len(c.Varieties))
	for _, v := range c.Varieties {
		varieties = append(varieties, domain.Variety{Name: v.Name, Cultivar: v.Cultivar})
	}
	return products, varieties
}
