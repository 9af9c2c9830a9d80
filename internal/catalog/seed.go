package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/jask/budregistry/internal/product"
)

//go:embed seed.yaml
var defaultSeed []byte

type seedFile struct {
	Products []seedEntry `yaml:"products"`
}

type seedEntry struct {
	product.DashboardProduct `yaml:",inline"`
	Price                    string `yaml:"price"`
}

// DefaultSeed returns the built-in seed collection.
func DefaultSeed() ([]product.DashboardProduct, error) {
	return LoadSeed(bytes.NewReader(defaultSeed))
}

// LoadSeedFile reads a seed collection from path, or the built-in seed when
// path is empty.
func LoadSeedFile(path string) ([]product.DashboardProduct, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultSeed()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}

// LoadSeed decodes a YAML seed collection.
func LoadSeed(r io.Reader) ([]product.DashboardProduct, error) {
	var sf seedFile
	if err := yaml.NewDecoder(r).Decode(&sf); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	out := make([]product.DashboardProduct, 0, len(sf.Products))
	seen := make(map[string]struct{}, len(sf.Products))
	for i, e := range sf.Products {
		d := e.DashboardProduct
		d.ID = strings.TrimSpace(d.ID)
		if d.ID == "" {
			return nil, fmt.Errorf("seed[%d]: id is required", i)
		}
		if _, ok := seen[d.ID]; ok {
			return nil, fmt.Errorf("seed[%d]: duplicate id %q", i, d.ID)
		}
		seen[d.ID] = struct{}{}
		switch d.Type {
		case "":
			d.Type = product.TypeProduct
		case product.TypeProduct, product.TypeBundle:
		default:
			return nil, fmt.Errorf("seed[%d] %q: unknown type %q", i, d.ID, d.Type)
		}
		d.Markets = product.KnownMarkets(d.Markets)
		if d.MarketCapacity < len(d.Markets) {
			d.MarketCapacity = len(d.Markets)
		}
		if p := strings.TrimSpace(e.Price); p != "" {
			price, err := decimal.NewFromString(p)
			if err != nil {
				return nil, fmt.Errorf("seed[%d] %q: price: %w", i, d.ID, err)
			}
			d.Price = price
		}
		out = append(out, d)
	}
	return out, nil
}
