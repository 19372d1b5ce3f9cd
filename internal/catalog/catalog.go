// Package catalog loads the static instrument and luxury-item seed data.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"luxury-tycoon/internal/errors"
	"luxury-tycoon/internal/models"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// InstrumentSpec describes one tradable instrument in the seed file.
type InstrumentSpec struct {
	ID     string          `yaml:"id"`
	Name   string          `yaml:"name"`
	Ticker string          `yaml:"ticker"`
	Price  decimal.Decimal `yaml:"price"`
}

// ItemSpec describes one luxury item in the seed file.
type ItemSpec struct {
	ID           string          `yaml:"id"`
	Name         string          `yaml:"name"`
	Category     models.Category `yaml:"category"`
	PrimaryPrice decimal.Decimal `yaml:"primary_price"`
	PremiumPrice decimal.Decimal `yaml:"premium_price"`
	Unlocked     bool            `yaml:"unlocked"`
}

// Catalog is the parsed seed data.
type Catalog struct {
	Instruments []InstrumentSpec `yaml:"instruments"`
	Items       []ItemSpec       `yaml:"items"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML catalog data.
func Parse(data []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(errors.ErrCatalogInvalid, err.Error())
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks ids are unique and prices positive.
func (c *Catalog) Validate() error {
	if len(c.Instruments) == 0 {
		return errors.Wrap(errors.ErrCatalogInvalid, "no instruments")
	}

	seen := make(map[string]bool)
	for _, inst := range c.Instruments {
		if inst.ID == "" {
			return errors.Wrap(errors.ErrCatalogInvalid, "instrument without id")
		}
		if seen[inst.ID] {
			return errors.Wrapf(errors.ErrCatalogInvalid, "duplicate instrument %q", inst.ID)
		}
		seen[inst.ID] = true
		if !inst.Price.IsPositive() {
			return errors.Wrapf(errors.ErrCatalogInvalid, "instrument %q has non-positive price", inst.ID)
		}
	}

	seen = make(map[string]bool)
	for _, item := range c.Items {
		if item.ID == "" {
			return errors.Wrap(errors.ErrCatalogInvalid, "item without id")
		}
		if seen[item.ID] {
			return errors.Wrapf(errors.ErrCatalogInvalid, "duplicate item %q", item.ID)
		}
		seen[item.ID] = true
		if !item.Category.Valid() {
			return errors.Wrapf(errors.ErrCatalogInvalid, "item %q has unknown category %q", item.ID, item.Category)
		}
		if !item.PrimaryPrice.IsPositive() || !item.PremiumPrice.IsPositive() {
			return errors.Wrapf(errors.ErrCatalogInvalid, "item %q has non-positive price", item.ID)
		}
	}

	return nil
}

// BuildInstruments returns fresh instruments with a one-point history.
func (c *Catalog) BuildInstruments() []models.Instrument {
	out := make([]models.Instrument, 0, len(c.Instruments))
	for _, spec := range c.Instruments {
		price := spec.Price.Round(2)
		out = append(out, models.Instrument{
			ID:          spec.ID,
			DisplayName: spec.Name,
			Ticker:      spec.Ticker,
			Price:       price,
			History:     []decimal.Decimal{price},
			Trend:       models.TrendNeutral,
		})
	}
	return out
}

// BuildItems returns fresh, unowned catalog items keyed by id.
func (c *Catalog) BuildItems() map[string]models.CatalogItem {
	out := make(map[string]models.CatalogItem, len(c.Items))
	for _, spec := range c.Items {
		out[spec.ID] = models.CatalogItem{
			ID:           spec.ID,
			Name:         spec.Name,
			PrimaryPrice: spec.PrimaryPrice,
			PremiumPrice: spec.PremiumPrice,
			Category:     spec.Category,
			Unlocked:     spec.Unlocked,
		}
	}
	return out
}

// SortedItems returns items ordered by primary price, then id.
func SortedItems(items map[string]models.CatalogItem) []models.CatalogItem {
	out := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].PrimaryPrice.Cmp(out[j].PrimaryPrice); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	return out
}
