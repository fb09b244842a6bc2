// Package catalog serves the static pricing table. The table is embedded at
// build time and may be replaced by a file named in checkout.plans_file.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/domain/ports/repository"

	"gopkg.in/yaml.v3"
)

//go:embed plans.yaml
var embeddedPlans []byte

type planFile struct {
	Plans []*model.Plan `yaml:"plans"`
}

// Catalog is an immutable, upper-cased index of plans.
type Catalog struct {
	byID  map[string]*model.Plan
	order []string
}

var _ repository.PlanCatalog = (*Catalog)(nil)

// Load returns the catalog from path, or the embedded table when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(embeddedPlans)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plans: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Catalog, error) {
	var f planFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse plans: %w", err)
	}
	return New(f.Plans)
}

// New validates plans and indexes them by normalized id. Duplicate ids are rejected.
func New(plans []*model.Plan) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*model.Plan, len(plans))}
	for _, p := range plans {
		if err := p.Validate(); err != nil {
			id := ""
			if p != nil {
				id = p.ID
			}
			return nil, fmt.Errorf("plan %q: %w", id, err)
		}
		id := model.NormalizePlanID(p.ID)
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("plan %q: duplicate id", id)
		}
		cp := *p
		cp.ID = id
		c.byID[id] = &cp
		c.order = append(c.order, id)
	}
	return c, nil
}

// Get looks a plan up case-insensitively.
func (c *Catalog) Get(id string) (*model.Plan, bool) {
	p, ok := c.byID[model.NormalizePlanID(id)]
	return p, ok
}

// List returns plans in file order.
func (c *Catalog) List() []*model.Plan {
	out := make([]*model.Plan, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// IDs returns the sorted plan ids, mostly for logs.
func (c *Catalog) IDs() []string {
	ids := append([]string(nil), c.order...)
	sort.Strings(ids)
	return ids
}
