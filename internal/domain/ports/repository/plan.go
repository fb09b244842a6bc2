package repository

import "consulting-portal/internal/domain/model"

// PlanCatalog is the read-only pricing configuration. Lookups use the
// upper-cased plan id.
type PlanCatalog interface {
	Get(id string) (*model.Plan, bool)
	List() []*model.Plan
}
