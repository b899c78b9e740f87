package plans

import (
	"fmt"
	"strings"
)

// Catalog is a fixed mapping from plan key to Plan, in authoring order.
type Catalog struct {
	order      []string
	plans      map[string]Plan
	defaultKey string
}

// NewCatalog validates plans and builds a catalog from them. A later plan
// with the same key as an earlier one is rejected; use Merge to override.
// The first plan becomes the default selection.
func NewCatalog(plans []Plan) (*Catalog, error) {
	if len(plans) == 0 {
		return nil, fmt.Errorf("catalog needs at least one plan")
	}
	catalog := &Catalog{plans: make(map[string]Plan, len(plans))}
	for _, plan := range plans {
		plan.Key = strings.TrimSpace(plan.Key)
		if err := plan.Validate(); err != nil {
			return nil, err
		}
		if _, exists := catalog.plans[plan.Key]; exists {
			return nil, fmt.Errorf("duplicate plan key %q", plan.Key)
		}
		catalog.plans[plan.Key] = clonePlan(plan)
		catalog.order = append(catalog.order, plan.Key)
	}
	catalog.defaultKey = catalog.order[0]
	return catalog, nil
}

// Merge returns a new catalog with overrides replacing plans of the same key
// and new keys appended. The receiver is not modified.
func (c *Catalog) Merge(overrides []Plan) (*Catalog, error) {
	merged := make([]Plan, 0, len(c.order)+len(overrides))
	index := make(map[string]int, len(c.order))
	for _, key := range c.order {
		index[key] = len(merged)
		merged = append(merged, c.plans[key])
	}
	for _, plan := range overrides {
		key := strings.TrimSpace(plan.Key)
		if i, ok := index[key]; ok {
			merged[i] = plan
			continue
		}
		index[key] = len(merged)
		merged = append(merged, plan)
	}
	result, err := NewCatalog(merged)
	if err != nil {
		return nil, err
	}
	result.defaultKey = c.defaultKey
	return result, nil
}

// Lookup returns the plan for key or an *UnknownPlanError.
func (c *Catalog) Lookup(key string) (Plan, error) {
	plan, ok := c.plans[key]
	if !ok {
		return Plan{}, &UnknownPlanError{Key: key}
	}
	return clonePlan(plan), nil
}

// Has reports whether key resolves to a plan.
func (c *Catalog) Has(key string) bool {
	_, ok := c.plans[key]
	return ok
}

// Keys returns plan keys in authoring order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}

// Plans returns every plan in authoring order.
func (c *Catalog) Plans() []Plan {
	result := make([]Plan, 0, len(c.order))
	for _, key := range c.order {
		result = append(result, clonePlan(c.plans[key]))
	}
	return result
}

// DefaultKey is the plan selected when nothing else is requested.
func (c *Catalog) DefaultKey() string {
	return c.defaultKey
}

// Len returns the number of plans.
func (c *Catalog) Len() int {
	return len(c.order)
}
