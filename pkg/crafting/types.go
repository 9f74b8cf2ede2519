// Package crafting contains the core types for the crafting planner.
package crafting

import "sort"

// ============================================
// INPUT TYPES
// ============================================

// Component represents an item with quantity (used in queries).
type Component struct {
	ID       string `json:"id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// ============================================
// RECIPE TYPES
// ============================================

// Recipe is one way of producing an item. Components keep the order in which
// the recipe lists them; that order is reused when describing craft steps.
type Recipe struct {
	ID         string            `json:"id"`
	Category   string            `json:"category,omitempty"`
	Components []RecipeComponent `json:"components"`
	Output     RecipeOutput      `json:"output"`
}

// RecipeComponent represents a required input component for a single craft.
type RecipeComponent struct {
	ComponentID string `json:"component_id"`
	Quantity    int    `json:"quantity"`
}

// RecipeOutput represents what a single craft produces.
type RecipeOutput struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Yield returns the number of units one craft produces, never less than one.
func (r *Recipe) Yield() int {
	if r.Output.Quantity < 1 {
		return 1
	}
	return r.Output.Quantity
}

// MergeComponents folds repeated ingredients into one entry per item, summing
// their quantities. Each item keeps the position of its first listing.
func MergeComponents(components []RecipeComponent) []RecipeComponent {
	if len(components) < 2 {
		return components
	}
	seen := make(map[string]int, len(components))
	merged := make([]RecipeComponent, 0, len(components))
	for _, c := range components {
		if i, ok := seen[c.ComponentID]; ok {
			merged[i].Quantity += c.Quantity
			continue
		}
		seen[c.ComponentID] = len(merged)
		merged = append(merged, c)
	}
	return merged
}

// ============================================
// QUANTITY TYPES
// ============================================

// Requirements maps an item to the quantity needed. Absent items are not needed.
type Requirements map[string]int

// Add increases the quantity for item. Non-positive amounts are ignored so
// every stored quantity stays above zero.
func (r Requirements) Add(item string, n int) {
	if n <= 0 {
		return
	}
	r[item] += n
}

// Merge adds every entry of other into r.
func (r Requirements) Merge(other Requirements) {
	for item, n := range other {
		r.Add(item, n)
	}
}

// Equal reports whether both multisets hold the same items with the same quantities.
func (r Requirements) Equal(other Requirements) bool {
	if len(r) != len(other) {
		return false
	}
	for item, n := range r {
		m, ok := other[item]
		if !ok || m != n {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the multiset.
func (r Requirements) Clone() Requirements {
	out := make(Requirements, len(r))
	for item, n := range r {
		out[item] = n
	}
	return out
}

// Items returns the item names in ascending order.
func (r Requirements) Items() []string {
	items := make([]string, 0, len(r))
	for item := range r {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}

// Components converts the multiset to a slice sorted by item name.
func (r Requirements) Components() []Component {
	out := make([]Component, 0, len(r))
	for _, item := range r.Items() {
		out = append(out, Component{ID: item, Quantity: r[item]})
	}
	return out
}

// Inventory maps an item to a quantity on hand. It is drained in place while
// a plan is built, so it must not be shared between concurrent plans.
type Inventory map[string]int

// BuildInventory converts a component slice to an inventory, summing duplicates.
func BuildInventory(components []Component) Inventory {
	inv := make(Inventory, len(components))
	for _, c := range components {
		if c.Quantity > 0 {
			inv[c.ID] += c.Quantity
		}
	}
	return inv
}

// Clone returns an independent copy of the inventory.
func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	for item, n := range inv {
		out[item] = n
	}
	return out
}

// Remaining returns the entries with a positive balance.
func (inv Inventory) Remaining() Requirements {
	out := make(Requirements)
	for item, n := range inv {
		out.Add(item, n)
	}
	return out
}

// ============================================
// TOOL REQUEST/RESPONSE TYPES
// ============================================

// RequirementsRequest is the input for the crafting_requirements tool.
type RequirementsRequest struct {
	Item     string `json:"item" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
	Depth    int    `json:"depth" validate:"gte=0"`
	// AutoDepth replaces Depth with the deepest informative unrolling depth.
	AutoDepth bool `json:"auto_depth,omitempty"`
}

// RequirementsResponse is the output for the crafting_requirements tool.
type RequirementsResponse struct {
	Item         string      `json:"item"`
	Quantity     int         `json:"quantity"`
	Depth        int         `json:"depth"`
	MaxDepth     int         `json:"max_depth"`
	Requirements []Component `json:"requirements"`
}

// DepthRequest is the input for the max_crafting_depth tool.
type DepthRequest struct {
	Item           string `json:"item" validate:"required"`
	Quantity       int    `json:"quantity" validate:"gte=0"`
	MaxSearchDepth int    `json:"max_search_depth,omitempty" validate:"gte=0,lte=64"`
}

// DepthResponse is the output for the max_crafting_depth tool.
type DepthResponse struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
	MaxDepth int    `json:"max_depth"`
}

// PlanRequest is the input for the crafting_plan tool.
type PlanRequest struct {
	Item      string      `json:"item" validate:"required"`
	Quantity  int         `json:"quantity" validate:"gte=0"`
	Inventory []Component `json:"inventory,omitempty" validate:"dive"`
}

// PlanResponse is the output for the crafting_plan tool.
type PlanResponse struct {
	Item       string      `json:"item"`
	Quantity   int         `json:"quantity"`
	Complete   bool        `json:"complete"`
	Required   []Component `json:"required"`
	Steps      []string    `json:"steps"`
	Leftovers  []Component `json:"leftovers"`
	MaxDepth   int         `json:"max_depth"`
	TimeoutSec int         `json:"timeout_sec"`
	Report     string      `json:"report"`
}

// RecipeLookupRequest is the input for the recipe_lookup tool.
type RecipeLookupRequest struct {
	Item string `json:"item" validate:"required"`
}

// RecipeLookupResponse is the output for the recipe_lookup tool.
type RecipeLookupResponse struct {
	Item        string   `json:"item"`
	Known       bool     `json:"known"`
	IsBase      bool     `json:"is_base"`
	IsTerminal  bool     `json:"is_terminal"`
	Achievable  bool     `json:"achievable"`
	Recipes     []Recipe `json:"recipes,omitempty"`
	UsedIn      []string `json:"used_in,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// TimeoutRequest is the input for the crafting_timeout tool.
type TimeoutRequest struct {
	Depth            int  `json:"depth" validate:"gte=0"`
	MissingResources bool `json:"missing_resources"`
}

// TimeoutResponse is the output for the crafting_timeout tool.
type TimeoutResponse struct {
	TimeoutSec int `json:"timeout_sec"`
}
