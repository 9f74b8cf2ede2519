package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rsned/crafting-planner/pkg/crafting"
)

// CraftStep is one crafting operation: Batches runs of a recipe consuming
// Inputs and producing Output.
type CraftStep struct {
	Inputs  []crafting.Component `json:"inputs"`
	Output  crafting.Component   `json:"output"`
	Batches int                  `json:"batches"`
}

// String renders the step as "Craft 2 oak_planks + 1 stick -> 4 torch",
// listing inputs in recipe order.
func (s CraftStep) String() string {
	parts := make([]string, len(s.Inputs))
	for i, in := range s.Inputs {
		parts[i] = fmt.Sprintf("%d %s", in.Quantity, in.ID)
	}
	return fmt.Sprintf("Craft %s -> %d %s", strings.Join(parts, " + "), s.Output.Quantity, s.Output.ID)
}

// Plan accumulates the result of a CraftItem walk.
type Plan struct {
	// Required holds base materials that must be gathered.
	Required crafting.Requirements `json:"required"`
	// Steps are in production order: every step's inputs are gathered,
	// crafted or drawn from stock by earlier steps.
	Steps []CraftStep `json:"steps"`
	// Leftovers is the surplus remaining once the plan completes.
	Leftovers crafting.Requirements `json:"leftovers"`
}

// NewPlan returns an empty Plan.
func NewPlan() *Plan {
	return &Plan{
		Required:  make(crafting.Requirements),
		Leftovers: make(crafting.Requirements),
	}
}

// Complete reports whether the plan needs nothing beyond the inventory.
func (p *Plan) Complete() bool {
	return len(p.Required) == 0
}

// StepLines returns the text of every step in order.
func (p *Plan) StepLines() []string {
	lines := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		lines[i] = s.String()
	}
	return lines
}

// CraftItem plans crafting count of item, drawing first on leftovers and then
// on inventory, both of which are updated in place. Surplus from rounding up
// to whole batches is added to leftovers for later requests to use. Steps and
// base requirements are appended to plan; a nil plan starts a new one.
//
// Recipes are expanded without a depth cutoff. If the nesting exceeds the
// resolver's plan depth the walk stops with a *CycleError, and plan holds
// whatever was recorded up to that point.
func (r *Resolver) CraftItem(item string, count int, inventory, leftovers crafting.Inventory, plan *Plan) (*Plan, error) {
	if plan == nil {
		plan = NewPlan()
	}
	if plan.Required == nil {
		plan.Required = make(crafting.Requirements)
	}
	if plan.Leftovers == nil {
		plan.Leftovers = make(crafting.Requirements)
	}
	if inventory == nil {
		inventory = make(crafting.Inventory)
	}
	if leftovers == nil {
		leftovers = make(crafting.Inventory)
	}

	if err := r.craft(item, count, inventory, leftovers, plan, nil); err != nil {
		return plan, err
	}
	return plan, nil
}

func (r *Resolver) craft(item string, count int, inventory, leftovers crafting.Inventory, plan *Plan, path []string) error {
	availableInv := inventory[item]
	availableLeft := leftovers[item]

	if availableInv+availableLeft >= count {
		// Leftovers first, then inventory
		fromLeft := min(availableLeft, count)
		setBalance(leftovers, item, availableLeft-fromLeft)
		if rest := count - fromLeft; rest > 0 {
			setBalance(inventory, item, availableInv-rest)
		}
		return nil
	}

	stillNeeded := count - (availableInv + availableLeft)
	setBalance(leftovers, item, 0)
	setBalance(inventory, item, 0)

	if r.classifier.IsBase(item) {
		plan.Required.Add(item, stillNeeded)
		return nil
	}

	recipe, ok := firstRecipe(r.oracle, item)
	if !ok {
		plan.Required.Add(item, stillNeeded)
		return nil
	}

	if len(path) >= r.maxPlanDepth {
		err := &CycleError{Path: append(slices.Clone(path), item)}
		r.logger.Debug("plan expansion aborted", "item", item, "error", err)
		return err
	}
	path = append(path, item)

	batches := batchesFor(stillNeeded, recipe.Yield())
	produced := batches * recipe.Yield()
	if produced > stillNeeded {
		leftovers[item] += produced - stillNeeded
	}

	step := CraftStep{
		Inputs:  make([]crafting.Component, 0, len(recipe.Components)),
		Output:  crafting.Component{ID: item, Quantity: produced},
		Batches: batches,
	}
	for _, comp := range recipe.Components {
		total := comp.Quantity * batches
		if err := r.craft(comp.ComponentID, total, inventory, leftovers, plan, path); err != nil {
			return err
		}
		step.Inputs = append(step.Inputs, crafting.Component{ID: comp.ComponentID, Quantity: total})
	}

	plan.Steps = append(plan.Steps, step)
	return nil
}

// setBalance stores n for item, dropping the entry when it reaches zero.
func setBalance(m crafting.Inventory, item string, n int) {
	if n <= 0 {
		delete(m, item)
		return
	}
	m[item] = n
}

// BuildPlan plans count of target against a copy of inventory with no prior
// leftovers, and records the final surplus in the plan's Leftovers.
func (r *Resolver) BuildPlan(target string, count int, inventory crafting.Inventory) (*Plan, error) {
	leftovers := make(crafting.Inventory)
	plan, err := r.CraftItem(target, count, inventory.Clone(), leftovers, nil)
	plan.Leftovers = leftovers.Remaining()
	return plan, err
}
