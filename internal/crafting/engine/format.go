package engine

import (
	"fmt"
	"strings"

	"github.com/rsned/crafting-planner/pkg/crafting"
)

// Report texts shared with downstream consumers.
const (
	InvalidInputMessage = "Invalid input. Please provide a valid item name and positive count."
	InInventoryMessage  = "You have all required items already in your inventory!"

	missingHeader  = "You are missing the following items:"
	thenPlanHeader = "Once you have these items, here's your crafting plan:"
	haveAllHeader  = "You have all items required to craft this item!"
	planHeader     = "Here's your crafting plan:"
	leftoverHeader = "You will have leftover:"
)

// FormatPlan renders a plan as a text report: the missing items (if any),
// the steps in order, and the leftovers (if any). Items in each list are
// sorted by name.
func FormatPlan(plan *Plan) string {
	var lines []string

	if len(plan.Required) > 0 {
		lines = append(lines, missingHeader)
		lines = append(lines, itemLines(plan.Required)...)
		lines = append(lines, "\n"+thenPlanHeader)
	} else {
		lines = append(lines, haveAllHeader, planHeader)
	}

	lines = append(lines, "")
	lines = append(lines, plan.StepLines()...)

	if len(plan.Leftovers) > 0 {
		lines = append(lines, "\n"+leftoverHeader)
		lines = append(lines, itemLines(plan.Leftovers)...)
	}

	return strings.Join(lines, "\n")
}

func itemLines(items crafting.Requirements) []string {
	lines := make([]string, 0, len(items))
	for _, c := range items.Components() {
		lines = append(lines, fmt.Sprintf("- %d %s", c.Quantity, c.ID))
	}
	return lines
}

// Describe renders the report for a plan built for count of target from
// inventory. A base target gets a short gathering message instead of a plan.
func (r *Resolver) Describe(target string, count int, inventory crafting.Inventory, plan *Plan) string {
	if r.classifier.IsBase(target) {
		available := inventory[target]
		if available >= count {
			return InInventoryMessage
		}
		return fmt.Sprintf("%s is a base item, you need to find %d more in the world", target, count-available)
	}
	return FormatPlan(plan)
}

// DetailedPlan returns the text report for crafting count of target with the
// given inventory, which is not modified. Invalid input yields
// InvalidInputMessage rather than an error; the only error is a detected cycle.
func (r *Resolver) DetailedPlan(target string, count int, inventory crafting.Inventory) (string, error) {
	if !r.known(target) || count <= 0 {
		return InvalidInputMessage, nil
	}

	if r.classifier.IsBase(target) {
		return r.Describe(target, count, inventory, nil), nil
	}

	plan, err := r.BuildPlan(target, count, inventory)
	if err != nil {
		return "", fmt.Errorf("planning %s: %w", target, err)
	}
	return r.Describe(target, count, inventory, plan), nil
}
