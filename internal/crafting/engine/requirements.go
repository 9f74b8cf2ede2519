package engine

import "github.com/rsned/crafting-planner/pkg/crafting"

// RequirementsAtDepth returns the materials needed to craft count of target
// when recipes are unrolled depth levels below the target. Ingredients at the
// cutoff depth, and terminal ingredients at any depth, are reported as they
// are; items without a recipe are reported as themselves.
//
// The boolean is false for an empty or unknown target, a non-positive count,
// or a negative depth.
func (r *Resolver) RequirementsAtDepth(target string, count, depth int) (crafting.Requirements, bool) {
	if !r.known(target) || count <= 0 || depth < 0 {
		return nil, false
	}

	key := requirementsKey{target: target, count: count, depth: depth}
	if r.cache != nil {
		if cached, ok := r.cache.Get(key); ok {
			return cached.Clone(), true
		}
	}

	reqs := r.requirementsAtDepth(target, count, depth)
	if r.cache != nil {
		r.cache.Add(key, reqs.Clone())
	}
	return reqs, true
}

func (r *Resolver) requirementsAtDepth(target string, count, depth int) crafting.Requirements {
	recipe, ok := firstRecipe(r.oracle, target)
	if !ok {
		return crafting.Requirements{target: count}
	}

	batches := batchesFor(count, recipe.Yield())
	reqs := make(crafting.Requirements)

	for _, comp := range recipe.Components {
		total := comp.Quantity * batches

		// The cutoff applies per ingredient, not to the whole level
		if depth == 0 || r.classifier.IsTerminal(comp.ComponentID) {
			reqs.Add(comp.ComponentID, total)
			continue
		}

		// Every ingredient is a known item, so a rejected child can only
		// come from a zero quantity and contributes nothing.
		child, ok := r.RequirementsAtDepth(comp.ComponentID, total, depth-1)
		if !ok {
			r.logger.Debug("ingredient contributes no requirements",
				"target", target, "ingredient", comp.ComponentID, "quantity", total)
			continue
		}
		reqs.Merge(child)
	}

	return reqs
}

// MaxCraftingDepth returns the deepest unrolling depth that still changes
// the requirements of target: the depth before the first one whose result
// equals its predecessor's. If nothing settles within maxSearchDepth it
// returns maxSearchDepth. It returns -1 for an empty or unknown target or a
// non-positive count.
func (r *Resolver) MaxCraftingDepth(target string, count, maxSearchDepth int) int {
	if !r.known(target) || count <= 0 {
		return -1
	}

	var prev crafting.Requirements
	for depth := 0; depth <= maxSearchDepth; depth++ {
		current, _ := r.RequirementsAtDepth(target, count, depth)

		if depth > 0 && prev.Equal(current) {
			return depth - 1
		}
		prev = current
	}

	return maxSearchDepth
}
