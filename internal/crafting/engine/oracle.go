package engine

import "github.com/rsned/crafting-planner/pkg/crafting"

// Oracle answers recipe lookups for the resolver. Implementations must be
// safe for concurrent readers and must not change while a resolver uses them.
type Oracle interface {
	// ItemID returns the identifier for a known item name.
	ItemID(name string) (int, bool)
	// RecipesFor returns the recipe alternatives for an item, or nil when
	// the item cannot be crafted.
	RecipesFor(name string) []crafting.Recipe
}

// firstRecipe returns the first alternative the oracle offers for item.
// Only the first alternative is ever used; no recipe choice is searched.
func firstRecipe(oracle Oracle, item string) (*crafting.Recipe, bool) {
	recipes := oracle.RecipesFor(item)
	if len(recipes) == 0 {
		return nil, false
	}
	return &recipes[0], true
}

// batchesFor returns how many crafts of a recipe yielding yield units cover count.
func batchesFor(count, yield int) int {
	if yield < 1 {
		yield = 1
	}
	return (count + yield - 1) / yield
}
