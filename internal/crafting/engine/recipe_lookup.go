package engine

import (
	"context"

	"github.com/rsned/crafting-planner/pkg/crafting"
)

// RecipeLookup executes the recipe_lookup tool logic.
func (e *Engine) RecipeLookup(ctx context.Context, req crafting.RecipeLookupRequest) (*crafting.RecipeLookupResponse, error) {
	resp := &crafting.RecipeLookupResponse{Item: req.Item}

	// Unknown names get suggestions instead of an error
	if !e.resolver.known(req.Item) {
		resp.Suggestions = e.catalog.Suggest(req.Item, suggestionLimit)
		return resp, nil
	}

	classifier := e.resolver.Classifier()
	resp.Known = true
	resp.IsBase = classifier.IsBase(req.Item)
	resp.IsTerminal = classifier.IsTerminal(req.Item)
	resp.Recipes = e.catalog.RecipesFor(req.Item)
	resp.UsedIn = e.catalog.UsedIn(req.Item)
	resp.Achievable = e.resolver.IsAchievable(req.Item, e.achievable)

	return resp, nil
}
