// Package sync imports recipe data into the local database.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/rsned/crafting-planner/internal/crafting/db"
	"github.com/rsned/crafting-planner/pkg/crafting"
)

// Syncer handles loading recipe dumps into the database.
type Syncer struct {
	db     *db.DB
	logger *slog.Logger
}

// NewSyncer creates a new Syncer.
func NewSyncer(database *db.DB, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{db: database, logger: logger}
}

// RecipeImport is one recipe as it appears in a dump. Several exporters are
// accepted, so the output and ingredient lists go by more than one name.
type RecipeImport struct {
	ID       string `json:"id,omitempty"`
	Category string `json:"category,omitempty"`

	// Ingredients in recipe order
	Components  []ComponentImport `json:"components,omitempty"`
	Ingredients []ComponentImport `json:"ingredients,omitempty"`

	// Output
	Item   string `json:"item,omitempty"`
	Count  int    `json:"count,omitempty"`
	Output struct {
		ItemID   string `json:"item_id,omitempty"`
		ID       string `json:"id,omitempty"`
		Quantity int    `json:"quantity"`
	} `json:"output,omitempty"`
	OutputItemID   string `json:"output_item_id,omitempty"`
	OutputQuantity int    `json:"output_quantity,omitempty"`
}

// ComponentImport is one ingredient entry in a dump.
type ComponentImport struct {
	ID       string `json:"id,omitempty"`
	ItemID   string `json:"item_id,omitempty"`
	Item     string `json:"item,omitempty"`
	Quantity *int   `json:"quantity,omitempty"`
	Count    *int   `json:"count,omitempty"`
}

// Dump is the object form of an import file. A file may also be a bare
// array of recipes.
type Dump struct {
	// Items lists raw item names that no recipe mentions.
	Items   []string       `json:"items,omitempty"`
	Recipes []RecipeImport `json:"recipes"`
}

// ImportResult summarizes an import.
type ImportResult struct {
	Recipes int
	Items   int
	Skipped int
}

// ImportRecipesFromFile imports recipes from a JSON file. Recipes for the same
// output become alternatives in file order, after any already stored, so the
// first recipe ever imported for an item is the one plans use until the data
// is cleared.
func (s *Syncer) ImportRecipesFromFile(ctx context.Context, path string) (*ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	dump, err := parseDump(data)
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	result := &ImportResult{}
	recipes := make([]crafting.Recipe, 0, len(dump.Recipes))
	for i, imp := range dump.Recipes {
		recipe, ok := transformRecipe(imp)
		if !ok {
			s.logger.Warn("skipping recipe without output", "index", i, "id", imp.ID)
			result.Skipped++
			continue
		}
		recipes = append(recipes, recipe)
	}
	result.Recipes = len(recipes)

	recipeStore := db.NewRecipeStore(s.db)
	if err := recipeStore.BulkInsertRecipes(ctx, recipes); err != nil {
		return nil, fmt.Errorf("inserting recipes: %w", err)
	}
	if err := recipeStore.EnsureItems(ctx, dump.Items); err != nil {
		return nil, fmt.Errorf("inserting items: %w", err)
	}

	items, err := recipeStore.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	result.Items = len(items)

	// Update sync metadata
	if err := s.db.SetSyncMetadata(ctx, db.MetaRecipesLastSync, time.Now().Format(time.RFC3339)); err != nil {
		return nil, err
	}
	total, err := recipeStore.CountRecipes(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.db.SetSyncMetadata(ctx, db.MetaRecipesCount, strconv.Itoa(total)); err != nil {
		return nil, err
	}

	s.logger.Info("recipes imported",
		"path", path, "recipes", result.Recipes, "items", result.Items, "skipped", result.Skipped)
	return result, nil
}

// parseDump accepts either a bare recipe array or a Dump object.
func parseDump(data []byte) (*Dump, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var recipes []RecipeImport
		if err := json.Unmarshal(trimmed, &recipes); err != nil {
			return nil, err
		}
		return &Dump{Recipes: recipes}, nil
	}

	var dump Dump
	if err := json.Unmarshal(trimmed, &dump); err != nil {
		return nil, err
	}
	return &dump, nil
}

// transformRecipe converts import format to domain format. It reports false
// when no output item is named.
func transformRecipe(imp RecipeImport) (crafting.Recipe, bool) {
	recipe := crafting.Recipe{
		ID:       imp.ID,
		Category: imp.Category,
	}

	// Handle output - try multiple field names
	switch {
	case imp.Item != "":
		recipe.Output.ItemID = imp.Item
		recipe.Output.Quantity = imp.Count
	case imp.Output.ItemID != "":
		recipe.Output.ItemID = imp.Output.ItemID
		recipe.Output.Quantity = imp.Output.Quantity
	case imp.Output.ID != "":
		recipe.Output.ItemID = imp.Output.ID
		recipe.Output.Quantity = imp.Output.Quantity
	case imp.OutputItemID != "":
		recipe.Output.ItemID = imp.OutputItemID
		recipe.Output.Quantity = imp.OutputQuantity
	default:
		return recipe, false
	}
	if recipe.Output.Quantity <= 0 {
		recipe.Output.Quantity = 1
	}

	components := imp.Components
	if len(components) == 0 {
		components = imp.Ingredients
	}
	for _, c := range components {
		compID := c.ID
		if compID == "" {
			compID = c.ItemID
		}
		if compID == "" {
			compID = c.Item
		}
		if compID == "" {
			continue
		}
		// An absent quantity means one; an explicit zero is kept
		qty := 1
		switch {
		case c.Quantity != nil:
			qty = *c.Quantity
		case c.Count != nil:
			qty = *c.Count
		}
		recipe.Components = append(recipe.Components, crafting.RecipeComponent{
			ComponentID: compID,
			Quantity:    qty,
		})
	}
	// Shaped recipes list an ingredient once per grid slot
	recipe.Components = crafting.MergeComponents(recipe.Components)

	return recipe, true
}

// ClearAll removes all recipe data from the database.
func (s *Syncer) ClearAll(ctx context.Context) error {
	if err := db.NewRecipeStore(s.db).ClearRecipes(ctx); err != nil {
		return fmt.Errorf("clearing recipes: %w", err)
	}
	return s.db.SetSyncMetadata(ctx, db.MetaRecipesCount, "0")
}
