package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/crafting-planner/internal/crafting/db"
	"github.com/rsned/crafting-planner/pkg/crafting"
)

func recipe(output string, yield int, components ...crafting.RecipeComponent) crafting.Recipe {
	return crafting.Recipe{
		ID:         output,
		Output:     crafting.RecipeOutput{ItemID: output, Quantity: yield},
		Components: components,
	}
}

func comp(id string, qty int) crafting.RecipeComponent {
	return crafting.RecipeComponent{ComponentID: id, Quantity: qty}
}

func TestCatalog_RecipesAndItems(t *testing.T) {
	c := New()
	c.AddRecipe(recipe("stick", 4, comp("oak_planks", 2)))
	c.AddRecipe(recipe("wooden_pickaxe", 1, comp("oak_planks", 3), comp("stick", 2)))
	c.AddRecipe(recipe("stick", 1, comp("bamboo", 2)))

	id, ok := c.ItemID("stick")
	require.True(t, ok)
	assert.Equal(t, 0, id)

	_, ok = c.ItemID("oak_planks")
	assert.True(t, ok, "components are registered as items")

	_, ok = c.ItemID("diamond")
	assert.False(t, ok)

	alts := c.RecipesFor("stick")
	require.Len(t, alts, 2)
	assert.Equal(t, 4, alts[0].Output.Quantity, "first alternative stays first")

	assert.Nil(t, c.RecipesFor("oak_planks"))
	assert.Equal(t, []string{"stick", "wooden_pickaxe"}, c.UsedIn("oak_planks"))
	assert.Nil(t, c.UsedIn("wooden_pickaxe"))
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, []string{"stick", "oak_planks", "wooden_pickaxe", "bamboo"}, c.Items())
}

func TestCatalog_AddItemKeepsID(t *testing.T) {
	c := New()
	first := c.AddItem("dirt")
	second := c.AddItem("sand")
	assert.Equal(t, first, c.AddItem("dirt"))
	assert.NotEqual(t, first, second)
}

func TestCatalog_Suggest(t *testing.T) {
	c := New()
	for _, name := range []string{"oak_planks", "oak_log", "stick", "stone", "cobblestone", "diamond"} {
		c.AddItem(name)
	}

	tests := []struct {
		name  string
		input string
		limit int
		want  []string
	}{
		{name: "exact match first", input: "stick", limit: 1, want: []string{"stick"}},
		{name: "prefix", input: "oak", limit: 5, want: []string{"oak_log", "oak_planks"}},
		{name: "typo", input: "diamnod", limit: 3, want: []string{"diamond"}},
		{name: "substring", input: "stone", limit: 2, want: []string{"stone", "cobblestone"}},
		{name: "nothing close", input: "netherite_ingot", limit: 3, want: []string{}},
		{name: "empty input", input: "  ", limit: 3, want: nil},
		{name: "zero limit", input: "stick", limit: 0, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Suggest(tt.input, tt.limit))
		})
	}
}

type fakeSource struct {
	items   []db.Item
	recipes []crafting.Recipe
	err     error
}

func (f *fakeSource) ListItems(ctx context.Context) ([]db.Item, error) {
	return f.items, f.err
}

func (f *fakeSource) GetAllRecipes(ctx context.Context) ([]crafting.Recipe, error) {
	return f.recipes, nil
}

func TestLoad(t *testing.T) {
	src := &fakeSource{
		items:   []db.Item{{ID: 1, Name: "cobblestone"}, {ID: 2, Name: "furnace"}},
		recipes: []crafting.Recipe{recipe("furnace", 1, comp("cobblestone", 8))},
	}

	c, err := Load(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, c.RecipesFor("furnace"), 1)
	assert.Equal(t, []string{"furnace"}, c.UsedIn("cobblestone"))

	src.err = errors.New("boom")
	_, err = Load(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading items")
}

func TestCatalog_MergesRepeatedComponents(t *testing.T) {
	c := New()
	c.AddRecipe(recipe("torch", 4, comp("stick", 1), comp("coal", 1), comp("stick", 1)))

	alts := c.RecipesFor("torch")
	require.Len(t, alts, 1)
	assert.Equal(t, []crafting.RecipeComponent{
		comp("stick", 2),
		comp("coal", 1),
	}, alts[0].Components)
	assert.Equal(t, []string{"torch"}, c.UsedIn("stick"))
}
