package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/crafting-planner/internal/crafting/catalog"
	"github.com/rsned/crafting-planner/pkg/crafting"
)

func TestCraftItem_SimpleRecipe(t *testing.T) {
	r := newSimpleResolver()
	inventory := crafting.Inventory{}
	leftovers := crafting.Inventory{}

	plan, err := r.CraftItem("A", 1, inventory, leftovers, nil)
	require.NoError(t, err)

	assert.Equal(t, crafting.Requirements{"B": 2}, plan.Required)
	assert.Equal(t, []string{"Craft 2 B -> 3 A"}, plan.StepLines())
	assert.Equal(t, crafting.Inventory{"A": 2}, leftovers)
	assert.Empty(t, inventory)
}

func TestCraftItem_RoundsUpToWholeBatches(t *testing.T) {
	tests := []struct {
		count        int
		wantB        int
		wantLeftover int
	}{
		{count: 1, wantB: 2, wantLeftover: 2},
		{count: 3, wantB: 2, wantLeftover: 0},
		{count: 4, wantB: 4, wantLeftover: 2},
		{count: 6, wantB: 4, wantLeftover: 0},
	}

	for _, tt := range tests {
		r := newSimpleResolver()
		leftovers := crafting.Inventory{}

		plan, err := r.CraftItem("A", tt.count, nil, leftovers, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.wantB, plan.Required["B"], "count %d", tt.count)
		assert.Equal(t, tt.wantLeftover, leftovers["A"], "count %d", tt.count)
		assert.Len(t, plan.Steps, 1)
	}
}

func TestCraftItem_NestedRecipe(t *testing.T) {
	r := newTestResolver()
	leftovers := crafting.Inventory{}

	plan, err := r.CraftItem("wooden_pickaxe", 1, crafting.Inventory{}, leftovers, nil)
	require.NoError(t, err)

	assert.Equal(t, crafting.Requirements{"oak_log": 2}, plan.Required)
	assert.Equal(t, []string{
		"Craft 1 oak_log -> 4 oak_planks",
		"Craft 1 oak_log -> 4 oak_planks",
		"Craft 2 oak_planks -> 4 stick",
		"Craft 3 oak_planks + 2 stick -> 1 wooden_pickaxe",
	}, plan.StepLines())
	assert.Equal(t, crafting.Inventory{"oak_planks": 3, "stick": 2}, leftovers)

	last := plan.Steps[len(plan.Steps)-1]
	assert.Equal(t, 1, last.Batches)
	assert.Equal(t, crafting.Component{ID: "wooden_pickaxe", Quantity: 1}, last.Output)
}

func TestCraftItem_TerminalIngredientIsGathered(t *testing.T) {
	r := newTestResolver()

	plan, err := r.CraftItem("torch", 4, nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, crafting.Requirements{"oak_log": 1, "coal": 1}, plan.Required)
	assert.Equal(t, []string{
		"Craft 1 oak_log -> 4 oak_planks",
		"Craft 2 oak_planks -> 4 stick",
		"Craft 1 stick + 1 coal -> 4 torch",
	}, plan.StepLines())
}

func TestCraftItem_TerminalTargetIsNotCrafted(t *testing.T) {
	r := newTestResolver()

	plan, err := r.CraftItem("coal", 5, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, crafting.Requirements{"coal": 5}, plan.Required)
	assert.Empty(t, plan.Steps)
}

func TestCraftItem_BaseTargetDrawsInventory(t *testing.T) {
	r := newTestResolver()
	inventory := crafting.Inventory{"oak_log": 1}

	plan, err := r.CraftItem("oak_log", 3, inventory, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, crafting.Requirements{"oak_log": 2}, plan.Required)
	assert.Empty(t, plan.Steps)
	assert.Empty(t, inventory)
}

func TestCraftItem_LeftoversCarryAcrossCalls(t *testing.T) {
	r := newTestResolver()
	inventory := crafting.Inventory{}
	leftovers := crafting.Inventory{}

	plan, err := r.CraftItem("stick", 1, inventory, leftovers, nil)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)

	// The second stick comes out of the first batch's surplus
	plan, err = r.CraftItem("stick", 1, inventory, leftovers, plan)
	require.NoError(t, err)

	assert.Len(t, plan.Steps, 2)
	assert.Equal(t, crafting.Requirements{"oak_log": 1}, plan.Required)
	assert.Equal(t, crafting.Inventory{"stick": 2, "oak_planks": 2}, leftovers)
}

func TestCraftItem_LeftoversBeforeInventory(t *testing.T) {
	r := newTestResolver()
	inventory := crafting.Inventory{"stick": 5}
	leftovers := crafting.Inventory{"stick": 2}

	plan, err := r.CraftItem("stick", 4, inventory, leftovers, nil)
	require.NoError(t, err)

	assert.True(t, plan.Complete())
	assert.Empty(t, plan.Steps)
	assert.Empty(t, leftovers)
	assert.Equal(t, crafting.Inventory{"stick": 3}, inventory)
}

func TestCraftItem_PartialInventory(t *testing.T) {
	r := newTestResolver()
	inventory := crafting.Inventory{"oak_planks": 1}
	leftovers := crafting.Inventory{}

	plan, err := r.CraftItem("oak_planks", 5, inventory, leftovers, nil)
	require.NoError(t, err)

	assert.Equal(t, crafting.Requirements{"oak_log": 1}, plan.Required)
	assert.Equal(t, []string{"Craft 1 oak_log -> 4 oak_planks"}, plan.StepLines())
	assert.Empty(t, inventory)
	assert.Empty(t, leftovers)
}

func TestCraftItem_CycleDetected(t *testing.T) {
	r := newTestResolver(WithMaxPlanDepth(8))

	_, err := r.CraftItem("iron_pickaxe", 1, nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCycleDetected))

	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, "iron_pickaxe", cycleErr.Path[0])

	cycle := cycleErr.Cycle()
	require.Len(t, cycle, 3)
	assert.Equal(t, cycle[0], cycle[len(cycle)-1])
	assert.Contains(t, err.Error(), "expanding iron_pickaxe")
}

func TestCraftItem_TerminalBreaksLoop(t *testing.T) {
	c := newTestCatalog()
	r := NewResolver(c, NewClassifier(c, []string{"coal", "iron_ingot"}))

	plan, err := r.CraftItem("iron_pickaxe", 1, nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, crafting.Requirements{"iron_ingot": 3, "oak_log": 1}, plan.Required)
	assert.Equal(t, []string{
		"Craft 1 oak_log -> 4 oak_planks",
		"Craft 2 oak_planks -> 4 stick",
		"Craft 3 iron_ingot + 2 stick -> 1 iron_pickaxe",
	}, plan.StepLines())
}

// flakyOracle offers a recipe for gadget on the first lookup only.
type flakyOracle struct {
	*catalog.Catalog
	calls int
}

func (o *flakyOracle) RecipesFor(name string) []crafting.Recipe {
	if name != "gadget" {
		return o.Catalog.RecipesFor(name)
	}
	o.calls++
	if o.calls == 1 {
		return o.Catalog.RecipesFor(name)
	}
	return nil
}

func TestCraftItem_MissingRecipeFallsBackToRequired(t *testing.T) {
	c := catalog.New()
	c.AddRecipe(recipe("gadget", 1, comp("gear", 2)))
	oracle := &flakyOracle{Catalog: c}
	r := NewResolver(oracle, NewClassifier(oracle, nil))

	plan, err := r.CraftItem("gadget", 2, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, crafting.Requirements{"gadget": 2}, plan.Required)
	assert.Empty(t, plan.Steps)
}

func TestCraftItem_NilArguments(t *testing.T) {
	r := newSimpleResolver()

	plan, err := r.CraftItem("A", 1, nil, nil, &Plan{})
	require.NoError(t, err)
	require.NotNil(t, plan.Required)
	assert.Equal(t, 2, plan.Required["B"])
}

func TestBuildPlan(t *testing.T) {
	r := newTestResolver()
	inventory := crafting.Inventory{"oak_planks": 3}

	plan, err := r.BuildPlan("wooden_pickaxe", 1, inventory)
	require.NoError(t, err)

	assert.Equal(t, crafting.Inventory{"oak_planks": 3}, inventory, "caller inventory untouched")
	assert.Equal(t, crafting.Requirements{"oak_log": 1}, plan.Required)
	assert.Equal(t, []string{
		"Craft 1 oak_log -> 4 oak_planks",
		"Craft 2 oak_planks -> 4 stick",
		"Craft 3 oak_planks + 2 stick -> 1 wooden_pickaxe",
	}, plan.StepLines())
	assert.Equal(t, crafting.Requirements{"oak_planks": 2, "stick": 2}, plan.Leftovers)
	assert.False(t, plan.Complete())
}

func TestBuildPlan_CompleteFromInventory(t *testing.T) {
	r := newTestResolver()

	plan, err := r.BuildPlan("wooden_pickaxe", 1, crafting.Inventory{"oak_planks": 3, "stick": 2})
	require.NoError(t, err)

	assert.True(t, plan.Complete())
	assert.Empty(t, plan.Leftovers)
	assert.Equal(t, []string{"Craft 3 oak_planks + 2 stick -> 1 wooden_pickaxe"}, plan.StepLines())
}

func TestCraftItem_RepeatedIngredientIsOneStep(t *testing.T) {
	c := catalog.New()
	c.AddRecipe(recipe("oak_planks", 4, comp("oak_log", 1)))
	c.AddRecipe(recipe("stick", 4, comp("oak_planks", 2)))
	c.AddRecipe(recipe("torch", 4, comp("stick", 1), comp("coal", 1), comp("stick", 1)))
	r := NewResolver(c, NewClassifier(c, []string{"coal"}))
	leftovers := crafting.Inventory{}

	plan, err := r.CraftItem("torch", 4, nil, leftovers, nil)
	require.NoError(t, err)

	assert.Equal(t, crafting.Requirements{"oak_log": 1, "coal": 1}, plan.Required)
	assert.Equal(t, []string{
		"Craft 1 oak_log -> 4 oak_planks",
		"Craft 2 oak_planks -> 4 stick",
		"Craft 2 stick + 1 coal -> 4 torch",
	}, plan.StepLines())
	assert.Equal(t, crafting.Inventory{"oak_planks": 2, "stick": 2}, leftovers)
}
