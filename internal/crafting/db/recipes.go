package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rsned/crafting-planner/pkg/crafting"
)

// Item is a named resource known to the recipe data.
type Item struct {
	ID   int
	Name string
}

// RecipeStore handles recipe data access.
type RecipeStore struct {
	db *DB
}

// NewRecipeStore creates a new RecipeStore.
func NewRecipeStore(db *DB) *RecipeStore {
	return &RecipeStore{db: db}
}

// GetRecipe retrieves a single recipe by ID with its ordered components.
func (s *RecipeStore) GetRecipe(ctx context.Context, id string) (*crafting.Recipe, error) {
	recipe := &crafting.Recipe{ID: id}

	err := s.db.QueryRowContext(ctx, `
		SELECT output_item_id, output_quantity, category
		FROM recipes WHERE id = ?
	`, id).Scan(
		&recipe.Output.ItemID,
		&recipe.Output.Quantity,
		&recipe.Category,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying recipe: %w", err)
	}

	components, err := s.getRecipeComponents(ctx, id)
	if err != nil {
		return nil, err
	}
	recipe.Components = components

	return recipe, nil
}

// GetRecipesFor returns every recipe producing itemID, first alternative first.
// It returns nil when the item has no recipe.
func (s *RecipeStore) GetRecipesFor(ctx context.Context, itemID string) ([]crafting.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, output_quantity, category
		FROM recipes
		WHERE output_item_id = ?
		ORDER BY variant
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("finding recipes by output: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recipes []crafting.Recipe
	for rows.Next() {
		r := crafting.Recipe{Output: crafting.RecipeOutput{ItemID: itemID}}
		if err := rows.Scan(&r.ID, &r.Output.Quantity, &r.Category); err != nil {
			return nil, fmt.Errorf("scanning recipe: %w", err)
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range recipes {
		components, err := s.getRecipeComponents(ctx, recipes[i].ID)
		if err != nil {
			return nil, fmt.Errorf("loading components for %s: %w", recipes[i].ID, err)
		}
		recipes[i].Components = components
	}

	return recipes, nil
}

// getRecipeComponents retrieves components for a recipe in listed order.
func (s *RecipeStore) getRecipeComponents(ctx context.Context, recipeID string) ([]crafting.RecipeComponent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT component_id, quantity
		FROM recipe_components
		WHERE recipe_id = ?
		ORDER BY position
	`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("querying recipe components: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var components []crafting.RecipeComponent
	for rows.Next() {
		var c crafting.RecipeComponent
		if err := rows.Scan(&c.ComponentID, &c.Quantity); err != nil {
			return nil, fmt.Errorf("scanning component: %w", err)
		}
		components = append(components, c)
	}

	return components, rows.Err()
}

// GetAllRecipes retrieves all recipes grouped by output item, alternatives in
// variant order.
func (s *RecipeStore) GetAllRecipes(ctx context.Context) ([]crafting.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, output_item_id, output_quantity, category
		FROM recipes
		ORDER BY output_item_id, variant
	`)
	if err != nil {
		return nil, fmt.Errorf("querying all recipes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recipes []crafting.Recipe
	index := make(map[string]int)
	for rows.Next() {
		var r crafting.Recipe
		if err := rows.Scan(&r.ID, &r.Output.ItemID, &r.Output.Quantity, &r.Category); err != nil {
			return nil, fmt.Errorf("scanning recipe: %w", err)
		}
		index[r.ID] = len(recipes)
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Load every component in one pass instead of one query per recipe
	compRows, err := s.db.QueryContext(ctx, `
		SELECT recipe_id, component_id, quantity
		FROM recipe_components
		ORDER BY recipe_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying all components: %w", err)
	}
	defer func() { _ = compRows.Close() }()

	for compRows.Next() {
		var recipeID string
		var c crafting.RecipeComponent
		if err := compRows.Scan(&recipeID, &c.ComponentID, &c.Quantity); err != nil {
			return nil, fmt.Errorf("scanning component: %w", err)
		}
		i, ok := index[recipeID]
		if !ok {
			continue
		}
		recipes[i].Components = append(recipes[i].Components, c)
	}

	return recipes, compRows.Err()
}

// ListItems returns every known item in ID order.
func (s *RecipeStore) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

// EnsureItems registers item names that are not yet known.
func (s *RecipeStore) EnsureItems(ctx context.Context, names []string) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		return ensureItems(ctx, tx, names)
	})
}

func ensureItems(ctx context.Context, tx *sql.Tx, names []string) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO items (name) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("preparing item statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, name := range names {
		if name == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, name); err != nil {
			return fmt.Errorf("inserting item %s: %w", name, err)
		}
	}
	return nil
}

// BulkInsertRecipes inserts multiple recipes in a transaction. New recipes
// for an output item are added after the alternatives already stored, in the
// order given, so earlier imports keep their place. A recipe whose ID is
// already stored is replaced in its existing position. Recipes without an ID
// are named "<output>#<variant>". Every output and component name is
// registered as an item.
func (s *RecipeStore) BulkInsertRecipes(ctx context.Context, recipes []crafting.Recipe) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		existingStmt, err := tx.PrepareContext(ctx, `
			SELECT output_item_id, variant FROM recipes WHERE id = ?
		`)
		if err != nil {
			return fmt.Errorf("preparing existing recipe statement: %w", err)
		}
		defer func() { _ = existingStmt.Close() }()

		nextStmt, err := tx.PrepareContext(ctx, `
			SELECT COALESCE(MAX(variant) + 1, 0) FROM recipes WHERE output_item_id = ?
		`)
		if err != nil {
			return fmt.Errorf("preparing variant statement: %w", err)
		}
		defer func() { _ = nextStmt.Close() }()

		recipeStmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO recipes
			(id, output_item_id, variant, output_quantity, category)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing recipe statement: %w", err)
		}
		defer func() { _ = recipeStmt.Close() }()

		clearStmt, err := tx.PrepareContext(ctx, `DELETE FROM recipe_components WHERE recipe_id = ?`)
		if err != nil {
			return fmt.Errorf("preparing component cleanup statement: %w", err)
		}
		defer func() { _ = clearStmt.Close() }()

		compStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO recipe_components (recipe_id, position, component_id, quantity)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing component statement: %w", err)
		}
		defer func() { _ = compStmt.Close() }()

		var names []string
		for _, r := range recipes {
			variant, err := recipeVariant(ctx, existingStmt, nextStmt, r)
			if err != nil {
				return err
			}
			id := r.ID
			if id == "" {
				id = fmt.Sprintf("%s#%d", r.Output.ItemID, variant)
			}

			_, err = recipeStmt.ExecContext(ctx,
				id, r.Output.ItemID, variant, r.Yield(), r.Category,
			)
			if err != nil {
				return fmt.Errorf("inserting recipe %s: %w", id, err)
			}
			names = append(names, r.Output.ItemID)

			if _, err := clearStmt.ExecContext(ctx, id); err != nil {
				return fmt.Errorf("clearing components for %s: %w", id, err)
			}
			for pos, c := range r.Components {
				_, err := compStmt.ExecContext(ctx, id, pos, c.ComponentID, c.Quantity)
				if err != nil {
					return fmt.Errorf("inserting component for %s: %w", id, err)
				}
				names = append(names, c.ComponentID)
			}
		}

		return ensureItems(ctx, tx, names)
	})
}

// recipeVariant returns the alternative slot for r: its stored slot when the
// ID is already known for the same output, otherwise the next free one.
func recipeVariant(ctx context.Context, existingStmt, nextStmt *sql.Stmt, r crafting.Recipe) (int, error) {
	if r.ID != "" {
		var output string
		var variant int
		err := existingStmt.QueryRowContext(ctx, r.ID).Scan(&output, &variant)
		switch {
		case err == nil && output == r.Output.ItemID:
			return variant, nil
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			return 0, fmt.Errorf("querying recipe %s: %w", r.ID, err)
		}
	}

	var next int
	if err := nextStmt.QueryRowContext(ctx, r.Output.ItemID).Scan(&next); err != nil {
		return 0, fmt.Errorf("querying next variant for %s: %w", r.Output.ItemID, err)
	}
	return next, nil
}

// CountRecipes returns the total number of recipes.
func (s *RecipeStore) CountRecipes(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting recipes: %w", err)
	}
	return count, nil
}

// ClearRecipes removes all recipe and item data (for re-import).
func (s *RecipeStore) ClearRecipes(ctx context.Context) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		// Foreign keys cascade delete components
		if _, err := tx.ExecContext(ctx, `DELETE FROM recipes`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM items`)
		return err
	})
}
