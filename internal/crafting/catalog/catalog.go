// Package catalog holds recipe data in memory and answers the lookups the
// resolver makes while expanding recipes.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/rsned/crafting-planner/internal/crafting/db"
	"github.com/rsned/crafting-planner/pkg/crafting"
)

// Source is the persistent store a Catalog is loaded from.
type Source interface {
	ListItems(ctx context.Context) ([]db.Item, error)
	GetAllRecipes(ctx context.Context) ([]crafting.Recipe, error)
}

// Catalog is an in-memory recipe table keyed by item name.
// It is safe for concurrent readers once fully built.
type Catalog struct {
	ids     map[string]int
	names   []string
	recipes map[string][]crafting.Recipe
	usedIn  map[string][]string
}

// New creates an empty Catalog.
func New() *Catalog {
	return &Catalog{
		ids:     make(map[string]int),
		recipes: make(map[string][]crafting.Recipe),
		usedIn:  make(map[string][]string),
	}
}

// Load builds a Catalog from every item and recipe in src.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	items, err := src.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	recipes, err := src.GetAllRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading recipes: %w", err)
	}

	c := New()
	for _, it := range items {
		c.AddItem(it.Name)
	}
	for _, r := range recipes {
		c.AddRecipe(r)
	}
	return c, nil
}

// AddItem registers name and returns its ID. Known names keep their ID.
func (c *Catalog) AddItem(name string) int {
	if id, ok := c.ids[name]; ok {
		return id
	}
	id := len(c.names)
	c.ids[name] = id
	c.names = append(c.names, name)
	return id
}

// AddRecipe appends r as the next alternative for its output item.
// The output and every component are registered as items. Repeated
// components are merged into one entry.
func (c *Catalog) AddRecipe(r crafting.Recipe) {
	r.Components = crafting.MergeComponents(r.Components)
	output := r.Output.ItemID
	c.AddItem(output)
	c.recipes[output] = append(c.recipes[output], r)

	for _, comp := range r.Components {
		c.AddItem(comp.ComponentID)
		users := c.usedIn[comp.ComponentID]
		i := sort.SearchStrings(users, output)
		if i < len(users) && users[i] == output {
			continue
		}
		users = append(users, "")
		copy(users[i+1:], users[i:])
		users[i] = output
		c.usedIn[comp.ComponentID] = users
	}
}

// ItemID returns the ID for name, if the item is known.
func (c *Catalog) ItemID(name string) (int, bool) {
	id, ok := c.ids[name]
	return id, ok
}

// RecipesFor returns the recipe alternatives for name, or nil for raw items.
func (c *Catalog) RecipesFor(name string) []crafting.Recipe {
	return c.recipes[name]
}

// Items returns every known item name in registration order.
func (c *Catalog) Items() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// UsedIn returns the items whose recipes consume name, sorted.
func (c *Catalog) UsedIn(name string) []string {
	users := c.usedIn[name]
	if len(users) == 0 {
		return nil
	}
	out := make([]string, len(users))
	copy(out, users)
	return out
}

// Len returns the number of known items.
func (c *Catalog) Len() int {
	return len(c.names)
}

type suggestion struct {
	name  string
	score float64
}

// Suggest returns up to limit known item names close to name, best first.
func (c *Catalog) Suggest(name string, limit int) []string {
	token := strings.ToLower(strings.TrimSpace(name))
	if token == "" || limit <= 0 {
		return nil
	}

	var results []suggestion
	for _, cand := range c.names {
		var score float64
		switch {
		case token == cand:
			score = 1.0
		case strings.HasPrefix(cand, token) && len(token) >= 2:
			score = 0.9
		case strings.Contains(cand, token) && len(token) >= 3:
			score = 0.8
		default:
			dist := levenshtein.ComputeDistance(token, cand)
			if dist > levenshteinLimit(len(cand)) {
				continue
			}
			score = 0.72 - (0.08 * float64(dist))
		}
		results = append(results, suggestion{name: cand, score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score == results[j].score {
			return results[i].name < results[j].name
		}
		return results[i].score > results[j].score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.name)
	}
	return out
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
