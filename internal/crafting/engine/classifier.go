package engine

// Classifier decides whether an item is a terminal resource.
type Classifier struct {
	oracle   Oracle
	terminal map[string]struct{}
}

// NewClassifier creates a Classifier. Items in terminal are always treated as
// base items, even when the oracle has a recipe for them; this is how recipes
// that loop back through themselves are cut off.
func NewClassifier(oracle Oracle, terminal []string) *Classifier {
	set := make(map[string]struct{}, len(terminal))
	for _, item := range terminal {
		set[item] = struct{}{}
	}
	return &Classifier{oracle: oracle, terminal: set}
}

// IsBase reports whether item is terminal or has no recipe.
func (c *Classifier) IsBase(item string) bool {
	if c.IsTerminal(item) {
		return true
	}
	return len(c.oracle.RecipesFor(item)) == 0
}

// IsTerminal reports whether item is in the terminal override set.
func (c *Classifier) IsTerminal(item string) bool {
	_, ok := c.terminal[item]
	return ok
}

// TerminalCount returns the size of the terminal override set.
func (c *Classifier) TerminalCount() int {
	return len(c.terminal)
}
