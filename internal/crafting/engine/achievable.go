package engine

// IsAchievable reports whether item can be produced from the achievable base
// items alone. A base item must itself be achievable; anything else is
// expanded to its deepest informative depth and every leaf must be achievable.
func (r *Resolver) IsAchievable(item string, achievable map[string]struct{}) bool {
	if _, ok := achievable[item]; ok && r.classifier.IsBase(item) {
		return true
	}

	depth := r.MaxCraftingDepth(item, 1, DefaultMaxSearchDepth)
	reqs, ok := r.RequirementsAtDepth(item, 1, depth)
	if !ok {
		return false
	}

	for leaf := range reqs {
		if _, ok := achievable[leaf]; !ok {
			return false
		}
	}
	return true
}
