package engine

import (
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rsned/crafting-planner/pkg/crafting"
)

const (
	// DefaultMaxSearchDepth bounds how far MaxCraftingDepth unrolls recipes.
	DefaultMaxSearchDepth = 10
	// DefaultMaxPlanDepth bounds the recipe nesting CraftItem follows before
	// reporting a cycle.
	DefaultMaxPlanDepth = 64
	// DefaultCacheSize is the number of requirement results kept per resolver.
	DefaultCacheSize = 4096
)

type requirementsKey struct {
	target string
	count  int
	depth  int
}

// Resolver computes crafting requirements and plans against an Oracle.
// It keeps no per-call state, so one Resolver can serve concurrent callers
// as long as each plan gets its own inventory, leftovers and Plan.
type Resolver struct {
	oracle       Oracle
	classifier   *Classifier
	maxPlanDepth int
	cache        *lru.Cache[requirementsKey, crafting.Requirements]
	logger       *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxPlanDepth sets the recursion limit for CraftItem.
func WithMaxPlanDepth(depth int) Option {
	return func(r *Resolver) {
		if depth > 0 {
			r.maxPlanDepth = depth
		}
	}
}

// WithCacheSize memoizes up to size RequirementsAtDepth results.
// A size of zero disables the cache.
func WithCacheSize(size int) Option {
	return func(r *Resolver) {
		if size <= 0 {
			r.cache = nil
			return
		}
		cache, err := lru.New[requirementsKey, crafting.Requirements](size)
		if err == nil {
			r.cache = cache
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a Resolver. The classifier must wrap the same oracle.
func NewResolver(oracle Oracle, classifier *Classifier, opts ...Option) *Resolver {
	r := &Resolver{
		oracle:       oracle,
		classifier:   classifier,
		maxPlanDepth: DefaultMaxPlanDepth,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classifier returns the classifier the resolver uses.
func (r *Resolver) Classifier() *Classifier {
	return r.classifier
}

// known reports whether target names an item the oracle knows.
func (r *Resolver) known(target string) bool {
	if target == "" {
		return false
	}
	_, ok := r.oracle.ItemID(target)
	return ok
}
