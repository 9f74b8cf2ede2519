// Package engine contains the crafting requirement resolver and the query
// logic built on it.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rsned/crafting-planner/internal/logger"
	"github.com/rsned/crafting-planner/pkg/crafting"
)

const suggestionLimit = 3

// Catalog is the recipe data the Engine queries.
type Catalog interface {
	Oracle
	UsedIn(name string) []string
	Suggest(name string, limit int) []string
}

// Options configures an Engine.
type Options struct {
	TerminalItems   []string
	AchievableItems []string
	MaxSearchDepth  int
	MaxPlanDepth    int
	CacheSize       int
	Logger          *slog.Logger
}

// Engine is the main query engine for crafting operations.
type Engine struct {
	catalog        Catalog
	resolver       *Resolver
	achievable     map[string]struct{}
	maxSearchDepth int
}

// New creates a new Engine over the given catalog.
func New(catalog Catalog, opts Options) *Engine {
	if opts.MaxSearchDepth <= 0 {
		opts.MaxSearchDepth = DefaultMaxSearchDepth
	}
	if opts.MaxPlanDepth <= 0 {
		opts.MaxPlanDepth = DefaultMaxPlanDepth
	}
	// Zero means the default; a negative size disables the cache
	if opts.CacheSize == 0 {
		opts.CacheSize = DefaultCacheSize
	}

	achievable := make(map[string]struct{}, len(opts.AchievableItems))
	for _, item := range opts.AchievableItems {
		achievable[item] = struct{}{}
	}

	classifier := NewClassifier(catalog, opts.TerminalItems)
	resolver := NewResolver(catalog, classifier,
		WithMaxPlanDepth(opts.MaxPlanDepth),
		WithCacheSize(opts.CacheSize),
		WithLogger(opts.Logger),
	)

	return &Engine{
		catalog:        catalog,
		resolver:       resolver,
		achievable:     achievable,
		maxSearchDepth: opts.MaxSearchDepth,
	}
}

// Resolver returns the resolver backing the engine.
func (e *Engine) Resolver() *Resolver {
	return e.resolver
}

// unknownItem builds an ErrUnknownItem error with close item names.
func (e *Engine) unknownItem(item string) error {
	suggestions := e.catalog.Suggest(item, suggestionLimit)
	if len(suggestions) == 0 {
		return fmt.Errorf("%w: %q", ErrUnknownItem, item)
	}
	return fmt.Errorf("%w: %q (did you mean %s?)", ErrUnknownItem, item, strings.Join(suggestions, ", "))
}

// Requirements executes the crafting_requirements tool logic.
func (e *Engine) Requirements(ctx context.Context, req crafting.RequirementsRequest) (*crafting.RequirementsResponse, error) {
	// Apply defaults
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	if !e.resolver.known(req.Item) {
		return nil, e.unknownItem(req.Item)
	}

	maxDepth := e.resolver.MaxCraftingDepth(req.Item, req.Quantity, e.maxSearchDepth)
	if req.AutoDepth {
		req.Depth = maxDepth
	}

	reqs, ok := e.resolver.RequirementsAtDepth(req.Item, req.Quantity, req.Depth)
	if !ok {
		return nil, fmt.Errorf("%w: depth %d", ErrInvalidRequest, req.Depth)
	}

	logger.FromContext(ctx).Debug("requirements resolved",
		"item", req.Item, "quantity", req.Quantity, "depth", req.Depth, "materials", len(reqs))

	return &crafting.RequirementsResponse{
		Item:         req.Item,
		Quantity:     req.Quantity,
		Depth:        req.Depth,
		MaxDepth:     maxDepth,
		Requirements: reqs.Components(),
	}, nil
}

// CraftingDepth executes the max_crafting_depth tool logic.
func (e *Engine) CraftingDepth(ctx context.Context, req crafting.DepthRequest) (*crafting.DepthResponse, error) {
	// Apply defaults
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	if req.MaxSearchDepth <= 0 {
		req.MaxSearchDepth = e.maxSearchDepth
	}

	if !e.resolver.known(req.Item) {
		return nil, e.unknownItem(req.Item)
	}

	depth := e.resolver.MaxCraftingDepth(req.Item, req.Quantity, req.MaxSearchDepth)
	logger.FromContext(ctx).Debug("crafting depth probed", "item", req.Item, "depth", depth)

	return &crafting.DepthResponse{
		Item:     req.Item,
		Quantity: req.Quantity,
		MaxDepth: depth,
	}, nil
}

// CraftingPlan executes the crafting_plan tool logic. The request inventory
// is consumed by a private copy, so concurrent calls never share state.
func (e *Engine) CraftingPlan(ctx context.Context, req crafting.PlanRequest) (*crafting.PlanResponse, error) {
	// Apply defaults
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	if !e.resolver.known(req.Item) {
		return nil, e.unknownItem(req.Item)
	}

	inventory := crafting.BuildInventory(req.Inventory)
	plan, err := e.resolver.BuildPlan(req.Item, req.Quantity, inventory)
	if err != nil {
		return nil, fmt.Errorf("planning %s: %w", req.Item, err)
	}

	maxDepth := e.resolver.MaxCraftingDepth(req.Item, req.Quantity, e.maxSearchDepth)

	logger.FromContext(ctx).Debug("plan built",
		"item", req.Item, "quantity", req.Quantity, "steps", len(plan.Steps), "missing", len(plan.Required))

	return &crafting.PlanResponse{
		Item:       req.Item,
		Quantity:   req.Quantity,
		Complete:   plan.Complete(),
		Required:   plan.Required.Components(),
		Steps:      plan.StepLines(),
		Leftovers:  plan.Leftovers.Components(),
		MaxDepth:   maxDepth,
		TimeoutSec: CalculateTimeout(maxDepth, !plan.Complete()),
		Report:     e.resolver.Describe(req.Item, req.Quantity, inventory, plan),
	}, nil
}

// PlanBatch builds independent plans for every request concurrently. Each
// request gets its own inventory, leftovers and plan. Results keep request
// order; the first failure cancels the remaining work.
func (e *Engine) PlanBatch(ctx context.Context, reqs []crafting.PlanRequest) ([]*crafting.PlanResponse, error) {
	results := make([]*crafting.PlanResponse, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			resp, err := e.CraftingPlan(gctx, req)
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			results[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Timeout executes the crafting_timeout tool logic.
func (e *Engine) Timeout(ctx context.Context, req crafting.TimeoutRequest) (*crafting.TimeoutResponse, error) {
	if req.Depth < 0 {
		return nil, fmt.Errorf("%w: depth %d", ErrInvalidRequest, req.Depth)
	}
	return &crafting.TimeoutResponse{
		TimeoutSec: CalculateTimeout(req.Depth, req.MissingResources),
	}, nil
}
