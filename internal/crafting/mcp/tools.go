package mcp

import (
	"context"
	"encoding/json"

	"github.com/rsned/crafting-planner/internal/crafting/engine"
	"github.com/rsned/crafting-planner/pkg/crafting"
)

// ToolDefinition describes an MCP tool.
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema JSONSchema `json:"inputSchema"`
}

// JSONSchema is a simplified JSON Schema representation.
type JSONSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a schema property.
type Property struct {
	Type        string              `json:"type,omitempty"`
	Description string              `json:"description,omitempty"`
	Default     any                 `json:"default,omitempty"`
	Minimum     *float64            `json:"minimum,omitempty"`
	Maximum     *float64            `json:"maximum,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Required    []string            `json:"required,omitempty"`
}

type toolHandler func(s *Server, ctx context.Context, args json.RawMessage) (any, error)

var toolHandlers = map[string]toolHandler{
	"crafting_requirements": (*Server).toolRequirements,
	"max_crafting_depth":    (*Server).toolMaxCraftingDepth,
	"crafting_plan":         (*Server).toolCraftingPlan,
	"recipe_lookup":         (*Server).toolRecipeLookup,
	"crafting_timeout":      (*Server).toolCraftingTimeout,
}

// GetToolDefinitions returns all tool definitions.
func GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		craftingRequirementsTool(),
		maxCraftingDepthTool(),
		craftingPlanTool(),
		recipeLookupTool(),
		craftingTimeoutTool(),
	}
}

func ptr(f float64) *float64 {
	return &f
}

func itemProperty() Property {
	return Property{
		Type:        "string",
		Description: "Item name, e.g. \"wooden_pickaxe\"",
	}
}

func quantityProperty() Property {
	return Property{
		Type:        "integer",
		Description: "How many to craft",
		Default:     1,
		Minimum:     ptr(1),
	}
}

func craftingRequirementsTool() ToolDefinition {
	return ToolDefinition{
		Name:        "crafting_requirements",
		Description: "List the materials needed to craft an item when recipes are unrolled a fixed number of levels. Terminal items are never expanded.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"item":     itemProperty(),
				"quantity": quantityProperty(),
				"depth": {
					Type:        "integer",
					Description: "Recipe levels to unroll below the item (0 lists direct ingredients)",
					Default:     0,
					Minimum:     ptr(0),
				},
				"auto_depth": {
					Type:        "boolean",
					Description: "Unroll to the deepest depth that still changes the result",
					Default:     false,
				},
			},
			Required: []string{"item"},
		},
	}
}

func maxCraftingDepthTool() ToolDefinition {
	return ToolDefinition{
		Name:        "max_crafting_depth",
		Description: "Find the deepest unrolling depth that still changes an item's requirements.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"item":     itemProperty(),
				"quantity": quantityProperty(),
				"max_search_depth": {
					Type:        "integer",
					Description: "Upper bound on the depths tried",
					Default:     engine.DefaultMaxSearchDepth,
					Minimum:     ptr(1),
					Maximum:     ptr(64),
				},
			},
			Required: []string{"item"},
		},
	}
}

func craftingPlanTool() ToolDefinition {
	return ToolDefinition{
		Name:        "crafting_plan",
		Description: "Build an ordered crafting plan for an item from an inventory. Returns the base items still missing, the craft steps, the leftovers and a text report.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"item":     itemProperty(),
				"quantity": quantityProperty(),
				"inventory": {
					Type:        "array",
					Description: "Items currently on hand",
					Items: &Property{
						Type: "object",
						Properties: map[string]Property{
							"id":       {Type: "string", Description: "Item name"},
							"quantity": {Type: "integer", Description: "Quantity on hand"},
						},
						Required: []string{"id", "quantity"},
					},
				},
			},
			Required: []string{"item"},
		},
	}
}

func recipeLookupTool() ToolDefinition {
	return ToolDefinition{
		Name:        "recipe_lookup",
		Description: "Look up an item: its recipes, what uses it, whether it is a base or terminal item, and whether it can be made from gatherable items. Unknown names return close matches.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"item": itemProperty(),
			},
			Required: []string{"item"},
		},
	}
}

func craftingTimeoutTool() ToolDefinition {
	return ToolDefinition{
		Name:        "crafting_timeout",
		Description: "Seconds to allow an executor for a task unrolled to the given depth, with extra time when resources must be gathered.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"depth": {
					Type:        "integer",
					Description: "Chosen unrolling depth",
					Minimum:     ptr(0),
				},
				"missing_resources": {
					Type:        "boolean",
					Description: "Whether base items still need to be gathered",
					Default:     false,
				},
			},
			Required: []string{"depth"},
		},
	}
}

func (s *Server) toolRequirements(ctx context.Context, args json.RawMessage) (any, error) {
	var req crafting.RequirementsRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return s.engine.Requirements(ctx, req)
}

func (s *Server) toolMaxCraftingDepth(ctx context.Context, args json.RawMessage) (any, error) {
	var req crafting.DepthRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return s.engine.CraftingDepth(ctx, req)
}

func (s *Server) toolCraftingPlan(ctx context.Context, args json.RawMessage) (any, error) {
	var req crafting.PlanRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return s.engine.CraftingPlan(ctx, req)
}

func (s *Server) toolRecipeLookup(ctx context.Context, args json.RawMessage) (any, error) {
	var req crafting.RecipeLookupRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return s.engine.RecipeLookup(ctx, req)
}

func (s *Server) toolCraftingTimeout(ctx context.Context, args json.RawMessage) (any, error) {
	var req crafting.TimeoutRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	return s.engine.Timeout(ctx, req)
}
