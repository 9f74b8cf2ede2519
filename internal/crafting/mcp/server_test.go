package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/crafting-planner/internal/crafting/catalog"
	"github.com/rsned/crafting-planner/internal/crafting/engine"
	"github.com/rsned/crafting-planner/pkg/crafting"
)

func newTestServer() *Server {
	c := catalog.New()
	for _, r := range []crafting.Recipe{
		{
			ID:         "oak_planks#0",
			Output:     crafting.RecipeOutput{ItemID: "oak_planks", Quantity: 4},
			Components: []crafting.RecipeComponent{{ComponentID: "oak_log", Quantity: 1}},
		},
		{
			ID:         "stick#0",
			Output:     crafting.RecipeOutput{ItemID: "stick", Quantity: 4},
			Components: []crafting.RecipeComponent{{ComponentID: "oak_planks", Quantity: 2}},
		},
		{
			ID:     "torch#0",
			Output: crafting.RecipeOutput{ItemID: "torch", Quantity: 4},
			Components: []crafting.RecipeComponent{
				{ComponentID: "stick", Quantity: 1},
				{ComponentID: "coal", Quantity: 1},
			},
		},
	} {
		c.AddRecipe(r)
	}

	eng := engine.New(c, engine.Options{
		TerminalItems:   []string{"coal"},
		AchievableItems: []string{"oak_log", "coal"},
	})
	return NewServer(eng, slog.New(slog.NewTextHandler(io.Discard, nil)), "test")
}

// roundTrip feeds each request line to the server and decodes every response.
func roundTrip(t *testing.T, s *Server, lines ...string) []Response {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, s.Run(context.Background(), in, &out))

	var responses []Response
	scanner := bufio.NewScanner(&out)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var resp Response
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}
	require.NoError(t, scanner.Err())
	return responses
}

// toolText calls a tool and returns the text block and error flag.
func toolText(t *testing.T, s *Server, name string, args any) (string, bool) {
	t.Helper()
	params, err := json.Marshal(map[string]any{"name": name, "arguments": args})
	require.NoError(t, err)
	req := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":` + string(params) + `}`

	responses := roundTrip(t, s, req)
	require.Len(t, responses, 1)
	require.Nil(t, responses[0].Error)

	raw, err := json.Marshal(responses[0].Result)
	require.NoError(t, err)
	var result ToolCallResult
	require.NoError(t, json.Unmarshal(raw, &result))
	require.Len(t, result.Content, 1)
	return result.Content[0].Text, result.IsError
}

func TestServer_Protocol(t *testing.T) {
	s := newTestServer()

	responses := roundTrip(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"bogus"}`,
		`not json`,
		`{"jsonrpc":"1.0","id":4,"method":"ping"}`,
	)
	require.Len(t, responses, 5)

	assert.Nil(t, responses[0].Error)
	assert.Contains(t, mustJSON(t, responses[0].Result), `"name":"crafting-planner"`)

	tools := mustJSON(t, responses[1].Result)
	for _, name := range []string{"crafting_requirements", "max_crafting_depth", "crafting_plan", "recipe_lookup", "crafting_timeout"} {
		assert.Contains(t, tools, `"name":"`+name+`"`)
	}

	require.NotNil(t, responses[2].Error)
	assert.Equal(t, ErrCodeMethodNotFound, responses[2].Error.Code)

	require.NotNil(t, responses[3].Error)
	assert.Equal(t, ErrCodeParse, responses[3].Error.Code)

	require.NotNil(t, responses[4].Error)
	assert.Equal(t, ErrCodeInvalidReq, responses[4].Error.Code)
}

func TestServer_UnknownTool(t *testing.T) {
	s := newTestServer()

	responses := roundTrip(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"craft_query"}}`)
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, ErrCodeInvalidParams, responses[0].Error.Code)
}

func TestTool_CraftingRequirements(t *testing.T) {
	s := newTestServer()

	text, isErr := toolText(t, s, "crafting_requirements", map[string]any{"item": "torch", "quantity": 4, "auto_depth": true})
	require.False(t, isErr, text)

	var resp crafting.RequirementsResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Equal(t, 2, resp.Depth)
	assert.Equal(t, []crafting.Component{
		{ID: "coal", Quantity: 1},
		{ID: "oak_log", Quantity: 1},
	}, resp.Requirements)
}

func TestTool_ValidationErrors(t *testing.T) {
	s := newTestServer()

	text, isErr := toolText(t, s, "crafting_requirements", map[string]any{"depth": -2})
	assert.True(t, isErr)
	assert.Contains(t, text, "item is required")
	assert.Contains(t, text, "depth must be at least 0")

	text, isErr = toolText(t, s, "crafting_plan", map[string]any{
		"item":      "torch",
		"inventory": []map[string]any{{"quantity": 3}},
	})
	assert.True(t, isErr)
	assert.Contains(t, text, "inventory[0].id is required")

	text, isErr = toolText(t, s, "max_crafting_depth", map[string]any{"item": "torch", "max_search_depth": 500})
	assert.True(t, isErr)
	assert.Contains(t, text, "max_search_depth must be at most 64")
}

func TestTool_CraftingPlan(t *testing.T) {
	s := newTestServer()

	text, isErr := toolText(t, s, "crafting_plan", map[string]any{
		"item":      "torch",
		"quantity":  4,
		"inventory": []map[string]any{{"id": "coal", "quantity": 1}},
	})
	require.False(t, isErr, text)

	var resp crafting.PlanResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.False(t, resp.Complete)
	assert.Equal(t, []crafting.Component{{ID: "oak_log", Quantity: 1}}, resp.Required)
	assert.Equal(t, []string{
		"Craft 1 oak_log -> 4 oak_planks",
		"Craft 2 oak_planks -> 4 stick",
		"Craft 1 stick + 1 coal -> 4 torch",
	}, resp.Steps)
	assert.Equal(t, 360, resp.TimeoutSec)
}

func TestTool_UnknownItem(t *testing.T) {
	s := newTestServer()

	text, isErr := toolText(t, s, "crafting_plan", map[string]any{"item": "torhc"})
	assert.True(t, isErr)
	assert.Contains(t, text, "unknown item")
	assert.Contains(t, text, "torch")
}

func TestTool_RecipeLookupAndTimeout(t *testing.T) {
	s := newTestServer()

	text, isErr := toolText(t, s, "recipe_lookup", map[string]any{"item": "stick"})
	require.False(t, isErr, text)
	var lookup crafting.RecipeLookupResponse
	require.NoError(t, json.Unmarshal([]byte(text), &lookup))
	assert.True(t, lookup.Known)
	assert.Equal(t, []string{"torch"}, lookup.UsedIn)
	assert.True(t, lookup.Achievable)

	text, isErr = toolText(t, s, "crafting_timeout", map[string]any{"depth": 1})
	require.False(t, isErr, text)
	assert.JSONEq(t, `{"timeout_sec": 180}`, text)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	s := newTestServer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Run(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
