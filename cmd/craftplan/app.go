package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/rsned/crafting-planner/internal/config"
	"github.com/rsned/crafting-planner/internal/crafting/catalog"
	"github.com/rsned/crafting-planner/internal/crafting/db"
	"github.com/rsned/crafting-planner/internal/crafting/engine"
	"github.com/rsned/crafting-planner/internal/crafting/mcp"
	"github.com/rsned/crafting-planner/internal/crafting/sync"
	"github.com/rsned/crafting-planner/internal/logger"
	"github.com/rsned/crafting-planner/pkg/crafting"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// app carries the streams the commands read and write.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// runtime is what a command needs once configuration is resolved.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	database *db.DB
}

func (r *runtime) Close() error {
	return r.database.Close()
}

func newApp(in io.Reader, out, errOut io.Writer) *cli.Command {
	a := &app{in: in, out: out, errOut: errOut}

	return &cli.Command{
		Name:      "craftplan",
		Usage:     "Resolve crafting requirements and build crafting plans",
		Version:   version,
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file with terminal and achievable item lists",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to SQLite database (overrides CRAFTPLAN_DB)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error (overrides LOG_LEVEL)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose logging",
			},
		},
		Commands: []*cli.Command{
			a.importCmd(),
			a.requirementsCmd(),
			a.depthCmd(),
			a.planCmd(),
			a.lookupCmd(),
			a.serveCmd(),
		},
	}
}

// setup loads configuration, applies flag overrides, installs the logger
// and opens the database.
func (a *app) setup(ctx context.Context, cmd *cli.Command) (*runtime, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cmd.IsSet("db") {
		cfg.DBPath = cmd.String("db")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.Bool("verbose") {
		cfg.LogLevel = "debug"
	}

	// Logs go to stderr; stdout carries results and MCP traffic
	log := logger.New(a.errOut, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	database, err := db.OpenAndInit(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &runtime{cfg: cfg, logger: log, database: database}, nil
}

// engine loads the recipe catalog and builds the query engine over it.
func (r *runtime) engine(ctx context.Context) (*engine.Engine, error) {
	cat, err := catalog.Load(ctx, db.NewRecipeStore(r.database))
	if err != nil {
		return nil, err
	}
	if cat.Len() == 0 {
		r.logger.Warn("recipe database is empty; run the import command first", "db", r.cfg.DBPath)
	}
	r.logger.Debug("catalog loaded", "items", cat.Len())

	return engine.New(cat, engine.Options{
		TerminalItems:   r.cfg.TerminalItems,
		AchievableItems: r.cfg.AchievableItems,
		MaxSearchDepth:  r.cfg.MaxSearchDepth,
		MaxPlanDepth:    r.cfg.MaxPlanDepth,
		CacheSize:       r.cfg.CacheSize,
		Logger:          r.logger,
	}), nil
}

// withEngine runs fn with a ready engine and a request-scoped context.
func (a *app) withEngine(ctx context.Context, cmd *cli.Command, fn func(context.Context, *engine.Engine) error) error {
	rt, err := a.setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	eng, err := rt.engine(ctx)
	if err != nil {
		return err
	}
	return fn(logger.WithRequestID(ctx, logger.GenerateRequestID()), eng)
}

func quantityFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "quantity",
		Aliases: []string{"n"},
		Value:   1,
		Usage:   "How many to craft",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "format",
		Value: formatText,
		Usage: "Output format: text or json",
	}
}

func (a *app) importCmd() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import recipes from a JSON dump into the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "recipes",
				Aliases:  []string{"f"},
				Usage:    "Recipe JSON file",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "clear",
				Usage: "Remove existing recipes before importing; without it new recipes are added after the stored alternatives",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rt, err := a.setup(ctx, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			syncer := sync.NewSyncer(rt.database, rt.logger)
			if cmd.Bool("clear") {
				if err := syncer.ClearAll(ctx); err != nil {
					return err
				}
			}

			path := cmd.String("recipes")
			rt.logger.Info("importing recipes", "file", path)
			result, err := syncer.ImportRecipesFromFile(ctx, path)
			if err != nil {
				return fmt.Errorf("failed to import recipes: %w", err)
			}

			_, err = fmt.Fprintf(a.out, "imported %d recipes (%d items, %d skipped)\n",
				result.Recipes, result.Items, result.Skipped)
			return err
		},
	}
}

func (a *app) requirementsCmd() *cli.Command {
	return &cli.Command{
		Name:      "requirements",
		Aliases:   []string{"req"},
		Usage:     "List the materials needed for an item at an unrolling depth",
		ArgsUsage: "ITEM",
		Flags: []cli.Flag{
			quantityFlag(),
			&cli.IntFlag{
				Name:    "depth",
				Aliases: []string{"d"},
				Usage:   "Recipe levels to unroll below the item",
			},
			&cli.BoolFlag{
				Name:  "auto",
				Usage: "Unroll to the deepest informative depth",
			},
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			item, err := itemArg(cmd)
			if err != nil {
				return err
			}
			return a.withEngine(ctx, cmd, func(ctx context.Context, eng *engine.Engine) error {
				resp, err := eng.Requirements(ctx, crafting.RequirementsRequest{
					Item:      item,
					Quantity:  int(cmd.Int("quantity")),
					Depth:     int(cmd.Int("depth")),
					AutoDepth: cmd.Bool("auto"),
				})
				if err != nil {
					return err
				}
				if cmd.String("format") == formatJSON {
					return a.writeJSON(resp)
				}
				fmt.Fprintf(a.out, "%d %s at depth %d (max informative depth %d):\n",
					resp.Quantity, resp.Item, resp.Depth, resp.MaxDepth)
				return a.writeComponents(resp.Requirements)
			})
		},
	}
}

func (a *app) depthCmd() *cli.Command {
	return &cli.Command{
		Name:      "depth",
		Usage:     "Find the deepest unrolling depth that still changes an item's requirements",
		ArgsUsage: "ITEM",
		Flags: []cli.Flag{
			quantityFlag(),
			&cli.IntFlag{
				Name:  "max-search",
				Usage: "Upper bound on the depths tried (defaults to CRAFTPLAN_MAX_SEARCH_DEPTH)",
			},
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			item, err := itemArg(cmd)
			if err != nil {
				return err
			}
			return a.withEngine(ctx, cmd, func(ctx context.Context, eng *engine.Engine) error {
				resp, err := eng.CraftingDepth(ctx, crafting.DepthRequest{
					Item:           item,
					Quantity:       int(cmd.Int("quantity")),
					MaxSearchDepth: int(cmd.Int("max-search")),
				})
				if err != nil {
					return err
				}
				if cmd.String("format") == formatJSON {
					return a.writeJSON(resp)
				}
				_, err = fmt.Fprintln(a.out, resp.MaxDepth)
				return err
			})
		},
	}
}

func (a *app) planCmd() *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "Build crafting plans for one or more items",
		ArgsUsage: "ITEM [ITEM...]",
		Flags: []cli.Flag{
			quantityFlag(),
			&cli.StringSliceFlag{
				Name:  "have",
				Usage: "Inventory entry as name=count; repeatable",
			},
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			items := cmd.Args().Slice()
			if len(items) == 0 {
				return errors.New("at least one item is required")
			}
			inventory, err := parseInventory(cmd.StringSlice("have"))
			if err != nil {
				return err
			}

			reqs := make([]crafting.PlanRequest, len(items))
			for i, item := range items {
				reqs[i] = crafting.PlanRequest{
					Item:      item,
					Quantity:  int(cmd.Int("quantity")),
					Inventory: inventory,
				}
			}

			return a.withEngine(ctx, cmd, func(ctx context.Context, eng *engine.Engine) error {
				results, err := eng.PlanBatch(ctx, reqs)
				if err != nil {
					return err
				}
				if cmd.String("format") == formatJSON {
					return a.writeJSON(results)
				}
				for i, resp := range results {
					if i > 0 {
						fmt.Fprintln(a.out)
					}
					if len(results) > 1 {
						fmt.Fprintf(a.out, "== %d %s ==\n", resp.Quantity, resp.Item)
					}
					fmt.Fprintln(a.out, resp.Report)
				}
				return nil
			})
		},
	}
}

func (a *app) lookupCmd() *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "Show an item's recipes and uses",
		ArgsUsage: "ITEM",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			item, err := itemArg(cmd)
			if err != nil {
				return err
			}
			return a.withEngine(ctx, cmd, func(ctx context.Context, eng *engine.Engine) error {
				resp, err := eng.RecipeLookup(ctx, crafting.RecipeLookupRequest{Item: item})
				if err != nil {
					return err
				}
				return a.writeJSON(resp)
			})
		},
	}
}

func (a *app) serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the MCP server on stdin/stdout",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rt, err := a.setup(ctx, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			eng, err := rt.engine(ctx)
			if err != nil {
				return err
			}

			server := mcp.NewServer(eng, rt.logger, version)
			rt.logger.Info("starting MCP server", "db", rt.cfg.DBPath)
			if err := server.Run(ctx, a.in, a.out); err != nil && ctx.Err() == nil {
				return fmt.Errorf("server error: %w", err)
			}
			rt.logger.Info("server stopped")
			return nil
		},
	}
}

func itemArg(cmd *cli.Command) (string, error) {
	item := strings.TrimSpace(cmd.Args().First())
	if item == "" {
		return "", errors.New("an item name is required")
	}
	return item, nil
}

// parseInventory reads name=count entries; a bare name counts as one.
func parseInventory(entries []string) ([]crafting.Component, error) {
	inventory := make([]crafting.Component, 0, len(entries))
	for _, entry := range entries {
		name, countStr, hasCount := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid inventory entry %q: missing item name", entry)
		}
		count := 1
		if hasCount {
			n, err := strconv.Atoi(strings.TrimSpace(countStr))
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid inventory entry %q: count must be a non-negative integer", entry)
			}
			count = n
		}
		inventory = append(inventory, crafting.Component{ID: name, Quantity: count})
	}
	return inventory, nil
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) writeComponents(components []crafting.Component) error {
	for _, c := range components {
		if _, err := fmt.Fprintf(a.out, "- %d %s\n", c.Quantity, c.ID); err != nil {
			return err
		}
	}
	return nil
}
