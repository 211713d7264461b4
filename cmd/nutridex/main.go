// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/nutridex"
	"github.com/poiesic/nutridex/ai"
	"github.com/poiesic/nutridex/core"
	"github.com/poiesic/nutridex/index"
	"github.com/poiesic/nutridex/knowledge"
	"github.com/poiesic/nutridex/search"
)

func main() {
	app := &cli.App{
		Name:  "nutridex",
		Usage: "Faceted search engine over a food and recipe catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML engine configuration file",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "seed",
				Usage:  "Load catalog items from a JSON file",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSON file with catalog items",
						Required: true,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Run a query against the catalog",
				Action:    searchCommand,
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
					},
					&cli.BoolFlag{
						Name:  "favorites",
						Usage: "Restrict to favorite items",
					},
					&cli.BoolFlag{
						Name:  "recipes",
						Usage: "Restrict to recipes",
					},
					&cli.BoolFlag{
						Name:  "menus",
						Usage: "Restrict to menus",
					},
					&cli.IntFlag{
						Name:  "age",
						Usage: "Age in months for the age floor filter",
					},
					&cli.IntFlag{
						Name:  "page",
						Usage: "Result page to show",
						Value: 0,
					},
					&cli.IntFlag{
						Name:  "page-size",
						Usage: "Results per page",
						Value: search.DefaultPageSize,
					},
					&cli.BoolFlag{
						Name:  "semantic",
						Usage: "Enable embedding-backed fallbacks",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
				},
			},
			{
				Name:   "rebuild",
				Usage:  "Rebuild the search index from the catalog",
				Action: rebuildCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Print index statistics",
				Action: statsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// seedItem is the JSON shape of one catalog entry in a seed file. Nutrient
// keys are resolved through the ontology, so both "protein" and catalog
// header spellings work.
type seedItem struct {
	Name             string             `json:"name"`
	ReferenceWeightG float64            `json:"referenceWeightG"`
	MinAgeMonths     int32              `json:"minAgeMonths"`
	PH               float64            `json:"ph"`
	Diets            []string           `json:"diets"`
	Allergens        []string           `json:"allergens"`
	IsRecipe         bool               `json:"isRecipe"`
	IsMenu           bool               `json:"isMenu"`
	Nutrients        map[string]float64 `json:"nutrients"`
}

func (s *seedItem) toFoodItem() (*core.FoodItem, error) {
	item := &core.FoodItem{
		Name:             s.Name,
		ReferenceWeightG: s.ReferenceWeightG,
		MinAgeMonths:     s.MinAgeMonths,
		PH:               s.PH,
		Diets:            s.Diets,
		Allergens:        s.Allergens,
		IsRecipe:         s.IsRecipe,
		IsMenu:           s.IsMenu,
	}
	if len(s.Nutrients) > 0 {
		item.Nutrients = make(map[core.NutrientType]float64, len(s.Nutrients))
		for key, value := range s.Nutrients {
			nutrient, ok := knowledge.BestNutrientMatch(key)
			if !ok {
				return nil, fmt.Errorf("unknown nutrient %q in item %q", key, s.Name)
			}
			item.Nutrients[nutrient] = value
		}
	}
	return item, nil
}

func seedCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath, err := resolveDBPath(c)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}
	var seeds []seedItem
	if err := json.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	items := make([]*core.FoodItem, len(seeds))
	for i := range seeds {
		item, err := seeds[i].toFoodItem()
		if err != nil {
			return err
		}
		items[i] = item
	}

	engine, err := nutridex.NewEngine(dbPath, nutridex.WithoutSemantic())
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	if err := engine.EnsureIndexReady(ctx); err != nil {
		return fmt.Errorf("failed to prepare index: %w", err)
	}

	pipeline, err := engine.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	added, err := pipeline.Ingest(ctx, items...)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Seeded %d items into %s\n", len(added), dbPath)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath, err := resolveDBPath(c)
	if err != nil {
		return err
	}
	query := strings.Join(c.Args().Slice(), " ")

	cfg, err := loadFileConfig(c.String("config"))
	if err != nil {
		return err
	}

	pageSize := c.Int("page-size")
	if !c.IsSet("page-size") && cfg.PageSize > 0 {
		pageSize = cfg.PageSize
	}
	opts := []nutridex.EngineOption{
		nutridex.WithSearchOptions(search.WithPageSize(pageSize)),
	}
	if cfg.PersistDelay > 0 {
		opts = append(opts, nutridex.WithStoreOptions(index.WithPersistDelay(cfg.PersistDelay)))
	}
	if cfg.MinCosine > 0 {
		opts = append(opts, nutridex.WithSearchOptions(search.WithMinCosine(cfg.MinCosine)))
	}

	if c.Bool("semantic") || (!c.IsSet("semantic") && cfg.Semantic) {
		host := c.String("embedding-host")
		if !c.IsSet("embedding-host") && cfg.EmbeddingHost != "" {
			host = cfg.EmbeddingHost
		}
		model := c.String("embedding-model")
		if !c.IsSet("embedding-model") && cfg.EmbeddingModel != "" {
			model = cfg.EmbeddingModel
		}
		opts = append(opts, nutridex.WithAIConfig(ai.NewConfig(
			ai.WithHost(host),
			ai.WithModel(model),
		)))
	} else {
		opts = append(opts, nutridex.WithoutSemantic())
	}

	engine, err := nutridex.NewEngine(dbPath, opts...)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	if err := engine.EnsureIndexReady(ctx); err != nil {
		return fmt.Errorf("failed to prepare index: %w", err)
	}

	filters := core.FilterSet{
		QuickAgeMonths: int32(c.Int("age")),
		FavoritesOnly:  c.Bool("favorites"),
		RecipesOnly:    c.Bool("recipes"),
		MenusOnly:      c.Bool("menus"),
	}

	results, err := engine.Search(ctx, query, filters, nil, c.Int("page"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}
	for i, r := range results {
		kind := "lexical"
		if r.Semantic {
			kind = "semantic"
		}
		fmt.Printf("%2d. [%d] %s (score %.2f, %s)\n", i+1, r.Id, r.Name, r.Score, kind)
	}
	return nil
}

func rebuildCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath, err := resolveDBPath(c)
	if err != nil {
		return err
	}

	engine, err := nutridex.NewEngine(dbPath, nutridex.WithoutSemantic())
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	if err := engine.ForceRebuild(ctx); err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Index rebuilt: %d items\n", engine.IndexStore().Len())
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath, err := resolveDBPath(c)
	if err != nil {
		return err
	}

	engine, err := nutridex.NewEngine(dbPath, nutridex.WithoutSemantic())
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	if err := engine.EnsureIndexReady(ctx); err != nil {
		return fmt.Errorf("failed to prepare index: %w", err)
	}

	store := engine.IndexStore()
	fmt.Printf("Items:      %d\n", store.Len())
	fmt.Printf("Vocabulary: %d tokens\n", len(store.Vocabulary()))
	diets := store.KnownDiets()
	fmt.Printf("Diets:      %s\n", strings.Join(diets, ", "))

	count, err := engine.CatalogRepository().CountFoodItems(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Catalog:    %d items\n", count)
	return nil
}

// resolveDBPath takes the database path from the flag or the config file.
func resolveDBPath(c *cli.Context) (string, error) {
	if db := c.String("db"); db != "" {
		return db, nil
	}
	cfg, err := loadFileConfig(c.String("config"))
	if err != nil {
		return "", err
	}
	if cfg.DB == "" {
		return "", fmt.Errorf("database path is required (--db flag or config file)")
	}
	return cfg.DB, nil
}

func setup(c *cli.Context) error {
	// Environment overrides (embedding credentials) come from .env when
	// present; a missing file is fine.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded environment from .env")
	}
	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
