package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/nutridex/core"
)

func TestSeedItemToFoodItem(t *testing.T) {
	t.Run("resolves nutrient keys through the ontology", func(t *testing.T) {
		seed := seedItem{
			Name:             "Oat Porridge",
			ReferenceWeightG: 100,
			Diets:            []string{"vegan"},
			Nutrients: map[string]float64{
				"protein":   4,
				"vitamin c": 2,
			},
		}

		item, err := seed.toFoodItem()
		require.NoError(t, err)
		assert.Equal(t, "Oat Porridge", item.Name)
		assert.Equal(t, []string{"vegan"}, item.Diets)
		assert.Equal(t, 4.0, item.Nutrients[core.NutrientProtein])
		assert.Equal(t, 2.0, item.Nutrients[core.NutrientVitaminC])
	})

	t.Run("unknown nutrient key fails", func(t *testing.T) {
		seed := seedItem{
			Name:      "Mystery Bar",
			Nutrients: map[string]float64{"unobtainium": 1},
		}

		_, err := seed.toFoodItem()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unobtainium")
		assert.Contains(t, err.Error(), "Mystery Bar")
	})

	t.Run("empty nutrient map stays nil", func(t *testing.T) {
		seed := seedItem{Name: "Water"}

		item, err := seed.toFoodItem()
		require.NoError(t, err)
		assert.Nil(t, item.Nutrients)
	})
}

func TestLoadFileConfig(t *testing.T) {
	t.Run("empty path yields zero config", func(t *testing.T) {
		cfg, err := loadFileConfig("")
		require.NoError(t, err)
		assert.Empty(t, cfg.DB)
		assert.Zero(t, cfg.PageSize)
		assert.False(t, cfg.Semantic)
	})

	t.Run("parses yaml fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nutridex.yaml")
		content := "db: /var/lib/nutridex\npageSize: 10\npersistDelay: 5s\nminCosine: 0.7\nsemantic: true\nembeddingModel: embeddinggemma\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := loadFileConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "/var/lib/nutridex", cfg.DB)
		assert.Equal(t, 10, cfg.PageSize)
		assert.Equal(t, 5*time.Second, cfg.PersistDelay)
		assert.Equal(t, 0.7, cfg.MinCosine)
		assert.True(t, cfg.Semantic)
		assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := loadFileConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("db: [unterminated"), 0o644))

		_, err := loadFileConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}

func TestResolveDBPath(t *testing.T) {
	run := func(t *testing.T, args []string, flags []cli.Flag) (string, error) {
		t.Helper()
		var got string
		var gotErr error
		app := &cli.App{
			Name:  "nutridex",
			Flags: flags,
			Action: func(c *cli.Context) error {
				got, gotErr = resolveDBPath(c)
				return nil
			},
		}
		require.NoError(t, app.Run(args))
		return got, gotErr
	}

	flags := []cli.Flag{
		&cli.StringFlag{Name: "db", Aliases: []string{"d"}},
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}},
	}

	t.Run("flag wins", func(t *testing.T) {
		path, err := run(t, []string{"nutridex", "--db", "/tmp/cat"}, flags)
		require.NoError(t, err)
		assert.Equal(t, "/tmp/cat", path)
	})

	t.Run("falls back to config file", func(t *testing.T) {
		cfgPath := filepath.Join(t.TempDir(), "cfg.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("db: /data/catalog\n"), 0o644))

		path, err := run(t, []string{"nutridex", "--config", cfgPath}, flags)
		require.NoError(t, err)
		assert.Equal(t, "/data/catalog", path)
	})

	t.Run("neither flag nor config fails", func(t *testing.T) {
		_, err := run(t, []string{"nutridex"}, flags)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database path is required")
	})
}

func TestSetupLogger(t *testing.T) {
	newApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "WaRn"} {
			t.Run(level, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-level", "loud"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}
