package cli

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"daisy/internal/database"
	"daisy/internal/domain"
	"daisy/internal/media"
)

//go:embed fixtures/catalog.yaml
var defaultFixtures []byte

//go:embed fixtures/icon.png
var placeholderIcon []byte

type fixtures struct {
	CategoryIcons []struct {
		Title string `yaml:"title"`
	} `yaml:"category_icons"`
	Categories []struct {
		Title       string `yaml:"title"`
		Code        string `yaml:"code"`
		Description string `yaml:"description"`
		Icon        string `yaml:"icon"`
	} `yaml:"categories"`
	VisualizeTypes []struct {
		Title       string         `yaml:"title"`
		Alias       string         `yaml:"alias"`
		Description string         `yaml:"description"`
		Attribute   map[string]any `yaml:"attribute"`
	} `yaml:"visualize_types"`
}

func parseFixtures(data []byte) (*fixtures, error) {
	var f fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &f, nil
}

func newSeedCommand(e *env) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load catalog fixtures (icons, categories, visualize types)",
		Long: `Loads catalog fixtures. Rows are matched by title, so running seed
again updates them in place instead of duplicating.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := defaultFixtures
			if file != "" {
				b, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				data = b
			}
			fx, err := parseFixtures(data)
			if err != nil {
				return err
			}

			if err := e.open(); err != nil {
				return err
			}
			defer e.close()
			if err := database.Migrate(e.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			store := media.NewLocalStore(e.cfg.MediaRoot, e.cfg.MediaURL)
			if err := seed(cmd.Context(), e.db, store, fx); err != nil {
				return err
			}

			e.log.Info("fixtures loaded",
				zap.Int("category_icons", len(fx.CategoryIcons)),
				zap.Int("categories", len(fx.Categories)),
				zap.Int("visualize_types", len(fx.VisualizeTypes)),
			)
			fmt.Fprintln(cmd.OutOrStdout(), "seeded")
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML fixture file (defaults to the built-in catalog)")
	return cmd
}

func seed(ctx context.Context, db *gorm.DB, store media.Store, fx *fixtures) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		iconIDs := make(map[string]int64, len(fx.CategoryIcons))
		for _, in := range fx.CategoryIcons {
			path := fmt.Sprintf("%s/seed_%s.png", media.DirCategoryIcons, in.Title)
			if !store.Exists(path) {
				if err := store.Save(path, placeholderIcon); err != nil {
					return err
				}
			}
			icon := domain.CategoryIcon{Title: in.Title, Image: path}
			if err := upsertByTitle(tx, &icon, "image"); err != nil {
				return fmt.Errorf("icon %q: %w", in.Title, err)
			}
			if err := tx.Where("title = ?", in.Title).First(&icon).Error; err != nil {
				return err
			}
			iconIDs[in.Title] = icon.ID
		}

		for _, in := range fx.Categories {
			iconID, ok := iconIDs[in.Icon]
			if !ok {
				return fmt.Errorf("category %q: unknown icon %q", in.Title, in.Icon)
			}
			c := domain.Category{Title: in.Title, Code: in.Code, Description: in.Description, CategoryIconID: iconID}
			if err := upsertByTitle(tx, &c, "code", "description", "category_icon_id"); err != nil {
				return fmt.Errorf("category %q: %w", in.Title, err)
			}
		}

		for _, in := range fx.VisualizeTypes {
			attr, err := json.Marshal(in.Attribute)
			if err != nil {
				return err
			}
			vt := domain.VisualizeType{Title: in.Title, Alias: in.Alias, Description: in.Description, Attribute: attr}
			if err := upsertByTitle(tx, &vt, "alias", "description", "attribute"); err != nil {
				return fmt.Errorf("visualize type %q: %w", in.Title, err)
			}
		}
		return nil
	})
}

func upsertByTitle(tx *gorm.DB, value any, columns ...string) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "title"}},
		DoUpdates: clause.AssignmentColumns(append(columns, "updated_at")),
	}).Create(value).Error
}
