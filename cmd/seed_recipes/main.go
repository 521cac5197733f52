package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pageza/recetario/backend/config"
	"github.com/pageza/recetario/backend/internal/database"
	"github.com/pageza/recetario/backend/internal/observability"
	"github.com/pageza/recetario/backend/internal/seed"
)

var opts seed.Options

var rootCmd = &cobra.Command{
	Use:   "seed_recipes",
	Short: "Seed the database with demo users, recipes and favorites",
	Long: `Creates demo users with generated recipes and favorites between them.
Every seeded user logs in with the password "` + seed.DemoPassword + `".
Connection settings are read from the same environment as the API server.`,
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	flags := rootCmd.Flags()
	flags.IntVarP(&opts.Users, "users", "u", 5, "number of users to create")
	flags.IntVarP(&opts.RecipesPerUser, "recipes", "r", 4, "recipes per user")
	flags.IntVarP(&opts.FavoritesPerUser, "favorites", "f", 3, "favorites per user")
	flags.Float64Var(&opts.PrivateRatio, "private-ratio", 0.2, "share of recipes created as private (0-1)")
	flags.Int64Var(&opts.Seed, "seed", 0, "random seed for reproducible data (0 = random)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	if opts.Users < 0 || opts.RecipesPerUser < 0 || opts.FavoritesPerUser < 0 {
		return fmt.Errorf("counts must not be negative")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	opts.BcryptCost = cfg.BcryptCost

	logger, closer := observability.NewLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: "text",
	})
	defer closer.Close()

	db, err := database.New(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, cfg, logger); err != nil {
		return err
	}

	sum, err := seed.NewFactory(db, opts, logger).Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %d users, %d recipes, %d favorites\n", sum.Users, sum.Recipes, sum.Favorites)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
