package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/harmonia-app/harmonia/internal/cli"
	"github.com/harmonia-app/harmonia/internal/model"
	"github.com/harmonia-app/harmonia/internal/storage"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the system catalog",
		Long: `Insert the built-in system catalog for all fifteen domains.

Seeding is idempotent: items that already exist are left untouched,
so it is safe to rerun after upgrades that add new system entries.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			bar := progressbar.NewOptions(storage.SeedCount(),
				progressbar.OptionSetDescription("Seeding system catalog"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)

			created, err := store.SeedSystemCatalog(ctx, func(_ model.CatalogItem) {
				_ = bar.Add(1)
			})
			if err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}

			if created == 0 {
				fmt.Println(cli.FormatInfo("System catalog already seeded; nothing to do."))
				return nil
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Seeded %d system catalog items.", created)))
			return nil
		},
	}
}
