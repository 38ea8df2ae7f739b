package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"namearchive/internal/namestore"
)

func newSeedCommand(configFlag *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the bundled starter names into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}
			store, err := namestore.Open(cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if force {
				count, err := store.Reseed(cmd.Context())
				if err != nil {
					return fmt.Errorf("reseed store: %w", err)
				}
				fmt.Fprintf(out, "Reseeded %d names\n", count)
				return nil
			}

			count, err := store.SeedIfEmpty(cmd.Context())
			if err != nil {
				return fmt.Errorf("seed store: %w", err)
			}
			if count == 0 {
				fmt.Fprintln(out, "Store already has names; nothing to do (use --force to reseed)")
				return nil
			}
			fmt.Fprintf(out, "Seeded %d names\n", count)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace stored series for the bundled names")
	return cmd
}
