package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"keel/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Drop the on-disk verification cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := driver.OpenCache("keel")
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		if err := cache.Drop(); err != nil {
			return fmt.Errorf("failed to drop cache: %w", err)
		}
		quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
		if err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintln(os.Stdout, "verification cache dropped")
		}
		return nil
	},
}
