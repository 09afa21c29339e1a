package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/furnivision/internal/server"
	"github.com/shashiranjanraj/furnivision/pkg/database"
	"github.com/shashiranjanraj/furnivision/pkg/logger"
)

// furnivision catalog:clear
var catalogClearCmd = &cobra.Command{
	Use:   "catalog:clear",
	Short: "Remove every listing from the stored catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := server.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer logger.Close()
		defer database.Close()

		n, err := c.Catalog.Clear(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d listing(s).\n", n)
		return nil
	},
}
