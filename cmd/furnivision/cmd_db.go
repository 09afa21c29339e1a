package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/furnivision/config"
	_ "github.com/shashiranjanraj/furnivision/database/migrations"
	"github.com/shashiranjanraj/furnivision/database/seeders"
	"github.com/shashiranjanraj/furnivision/pkg/database"
	"github.com/shashiranjanraj/furnivision/pkg/migration"
)

// bootDB loads config and opens the database connection.
func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect()
}

// furnivision migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Running migrations…")
		n, err := migration.New(database.DB, out).Run()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d migration(s) ran.\n", n)
		return nil
	},
}

// furnivision migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Rolling back last batch…")
		_, err := migration.New(database.DB, out).Rollback()
		return err
	},
}

// furnivision migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close()

		rows, err := migration.New(database.DB, nil).Status()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "RAN\tBATCH\tMIGRATION")
		for _, s := range rows {
			ran, batch := "No", "-"
			if s.Ran {
				ran, batch = "Yes", fmt.Sprint(s.Batch)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", ran, batch, s.Name)
		}
		return w.Flush()
	},
}

// furnivision seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Running seeders…")
		return seeders.RunAll(database.DB, out)
	},
}
