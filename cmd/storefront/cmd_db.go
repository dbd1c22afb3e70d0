package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/database/seeders"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/migration"
)

// withDB opens the pool for one command and closes it afterwards. Unlike
// serve, maintenance commands fail when the database is unreachable.
func withDB(ctx context.Context, fn func(db *gorm.DB) error) error {
	db, err := database.Connect(ctx, database.OptionsFromConfig())
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()
	return fn(db)
}

func printNames(header string, names []string) {
	if len(names) == 0 {
		fmt.Println("Nothing to do.")
		return
	}
	fmt.Println(header)
	for _, n := range names {
		fmt.Println("  •", n)
	}
}

// storefront migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(db *gorm.DB) error {
			applied, err := migration.New(db).Run()
			printNames("Migrated:", applied)
			return err
		})
	},
}

// storefront migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(db *gorm.DB) error {
			reverted, err := migration.New(db).Rollback()
			printNames("Rolled back:", reverted)
			return err
		})
	},
}

// storefront migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(db *gorm.DB) error {
			rows, err := migration.New(db).Status()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "RAN\tBATCH\tMIGRATION")
			for _, row := range rows {
				ran, batch := "No", "-"
				if row.Ran {
					ran, batch = "Yes", fmt.Sprint(row.Batch)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", ran, batch, row.Name)
			}
			return w.Flush()
		})
	},
}

// storefront seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd.Context(), func(db *gorm.DB) error {
			fmt.Println("Running seeders…")
			return seeders.RunAll(cmd.Context(), db, os.Stdout)
		})
	},
}
