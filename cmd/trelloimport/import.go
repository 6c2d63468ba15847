package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"trelloimport/internal/config"
	"trelloimport/internal/guid"
	"trelloimport/internal/importer"
	"trelloimport/internal/store"
	"trelloimport/internal/trello"
)

var importOpts struct {
	databaseURL string
	timeout     time.Duration
}

var importCmd = &cobra.Command{
	Use:   "import EXPORT.json",
	Short: "Import a Trello export into the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importOpts.databaseURL, "database-url", "", "PostgreSQL DSN (default: $DATABASE_URL)")
	importCmd.Flags().DurationVar(&importOpts.timeout, "timeout", 5*time.Minute, "give up after this long")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	export, err := readExport(args[0])
	if err != nil {
		return err
	}
	if err := trello.Validate(export); err != nil {
		return err
	}
	dsn := importOpts.databaseURL
	if dsn == "" {
		dsn = config.Getenv("DATABASE_URL", "")
	}
	if dsn == "" {
		return fmt.Errorf("no database: pass --database-url or set DATABASE_URL")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), importOpts.timeout)
	defer cancel()

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	st := store.New(db)
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	log := newLogger(cmd)
	svc := importer.New(st, trello.NewConverter(guid.New, log), log)
	res, err := svc.Import(ctx, export)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
