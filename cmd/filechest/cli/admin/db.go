package admin

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mwantia/filechest/internal/config"
	"github.com/mwantia/filechest/pkg/db/migrations"
	"github.com/mwantia/filechest/pkg/db/store"
	"github.com/mwantia/filechest/pkg/log"
)

func NewDatabaseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "db",
		Aliases: []string{"database"},
		Short:   "Annotation database utilities",
		Long: `Inspect the annotation database and manage its schema.

Unlike the other commands these do not migrate the database on open, so a
rollback stays in effect until the next regular command runs.`,
	}

	cmd.AddCommand(newDatabaseStatusCommand())
	cmd.AddCommand(newDatabaseMigrateCommand())
	cmd.AddCommand(newDatabaseRollbackCommand())

	return cmd
}

// withStore opens the configured database without applying migrations.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, s *store.SQLiteStore) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	path, err := cfg.Store.DatabasePath(cfg.Debug)
	if err != nil {
		return err
	}
	level, err := config.ParseStoreLogLevel(cfg.Store.LogLevel)
	if err != nil {
		return err
	}

	s, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path:     path,
		LogLevel: level,
		Logger:   log.NewLoggerService("filechest", cfg.Log).Named("store"),
	})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.Connect(ctx); err != nil {
		return err
	}
	return fn(ctx, s)
}

func newDatabaseStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database location, health and migration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, s *store.SQLiteStore) error {
				out := cmd.OutOrStdout()

				health := "ok"
				if err := s.Health(ctx); err != nil {
					health = err.Error()
				}
				fmt.Fprintf(out, "Database: %s\n", s.Path())
				fmt.Fprintf(out, "Health:   %s\n\n", health)

				statuses, err := migrations.NewMigrator(s.DB()).Status(ctx)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "VERSION\tAPPLIED\tDESCRIPTION")
				for _, status := range statuses {
					applied := "pending"
					if status.Applied {
						applied = status.AppliedAt.Format("2006-01-02 15:04:05")
					}
					fmt.Fprintf(w, "%d\t%s\t%s\n", status.Version, applied, status.Description)
				}
				return w.Flush()
			})
		},
	}

	return cmd
}

func newDatabaseMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, s *store.SQLiteStore) error {
				applied, err := migrations.NewMigrator(s.DB()).Migrate(ctx)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", applied)
				return nil
			})
		},
	}

	return cmd
}

func newDatabaseRollbackCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Revert the most recently applied migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, s *store.SQLiteStore) error {
				migration, err := migrations.NewMigrator(s.DB()).Rollback(ctx)
				if errors.Is(err, migrations.ErrNothingToRollback) {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to roll back")
					return nil
				}
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Rolled back migration %d (%s)\n", migration.Version, migration.Description)
				return nil
			})
		},
	}

	return cmd
}
