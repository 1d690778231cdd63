package commands

import (
	"context"
	"database/sql"
	"os"

	"feedbackapp/internal/database"
	"feedbackapp/internal/observability"
	contextutils "feedbackapp/internal/utils"

	"github.com/spf13/cobra"
)

// DatabaseCommands returns the database management commands
func DatabaseCommands(logger *observability.Logger, dbManager *database.Manager, databaseURL string, db *sql.DB) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
		Long: `Database management commands for the feedback application.

Available commands:
  migrate   - Apply pending schema migrations
  stats     - Show database statistics`,
	}

	dbCmd.AddCommand(migrateCmd(logger, dbManager, databaseURL))
	dbCmd.AddCommand(statsCmd(logger, db))

	return dbCmd
}

// migrateCmd returns the migrate command
func migrateCmd(logger *observability.Logger, dbManager *database.Manager, databaseURL string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long:  `Apply all pending schema migrations to the configured database.`,
		RunE:  runMigrate(logger, dbManager, databaseURL),
	}
}

// statsCmd returns the stats command
func statsCmd(logger *observability.Logger, db *sql.DB) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Long:  `Show database statistics including customer, token, and feedback counts.`,
		RunE:  runStats(logger, db),
	}
}

// runMigrate returns a function that applies schema migrations
func runMigrate(logger *observability.Logger, dbManager *database.Manager, databaseURL string) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		logger.Info(ctx, "Applying schema migrations", map[string]interface{}{"db_url": maskDatabaseURL(databaseURL)})

		if err := dbManager.RunMigrations(databaseURL); err != nil {
			logger.Error(ctx, "Migrations failed", err, map[string]interface{}{"db_url": maskDatabaseURL(databaseURL)})
			return contextutils.WrapErrorf(err, "migrations failed")
		}

		logger.Info(ctx, "Migrations applied successfully", nil)
		return nil
	}
}

// runStats returns a function that shows database statistics
func runStats(logger *observability.Logger, db *sql.DB) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		// Log diagnostic information
		logger.Info(ctx, "Diagnostic info", map[string]interface{}{"config_file": os.Getenv("FEEDBACK_CONFIG_FILE"), "database": getDatabaseInfo(db)})

		if db == nil {
			return contextutils.WrapErrorf(contextutils.ErrInternalError, "database connection not available")
		}

		var customers, tokens, consumed, feedback int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers").Scan(&customers); err != nil {
			return contextutils.WrapErrorf(err, "failed to count customers")
		}
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM survey_tokens").Scan(&tokens); err != nil {
			return contextutils.WrapErrorf(err, "failed to count survey tokens")
		}
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM survey_tokens WHERE consumed = true").Scan(&consumed); err != nil {
			return contextutils.WrapErrorf(err, "failed to count consumed tokens")
		}
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feedback").Scan(&feedback); err != nil {
			return contextutils.WrapErrorf(err, "failed to count feedback")
		}

		logger.Info(ctx, "Database statistics", map[string]interface{}{
			"total_customers": customers,
			"total_tokens":    tokens,
			"consumed_tokens": consumed,
			"total_feedback":  feedback,
			"database":        "PostgreSQL",
			"status":          "Connected",
		})

		return nil
	}
}
