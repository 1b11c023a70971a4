package main

import (
	"context"
	"fmt"
	"os"

	"etl-go/internal/app"
	"etl-go/internal/config"
	"etl-go/internal/database"
	"etl-go/internal/database/migrations"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to defaults when no
// config file exists yet. This keeps "etl run URL USER PASSWORD"
// working on a fresh machine without a config init step.
func loadConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	if _, err := os.Stat(defaults["config_path"]); err != nil {
		return config.NewConfig(defaults["base_dir"]), nil
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp creates an ETLApp for the given credentials. The caller must
// defer a.Close().
func newApp(ctx context.Context, creds database.Credentials) (*app.ETLApp, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewETLApp(ctx, cfg, creds)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "etl",
	Short: "User project analytics pipeline",
}

// run command
var runCmd = &cobra.Command{
	Use:   "run DB_URL DB_USER DB_PASSWORD",
	Short: "Run the pipeline once",
	Long: `Run reads the users and projects tables, masks user emails, joins
users with their projects, counts projects per user, and overwrites the
destination analytics table with the result.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		creds := database.Credentials{URL: args[0], User: args[1], Password: args[2]}

		a, err := newApp(cmd.Context(), creds)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("pipeline failed: %w", err)
		}

		fmt.Printf("Pipeline complete: %d user(s) read, %d project(s) read, %d row(s) written in %s\n",
			report.UsersRead,
			report.ProjectsRead,
			report.OutputRows,
			report.Duration(),
		)
		return nil
	},
}

// migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate DB_URL DB_USER DB_PASSWORD",
	Short: "Create or update the destination table",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, err := database.BuildDSN(args[0], args[1], args[2])
		if err != nil {
			return err
		}

		db, err := database.OpenSQL(dsn)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := migrations.MigrateUp(db); err != nil {
			return fmt.Errorf("migrating destination schema: %w", err)
		}

		fmt.Println("Destination schema is up to date")
		return nil
	},
}

// check command
var checkCmd = &cobra.Command{
	Use:   "check DB_URL DB_USER [DB_PASSWORD]",
	Short: "Verify database connectivity",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := ""
		if len(args) == 3 {
			password = args[2]
		} else {
			fmt.Fprint(os.Stderr, "Password: ")
			pw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}
			password = string(pw)
		}

		dsn, err := database.BuildDSN(args[0], args[1], password)
		if err != nil {
			return err
		}

		db, err := database.OpenSQL(dsn)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.PingContext(cmd.Context()); err != nil {
			return fmt.Errorf("pinging database: %w", err)
		}

		fmt.Println("Connection OK")
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Log Dir: %s\n", cfg.LogDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Log Dir:        %s\n", cfg.LogDir)
		fmt.Printf("Schema:         %s\n", cfg.Database.Schema)
		fmt.Printf("Users Table:    %s\n", cfg.Source.UsersTable)
		fmt.Printf("Projects Table: %s\n", cfg.Source.ProjectsTable)
		fmt.Printf("Target Table:   %s\n", cfg.Target.Table)
		fmt.Printf("Mask Policy:    %s\n", cfg.Mask.Policy)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(configCmd)
}
