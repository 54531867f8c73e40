package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/joshdurbin/bodycode-mcp/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flagKeys are the persistent flags mirrored into viper and BODYCODE_* env vars
var flagKeys = []string{
	"db",
	"port",
	"verbose",
	"log-format",
	"plan-interval",
	"reminder-interval",
	"no-workers",
	"seed",
	"metrics",
}

var rootCmd = &cobra.Command{
	Use:   "bodycode-mcp",
	Short: "BodyCode MCP Server - body type classification and daily habit coaching via Model Context Protocol",
	Long: `BodyCode MCP Server classifies you into a body type from an onboarding
trait record or a 16-question quiz, then coaches daily habits for that type.
Everything is stored in a local SQLite database and exposed via the Model
Context Protocol (MCP) for AI assistants.

The server runs with:
- Body type classification (trait rules or quiz)
- Daily habit plans, fixed once per date
- Daily insights, weekly summaries and pattern analysis over your logs
- Background workers that prepare today's plan and send check-in reminders

Every flag can also be set with a BODYCODE_ environment variable, for
example BODYCODE_DB or BODYCODE_PLAN_INTERVAL. A .env file in the working
directory is loaded first.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		format, err := logging.ParseFormat(viper.GetString("log-format"))
		if err != nil {
			return err
		}
		// Set up logging based on verbosity before any command runs
		logging.Setup(logging.Level(viper.GetInt("verbose")), format)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(runtimeConfig())
	},
}

func init() {
	// Logging
	rootCmd.PersistentFlags().CountP("verbose", "v", "increase verbosity (-v for debug, -vv for trace with full tool payloads)")
	rootCmd.PersistentFlags().String("log-format", string(logging.FormatConsole), "log output format: console or json")

	// Runtime settings
	rootCmd.PersistentFlags().String("db", "bodycode.db", "path to SQLite database file")
	rootCmd.PersistentFlags().IntP("port", "p", 8080, "MCP server port (0 for stdio mode)")
	rootCmd.PersistentFlags().Duration("plan-interval", 15*time.Minute, "interval between daily habit plan checks")
	rootCmd.PersistentFlags().Duration("reminder-interval", time.Hour, "interval between check-in reminder checks")
	rootCmd.PersistentFlags().Uint64("seed", 0, "habit selection seed (0 seeds from the clock)")
	rootCmd.PersistentFlags().Bool("metrics", true, "serve Prometheus metrics on /metrics in HTTP mode")

	// MCP only mode
	rootCmd.PersistentFlags().Bool("no-workers", false, "run the MCP server without background workers")

	for _, key := range flagKeys {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("bodycode")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(exportCmd, resetCmd)
}

// runtimeConfig reads the merged flag, env and default values
func runtimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		DBPath:           viper.GetString("db"),
		MCPPort:          viper.GetInt("port"),
		PlanInterval:     viper.GetDuration("plan-interval"),
		ReminderInterval: viper.GetDuration("reminder-interval"),
		NoWorkers:        viper.GetBool("no-workers"),
		Seed:             viper.GetUint64("seed"),
		Metrics:          viper.GetBool("metrics"),
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
