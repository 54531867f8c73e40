package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joshdurbin/bodycode-mcp/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	exportOut    string
	resetConfirm bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all stored data as one JSON document",
	Long: `Export writes the profile, body type classification, every daily log and
lifetime statistics as a single JSON document. Without --out it is written to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		sqlDB, st, err := openStore(ctx, viper.GetString("db"), false)
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		svc, err := newTracker(st, viper.GetUint64("seed"))
		if err != nil {
			return err
		}

		doc, err := svc.Export(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("building export: %w", err)
		}

		var w io.Writer = cmd.OutOrStdout()
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("creating %s: %w", exportOut, err)
			}
			defer f.Close()
			w = f
		}

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}

		logging.Logger.Info().
			Str("export_id", doc.ID).
			Int("days", doc.Statistics.TotalDaysLogged).
			Str("out", exportOut).
			Msg("export written")
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the profile, classification, logs and cached plans",
	Long: `Reset clears everything the tracker stores except the plan tier.
Run export first if you want to keep a copy. Requires --yes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetConfirm {
			return fmt.Errorf("reset deletes all tracked data; pass --yes to confirm")
		}

		ctx, cancel := signalContext()
		defer cancel()

		sqlDB, st, err := openStore(ctx, viper.GetString("db"), true)
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		svc, err := newTracker(st, viper.GetUint64("seed"))
		if err != nil {
			return err
		}

		removed, err := svc.Reset(ctx)
		if err != nil {
			return fmt.Errorf("resetting data: %w", err)
		}

		logging.Logger.Info().Int64("cached_plans_removed", removed).Msg("tracker data reset")
		fmt.Fprintf(cmd.OutOrStdout(), "Reset complete. Dropped %d cached habit plans.\n", removed)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "write the export to this file instead of stdout")
	resetCmd.Flags().BoolVar(&resetConfirm, "yes", false, "confirm deleting all tracked data")
}
