package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"hoursync/config"
	"hoursync/internal/timeutil"
	"hoursync/storage"
	"hoursync/toggl"
)

var (
	snapshotDBPath  string
	snapshotTimeout time.Duration
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <from> <projectID>",
	Short: "Store Toggl time entries of one project in a local SQLite snapshot",
	Long: `Fetch Toggl time entries of one project from <from> until the end of yesterday and
store them in SQLite. Entries are upserted by their Toggl ID, so repeated snapshots
refresh changed entries.

"sync" and "report" read from the snapshot when --db is given. The snapshot holds
source entries only; it never records what was delivered to Everhour.`,
	Example: `
  # Snapshot entries since 2024-01-01
  hoursync snapshot 2024-01-01 123456 --db ./hoursync.db
`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := parseSourceArgs(args)
		if err != nil {
			return err
		}

		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		logger, _, err := newRunLogger(os.Stderr, cfg, logLevelArg)
		if err != nil {
			return err
		}

		client, err := newTogglClient(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := runContext(snapshotTimeout)
		defer cancel()

		to := timeutil.EndOfYesterday(time.Now())
		entries, err := toggl.FetchProjectEntries(ctx, client, input.From, to, input.ProjectID)
		if err != nil {
			return fmt.Errorf("fetch time entries: %w", err)
		}

		store, err := storage.OpenSQLite(snapshotDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		written, err := store.SaveEntries(entries)
		if err != nil {
			return err
		}
		total, err := store.CountEntries()
		if err != nil {
			return err
		}
		logger.Info("snapshot stored", slog.Int("written", written), slog.Int64("total", total))

		fmt.Printf("Snapshot completed. Entries fetched: %d, Rows written: %d, Rows in database: %d, File: %s\n", len(entries), written, total, snapshotDBPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().StringVar(&snapshotDBPath, "db", "./hoursync.db", "Path to local SQLite database")
	snapshotCmd.Flags().DurationVar(&snapshotTimeout, "timeout", 0, "Abort the whole run after this duration (0 disables)")
}
