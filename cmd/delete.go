package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"hoursync/storage"
)

var (
	deleteDBPath      string
	deleteEntriesOnly bool
)

var (
	deletePromptInput  io.Reader = os.Stdin
	deletePromptOutput io.Writer = os.Stdout
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the local SQLite snapshot or the entries stored in it",
	Long: `Destructive snapshot cleanup command.

By default the snapshot file written by "snapshot" is removed. With --entries-only the
time_entries table is emptied and the file is kept.

The prompt shows how many time entries the snapshot holds and requires typing exactly "Y".
Records already booked in Everhour are never touched.`,
	Example: `
  # Delete the snapshot file (requires interactive confirmation)
  hoursync delete --db ./hoursync.db

  # Empty the snapshot but keep the file
  hoursync delete --db ./hoursync.db --entries-only
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := countSnapshotEntries(deleteDBPath)
		if err != nil {
			return err
		}

		confirmed, err := confirmPrompt(deletePromptInput, deletePromptOutput, snapshotDeleteQuestion(deleteDBPath, count, deleteEntriesOnly))
		if err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("delete aborted: confirmation was not 'Y'")
		}

		if deleteEntriesOnly {
			removed, err := clearSnapshotEntries(deleteDBPath)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d time entries from snapshot: %s (file kept)\n", removed, deleteDBPath)
			return nil
		}

		if err := os.Remove(deleteDBPath); err != nil {
			return fmt.Errorf("delete snapshot file: %w", err)
		}
		fmt.Printf("Deleted snapshot file: %s (%d time entries)\n", deleteDBPath, count)
		return nil
	},
}

func snapshotDeleteQuestion(path string, count int64, entriesOnly bool) string {
	if entriesOnly {
		return fmt.Sprintf("Remove all %d time entries from snapshot %q and keep the file?", count, path)
	}
	return fmt.Sprintf("Delete snapshot file %q with %d time entries?", path, count)
}

// countSnapshotEntries checks that path is an existing snapshot and returns
// its row count. Missing files are not created.
func countSnapshotEntries(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("snapshot file not found: %s", path)
		}
		return 0, fmt.Errorf("stat snapshot file: %w", err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("snapshot path is a directory: %s", path)
	}

	store, err := storage.OpenSQLite(path)
	if err != nil {
		return 0, fmt.Errorf("open snapshot %s: %w", path, err)
	}
	defer store.Close()

	return store.CountEntries()
}

func clearSnapshotEntries(path string) (int64, error) {
	store, err := storage.OpenSQLite(path)
	if err != nil {
		return 0, fmt.Errorf("open snapshot %s: %w", path, err)
	}
	defer store.Close()

	return store.DeleteAllEntries()
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().StringVar(&deleteDBPath, "db", "./hoursync.db", "Path to local SQLite snapshot database")
	deleteCmd.Flags().BoolVar(&deleteEntriesOnly, "entries-only", false, "Empty the time_entries table and keep the snapshot file")
}
