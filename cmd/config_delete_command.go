package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configDeleteYes bool

var configDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the active configuration file.",
	Long: `Delete the configuration file selected by --configFile or found during discovery.

API keys provided through TOGGL_API_KEY and EVERHOUR_API_KEY are not affected.
The command asks for confirmation unless --yes is given.`,
	Example: `
  # Delete active config
  hoursync config delete

  # Delete config at a custom path without prompting
  hoursync --configFile ./custom-hoursync.yaml config delete --yes
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := activeConfigPath(cfgFile, viper.ConfigFileUsed())
		if configPath == "" {
			return fmt.Errorf("no configuration file found")
		}

		deleted, err := deleteConfigFile(configPath, configDeleteYes, deletePromptInput, deletePromptOutput)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("config delete aborted: confirmation was not 'Y'")
		}

		fmt.Printf("Configuration file successfully deleted: %s\n", configPath)
		return nil
	},
}

// activeConfigPath prefers the explicit flag over the discovered file. It
// never falls back to a default location.
func activeConfigPath(configFileFlag, configFileUsed string) string {
	if path := strings.TrimSpace(configFileFlag); path != "" {
		return path
	}
	return strings.TrimSpace(configFileUsed)
}

func deleteConfigFile(path string, skipPrompt bool, input io.Reader, output io.Writer) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("configuration file not found: %s", path)
		}
		return false, fmt.Errorf("stat configuration file: %w", err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("configuration path is a directory: %s", path)
	}

	if !skipPrompt {
		confirmed, err := confirmPrompt(input, output, fmt.Sprintf("Delete configuration file %q?", path))
		if err != nil || !confirmed {
			return false, err
		}
	}

	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("error deleting configuration file: %w", err)
	}
	return true, nil
}

func init() {
	configCmd.AddCommand(configDeleteCmd)

	configDeleteCmd.Flags().BoolVarP(&configDeleteYes, "yes", "y", false, "Delete without confirmation prompt")
}
