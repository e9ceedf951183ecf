package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hoursync/config"
)

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file from the example template.",
	Long: `Create a new configuration file from the same example template used by "config edit".

An existing file is never overwritten; it is validated instead.
Both cases report API keys that are missing from the file and the environment.`,
	Example: `
  # Create default config at $HOME/.hoursync.yaml
  hoursync config create

  # Create config at a custom path
  hoursync --configFile ./hoursync.yaml config create
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}
		return createConfigFile(os.Stdout, configPath)
	},
}

// createConfigFile writes the template to path unless a file exists, then
// validates whatever is at path.
func createConfigFile(out io.Writer, path string) error {
	created, err := ensureConfigFileWithTemplate(path)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file failed: %w", err)
	}
	cfg, err := config.ValidateYAMLContent(content)
	if err != nil {
		return fmt.Errorf("existing config %s is invalid: %w", path, err)
	}

	if created {
		fmt.Fprintf(out, "New config file created at: %s\n", path)
	} else {
		fmt.Fprintf(out, "Config file already exists at: %s (valid)\n", path)
	}
	for _, hint := range missingCredentialHints(cfg) {
		fmt.Fprintln(out, "Note:", hint)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configCreateCmd)
}
