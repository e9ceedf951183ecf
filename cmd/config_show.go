package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hoursync/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.
API keys are masked.`,
	Example: `
  # Show active configuration
  hoursync config show
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		} else {
			fmt.Println("No config file loaded, showing defaults and environment values.")
		}
		printConfig(os.Stdout, cfg)
		return nil
	},
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintf(w, "%s: %s\n", config.KeyTogglURL, cfg.Toggl.URL)
	fmt.Fprintf(w, "%s: %s\n", config.KeyTogglAPIKey, maskSecret(cfg.Toggl.APIKey))
	fmt.Fprintf(w, "%s: %s\n", config.KeyEverhourURL, cfg.Everhour.URL)
	fmt.Fprintf(w, "%s: %s\n", config.KeyEverhourAPIKey, maskSecret(cfg.Everhour.APIKey))
	fmt.Fprintf(w, "%s: %s\n", config.KeyHTTPTimeout, cfg.HTTP.Timeout)
	fmt.Fprintf(w, "%s: %d\n", config.KeyRetryMaxAttempts, cfg.Retry.MaxAttempts)
	fmt.Fprintf(w, "%s: %s\n", config.KeyRetryMaxTotalWait, cfg.Retry.MaxTotalWait)
	fmt.Fprintf(w, "%s: %s\n", config.KeyRetryDefaultWait, cfg.Retry.DefaultWait)
	fmt.Fprintf(w, "%s: %s\n", config.KeyAggregateDayOrder, cfg.Aggregate.DayOrder)
	fmt.Fprintf(w, "%s: %s\n", config.KeyMetricsPushgateway, cfg.Metrics.PushgatewayURL)
	fmt.Fprintf(w, "%s: %s\n", config.KeyLogLevel, cfg.Log.Level)
}

func maskSecret(value string) string {
	switch {
	case value == "":
		return "(not set)"
	case len(value) <= 4:
		return "****"
	default:
		return "****" + value[len(value)-4:]
	}
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
