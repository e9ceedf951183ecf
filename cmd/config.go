package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage hoursync configuration file values.",
	Long: `Create, edit, display, and delete the hoursync configuration file.

The configuration stores:
- toggl.url / toggl.api_key (or TOGGL_API_KEY)
- everhour.url / everhour.api_key (or EVERHOUR_API_KEY)
- http.timeout
- retry.max_attempts / retry.max_total_wait / retry.default_wait
- aggregate.day_order
- metrics.pushgateway_url
- log.level`,
	Example: `
  # Create default config in $HOME/.hoursync.yaml
  hoursync config create

  # Show active config and source file
  hoursync config show

  # Open active config in editor (creates example if missing)
  hoursync config edit

  # Delete active config file
  hoursync config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
