/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hoursync/config"
)

var (
	cfgFile     string
	logLevelArg string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hoursync",
	Short: "Copy Toggl time entries into Everhour as one record per day.",
	Long: `
**********************************************
*                 HOURSYNC                   *
**********************************************

This CLI reads Toggl time entries of one project, groups them per calendar day,
and books one Everhour time record per day on a task. The comment of each record
lists the distinct descriptions of the day in start order.

The date range always ends at the end of yesterday (local time).

Credentials are read from TOGGL_API_KEY and EVERHOUR_API_KEY or from the config file.
`,
	Example: `
  # Create configuration file
  hoursync config create

  # Preview the daily records from 2024-01-01 until yesterday
  hoursync sync 2024-01-01 123456 ev:987654 --dry-run

  # Book the daily records on the Everhour task
  hoursync sync 2024-01-01 123456 ev:987654

  # Show per-day durations only
  hoursync report 2024-01-01 123456

  # Snapshot source entries and report from the snapshot
  hoursync snapshot 2024-01-01 123456 --db ./hoursync.db
  hoursync report 2024-01-01 123456 --db ./hoursync.db --output ./days.xlsx
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.hoursync.yaml, then ./.hoursync.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelArg, "log-level", "", "Log level override: debug|info|warn|error")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".hoursync" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".hoursync")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// Defaults and environment variables are enough to run without a file.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found, using defaults. Create one with: hoursync config create")
	}
}
