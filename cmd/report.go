package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hoursync/aggregate"
	"hoursync/config"
	"hoursync/internal/timeutil"
	"hoursync/output"
	"hoursync/submitter"
)

var (
	reportFormat   string
	reportMode     string
	reportOutput   string
	reportDBPath   string
	reportDayOrder string
	reportVerbose  bool
	reportTimeout  time.Duration
)

var reportCmd = &cobra.Command{
	Use:   "report <from> <projectID>",
	Short: "Show per-day durations without writing to Everhour",
	Long: `Fetch and aggregate Toggl time entries like "sync" and print the duration of each day.

Modes:
- daily: one row per day with the formatted duration and comment
- raw: one row per kept time entry (requires --output)

Without --output the daily report is printed to stdout. With --output the format is
selected via --format or inferred from the file extension (csv, xlsx, yaml).`,
	Example: `
  # Print per-day durations
  hoursync report 2024-01-01 123456

  # Print the entries of each day as well
  hoursync report 2024-01-01 123456 --verbose

  # Write the daily report to Excel
  hoursync report 2024-01-01 123456 --output ./days.xlsx

  # Export raw entries from a snapshot to CSV
  hoursync report 2024-01-01 123456 --db ./hoursync.db --mode raw --output ./entries.csv
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
		dayOrder, err := resolveDayOrder(reportDayOrder, cfg)
		if err != nil {
			return err
		}

		format, err := resolveReportFormat(reportFormat, reportOutput)
		if err != nil {
			return err
		}

		mode := strings.TrimSpace(strings.ToLower(reportMode))
		if mode != "" && mode != "daily" && mode != "raw" {
			return fmt.Errorf("unsupported report mode: %s (supported: daily, raw)", reportMode)
		}
		if mode == "raw" && strings.TrimSpace(reportOutput) == "" {
			return fmt.Errorf("report mode raw requires --output")
		}

		ctx, cancel := runContext(reportTimeout)
		defer cancel()

		source, closeSource, err := openSource(cfg, reportDBPath)
		if err != nil {
			return err
		}
		defer closeSource()

		params := submitter.Params{
			From:      input.From,
			To:        timeutil.EndOfYesterday(time.Now()),
			ProjectID: input.ProjectID,
			DayOrder:  dayOrder,
		}
		logger.Info("report started",
			slog.String("from", timeutil.ISOInstant(params.From)),
			slog.String("to", timeutil.ISOInstant(params.To)),
			slog.Int64("project_id", params.ProjectID),
			slog.String("mode", mode),
			slog.String("format", format),
		)

		prepared, err := submitter.Prepare(ctx, source, params)
		if err != nil {
			return err
		}
		logger.Info("report prepared",
			slog.Int("entries", len(prepared.Entries)),
			slog.Int("days", len(prepared.Summaries)),
		)

		if reportVerbose {
			printDayGroups(prepared.Groups)
		}

		if mode == "raw" {
			writer, err := output.WriterForFormat(format)
			if err != nil {
				return err
			}
			if err := writer.Write(reportOutput, prepared.Entries); err != nil {
				return err
			}
			fmt.Printf("Report completed. Rows: %d, Mode: raw, Format: %s, File: %s\n", len(prepared.Entries), format, reportOutput)
			return nil
		}

		rows := output.BuildReport(prepared.Summaries)
		if format == "text" {
			return writeTextReport(reportOutput, rows)
		}
		if err := output.WriteReport(reportOutput, format, rows); err != nil {
			return err
		}
		fmt.Printf("Report completed. Days: %d, Mode: daily, Format: %s, File: %s\n", len(rows), format, reportOutput)
		return nil
	},
}

func writeTextReport(path string, rows []output.ReportRow) error {
	if strings.TrimSpace(path) == "" {
		return output.WriteReportText(os.Stdout, rows)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create text output %s: %w", path, err)
	}
	defer file.Close()
	return output.WriteReportText(file, rows)
}

func printDayGroups(groups aggregate.DayGroups) {
	for _, group := range groups {
		fmt.Printf("%s (%d entries)\n", group.Key, len(group.Entries))
		for _, entry := range group.Entries {
			fmt.Printf("  %s  %-10s  %s\n",
				entry.Start.Format("15:04"),
				output.FormatDuration(entry.Duration),
				entry.Description,
			)
		}
	}
}

// resolveReportFormat picks the explicit format or infers it from the output
// extension. File formats need an output path.
func resolveReportFormat(format, outputPath string) (string, error) {
	format = strings.TrimSpace(strings.ToLower(format))
	if format == "" {
		return detectReportFormat(outputPath), nil
	}
	if format != "text" && strings.TrimSpace(outputPath) == "" {
		return "", fmt.Errorf("report format %s requires --output", format)
	}
	return format, nil
}

func detectReportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return "csv"
	case "xlsx", "xlsm", "xls":
		return "excel"
	case "yaml", "yml":
		return "yaml"
	default:
		return "text"
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportMode, "mode", "daily", "Report mode: daily|raw")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "", "Output format: text|csv|excel|yaml (optional, inferred from output extension)")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Output file path (default: stdout)")
	reportCmd.Flags().StringVar(&reportDBPath, "db", "", "Read time entries from a local SQLite snapshot instead of Toggl")
	reportCmd.Flags().StringVar(&reportDayOrder, "day-order", "", "Day order: encounter|chronological (default from config)")
	reportCmd.Flags().BoolVarP(&reportVerbose, "verbose", "v", false, "Print the entries of each day before the report")
	reportCmd.Flags().DurationVar(&reportTimeout, "timeout", 0, "Abort the whole run after this duration (0 disables)")
}
