package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hoursync/aggregate"
	"hoursync/config"
	"hoursync/internal/timeutil"
	"hoursync/metrics"
	"hoursync/output"
	"hoursync/submitter"
)

var (
	syncDryRun   bool
	syncDBPath   string
	syncDayOrder string
	syncTimeout  time.Duration
)

const metricsPushTimeout = 10 * time.Second

var syncCmd = &cobra.Command{
	Use:   "sync <from> <projectID> <taskID>",
	Short: "Book one Everhour time record per day from Toggl time entries",
	Long: `Fetch Toggl time entries of one project from <from> until the end of yesterday,
group them per calendar day and book one Everhour time record per day on <taskID>.

Days are delivered one after another. When Everhour answers 429, the same record is
resent after the Retry-After delay, bounded by the retry section of the config.
Any other failure stops the run; days delivered before it stay booked.

<from> is YYYY-MM-DD (UTC midnight) or an RFC3339 timestamp.
<taskID> has the form ev:<digits>.`,
	Example: `
  # Preview without writing to Everhour
  hoursync sync 2024-01-01 123456 ev:987654 --dry-run

  # Book records
  hoursync sync 2024-01-01 123456 ev:987654

  # Book records from a local snapshot in date order
  hoursync sync 2024-01-01 123456 ev:987654 --db ./hoursync.db --day-order chronological
`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := parseSyncArgs(args)
		if err != nil {
			return err
		}

		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		logger, runID, err := newRunLogger(os.Stderr, cfg, logLevelArg)
		if err != nil {
			return err
		}
		dayOrder, err := resolveDayOrder(syncDayOrder, cfg)
		if err != nil {
			return err
		}

		ctx, cancel := runContext(syncTimeout)
		defer cancel()

		source, closeSource, err := openSource(cfg, syncDBPath)
		if err != nil {
			return err
		}
		defer closeSource()

		params := submitter.Params{
			From:      input.From,
			To:        timeutil.EndOfYesterday(time.Now()),
			ProjectID: input.ProjectID,
			TaskID:    input.TaskID,
			DayOrder:  dayOrder,
		}
		logger.Info("sync started",
			slog.String("from", timeutil.ISOInstant(params.From)),
			slog.String("to", timeutil.ISOInstant(params.To)),
			slog.Int64("project_id", params.ProjectID),
			slog.String("task_id", params.TaskID),
			slog.Bool("dry_run", syncDryRun),
		)

		if syncDryRun {
			prepared, err := submitter.Prepare(ctx, source, params)
			if err != nil {
				return err
			}
			return printDryRun(prepared)
		}

		everhourClient, err := newEverhourClient(cfg)
		if err != nil {
			return err
		}

		collector := metrics.New()
		defer pushMetrics(logger, collector, cfg.Metrics.PushgatewayURL)

		deliverer, err := submitter.NewDeliverer(submitter.DelivererConfig{
			Client:   everhourClient,
			Policy:   cfg.RetryPolicy(),
			Logger:   logger,
			Observer: collector,
		})
		if err != nil {
			return err
		}

		prepared, result, err := deliverer.Run(ctx, source, params)
		if err != nil {
			var dayErr *submitter.DayError
			if errors.As(err, &dayErr) {
				fmt.Printf("Sync aborted at day %s. Days delivered before failure: %d\n", dayErr.Date, dayErr.Delivered)
			}
			return err
		}

		fmt.Printf(
			"Sync completed. Run: %s, Entries: %d, Days delivered: %d, Booked: %s, Rate limited responses: %d\n",
			runID,
			len(prepared.Entries),
			result.Delivered,
			output.FormatDuration(result.TotalSeconds),
			result.RateLimited,
		)
		return nil
	},
}

func resolveDayOrder(flagValue string, cfg *config.Config) (aggregate.DayOrder, error) {
	if strings.TrimSpace(flagValue) != "" {
		return aggregate.ParseDayOrder(flagValue)
	}
	return aggregate.ParseDayOrder(cfg.Aggregate.DayOrder)
}

func printDryRun(prepared submitter.Prepared) error {
	fmt.Println("Sync dry-run mode: no records are sent to Everhour.")
	if err := output.WriteReportText(os.Stdout, output.BuildReport(prepared.Summaries)); err != nil {
		return err
	}

	var total int64
	for _, summary := range prepared.Summaries {
		total += summary.TotalSeconds
	}
	fmt.Println("Dry-run summary:")
	fmt.Printf("  Entries kept:      %d\n", len(prepared.Entries))
	fmt.Printf("  Days to deliver:   %d\n", len(prepared.Summaries))
	fmt.Printf("  Total duration:    %s\n", output.FormatDuration(total))
	return nil
}

func pushMetrics(logger *slog.Logger, collector *metrics.Metrics, gatewayURL string) {
	if strings.TrimSpace(gatewayURL) == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), metricsPushTimeout)
	defer cancel()
	if err := collector.Push(ctx, gatewayURL, "hoursync"); err != nil {
		logger.Warn("metrics push failed", slog.Any("err", err))
	}
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Aggregate and print the daily records without sending them")
	syncCmd.Flags().StringVar(&syncDBPath, "db", "", "Read time entries from a local SQLite snapshot instead of Toggl")
	syncCmd.Flags().StringVar(&syncDayOrder, "day-order", "", "Day delivery order: encounter|chronological (default from config)")
	syncCmd.Flags().DurationVar(&syncTimeout, "timeout", 0, "Abort the whole run after this duration (0 disables)")
}
