package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-intraday/internal/report"
	"github.com/wonny/aegis-intraday/internal/scanner"
	"github.com/wonny/aegis-intraday/pkg/logger"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one intraday scan and print the report",
	Long: `Runs validate → fetch → analyze over the selected exchanges.

The session is the current trading day, or the most recent weekday when
run before the open, after the close or on a weekend.

Output:
  Processing statistics (scanned / valid / processed / skipped / invalid)
  Top N tickers by risk-adjusted return

Example:
  go run ./cmd/quant scan
  go run ./cmd/quant scan --exchange NSE --top 5
  go run ./cmd/quant scan --json > report.json`,
	RunE: runScan,
}

var (
	scanExchanges []string
	scanTopN      int
	scanJSON      bool
	scanQuiet     bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringSliceVar(&scanExchanges, "exchange", nil, "exchanges to scan (default SCAN_EXCHANGES)")
	scanCmd.Flags().IntVar(&scanTopN, "top", 0, "number of ranked tickers (default SCAN_TOP_N)")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print the report as JSON")
	scanCmd.Flags().BoolVarP(&scanQuiet, "quiet", "q", false, "no progress output")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// stdout is reserved for the report
	log := logger.NewTo(os.Stderr, cfg)

	var opts []scanner.Option
	if !scanQuiet && !scanJSON {
		opts = append(opts, scanner.WithProgress(printStageProgress))
	}

	a, err := newApp(cfg, log, opts...)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exchanges := normalizeExchanges(scanExchanges)
	if len(exchanges) == 0 {
		exchanges = cfg.Scanner.Exchanges
	}

	if !scanJSON {
		sess := a.calendar.Current()
		PrintDoubleSeparator()
		fmt.Println("  Intraday Scan")
		PrintSeparator()
		PrintKeyValue("Exchanges", strings.Join(exchanges, ", "), 9)
		PrintKeyValue("Session", fmt.Sprintf("%s %s-%s", sess.Label(), sess.Open.Format("15:04"), sess.Close.Format("15:04 MST")), 9)
		PrintKeyValue("Workers", fmt.Sprintf("%d", cfg.Scanner.Workers), 9)
		PrintSeparator()
	}

	start := time.Now()
	out, err := a.service.Scan(ctx, exchanges)
	if err != nil {
		return err
	}

	topN := scanTopN
	if topN <= 0 {
		topN = cfg.Scanner.TopN
	}
	r := report.Build(out, topN)

	if scanJSON {
		return report.WriteJSON(os.Stdout, r)
	}

	if err := report.WriteText(os.Stdout, r); err != nil {
		return err
	}

	if ctx.Err() != nil {
		PrintWarning("Scan interrupted: unprocessed tickers are counted as skipped")
	}
	fmt.Println()
	PrintSuccess(fmt.Sprintf("Scan %s completed in %.2fs", out.RunID, time.Since(start).Seconds()))
	return nil
}

// printStageProgress reports pipeline progress on stderr
func printStageProgress(stage scanner.Stage, done, total int) {
	tag := "Validate"
	if stage == scanner.StageProcess {
		tag = "Process"
	}
	PrintProgress(tag, "tickers", done, total)
}

// normalizeExchanges upper-cases and drops empty entries
func normalizeExchanges(in []string) []string {
	var out []string
	for _, ex := range in {
		if ex = strings.ToUpper(strings.TrimSpace(ex)); ex != "" {
			out = append(out, ex)
		}
	}
	return out
}
