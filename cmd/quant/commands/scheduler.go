package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-intraday/internal/scheduler"
	"github.com/wonny/aegis-intraday/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Recurring scans on a cron schedule",
	Long: `Runs the intraday scan on a cron schedule evaluated in the market
timezone (MARKET_TIMEZONE).

Subcommands:
  start   - start the scheduler daemon
  list    - registered jobs and their next run
  run     - run a job once in the foreground

Example:
  go run ./cmd/quant scheduler start
  go run ./cmd/quant scheduler start --schedule "0 */5 9-15 * * MON-FRI"
  go run ./cmd/quant scheduler run intraday_scan`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Starts the scheduler and registers:
- intraday_scan: SCAN_SCHEDULE (default every 15 minutes, 09:00-15:59 weekdays)

Each run is a single attempt; a run still going at the next tick is skipped.
Stop with Ctrl+C.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job once in the foreground",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerSchedule string
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().StringVar(&schedulerSchedule, "schedule", "", "cron expression with seconds (default SCAN_SCHEDULE)")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Intraday Scanner Scheduler ===")

	sched, registered, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	// Start scheduler
	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	printJobs(sched, registered)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, registered, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	// Next run is only computed by a running scheduler
	sched.Start()
	defer sched.Stop()

	fmt.Println("Registered jobs:")
	printJobs(sched, registered)

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	_, registered, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	job, ok := registered[jobName]
	if !ok {
		return fmt.Errorf("job %s not found", jobName)
	}

	fmt.Printf("Running job: %s\n", jobName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := job.Run(ctx)
	if err != nil {
		PrintError(fmt.Sprintf("Job %s failed: %v", jobName, err))
		return err
	}

	PrintSuccess(fmt.Sprintf("Job %s completed: %s", jobName, summary))
	return nil
}

func printJobs(sched *scheduler.Scheduler, registered map[string]scheduler.Job) {
	for _, jobName := range sched.GetAllJobs() {
		line := fmt.Sprintf("%s (%s)", jobName, registered[jobName].Schedule())
		if next, err := sched.NextRun(jobName); err == nil && !next.IsZero() {
			line += " next: " + next.Format("2006-01-02 15:04:05 MST")
		}
		PrintList([]string{line})
	}
}

// initScheduler wires the scanner and registers all jobs
func initScheduler() (*scheduler.Scheduler, map[string]scheduler.Job, func(), error) {
	// 1. Load config + logger
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	schedule := cfg.Scanner.Schedule
	if schedulerSchedule != "" {
		schedule = schedulerSchedule
	}

	// 2. Wire scanner components
	a, err := newApp(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}

	// 3. Create scheduler in the market timezone
	sched := scheduler.New(log, a.calendar.Location())

	// 4. Register jobs
	registered := map[string]scheduler.Job{}
	for _, job := range []scheduler.Job{
		jobs.NewScanJob(a.service, schedule, cfg.Scanner.Exchanges, cfg.Scanner.TopN, log),
	} {
		if err := sched.AddJob(job); err != nil {
			a.Close()
			return nil, nil, nil, err
		}
		registered[job.Name()] = job
	}

	return sched, registered, a.Close, nil
}
