package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-intraday/internal/api"
	"github.com/wonny/aegis-intraday/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health            - Health check
  POST /api/scan          - Run a scan (?exchange=NSE,BSE&top=10)
  GET  /api/scan/latest   - Report of the most recent scan
  GET  /api/session       - Session a scan would use now
  GET  /api/universe      - Tickers a scan would cover (?exchange=NSE)
  GET  /metrics           - Prometheus metrics (METRICS_ENABLED)

Example:
  go run ./cmd/quant api
  go run ./cmd/quant api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Intraday Scanner API Server ===")

	// 1. Load config + logger
	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 2. Wire scanner components
	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	// 3. Create handler + router
	scanHandler := handlers.NewScanHandler(a.service, cfg.Scanner.TopN, log)

	routerCfg := api.RouterConfig{}
	if a.metrics != nil {
		routerCfg.Metrics = a.metrics.Handler()
		routerCfg.Observer = a.metrics
	}
	router := api.NewRouter(scanHandler, routerCfg, log)

	// 4. Create server
	server := api.New(cfg, log, router)

	// 5. Serve until Ctrl+C / SIGTERM, then shut down gracefully
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	PrintList([]string{
		"GET  /health",
		"POST /api/scan",
		"GET  /api/scan/latest",
		"GET  /api/session",
		"GET  /api/universe",
		"GET  /metrics",
	})
	fmt.Println("\nPress Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		return err
	}

	log.Info("Server stopped")
	return nil
}
