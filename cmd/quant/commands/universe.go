package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-intraday/internal/contracts"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "List the tickers a scan would cover",
	Long: `Resolves exchanges into suffix-qualified tickers without calling the
market data provider.

Sources, in order of precedence:
  DATABASE_URL   - market.symbols table
  UNIVERSE_FILE  - YAML override of the built-in lists
  built-in       - 10 NSE and 10 BSE large caps

Example:
  go run ./cmd/quant universe
  go run ./cmd/quant universe --exchange BSE`,
	RunE: runUniverse,
}

var universeExchanges []string

func init() {
	rootCmd.AddCommand(universeCmd)

	universeCmd.Flags().StringSliceVar(&universeExchanges, "exchange", nil, "exchanges to list (default SCAN_EXCHANGES)")
}

func runUniverse(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exchanges := normalizeExchanges(universeExchanges)
	if len(exchanges) == 0 {
		exchanges = cfg.Scanner.Exchanges
	}

	tickers, err := a.universe.Tickers(ctx, exchanges)
	if err != nil {
		return err
	}

	known := a.universe.Exchanges()
	sort.Strings(known)

	PrintDoubleSeparator()
	fmt.Println("  Symbol Universe")
	PrintSeparator()
	PrintKeyValue("Selected", strings.Join(exchanges, ", "), 8)
	PrintKeyValue("Known", strings.Join(known, ", "), 8)
	PrintKeyValue("Tickers", fmt.Sprintf("%d", len(tickers)), 8)
	PrintSeparator()

	PrintList(tickerStrings(tickers))

	return nil
}

// tickerStrings converts tickers for PrintList
func tickerStrings(tickers []contracts.Ticker) []string {
	out := make([]string, len(tickers))
	for i, t := range tickers {
		out[i] = t.String()
	}
	return out
}
