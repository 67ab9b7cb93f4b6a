package universe

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSource reads active symbols from market.symbols
//
//	CREATE TABLE market.symbols (
//	    exchange  TEXT    NOT NULL,
//	    symbol    TEXT    NOT NULL,
//	    is_active BOOLEAN NOT NULL DEFAULT TRUE,
//	    PRIMARY KEY (exchange, symbol)
//	);
type PostgresSource struct {
	db *pgxpool.Pool
}

// NewPostgresSource creates a new PostgresSource
func NewPostgresSource(db *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{db: db}
}

// Symbols implements contracts.SymbolSource
func (s *PostgresSource) Symbols(ctx context.Context, exchange string) ([]string, error) {
	query := `
		SELECT symbol
		FROM market.symbols
		WHERE exchange = $1
		  AND is_active = TRUE
		ORDER BY symbol
	`

	rows, err := s.db.Query(ctx, query, strings.ToUpper(exchange))
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate symbols: %w", err)
	}

	return symbols, nil
}
