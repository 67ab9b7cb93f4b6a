package universe

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-intraday/pkg/config"
	"github.com/wonny/aegis-intraday/pkg/database"
)

func TestPostgresSource_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			URL:             dbURL,
			MaxConns:        2,
			MinConns:        1,
			MaxConnLifetime: time.Minute,
			MaxConnIdleTime: time.Minute,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.New(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Pool.Exec(ctx, `CREATE SCHEMA IF NOT EXISTS market`)
	require.NoError(t, err)
	_, err = db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS market.symbols (
			exchange  TEXT    NOT NULL,
			symbol    TEXT    NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			PRIMARY KEY (exchange, symbol)
		)`)
	require.NoError(t, err)
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO market.symbols (exchange, symbol, is_active) VALUES
			('TEST', 'BBB', TRUE), ('TEST', 'AAA', TRUE), ('TEST', 'ZZZ', FALSE)
		ON CONFLICT DO NOTHING`)
	require.NoError(t, err)
	defer db.Pool.Exec(context.Background(), `DELETE FROM market.symbols WHERE exchange = 'TEST'`)

	src := NewPostgresSource(db.Pool)
	symbols, err := src.Symbols(ctx, "test")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, symbols)
}
