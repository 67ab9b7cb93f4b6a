package universe

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Exchange is one exchange namespace with its symbol list
type Exchange struct {
	Suffix  string   `yaml:"suffix"`
	Symbols []string `yaml:"symbols"`
}

// fileFormat is the YAML layout accepted by LoadFile
//
//	exchanges:
//	  NSE:
//	    suffix: .NS
//	    symbols: [RELIANCE, TCS]
type fileFormat struct {
	Exchanges map[string]Exchange `yaml:"exchanges"`
}

// StaticSource serves symbols from an in-memory table
type StaticSource struct {
	exchanges map[string]Exchange
}

// Default returns the built-in NSE/BSE universe
func Default() *StaticSource {
	return &StaticSource{
		exchanges: map[string]Exchange{
			"NSE": {
				Suffix: ".NS",
				Symbols: []string{
					"RELIANCE", "TCS", "HDFCBANK", "INFY", "HINDUNILVR",
					"ICICIBANK", "KOTAKBANK", "BHARTIARTL", "LT", "SBIN",
				},
			},
			"BSE": {
				Suffix: ".BO",
				Symbols: []string{
					"TATASTEEL", "ONGC", "ITC", "SBIN", "AXISBANK",
					"MARUTI", "NTPC", "SUNPHARMA", "WIPRO", "DRREDDY",
				},
			},
		},
	}
}

// LoadFile reads a YAML universe and merges it over the built-in table.
// An exchange in the file replaces the built-in entry of the same code; a
// missing suffix keeps the built-in one.
func LoadFile(path string) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe file: %w", err)
	}

	return Parse(data)
}

// Parse merges YAML universe data over the built-in table.
// Unknown fields are rejected so that typos fail loudly.
func Parse(data []byte) (*StaticSource, error) {
	var f fileFormat
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse universe file: %w", err)
	}

	src := Default()
	for code, ex := range f.Exchanges {
		code = strings.ToUpper(code)
		if ex.Suffix == "" {
			builtin, ok := src.exchanges[code]
			if !ok {
				return nil, fmt.Errorf("exchange %s: suffix is required", code)
			}
			ex.Suffix = builtin.Suffix
		}
		src.exchanges[code] = ex
	}

	return src, nil
}

// Symbols implements contracts.SymbolSource
func (s *StaticSource) Symbols(_ context.Context, exchange string) ([]string, error) {
	ex, ok := s.exchanges[strings.ToUpper(exchange)]
	if !ok {
		return nil, fmt.Errorf("%q: %w", exchange, ErrUnknownExchange)
	}

	out := make([]string, len(ex.Symbols))
	copy(out, ex.Symbols)
	return out, nil
}

// Suffixes returns exchange code → ticker suffix
func (s *StaticSource) Suffixes() map[string]string {
	m := make(map[string]string, len(s.exchanges))
	for code, ex := range s.exchanges {
		m[code] = ex.Suffix
	}
	return m
}
