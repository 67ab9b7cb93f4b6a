package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/aegis-intraday/internal/contracts"
	"github.com/wonny/aegis-intraday/pkg/logger"
)

func TestValidator_Validate(t *testing.T) {
	provider := newFakeProvider().
		withSeries("RELIANCE.NS", rising(80)).
		withSeries("TCS.NS", rising(80))
	provider.probeErr["HDFCBANK.NS"] = errProvider
	provider.exists["HDFCBANK.NS"] = true // error wins over existence

	v := NewValidator(provider, Config{Workers: 3, Timeout: time.Second}, logger.Nop())

	valid := v.Validate(context.Background(), []contracts.Ticker{
		"RELIANCE.NS", "FAKE123.NS", "TCS.NS", "HDFCBANK.NS",
	})
	contracts.SortTickers(valid)

	assert.Equal(t, []contracts.Ticker{"RELIANCE.NS", "TCS.NS"}, valid)
	assert.Equal(t, int32(4), provider.probes)
}

func TestValidator_Timeout(t *testing.T) {
	provider := newFakeProvider().withSeries("INFY.NS", rising(80))
	provider.exists["SLOW.NS"] = true
	provider.block["SLOW.NS"] = true

	v := NewValidator(provider, Config{Workers: 2, Timeout: 20 * time.Millisecond}, logger.Nop())

	start := time.Now()
	valid := v.Validate(context.Background(), []contracts.Ticker{"SLOW.NS", "INFY.NS"})

	assert.Equal(t, []contracts.Ticker{"INFY.NS"}, valid)
	assert.Less(t, time.Since(start), time.Second)
}

func TestValidator_Duplicates(t *testing.T) {
	provider := newFakeProvider().withSeries("ITC.BO", rising(80))
	v := NewValidator(provider, Config{Workers: 2, Timeout: time.Second}, logger.Nop())

	valid := v.Validate(context.Background(), []contracts.Ticker{"ITC.BO", "ITC.BO"})

	assert.Len(t, valid, 2)
	assert.Equal(t, int32(2), provider.probes)
}

func TestValidator_Empty(t *testing.T) {
	v := NewValidator(newFakeProvider(), Config{}, logger.Nop())
	assert.Empty(t, v.Validate(context.Background(), nil))
}

func TestValidator_BoundedConcurrency(t *testing.T) {
	provider := newFakeProvider()
	provider.jitter = true

	var tickers []contracts.Ticker
	for i := 0; i < 50; i++ {
		tk := contracts.Ticker(string(rune('A'+i%26)) + string(rune('A'+i/26)) + ".NS")
		provider.exists[tk] = true
		tickers = append(tickers, tk)
	}

	v := NewValidator(provider, Config{Workers: 4, Timeout: time.Second}, logger.Nop())
	valid := v.Validate(context.Background(), tickers)

	assert.Len(t, valid, 50)
	assert.LessOrEqual(t, provider.maxInflight, int32(4))
}

func TestValidator_PanicIsInvalid(t *testing.T) {
	provider := &panickingProber{}
	v := NewValidator(provider, Config{Workers: 1, Timeout: time.Second}, logger.Nop())

	assert.Empty(t, v.Validate(context.Background(), []contracts.Ticker{"X.NS"}))
}

func TestValidator_CancelledContext(t *testing.T) {
	provider := newFakeProvider().withSeries("LT.NS", rising(80))
	v := NewValidator(provider, Config{Workers: 1, Timeout: time.Second}, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	valid, pending := v.validate(ctx, []contracts.Ticker{"LT.NS", "SBIN.NS"}, nil)
	assert.Empty(t, valid)
	assert.Len(t, pending, 2)
	assert.Equal(t, int32(0), provider.probes)
}

type panickingProber struct{ fakeProvider }

func (*panickingProber) ProbeExists(context.Context, contracts.Ticker) (bool, error) {
	panic("probe exploded")
}
