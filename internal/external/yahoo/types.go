package yahoo

// chartResponse is the top-level container of /v8/finance/chart
type chartResponse struct {
	Chart chartData `json:"chart"`
}

type chartData struct {
	Result []chartResult `json:"result"`
	Error  *chartError   `json:"error"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta       chartMeta  `json:"meta"`
	Timestamp  []int64    `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type chartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	ExchangeName       string  `json:"exchangeName"`
	ExchangeTimezone   string  `json:"exchangeTimezoneName"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	DataGranularity    string  `json:"dataGranularity"`
}

type indicators struct {
	Quote []quote `json:"quote"`
}

// quote holds parallel arrays; Yahoo sends null for minutes without trades
type quote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}
