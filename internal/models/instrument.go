package models

// ContractSpec holds the fixed per-instrument trading constants used for
// position sizing and pnl conversion.
type ContractSpec struct {
	Symbol        string  `db:"symbol" json:"symbol"`
	MarginInitial float64 `db:"margin_initial" json:"margin_initial"`
	PointValue    float64 `db:"point_value" json:"point_value"`
	TickSize      float64 `db:"tick_size" json:"tick_size"`
	Multiplier    float64 `db:"contract_multiplier" json:"contract_multiplier"`
	Currency      string  `db:"currency" json:"currency"`
	Description   string  `db:"description" json:"description"`
}

var contractSpecs = map[string]ContractSpec{
	"MES":     {Symbol: "MES", MarginInitial: 1300, PointValue: 5, TickSize: 0.25, Multiplier: 5, Currency: "USD", Description: "Micro E-mini S&P 500 futures contract"},
	"MNQ":     {Symbol: "MNQ", MarginInitial: 1650, PointValue: 2, TickSize: 0.25, Multiplier: 2, Currency: "USD", Description: "Micro E-mini Nasdaq-100 futures contract"},
	"EURUSD":  {Symbol: "EURUSD", MarginInitial: 100, PointValue: 10, TickSize: 0.0001, Multiplier: 100000, Currency: "USD", Description: "Euro vs US Dollar standard lot"},
	"USDJPY":  {Symbol: "USDJPY", MarginInitial: 100, PointValue: 10, TickSize: 0.01, Multiplier: 100000, Currency: "USD", Description: "US Dollar vs Japanese Yen standard lot"},
	"USDCAD":  {Symbol: "USDCAD", MarginInitial: 100, PointValue: 10, TickSize: 0.0001, Multiplier: 100000, Currency: "USD", Description: "US Dollar vs Canadian Dollar standard lot"},
	"BTCUSDT": {Symbol: "BTCUSDT", MarginInitial: 5000, PointValue: 1, TickSize: 0.01, Multiplier: 1, Currency: "USDT", Description: "Bitcoin vs Tether"},
	"ETHUSDT": {Symbol: "ETHUSDT", MarginInitial: 1000, PointValue: 1, TickSize: 0.01, Multiplier: 1, Currency: "USDT", Description: "Ethereum vs Tether"},
	"LTCUSDT": {Symbol: "LTCUSDT", MarginInitial: 200, PointValue: 1, TickSize: 0.01, Multiplier: 1, Currency: "USDT", Description: "Litecoin vs Tether"},
}

// SpecFor returns the contract spec for a symbol. Unknown symbols fall back
// to a generic one-point contract so the simulator degrades instead of failing.
func SpecFor(symbol string) ContractSpec {
	if spec, ok := contractSpecs[symbol]; ok {
		return spec
	}
	return ContractSpec{Symbol: symbol, MarginInitial: 1000, PointValue: 1, TickSize: 0.01, Multiplier: 1, Currency: "USD"}
}

// KnownInstruments lists the symbols with real contract specs
func KnownInstruments() []string {
	symbols := make([]string, 0, len(contractSpecs))
	for symbol := range contractSpecs {
		symbols = append(symbols, symbol)
	}
	return symbols
}
