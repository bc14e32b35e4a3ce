package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SymbolMeta describes one tracked symbol as reported by the provider
type SymbolMeta struct {
	SymbolName string   `json:"symbol" db:"symbol"`
	Interval   Interval `json:"interval" db:"interval"`
	Currency   string   `json:"currency" db:"currency"`
	Exchange   string   `json:"exchange" db:"exchange"`
	MicCode    string   `json:"mic_code" db:"mic_code"`
	Type       string   `json:"type" db:"instrument_type"`
}

// SymbolDataPoint is a single bar of a symbol's time series. Prices are
// decimals so the provider's exact digits survive storage and re-serialization.
type SymbolDataPoint struct {
	Date   time.Time       `json:"datetime" db:"ts"`
	Open   decimal.Decimal `json:"open" db:"open"`
	High   decimal.Decimal `json:"high" db:"high"`
	Low    decimal.Decimal `json:"low" db:"low"`
	Close  decimal.Decimal `json:"close" db:"close"`
	Volume int64           `json:"volume" db:"volume"`
}

// Symbol joins a symbol's metadata with an ordered slice of its data points.
// It is an exchange format between layers, never stored as one record.
type Symbol struct {
	Meta SymbolMeta        `json:"meta"`
	Data []SymbolDataPoint `json:"data"`
}

// AvailableSymbol is one entry of the provider's tradable-symbol universe,
// filtered to the configured plan. Earliest is nil until first looked up.
type AvailableSymbol struct {
	SymbolName string     `json:"symbol" db:"symbol"`
	Earliest   *time.Time `json:"earliest,omitempty" db:"earliest"`
}
