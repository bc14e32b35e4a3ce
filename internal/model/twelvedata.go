package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Wire shapes for the TwelveData REST API. Field names follow the provider's
// JSON; conversion to domain types happens in the To* helpers.

// TwelveDataEarliestDateResponse is the /earliest_timestamp response
type TwelveDataEarliestDateResponse struct {
	Datetime string `json:"datetime"`
	UnixTime int64  `json:"unix_time"`
}

// Date parses the response's datetime field
func (r TwelveDataEarliestDateResponse) Date() (time.Time, error) {
	return parseProviderTime(r.Datetime)
}

// TwelveDataTimeSeriesResponse is the /time_series response
type TwelveDataTimeSeriesResponse struct {
	Meta   TwelveDataMeta    `json:"meta"`
	Values []TwelveDataValue `json:"values"`
	Status string            `json:"status"`
}

// TwelveDataMeta is the meta block of a time-series response
type TwelveDataMeta struct {
	Symbol           string `json:"symbol"`
	Interval         string `json:"interval"`
	Currency         string `json:"currency"`
	ExchangeTimezone string `json:"exchange_timezone"`
	Exchange         string `json:"exchange"`
	MicCode          string `json:"mic_code"`
	Type             string `json:"type"`
}

// TwelveDataValue is a single bar in a time-series response. Prices arrive
// as quoted decimal strings and are kept exact.
type TwelveDataValue struct {
	Datetime string          `json:"datetime"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	Volume   int64           `json:"volume,string"`
}

// ToSymbol converts a time-series response into the domain Symbol, with data
// points sorted by ascending timestamp
func (r TwelveDataTimeSeriesResponse) ToSymbol() (*Symbol, error) {
	interval, err := ParseInterval(r.Meta.Interval)
	if err != nil {
		return nil, fmt.Errorf("time series meta: %w", err)
	}

	points := make([]SymbolDataPoint, 0, len(r.Values))
	for _, v := range r.Values {
		ts, err := parseProviderTime(v.Datetime)
		if err != nil {
			return nil, fmt.Errorf("time series value: %w", err)
		}
		points = append(points, SymbolDataPoint{
			Date:   ts,
			Open:   v.Open,
			High:   v.High,
			Low:    v.Low,
			Close:  v.Close,
			Volume: v.Volume,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	return &Symbol{
		Meta: SymbolMeta{
			SymbolName: r.Meta.Symbol,
			Interval:   interval,
			Currency:   r.Meta.Currency,
			Exchange:   r.Meta.Exchange,
			MicCode:    r.Meta.MicCode,
			Type:       r.Meta.Type,
		},
		Data: points,
	}, nil
}

// TwelveDataAvailableSymbolsResponse is the /stocks response
type TwelveDataAvailableSymbolsResponse struct {
	Data   []TwelveDataAvailableSymbol `json:"data"`
	Status string                      `json:"status"`
}

// TwelveDataAvailableSymbol is one listing entry of the /stocks response
type TwelveDataAvailableSymbol struct {
	Symbol   string                 `json:"symbol"`
	Name     string                 `json:"name"`
	Currency string                 `json:"currency"`
	Exchange string                 `json:"exchange"`
	MicCode  string                 `json:"mic_code"`
	Country  string                 `json:"country"`
	Type     string                 `json:"type"`
	Access   TwelveDataSymbolAccess `json:"access"`
}

// TwelveDataSymbolAccess describes which plan a listed symbol belongs to
type TwelveDataSymbolAccess struct {
	Global string `json:"global"`
	Plan   string `json:"plan"`
}

// parseProviderTime accepts the provider's two datetime layouts: date-only
// for daily and coarser intervals, date plus time for intraday ones.
func parseProviderTime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid datetime %q", s)
	}
	return t, nil
}
