package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const timeSeriesJSON = `{
  "meta": {
    "symbol": "AAPL",
    "interval": "1min",
    "currency": "USD",
    "exchange_timezone": "America/New_York",
    "exchange": "NASDAQ",
    "mic_code": "XNAS",
    "type": "Common Stock"
  },
  "values": [
    {
      "datetime": "2021-09-16 15:59:00",
      "open": "148.73500",
      "high": "148.86000",
      "low": "148.73000",
      "close": "148.85001",
      "volume": "624277"
    },
    {
      "datetime": "2021-09-16 15:58:00",
      "open": "148.72000",
      "high": "148.78000",
      "low": "148.70000",
      "close": "148.74001",
      "volume": "274622"
    }
  ],
  "status": "ok"
}`

func TestTimeSeriesResponseToSymbol(t *testing.T) {
	var resp TwelveDataTimeSeriesResponse
	require.NoError(t, json.Unmarshal([]byte(timeSeriesJSON), &resp))
	assert.Equal(t, "ok", resp.Status)

	symbol, err := resp.ToSymbol()
	require.NoError(t, err)

	assert.Equal(t, "AAPL", symbol.Meta.SymbolName)
	assert.Equal(t, IntervalOneMin, symbol.Meta.Interval)
	assert.Equal(t, "USD", symbol.Meta.Currency)
	assert.Equal(t, "NASDAQ", symbol.Meta.Exchange)
	assert.Equal(t, "XNAS", symbol.Meta.MicCode)
	assert.Equal(t, "Common Stock", symbol.Meta.Type)

	// The provider lists newest first; the domain order is ascending.
	require.Len(t, symbol.Data, 2)
	first, second := symbol.Data[0], symbol.Data[1]
	assert.True(t, first.Date.Before(second.Date))
	assert.Equal(t, time.Date(2021, 9, 16, 15, 58, 0, 0, time.UTC), first.Date)

	// Prices keep the provider's exact decimal digits.
	assert.True(t, first.Open.Equal(decimal.RequireFromString("148.72000")))
	assert.True(t, second.Close.Equal(decimal.RequireFromString("148.85001")))
	assert.Equal(t, int64(274622), first.Volume)
	assert.Equal(t, int64(624277), second.Volume)
}

func TestTimeSeriesResponseToSymbolRejectsBadInterval(t *testing.T) {
	resp := TwelveDataTimeSeriesResponse{
		Meta: TwelveDataMeta{Symbol: "AAPL", Interval: "3min"},
	}
	_, err := resp.ToSymbol()
	require.Error(t, err)
}

func TestEarliestDateResponse(t *testing.T) {
	var resp TwelveDataEarliestDateResponse
	require.NoError(t, json.Unmarshal([]byte(`{"datetime":"1980-12-12","unix_time":345427200}`), &resp))

	date, err := resp.Date()
	require.NoError(t, err)
	assert.Equal(t, time.Date(1980, 12, 12, 0, 0, 0, 0, time.UTC), date)
}

func TestAvailableSymbolsResponse(t *testing.T) {
	raw := `{
	  "data": [
	    {
	      "symbol": "TCS",
	      "name": "Tata Consultancy Services Limited",
	      "currency": "INR",
	      "exchange": "NSE",
	      "mic_code": "XNSE",
	      "country": "India",
	      "type": "Common Stock",
	      "access": {"global": "Level A", "plan": "Grow"}
	    }
	  ],
	  "status": "ok"
	}`

	var resp TwelveDataAvailableSymbolsResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "TCS", resp.Data[0].Symbol)
	assert.Equal(t, "Grow", resp.Data[0].Access.Plan)
}
