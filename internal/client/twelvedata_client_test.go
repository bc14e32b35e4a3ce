package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"services/market-data-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRecorder struct {
	mu   sync.Mutex
	urls []string
	cost int
}

func (r *fakeRecorder) Record(url string, cost int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, url)
	r.cost += cost
}

func (r *fakeRecorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cost
}

func TestEarliestTimestamp(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"datetime":"1980-12-12","unix_time":345427200}`))
	}))
	defer srv.Close()

	recorder := &fakeRecorder{}
	c := NewTwelveDataClient(srv.URL, "test-key", recorder, zap.NewNop())

	date, err := c.EarliestTimestamp(context.Background(), "AAPL", model.IntervalOneDay)
	require.NoError(t, err)

	assert.Equal(t, time.Date(1980, 12, 12, 0, 0, 0, 0, time.UTC), date)
	assert.Equal(t, "/earliest_timestamp", gotPath)
	assert.Equal(t, []string{"AAPL"}, gotQuery["symbol"])
	assert.Equal(t, []string{"1day"}, gotQuery["interval"])
	assert.Equal(t, []string{"test-key"}, gotQuery["apikey"])
	assert.Equal(t, 1, recorder.total())
}

func TestEarliestTimestampChargesFailedRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":429,"message":"out of credits"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	recorder := &fakeRecorder{}
	c := NewTwelveDataClient(srv.URL, "test-key", recorder, zap.NewNop())

	_, err := c.EarliestTimestamp(context.Background(), "AAPL", model.IntervalOneDay)
	require.Error(t, err)

	// A response came back, so the credit was spent.
	assert.Equal(t, 1, recorder.total())
}

func TestEarliestTimestampUnreachableCostsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	recorder := &fakeRecorder{}
	c := NewTwelveDataClient(srv.URL, "test-key", recorder, zap.NewNop())

	_, err := c.EarliestTimestamp(context.Background(), "AAPL", model.IntervalOneDay)
	require.Error(t, err)
	assert.Equal(t, 0, recorder.total())
}

func TestTimeSeries(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"meta": {"symbol":"AAPL","interval":"1day","currency":"USD",
				"exchange_timezone":"America/New_York","exchange":"NASDAQ",
				"mic_code":"XNAS","type":"Common Stock"},
			"values": [
				{"datetime":"2021-09-16","open":"148.73500","high":"148.86000",
				 "low":"148.73000","close":"148.85001","volume":"624277"}
			],
			"status": "ok"
		}`))
	}))
	defer srv.Close()

	recorder := &fakeRecorder{}
	c := NewTwelveDataClient(srv.URL, "test-key", recorder, zap.NewNop())

	start := time.Date(2021, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 9, 16, 0, 0, 0, 0, time.UTC)
	resp, err := c.TimeSeries(context.Background(), "AAPL", model.IntervalOneDay, start, end)
	require.NoError(t, err)

	assert.Equal(t, []string{"2021-09-01"}, gotQuery["start_date"])
	assert.Equal(t, []string{"2021-09-16"}, gotQuery["end_date"])
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Values, 1)
	assert.Equal(t, int64(624277), resp.Values[0].Volume)
	assert.Equal(t, 1, recorder.total())
}

func TestAvailableSymbolsIsNotCharged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stocks", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"symbol":"AAPL","access":{"global":"Level A","plan":"Basic"}}],"status":"ok"}`))
	}))
	defer srv.Close()

	recorder := &fakeRecorder{}
	c := NewTwelveDataClient(srv.URL, "test-key", recorder, zap.NewNop())

	resp, err := c.AvailableSymbols(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "AAPL", resp.Data[0].Symbol)

	// The listing endpoint is free.
	assert.Equal(t, 0, recorder.total())
}
