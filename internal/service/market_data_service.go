package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"services/market-data-service/internal/model"

	"go.uber.org/zap"
)

const (
	providerName         = "TwelveData"
	configKeyLastUpdated = providerName + "LastUpdated"

	dateLayout = "2006-01-02"
)

// Store is the persistence surface the service consumes
type Store interface {
	UpsertSymbol(ctx context.Context, provider string, symbol *model.Symbol) error
	GetTrackedSymbols(ctx context.Context, provider string) ([]string, error)
	GetSymbolMeta(ctx context.Context, provider, symbolName string) (*model.SymbolMeta, error)
	GetSymbolData(ctx context.Context, provider, symbolName string, start, end time.Time) ([]model.SymbolDataPoint, error)
	CacheAvailableSymbols(ctx context.Context, provider string, symbols []string) error
	GetAvailableSymbols(ctx context.Context, provider string) ([]model.AvailableSymbol, error)
}

// ProviderClient is the outbound TwelveData API surface
type ProviderClient interface {
	EarliestTimestamp(ctx context.Context, symbol string, interval model.Interval) (time.Time, error)
	TimeSeries(ctx context.Context, symbol string, interval model.Interval, start, end time.Time) (*model.TwelveDataTimeSeriesResponse, error)
	AvailableSymbols(ctx context.Context) (*model.TwelveDataAvailableSymbolsResponse, error)
}

// QuotaReporter reports request-budget state for the wrapped provider
type QuotaReporter interface {
	RequestLimit() int
	RequestsRemaining() int
	TimeUntilReset() time.Duration
}

// MarketDataService serves time series and symbol metadata for one
// provider+interval pairing, answering from the cache store when it can and
// issuing at most one provider call per operation when it cannot. Quota
// counters are advisory; the service never refuses a call on their account.
type MarketDataService struct {
	name     string
	interval model.Interval
	tier     model.CreditTier

	api    ProviderClient
	store  Store
	config *ConfigService
	quota  QuotaReporter
	logger *zap.Logger

	now func() time.Time
}

// NewMarketDataService creates a new market data service
func NewMarketDataService(
	interval model.Interval,
	tier model.CreditTier,
	api ProviderClient,
	store Store,
	config *ConfigService,
	quota QuotaReporter,
	logger *zap.Logger,
) *MarketDataService {
	return &MarketDataService{
		name:     ProviderIdentity(interval),
		interval: interval,
		tier:     tier,
		api:      api,
		store:    store,
		config:   config,
		quota:    quota,
		logger:   logger,
		now:      time.Now,
	}
}

// ProviderIdentity derives the provider+interval identity that scopes all
// cached data and quota accounting, e.g. "TwelveData_1day"
func ProviderIdentity(interval model.Interval) string {
	return providerName + "_" + interval.String()
}

// Name implements Provider
func (s *MarketDataService) Name() string {
	return s.name
}

// RequestLimit implements Provider
func (s *MarketDataService) RequestLimit() int {
	return s.quota.RequestLimit()
}

// RequestsRemaining implements Provider
func (s *MarketDataService) RequestsRemaining() int {
	return s.quota.RequestsRemaining()
}

// TimeUntilReset implements Provider
func (s *MarketDataService) TimeUntilReset() time.Duration {
	return s.quota.TimeUntilReset()
}

// GetTimeSeries returns a symbol's bars with timestamps in [start, end]
// inclusive. A tracked symbol is answered wholly from the cache store; an
// untracked one costs a single provider call whose result is cached before
// returning. Validation failures and upstream failures are terminal.
func (s *MarketDataService) GetTimeSeries(ctx context.Context, symbol string, start, end time.Time) (*model.Symbol, error) {
	now := s.now()

	if start.After(now) {
		return nil, &DateRangeError{Reason: ReasonStartInFuture, Start: start, End: end}
	}
	if start.After(end) {
		return nil, &DateRangeError{Reason: ReasonStartAfterEnd, Start: start, End: end}
	}

	earliest, err := s.GetEarliestDate(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if start.Before(earliest) {
		return nil, &DateRangeError{Reason: ReasonStartBeforeEarliest, Start: start, End: end}
	}

	if end.After(now) {
		return nil, &DateRangeError{Reason: ReasonEndInFuture, Start: start, End: end}
	}
	// The provider does not guarantee data for the current trading day, so
	// the latest acceptable end is the start of yesterday.
	latest := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)
	if end.After(latest) {
		return nil, &DateRangeError{Reason: ReasonEndAfterLatestSettled, Start: start, End: end}
	}

	tracked, err := s.store.GetTrackedSymbols(ctx, s.name)
	if err != nil {
		return nil, fmt.Errorf("failed to read tracked symbols: %w", err)
	}
	if slices.Contains(tracked, symbol) {
		return s.readCachedSeries(ctx, symbol, start, end)
	}

	resp, err := s.api.TimeSeries(ctx, symbol, s.interval, start, end)
	if err != nil {
		s.logger.Error("Time series request failed",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.String("provider", s.name))
		return nil, fmt.Errorf("%w: %v", ErrUpstreamRequestFailed, err)
	}

	result, err := resp.ToSymbol()
	if err != nil {
		return nil, fmt.Errorf("failed to parse time series response: %w", err)
	}

	if err := s.store.UpsertSymbol(ctx, s.name, result); err != nil {
		return nil, fmt.Errorf("failed to cache time series: %w", err)
	}

	s.logger.Info("Fetched and cached time series",
		zap.String("symbol", symbol),
		zap.String("provider", s.name),
		zap.Int("points", len(result.Data)))

	return result, nil
}

// readCachedSeries answers a request for a tracked symbol from the store.
// Being tracked is treated as covering any validated range; no gap detection
// is attempted for partially cached ranges.
func (s *MarketDataService) readCachedSeries(ctx context.Context, symbol string, start, end time.Time) (*model.Symbol, error) {
	data, err := s.store.GetSymbolData(ctx, s.name, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached series: %w", err)
	}

	meta, err := s.store.GetSymbolMeta(ctx, s.name, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to read symbol meta: %w", err)
	}
	if meta == nil {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	return &model.Symbol{Meta: *meta, Data: data}, nil
}

// GetEarliestDate returns the first date the provider can serve data for a
// symbol. A cached date costs nothing; an uncached one costs one provider
// call. The fetched date is not written back to the available-symbol cache.
func (s *MarketDataService) GetEarliestDate(ctx context.Context, symbol string) (time.Time, error) {
	available, err := s.GetAvailableSymbols(ctx)
	if err != nil {
		return time.Time{}, err
	}

	idx := slices.IndexFunc(available, func(a model.AvailableSymbol) bool {
		return a.SymbolName == symbol
	})
	if idx < 0 {
		return time.Time{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	if available[idx].Earliest != nil {
		return *available[idx].Earliest, nil
	}

	date, err := s.api.EarliestTimestamp(ctx, symbol, s.interval)
	if err != nil {
		s.logger.Error("Earliest timestamp request failed",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.String("provider", s.name))
		return time.Time{}, fmt.Errorf("%w: %v", ErrUpstreamRequestFailed, err)
	}

	return date, nil
}

// GetAvailableSymbols returns the provider's symbol universe filtered to the
// configured plan. The listing is refreshed from the provider at most once
// per local calendar day and otherwise served from the cache store.
func (s *MarketDataService) GetAvailableSymbols(ctx context.Context) ([]model.AvailableSymbol, error) {
	today := s.now().Format(dateLayout)

	lastUpdated, err := s.config.Get(ctx, configKeyLastUpdated)
	if err != nil {
		return nil, fmt.Errorf("failed to read last-updated marker: %w", err)
	}
	if lastUpdated == today {
		return s.store.GetAvailableSymbols(ctx, s.name)
	}

	resp, err := s.api.AvailableSymbols(ctx)
	if err != nil {
		s.logger.Error("Available symbols request failed",
			zap.Error(err),
			zap.String("provider", s.name))
		return nil, fmt.Errorf("%w: %v", ErrUpstreamRequestFailed, err)
	}

	var names []string
	for _, entry := range resp.Data {
		if entry.Access.Plan == s.tier.PlanName {
			names = append(names, entry.Symbol)
		}
	}

	if err := s.config.Set(ctx, configKeyLastUpdated, today); err != nil {
		return nil, fmt.Errorf("failed to store last-updated marker: %w", err)
	}
	if err := s.store.CacheAvailableSymbols(ctx, s.name, names); err != nil {
		return nil, fmt.Errorf("failed to cache available symbols: %w", err)
	}

	s.logger.Info("Refreshed available symbols",
		zap.String("provider", s.name),
		zap.Int("count", len(names)))

	symbols := make([]model.AvailableSymbol, 0, len(names))
	for _, name := range names {
		symbols = append(symbols, model.AvailableSymbol{SymbolName: name})
	}
	return symbols, nil
}
