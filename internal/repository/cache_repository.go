package repository

import (
	"context"
	"database/sql"
	"time"

	"services/market-data-service/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// CacheRepository is the persistence boundary for cached provider data:
// tracked symbol metadata, time-series rows, the available-symbol cache,
// the configuration store and the request audit log. Every method is an
// independent round-trip; no transaction spans two calls.
type CacheRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewCacheRepository creates a new cache repository
func NewCacheRepository(db *sqlx.DB, logger *zap.Logger) *CacheRepository {
	return &CacheRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertSymbol stores a symbol's metadata and data points for a provider.
// Last write wins per symbol identity and per (symbol, timestamp).
func (r *CacheRepository) UpsertSymbol(ctx context.Context, provider string, symbol *model.Symbol) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tracked_symbols (provider, symbol, interval, currency, exchange, mic_code, instrument_type, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)
		ON CONFLICT (provider, symbol)
		DO UPDATE SET
			interval = EXCLUDED.interval,
			currency = EXCLUDED.currency,
			exchange = EXCLUDED.exchange,
			mic_code = EXCLUDED.mic_code,
			instrument_type = EXCLUDED.instrument_type,
			updated_at = CURRENT_TIMESTAMP
	`,
		provider,
		symbol.Meta.SymbolName,
		symbol.Meta.Interval.String(),
		symbol.Meta.Currency,
		symbol.Meta.Exchange,
		symbol.Meta.MicCode,
		symbol.Meta.Type,
	)
	if err != nil {
		r.logger.Error("Failed to upsert symbol meta",
			zap.Error(err),
			zap.String("symbol", symbol.Meta.SymbolName))
		return err
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO symbol_data (provider, symbol, ts, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (provider, symbol, ts)
		DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume
	`)
	if err != nil {
		r.logger.Error("Failed to prepare statement", zap.Error(err))
		return err
	}
	defer stmt.Close()

	for _, point := range symbol.Data {
		_, err = stmt.ExecContext(
			ctx,
			provider,
			symbol.Meta.SymbolName,
			point.Date,
			point.Open,
			point.High,
			point.Low,
			point.Close,
			point.Volume,
		)
		if err != nil {
			r.logger.Error("Failed to upsert symbol data point",
				zap.Error(err),
				zap.String("symbol", symbol.Meta.SymbolName),
				zap.Time("ts", point.Date))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", zap.Error(err))
		return err
	}

	return nil
}

// GetTrackedSymbols lists the symbols that have a metadata record for a provider
func (r *CacheRepository) GetTrackedSymbols(ctx context.Context, provider string) ([]string, error) {
	query := `SELECT symbol FROM tracked_symbols WHERE provider = $1 ORDER BY symbol`

	var symbols []string
	err := r.db.SelectContext(ctx, &symbols, query, provider)
	if err != nil {
		r.logger.Error("Failed to get tracked symbols",
			zap.Error(err),
			zap.String("provider", provider))
		return nil, err
	}

	return symbols, nil
}

// GetSymbolMeta retrieves a symbol's metadata; nil without error when the
// symbol is not tracked
func (r *CacheRepository) GetSymbolMeta(ctx context.Context, provider, symbolName string) (*model.SymbolMeta, error) {
	query := `
		SELECT symbol, interval, currency, exchange, mic_code, instrument_type
		FROM tracked_symbols
		WHERE provider = $1 AND symbol = $2
	`

	var meta model.SymbolMeta
	err := r.db.GetContext(ctx, &meta, query, provider, symbolName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get symbol meta",
			zap.Error(err),
			zap.String("symbol", symbolName))
		return nil, err
	}

	return &meta, nil
}

// GetSymbolData retrieves a symbol's cached data points with timestamps in
// [start, end] inclusive, in timestamp order. An empty range is not an error.
func (r *CacheRepository) GetSymbolData(ctx context.Context, provider, symbolName string, start, end time.Time) ([]model.SymbolDataPoint, error) {
	query := `
		SELECT ts, open, high, low, close, volume
		FROM symbol_data
		WHERE provider = $1 AND symbol = $2 AND ts >= $3 AND ts <= $4
		ORDER BY ts
	`

	var points []model.SymbolDataPoint
	err := r.db.SelectContext(ctx, &points, query, provider, symbolName, start, end)
	if err != nil {
		r.logger.Error("Failed to get symbol data",
			zap.Error(err),
			zap.String("symbol", symbolName))
		return nil, err
	}

	return points, nil
}

// CacheAvailableSymbols replaces the entire available-symbol cache for a
// provider. This is a full replace, not a merge.
func (r *CacheRepository) CacheAvailableSymbols(ctx context.Context, provider string, symbols []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM available_symbols WHERE provider = $1`, provider); err != nil {
		r.logger.Error("Failed to clear available symbols",
			zap.Error(err),
			zap.String("provider", provider))
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO available_symbols (provider, symbol)
		SELECT $1, unnest($2::text[])
	`, provider, pq.Array(symbols))
	if err != nil {
		r.logger.Error("Failed to insert available symbols",
			zap.Error(err),
			zap.String("provider", provider),
			zap.Int("count", len(symbols)))
		return err
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", zap.Error(err))
		return err
	}

	return nil
}

// GetAvailableSymbols retrieves the cached available symbols for a provider
func (r *CacheRepository) GetAvailableSymbols(ctx context.Context, provider string) ([]model.AvailableSymbol, error) {
	query := `SELECT symbol, earliest FROM available_symbols WHERE provider = $1 ORDER BY symbol`

	var symbols []model.AvailableSymbol
	err := r.db.SelectContext(ctx, &symbols, query, provider)
	if err != nil {
		r.logger.Error("Failed to get available symbols",
			zap.Error(err),
			zap.String("provider", provider))
		return nil, err
	}

	return symbols, nil
}

// GetConfig retrieves a configuration value; an absent key yields an empty
// string, not an error
func (r *CacheRepository) GetConfig(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM configuration WHERE key = $1`

	var value string
	err := r.db.GetContext(ctx, &value, query, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		r.logger.Error("Failed to get configuration", zap.Error(err), zap.String("key", key))
		return "", err
	}

	return value, nil
}

// SetConfig stores a configuration value, overwriting any previous one
func (r *CacheRepository) SetConfig(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO configuration (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`

	_, err := r.db.ExecContext(ctx, query, key, value)
	if err != nil {
		r.logger.Error("Failed to set configuration", zap.Error(err), zap.String("key", key))
		return err
	}

	return nil
}

// AppendRequestLog inserts one audit record for a provider request
func (r *CacheRepository) AppendRequestLog(ctx context.Context, record model.APIRequestRecord) error {
	query := `
		INSERT INTO request_log (provider, requested_at, url, cost)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, record.APIName, record.RequestTime, record.URL, record.Cost)
	if err != nil {
		r.logger.Error("Failed to append request log",
			zap.Error(err),
			zap.String("provider", record.APIName))
		return err
	}

	return nil
}
