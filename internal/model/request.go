package model

import (
	"time"
)

// APIRequestRecord is one append-only audit entry for a provider request.
// Records accumulate in the in-flight ledger and are moved to the persistent
// log by the minute drain; they are never updated or deleted.
type APIRequestRecord struct {
	RequestTime time.Time `json:"request_time" db:"requested_at"`
	URL         string    `json:"url" db:"url"`
	Cost        int       `json:"cost" db:"cost"`
	APIName     string    `json:"api_name" db:"provider"`
}

// NewAPIRequestRecord stamps a request record with the current time
func NewAPIRequestRecord(url string, cost int, apiName string) APIRequestRecord {
	return APIRequestRecord{
		RequestTime: time.Now(),
		URL:         url,
		Cost:        cost,
		APIName:     apiName,
	}
}
