package quota

import (
	"sync"

	"services/market-data-service/internal/model"
)

// Ledger buffers the cost of every provider request issued since the last
// minute drain. Record is safe for arbitrary concurrent callers; the tracker
// empties the buffer on its drain cycle.
type Ledger struct {
	name string

	mu      sync.Mutex
	entries []model.APIRequestRecord
}

// NewLedger creates an empty ledger for one provider identity
func NewLedger(name string) *Ledger {
	return &Ledger{name: name}
}

// Record appends an in-flight request cost record
func (l *Ledger) Record(url string, cost int) {
	rec := model.NewAPIRequestRecord(url, cost, l.name)

	l.mu.Lock()
	l.entries = append(l.entries, rec)
	l.mu.Unlock()
}

// PendingCost sums the costs buffered since the last drain; this is the
// usage of the current minute window
func (l *Ledger) PendingCost() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	for _, e := range l.entries {
		total += e.Cost
	}
	return total
}

// takeAll removes and returns every buffered entry. Entries recorded while a
// drain is running land in the next cycle.
func (l *Ledger) takeAll() []model.APIRequestRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	taken := l.entries
	l.entries = nil
	return taken
}
