package repo

import (
	"sync"

	"github.com/bookstore/ledger/internal/db"
	"go.uber.org/zap"
)

// SalesRepository is the append-only transaction log
type SalesRepository struct {
	mu    sync.RWMutex
	sales []db.Sale
	log   *zap.Logger
}

// NewSalesRepository creates an empty transaction log
func NewSalesRepository(logger *zap.Logger) *SalesRepository {
	return &SalesRepository{log: logger}
}

// Replace installs a transaction log read from disk
func (r *SalesRepository) Replace(sales []db.Sale) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sales = append([]db.Sale(nil), sales...)
}

// Append records a sale. Sales are never modified or removed afterwards.
func (r *SalesRepository) Append(sale db.Sale) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sales = append(r.sales, sale)
	r.log.Debug("Sale appended", zap.Int("records", len(r.sales)))
}

// List returns a copy of the log in insertion order
func (r *SalesRepository) List() []db.Sale {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]db.Sale(nil), r.sales...)
}

// Len returns the number of recorded sales
func (r *SalesRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sales)
}
