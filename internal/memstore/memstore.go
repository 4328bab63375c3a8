// Package memstore keeps every repository in process memory. It backs the
// "memory" store driver and the concurrency tests.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/facturador/internal/client"
	"github.com/MrJamesThe3rd/facturador/internal/invoice"
	"github.com/MrJamesThe3rd/facturador/internal/stock"
)

type counterKey struct {
	tenantID string
	pos      string
}

type invoiceRow struct {
	seq int64
	inv invoice.Invoice
}

type state struct {
	counters  map[counterKey]int64
	products  map[uuid.UUID]stock.Product
	movements []stock.Movement
	clients   map[uuid.UUID]client.Client
	invoices  map[uuid.UUID]invoiceRow
	seq       int64
}

func (s *state) clone() *state {
	invoices := make(map[uuid.UUID]invoiceRow, len(s.invoices))
	for id, row := range s.invoices {
		row.inv = cloneInvoice(row.inv)
		invoices[id] = row
	}

	return &state{
		counters:  maps.Clone(s.counters),
		products:  maps.Clone(s.products),
		movements: slices.Clone(s.movements),
		clients:   maps.Clone(s.clients),
		invoices:  invoices,
		seq:       s.seq,
	}
}

// DB holds all data behind one mutex. A transaction holds the mutex for its
// whole duration, so transactions are serialized and see no concurrent writes.
type DB struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

func New() *DB {
	return &DB{
		st: &state{
			counters: make(map[counterKey]int64),
			products: make(map[uuid.UUID]stock.Product),
			clients:  make(map[uuid.UUID]client.Client),
			invoices: make(map[uuid.UUID]invoiceRow),
		},
		now: time.Now,
	}
}

type txKey struct{}

func (db *DB) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*DB)
	return owner == db
}

// WithinTx runs fn atomically: if fn returns an error or panics, every write
// it made is undone. Nested calls roll back only their own writes.
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !db.inTx(ctx) {
		db.mu.Lock()
		defer db.mu.Unlock()

		ctx = context.WithValue(ctx, txKey{}, db)
	}

	snapshot := db.st.clone()
	committed := false

	defer func() {
		if !committed {
			db.st = snapshot
		}
	}()

	if err := fn(ctx); err != nil {
		return err
	}

	committed = true

	return nil
}

// lock takes the mutex for a single operation unless ctx already runs inside
// a transaction of db, which holds it.
func (db *DB) lock(ctx context.Context) func() {
	if db.inTx(ctx) {
		return func() {}
	}

	db.mu.Lock()

	return db.mu.Unlock
}

func (db *DB) nextSeq() int64 {
	db.st.seq++
	return db.st.seq
}

func (db *DB) timestamp() (time.Time, *time.Time) {
	now := db.now().UTC()
	return now, &now
}

func (db *DB) Counters() *Counters { return &Counters{db: db} }

func (db *DB) Products() *Products { return &Products{db: db} }

func (db *DB) Clients() *Clients { return &Clients{db: db} }

func (db *DB) Invoices() *Invoices { return &Invoices{db: db} }
