package memstore

import "context"

// Counters implements numbering.Repository.
type Counters struct {
	db *DB
}

func (c *Counters) LastValue(ctx context.Context, tenantID, pos string) (int64, error) {
	defer c.db.lock(ctx)()

	return c.db.st.counters[counterKey{tenantID, pos}], nil
}

func (c *Counters) Increment(ctx context.Context, tenantID, pos string) (int64, error) {
	defer c.db.lock(ctx)()

	key := counterKey{tenantID, pos}
	c.db.st.counters[key]++

	return c.db.st.counters[key], nil
}
