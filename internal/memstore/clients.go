package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/facturador/internal/client"
)

// Clients implements client.Repository.
type Clients struct {
	db *DB
}

func (c *Clients) duplicate(cl *client.Client) bool {
	if cl.DocType == client.DocNone {
		return false
	}

	for id, existing := range c.db.st.clients {
		if id != cl.ID && existing.TenantID == cl.TenantID &&
			existing.DocType == cl.DocType && existing.DocNumber == cl.DocNumber {
			return true
		}
	}

	return false
}

func (c *Clients) CreateClient(ctx context.Context, cl *client.Client) error {
	defer c.db.lock(ctx)()

	if c.duplicate(cl) {
		return client.ErrDuplicateDocument
	}

	cl.ID = uuid.New()
	cl.CreatedAt, cl.UpdatedAt = c.db.timestamp()
	c.db.st.clients[cl.ID] = *cl

	return nil
}

func (c *Clients) GetClient(ctx context.Context, tenantID string, id uuid.UUID) (*client.Client, error) {
	defer c.db.lock(ctx)()

	cl, ok := c.db.st.clients[id]
	if !ok || cl.TenantID != tenantID {
		return nil, client.ErrNotFound
	}

	return &cl, nil
}

func (c *Clients) ListClients(ctx context.Context, tenantID string, filter client.ListFilter) ([]*client.Client, error) {
	defer c.db.lock(ctx)()

	var clients []*client.Client

	for _, cl := range c.db.st.clients {
		if cl.TenantID != tenantID {
			continue
		}

		if filter.ActiveOnly && !cl.Active {
			continue
		}

		if filter.DocType != nil && cl.DocType != *filter.DocType {
			continue
		}

		clients = append(clients, &cl)
	}

	sort.Slice(clients, func(i, j int) bool { return clients[i].Name < clients[j].Name })

	return clients, nil
}

func (c *Clients) UpdateClient(ctx context.Context, cl *client.Client) error {
	defer c.db.lock(ctx)()

	current, ok := c.db.st.clients[cl.ID]
	if !ok || current.TenantID != cl.TenantID {
		return client.ErrNotFound
	}

	if c.duplicate(cl) {
		return client.ErrDuplicateDocument
	}

	_, cl.UpdatedAt = c.db.timestamp()
	c.db.st.clients[cl.ID] = *cl

	return nil
}
