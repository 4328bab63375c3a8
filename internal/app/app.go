// Package app assembles the domain services on top of the configured store.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrJamesThe3rd/facturador/internal/client"
	clientStore "github.com/MrJamesThe3rd/facturador/internal/client/store"
	"github.com/MrJamesThe3rd/facturador/internal/config"
	"github.com/MrJamesThe3rd/facturador/internal/database"
	"github.com/MrJamesThe3rd/facturador/internal/fiscal"
	"github.com/MrJamesThe3rd/facturador/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/facturador/internal/invoice/store"
	"github.com/MrJamesThe3rd/facturador/internal/memstore"
	"github.com/MrJamesThe3rd/facturador/internal/numbering"
	numberingStore "github.com/MrJamesThe3rd/facturador/internal/numbering/store"
	"github.com/MrJamesThe3rd/facturador/internal/stock"
	stockStore "github.com/MrJamesThe3rd/facturador/internal/stock/store"
)

type Services struct {
	Numbering *numbering.Service
	Stock     *stock.Service
	Clients   *client.Service
	Invoices  *invoice.Service

	// DB is nil for the memory driver.
	DB *sql.DB
}

func (s *Services) Close() error {
	if s.DB == nil {
		return nil
	}

	return s.DB.Close()
}

// Build connects to the store selected by cfg.Store.Driver and wires every service to it.
func Build(ctx context.Context, cfg *config.Config) (*Services, error) {
	authorizer := fiscal.NewLocalAuthorizer(fiscal.WithValidity(cfg.Fiscal.CAEValidity))
	numberingOpts := []numbering.Option{numbering.WithMaxAttempts(cfg.Numbering.MaxAttempts)}

	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		db := memstore.New()

		svc := &Services{
			Numbering: numbering.NewService(db.Counters(), db, numberingOpts...),
			Stock:     stock.NewService(db.Products(), db),
			Clients:   client.NewService(db.Clients()),
		}
		svc.Invoices = invoice.NewService(db.Invoices(), db, svc.Numbering, svc.Stock, svc.Clients, authorizer)

		return svc, nil
	case config.StoreDriverPostgres:
		db, err := database.New(ctx, cfg.ConnectionString())
		if err != nil {
			return nil, err
		}

		tx := database.NewTransactor(db)

		svc := &Services{
			Numbering: numbering.NewService(numberingStore.New(db), tx, numberingOpts...),
			Stock:     stock.NewService(stockStore.New(db), tx),
			Clients:   client.NewService(clientStore.New(db)),
			DB:        db,
		}
		svc.Invoices = invoice.NewService(invoiceStore.New(db), tx, svc.Numbering, svc.Stock, svc.Clients, authorizer)

		return svc, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
