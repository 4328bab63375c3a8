package invoice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrJamesThe3rd/facturador/internal/stock"
	"github.com/MrJamesThe3rd/facturador/internal/validation"
)

var tracer = otel.Tracer("github.com/MrJamesThe3rd/facturador/internal/invoice")

// Issue turns a DRAFT invoice into an ISSUED one.
//
// Preconditions are checked in order before anything is written: the invoice
// is a draft, it has a client, it has items, and every product has enough
// stock for the summed quantity of its lines. The commit then runs in a single
// transaction: totals are recomputed, the final number is allocated, the
// invoice is stamped with the number and a CAE, and one sale movement is
// recorded per item. If any step fails the whole transaction is rolled back,
// the invoice stays DRAFT and the number is not consumed.
func (s *Service) Issue(ctx context.Context, tenantID string, id uuid.UUID) (*Invoice, error) {
	ctx, span := tracer.Start(ctx, "invoice.Issue", trace.WithAttributes(attribute.String("invoice_id", id.String())))
	defer span.End()

	inv, err := s.repo.GetInvoice(ctx, tenantID, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.checkIssuable(ctx, inv); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var issued *Invoice

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error

		issued, err = s.commitIssue(ctx, tenantID, id)

		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if isPrecondition(err) {
			return nil, err
		}

		slog.Error("failed to issue invoice", "tenant", tenantID, "invoice_id", id, "error", err)

		return nil, fmt.Errorf("%w: %w", ErrIssuanceFailed, err)
	}

	span.SetAttributes(attribute.String("number", issued.POS+"-"+issued.Number))
	slog.Info("invoice issued",
		"tenant", tenantID,
		"invoice_id", id,
		"number", issued.POS+"-"+issued.Number,
		"total", issued.Totals.Total,
	)

	return issued, nil
}

// commitIssue must run inside a transaction.
func (s *Service) commitIssue(ctx context.Context, tenantID string, id uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetInvoiceForUpdate(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	// The draft may have been issued or edited since the pre-check.
	if err := checkHeader(inv); err != nil {
		return nil, err
	}

	inv.Items, inv.Totals, err = priceItems(inv.Items)
	if err != nil {
		return nil, err
	}

	number, err := s.numbering.AllocateNext(ctx, tenantID, inv.POS)
	if err != nil {
		return nil, fmt.Errorf("allocating number: %w", err)
	}

	auth, err := s.authorizer.Authorize(ctx, inv.POS, number)
	if err != nil {
		return nil, fmt.Errorf("authorizing invoice: %w", err)
	}

	inv.Number = number
	inv.Status = StatusIssued
	inv.CAE = auth.CAE
	inv.CAEDue = &auth.DueAt

	if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("saving issued invoice: %w", err)
	}

	note := fmt.Sprintf("Sale - Invoice %s-%s", inv.POS, inv.Number)

	// Product rows are locked in id order so concurrent issuances cannot deadlock.
	items := slices.Clone(inv.Items)
	slices.SortStableFunc(items, func(a, b LineItem) int {
		return bytes.Compare(a.ProductID[:], b.ProductID[:])
	})

	for _, it := range items {
		_, err := s.stock.Adjust(ctx, tenantID, stock.AdjustParams{
			ProductID: it.ProductID,
			Delta:     -it.Qty,
			Type:      stock.MovementSale,
			Note:      note,
		})
		if err != nil {
			return nil, fmt.Errorf("deducting stock: %w", err)
		}
	}

	return inv, nil
}

func (s *Service) checkIssuable(ctx context.Context, inv *Invoice) error {
	if err := checkHeader(inv); err != nil {
		return err
	}

	if _, _, err := priceItems(inv.Items); err != nil {
		return err
	}

	for _, req := range requiredStock(inv.Items) {
		p, err := s.stock.GetProduct(ctx, inv.TenantID, req.productID)
		if errors.Is(err, stock.ErrProductNotFound) {
			return &stock.InsufficientStockError{
				ProductID: req.productID,
				Name:      inv.Items[req.firstItem].Description,
				Requested: req.qty,
			}
		}

		if err != nil {
			return fmt.Errorf("item %d: %w", req.firstItem+1, err)
		}

		if p.Stock < req.qty {
			return &stock.InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: req.qty,
				Available: p.Stock,
			}
		}
	}

	return nil
}

func checkHeader(inv *Invoice) error {
	if !inv.Status.CanTransition(StatusIssued) {
		return &StateError{ID: inv.ID, Status: inv.Status, Op: "issue"}
	}

	if inv.ClientID == nil {
		return ErrMissingClient
	}

	if len(inv.Items) == 0 {
		return ErrEmptyInvoice
	}

	return nil
}

type stockRequirement struct {
	productID uuid.UUID
	qty       int64
	firstItem int
}

// requiredStock sums quantities per product, keeping the order in which
// products first appear on the invoice.
func requiredStock(items []LineItem) []stockRequirement {
	var reqs []stockRequirement

	index := make(map[uuid.UUID]int, len(items))

	for i, it := range items {
		if j, ok := index[it.ProductID]; ok {
			// Saturates at MaxInt64.
			if reqs[j].qty > math.MaxInt64-it.Qty {
				reqs[j].qty = math.MaxInt64
			} else {
				reqs[j].qty += it.Qty
			}

			continue
		}

		index[it.ProductID] = len(reqs)
		reqs = append(reqs, stockRequirement{productID: it.ProductID, qty: it.Qty, firstItem: i})
	}

	return reqs
}

func isPrecondition(err error) bool {
	return errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrMissingClient) ||
		errors.Is(err, ErrEmptyInvoice) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, validation.ErrInvalid)
}
