package invoice_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/facturador/internal/client"
	"github.com/MrJamesThe3rd/facturador/internal/fiscal"
	"github.com/MrJamesThe3rd/facturador/internal/http/auth"
	invoicehttp "github.com/MrJamesThe3rd/facturador/internal/http/invoice"
	"github.com/MrJamesThe3rd/facturador/internal/invoice"
	"github.com/MrJamesThe3rd/facturador/internal/memstore"
	"github.com/MrJamesThe3rd/facturador/internal/numbering"
	"github.com/MrJamesThe3rd/facturador/internal/stock"
)

const tenant = "tenant-a"

type server struct {
	router   http.Handler
	stock    *stock.Service
	invoices *invoice.Service
	clientID uuid.UUID
	product  *stock.Product
}

func newServer(t *testing.T) *server {
	t.Helper()

	db := memstore.New()
	ctx := context.Background()

	stockSvc := stock.NewService(db.Products(), db)
	clients := client.NewService(db.Clients())
	numbers := numbering.NewService(db.Counters(), db)
	invoices := invoice.NewService(db.Invoices(), db, numbers, stockSvc, clients, fiscal.NewLocalAuthorizer())

	c, err := clients.Create(ctx, tenant, client.CreateParams{Name: "Juan Pérez", DocNumber: "30123456"})
	require.NoError(t, err)

	p, err := stockSvc.CreateProduct(ctx, tenant, stock.CreateParams{SKU: "W-1", Name: "Widget", Price: 10000, Stock: 5})
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithTenant(r.Context(), tenant)))
		})
	})
	router.Route("/invoices", invoicehttp.NewHandler(invoices).Routes)

	return &server{router: router, stock: stockSvc, invoices: invoices, clientID: c.ID, product: p}
}

func (s *server) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	return rec
}

type invoiceBody struct {
	ID     uuid.UUID `json:"id"`
	POS    string    `json:"pos"`
	Number string    `json:"number"`
	Status string    `json:"status"`
	CAE    string    `json:"cae"`
	Client *struct {
		Name string `json:"name"`
	} `json:"client"`
	Items []struct {
		Description string `json:"description"`
		Qty         int64  `json:"qty"`
		TaxRate     string `json:"tax_rate"`
		Subtotal    int64  `json:"subtotal"`
	} `json:"items"`
	Totals struct {
		Net   int64 `json:"net"`
		Tax   int64 `json:"tax"`
		Total int64 `json:"total"`
	} `json:"totals"`
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))

	return v
}

func (s *server) createDraft(t *testing.T, qty int) invoiceBody {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/invoices/", fmt.Sprintf(
		`{"client_id":%q,"items":[{"product_id":%q,"qty":%d}]}`, s.clientID, s.product.ID, qty))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	return decode[invoiceBody](t, rec)
}

func TestHandler_CreateDraft(t *testing.T) {
	s := newServer(t)

	inv := s.createDraft(t, 2)

	assert.Equal(t, "DRAFT", inv.Status)
	assert.Equal(t, "0001", inv.POS)
	assert.Equal(t, "00000001", inv.Number)
	require.NotNil(t, inv.Client)
	assert.Equal(t, "Juan Pérez", inv.Client.Name)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Widget", inv.Items[0].Description)
	assert.Equal(t, "21", inv.Items[0].TaxRate)
	assert.Equal(t, int64(20000), inv.Totals.Net)
	assert.Equal(t, int64(4200), inv.Totals.Tax)
	assert.Equal(t, int64(24200), inv.Totals.Total)
}

func TestHandler_CreateDraft_Rejected(t *testing.T) {
	s := newServer(t)

	type testCase struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}

	tests := []testCase{
		{
			name:       "MalformedJSON",
			body:       `{"items":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
		},
		{
			name:       "ZeroQty",
			body:       `{"items":[{"product_id":"` + s.product.ID.String() + `","qty":0}]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "validation_failed",
		},
		{
			name:       "UnknownType",
			body:       `{"type":"Z"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "validation_failed",
		},
		{
			name:       "InvalidPOS",
			body:       `{"pos":"12345678"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "validation_failed",
		},
		{
			name:       "AmountOverflow",
			body:       `{"items":[{"product_id":"` + s.product.ID.String() + `","qty":100000,"unit_price":100000000000000}]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "validation_failed",
		},
		{
			name:       "UnknownProduct",
			body:       `{"items":[{"product_id":"` + uuid.NewString() + `","qty":1}]}`,
			wantStatus: http.StatusNotFound,
			wantCode:   "product_not_found",
		},
		{
			name:       "UnknownClient",
			body:       `{"client_id":"` + uuid.NewString() + `"}`,
			wantStatus: http.StatusNotFound,
			wantCode:   "client_not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/invoices/", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decode[errorBody](t, rec).Error)
		})
	}
}

func TestHandler_IssueAndCancel(t *testing.T) {
	s := newServer(t)
	draft := s.createDraft(t, 2)

	rec := s.do(t, http.MethodPost, "/invoices/"+draft.ID.String()+"/issue", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	issued := decode[invoiceBody](t, rec)
	assert.Equal(t, "ISSUED", issued.Status)
	assert.Equal(t, "00000001", issued.Number)
	assert.NotEmpty(t, issued.CAE)

	p, err := s.stock.GetProduct(context.Background(), tenant, s.product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.Stock)

	rec = s.do(t, http.MethodPost, "/invoices/"+draft.ID.String()+"/issue", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_state", decode[errorBody](t, rec).Error)

	rec = s.do(t, http.MethodPost, "/invoices/"+draft.ID.String()+"/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CANCELLED", decode[invoiceBody](t, rec).Status)
}

func TestHandler_Issue_Failures(t *testing.T) {
	s := newServer(t)

	noClient, err := s.invoices.CreateDraft(context.Background(), tenant, invoice.DraftParams{
		Items: []invoice.ItemParams{{ProductID: s.product.ID, Qty: 1}},
	})
	require.NoError(t, err)

	tooMany := s.createDraft(t, 6)

	type testCase struct {
		name       string
		id         string
		wantStatus int
		wantCode   string
	}

	tests := []testCase{
		{name: "MissingClient", id: noClient.ID.String(), wantStatus: http.StatusUnprocessableEntity, wantCode: "missing_client"},
		{name: "OutOfStock", id: tooMany.ID.String(), wantStatus: http.StatusConflict, wantCode: "insufficient_stock"},
		{name: "NotFound", id: uuid.NewString(), wantStatus: http.StatusNotFound, wantCode: "invoice_not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/invoices/"+tt.id+"/issue", "")

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decode[errorBody](t, rec).Error)
		})
	}

	rec := s.do(t, http.MethodPost, "/invoices/not-a-uuid/issue", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_UpdateAndDelete(t *testing.T) {
	s := newServer(t)
	draft := s.createDraft(t, 1)

	rec := s.do(t, http.MethodPatch, "/invoices/"+draft.ID.String(),
		`{"items":[{"product_id":"`+s.product.ID.String()+`","qty":3,"unit_price":500,"tax_rate":"10.5"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated := decode[invoiceBody](t, rec)
	assert.Equal(t, int64(1500), updated.Totals.Net)
	assert.Equal(t, int64(158), updated.Totals.Tax)
	assert.Equal(t, int64(1658), updated.Totals.Total)

	rec = s.do(t, http.MethodPatch, "/invoices/"+draft.ID.String(), `{"remove_client":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[invoiceBody](t, rec).Client)

	rec = s.do(t, http.MethodDelete, "/invoices/"+draft.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/invoices/"+draft.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_List(t *testing.T) {
	s := newServer(t)

	first := s.createDraft(t, 1)
	s.createDraft(t, 1)

	rec := s.do(t, http.MethodPost, "/invoices/"+first.ID.String()+"/issue", "")
	require.Equal(t, http.StatusOK, rec.Code)

	type testCase struct {
		name       string
		query      string
		wantStatus int
		wantLen    int
	}

	tests := []testCase{
		{name: "All", query: "", wantStatus: http.StatusOK, wantLen: 2},
		{name: "Issued", query: "?status=ISSUED", wantStatus: http.StatusOK, wantLen: 1},
		{name: "ByClient", query: "?client_id=" + s.clientID.String(), wantStatus: http.StatusOK, wantLen: 2},
		{name: "OtherClient", query: "?client_id=" + uuid.NewString(), wantStatus: http.StatusOK, wantLen: 0},
		{name: "BadStatus", query: "?status=PAID", wantStatus: http.StatusBadRequest},
		{name: "BadClientID", query: "?client_id=x", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/invoices/"+tt.query, "")
			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusOK {
				assert.Len(t, decode[[]invoiceBody](t, rec), tt.wantLen)
			}
		})
	}
}
