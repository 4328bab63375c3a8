package stock_test

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/facturador/internal/memstore"
	"github.com/MrJamesThe3rd/facturador/internal/stock"
	"github.com/MrJamesThe3rd/facturador/internal/validation"
)

const tenant = "tenant-1"

func passthroughTx(ctrl *gomock.Controller) *stock.MockTransactor {
	tx := stock.NewMockTransactor(ctrl)
	tx.EXPECT().
		WithinTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).
		AnyTimes()

	return tx
}

func TestService_CreateProduct(t *testing.T) {
	type testCase struct {
		name      string
		params    stock.CreateParams
		setupMock func(m *stock.MockRepository)
		wantErrIs error
	}

	tests := []testCase{
		{
			name:   "Success",
			params: stock.CreateParams{SKU: " A-1 ", Name: "Yerba", Price: 250000, Stock: 12, MinStock: 2},
			setupMock: func(m *stock.MockRepository) {
				m.EXPECT().
					CreateProduct(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *stock.Product) error {
						assert.Equal(t, "A-1", p.SKU)
						assert.Equal(t, tenant, p.TenantID)
						p.ID = uuid.New()
						return nil
					})
				m.EXPECT().
					CreateMovement(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, mv *stock.Movement) error {
						assert.Equal(t, stock.MovementCreation, mv.Type)
						assert.Equal(t, int64(12), mv.Change)
						assert.Equal(t, int64(12), mv.NewStock)
						return nil
					})
			},
		},
		{
			name:      "MissingSKU",
			params:    stock.CreateParams{Name: "Yerba"},
			wantErrIs: validation.ErrInvalid,
		},
		{
			name:      "NegativeStock",
			params:    stock.CreateParams{SKU: "A-1", Name: "Yerba", Stock: -1},
			wantErrIs: validation.ErrInvalid,
		},
		{
			name:   "DuplicateSKU",
			params: stock.CreateParams{SKU: "A-1", Name: "Yerba"},
			setupMock: func(m *stock.MockRepository) {
				m.EXPECT().CreateProduct(gomock.Any(), gomock.Any()).Return(stock.ErrDuplicateSKU)
			},
			wantErrIs: stock.ErrDuplicateSKU,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			repo := stock.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := stock.NewService(repo, passthroughTx(ctrl))

			got, err := svc.CreateProduct(context.Background(), tenant, tt.params)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func TestService_Adjust(t *testing.T) {
	productID := uuid.New()

	product := func(qty int64) *stock.Product {
		return &stock.Product{ID: productID, TenantID: tenant, SKU: "A-1", Name: "Yerba", Stock: qty}
	}

	type testCase struct {
		name      string
		params    stock.AdjustParams
		setupMock func(m *stock.MockRepository)
		wantStock int64
		wantErrIs error
		wantErr   bool
	}

	tests := []testCase{
		{
			name:   "Sale",
			params: stock.AdjustParams{ProductID: productID, Delta: -3, Type: stock.MovementSale, Note: "Sale - Invoice 0001-00000001"},
			setupMock: func(m *stock.MockRepository) {
				m.EXPECT().GetProductForUpdate(gomock.Any(), tenant, productID).Return(product(10), nil)
				m.EXPECT().
					UpdateProduct(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *stock.Product) error {
						assert.Equal(t, int64(7), p.Stock)
						return nil
					})
				m.EXPECT().CreateMovement(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantStock: 7,
		},
		{
			name:   "Purchase",
			params: stock.AdjustParams{ProductID: productID, Delta: 5, Type: stock.MovementPurchase},
			setupMock: func(m *stock.MockRepository) {
				m.EXPECT().GetProductForUpdate(gomock.Any(), tenant, productID).Return(product(0), nil)
				m.EXPECT().UpdateProduct(gomock.Any(), gomock.Any()).Return(nil)
				m.EXPECT().CreateMovement(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantStock: 5,
		},
		{
			name:   "Insufficient",
			params: stock.AdjustParams{ProductID: productID, Delta: -3, Type: stock.MovementSale},
			setupMock: func(m *stock.MockRepository) {
				m.EXPECT().GetProductForUpdate(gomock.Any(), tenant, productID).Return(product(1), nil)
			},
			wantErr:   true,
			wantErrIs: stock.ErrInsufficientStock,
		},
		{
			name:   "ProductNotFound",
			params: stock.AdjustParams{ProductID: productID, Delta: -1, Type: stock.MovementSale},
			setupMock: func(m *stock.MockRepository) {
				m.EXPECT().GetProductForUpdate(gomock.Any(), tenant, productID).Return(nil, stock.ErrProductNotFound)
			},
			wantErr:   true,
			wantErrIs: stock.ErrProductNotFound,
		},
		{
			name:   "StockOverflow",
			params: stock.AdjustParams{ProductID: productID, Delta: math.MaxInt64, Type: stock.MovementPurchase},
			setupMock: func(m *stock.MockRepository) {
				m.EXPECT().GetProductForUpdate(gomock.Any(), tenant, productID).Return(product(1), nil)
			},
			wantErr:   true,
			wantErrIs: validation.ErrInvalid,
		},
		{
			name:      "ZeroDelta",
			params:    stock.AdjustParams{ProductID: productID, Type: stock.MovementSale},
			wantErr:   true,
			wantErrIs: validation.ErrInvalid,
		},
		{
			name:      "CreationTypeNotAllowed",
			params:    stock.AdjustParams{ProductID: productID, Delta: 1, Type: stock.MovementCreation},
			wantErr:   true,
			wantErrIs: validation.ErrInvalid,
		},
		{
			name:   "MovementWriteFails",
			params: stock.AdjustParams{ProductID: productID, Delta: -1, Type: stock.MovementSale},
			setupMock: func(m *stock.MockRepository) {
				m.EXPECT().GetProductForUpdate(gomock.Any(), tenant, productID).Return(product(4), nil)
				m.EXPECT().UpdateProduct(gomock.Any(), gomock.Any()).Return(nil)
				m.EXPECT().CreateMovement(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			repo := stock.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := stock.NewService(repo, passthroughTx(ctrl))

			mv, err := svc.Adjust(context.Background(), tenant, tt.params)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, mv)

				if tt.wantErrIs != nil {
					assert.ErrorIs(t, err, tt.wantErrIs)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.params.Type, mv.Type)
			assert.Equal(t, tt.params.Delta, mv.Change)
			assert.Equal(t, tt.wantStock, mv.NewStock)
			assert.Equal(t, tt.params.Note, mv.Note)
		})
	}
}

func TestService_Adjust_InsufficientStockDetail(t *testing.T) {
	db := memstore.New()
	svc := stock.NewService(db.Products(), db)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, tenant, stock.CreateParams{SKU: "B-1", Name: "Mate", Stock: 1})
	require.NoError(t, err)

	_, err = svc.Adjust(ctx, tenant, stock.AdjustParams{ProductID: p.ID, Delta: -3, Type: stock.MovementSale})

	var insufficient *stock.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, p.ID, insufficient.ProductID)
	assert.Equal(t, "Mate", insufficient.Name)
	assert.Equal(t, int64(3), insufficient.Requested)
	assert.Equal(t, int64(1), insufficient.Available)
	assert.Equal(t, int64(2), insufficient.Shortfall())

	got, err := svc.GetProduct(ctx, tenant, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Stock)

	history, err := svc.History(ctx, tenant, stock.MovementFilter{ProductID: &p.ID})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, stock.MovementCreation, history[0].Type)
}

func TestService_Adjust_NeverNegativeUnderConcurrency(t *testing.T) {
	db := memstore.New()
	svc := stock.NewService(db.Products(), db)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, tenant, stock.CreateParams{SKU: "C-1", Name: "Azucar", Stock: 10})
	require.NoError(t, err)

	const workers = 30

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		succeeded    int
		insufficient int
	)

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := svc.Adjust(ctx, tenant, stock.AdjustParams{ProductID: p.ID, Delta: -1, Type: stock.MovementSale})

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, stock.ErrInsufficientStock):
				insufficient++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, workers-10, insufficient)

	got, err := svc.GetProduct(ctx, tenant, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Stock)

	sale := stock.MovementSale
	sales, err := svc.History(ctx, tenant, stock.MovementFilter{ProductID: &p.ID, Type: &sale})
	require.NoError(t, err)
	require.Len(t, sales, 10)

	newStocks := make([]int, 0, len(sales))
	for _, mv := range sales {
		assert.Equal(t, int64(-1), mv.Change)
		newStocks = append(newStocks, int(mv.NewStock))
	}

	sort.Ints(newStocks)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, newStocks)
}

func TestService_Adjust_RejectedSequenceKeepsStock(t *testing.T) {
	db := memstore.New()
	svc := stock.NewService(db.Products(), db)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, tenant, stock.CreateParams{SKU: "D-1", Name: "Harina", Stock: 5})
	require.NoError(t, err)

	deltas := []int64{-2, -4, +1, -5, -4, +10, -11}
	want := int64(5)

	for _, d := range deltas {
		_, err := svc.Adjust(ctx, tenant, stock.AdjustParams{ProductID: p.ID, Delta: d, Type: stock.MovementManualAdjustment})

		if want+d < 0 {
			assert.ErrorIs(t, err, stock.ErrInsufficientStock)
		} else {
			require.NoError(t, err)
			want += d
		}

		got, err := svc.GetProduct(ctx, tenant, p.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got.Stock)
		assert.GreaterOrEqual(t, got.Stock, int64(0))
	}
}

func TestService_UpdateProduct(t *testing.T) {
	db := memstore.New()
	svc := stock.NewService(db.Products(), db)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, tenant, stock.CreateParams{SKU: "E-1", Name: "Aceite", Stock: 4, MinStock: 1})
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, tenant, p.ID, stock.UpdateParams{Name: new("Aceite de girasol")})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(ctx, tenant, p.ID, stock.UpdateParams{Stock: new(int64(9))})
	require.NoError(t, err)
	assert.Equal(t, int64(9), updated.Stock)
	assert.Equal(t, "Aceite de girasol", updated.Name)

	_, err = svc.UpdateProduct(ctx, tenant, p.ID, stock.UpdateParams{Stock: new(int64(-1))})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	history, err := svc.History(ctx, tenant, stock.MovementFilter{ProductID: &p.ID})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, stock.MovementManualAdjustment, history[0].Type)
	assert.Equal(t, int64(5), history[0].Change)
	assert.Equal(t, int64(9), history[0].NewStock)
}

func TestService_DeleteProduct(t *testing.T) {
	db := memstore.New()
	svc := stock.NewService(db.Products(), db)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, tenant, stock.CreateParams{SKU: "F-1", Name: "Fideos", Stock: 6})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, tenant, p.ID))

	_, err = svc.GetProduct(ctx, tenant, p.ID)
	assert.ErrorIs(t, err, stock.ErrProductNotFound)

	history, err := svc.History(ctx, tenant, stock.MovementFilter{ProductID: &p.ID})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, stock.MovementDeletion, history[0].Type)
	assert.Equal(t, int64(-6), history[0].Change)
	assert.Equal(t, int64(0), history[0].NewStock)

	assert.ErrorIs(t, svc.DeleteProduct(ctx, tenant, p.ID), stock.ErrProductNotFound)
}

func TestService_LowStock(t *testing.T) {
	db := memstore.New()
	svc := stock.NewService(db.Products(), db)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, tenant, stock.CreateParams{SKU: "G-1", Name: "Low", Stock: 1, MinStock: 2})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, tenant, stock.CreateParams{SKU: "G-2", Name: "Edge", Stock: 2, MinStock: 2})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, tenant, stock.CreateParams{SKU: "G-3", Name: "Plenty", Stock: 20, MinStock: 2})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, "tenant-2", stock.CreateParams{SKU: "G-1", Name: "Other tenant", Stock: 0})
	require.NoError(t, err)

	low, err := svc.LowStock(ctx, tenant)
	require.NoError(t, err)

	names := make([]string, 0, len(low))
	for _, p := range low {
		names = append(names, p.Name)
	}

	assert.ElementsMatch(t, []string{"Low", "Edge"}, names)
}
