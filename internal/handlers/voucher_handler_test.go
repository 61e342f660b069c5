package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prestamos/vales-gateway/internal/model"
	"github.com/prestamos/vales-gateway/internal/repository"
	xhttp "github.com/prestamos/vales-gateway/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

type MockVoucherService struct {
	mock.Mock
}

func (m *MockVoucherService) Create(ctx context.Context, p model.VoucherCreateRequest) (*model.Voucher, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Voucher), args.Error(1)
}

func (m *MockVoucherService) List(ctx context.Context) ([]*model.Voucher, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Voucher), args.Error(1)
}

func (m *MockVoucherService) Search(ctx context.Context, f model.VoucherFilter) ([]*model.Voucher, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Voucher), args.Error(1)
}

func (m *MockVoucherService) Settle(ctx context.Context, voucherID, callerBranchID int64) error {
	args := m.Called(ctx, voucherID, callerBranchID)
	return args.Error(0)
}

func (m *MockVoucherService) ExportCSV(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	return ctx
}

func asCaller(ctx *xhttp.RequestCtx, branchID int64) {
	ctx.SetUserValue(identityKey, model.Identity{BranchID: branchID, Nombre: "Local 1", Usuario: "local1"})
}

func TestVoucherHandler_CreateVoucher(t *testing.T) {
	t.Run("successful creation uses caller as origin", func(t *testing.T) {
		svc := new(MockVoucherService)
		handler := NewVoucherHandler(svc)

		reqBody := createVoucherRequest{
			Fecha:              "2025-04-10",
			LocalDestinoID:     2,
			PersonaResponsable: "Juan Pérez",
			Items:              []string{"Caja de herramientas", "Taladro eléctrico"},
		}
		bodyBytes, _ := json.Marshal(reqBody)

		expected := &model.Voucher{
			ID:                  123,
			Fecha:               "2025-04-10",
			OriginBranchID:      1,
			DestinationBranchID: 2,
			Estado:              model.VoucherStatusPending,
			Items: []model.VoucherItem{
				{ID: 1, Descripcion: "Caja de herramientas"},
				{ID: 2, Descripcion: "Taladro eléctrico"},
			},
		}

		svc.On("Create", mock.Anything, mock.MatchedBy(func(p model.VoucherCreateRequest) bool {
			return p.OriginBranchID == 1 && p.DestinationBranchID == 2 && len(p.Items) == 2
		})).Return(expected, nil)

		ctx := setupTestContext("POST", "/api/vales", bodyBytes)
		asCaller(ctx, 1)
		handler.CreateVoucher(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())

		var response model.Voucher
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, int64(123), response.ID)
		assert.Equal(t, model.VoucherStatusPending, response.Estado)
		assert.Len(t, response.Items, 2)

		svc.AssertExpectations(t)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		svc := new(MockVoucherService)
		handler := NewVoucherHandler(svc)

		ctx := setupTestContext("POST", "/api/vales", []byte("no es json"))
		asCaller(ctx, 1)
		handler.CreateVoucher(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		svc := new(MockVoucherService)
		handler := NewVoucherHandler(svc)

		svc.On("Create", mock.Anything, mock.Anything).Return(nil, model.ErrValidation)

		bodyBytes, _ := json.Marshal(createVoucherRequest{})
		ctx := setupTestContext("POST", "/api/vales", bodyBytes)
		asCaller(ctx, 1)
		handler.CreateVoucher(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("missing identity is rejected", func(t *testing.T) {
		svc := new(MockVoucherService)
		handler := NewVoucherHandler(svc)

		bodyBytes, _ := json.Marshal(createVoucherRequest{})
		ctx := setupTestContext("POST", "/api/vales", bodyBytes)
		handler.CreateVoucher(ctx)

		assert.Equal(t, 401, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("storage failure is a generic 500", func(t *testing.T) {
		svc := new(MockVoucherService)
		handler := NewVoucherHandler(svc)

		svc.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("pq: connection refused"))

		bodyBytes, _ := json.Marshal(createVoucherRequest{Fecha: "2025-04-10"})
		ctx := setupTestContext("POST", "/api/vales", bodyBytes)
		asCaller(ctx, 1)
		handler.CreateVoucher(ctx)

		assert.Equal(t, 500, ctx.Response.StatusCode())

		var response map[string]string
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, "Error en el servidor", response["error"])
	})
}

func TestVoucherHandler_SearchVouchers(t *testing.T) {
	t.Run("query parameters map onto the filter", func(t *testing.T) {
		testSearchVouchersFilterMapping(t)
	})

	t.Run("malformed branch ids are rejected", func(t *testing.T) {
		for _, param := range []string{"localOrigen", "localDestino"} {
			svc := new(MockVoucherService)
			handler := NewVoucherHandler(svc)

			ctx := setupTestContext("GET", "/api/vales/buscar?"+param+"=abc", nil)
			asCaller(ctx, 1)
			handler.SearchVouchers(ctx)

			assert.Equal(t, 400, ctx.Response.StatusCode())
			svc.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
		}
	})
}

func testSearchVouchersFilterMapping(t *testing.T) {
	svc := new(MockVoucherService)
	handler := NewVoucherHandler(svc)

	svc.On("Search", mock.Anything, mock.MatchedBy(func(f model.VoucherFilter) bool {
		return f.FechaDesde != nil && *f.FechaDesde == "2025-04-01" &&
			f.FechaHasta != nil && *f.FechaHasta == "2025-04-30" &&
			f.OriginBranchID != nil && *f.OriginBranchID == 1 &&
			f.DestinationBranchID == nil &&
			f.Mercaderia != nil && *f.Mercaderia == "Taladro" &&
			f.Estado != nil && *f.Estado == model.VoucherStatusSettled
	})).Return([]*model.Voucher{{ID: 9}}, nil)

	ctx := setupTestContext("GET",
		"/api/vales/buscar?fechaDesde=2025-04-01&fechaHasta=2025-04-30&localOrigen=1&mercaderia=Taladro&estado=pagado", nil)
	asCaller(ctx, 1)
	handler.SearchVouchers(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())

	var response listVouchersResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
	require.Len(t, response.Vales, 1)
	assert.Equal(t, int64(9), response.Vales[0].ID)

	svc.AssertExpectations(t)
}

func TestVoucherHandler_SettleVoucher(t *testing.T) {
	t.Run("origin settles", func(t *testing.T) {
		svc := new(MockVoucherService)
		handler := NewVoucherHandler(svc)

		svc.On("Settle", mock.Anything, int64(5), int64(1)).Return(nil)

		ctx := setupTestContext("PUT", "/api/vales/5/pagar", nil)
		ctx.SetUserValue("id", "5")
		asCaller(ctx, 1)
		handler.SettleVoucher(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("foreign voucher is 403", func(t *testing.T) {
		svc := new(MockVoucherService)
		handler := NewVoucherHandler(svc)

		svc.On("Settle", mock.Anything, int64(5), int64(2)).Return(repository.ErrPermissionDenied)

		ctx := setupTestContext("PUT", "/api/vales/5/pagar", nil)
		ctx.SetUserValue("id", "5")
		asCaller(ctx, 2)
		handler.SettleVoucher(ctx)

		assert.Equal(t, 403, ctx.Response.StatusCode())
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		svc := new(MockVoucherService)
		handler := NewVoucherHandler(svc)

		ctx := setupTestContext("PUT", "/api/vales/abc/pagar", nil)
		ctx.SetUserValue("id", "abc")
		asCaller(ctx, 1)
		handler.SettleVoucher(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestVoucherHandler_ExportVouchers(t *testing.T) {
	svc := new(MockVoucherService)
	handler := NewVoucherHandler(svc)

	csv := []byte("ID,Fecha,Local Origen,Local Destino,Persona Responsable,Estado,Items\n" +
		`3,2025-04-10,Local 1,Local 2,Juan Pérez,pendiente,"A | B"` + "\n")
	svc.On("ExportCSV", mock.Anything).Return(csv, nil)

	ctx := setupTestContext("GET", "/api/vales/exportar", nil)
	asCaller(ctx, 1)
	handler.ExportVouchers(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	assert.Equal(t, "text/csv", string(ctx.Response.Header.Peek("Content-Type")))
	assert.Contains(t, string(ctx.Response.Header.Peek("Content-Disposition")), "vales.csv")
	assert.Equal(t, csv, ctx.Response.Body())
}
