package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/fasthttp/router"
	intauth "github.com/prestamos/vales-gateway/internal/auth"
	"github.com/prestamos/vales-gateway/internal/model"
	"github.com/prestamos/vales-gateway/internal/repository"
	xhttp "github.com/prestamos/vales-gateway/pkg/http"
	"github.com/prestamos/vales-gateway/pkg/logger"
)

type VoucherService interface {
	Create(ctx context.Context, p model.VoucherCreateRequest) (*model.Voucher, error)
	List(ctx context.Context) ([]*model.Voucher, error)
	Search(ctx context.Context, f model.VoucherFilter) ([]*model.Voucher, error)
	Settle(ctx context.Context, voucherID, callerBranchID int64) error
	ExportCSV(ctx context.Context) ([]byte, error)
}

type VoucherHandler struct {
	svc VoucherService
}

func RegisterVoucherRoutes(e *router.Group, h *VoucherHandler, tokens *intauth.JWTManager) {
	e.POST("/vales", RequireAuth(tokens, h.CreateVoucher))
	e.GET("/vales", RequireAuth(tokens, h.ListVouchers))
	e.GET("/vales/buscar", RequireAuth(tokens, h.SearchVouchers))
	e.GET("/vales/exportar", RequireAuth(tokens, h.ExportVouchers))
	e.PUT("/vales/{id}/pagar", RequireAuth(tokens, h.SettleVoucher))
}

func NewVoucherHandler(voucherService VoucherService) *VoucherHandler {
	return &VoucherHandler{
		svc: voucherService,
	}
}

type createVoucherRequest struct {
	Fecha              string   `json:"fecha"`
	LocalDestinoID     int64    `json:"local_destino_id"`
	PersonaResponsable string   `json:"persona_responsable"`
	Items              []string `json:"items"`
}

type listVouchersResponse struct {
	Vales []*model.Voucher `json:"vales"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *VoucherHandler) CreateVoucher(ctx *xhttp.RequestCtx) {
	caller, ok := CallerIdentity(ctx)
	if !ok {
		writeError(ctx, xhttp.StatusUnauthorized, intauth.ErrMissingToken.Error())
		return
	}

	var req createVoucherRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "JSON inválido: "+err.Error())
		return
	}

	p := model.VoucherCreateRequest{
		Fecha: req.Fecha,
		// the branch creating the vale is always the origin
		OriginBranchID:      caller.BranchID,
		DestinationBranchID: req.LocalDestinoID,
		ResponsiblePerson:   req.PersonaResponsable,
		Items:               req.Items,
	}

	voucher, err := h.svc.Create(ctx, p)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, voucher)
}

func (h *VoucherHandler) ListVouchers(ctx *xhttp.RequestCtx) {
	vouchers, err := h.svc.List(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, listVouchersResponse{Vales: vouchers})
}

func (h *VoucherHandler) SearchVouchers(ctx *xhttp.RequestCtx) {
	var f model.VoucherFilter

	if v := query(ctx, "fechaDesde"); v != "" {
		f.FechaDesde = &v
	}
	if v := query(ctx, "fechaHasta"); v != "" {
		f.FechaHasta = &v
	}
	if v := query(ctx, "localOrigen"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(ctx, xhttp.StatusBadRequest, "localOrigen inválido")
			return
		}
		f.OriginBranchID = &id
	}
	if v := query(ctx, "localDestino"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(ctx, xhttp.StatusBadRequest, "localDestino inválido")
			return
		}
		f.DestinationBranchID = &id
	}
	if v := query(ctx, "mercaderia"); v != "" {
		f.Mercaderia = &v
	}
	if v := query(ctx, "estado"); v != "" {
		estado := model.VoucherStatus(v)
		f.Estado = &estado
	}

	vouchers, err := h.svc.Search(ctx, f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, listVouchersResponse{Vales: vouchers})
}

func (h *VoucherHandler) SettleVoucher(ctx *xhttp.RequestCtx) {
	caller, ok := CallerIdentity(ctx)
	if !ok {
		writeError(ctx, xhttp.StatusUnauthorized, intauth.ErrMissingToken.Error())
		return
	}

	voucherID, err := paramInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "id de vale inválido")
		return
	}

	if err := h.svc.Settle(ctx, voucherID, caller.BranchID); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, map[string]string{"message": "Vale marcado como pagado"})
}

func (h *VoucherHandler) ExportVouchers(ctx *xhttp.RequestCtx) {
	csv, err := h.svc.ExportCSV(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Response.Header.Set("Content-Type", "text/csv")
	ctx.Response.Header.Set("Content-Disposition", "attachment; filename=vales.csv")
	ctx.Response.SetStatusCode(200)
	ctx.Response.SetBodyRaw(csv)
}

/* -------------------------------- Helpers ------------------------------------ */

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

// writeServiceError maps the error taxonomy onto HTTP statuses. Unexpected
// storage failures surface as a generic message without internal detail.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
	case errors.Is(err, intauth.ErrInvalidCredentials):
		writeError(ctx, xhttp.StatusUnauthorized, err.Error())
	case errors.Is(err, repository.ErrPermissionDenied):
		writeError(ctx, xhttp.StatusForbidden, err.Error())
	case errors.Is(err, repository.ErrBranchNotFound):
		writeError(ctx, xhttp.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrBranchConflict):
		writeError(ctx, xhttp.StatusConflict, err.Error())
	default:
		logger.Error("unexpected service error", "error", err)
		writeError(ctx, xhttp.StatusInternalServerError, "Error en el servidor")
	}
}

func paramInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	v, _ := ctx.UserValue(name).(string)
	return strconv.ParseInt(v, 10, 64)
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}
