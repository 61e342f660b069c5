package handlers

import (
	"context"

	"github.com/fasthttp/router"
	intauth "github.com/prestamos/vales-gateway/internal/auth"
	"github.com/prestamos/vales-gateway/internal/model"
	xhttp "github.com/prestamos/vales-gateway/pkg/http"
)

type BranchService interface {
	List(ctx context.Context) ([]*model.Branch, error)
	Get(ctx context.Context, id int64) (*model.Branch, error)
}

type BranchHandler struct {
	svc BranchService
}

func RegisterBranchRoutes(e *router.Group, h *BranchHandler, tokens *intauth.JWTManager) {
	e.GET("/locales", RequireAuth(tokens, h.ListBranches))
	e.GET("/locales/{id}", RequireAuth(tokens, h.GetBranch))
}

func NewBranchHandler(branchService BranchService) *BranchHandler {
	return &BranchHandler{
		svc: branchService,
	}
}

type listBranchesResponse struct {
	Locales []*model.Branch `json:"locales"`
}

func (h *BranchHandler) ListBranches(ctx *xhttp.RequestCtx) {
	branches, err := h.svc.List(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, listBranchesResponse{Locales: branches})
}

func (h *BranchHandler) GetBranch(ctx *xhttp.RequestCtx) {
	id, err := paramInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "id de local inválido")
		return
	}

	branch, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, branch)
}
