package handlers

import (
	"context"

	"github.com/fasthttp/router"
	intauth "github.com/prestamos/vales-gateway/internal/auth"
	"github.com/prestamos/vales-gateway/internal/model"
	xhttp "github.com/prestamos/vales-gateway/pkg/http"
)

type AuthService interface {
	Login(ctx context.Context, usuario, password string) (string, *model.Identity, error)
	CurrentUser(ctx context.Context, branchID int64) (*model.Identity, error)
}

type AuthHandler struct {
	svc AuthService
}

func RegisterAuthRoutes(e *router.Group, h *AuthHandler, tokens *intauth.JWTManager) {
	e.POST("/auth/login", h.Login)
	e.GET("/auth/user", RequireAuth(tokens, h.CurrentUser))
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{
		svc: authService,
	}
}

type loginRequest struct {
	Usuario  string `json:"usuario"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string          `json:"token"`
	User  *model.Identity `json:"user"`
}

func (h *AuthHandler) Login(ctx *xhttp.RequestCtx) {
	var req loginRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "JSON inválido: "+err.Error())
		return
	}

	token, identity, err := h.svc.Login(ctx, req.Usuario, req.Password)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	writeJSON(ctx, 200, loginResponse{Token: token, User: identity})
}

func (h *AuthHandler) CurrentUser(ctx *xhttp.RequestCtx) {
	caller, ok := CallerIdentity(ctx)
	if !ok {
		writeError(ctx, xhttp.StatusUnauthorized, intauth.ErrMissingToken.Error())
		return
	}

	identity, err := h.svc.CurrentUser(ctx, caller.BranchID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, identity)
}
