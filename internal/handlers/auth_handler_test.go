package handlers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	intauth "github.com/prestamos/vales-gateway/internal/auth"
	"github.com/prestamos/vales-gateway/internal/model"
	xhttp "github.com/prestamos/vales-gateway/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, usuario, password string) (string, *model.Identity, error) {
	args := m.Called(ctx, usuario, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*model.Identity), args.Error(2)
}

func (m *MockAuthService) CurrentUser(ctx context.Context, branchID int64) (*model.Identity, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Identity), args.Error(1)
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("valid credentials return token and user", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := NewAuthHandler(svc)

		identity := &model.Identity{BranchID: 1, Nombre: "Local 1", Usuario: "local1"}
		svc.On("Login", mock.Anything, "local1", "local1").Return("token-firmado", identity, nil)

		body, _ := json.Marshal(loginRequest{Usuario: "local1", Password: "local1"})
		ctx := setupTestContext("POST", "/api/auth/login", body)
		handler.Login(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var response loginResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, "token-firmado", response.Token)
		require.NotNil(t, response.User)
		assert.Equal(t, int64(1), response.User.BranchID)

		svc.AssertExpectations(t)
	})

	t.Run("wrong password is 401", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := NewAuthHandler(svc)

		svc.On("Login", mock.Anything, "local1", "mal").Return("", nil, intauth.ErrInvalidCredentials)

		body, _ := json.Marshal(loginRequest{Usuario: "local1", Password: "mal"})
		ctx := setupTestContext("POST", "/api/auth/login", body)
		handler.Login(ctx)

		assert.Equal(t, 401, ctx.Response.StatusCode())
	})

	t.Run("missing fields map to 400", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := NewAuthHandler(svc)

		svc.On("Login", mock.Anything, "", "").Return("", nil, model.ErrValidation)

		body, _ := json.Marshal(loginRequest{})
		ctx := setupTestContext("POST", "/api/auth/login", body)
		handler.Login(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestRequireAuth(t *testing.T) {
	tokens := intauth.NewJWTManager("clave-de-prueba", time.Hour)
	branch := &model.Branch{ID: 4, Nombre: "Local 4", Usuario: "local4"}

	next := func(ctx *xhttp.RequestCtx) {
		identity, ok := CallerIdentity(ctx)
		require.True(t, ok)
		assert.Equal(t, int64(4), identity.BranchID)
		ctx.Response.SetStatusCode(200)
	}

	t.Run("bearer header", func(t *testing.T) {
		token, err := tokens.Generate(branch)
		require.NoError(t, err)

		ctx := setupTestContext("GET", "/api/vales", nil)
		ctx.Request.Header.Set("Authorization", "Bearer "+token)
		RequireAuth(tokens, next)(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
	})

	t.Run("legacy X-Auth-Token header", func(t *testing.T) {
		token, err := tokens.Generate(branch)
		require.NoError(t, err)

		ctx := setupTestContext("GET", "/api/vales", nil)
		ctx.Request.Header.Set("X-Auth-Token", token)
		RequireAuth(tokens, next)(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
	})

	t.Run("missing token is 401", func(t *testing.T) {
		called := false
		ctx := setupTestContext("GET", "/api/vales", nil)
		RequireAuth(tokens, func(ctx *xhttp.RequestCtx) { called = true })(ctx)

		assert.Equal(t, 401, ctx.Response.StatusCode())
		assert.False(t, called)
	})

	t.Run("token signed with another key is 401", func(t *testing.T) {
		foreign := intauth.NewJWTManager("otra-clave", time.Hour)
		token, err := foreign.Generate(branch)
		require.NoError(t, err)

		ctx := setupTestContext("GET", "/api/vales", nil)
		ctx.Request.Header.Set("Authorization", "Bearer "+token)
		RequireAuth(tokens, func(ctx *xhttp.RequestCtx) {})(ctx)

		assert.Equal(t, 401, ctx.Response.StatusCode())
	})
}

func TestAuthHandler_CurrentUser(t *testing.T) {
	svc := new(MockAuthService)
	handler := NewAuthHandler(svc)

	identity := &model.Identity{BranchID: 2, Nombre: "Local 2", Usuario: "local2"}
	svc.On("CurrentUser", mock.Anything, int64(2)).Return(identity, nil)

	ctx := setupTestContext("GET", "/api/auth/user", nil)
	asCaller(ctx, 2)
	handler.CurrentUser(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())

	var response model.Identity
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
	assert.Equal(t, "local2", response.Usuario)
}
