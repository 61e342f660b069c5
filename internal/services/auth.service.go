package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prestamos/vales-gateway/internal/auth"
	"github.com/prestamos/vales-gateway/internal/model"
	"github.com/prestamos/vales-gateway/internal/repository"
	"github.com/prestamos/vales-gateway/pkg/prom"
)

type BranchRepository interface {
	Create(ctx context.Context, branch *model.Branch) (*model.Branch, error)
	FindByUsuario(ctx context.Context, usuario string) (*model.Branch, error)
	FindByID(ctx context.Context, id int64) (*model.Branch, error)
	List(ctx context.Context) ([]*model.Branch, error)
}

type AuthService struct {
	branchRepo BranchRepository
	tokens     *auth.JWTManager
}

func NewAuthService(branchRepo BranchRepository, tokens *auth.JWTManager) *AuthService {
	return &AuthService{
		branchRepo: branchRepo,
		tokens:     tokens,
	}
}

// Login verifies a branch credential and issues a bearer token. An unknown
// handle and a wrong password both come back as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, usuario, password string) (string, *model.Identity, error) {
	if strings.TrimSpace(usuario) == "" || password == "" {
		return "", nil, fmt.Errorf("%w: usuario y contraseña", model.ErrValidation)
	}

	branch, err := s.branchRepo.FindByUsuario(ctx, usuario)
	if err != nil {
		if errors.Is(err, repository.ErrBranchNotFound) {
			prom.IncCounter(prom.SystemVales, prom.MetricLoginFailures)
			return "", nil, auth.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := auth.VerifyPassword(password, branch.PasswordHash); err != nil {
		prom.IncCounter(prom.SystemVales, prom.MetricLoginFailures)
		return "", nil, err
	}

	token, err := s.tokens.Generate(branch)
	if err != nil {
		return "", nil, err
	}

	identity := model.Identity{
		BranchID: branch.ID,
		Nombre:   branch.Nombre,
		Usuario:  branch.Usuario,
	}
	return token, &identity, nil
}

// CurrentUser resolves the branch behind an authenticated session.
func (s *AuthService) CurrentUser(ctx context.Context, branchID int64) (*model.Identity, error) {
	branch, err := s.branchRepo.FindByID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	return &model.Identity{
		BranchID: branch.ID,
		Nombre:   branch.Nombre,
		Usuario:  branch.Usuario,
	}, nil
}
