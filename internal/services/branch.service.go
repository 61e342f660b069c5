package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/prestamos/vales-gateway/internal/auth"
	"github.com/prestamos/vales-gateway/internal/model"
)

type BranchService struct {
	branchRepo BranchRepository
}

func NewBranchService(branchRepo BranchRepository) *BranchService {
	return &BranchService{
		branchRepo: branchRepo,
	}
}

// List returns every branch with the password hash scrubbed.
func (s *BranchService) List(ctx context.Context) ([]*model.Branch, error) {
	branches, err := s.branchRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range branches {
		b.PasswordHash = ""
	}
	return branches, nil
}

// Get returns one branch with the password hash scrubbed.
func (s *BranchService) Get(ctx context.Context, id int64) (*model.Branch, error) {
	branch, err := s.branchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	branch.PasswordHash = ""
	return branch, nil
}

// Register hashes the plaintext credential and creates the branch account.
// Used by the bootstrap seeder; there is no self-service signup.
func (s *BranchService) Register(ctx context.Context, nombre, usuario, password string) (*model.Branch, error) {
	if strings.TrimSpace(nombre) == "" || strings.TrimSpace(usuario) == "" || password == "" {
		return nil, fmt.Errorf("%w: nombre, usuario y contraseña", model.ErrValidation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	branch, err := s.branchRepo.Create(ctx, &model.Branch{
		Nombre:       strings.TrimSpace(nombre),
		Usuario:      strings.TrimSpace(usuario),
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	branch.PasswordHash = ""
	return branch, nil
}
