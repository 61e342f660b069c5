package repository

import (
	"context"
	"errors"

	"github.com/prestamos/vales-gateway/internal/model"
	"github.com/prestamos/vales-gateway/pkg/pg"
	"gorm.io/gorm"
)

var (
	// ErrBranchNotFound is returned when a branch does not exist.
	ErrBranchNotFound = errors.New("local no encontrado")
	// ErrBranchConflict is returned when nombre or usuario is already taken.
	ErrBranchConflict = errors.New("el local ya existe")
)

type BranchRepository struct {
	*pg.DB
}

func NewBranchRepository(db *pg.DB) *BranchRepository {
	return &BranchRepository{
		db,
	}
}

// Create inserts a branch row. The password hash must already be derived;
// plaintext never reaches this layer.
func (r *BranchRepository) Create(ctx context.Context, branch *model.Branch) (*model.Branch, error) {
	entity := toBranchEntity(branch)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrBranchConflict
		}
		return nil, err
	}

	return toBranchModel(entity), nil
}

// FindByUsuario looks a branch up by its login handle. The returned model
// includes the password hash; it is for credential checks only.
func (r *BranchRepository) FindByUsuario(ctx context.Context, usuario string) (*model.Branch, error) {
	var entity BranchEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("usuario = ?", usuario).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBranchNotFound
		}
		return nil, err
	}
	return toBranchModel(&entity), nil
}

func (r *BranchRepository) FindByID(ctx context.Context, id int64) (*model.Branch, error) {
	var entity BranchEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBranchNotFound
		}
		return nil, err
	}
	return toBranchModel(&entity), nil
}

// List returns every branch ordered by id.
func (r *BranchRepository) List(ctx context.Context) ([]*model.Branch, error) {
	var entities []*BranchEntity
	if err := r.Read(ctx).WithContext(ctx).Order("id").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toBranchModels(entities), nil
}

// Count reports how many branches exist. The seeder uses it to keep the
// bootstrap idempotent.
func (r *BranchRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.Read(ctx).WithContext(ctx).Model(&BranchEntity{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
