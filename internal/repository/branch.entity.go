package repository

import (
	"time"

	"github.com/prestamos/vales-gateway/internal/model"
)

type BranchEntity struct {
	ID           int64     `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	Nombre       string    `db:"nombre"        gorm:"column:nombre;not null;uniqueIndex"`
	Usuario      string    `db:"usuario"       gorm:"column:usuario;not null;uniqueIndex"`
	PasswordHash string    `db:"password_hash" gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `db:"created_at"    gorm:"column:created_at;autoCreateTime"`
}

func (BranchEntity) TableName() string {
	return "branches"
}

func toBranchEntity(b *model.Branch) *BranchEntity {
	if b == nil {
		return nil
	}
	return &BranchEntity{
		ID:           b.ID,
		Nombre:       b.Nombre,
		Usuario:      b.Usuario,
		PasswordHash: b.PasswordHash,
		CreatedAt:    b.CreatedAt,
	}
}

func toBranchModel(e *BranchEntity) *model.Branch {
	if e == nil {
		return nil
	}
	return &model.Branch{
		ID:           e.ID,
		Nombre:       e.Nombre,
		Usuario:      e.Usuario,
		PasswordHash: e.PasswordHash,
		CreatedAt:    e.CreatedAt,
	}
}

func toBranchModels(entities []*BranchEntity) []*model.Branch {
	if entities == nil {
		return nil
	}
	models := make([]*model.Branch, len(entities))
	for i, e := range entities {
		models[i] = toBranchModel(e)
	}
	return models
}
