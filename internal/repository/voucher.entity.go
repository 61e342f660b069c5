package repository

import (
	"time"

	"github.com/prestamos/vales-gateway/internal/model"
)

type VoucherEntity struct {
	ID                  int64                `db:"id"                    gorm:"primaryKey;autoIncrement;column:id"`
	Fecha               string               `db:"fecha"                 gorm:"column:fecha;not null;index"`
	OriginBranchID      int64                `db:"origin_branch_id"      gorm:"column:origin_branch_id;not null;index"`
	DestinationBranchID int64                `db:"destination_branch_id" gorm:"column:destination_branch_id;not null;index"`
	ResponsiblePerson   string               `db:"responsible_person"    gorm:"column:responsible_person;not null"`
	Estado              string               `db:"estado"                gorm:"column:estado;not null;default:pendiente"`
	CreatedAt           time.Time            `db:"created_at"            gorm:"column:created_at;autoCreateTime"`
	Items               []*VoucherItemEntity `gorm:"foreignKey:VoucherID;constraint:OnDelete:CASCADE"`
}

func (VoucherEntity) TableName() string {
	return "vouchers"
}

type VoucherItemEntity struct {
	ID          int64  `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	VoucherID   int64  `db:"voucher_id"  gorm:"column:voucher_id;not null;index"`
	Descripcion string `db:"descripcion" gorm:"column:descripcion;not null"`
}

func (VoucherItemEntity) TableName() string {
	return "voucher_items"
}

// voucherRowEntity is the shape of one row of the listing join: a voucher
// with its origin/destination branch names resolved. Items are fetched
// separately.
type voucherRowEntity struct {
	ID                    int64     `gorm:"column:id"`
	Fecha                 string    `gorm:"column:fecha"`
	OriginBranchID        int64     `gorm:"column:origin_branch_id"`
	OriginBranchName      string    `gorm:"column:origin_branch_name"`
	DestinationBranchID   int64     `gorm:"column:destination_branch_id"`
	DestinationBranchName string    `gorm:"column:destination_branch_name"`
	ResponsiblePerson     string    `gorm:"column:responsible_person"`
	Estado                string    `gorm:"column:estado"`
	CreatedAt             time.Time `gorm:"column:created_at"`
}

func toVoucherEntity(v *model.Voucher) *VoucherEntity {
	if v == nil {
		return nil
	}
	return &VoucherEntity{
		ID:                  v.ID,
		Fecha:               v.Fecha,
		OriginBranchID:      v.OriginBranchID,
		DestinationBranchID: v.DestinationBranchID,
		ResponsiblePerson:   v.ResponsiblePerson,
		Estado:              string(v.Estado),
		CreatedAt:           v.CreatedAt,
	}
}

func toVoucherModel(e *VoucherEntity) *model.Voucher {
	if e == nil {
		return nil
	}
	return &model.Voucher{
		ID:                  e.ID,
		Fecha:               e.Fecha,
		OriginBranchID:      e.OriginBranchID,
		DestinationBranchID: e.DestinationBranchID,
		ResponsiblePerson:   e.ResponsiblePerson,
		Estado:              model.VoucherStatus(e.Estado),
		CreatedAt:           e.CreatedAt,
	}
}

func toVoucherItemModel(e *VoucherItemEntity) model.VoucherItem {
	return model.VoucherItem{
		ID:          e.ID,
		VoucherID:   e.VoucherID,
		Descripcion: e.Descripcion,
	}
}

func toVoucherItemModels(entities []*VoucherItemEntity) []model.VoucherItem {
	items := make([]model.VoucherItem, len(entities))
	for i, e := range entities {
		items[i] = toVoucherItemModel(e)
	}
	return items
}

func (r voucherRowEntity) toModel() *model.Voucher {
	return &model.Voucher{
		ID:                    r.ID,
		Fecha:                 r.Fecha,
		OriginBranchID:        r.OriginBranchID,
		OriginBranchName:      r.OriginBranchName,
		DestinationBranchID:   r.DestinationBranchID,
		DestinationBranchName: r.DestinationBranchName,
		ResponsiblePerson:     r.ResponsiblePerson,
		Estado:                model.VoucherStatus(r.Estado),
		CreatedAt:             r.CreatedAt,
	}
}
