package repository

import (
	"context"
	"errors"

	"github.com/prestamos/vales-gateway/internal/model"
	"github.com/prestamos/vales-gateway/pkg/pg"
	"gorm.io/gorm"
)

// ErrPermissionDenied covers both "voucher does not exist" and "caller is
// not the origin branch". The two causes are deliberately not
// distinguishable from the outside.
var ErrPermissionDenied = errors.New("no tienes permiso para modificar este vale o el vale no existe")

const voucherListSelect = `
	v.id,
	v.fecha,
	v.responsible_person,
	v.estado,
	v.created_at,
	v.origin_branch_id,
	origen.nombre  AS origin_branch_name,
	v.destination_branch_id,
	destino.nombre AS destination_branch_name`

const voucherListGroup = `
	v.id,
	v.fecha,
	v.responsible_person,
	v.estado,
	v.created_at,
	v.origin_branch_id,
	origen.nombre,
	v.destination_branch_id,
	destino.nombre`

type VoucherRepository struct {
	*pg.DB
}

func NewVoucherRepository(db *pg.DB) *VoucherRepository {
	return &VoucherRepository{
		db,
	}
}

// Create inserts one voucher row. It writes through the context-scoped
// transaction when one is open, so the service can make the voucher and its
// items a single atomic unit.
func (r *VoucherRepository) Create(ctx context.Context, v *model.Voucher) (*model.Voucher, error) {
	entity := toVoucherEntity(v)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toVoucherModel(entity), nil
}

// CreateItem inserts one merchandise line for an existing voucher.
func (r *VoucherRepository) CreateItem(ctx context.Context, item *model.VoucherItem) (*model.VoucherItem, error) {
	entity := &VoucherItemEntity{
		VoucherID:   item.VoucherID,
		Descripcion: item.Descripcion,
	}

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	m := toVoucherItemModel(entity)
	return &m, nil
}

// Search returns vouchers joined with their branch names, newest issue date
// first, honoring whichever filter predicates are set. The item-substring
// predicate joins voucher_items one-to-many, so rows are grouped by voucher
// id to keep the result free of duplicates; each returned voucher then gets
// its complete item list regardless of which items matched.
func (r *VoucherRepository) Search(ctx context.Context, f model.VoucherFilter) ([]*model.Voucher, error) {
	q := r.Read(ctx).WithContext(ctx).
		Table("vouchers AS v").
		Select(voucherListSelect).
		Joins("JOIN branches AS origen ON v.origin_branch_id = origen.id").
		Joins("JOIN branches AS destino ON v.destination_branch_id = destino.id")

	if f.FechaDesde != nil {
		q = q.Where("v.fecha >= ?", *f.FechaDesde)
	}
	if f.FechaHasta != nil {
		q = q.Where("v.fecha <= ?", *f.FechaHasta)
	}
	if f.OriginBranchID != nil {
		q = q.Where("v.origin_branch_id = ?", *f.OriginBranchID)
	}
	if f.DestinationBranchID != nil {
		q = q.Where("v.destination_branch_id = ?", *f.DestinationBranchID)
	}
	if f.Mercaderia != nil && *f.Mercaderia != "" {
		q = q.Joins("LEFT JOIN voucher_items AS vi ON vi.voucher_id = v.id").
			Where("vi.descripcion LIKE ?", "%"+*f.Mercaderia+"%")
	}
	if f.Estado != nil {
		q = q.Where("v.estado = ?", string(*f.Estado))
	}

	var rows []*voucherRowEntity
	err := q.Group(voucherListGroup).
		Order("v.fecha DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	vouchers := make([]*model.Voucher, len(rows))
	for i, row := range rows {
		v := row.toModel()
		items, err := r.ItemsByVoucherID(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		v.Items = items
		vouchers[i] = v
	}
	return vouchers, nil
}

// List returns every voucher, newest issue date first.
func (r *VoucherRepository) List(ctx context.Context) ([]*model.Voucher, error) {
	return r.Search(ctx, model.VoucherFilter{})
}

// ItemsByVoucherID fetches the merchandise lines of one voucher in insertion
// order.
func (r *VoucherRepository) ItemsByVoucherID(ctx context.Context, voucherID int64) ([]model.VoucherItem, error) {
	var entities []*VoucherItemEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("voucher_id = ?", voucherID).
		Order("id").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toVoucherItemModels(entities), nil
}

// Settle marks a voucher as pagado. The update is keyed on both the voucher
// id and the origin branch, so an absent voucher and a foreign voucher fail
// the same way. There is no pending-state precondition: settling an
// already-settled voucher is an idempotent no-op that succeeds again.
func (r *VoucherRepository) Settle(ctx context.Context, voucherID, originBranchID int64) error {
	res := r.Write(ctx).WithContext(ctx).
		Model(&VoucherEntity{}).
		Where("id = ? AND origin_branch_id = ?", voucherID, originBranchID).
		Update("estado", string(model.VoucherStatusSettled))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPermissionDenied
	}
	return nil
}

// FindByID fetches one voucher with its items. Used by tests and the
// creation path to return the fully populated record.
func (r *VoucherRepository) FindByID(ctx context.Context, id int64) (*model.Voucher, error) {
	var entity VoucherEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionDenied
		}
		return nil, err
	}
	v := toVoucherModel(&entity)
	items, err := r.ItemsByVoucherID(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Items = items
	return v, nil
}
