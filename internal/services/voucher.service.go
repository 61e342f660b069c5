package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/prestamos/vales-gateway/internal/model"
	"github.com/prestamos/vales-gateway/pkg/prom"
)

type VoucherRepository interface {
	Create(ctx context.Context, v *model.Voucher) (*model.Voucher, error)
	CreateItem(ctx context.Context, item *model.VoucherItem) (*model.VoucherItem, error)
	Search(ctx context.Context, f model.VoucherFilter) ([]*model.Voucher, error)
	List(ctx context.Context) ([]*model.Voucher, error)
	Settle(ctx context.Context, voucherID, originBranchID int64) error
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type VoucherService struct {
	voucherRepo VoucherRepository
}

func NewVoucherService(voucherRepo VoucherRepository) *VoucherService {
	return &VoucherService{
		voucherRepo: voucherRepo,
	}
}

// Create validates the request and writes the voucher plus its merchandise
// lines as one atomic unit. Either every row persists or none does; a
// concurrent reader can never observe the voucher without its items.
func (s *VoucherService) Create(ctx context.Context, p model.VoucherCreateRequest) (*model.Voucher, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	items := p.NonEmptyItems()

	var created *model.Voucher
	err := s.voucherRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		v, err := s.voucherRepo.Create(ctx, &model.Voucher{
			Fecha:               p.Fecha,
			OriginBranchID:      p.OriginBranchID,
			DestinationBranchID: p.DestinationBranchID,
			ResponsiblePerson:   strings.TrimSpace(p.ResponsiblePerson),
			Estado:              model.VoucherStatusPending,
		})
		if err != nil {
			return errors.Wrap(err, "crear vale")
		}

		for _, desc := range items {
			item, err := s.voucherRepo.CreateItem(ctx, &model.VoucherItem{
				VoucherID:   v.ID,
				Descripcion: desc,
			})
			if err != nil {
				// the transaction rolls back the voucher row and every
				// item inserted so far
				return errors.Wrap(err, "crear item de mercadería")
			}
			v.Items = append(v.Items, *item)
		}

		created = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	prom.IncCounter(prom.SystemVales, prom.MetricValesCreated)
	return created, nil
}

// Settle transitions a voucher to pagado on behalf of its origin branch.
func (s *VoucherService) Settle(ctx context.Context, voucherID, callerBranchID int64) error {
	if err := s.voucherRepo.Settle(ctx, voucherID, callerBranchID); err != nil {
		return err
	}
	prom.IncCounter(prom.SystemVales, prom.MetricValesSettled)
	return nil
}

// List returns every voucher, newest issue date first.
func (s *VoucherService) List(ctx context.Context) ([]*model.Voucher, error) {
	return s.voucherRepo.List(ctx)
}

// Search applies the present filter predicates conjunctively.
func (s *VoucherService) Search(ctx context.Context, f model.VoucherFilter) ([]*model.Voucher, error) {
	return s.voucherRepo.Search(ctx, f)
}

// csvHeader matches the export format consumed by the branch back offices.
const csvHeader = "ID,Fecha,Local Origen,Local Destino,Persona Responsable,Estado,Items"

// ExportCSV renders the full listing as CSV: one data row per voucher, item
// descriptions joined by " | " in a quoted trailing field.
func (s *VoucherService) ExportCSV(ctx context.Context) ([]byte, error) {
	vouchers, err := s.voucherRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteByte('\n')

	for _, v := range vouchers {
		descriptions := make([]string, len(v.Items))
		for i, item := range v.Items {
			descriptions[i] = item.Descripcion
		}
		fmt.Fprintf(&b, "%d,%s,%s,%s,%s,%s,%q\n",
			v.ID,
			v.Fecha,
			v.OriginBranchName,
			v.DestinationBranchName,
			v.ResponsiblePerson,
			v.Estado,
			strings.Join(descriptions, " | "),
		)
	}

	return []byte(b.String()), nil
}
