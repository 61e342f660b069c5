package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// VoucherStatus is the lifecycle state of a vale.
type VoucherStatus string

const (
	VoucherStatusPending VoucherStatus = "pendiente"
	VoucherStatusSettled VoucherStatus = "pagado"
)

// DateLayout is the wire format for issue dates. Vouchers carry a calendar
// date with no time-of-day semantics.
const DateLayout = "2006-01-02"

// ErrValidation marks caller-fault input errors. Nothing is written when a
// request fails validation.
var ErrValidation = errors.New("datos de entrada incompletos")

type Voucher struct {
	ID                    int64         `json:"id"`
	Fecha                 string        `json:"fecha"`
	OriginBranchID        int64         `json:"local_origen_id"`
	OriginBranchName      string        `json:"origen_nombre,omitempty"`
	DestinationBranchID   int64         `json:"local_destino_id"`
	DestinationBranchName string        `json:"destino_nombre,omitempty"`
	ResponsiblePerson     string        `json:"persona_responsable"`
	Estado                VoucherStatus `json:"estado"`
	Items                 []VoucherItem `json:"items"`
	CreatedAt             time.Time     `json:"creado_en"`
}

// VoucherItem is one line of merchandise description attached to a voucher.
type VoucherItem struct {
	ID          int64  `json:"id"`
	VoucherID   int64  `json:"-"`
	Descripcion string `json:"descripcion"`
}

// VoucherCreateRequest is the input for creating a vale. OriginBranchID is
// always the authenticated caller, never taken from the request body.
type VoucherCreateRequest struct {
	Fecha               string
	OriginBranchID      int64
	DestinationBranchID int64
	ResponsiblePerson   string
	Items               []string
}

func (p VoucherCreateRequest) Validate() error {
	if strings.TrimSpace(p.Fecha) == "" {
		return fmt.Errorf("%w: fecha", ErrValidation)
	}
	if _, err := time.Parse(DateLayout, p.Fecha); err != nil {
		return fmt.Errorf("%w: fecha debe tener formato %s", ErrValidation, DateLayout)
	}
	if p.OriginBranchID == 0 {
		return fmt.Errorf("%w: local de origen", ErrValidation)
	}
	if p.DestinationBranchID == 0 {
		return fmt.Errorf("%w: local de destino", ErrValidation)
	}
	if strings.TrimSpace(p.ResponsiblePerson) == "" {
		return fmt.Errorf("%w: persona responsable", ErrValidation)
	}
	if len(p.NonEmptyItems()) == 0 {
		return fmt.Errorf("%w: se requiere al menos un item de mercadería", ErrValidation)
	}
	return nil
}

// NonEmptyItems drops blank descriptions, preserving the supplied order.
func (p VoucherCreateRequest) NonEmptyItems() []string {
	items := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		if s := strings.TrimSpace(it); s != "" {
			items = append(items, s)
		}
	}
	return items
}

// VoucherFilter controls Search queries. Predicates are conjunctive; a nil
// field is not applied. Date bounds are inclusive on both ends.
type VoucherFilter struct {
	FechaDesde          *string // fecha >=
	FechaHasta          *string // fecha <=
	OriginBranchID      *int64
	DestinationBranchID *int64
	Mercaderia          *string // substring against any one item
	Estado              *VoucherStatus
}
