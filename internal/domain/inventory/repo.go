package inventory

import (
	"context"

	"github.com/google/uuid"
)

type StockRepository interface {
	Create(ctx context.Context, s *StockItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*StockItem, error)
	List(ctx context.Context, limit, offset int) ([]*StockItem, int, error)
	ListLow(ctx context.Context) ([]*StockItem, error)
	Update(ctx context.Context, s *StockItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type VendorRepository interface {
	Create(ctx context.Context, v *Vendor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Vendor, error)
	List(ctx context.Context, limit, offset int) ([]*Vendor, int, error)
	Update(ctx context.Context, v *Vendor) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *StockOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*StockOrder, error)
	List(ctx context.Context, limit, offset int) ([]*StockOrder, int, error)
	HasOpenOrder(ctx context.Context, itemID uuid.UUID) (bool, error)
	Update(ctx context.Context, o *StockOrder) error
	MetricsByVendor(ctx context.Context, vendorID uuid.UUID) (*VendorMetrics, error)
}
