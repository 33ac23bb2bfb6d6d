package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const stockCols = `id, name, description, quantity, minimum_quantity, reorder_quantity,
	price_per_unit, vendor_id, created_by, created_at, updated_at`

const vendorCols = `id, name, email, phone, address, created_at, updated_at`

const orderCols = `id, item_id, vendor_id, requested_by, quantity, status,
	rejection_reason, responded_at, created_at, updated_at`

type stockRepoPG struct {
	pool *pgxpool.Pool
}

func NewStockRepoPG(pool *pgxpool.Pool) StockRepository {
	return &stockRepoPG{pool: pool}
}

func scanStockItem(row pgx.Row) (*StockItem, error) {
	var s StockItem
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Quantity, &s.MinimumQuantity,
		&s.ReorderQuantity, &s.PricePerUnit, &s.VendorID, &s.CreatedBy,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("stock item not found")
		}
		return nil, fmt.Errorf("scanning stock item: %w", err)
	}
	return &s, nil
}

func (r *stockRepoPG) Create(ctx context.Context, s *StockItem) error {
	query := `INSERT INTO stock_item (id, name, description, quantity, minimum_quantity,
			reorder_quantity, price_per_unit, vendor_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		s.ID, s.Name, s.Description, s.Quantity, s.MinimumQuantity,
		s.ReorderQuantity, s.PricePerUnit, s.VendorID, s.CreatedBy,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating stock item: %w", err)
	}
	return nil
}

func (r *stockRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*StockItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM stock_item WHERE id = $1`, stockCols)
	return scanStockItem(r.pool.QueryRow(ctx, query, id))
}

func (r *stockRepoPG) List(ctx context.Context, limit, offset int) ([]*StockItem, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM stock_item`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting stock items: %w", err)
	}
	query := fmt.Sprintf(`SELECT %s FROM stock_item ORDER BY name LIMIT $1 OFFSET $2`, stockCols)
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing stock items: %w", err)
	}
	defer rows.Close()

	var results []*StockItem
	for rows.Next() {
		s, err := scanStockItem(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, s)
	}
	return results, total, rows.Err()
}

func (r *stockRepoPG) ListLow(ctx context.Context) ([]*StockItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM stock_item WHERE quantity <= minimum_quantity ORDER BY name`, stockCols)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing low stock items: %w", err)
	}
	defer rows.Close()

	var results []*StockItem
	for rows.Next() {
		s, err := scanStockItem(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

func (r *stockRepoPG) Update(ctx context.Context, s *StockItem) error {
	query := `UPDATE stock_item SET
			name = $2, description = $3, quantity = $4, minimum_quantity = $5,
			reorder_quantity = $6, price_per_unit = $7, vendor_id = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		s.ID, s.Name, s.Description, s.Quantity, s.MinimumQuantity,
		s.ReorderQuantity, s.PricePerUnit, s.VendorID,
	).Scan(&s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("stock item not found")
		}
		return fmt.Errorf("updating stock item: %w", err)
	}
	return nil
}

func (r *stockRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM stock_item WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting stock item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stock item not found")
	}
	return nil
}

type vendorRepoPG struct {
	pool *pgxpool.Pool
}

func NewVendorRepoPG(pool *pgxpool.Pool) VendorRepository {
	return &vendorRepoPG{pool: pool}
}

func scanVendor(row pgx.Row) (*Vendor, error) {
	var v Vendor
	err := row.Scan(&v.ID, &v.Name, &v.Email, &v.Phone, &v.Address, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vendor not found")
		}
		return nil, fmt.Errorf("scanning vendor: %w", err)
	}
	return &v, nil
}

func (r *vendorRepoPG) Create(ctx context.Context, v *Vendor) error {
	query := `INSERT INTO vendor (id, name, email, phone, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query, v.ID, v.Name, v.Email, v.Phone, v.Address).
		Scan(&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating vendor: %w", err)
	}
	return nil
}

func (r *vendorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Vendor, error) {
	query := fmt.Sprintf(`SELECT %s FROM vendor WHERE id = $1`, vendorCols)
	return scanVendor(r.pool.QueryRow(ctx, query, id))
}

func (r *vendorRepoPG) List(ctx context.Context, limit, offset int) ([]*Vendor, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM vendor`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting vendors: %w", err)
	}
	query := fmt.Sprintf(`SELECT %s FROM vendor ORDER BY name LIMIT $1 OFFSET $2`, vendorCols)
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing vendors: %w", err)
	}
	defer rows.Close()

	var results []*Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, v)
	}
	return results, total, rows.Err()
}

func (r *vendorRepoPG) Update(ctx context.Context, v *Vendor) error {
	query := `UPDATE vendor SET
			name = $2, email = $3, phone = $4, address = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query, v.ID, v.Name, v.Email, v.Phone, v.Address).
		Scan(&v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("vendor not found")
		}
		return fmt.Errorf("updating vendor: %w", err)
	}
	return nil
}

func (r *vendorRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM vendor WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting vendor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("vendor not found")
	}
	return nil
}

type orderRepoPG struct {
	pool *pgxpool.Pool
}

func NewOrderRepoPG(pool *pgxpool.Pool) OrderRepository {
	return &orderRepoPG{pool: pool}
}

func scanOrder(row pgx.Row) (*StockOrder, error) {
	var o StockOrder
	err := row.Scan(&o.ID, &o.ItemID, &o.VendorID, &o.RequestedBy, &o.Quantity,
		&o.Status, &o.RejectionReason, &o.RespondedAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("stock order not found")
		}
		return nil, fmt.Errorf("scanning stock order: %w", err)
	}
	return &o, nil
}

func (r *orderRepoPG) Create(ctx context.Context, o *StockOrder) error {
	query := `INSERT INTO stock_order (id, item_id, vendor_id, requested_by, quantity, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		o.ID, o.ItemID, o.VendorID, o.RequestedBy, o.Quantity, o.Status,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating stock order: %w", err)
	}
	return nil
}

func (r *orderRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*StockOrder, error) {
	query := fmt.Sprintf(`SELECT %s FROM stock_order WHERE id = $1`, orderCols)
	return scanOrder(r.pool.QueryRow(ctx, query, id))
}

func (r *orderRepoPG) List(ctx context.Context, limit, offset int) ([]*StockOrder, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM stock_order`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting stock orders: %w", err)
	}
	query := fmt.Sprintf(`SELECT %s FROM stock_order ORDER BY created_at DESC LIMIT $1 OFFSET $2`, orderCols)
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing stock orders: %w", err)
	}
	defer rows.Close()

	var results []*StockOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, o)
	}
	return results, total, rows.Err()
}

func (r *orderRepoPG) HasOpenOrder(ctx context.Context, itemID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stock_order WHERE item_id = $1 AND status = $2)`,
		itemID, OrderPending).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking open orders: %w", err)
	}
	return exists, nil
}

func (r *orderRepoPG) Update(ctx context.Context, o *StockOrder) error {
	query := `UPDATE stock_order SET
			status = $2, rejection_reason = $3, responded_at = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query, o.ID, o.Status, o.RejectionReason, o.RespondedAt).
		Scan(&o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("stock order not found")
		}
		return fmt.Errorf("updating stock order: %w", err)
	}
	return nil
}

func (r *orderRepoPG) MetricsByVendor(ctx context.Context, vendorID uuid.UUID) (*VendorMetrics, error) {
	query := `SELECT
			count(*),
			count(*) FILTER (WHERE status = 'PENDING'),
			count(*) FILTER (WHERE status = 'COMPLETED'),
			count(*) FILTER (WHERE status = 'REJECTED')
		FROM stock_order WHERE vendor_id = $1`
	m := &VendorMetrics{VendorID: vendorID}
	err := r.pool.QueryRow(ctx, query, vendorID).
		Scan(&m.Total, &m.Pending, &m.Completed, &m.Rejected)
	if err != nil {
		return nil, fmt.Errorf("computing vendor metrics: %w", err)
	}
	return m, nil
}
