package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/curaflow/curaflow/internal/domain/notifications"
	"github.com/curaflow/curaflow/internal/platform/mail"
)

// Notifier delivers in-app notifications. Satisfied by notifications.Service.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, ntype, title, message string) (*notifications.Notification, error)
}

// Mailer sends the vendor reorder mail. Satisfied by mail.Manager.
type Mailer interface {
	SendFromTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*mail.Message, error)
}

type Service struct {
	stock    StockRepository
	vendors  VendorRepository
	orders   OrderRepository
	notifier Notifier
	mailer   Mailer
	baseURL  string
}

func NewService(stock StockRepository, vendors VendorRepository, orders OrderRepository,
	notifier Notifier, mailer Mailer, baseURL string) *Service {
	return &Service{
		stock:    stock,
		vendors:  vendors,
		orders:   orders,
		notifier: notifier,
		mailer:   mailer,
		baseURL:  baseURL,
	}
}

func validateItem(s *StockItem) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if s.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}
	if s.MinimumQuantity < 0 {
		return fmt.Errorf("minimum_quantity must not be negative")
	}
	if s.ReorderQuantity < 0 {
		return fmt.Errorf("reorder_quantity must not be negative")
	}
	if s.PricePerUnit < 0 {
		return fmt.Errorf("price_per_unit must not be negative")
	}
	return nil
}

// CreateItem registers a stock item. An item born at or below its threshold
// produces exactly one low-stock notification.
func (s *Service) CreateItem(ctx context.Context, item *StockItem) (*StockItem, error) {
	if err := validateItem(item); err != nil {
		return nil, err
	}
	if item.CreatedBy == uuid.Nil {
		return nil, fmt.Errorf("created_by is required")
	}
	if item.VendorID != nil {
		if _, err := s.vendors.GetByID(ctx, *item.VendorID); err != nil {
			return nil, fmt.Errorf("unknown vendor")
		}
	}
	item.ID = uuid.New()
	if err := s.stock.Create(ctx, item); err != nil {
		return nil, err
	}
	if item.LowStock() {
		s.notifyLow(ctx, item)
	}
	return item, nil
}

func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*StockItem, error) {
	return s.stock.GetByID(ctx, id)
}

func (s *Service) ListItems(ctx context.Context, limit, offset int) ([]*StockItem, int, error) {
	return s.stock.List(ctx, limit, offset)
}

// UpdateItem saves the item and fires a low-stock notification only when the
// update crosses the threshold downwards. An item that was already low stays
// silent so repeated edits do not spam the owner.
func (s *Service) UpdateItem(ctx context.Context, id uuid.UUID, updated *StockItem) (*StockItem, error) {
	existing, err := s.stock.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateItem(updated); err != nil {
		return nil, err
	}
	if updated.VendorID != nil {
		if _, err := s.vendors.GetByID(ctx, *updated.VendorID); err != nil {
			return nil, fmt.Errorf("unknown vendor")
		}
	}
	wasLow := existing.LowStock()
	updated.ID = existing.ID
	updated.CreatedBy = existing.CreatedBy
	updated.CreatedAt = existing.CreatedAt
	if err := s.stock.Update(ctx, updated); err != nil {
		return nil, err
	}
	if !wasLow && updated.LowStock() {
		s.notifyLow(ctx, updated)
	}
	return updated, nil
}

func (s *Service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return s.stock.Delete(ctx, id)
}

func (s *Service) CreateVendor(ctx context.Context, v *Vendor) (*Vendor, error) {
	if strings.TrimSpace(v.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if !strings.Contains(v.Email, "@") {
		return nil, fmt.Errorf("email is invalid")
	}
	v.ID = uuid.New()
	if err := s.vendors.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) GetVendor(ctx context.Context, id uuid.UUID) (*Vendor, error) {
	return s.vendors.GetByID(ctx, id)
}

func (s *Service) ListVendors(ctx context.Context, limit, offset int) ([]*Vendor, int, error) {
	return s.vendors.List(ctx, limit, offset)
}

func (s *Service) UpdateVendor(ctx context.Context, id uuid.UUID, updated *Vendor) (*Vendor, error) {
	existing, err := s.vendors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(updated.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if !strings.Contains(updated.Email, "@") {
		return nil, fmt.Errorf("email is invalid")
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := s.vendors.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) DeleteVendor(ctx context.Context, id uuid.UUID) error {
	return s.vendors.Delete(ctx, id)
}

func (s *Service) VendorMetrics(ctx context.Context, vendorID uuid.UUID) (*VendorMetrics, error) {
	if _, err := s.vendors.GetByID(ctx, vendorID); err != nil {
		return nil, err
	}
	return s.orders.MetricsByVendor(ctx, vendorID)
}

// Reorder opens a pending order against the item's vendor and mails the
// vendor a confirm/reject link pair carrying the order id. Quantity defaults
// to the item's reorder quantity.
func (s *Service) Reorder(ctx context.Context, itemID, requestedBy uuid.UUID, quantity int) (*StockOrder, error) {
	item, err := s.stock.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.VendorID == nil {
		return nil, fmt.Errorf("stock item has no vendor")
	}
	vendor, err := s.vendors.GetByID(ctx, *item.VendorID)
	if err != nil {
		return nil, fmt.Errorf("unknown vendor")
	}
	open, err := s.orders.HasOpenOrder(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, fmt.Errorf("a pending order already exists for this item")
	}
	if quantity <= 0 {
		quantity = item.ReorderQuantity
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("reorder quantity is not set")
	}

	order := &StockOrder{
		ID:          uuid.New(),
		ItemID:      item.ID,
		VendorID:    vendor.ID,
		RequestedBy: requestedBy,
		Quantity:    quantity,
		Status:      OrderPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	if s.mailer != nil {
		// Mail failure leaves the order pending; staff can resend from the
		// orders list.
		_, _ = s.mailer.SendFromTemplate(ctx, "reorder-request", map[string]string{
			"vendor_name":  vendor.Name,
			"item_name":    item.Name,
			"quantity":     fmt.Sprintf("%d", quantity),
			"order_id":     order.ID.String(),
			"confirm_link": fmt.Sprintf("%s/confirm?ids=%s", s.baseURL, order.ID),
			"reject_link":  fmt.Sprintf("%s/reject?ids=%s", s.baseURL, order.ID),
		}, vendor.Email)
	}
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*StockOrder, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, limit, offset int) ([]*StockOrder, int, error) {
	return s.orders.List(ctx, limit, offset)
}

// ConfirmOrders completes each pending order in ids, restocking the item by
// the ordered quantity. Ids are processed independently; the outcome records
// every failure without stopping the rest.
func (s *Service) ConfirmOrders(ctx context.Context, ids []string) *BulkOutcome {
	return s.bulk(ids, func(id uuid.UUID) error {
		return s.confirmOne(ctx, id)
	})
}

// RejectOrders marks each pending order in ids rejected with the given
// reason, independently per id.
func (s *Service) RejectOrders(ctx context.Context, ids []string, reason string) *BulkOutcome {
	return s.bulk(ids, func(id uuid.UUID) error {
		return s.rejectOne(ctx, id, reason)
	})
}

func (s *Service) bulk(ids []string, fn func(uuid.UUID) error) *BulkOutcome {
	out := &BulkOutcome{Results: make([]BulkResult, 0, len(ids))}
	for _, raw := range ids {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err == nil {
			err = fn(id)
		}
		if err != nil {
			out.Failed++
			out.Results = append(out.Results, BulkResult{ID: raw, OK: false, Error: err.Error()})
			continue
		}
		out.Processed++
		out.Results = append(out.Results, BulkResult{ID: raw, OK: true})
	}
	return out
}

func (s *Service) confirmOne(ctx context.Context, id uuid.UUID) error {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if order.Status != OrderPending {
		return fmt.Errorf("order is already %s", order.Status)
	}
	now := time.Now()
	order.Status = OrderCompleted
	order.RespondedAt = &now
	if err := s.orders.Update(ctx, order); err != nil {
		return err
	}

	// The order stays COMPLETED even when the restock write fails; the id is
	// reported failed so the caller knows the quantity was not applied.
	item, err := s.stock.GetByID(ctx, order.ItemID)
	if err != nil {
		return fmt.Errorf("order confirmed but restock failed: %w", err)
	}
	item.Quantity += order.Quantity
	if err := s.stock.Update(ctx, item); err != nil {
		return fmt.Errorf("order confirmed but restock failed: %w", err)
	}
	s.notify(ctx, order.RequestedBy, notifications.TypeGeneral,
		"Reorder confirmed",
		fmt.Sprintf("The vendor confirmed your order for %d x %s.", order.Quantity, item.Name))
	return nil
}

func (s *Service) rejectOne(ctx context.Context, id uuid.UUID, reason string) error {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if order.Status != OrderPending {
		return fmt.Errorf("order is already %s", order.Status)
	}
	now := time.Now()
	order.Status = OrderRejected
	order.RespondedAt = &now
	if reason != "" {
		order.RejectionReason = &reason
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return err
	}
	msg := "The vendor rejected your reorder request."
	if reason != "" {
		msg = fmt.Sprintf("The vendor rejected your reorder request: %s", reason)
	}
	s.notify(ctx, order.RequestedBy, notifications.TypeGeneral, "Reorder rejected", msg)
	return nil
}

// CheckStockLevels is the periodic sweep. It re-notifies owners of items
// sitting below threshold that have no open order, catching items whose
// crossing notification was missed or ignored.
func (s *Service) CheckStockLevels(ctx context.Context) (int, error) {
	low, err := s.stock.ListLow(ctx)
	if err != nil {
		return 0, err
	}
	notified := 0
	for _, item := range low {
		open, err := s.orders.HasOpenOrder(ctx, item.ID)
		if err != nil || open {
			continue
		}
		s.notifyLow(ctx, item)
		notified++
	}
	return notified, nil
}

func (s *Service) notifyLow(ctx context.Context, item *StockItem) {
	s.notify(ctx, item.CreatedBy, notifications.TypeStockLow,
		"Low stock",
		fmt.Sprintf("%s is down to %d (threshold %d). Consider reordering.",
			item.Name, item.Quantity, item.MinimumQuantity))
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, ntype, title, message string) {
	if s.notifier == nil || userID == uuid.Nil {
		return
	}
	_, _ = s.notifier.Notify(ctx, userID, ntype, title, message)
}
