package inventory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/curaflow/curaflow/internal/domain/notifications"
	"github.com/curaflow/curaflow/internal/platform/mail"
)

type mockStockRepo struct {
	items      map[uuid.UUID]*StockItem
	failUpdate bool
}

func newMockStockRepo() *mockStockRepo {
	return &mockStockRepo{items: make(map[uuid.UUID]*StockItem)}
}

func (m *mockStockRepo) Create(_ context.Context, s *StockItem) error {
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	m.items[s.ID] = s
	return nil
}

func (m *mockStockRepo) GetByID(_ context.Context, id uuid.UUID) (*StockItem, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("stock item not found")
	}
	// Return a detached copy like a row scan would; mutations only land in
	// the map through Update.
	row := *s
	return &row, nil
}

func (m *mockStockRepo) List(_ context.Context, _, _ int) ([]*StockItem, int, error) {
	var results []*StockItem
	for _, s := range m.items {
		results = append(results, s)
	}
	return results, len(results), nil
}

func (m *mockStockRepo) ListLow(_ context.Context) ([]*StockItem, error) {
	var results []*StockItem
	for _, s := range m.items {
		if s.LowStock() {
			results = append(results, s)
		}
	}
	return results, nil
}

func (m *mockStockRepo) Update(_ context.Context, s *StockItem) error {
	if m.failUpdate {
		return fmt.Errorf("stock item update refused")
	}
	if _, ok := m.items[s.ID]; !ok {
		return fmt.Errorf("stock item not found")
	}
	s.UpdatedAt = time.Now()
	m.items[s.ID] = s
	return nil
}

func (m *mockStockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("stock item not found")
	}
	delete(m.items, id)
	return nil
}

type mockVendorRepo struct {
	vendors map[uuid.UUID]*Vendor
}

func newMockVendorRepo() *mockVendorRepo {
	return &mockVendorRepo{vendors: make(map[uuid.UUID]*Vendor)}
}

func (m *mockVendorRepo) Create(_ context.Context, v *Vendor) error {
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt
	m.vendors[v.ID] = v
	return nil
}

func (m *mockVendorRepo) GetByID(_ context.Context, id uuid.UUID) (*Vendor, error) {
	v, ok := m.vendors[id]
	if !ok {
		return nil, fmt.Errorf("vendor not found")
	}
	return v, nil
}

func (m *mockVendorRepo) List(_ context.Context, _, _ int) ([]*Vendor, int, error) {
	var results []*Vendor
	for _, v := range m.vendors {
		results = append(results, v)
	}
	return results, len(results), nil
}

func (m *mockVendorRepo) Update(_ context.Context, v *Vendor) error {
	if _, ok := m.vendors[v.ID]; !ok {
		return fmt.Errorf("vendor not found")
	}
	m.vendors[v.ID] = v
	return nil
}

func (m *mockVendorRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.vendors, id)
	return nil
}

type mockOrderRepo struct {
	orders map[uuid.UUID]*StockOrder
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uuid.UUID]*StockOrder)}
}

func (m *mockOrderRepo) Create(_ context.Context, o *StockOrder) error {
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	m.orders[o.ID] = o
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*StockOrder, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("stock order not found")
	}
	return o, nil
}

func (m *mockOrderRepo) List(_ context.Context, _, _ int) ([]*StockOrder, int, error) {
	var results []*StockOrder
	for _, o := range m.orders {
		results = append(results, o)
	}
	return results, len(results), nil
}

func (m *mockOrderRepo) HasOpenOrder(_ context.Context, itemID uuid.UUID) (bool, error) {
	for _, o := range m.orders {
		if o.ItemID == itemID && o.Status == OrderPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockOrderRepo) Update(_ context.Context, o *StockOrder) error {
	if _, ok := m.orders[o.ID]; !ok {
		return fmt.Errorf("stock order not found")
	}
	m.orders[o.ID] = o
	return nil
}

func (m *mockOrderRepo) MetricsByVendor(_ context.Context, vendorID uuid.UUID) (*VendorMetrics, error) {
	metrics := &VendorMetrics{VendorID: vendorID}
	for _, o := range m.orders {
		if o.VendorID != vendorID {
			continue
		}
		metrics.Total++
		switch o.Status {
		case OrderPending:
			metrics.Pending++
		case OrderCompleted:
			metrics.Completed++
		case OrderRejected:
			metrics.Rejected++
		}
	}
	return metrics, nil
}

type sentNotification struct {
	userID uuid.UUID
	ntype  string
}

type mockNotifier struct {
	sent []sentNotification
}

func (m *mockNotifier) Notify(_ context.Context, userID uuid.UUID, ntype, title, message string) (*notifications.Notification, error) {
	m.sent = append(m.sent, sentNotification{userID: userID, ntype: ntype})
	return &notifications.Notification{ID: uuid.New(), UserID: userID, Type: ntype}, nil
}

func (m *mockNotifier) countType(ntype string) int {
	n := 0
	for _, s := range m.sent {
		if s.ntype == ntype {
			n++
		}
	}
	return n
}

type sentMail struct {
	template  string
	recipient string
	data      map[string]string
}

type mockMailer struct {
	sent []sentMail
}

func (m *mockMailer) SendFromTemplate(_ context.Context, templateID string, data map[string]string, recipient string) (*mail.Message, error) {
	m.sent = append(m.sent, sentMail{template: templateID, recipient: recipient, data: data})
	return &mail.Message{}, nil
}

type fixture struct {
	svc      *Service
	stock    *mockStockRepo
	orders   *mockOrderRepo
	notifier *mockNotifier
	mailer   *mockMailer
	vendor   *Vendor
	owner    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stock := newMockStockRepo()
	vendors := newMockVendorRepo()
	orders := newMockOrderRepo()
	notifier := &mockNotifier{}
	mailer := &mockMailer{}
	svc := NewService(stock, vendors, orders, notifier, mailer, "http://localhost:8080")

	vendor, err := svc.CreateVendor(context.Background(), &Vendor{Name: "MedSupply", Email: "orders@medsupply.test"})
	if err != nil {
		t.Fatalf("creating vendor: %v", err)
	}
	return &fixture{
		svc:      svc,
		stock:    stock,
		orders:   orders,
		notifier: notifier,
		mailer:   mailer,
		vendor:   vendor,
		owner:    uuid.New(),
	}
}

func (f *fixture) item(quantity, minimum int) *StockItem {
	return &StockItem{
		Name:            "Paracetamol 500mg",
		Quantity:        quantity,
		MinimumQuantity: minimum,
		ReorderQuantity: 100,
		PricePerUnit:    0.12,
		VendorID:        &f.vendor.ID,
		CreatedBy:       f.owner,
	}
}

func TestCreateItem_LowStockNotifiesOnce(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateItem(context.Background(), f.item(5, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.notifier.countType(notifications.TypeStockLow); got != 1 {
		t.Errorf("expected exactly one low-stock notification, got %d", got)
	}
	if f.notifier.sent[0].userID != f.owner {
		t.Error("expected notification addressed to the item owner")
	}
}

func TestCreateItem_AboveThresholdStaysSilent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateItem(context.Background(), f.item(50, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.notifier.countType(notifications.TypeStockLow); got != 0 {
		t.Errorf("expected no low-stock notification, got %d", got)
	}
}

func TestUpdateItem_NotifiesOnCrossingOnly(t *testing.T) {
	f := newFixture(t)
	item, _ := f.svc.CreateItem(context.Background(), f.item(50, 10))

	low := f.item(8, 10)
	if _, err := f.svc.UpdateItem(context.Background(), item.ID, low); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.notifier.countType(notifications.TypeStockLow); got != 1 {
		t.Fatalf("expected one low-stock notification after crossing, got %d", got)
	}

	// A further edit while already low stays silent.
	lower := f.item(3, 10)
	if _, err := f.svc.UpdateItem(context.Background(), item.ID, lower); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.notifier.countType(notifications.TypeStockLow); got != 1 {
		t.Errorf("expected no additional notification, got %d total", got)
	}
}

func TestReorder_SendsVendorMail(t *testing.T) {
	f := newFixture(t)
	item, _ := f.svc.CreateItem(context.Background(), f.item(5, 10))

	order, err := f.svc.Reorder(context.Background(), item.ID, f.owner, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != OrderPending {
		t.Errorf("expected status %s, got %s", OrderPending, order.Status)
	}
	if order.Quantity != 100 {
		t.Errorf("expected default reorder quantity 100, got %d", order.Quantity)
	}

	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(f.mailer.sent))
	}
	sent := f.mailer.sent[0]
	if sent.template != "reorder-request" || sent.recipient != "orders@medsupply.test" {
		t.Errorf("unexpected mail %+v", sent)
	}
	wantConfirm := "http://localhost:8080/confirm?ids=" + order.ID.String()
	if sent.data["confirm_link"] != wantConfirm {
		t.Errorf("expected confirm link %s, got %s", wantConfirm, sent.data["confirm_link"])
	}
}

func TestReorder_BlocksDuplicateOpenOrder(t *testing.T) {
	f := newFixture(t)
	item, _ := f.svc.CreateItem(context.Background(), f.item(5, 10))
	f.svc.Reorder(context.Background(), item.ID, f.owner, 0)

	if _, err := f.svc.Reorder(context.Background(), item.ID, f.owner, 0); err == nil {
		t.Error("expected error for duplicate open order")
	}
}

func TestReorder_RequiresVendor(t *testing.T) {
	f := newFixture(t)
	item := f.item(5, 10)
	item.VendorID = nil
	created, _ := f.svc.CreateItem(context.Background(), item)

	if _, err := f.svc.Reorder(context.Background(), created.ID, f.owner, 0); err == nil {
		t.Error("expected error for item without vendor")
	}
}

func TestConfirmOrders_RestocksItem(t *testing.T) {
	f := newFixture(t)
	item, _ := f.svc.CreateItem(context.Background(), f.item(5, 10))
	order, _ := f.svc.Reorder(context.Background(), item.ID, f.owner, 0)

	out := f.svc.ConfirmOrders(context.Background(), []string{order.ID.String()})
	if out.Processed != 1 || out.Failed != 0 {
		t.Fatalf("expected 1 processed, got %+v", out)
	}
	if got := f.orders.orders[order.ID].Status; got != OrderCompleted {
		t.Errorf("expected status %s, got %s", OrderCompleted, got)
	}
	if got := f.stock.items[item.ID].Quantity; got != 105 {
		t.Errorf("expected restocked quantity 105, got %d", got)
	}
}

func TestConfirmOrders_AlreadyAnswered(t *testing.T) {
	f := newFixture(t)
	item, _ := f.svc.CreateItem(context.Background(), f.item(5, 10))
	order, _ := f.svc.Reorder(context.Background(), item.ID, f.owner, 0)
	f.svc.ConfirmOrders(context.Background(), []string{order.ID.String()})

	out := f.svc.ConfirmOrders(context.Background(), []string{order.ID.String()})
	if out.Processed != 0 || out.Failed != 1 {
		t.Errorf("expected repeat confirm to fail, got %+v", out)
	}
}

func TestConfirmOrders_RestockFailureReported(t *testing.T) {
	f := newFixture(t)
	item, _ := f.svc.CreateItem(context.Background(), f.item(5, 10))
	order, _ := f.svc.Reorder(context.Background(), item.ID, f.owner, 0)
	f.stock.failUpdate = true

	out := f.svc.ConfirmOrders(context.Background(), []string{order.ID.String()})
	if out.Processed != 0 || out.Failed != 1 {
		t.Fatalf("expected lost restock to be reported as a failure, got %+v", out)
	}
	if got := f.orders.orders[order.ID].Status; got != OrderCompleted {
		t.Errorf("expected status %s, got %s", OrderCompleted, got)
	}
	if got := f.stock.items[item.ID].Quantity; got != 5 {
		t.Errorf("expected quantity to stay 5, got %d", got)
	}
}

func TestRejectOrders_PartialFailure(t *testing.T) {
	f := newFixture(t)
	itemA, _ := f.svc.CreateItem(context.Background(), f.item(5, 10))
	orderA, _ := f.svc.Reorder(context.Background(), itemA.ID, f.owner, 0)

	itemB := f.item(2, 10)
	itemB.Name = "Ibuprofen 200mg"
	createdB, _ := f.svc.CreateItem(context.Background(), itemB)
	orderB, _ := f.svc.Reorder(context.Background(), createdB.ID, f.owner, 0)

	ids := []string{orderA.ID.String(), "not-a-uuid", orderB.ID.String(), uuid.NewString()}
	out := f.svc.RejectOrders(context.Background(), ids, "out of production")

	if out.Processed != 2 || out.Failed != 2 {
		t.Fatalf("expected 2 processed and 2 failed, got %+v", out)
	}
	for _, id := range []uuid.UUID{orderA.ID, orderB.ID} {
		o := f.orders.orders[id]
		if o.Status != OrderRejected {
			t.Errorf("expected order %s rejected, got %s", id, o.Status)
		}
		if o.RejectionReason == nil || *o.RejectionReason != "out of production" {
			t.Errorf("expected rejection reason recorded on %s", id)
		}
	}
	if len(out.Results) != 4 {
		t.Errorf("expected a result per id, got %d", len(out.Results))
	}
}

func TestCheckStockLevels_SkipsItemsWithOpenOrders(t *testing.T) {
	f := newFixture(t)
	covered, _ := f.svc.CreateItem(context.Background(), f.item(5, 10))
	f.svc.Reorder(context.Background(), covered.ID, f.owner, 0)

	bare := f.item(2, 10)
	bare.Name = "Gauze rolls"
	f.svc.CreateItem(context.Background(), bare)

	before := f.notifier.countType(notifications.TypeStockLow)
	notified, err := f.svc.CheckStockLevels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notified != 1 {
		t.Errorf("expected sweep to notify 1 item, got %d", notified)
	}
	if got := f.notifier.countType(notifications.TypeStockLow) - before; got != 1 {
		t.Errorf("expected one sweep notification, got %d", got)
	}
}

func TestVendorMetrics(t *testing.T) {
	f := newFixture(t)
	itemA, _ := f.svc.CreateItem(context.Background(), f.item(5, 10))
	orderA, _ := f.svc.Reorder(context.Background(), itemA.ID, f.owner, 0)
	f.svc.ConfirmOrders(context.Background(), []string{orderA.ID.String()})

	itemB := f.item(2, 10)
	itemB.Name = "Syringes 5ml"
	createdB, _ := f.svc.CreateItem(context.Background(), itemB)
	orderB, _ := f.svc.Reorder(context.Background(), createdB.ID, f.owner, 0)
	f.svc.RejectOrders(context.Background(), []string{orderB.ID.String()}, "price change")

	m, err := f.svc.VendorMetrics(context.Background(), f.vendor.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Total != 2 || m.Completed != 1 || m.Rejected != 1 || m.Pending != 0 {
		t.Errorf("unexpected metrics %+v", m)
	}
}
