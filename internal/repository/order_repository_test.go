package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/leafcart/internal/constants"
	"github.com/leafcart/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupOrderRepositoryTest(t *testing.T) (*GormOrderRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewOrderRepository(db), db
}

func newTestOrder(orderNo string, userID uint, status string, createdAt time.Time) *models.Order {
	return &models.Order{
		OrderNo:        orderNo,
		UserID:         userID,
		IdempotencyKey: "key-" + orderNo,
		Status:         status,
		PaymentStatus:  constants.PaymentStatusPending,
		Currency:       constants.CurrencyBase,
		Subtotal:       models.MoneyFromInt(100),
		Total:          models.MoneyFromInt(200),
		DeliveryFee:    models.MoneyFromInt(100),
		DeliveryMethod: constants.DeliveryMethodStandard,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
}

func TestOrderRepositoryCreateAttachesItems(t *testing.T) {
	repo, _ := setupOrderRepositoryTest(t)
	order := newTestOrder("LC1", 1, constants.OrderStatusPending, time.Now())
	items := []models.OrderItem{
		{ProductID: 1, Quantity: 1, UnitPrice: models.MoneyFromInt(100), Total: models.MoneyFromInt(100)},
	}
	if err := repo.Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	got, err := repo.GetByIdempotencyKey(1, "key-LC1")
	if err != nil || got == nil {
		t.Fatalf("get by idempotency key failed: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].OrderID != order.ID {
		t.Fatalf("items not attached: %+v", got.Items)
	}

	dup := newTestOrder("LC2", 1, constants.OrderStatusPending, time.Now())
	dup.IdempotencyKey = "key-LC1"
	if err := repo.Create(dup, nil); !IsUniqueViolation(err) {
		t.Fatalf("duplicate idempotency key should violate unique index, got %v", err)
	}
}

func TestOrderRepositoryListByUserFilters(t *testing.T) {
	repo, _ := setupOrderRepositoryTest(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	orders := []*models.Order{
		newTestOrder("LC10", 7, constants.OrderStatusPending, base),
		newTestOrder("LC11", 7, constants.OrderStatusShipped, base.Add(24*time.Hour)),
		newTestOrder("LC12", 7, constants.OrderStatusPending, base.Add(72*time.Hour)),
		newTestOrder("LC13", 8, constants.OrderStatusPending, base),
	}
	for _, o := range orders {
		if err := repo.Create(o, nil); err != nil {
			t.Fatalf("create order failed: %v", err)
		}
	}

	list, total, err := repo.ListByUser(OrderListFilter{UserID: 7, Status: constants.OrderStatusPending, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("pending orders of user 7 want 2 got total=%d len=%d", total, len(list))
	}

	from := base.Add(12 * time.Hour)
	to := base.Add(48 * time.Hour)
	list, total, err = repo.ListByUser(OrderListFilter{UserID: 7, CreatedFrom: &from, CreatedTo: &to})
	if err != nil {
		t.Fatalf("list by date failed: %v", err)
	}
	if total != 1 || list[0].OrderNo != "LC11" {
		t.Fatalf("date window should match LC11 only, got total=%d", total)
	}

	_, total, err = repo.ListAdmin(OrderListFilter{OrderNo: "LC1"})
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if total != 4 {
		t.Fatalf("admin order_no search want 4 got %d", total)
	}
}

func TestOrderRepositoryMarkPostCommitDoneOnce(t *testing.T) {
	repo, _ := setupOrderRepositoryTest(t)
	order := newTestOrder("LC20", 1, constants.OrderStatusPending, time.Now())
	if err := repo.Create(order, nil); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := repo.MarkPostCommitDone(order.ID, first); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if err := repo.MarkPostCommitDone(order.ID, first.Add(time.Hour)); err != nil {
		t.Fatalf("second mark failed: %v", err)
	}
	got, _ := repo.GetByID(order.ID)
	if got.PostCommitDoneAt == nil || !got.PostCommitDoneAt.Equal(first) {
		t.Fatalf("post commit timestamp should keep first value, got %v", got.PostCommitDoneAt)
	}
}

func TestOrderRepositoryListPendingPostCommit(t *testing.T) {
	repo, _ := setupOrderRepositoryTest(t)
	old := time.Now().Add(-10 * time.Minute)
	pending := newTestOrder("LC10", 1, constants.OrderStatusPending, old)
	done := newTestOrder("LC11", 1, constants.OrderStatusPending, old)
	cancelled := newTestOrder("LC12", 1, constants.OrderStatusCancelled, old)
	fresh := newTestOrder("LC13", 1, constants.OrderStatusPending, time.Now())
	for _, order := range []*models.Order{pending, done, cancelled, fresh} {
		if err := repo.Create(order, nil); err != nil {
			t.Fatalf("create order failed: %v", err)
		}
	}
	if err := repo.MarkPostCommitDone(done.ID, time.Now()); err != nil {
		t.Fatalf("mark done failed: %v", err)
	}

	orders, err := repo.ListPendingPostCommit(time.Now().Add(-time.Minute), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != pending.ID {
		t.Fatalf("unexpected pending orders: %+v", orders)
	}
}
