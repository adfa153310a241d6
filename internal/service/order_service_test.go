package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/leafcart/internal/constants"
	"github.com/leafcart/internal/models"
	"github.com/leafcart/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type orderTestEnv struct {
	db        *gorm.DB
	orders    *OrderService
	inventory *InventoryService
	promo     *PromoCodeService
	loyalty   *LoyaltyService
	cart      *CartService
	user      *models.User
}

func setupOrderServiceTest(t *testing.T) *orderTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	productRepo := repository.NewProductRepository(db)
	inventory := NewInventoryService(db, repository.NewInventoryRepository(db), nil)
	promo := NewPromoCodeService(db, repository.NewPromoCodeRepository(db))
	loyalty := NewLoyaltyService(db, repository.NewUserRepository(db), nil)
	cart := NewCartService(repository.NewCartRepository(db), productRepo, DefaultPricingPolicy().SupportedCurrencies, time.Minute)
	orders, err := NewOrderService(OrderServiceDeps{
		DB:          db,
		OrderRepo:   repository.NewOrderRepository(db),
		ProductRepo: productRepo,
		Inventory:   inventory,
		PromoCodes:  promo,
		Loyalty:     loyalty,
		Cart:        cart,
		OrderNoNode: 1,
	})
	if err != nil {
		t.Fatalf("new order service failed: %v", err)
	}

	user := &models.User{Email: "buyer@example.com", LoyaltyLevel: constants.LoyaltyLevelBronze}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return &orderTestEnv{
		db:        db,
		orders:    orders,
		inventory: inventory,
		promo:     promo,
		loyalty:   loyalty,
		cart:      cart,
		user:      user,
	}
}

func (e *orderTestEnv) createProduct(t *testing.T, name string, price int64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:     name,
		Price:    models.MoneyFromInt(price),
		PriceUSD: models.NewMoney(decimal.NewFromInt(price).Div(decimal.NewFromInt(100))),
		IsActive: true,
	}
	if err := e.db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if _, err := e.inventory.EnsureRecord(product.ID, stock, 0); err != nil {
		t.Fatalf("create inventory failed: %v", err)
	}
	return product
}

func (e *orderTestEnv) createPromo(t *testing.T, promo *models.PromoCode) *models.PromoCode {
	t.Helper()
	if promo.ValidFrom.IsZero() {
		promo.ValidFrom = time.Now().Add(-time.Hour)
	}
	promo.IsActive = true
	if err := e.db.Create(promo).Error; err != nil {
		t.Fatalf("create promo failed: %v", err)
	}
	return promo
}

func (e *orderTestEnv) reserved(t *testing.T, productID uint) int {
	t.Helper()
	inv, err := e.inventory.GetByProduct(productID)
	if err != nil {
		t.Fatalf("get inventory failed: %v", err)
	}
	return inv.ReservedQuantity
}

func (e *orderTestEnv) countOrders(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := e.db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	return count
}

func testDelivery(method string) DeliveryDetails {
	return DeliveryDetails{
		Method:         method,
		RecipientName:  "Anna",
		RecipientPhone: "+70000000000",
		Address:        "Lenina 1",
		City:           "Moscow",
	}
}

func line(product *models.Product, quantity int) CartLine {
	return CartLine{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.Price,
	}
}

func assertMoney(t *testing.T, field string, got models.Money, want int64) {
	t.Helper()
	if !got.Decimal.Equal(decimal.NewFromInt(want)) {
		t.Fatalf("%s want %d, got %s", field, want, got.String())
	}
}

func TestCreateOrderWithPercentagePromo(t *testing.T) {
	env := setupOrderServiceTest(t)
	tea := env.createProduct(t, "Green Tea", 100, 10)
	cup := env.createProduct(t, "Cup", 50, 10)
	promo := env.createPromo(t, &models.PromoCode{
		Code:          "SAVE10",
		DiscountType:  constants.DiscountTypePercentage,
		DiscountValue: models.MoneyFromInt(10),
	})

	order, err := env.orders.CreateOrder(context.Background(), CreateOrderInput{
		UserID:         env.user.ID,
		Lines:          []CartLine{line(tea, 2), line(cup, 1)},
		Delivery:       testDelivery(constants.DeliveryMethodStandard),
		PromoCode:      "save10",
		IdempotencyKey: "order-1",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	assertMoney(t, "subtotal", order.Subtotal, 250)
	assertMoney(t, "discount", order.DiscountAmount, 25)
	assertMoney(t, "delivery fee", order.DeliveryFee, 100)
	assertMoney(t, "total", order.Total, 325)
	if order.Status != constants.OrderStatusPending || order.PaymentStatus != constants.PaymentStatusPending {
		t.Fatalf("unexpected initial status: %s/%s", order.Status, order.PaymentStatus)
	}
	if order.Currency != constants.CurrencyBase {
		t.Fatalf("currency should default to base, got %s", order.Currency)
	}
	if order.PromoCodeID == nil || *order.PromoCodeID != promo.ID {
		t.Fatalf("promo code not linked: %+v", order.PromoCodeID)
	}
	if len(order.Items) != 2 || order.Items[0].ProductName != "Green Tea" {
		t.Fatalf("unexpected items: %+v", order.Items)
	}
	if env.reserved(t, tea.ID) != 2 || env.reserved(t, cup.ID) != 1 {
		t.Fatalf("stock not reserved")
	}

	var refreshedPromo models.PromoCode
	if err := env.db.First(&refreshedPromo, promo.ID).Error; err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if refreshedPromo.UsedCount != 1 {
		t.Fatalf("promo used count want 1, got %d", refreshedPromo.UsedCount)
	}
	var user models.User
	if err := env.db.First(&user, env.user.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if order.LoyaltyPoints != 32 || user.LoyaltyPoints != 32 {
		t.Fatalf("loyalty points want 32, order=%d user=%d", order.LoyaltyPoints, user.LoyaltyPoints)
	}
}

func TestCreateOrderExpressWithoutPromo(t *testing.T) {
	env := setupOrderServiceTest(t)
	tea := env.createProduct(t, "Green Tea", 100, 10)
	cup := env.createProduct(t, "Cup", 50, 10)

	order, err := env.orders.CreateOrder(context.Background(), CreateOrderInput{
		UserID:         env.user.ID,
		Lines:          []CartLine{line(tea, 2), line(cup, 1)},
		Delivery:       testDelivery(constants.DeliveryMethodExpress),
		IdempotencyKey: "order-key-1",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	assertMoney(t, "discount", order.DiscountAmount, 0)
	assertMoney(t, "delivery fee", order.DeliveryFee, 200)
	assertMoney(t, "total", order.Total, 450)
	if order.PromoCodeID != nil {
		t.Fatalf("order should not link a promo")
	}
}

func TestCreateOrderFreeDeliveryAboveThreshold(t *testing.T) {
	env := setupOrderServiceTest(t)
	teapot := env.createProduct(t, "Teapot", 1500, 5)

	for _, method := range []string{constants.DeliveryMethodStandard, constants.DeliveryMethodExpress} {
		order, err := env.orders.CreateOrder(context.Background(), CreateOrderInput{
			UserID:         env.user.ID,
			Lines:          []CartLine{line(teapot, 2)},
			Delivery:       testDelivery(method),
			IdempotencyKey: "free-delivery-" + method,
		})
		if err != nil {
			t.Fatalf("create %s order failed: %v", method, err)
		}
		assertMoney(t, method+" delivery fee", order.DeliveryFee, 0)
		assertMoney(t, method+" total", order.Total, 3000)
		if !order.Total.Decimal.Equal(order.Subtotal.Decimal.Sub(order.DiscountAmount.Decimal).Add(order.DeliveryFee.Decimal)) {
			t.Fatalf("total does not match components")
		}
	}
}

func TestCreateOrderOutOfStockRollsBack(t *testing.T) {
	env := setupOrderServiceTest(t)
	tea := env.createProduct(t, "Green Tea", 100, 5)
	matcha := env.createProduct(t, "Matcha", 300, 0)

	_, err := env.orders.CreateOrder(context.Background(), CreateOrderInput{
		UserID:         env.user.ID,
		Lines:          []CartLine{line(tea, 1), line(matcha, 1)},
		Delivery:       testDelivery(constants.DeliveryMethodStandard),
		IdempotencyKey: "order-key-3",
	})
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected out of stock, got %v", err)
	}
	if err.Error() != "Product Matcha is out of stock" {
		t.Fatalf("unexpected reason: %s", err.Error())
	}
	if env.countOrders(t) != 0 {
		t.Fatalf("order should not be persisted")
	}
	if env.reserved(t, tea.ID) != 0 {
		t.Fatalf("reservation should be rolled back")
	}
}

func TestCreateOrderRollsBackWhenReserveLosesRace(t *testing.T) {
	env := setupOrderServiceTest(t)
	tea := env.createProduct(t, "Green Tea", 100, 5)

	// 订单行写入后、预留前，另一笔交易抢走全部库存
	err := env.db.Callback().Create().After("gorm:create").Register("test:drain_stock", func(tx *gorm.DB) {
		if tx.Error != nil || tx.Statement.Table != "orders" {
			return
		}
		if _, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"UPDATE inventories SET quantity = reserved_quantity WHERE product_id = ?", tea.ID); err != nil {
			_ = tx.AddError(err)
		}
	})
	if err != nil {
		t.Fatalf("register callback failed: %v", err)
	}

	_, err = env.orders.CreateOrder(context.Background(), CreateOrderInput{
		UserID:         env.user.ID,
		Lines:          []CartLine{line(tea, 2)},
		Delivery:       testDelivery(constants.DeliveryMethodStandard),
		IdempotencyKey: "lost-race",
	})
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected out of stock from reserve, got %v", err)
	}
	if err.Error() != "Product Green Tea is out of stock" {
		t.Fatalf("unexpected reason: %s", err.Error())
	}

	if err := env.db.Callback().Create().Remove("test:drain_stock"); err != nil {
		t.Fatalf("remove callback failed: %v", err)
	}
	if env.countOrders(t) != 0 {
		t.Fatalf("order row should be rolled back")
	}
	var items int64
	if err := env.db.Model(&models.OrderItem{}).Count(&items).Error; err != nil {
		t.Fatalf("count order items failed: %v", err)
	}
	if items != 0 {
		t.Fatalf("order items should be rolled back, got %d", items)
	}
	inv, err := env.inventory.GetByProduct(tea.ID)
	if err != nil {
		t.Fatalf("get inventory failed: %v", err)
	}
	if inv.Quantity != 5 || inv.ReservedQuantity != 0 {
		t.Fatalf("inventory should be untouched, got qty=%d reserved=%d", inv.Quantity, inv.ReservedQuantity)
	}
}

func TestCreateOrderAggregatesQuantityPerProduct(t *testing.T) {
	env := setupOrderServiceTest(t)
	tea := env.createProduct(t, "Green Tea", 100, 3)

	_, err := env.orders.CreateOrder(context.Background(), CreateOrderInput{
		UserID:         env.user.ID,
		Lines:          []CartLine{line(tea, 2), line(tea, 2)},
		Delivery:       testDelivery(constants.DeliveryMethodStandard),
		IdempotencyKey: "order-key-4",
	})
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected out of stock for aggregated quantity, got %v", err)
	}
}

func TestCreateOrderInvalidPromoRollsBack(t *testing.T) {
	env := setupOrderServiceTest(t)
	tea := env.createProduct(t, "Green Tea", 100, 5)
	expired := time.Now().Add(-time.Minute)
	env.createPromo(t, &models.PromoCode{
		Code:          "OLD",
		DiscountType:  constants.DiscountTypeFixed,
		DiscountValue: models.MoneyFromInt(50),
		ValidFrom:     time.Now().Add(-48 * time.Hour),
		ValidUntil:    &expired,
	})

	_, err := env.orders.CreateOrder(context.Background(), CreateOrderInput{
		UserID:         env.user.ID,
		Lines:          []CartLine{line(tea, 1)},
		Delivery:       testDelivery(constants.DeliveryMethodStandard),
		PromoCode:      "OLD",
		IdempotencyKey: "order-key-5",
	})
	if !errors.Is(err, ErrPromoCodeExpired) {
		t.Fatalf("expected expired promo, got %v", err)
	}
	if err.Error() != "Promo code expired" {
		t.Fatalf("unexpected reason: %s", err.Error())
	}
	if env.countOrders(t) != 0 || env.reserved(t, tea.ID) != 0 {
		t.Fatalf("rejected order left side effects")
	}
}

func TestCreateOrderRejectsInvalidInput(t *testing.T) {
	env := setupOrderServiceTest(t)
	tea := env.createProduct(t, "Green Tea", 100, 5)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateOrderInput
		want  error
	}{
		{
			name:  "empty cart",
			input: CreateOrderInput{UserID: env.user.ID, Delivery: testDelivery(""), IdempotencyKey: "invalid-input"},
			want:  ErrEmptyCart,
		},
		{
			name:  "zero quantity",
			input: CreateOrderInput{UserID: env.user.ID, Lines: []CartLine{line(tea, 0)}, Delivery: testDelivery(""), IdempotencyKey: "invalid-input"},
			want:  ErrInvalidQuantity,
		},
		{
			name:  "unknown currency",
			input: CreateOrderInput{UserID: env.user.ID, Lines: []CartLine{line(tea, 1)}, Delivery: testDelivery(""), Currency: "GBP", IdempotencyKey: "invalid-input"},
			want:  ErrInvalidCurrency,
		},
		{
			name:  "unknown delivery method",
			input: CreateOrderInput{UserID: env.user.ID, Lines: []CartLine{line(tea, 1)}, Delivery: testDelivery("drone"), IdempotencyKey: "invalid-input"},
			want:  ErrInvalidDeliveryMethod,
		},
		{
			name:  "missing address",
			input: CreateOrderInput{UserID: env.user.ID, Lines: []CartLine{line(tea, 1)}, Delivery: DeliveryDetails{Method: "standard"}, IdempotencyKey: "invalid-input"},
			want:  ErrDeliveryDetailsRequired,
		},
		{
			name:  "missing idempotency key",
			input: CreateOrderInput{UserID: env.user.ID, Lines: []CartLine{line(tea, 1)}, Delivery: testDelivery(""), IdempotencyKey: "  "},
			want:  ErrIdempotencyKeyRequired,
		},
		{
			name:  "missing user",
			input: CreateOrderInput{Lines: []CartLine{line(tea, 1)}, Delivery: testDelivery(""), IdempotencyKey: "invalid-input"},
			want:  ErrUserRequired,
		},
	}
	for _, tc := range cases {
		if _, err := env.orders.CreateOrder(ctx, tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: want %v, got %v", tc.name, tc.want, err)
		}
	}
	if env.countOrders(t) != 0 {
		t.Fatalf("invalid input should not persist orders")
	}
}

func TestCreateOrderIdempotentReplay(t *testing.T) {
	env := setupOrderServiceTest(t)
	tea := env.createProduct(t, "Green Tea", 100, 5)
	input := CreateOrderInput{
		UserID:         env.user.ID,
		Lines:          []CartLine{line(tea, 2)},
		Delivery:       testDelivery(constants.DeliveryMethodStandard),
		IdempotencyKey: "retry-me",
	}

	first, err := env.orders.CreateOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	second, err := env.orders.CreateOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if first.ID != second.ID || first.OrderNo != second.OrderNo {
		t.Fatalf("replay should return the same order: %d vs %d", first.ID, second.ID)
	}
	if env.countOrders(t) != 1 {
		t.Fatalf("replay should not create a new order")
	}
	if env.reserved(t, tea.ID) != 2 {
		t.Fatalf("replay should not reserve twice, reserved=%d", env.reserved(t, tea.ID))
	}
}

func TestCreateOrderConcurrentLastUnit(t *testing.T) {
	env := setupOrderServiceTest(t)
	tea := env.createProduct(t, "Last Tea", 100, 1)

	const buyers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := env.orders.CreateOrder(context.Background(), CreateOrderInput{
				UserID:         env.user.ID,
				Lines:          []CartLine{line(tea, 1)},
				Delivery:       testDelivery(constants.DeliveryMethodStandard),
				IdempotencyKey: fmt.Sprintf("buyer-%d", n),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			failures = append(failures, err)
		}(i)
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("exactly one order should succeed, got %d", successes)
	}
	for _, err := range failures {
		if !errors.Is(err, ErrOutOfStock) {
			t.Fatalf("losers should fail with out of stock, got %v", err)
		}
	}
	if env.reserved(t, tea.ID) != 1 {
		t.Fatalf("reserved want 1, got %d", env.reserved(t, tea.ID))
	}
}

func TestCreateOrderFromCartClearsCartAndReplays(t *testing.T) {
	env := setupOrderServiceTest(t)
	tea := env.createProduct(t, "Green Tea", 100, 5)
	ctx := context.Background()
	if _, err := env.cart.AddItem(ctx, AddCartItemInput{UserID: env.user.ID, ProductID: tea.ID, Quantity: 3}); err != nil {
		t.Fatalf("add cart item failed: %v", err)
	}

	input := CheckoutInput{
		UserID:         env.user.ID,
		Delivery:       testDelivery(constants.DeliveryMethodStandard),
		IdempotencyKey: "checkout-1",
	}
	order, err := env.orders.CreateOrderFromCart(ctx, input)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	assertMoney(t, "subtotal", order.Subtotal, 300)

	lines, err := env.cart.GetCart(ctx, env.user.ID, constants.CurrencyBase)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("cart should be cleared after checkout")
	}

	replay, err := env.orders.CreateOrderFromCart(ctx, input)
	if err != nil {
		t.Fatalf("replay after cart cleared failed: %v", err)
	}
	if replay.ID != order.ID {
		t.Fatalf("replay should return original order")
	}

	if _, err := env.orders.CreateOrderFromCart(ctx, CheckoutInput{
		UserID:         env.user.ID,
		Delivery:       testDelivery(constants.DeliveryMethodStandard),
		IdempotencyKey: "order-key-6",
	}); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("new checkout with empty cart want ErrEmptyCart, got %v", err)
	}
}

func TestCreateOrderInAlternateCurrency(t *testing.T) {
	env := setupOrderServiceTest(t)
	tea := env.createProduct(t, "Green Tea", 1000, 5)
	ctx := context.Background()
	if _, err := env.cart.AddItem(ctx, AddCartItemInput{UserID: env.user.ID, ProductID: tea.ID, Quantity: 2}); err != nil {
		t.Fatalf("add cart item failed: %v", err)
	}
	env.createPromo(t, &models.PromoCode{
		Code:             "FIVE",
		DiscountType:     constants.DiscountTypeFixed,
		DiscountValue:    models.MoneyFromInt(500),
		DiscountValueUSD: models.MoneyFromInt(5),
	})

	preview, err := env.orders.PreviewCheckout(ctx, CheckoutInput{
		UserID:    env.user.ID,
		Currency:  "usd",
		PromoCode: "FIVE",
		Delivery:  DeliveryDetails{Method: constants.DeliveryMethodStandard},
	})
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if preview.Currency != constants.CurrencyUSD {
		t.Fatalf("preview currency want USD, got %s", preview.Currency)
	}
	assertMoney(t, "usd subtotal", preview.Subtotal, 20)
	assertMoney(t, "usd discount", preview.DiscountAmount, 5)
}

func TestPreviewOrderDoesNotPersist(t *testing.T) {
	env := setupOrderServiceTest(t)
	tea := env.createProduct(t, "Green Tea", 100, 5)

	preview, err := env.orders.PreviewOrder(context.Background(), CreateOrderInput{
		UserID:   env.user.ID,
		Lines:    []CartLine{line(tea, 2)},
		Delivery: DeliveryDetails{Method: constants.DeliveryMethodExpress},
	})
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	assertMoney(t, "total", preview.Total, 400)
	if preview.LoyaltyPoints != 40 {
		t.Fatalf("preview loyalty points want 40, got %d", preview.LoyaltyPoints)
	}
	if env.countOrders(t) != 0 || env.reserved(t, tea.ID) != 0 {
		t.Fatalf("preview must not persist or reserve")
	}
}

func TestPostCommitFailureKeepsOrderAndRetries(t *testing.T) {
	env := setupOrderServiceTest(t)
	tea := env.createProduct(t, "Green Tea", 100, 5)
	const ghostUserID = 4242

	order, err := env.orders.CreateOrder(context.Background(), CreateOrderInput{
		UserID:         ghostUserID,
		Lines:          []CartLine{line(tea, 1)},
		Delivery:       testDelivery(constants.DeliveryMethodStandard),
		IdempotencyKey: "order-key-7",
	})
	if err != nil {
		t.Fatalf("order should commit even when loyalty fails: %v", err)
	}
	var stored models.Order
	if err := env.db.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if stored.PostCommitDoneAt != nil {
		t.Fatalf("post commit should remain pending")
	}

	if err := env.db.Create(&models.User{ID: ghostUserID, Email: "late@example.com"}).Error; err != nil {
		t.Fatalf("create late user failed: %v", err)
	}
	env.orders.now = func() time.Time { return time.Now().Add(time.Hour) }
	applied, err := env.orders.SweepPendingPostCommit(context.Background(), time.Minute, 10)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if applied != 1 {
		t.Fatalf("sweep should apply one order, got %d", applied)
	}
	if err := env.orders.ApplyPostCommitEffects(context.Background(), order.ID); err != nil {
		t.Fatalf("repeat apply failed: %v", err)
	}
	var user models.User
	if err := env.db.First(&user, ghostUserID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if user.LoyaltyPoints != 20 {
		t.Fatalf("points want 20 credited once, got %d", user.LoyaltyPoints)
	}
}
