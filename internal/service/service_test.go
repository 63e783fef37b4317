package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"kantinku/backend/internal/cache"
	"kantinku/backend/internal/domain"
	"kantinku/backend/internal/offer"
	"kantinku/backend/internal/store"
	"kantinku/backend/internal/store/memory"
)

func newTestService() (*Service, *memory.Store) {
	repo := memory.NewSeeded()
	return newTestServiceWithRepo(repo), repo
}

func newTestServiceWithRepo(repo store.Repository) *Service {
	pricer := offer.NewEngine(cache.NoopMenuBoardCache{}, 5*time.Second)
	return New(repo, pricer, domain.LocationCanteen)
}

func adminCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{
		Username: "admin",
		Role:     "admin",
	})
}

// flakyRepo fails menu item writes targeting one location, to simulate the
// second leg of a cross-location write going down mid-operation.
type flakyRepo struct {
	store.Repository
	failCreateAt string
	failUpdateAt string
}

func (f *flakyRepo) CreateMenuItem(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	if item.Location == f.failCreateAt {
		return nil, errors.New("storage offline")
	}
	return f.Repository.CreateMenuItem(ctx, item)
}

func (f *flakyRepo) UpdateMenuItem(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	if item.Location == f.failUpdateAt {
		return nil, errors.New("storage offline")
	}
	return f.Repository.UpdateMenuItem(ctx, item)
}

func TestCreateMenuItemSyncBothCreatesIndependentRecords(t *testing.T) {
	svc, _ := newTestService()
	ctx := adminCtx()

	result, err := svc.CreateMenuItem(ctx, domain.MenuItemCreateRequest{
		Name:        "Veg Roll",
		Price:       20,
		Category:    domain.CategorySnacks,
		SubCategory: "Fried",
		Stock:       50,
		Location:    domain.LocationCanteen,
		ImageURL:    "/images/veg-roll.jpg",
		SyncBoth:    true,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if result.Primary.Status != domain.SyncStatusCreated || result.Primary.Item == nil {
		t.Fatalf("expected created primary, got %+v", result.Primary)
	}
	if result.Secondary == nil || result.Secondary.Status != domain.SyncStatusCreated || result.Secondary.Item == nil {
		t.Fatalf("expected created secondary, got %+v", result.Secondary)
	}
	if result.Primary.Item.Location != domain.LocationCanteen || result.Secondary.Item.Location != domain.LocationCafeteria {
		t.Fatalf("unexpected locations: %s / %s", result.Primary.Item.Location, result.Secondary.Item.Location)
	}
	if result.Primary.Item.ID == result.Secondary.Item.ID {
		t.Fatalf("twins must have independent ids")
	}
	if result.Secondary.Item.Price != 20 || result.Secondary.Item.Stock != 50 {
		t.Fatalf("secondary should copy entered price and stock, got price=%d stock=%d", result.Secondary.Item.Price, result.Secondary.Item.Stock)
	}

	// Stock is per-location from here on.
	if _, err := svc.UpdateMenuItemStock(ctx, result.Primary.Item.ID, 5); err != nil {
		t.Fatalf("stock update failed: %v", err)
	}
	twin, err := svc.GetMenuItem(ctx, result.Secondary.Item.ID)
	if err != nil {
		t.Fatalf("get twin failed: %v", err)
	}
	if twin.Stock != 50 {
		t.Fatalf("twin stock must be untouched, got %d", twin.Stock)
	}
}

func TestCreateMenuItemWithoutSyncWritesOneLocation(t *testing.T) {
	svc, _ := newTestService()

	result, err := svc.CreateMenuItem(adminCtx(), domain.MenuItemCreateRequest{
		Name:     "Filter Coffee",
		Price:    18,
		Category: domain.CategoryDrinks,
		Stock:    40,
		Location: domain.LocationCafeteria,
		ImageURL: "/images/coffee.jpg",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if result.Secondary != nil {
		t.Fatalf("expected no secondary outcome, got %+v", result.Secondary)
	}

	matches, err := svc.ListMenuItems(adminCtx(), domain.LocationCanteen)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, item := range matches {
		if item.Name == "Filter Coffee" {
			t.Fatalf("item leaked into the other location")
		}
	}
}

func TestCreateMenuItemSecondLocationFailureKeepsPrimary(t *testing.T) {
	flaky := &flakyRepo{Repository: memory.NewSeeded(), failCreateAt: domain.LocationCafeteria}
	svc := newTestServiceWithRepo(flaky)
	ctx := adminCtx()

	result, err := svc.CreateMenuItem(ctx, domain.MenuItemCreateRequest{
		Name:        "Kachori",
		Price:       15,
		Category:    domain.CategorySnacks,
		SubCategory: "Fried",
		Stock:       30,
		Location:    domain.LocationCanteen,
		ImageURL:    "/images/kachori.jpg",
		SyncBoth:    true,
	})
	if err == nil {
		t.Fatalf("expected second location failure to be surfaced")
	}
	if result.Primary.Status != domain.SyncStatusCreated || result.Primary.Item == nil {
		t.Fatalf("primary must stay committed, got %+v", result.Primary)
	}
	if result.Secondary == nil || result.Secondary.Status != domain.SyncStatusFailed {
		t.Fatalf("expected failed secondary, got %+v", result.Secondary)
	}

	// No rollback: the canteen record is live.
	if _, err := svc.GetMenuItem(ctx, result.Primary.Item.ID); err != nil {
		t.Fatalf("primary record should survive: %v", err)
	}
}

func TestCreateMenuItemRejectsDuplicateName(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateMenuItem(adminCtx(), domain.MenuItemCreateRequest{
		Name:        "Samosa",
		Price:       22,
		Category:    domain.CategorySnacks,
		SubCategory: "Fried",
		Stock:       10,
		Location:    domain.LocationCanteen,
		ImageURL:    "/images/samosa2.jpg",
	})
	if !errors.Is(err, store.ErrDuplicateName) {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
}

func TestCreateMenuItemValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := adminCtx()

	cases := []struct {
		name string
		req  domain.MenuItemCreateRequest
	}{
		{"missing name", domain.MenuItemCreateRequest{Price: 10, Category: domain.CategoryDrinks, Location: domain.LocationCanteen, ImageURL: "/i.jpg"}},
		{"missing image", domain.MenuItemCreateRequest{Name: "Lassi", Price: 10, Category: domain.CategoryDrinks, Location: domain.LocationCanteen}},
		{"snacks without sub-category", domain.MenuItemCreateRequest{Name: "Vada", Price: 10, Category: domain.CategorySnacks, Location: domain.LocationCanteen, ImageURL: "/i.jpg"}},
		{"negative price", domain.MenuItemCreateRequest{Name: "Lassi", Price: -1, Category: domain.CategoryDrinks, Location: domain.LocationCanteen, ImageURL: "/i.jpg"}},
		{"bad category", domain.MenuItemCreateRequest{Name: "Lassi", Price: 10, Category: "Desserts", Location: domain.LocationCanteen, ImageURL: "/i.jpg"}},
	}
	for _, tc := range cases {
		if _, err := svc.CreateMenuItem(ctx, tc.req); !errors.Is(err, store.ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", tc.name, err)
		}
	}
}

func TestCreateMenuItemRequiresAdmin(t *testing.T) {
	svc, _ := newTestService()
	ctx := WithActor(context.Background(), domain.Actor{Username: "staff", Role: "staff"})

	_, err := svc.CreateMenuItem(ctx, domain.MenuItemCreateRequest{
		Name:     "Juice",
		Price:    12,
		Category: domain.CategoryDrinks,
		Location: domain.LocationCanteen,
		ImageURL: "/images/juice.jpg",
	})
	if err == nil || !strings.Contains(err.Error(), "admin role required") {
		t.Fatalf("expected admin gate, got %v", err)
	}
}

func TestUpdateMenuItemSyncBothPropagatesPriceNotStock(t *testing.T) {
	svc, _ := newTestService()
	ctx := adminCtx()

	newPrice := int64(25)
	result, err := svc.UpdateMenuItem(ctx, "mi-samosa-can", domain.MenuItemUpdateRequest{
		Price:    &newPrice,
		SyncBoth: true,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if result.Primary.Status != domain.SyncStatusUpdated {
		t.Fatalf("expected updated primary, got %+v", result.Primary)
	}
	if result.Secondary == nil || result.Secondary.Status != domain.SyncStatusUpdated {
		t.Fatalf("expected updated secondary, got %+v", result.Secondary)
	}

	twin, err := svc.GetMenuItem(ctx, "mi-samosa-caf")
	if err != nil {
		t.Fatalf("get twin failed: %v", err)
	}
	if twin.Price != 25 {
		t.Fatalf("twin price should follow, got %d", twin.Price)
	}
	if twin.Stock != 30 {
		t.Fatalf("twin stock must be untouched, got %d", twin.Stock)
	}
	if twin.ImageURL != "/images/samosa.jpg" {
		t.Fatalf("twin image should be preserved, got %s", twin.ImageURL)
	}

	primary, err := svc.GetMenuItem(ctx, "mi-samosa-can")
	if err != nil {
		t.Fatalf("get primary failed: %v", err)
	}
	if primary.Stock != 50 {
		t.Fatalf("primary stock must be untouched, got %d", primary.Stock)
	}
}

func TestUpdateMenuItemSyncBothCreatesMissingTwin(t *testing.T) {
	svc, _ := newTestService()
	ctx := adminCtx()

	// Poha exists only at the canteen.
	newPrice := int64(35)
	result, err := svc.UpdateMenuItem(ctx, "mi-poha-can", domain.MenuItemUpdateRequest{
		Price:    &newPrice,
		SyncBoth: true,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if result.Secondary == nil || result.Secondary.Status != domain.SyncStatusCreated {
		t.Fatalf("expected twin to be created, got %+v", result.Secondary)
	}
	if result.Secondary.Item.Location != domain.LocationCafeteria {
		t.Fatalf("twin created at wrong location: %s", result.Secondary.Item.Location)
	}
	if result.Secondary.Item.Price != 35 {
		t.Fatalf("twin should carry the edited price, got %d", result.Secondary.Item.Price)
	}
}

func TestUpdateMenuItemSyncBothRefusesAmbiguousTwin(t *testing.T) {
	svc, repo := newTestService()
	ctx := adminCtx()

	// Second cafeteria item with the same name, inserted behind the
	// service's back.
	_, err := repo.CreateMenuItem(ctx, domain.MenuItem{
		ID:          "mi-samosa-caf-2",
		Name:        "Samosa",
		Price:       21,
		Category:    domain.CategorySnacks,
		SubCategory: "Fried",
		Stock:       5,
		Location:    domain.LocationCafeteria,
		ImageURL:    "/images/samosa.jpg",
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	newPrice := int64(25)
	result, err := svc.UpdateMenuItem(ctx, "mi-samosa-can", domain.MenuItemUpdateRequest{
		Price:    &newPrice,
		SyncBoth: true,
	})
	if err != nil {
		t.Fatalf("primary edit must still succeed: %v", err)
	}
	if result.Secondary == nil || result.Secondary.Status != domain.SyncStatusFailed {
		t.Fatalf("expected failed secondary for ambiguous twin, got %+v", result.Secondary)
	}
	if !strings.Contains(result.Secondary.Error, store.ErrDuplicateName.Error()) {
		t.Fatalf("expected duplicate name in outcome, got %q", result.Secondary.Error)
	}

	// Neither cafeteria record was touched.
	for id, want := range map[string]int64{"mi-samosa-caf": 20, "mi-samosa-caf-2": 21} {
		item, err := svc.GetMenuItem(ctx, id)
		if err != nil {
			t.Fatalf("get %s failed: %v", id, err)
		}
		if item.Price != want {
			t.Fatalf("%s price changed to %d", id, item.Price)
		}
	}
}

func TestUpdateMenuItemSyncFailureDoesNotFailPrimary(t *testing.T) {
	flaky := &flakyRepo{Repository: memory.NewSeeded(), failUpdateAt: domain.LocationCafeteria}
	svc := newTestServiceWithRepo(flaky)
	ctx := adminCtx()

	newPrice := int64(25)
	result, err := svc.UpdateMenuItem(ctx, "mi-samosa-can", domain.MenuItemUpdateRequest{
		Price:    &newPrice,
		SyncBoth: true,
	})
	if err != nil {
		t.Fatalf("primary edit must succeed even when twin sync fails: %v", err)
	}
	if result.Primary.Item.Price != 25 {
		t.Fatalf("primary price not applied: %d", result.Primary.Item.Price)
	}
	if result.Secondary == nil || result.Secondary.Status != domain.SyncStatusFailed {
		t.Fatalf("expected failed secondary, got %+v", result.Secondary)
	}
}

func TestUpdateMenuItemRenameChecksNameCollision(t *testing.T) {
	svc, _ := newTestService()

	name := "Masala Chai"
	_, err := svc.UpdateMenuItem(adminCtx(), "mi-poha-can", domain.MenuItemUpdateRequest{
		Name: &name,
	})
	if !errors.Is(err, store.ErrDuplicateName) {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
}

func TestCreateOfferRejectsCrossLocationItems(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateOffer(adminCtx(), domain.OfferCreateRequest{
		Name:               "Stationery Sale",
		DiscountPercentage: 10,
		ApplicableItems:    []string{"mi-pen-caf"},
		Location:           domain.LocationCanteen,
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected cross-location item rejection, got %v", err)
	}
}

func TestListOffersAnnotatesExpiry(t *testing.T) {
	svc, repo := newTestService()
	ctx := adminCtx()

	_, err := repo.CreateOffer(ctx, domain.Offer{
		ID:                 "of-old",
		Name:               "Last Week",
		DiscountPercentage: 50,
		EndDate:            "2020-01-01",
		ApplicableItems:    []string{"mi-chai-can"},
		Location:           domain.LocationCanteen,
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	offers, err := svc.ListOffers(ctx, domain.LocationCanteen)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	byID := map[string]bool{}
	for _, o := range offers {
		byID[o.ID] = o.Expired
	}
	if !byID["of-old"] {
		t.Fatalf("expected of-old to be labeled expired")
	}
	if byID["of-snack-can"] {
		t.Fatalf("expected of-snack-can to be active")
	}
}

func TestExpiredOfferStillDiscountsOrders(t *testing.T) {
	svc, repo := newTestService()
	ctx := adminCtx()

	// Expiry is a display label. Until an admin removes the offer it keeps
	// pricing orders.
	_, err := repo.CreateOffer(ctx, domain.Offer{
		ID:                 "of-old-chai",
		Name:               "Chai Deal",
		DiscountPercentage: 50,
		EndDate:            "2020-01-01",
		ApplicableItems:    []string{"mi-chai-can"},
		Location:           domain.LocationCanteen,
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	order, err := svc.PlaceOrder(ctx, domain.OrderCreateRequest{
		Location: domain.LocationCanteen,
		Lines:    []domain.OrderCreateLine{{ItemID: "mi-chai-can", Qty: 1}},
	})
	if err != nil {
		t.Fatalf("order failed: %v", err)
	}
	if order.Lines[0].UnitPrice != 5 {
		t.Fatalf("expected discounted unit price 5, got %d", order.Lines[0].UnitPrice)
	}
}

func TestPlaceOrderAppliesOfferPricingAndStock(t *testing.T) {
	svc, _ := newTestService()
	ctx := adminCtx()

	// Samosa is 20 with a 10% offer at the canteen.
	order, err := svc.PlaceOrder(ctx, domain.OrderCreateRequest{
		Location:     domain.LocationCanteen,
		CustomerName: "Asha",
		Lines: []domain.OrderCreateLine{
			{ItemID: "mi-samosa-can", Qty: 2},
			{ItemID: "mi-chai-can", Qty: 1},
		},
	})
	if err != nil {
		t.Fatalf("order failed: %v", err)
	}
	if order.Lines[0].UnitPrice != 18 || !order.Lines[0].Discounted {
		t.Fatalf("expected discounted samosa at 18, got %+v", order.Lines[0])
	}
	if order.Lines[1].UnitPrice != 10 || order.Lines[1].Discounted {
		t.Fatalf("expected chai at list price, got %+v", order.Lines[1])
	}
	if order.TotalPrice != 46 {
		t.Fatalf("expected total 46, got %d", order.TotalPrice)
	}

	item, err := svc.GetMenuItem(ctx, "mi-samosa-can")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if item.Stock != 48 {
		t.Fatalf("expected stock 48, got %d", item.Stock)
	}

	report, err := svc.DailyRevenue(ctx, domain.LocationCanteen, "")
	if err != nil {
		t.Fatalf("revenue failed: %v", err)
	}
	if report.Orders != 1 || report.Revenue != 46 || report.ItemsSold != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Discounted != 1 {
		t.Fatalf("expected 1 discounted line, got %d", report.Discounted)
	}

	// The cafeteria report stays empty: revenue never crosses locations.
	other, err := svc.DailyRevenue(ctx, domain.LocationCafeteria, "")
	if err != nil {
		t.Fatalf("revenue failed: %v", err)
	}
	if other.Orders != 0 || other.Revenue != 0 {
		t.Fatalf("cafeteria report should be empty, got %+v", other)
	}
}

func TestPlaceOrderRejectsInsufficientStock(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.PlaceOrder(adminCtx(), domain.OrderCreateRequest{
		Location: domain.LocationCanteen,
		Lines:    []domain.OrderCreateLine{{ItemID: "mi-samosa-can", Qty: 1000}},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
}

func TestPlaceOrderAggregatesDuplicateLines(t *testing.T) {
	svc, _ := newTestService()
	ctx := adminCtx()

	// Samosa stock is 50; each line fits on its own but the combined
	// demand does not. The order must be rejected up front with no
	// stock written.
	_, err := svc.PlaceOrder(ctx, domain.OrderCreateRequest{
		Location: domain.LocationCanteen,
		Lines: []domain.OrderCreateLine{
			{ItemID: "mi-samosa-can", Qty: 30},
			{ItemID: "mi-samosa-can", Qty: 30},
		},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	item, err := svc.GetMenuItem(ctx, "mi-samosa-can")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if item.Stock != 50 {
		t.Fatalf("rejected order must not touch stock, got %d", item.Stock)
	}

	// Duplicate lines that fit the combined demand stay separate lines
	// on the order and decrement the item once.
	order, err := svc.PlaceOrder(ctx, domain.OrderCreateRequest{
		Location: domain.LocationCanteen,
		Lines: []domain.OrderCreateLine{
			{ItemID: "mi-samosa-can", Qty: 20},
			{ItemID: "mi-samosa-can", Qty: 20},
		},
	})
	if err != nil {
		t.Fatalf("order failed: %v", err)
	}
	if len(order.Lines) != 2 || order.TotalPrice != 720 {
		t.Fatalf("expected 2 lines totalling 720, got %+v", order)
	}
	item, err = svc.GetMenuItem(ctx, "mi-samosa-can")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if item.Stock != 10 {
		t.Fatalf("expected stock 10 after order, got %d", item.Stock)
	}
}

func TestFeedbackLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := adminCtx()

	created, err := svc.SubmitFeedback(context.Background(), domain.FeedbackCreateRequest{
		Name:     "Ravi",
		Message:  "The thali was cold today.",
		Location: domain.LocationCanteen,
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	marked, err := svc.MarkFeedbackRead(ctx, created.ID)
	if err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	if !marked.Read {
		t.Fatalf("expected read flag set")
	}

	deleted, err := svc.DeleteAllFeedback(ctx)
	if err != nil {
		t.Fatalf("delete all failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}
}

func TestDeleteAllFeedbackRequiresAdmin(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.DeleteAllFeedback(context.Background())
	if err == nil || !strings.Contains(err.Error(), "admin role required") {
		t.Fatalf("expected admin gate, got %v", err)
	}
}

func TestUpdateLocationStatusValidatesTimes(t *testing.T) {
	svc, _ := newTestService()
	ctx := adminCtx()

	bad := "25:99"
	_, err := svc.UpdateLocationStatus(ctx, domain.LocationCanteen, domain.LocationStatusUpdateRequest{
		OpeningTime: &bad,
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected invalid time rejection, got %v", err)
	}

	closed := false
	updated, err := svc.UpdateLocationStatus(ctx, domain.LocationCafeteria, domain.LocationStatusUpdateRequest{
		Open: &closed,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Open {
		t.Fatalf("expected cafeteria to be closed")
	}
}

func TestMutationsAreAudited(t *testing.T) {
	svc, _ := newTestService()
	ctx := adminCtx()

	newPrice := int64(25)
	if _, err := svc.UpdateMenuItem(ctx, "mi-samosa-can", domain.MenuItemUpdateRequest{Price: &newPrice, SyncBoth: true}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	logs, err := svc.ListAuditLogs(ctx, "", time.Time{}, time.Time{}, 10)
	if err != nil {
		t.Fatalf("list audit logs failed: %v", err)
	}
	if len(logs) < 2 {
		t.Fatalf("expected entries for both legs of the sync, got %d", len(logs))
	}
	actions := map[string]bool{}
	for _, entry := range logs {
		actions[entry.Action] = true
		if entry.ActorUsername != "admin" {
			t.Fatalf("expected admin actor, got %q", entry.ActorUsername)
		}
	}
	if !actions["menu_item_update"] || !actions["menu_item_sync_update"] {
		t.Fatalf("missing expected actions: %v", actions)
	}
}

func TestListMenuBuildsPricedBoard(t *testing.T) {
	svc, _ := newTestService()

	board, err := svc.ListMenu(adminCtx(), domain.LocationCanteen)
	if err != nil {
		t.Fatalf("list menu failed: %v", err)
	}
	if board.Location != domain.LocationCanteen {
		t.Fatalf("unexpected board location %s", board.Location)
	}

	var samosa *domain.PricedMenuItem
	for i := range board.Items {
		if board.Items[i].ID == "mi-samosa-can" {
			samosa = &board.Items[i]
		}
	}
	if samosa == nil {
		t.Fatalf("samosa missing from board")
	}
	if !samosa.Discount.IsOffer || samosa.Discount.OfferPrice != 18 {
		t.Fatalf("expected 10%% samosa discount, got %+v", samosa.Discount)
	}
	if !samosa.Available {
		t.Fatalf("expected samosa available")
	}
}
