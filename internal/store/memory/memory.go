package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"kantinku/backend/internal/domain"
	"kantinku/backend/internal/store"
	"kantinku/backend/internal/xid"
)

type Store struct {
	mu             sync.RWMutex
	menuItems      map[string]domain.MenuItem
	menuOrder      []string
	offers         map[string]domain.Offer
	offerOrder     []string
	ordersByID     map[string]domain.Order
	orderLog       []string
	feedbackByID   map[string]domain.Feedback
	feedbackOrder  []string
	adsByID        map[string]domain.Advertisement
	locationStatus map[string]domain.LocationStatus
	auditLogs      []domain.AuditLog
	usersByName    map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD
// environment variables; hardcoded dev defaults are used otherwise, with a
// warning. The in-memory store is never used when DATABASE_URL is set.
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	staffPwd := envOr("SEED_STAFF_PASSWORD", "staff123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_STAFF_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"staff", staffPwd, "staff"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func New() *Store {
	s := &Store{
		menuItems:      make(map[string]domain.MenuItem),
		offers:         make(map[string]domain.Offer),
		ordersByID:     make(map[string]domain.Order),
		feedbackByID:   make(map[string]domain.Feedback),
		adsByID:        make(map[string]domain.Advertisement),
		locationStatus: make(map[string]domain.LocationStatus),
		auditLogs:      make([]domain.AuditLog, 0, 128),
		usersByName:    seedUsers(),
	}
	now := time.Now().UTC()
	for _, loc := range domain.Locations {
		s.locationStatus[loc] = domain.LocationStatus{
			Location:    loc,
			Open:        true,
			OpeningTime: "08:00:00",
			ClosingTime: "20:00:00",
			UpdatedAt:   now,
		}
	}
	return s
}

func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()

	items := []domain.MenuItem{
		{ID: "mi-samosa-can", Name: "Samosa", Price: 20, Category: domain.CategorySnacks, SubCategory: "Fried", Stock: 50, Location: domain.LocationCanteen, ImageURL: "/images/samosa.jpg"},
		{ID: "mi-samosa-caf", Name: "Samosa", Price: 20, Category: domain.CategorySnacks, SubCategory: "Fried", Stock: 30, Location: domain.LocationCafeteria, ImageURL: "/images/samosa.jpg"},
		{ID: "mi-poha-can", Name: "Poha", Price: 30, Category: domain.CategoryBreakfast, Stock: 40, Location: domain.LocationCanteen, ImageURL: "/images/poha.jpg"},
		{ID: "mi-thali-can", Name: "Veg Thali", Price: 80, Category: domain.CategoryLunch, Stock: 25, Location: domain.LocationCanteen, ImageURL: "/images/thali.jpg"},
		{ID: "mi-chai-can", Name: "Masala Chai", Price: 10, Category: domain.CategoryDrinks, Stock: 100, Location: domain.LocationCanteen, ImageURL: "/images/chai.jpg"},
		{ID: "mi-chai-caf", Name: "Masala Chai", Price: 12, Category: domain.CategoryDrinks, Stock: 80, Location: domain.LocationCafeteria, ImageURL: "/images/chai.jpg"},
		{ID: "mi-pen-caf", Name: "Ball Pen", Price: 15, Category: domain.CategoryStationery, Stock: 200, Location: domain.LocationCafeteria, ImageURL: "/images/pen.jpg"},
		{ID: "mi-soap-caf", Name: "Hand Soap", Price: 35, Category: domain.CategoryEssentials, Stock: 60, Location: domain.LocationCafeteria, ImageURL: "/images/soap.jpg"},
	}
	for _, item := range items {
		item.CreatedAt = now
		item.UpdatedAt = now
		s.menuItems[item.ID] = item
		s.menuOrder = append(s.menuOrder, item.ID)
	}

	offers := []domain.Offer{
		{
			ID:                 "of-snack-can",
			Name:               "Snack Hour",
			DiscountPercentage: 10,
			EndDate:            now.AddDate(0, 1, 0).Format("2006-01-02"),
			EndTime:            "18:00:00",
			ApplicableItems:    []string{"mi-samosa-can"},
			Location:           domain.LocationCanteen,
			CreatedAt:          now,
		},
	}
	for _, o := range offers {
		s.offers[o.ID] = o
		s.offerOrder = append(s.offerOrder, o.ID)
	}

	return s
}

func validMenuItem(item domain.MenuItem) bool {
	if item.Name == "" || item.Location == "" || item.Price < 0 || item.Stock < 0 {
		return false
	}
	return domain.IsValidLocation(item.Location)
}

func (s *Store) ListMenuItems(_ context.Context, location string) ([]domain.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.MenuItem, 0, len(s.menuOrder))
	for _, id := range s.menuOrder {
		item, ok := s.menuItems[id]
		if !ok {
			continue
		}
		if location != "" && item.Location != location {
			continue
		}
		items = append(items, cloneMenuItem(item))
	}
	return items, nil
}

func (s *Store) GetMenuItem(_ context.Context, id string) (*domain.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.menuItems[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copied := cloneMenuItem(item)
	return &copied, nil
}

func (s *Store) CreateMenuItem(_ context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !validMenuItem(item) {
		return nil, store.ErrInvalidInput
	}
	if item.ID == "" {
		item.ID = xid.New("mi")
	}
	if _, exists := s.menuItems[item.ID]; exists {
		return nil, store.ErrInvalidInput
	}

	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	s.menuItems[item.ID] = item
	s.menuOrder = append(s.menuOrder, item.ID)
	created := cloneMenuItem(item)
	return &created, nil
}

func (s *Store) UpdateMenuItem(_ context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == "" || !validMenuItem(item) {
		return nil, store.ErrInvalidInput
	}
	existing, exists := s.menuItems[item.ID]
	if !exists {
		return nil, store.ErrNotFound
	}

	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now().UTC()
	s.menuItems[item.ID] = item
	updated := cloneMenuItem(item)
	return &updated, nil
}

func (s *Store) DeleteMenuItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.menuItems[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.menuItems, id)
	s.menuOrder = slices.DeleteFunc(s.menuOrder, func(existing string) bool {
		return existing == id
	})
	return nil
}

func (s *Store) FindMenuItemsByName(_ context.Context, location string, name string) ([]domain.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]domain.MenuItem, 0, 1)
	for _, id := range s.menuOrder {
		item, ok := s.menuItems[id]
		if !ok {
			continue
		}
		if item.Location != location || item.Name != name {
			continue
		}
		matches = append(matches, cloneMenuItem(item))
	}
	return matches, nil
}

func (s *Store) SetMenuItemStock(_ context.Context, id string, stock int) (*domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stock < 0 {
		return nil, store.ErrInvalidInput
	}
	item, exists := s.menuItems[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	item.Stock = stock
	item.UpdatedAt = time.Now().UTC()
	s.menuItems[id] = item
	updated := cloneMenuItem(item)
	return &updated, nil
}

func (s *Store) ListOffers(_ context.Context, location string) ([]domain.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	offers := make([]domain.Offer, 0, len(s.offerOrder))
	for _, id := range s.offerOrder {
		o, ok := s.offers[id]
		if !ok {
			continue
		}
		if location != "" && o.Location != location {
			continue
		}
		offers = append(offers, cloneOffer(o))
	}
	return offers, nil
}

func (s *Store) GetOffer(_ context.Context, id string) (*domain.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, exists := s.offers[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copied := cloneOffer(o)
	return &copied, nil
}

func (s *Store) CreateOffer(_ context.Context, offer domain.Offer) (*domain.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if offer.Name == "" || !domain.IsValidLocation(offer.Location) {
		return nil, store.ErrInvalidInput
	}
	if offer.DiscountPercentage < 0 || offer.DiscountPercentage > 100 {
		return nil, store.ErrInvalidInput
	}
	if offer.ID == "" {
		offer.ID = xid.New("of")
	}
	if _, exists := s.offers[offer.ID]; exists {
		return nil, store.ErrInvalidInput
	}
	if offer.CreatedAt.IsZero() {
		offer.CreatedAt = time.Now().UTC()
	}

	s.offers[offer.ID] = offer
	s.offerOrder = append(s.offerOrder, offer.ID)
	created := cloneOffer(offer)
	return &created, nil
}

func (s *Store) UpdateOffer(_ context.Context, offer domain.Offer) (*domain.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if offer.ID == "" || offer.Name == "" {
		return nil, store.ErrInvalidInput
	}
	if offer.DiscountPercentage < 0 || offer.DiscountPercentage > 100 {
		return nil, store.ErrInvalidInput
	}
	existing, exists := s.offers[offer.ID]
	if !exists {
		return nil, store.ErrNotFound
	}

	offer.Location = existing.Location
	offer.CreatedAt = existing.CreatedAt
	s.offers[offer.ID] = offer
	updated := cloneOffer(offer)
	return &updated, nil
}

func (s *Store) DeleteOffer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.offers[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.offers, id)
	s.offerOrder = slices.DeleteFunc(s.offerOrder, func(existing string) bool {
		return existing == id
	})
	return nil
}

func (s *Store) CreateOrder(_ context.Context, order domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !domain.IsValidLocation(order.Location) || len(order.Lines) == 0 {
		return nil, store.ErrInvalidInput
	}
	if order.ID == "" {
		order.ID = xid.New("ord")
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusPlaced
	}

	s.ordersByID[order.ID] = cloneOrder(order)
	s.orderLog = append(s.orderLog, order.ID)
	created := cloneOrder(order)
	return &created, nil
}

func (s *Store) ListOrders(_ context.Context, location string, limit int) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 50
	}

	orders := make([]domain.Order, 0, limit)
	for i := len(s.orderLog) - 1; i >= 0 && len(orders) < limit; i-- {
		order, ok := s.ordersByID[s.orderLog[i]]
		if !ok {
			continue
		}
		if location != "" && order.Location != location {
			continue
		}
		orders = append(orders, cloneOrder(order))
	}
	return orders, nil
}

func (s *Store) GetDailyRevenue(_ context.Context, location string, date string) (domain.DailyRevenue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := domain.DailyRevenue{Location: location, Date: date}
	byCategory := make(map[string]*domain.DailyRevenueCategory)

	for _, id := range s.orderLog {
		order, ok := s.ordersByID[id]
		if !ok || order.Location != location {
			continue
		}
		if order.CreatedAt.UTC().Format("2006-01-02") != date {
			continue
		}
		report.Orders++
		report.Revenue += order.TotalPrice
		for _, line := range order.Lines {
			report.ItemsSold += int64(line.Qty)
			if line.Discounted {
				report.Discounted++
			}
			entry, ok := byCategory[line.Category]
			if !ok {
				entry = &domain.DailyRevenueCategory{Category: line.Category}
				byCategory[line.Category] = entry
			}
			entry.Qty += int64(line.Qty)
			entry.Revenue += line.LineTotal
		}
	}

	report.ByCategory = make([]domain.DailyRevenueCategory, 0, len(byCategory))
	for _, entry := range byCategory {
		report.ByCategory = append(report.ByCategory, *entry)
	}
	slices.SortFunc(report.ByCategory, func(a, b domain.DailyRevenueCategory) int {
		return cmpString(a.Category, b.Category)
	})

	return report, nil
}

func (s *Store) CreateFeedback(_ context.Context, feedback domain.Feedback) (*domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if feedback.Message == "" {
		return nil, store.ErrInvalidInput
	}
	if feedback.ID == "" {
		feedback.ID = xid.New("fb")
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}

	s.feedbackByID[feedback.ID] = feedback
	s.feedbackOrder = append(s.feedbackOrder, feedback.ID)
	created := feedback
	return &created, nil
}

func (s *Store) ListFeedback(_ context.Context, limit int) ([]domain.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 100
	}

	items := make([]domain.Feedback, 0, limit)
	for i := len(s.feedbackOrder) - 1; i >= 0 && len(items) < limit; i-- {
		fb, ok := s.feedbackByID[s.feedbackOrder[i]]
		if !ok {
			continue
		}
		items = append(items, fb)
	}
	return items, nil
}

func (s *Store) MarkFeedbackRead(_ context.Context, id string) (*domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fb, exists := s.feedbackByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	fb.Read = true
	s.feedbackByID[id] = fb
	updated := fb
	return &updated, nil
}

func (s *Store) DeleteFeedback(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.feedbackByID[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.feedbackByID, id)
	s.feedbackOrder = slices.DeleteFunc(s.feedbackOrder, func(existing string) bool {
		return existing == id
	})
	return nil
}

func (s *Store) DeleteAllFeedback(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := len(s.feedbackByID)
	s.feedbackByID = make(map[string]domain.Feedback)
	s.feedbackOrder = s.feedbackOrder[:0]
	return deleted, nil
}

func (s *Store) ListAdvertisements(_ context.Context, location string) ([]domain.Advertisement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ads := make([]domain.Advertisement, 0, len(s.adsByID))
	for _, ad := range s.adsByID {
		if location != "" && ad.Location != location {
			continue
		}
		ads = append(ads, ad)
	}
	slices.SortFunc(ads, func(a, b domain.Advertisement) int {
		return cmpString(a.ID, b.ID)
	})
	return ads, nil
}

func (s *Store) CreateAdvertisement(_ context.Context, ad domain.Advertisement) (*domain.Advertisement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ad.Title == "" || ad.ImageURL == "" || !domain.IsValidLocation(ad.Location) {
		return nil, store.ErrInvalidInput
	}
	if ad.ID == "" {
		ad.ID = xid.New("ad")
	}
	if ad.CreatedAt.IsZero() {
		ad.CreatedAt = time.Now().UTC()
	}

	s.adsByID[ad.ID] = ad
	created := ad
	return &created, nil
}

func (s *Store) DeleteAdvertisement(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.adsByID[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.adsByID, id)
	return nil
}

func (s *Store) GetLocationStatus(_ context.Context, location string) (domain.LocationStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, exists := s.locationStatus[location]
	if !exists {
		return domain.LocationStatus{}, store.ErrNotFound
	}
	return status, nil
}

func (s *Store) SetLocationStatus(_ context.Context, status domain.LocationStatus) (*domain.LocationStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !domain.IsValidLocation(status.Location) {
		return nil, store.ErrInvalidInput
	}
	status.UpdatedAt = time.Now().UTC()
	s.locationStatus[status.Location] = status
	updated := status
	return &updated, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, location string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 100
	}

	logs := make([]domain.AuditLog, 0, limit)
	for i := len(s.auditLogs) - 1; i >= 0 && len(logs) < limit; i-- {
		entry := s.auditLogs[i]
		if location != "" && entry.Location != location {
			continue
		}
		if !from.IsZero() && entry.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && entry.CreatedAt.After(to) {
			continue
		}
		logs = append(logs, entry)
	}
	return logs, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" {
		return store.ErrInvalidInput
	}
	if _, exists := s.usersByName[username]; exists {
		return store.ErrInvalidInput
	}
	user.Username = username
	s.usersByName[username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByName))
	for _, user := range s.usersByName {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.usersByName[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByName[username] = user
	return nil
}

// cloneMenuItem is a value copy today (MenuItem has no slice or map
// fields); the seam keeps hand-out semantics uniform with cloneOffer and
// cloneOrder if the struct ever grows reference fields.
func cloneMenuItem(item domain.MenuItem) domain.MenuItem {
	return item
}

func cloneOffer(o domain.Offer) domain.Offer {
	copied := o
	copied.ApplicableCategories = slices.Clone(o.ApplicableCategories)
	copied.ApplicableItems = slices.Clone(o.ApplicableItems)
	return copied
}

func cloneOrder(order domain.Order) domain.Order {
	copied := order
	copied.Lines = slices.Clone(order.Lines)
	return copied
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
