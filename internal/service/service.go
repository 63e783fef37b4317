package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"kantinku/backend/internal/domain"
	"kantinku/backend/internal/offer"
	"kantinku/backend/internal/store"
	"kantinku/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo            store.Repository
	pricer          *offer.Engine
	defaultLocation string
}

func New(repo store.Repository, pricer *offer.Engine, defaultLocation string) *Service {
	if !domain.IsValidLocation(defaultLocation) {
		defaultLocation = domain.LocationCanteen
	}
	if pricer == nil {
		pricer = offer.NewEngine(nil, 0)
	}

	return &Service{
		repo:            repo,
		pricer:          pricer,
		defaultLocation: defaultLocation,
	}
}

// ListMenu returns the priced menu board for a location: every item joined
// against the location's offers through the resolver, with availability
// derived from stock.
func (s *Service) ListMenu(ctx context.Context, location string) (domain.MenuBoard, error) {
	location = s.normalizeLocation(location)
	if !domain.IsValidLocation(location) {
		return domain.MenuBoard{}, store.ErrInvalidInput
	}

	items, err := s.repo.ListMenuItems(ctx, location)
	if err != nil {
		return domain.MenuBoard{}, err
	}
	offers, err := s.repo.ListOffers(ctx, location)
	if err != nil {
		return domain.MenuBoard{}, err
	}

	return s.pricer.BuildBoard(ctx, location, items, offers), nil
}

func (s *Service) ListMenuItems(ctx context.Context, location string) ([]domain.MenuItem, error) {
	location = strings.TrimSpace(location)
	if location != "" && !domain.IsValidLocation(location) {
		return nil, store.ErrInvalidInput
	}
	return s.repo.ListMenuItems(ctx, location)
}

func (s *Service) GetMenuItem(ctx context.Context, id string) (domain.MenuItem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.MenuItem{}, store.ErrInvalidInput
	}
	item, err := s.repo.GetMenuItem(ctx, id)
	if err != nil {
		return domain.MenuItem{}, err
	}
	return *item, nil
}

// CreateMenuItem writes one menu item, or one per location when sync_both
// is set. The two creates run sequentially and are not transactional: if
// the second fails the first stays committed, the partial state is visible
// in the result, and the error is surfaced to the caller.
func (s *Service) CreateMenuItem(ctx context.Context, req domain.MenuItemCreateRequest) (domain.SyncResult, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.SyncResult{}, fmt.Errorf("admin role required")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	req.SubCategory = strings.TrimSpace(req.SubCategory)
	req.ImageURL = strings.TrimSpace(req.ImageURL)
	req.Location = s.normalizeLocation(req.Location)

	if err := validateItemFields(req.Name, req.Category, req.SubCategory, req.Price, req.Stock); err != nil {
		return domain.SyncResult{}, err
	}
	if req.ImageURL == "" {
		return domain.SyncResult{}, fmt.Errorf("image is required: %w", store.ErrInvalidInput)
	}
	if !domain.IsValidLocation(req.Location) {
		return domain.SyncResult{}, fmt.Errorf("invalid location %q: %w", req.Location, store.ErrInvalidInput)
	}

	// Names are the twin-matching key, so a second item with the same name
	// at one location would make every later sync ambiguous.
	if err := s.ensureNameFree(ctx, req.Location, req.Name); err != nil {
		return domain.SyncResult{}, err
	}

	result := domain.SyncResult{}
	primary, err := s.repo.CreateMenuItem(ctx, domain.MenuItem{
		ID:          xid.New("mi"),
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		Stock:       req.Stock,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return domain.SyncResult{}, err
	}
	result.Primary = domain.SyncOutcome{Location: req.Location, Status: domain.SyncStatusCreated, Item: primary}
	s.pricer.Invalidate(ctx, req.Location)
	s.logAudit(ctx, req.Location, "menu_item_create", "menu_item", primary.ID, fmt.Sprintf("name=%s,price=%d,stock=%d,sync=%t", primary.Name, primary.Price, primary.Stock, req.SyncBoth))

	if !req.SyncBoth {
		return result, nil
	}

	other := domain.OtherLocation(req.Location)
	if err := s.ensureNameFree(ctx, other, req.Name); err != nil {
		result.Secondary = &domain.SyncOutcome{Location: other, Status: domain.SyncStatusFailed, Error: err.Error()}
		return result, fmt.Errorf("second location create failed: %w", err)
	}

	// Same descriptive fields and the same entered stock, but an
	// independent id: from here on the two records are unrelated.
	secondary, err := s.repo.CreateMenuItem(ctx, domain.MenuItem{
		ID:          xid.New("mi"),
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		Stock:       req.Stock,
		Location:    other,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		result.Secondary = &domain.SyncOutcome{Location: other, Status: domain.SyncStatusFailed, Error: err.Error()}
		return result, fmt.Errorf("second location create failed: %w", err)
	}
	result.Secondary = &domain.SyncOutcome{Location: other, Status: domain.SyncStatusCreated, Item: secondary}
	s.pricer.Invalidate(ctx, other)
	s.logAudit(ctx, other, "menu_item_create", "menu_item", secondary.ID, fmt.Sprintf("name=%s,synced_from=%s", secondary.Name, req.Location))

	return result, nil
}

// UpdateMenuItem updates the item identified by id and, when sync_both is
// set, upserts the name-matched twin in the other location best-effort.
// Twin failure is logged and recorded in the result but never fails the
// primary edit.
func (s *Service) UpdateMenuItem(ctx context.Context, id string, req domain.MenuItemUpdateRequest) (domain.SyncResult, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.SyncResult{}, fmt.Errorf("admin role required")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return domain.SyncResult{}, store.ErrInvalidInput
	}

	existing, err := s.repo.GetMenuItem(ctx, id)
	if err != nil {
		return domain.SyncResult{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.SyncResult{}, store.ErrInvalidInput
		}
		if name != existing.Name {
			if err := s.ensureNameFree(ctx, existing.Location, name); err != nil {
				return domain.SyncResult{}, err
			}
		}
		updated.Name = name
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return domain.SyncResult{}, store.ErrInvalidInput
		}
		updated.Price = *req.Price
	}
	if req.Category != nil {
		updated.Category = strings.TrimSpace(*req.Category)
	}
	if req.SubCategory != nil {
		updated.SubCategory = strings.TrimSpace(*req.SubCategory)
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return domain.SyncResult{}, store.ErrInvalidInput
		}
		updated.Stock = *req.Stock
	}
	if req.ImageURL != nil {
		image := strings.TrimSpace(*req.ImageURL)
		if image == "" {
			return domain.SyncResult{}, store.ErrInvalidInput
		}
		updated.ImageURL = image
	}
	if err := validateItemFields(updated.Name, updated.Category, updated.SubCategory, updated.Price, updated.Stock); err != nil {
		return domain.SyncResult{}, err
	}

	saved, err := s.repo.UpdateMenuItem(ctx, updated)
	if err != nil {
		return domain.SyncResult{}, err
	}
	result := domain.SyncResult{
		Primary: domain.SyncOutcome{Location: saved.Location, Status: domain.SyncStatusUpdated, Item: saved},
	}
	s.pricer.Invalidate(ctx, saved.Location)
	s.logAudit(ctx, saved.Location, "menu_item_update", "menu_item", saved.ID, fmt.Sprintf("name=%s,price=%d,sync=%t", saved.Name, saved.Price, req.SyncBoth))

	if !req.SyncBoth {
		return result, nil
	}

	// saved.ImageURL is the new image when the edit changed it, or the
	// existing reference otherwise, so the twin never loses its picture.
	secondary := s.syncTwin(ctx, *saved, saved.ImageURL)
	result.Secondary = &secondary
	return result, nil
}

// syncTwin is the name-matched upsert in the other location. Propagates
// price, category, sub-category and image; never stock, never any order
// history. Every failure path logs and returns a failed outcome instead of
// an error.
//
// The read-then-write here is a known race when two admins edit twins
// concurrently; last write wins.
func (s *Service) syncTwin(ctx context.Context, primary domain.MenuItem, imageRef string) domain.SyncOutcome {
	other := domain.OtherLocation(primary.Location)
	outcome := domain.SyncOutcome{Location: other}

	matches, err := s.repo.FindMenuItemsByName(ctx, other, primary.Name)
	if err != nil {
		log.Printf("[service] WARN: twin lookup failed name=%q location=%s: %v", primary.Name, other, err)
		outcome.Status = domain.SyncStatusFailed
		outcome.Error = err.Error()
		return outcome
	}

	switch {
	case len(matches) > 1:
		// Ambiguous twin: refuse to guess which record to update.
		log.Printf("[service] WARN: twin sync skipped, %d items named %q at %s: %v", len(matches), primary.Name, other, store.ErrDuplicateName)
		outcome.Status = domain.SyncStatusFailed
		outcome.Error = store.ErrDuplicateName.Error()
		return outcome

	case len(matches) == 0:
		created, err := s.repo.CreateMenuItem(ctx, domain.MenuItem{
			ID:          xid.New("mi"),
			Name:        primary.Name,
			Price:       primary.Price,
			Category:    primary.Category,
			SubCategory: primary.SubCategory,
			Stock:       primary.Stock,
			Location:    other,
			ImageURL:    imageRef,
		})
		if err != nil {
			log.Printf("[service] WARN: twin create failed name=%q location=%s: %v", primary.Name, other, err)
			outcome.Status = domain.SyncStatusFailed
			outcome.Error = err.Error()
			return outcome
		}
		s.pricer.Invalidate(ctx, other)
		s.logAudit(ctx, other, "menu_item_sync_create", "menu_item", created.ID, fmt.Sprintf("name=%s,synced_from=%s", created.Name, primary.Location))
		outcome.Status = domain.SyncStatusCreated
		outcome.Item = created
		return outcome

	default:
		twin := matches[0]
		twin.Price = primary.Price
		twin.Category = primary.Category
		twin.SubCategory = primary.SubCategory
		twin.ImageURL = imageRef
		// twin.Stock stays untouched: stock is per-location state.

		updated, err := s.repo.UpdateMenuItem(ctx, twin)
		if err != nil {
			log.Printf("[service] WARN: twin update failed id=%s location=%s: %v", twin.ID, other, err)
			outcome.Status = domain.SyncStatusFailed
			outcome.Error = err.Error()
			return outcome
		}
		s.pricer.Invalidate(ctx, other)
		s.logAudit(ctx, other, "menu_item_sync_update", "menu_item", updated.ID, fmt.Sprintf("name=%s,price=%d,synced_from=%s", updated.Name, updated.Price, primary.Location))
		outcome.Status = domain.SyncStatusUpdated
		outcome.Item = updated
		return outcome
	}
}

func (s *Service) DeleteMenuItem(ctx context.Context, id string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return fmt.Errorf("admin role required")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return store.ErrInvalidInput
	}

	item, err := s.repo.GetMenuItem(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteMenuItem(ctx, id); err != nil {
		return err
	}
	s.pricer.Invalidate(ctx, item.Location)
	s.logAudit(ctx, item.Location, "menu_item_delete", "menu_item", id, fmt.Sprintf("name=%s", item.Name))
	return nil
}

func (s *Service) UpdateMenuItemStock(ctx context.Context, id string, stock int) (domain.MenuItem, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.MenuItem{}, fmt.Errorf("admin role required")
	}

	id = strings.TrimSpace(id)
	if id == "" || stock < 0 {
		return domain.MenuItem{}, store.ErrInvalidInput
	}

	updated, err := s.repo.SetMenuItemStock(ctx, id, stock)
	if err != nil {
		return domain.MenuItem{}, err
	}
	s.pricer.Invalidate(ctx, updated.Location)
	s.logAudit(ctx, updated.Location, "menu_item_stock", "menu_item", id, fmt.Sprintf("stock=%d", stock))
	return *updated, nil
}

// ListOffers returns the location's offers in collection order, each
// annotated with its display expiry label.
func (s *Service) ListOffers(ctx context.Context, location string) ([]domain.OfferSummary, error) {
	location = s.normalizeLocation(location)
	if !domain.IsValidLocation(location) {
		return nil, store.ErrInvalidInput
	}

	offers, err := s.repo.ListOffers(ctx, location)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	summaries := make([]domain.OfferSummary, 0, len(offers))
	for _, o := range offers {
		summaries = append(summaries, domain.OfferSummary{Offer: o, Expired: offer.IsExpired(o, now)})
	}
	return summaries, nil
}

func (s *Service) CreateOffer(ctx context.Context, req domain.OfferCreateRequest) (domain.Offer, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Offer{}, fmt.Errorf("admin role required")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Location = s.normalizeLocation(req.Location)

	if req.Name == "" {
		return domain.Offer{}, fmt.Errorf("offer name is required: %w", store.ErrInvalidInput)
	}
	if !domain.IsValidLocation(req.Location) {
		return domain.Offer{}, fmt.Errorf("invalid location %q: %w", req.Location, store.ErrInvalidInput)
	}
	if req.DiscountPercentage < 0 || req.DiscountPercentage > 100 {
		return domain.Offer{}, fmt.Errorf("discount percentage out of range: %w", store.ErrInvalidInput)
	}
	if len(req.ApplicableItems) == 0 {
		return domain.Offer{}, fmt.Errorf("at least one applicable item is required: %w", store.ErrInvalidInput)
	}
	if err := offer.ValidateWindow(req.StartDate, req.EndDate, req.StartTime, req.EndTime); err != nil {
		return domain.Offer{}, fmt.Errorf("%v: %w", err, store.ErrInvalidInput)
	}
	for _, itemID := range req.ApplicableItems {
		item, err := s.repo.GetMenuItem(ctx, itemID)
		if err != nil {
			return domain.Offer{}, fmt.Errorf("applicable item %s: %w", itemID, err)
		}
		if item.Location != req.Location {
			return domain.Offer{}, fmt.Errorf("item %s belongs to %s, not %s: %w", itemID, item.Location, req.Location, store.ErrInvalidInput)
		}
	}

	created, err := s.repo.CreateOffer(ctx, domain.Offer{
		ID:                   xid.New("of"),
		Name:                 req.Name,
		DiscountPercentage:   req.DiscountPercentage,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		ApplicableCategories: req.ApplicableCategories,
		ApplicableItems:      req.ApplicableItems,
		Location:             req.Location,
		CreatedAt:            time.Now().UTC(),
	})
	if err != nil {
		return domain.Offer{}, err
	}
	s.pricer.Invalidate(ctx, created.Location)
	s.logAudit(ctx, created.Location, "offer_create", "offer", created.ID, fmt.Sprintf("name=%s,pct=%.1f,items=%d", created.Name, created.DiscountPercentage, len(created.ApplicableItems)))
	return *created, nil
}

func (s *Service) UpdateOffer(ctx context.Context, id string, req domain.OfferUpdateRequest) (domain.Offer, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Offer{}, fmt.Errorf("admin role required")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Offer{}, store.ErrInvalidInput
	}

	existing, err := s.repo.GetOffer(ctx, id)
	if err != nil {
		return domain.Offer{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Offer{}, store.ErrInvalidInput
		}
		updated.Name = name
	}
	if req.DiscountPercentage != nil {
		if *req.DiscountPercentage < 0 || *req.DiscountPercentage > 100 {
			return domain.Offer{}, store.ErrInvalidInput
		}
		updated.DiscountPercentage = *req.DiscountPercentage
	}
	if req.StartDate != nil {
		updated.StartDate = strings.TrimSpace(*req.StartDate)
	}
	if req.EndDate != nil {
		updated.EndDate = strings.TrimSpace(*req.EndDate)
	}
	if req.StartTime != nil {
		updated.StartTime = strings.TrimSpace(*req.StartTime)
	}
	if req.EndTime != nil {
		updated.EndTime = strings.TrimSpace(*req.EndTime)
	}
	if req.ApplicableCategories != nil {
		updated.ApplicableCategories = *req.ApplicableCategories
	}
	if req.ApplicableItems != nil {
		if len(*req.ApplicableItems) == 0 {
			return domain.Offer{}, store.ErrInvalidInput
		}
		for _, itemID := range *req.ApplicableItems {
			item, err := s.repo.GetMenuItem(ctx, itemID)
			if err != nil {
				return domain.Offer{}, fmt.Errorf("applicable item %s: %w", itemID, err)
			}
			if item.Location != existing.Location {
				return domain.Offer{}, fmt.Errorf("item %s belongs to %s, not %s: %w", itemID, item.Location, existing.Location, store.ErrInvalidInput)
			}
		}
		updated.ApplicableItems = *req.ApplicableItems
	}
	if err := offer.ValidateWindow(updated.StartDate, updated.EndDate, updated.StartTime, updated.EndTime); err != nil {
		return domain.Offer{}, fmt.Errorf("%v: %w", err, store.ErrInvalidInput)
	}

	saved, err := s.repo.UpdateOffer(ctx, updated)
	if err != nil {
		return domain.Offer{}, err
	}
	s.pricer.Invalidate(ctx, saved.Location)
	s.logAudit(ctx, saved.Location, "offer_update", "offer", saved.ID, fmt.Sprintf("name=%s,pct=%.1f", saved.Name, saved.DiscountPercentage))
	return *saved, nil
}

func (s *Service) DeleteOffer(ctx context.Context, id string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return fmt.Errorf("admin role required")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return store.ErrInvalidInput
	}

	existing, err := s.repo.GetOffer(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteOffer(ctx, id); err != nil {
		return err
	}
	s.pricer.Invalidate(ctx, existing.Location)
	s.logAudit(ctx, existing.Location, "offer_delete", "offer", id, fmt.Sprintf("name=%s", existing.Name))
	return nil
}

// PlaceOrder records a sale at a location. Each line is priced through the
// offer resolver at order time and the item's stock is decremented; the
// order then feeds the daily revenue report for its location only.
func (s *Service) PlaceOrder(ctx context.Context, req domain.OrderCreateRequest) (domain.Order, error) {
	req.Location = s.normalizeLocation(req.Location)
	if !domain.IsValidLocation(req.Location) {
		return domain.Order{}, store.ErrInvalidInput
	}
	if len(req.Lines) == 0 {
		return domain.Order{}, fmt.Errorf("order has no lines: %w", store.ErrInvalidInput)
	}

	offers, err := s.repo.ListOffers(ctx, req.Location)
	if err != nil {
		return domain.Order{}, err
	}

	lines := make([]domain.OrderLine, 0, len(req.Lines))
	var total int64
	// Quantities are aggregated per item so an order with several lines for
	// the same item is validated against the combined demand, not line by
	// line against the same undecremented stock.
	items := make(map[string]*domain.MenuItem, len(req.Lines))
	needed := make(map[string]int, len(req.Lines))
	itemOrder := make([]string, 0, len(req.Lines))
	for _, reqLine := range req.Lines {
		if reqLine.Qty < 1 {
			return domain.Order{}, store.ErrInvalidInput
		}
		item, fetched := items[reqLine.ItemID]
		if !fetched {
			got, err := s.repo.GetMenuItem(ctx, reqLine.ItemID)
			if err != nil {
				return domain.Order{}, fmt.Errorf("order item %s: %w", reqLine.ItemID, err)
			}
			if got.Location != req.Location {
				return domain.Order{}, fmt.Errorf("item %s is not sold at %s: %w", got.Name, req.Location, store.ErrInvalidInput)
			}
			item = got
			items[reqLine.ItemID] = item
			itemOrder = append(itemOrder, reqLine.ItemID)
		}
		needed[reqLine.ItemID] += reqLine.Qty
		if item.Stock < needed[reqLine.ItemID] {
			return domain.Order{}, fmt.Errorf("item %s: %w", item.Name, store.ErrInsufficientStock)
		}

		discount := offer.Resolve(*item, offers)
		unitPrice := item.Price
		offerName := ""
		if discount.IsOffer {
			unitPrice = discount.OfferPrice
			offerName = discount.OfferName
		}

		lineTotal := unitPrice * int64(reqLine.Qty)
		lines = append(lines, domain.OrderLine{
			ItemID:     item.ID,
			ItemName:   item.Name,
			Qty:        reqLine.Qty,
			UnitPrice:  unitPrice,
			LineTotal:  lineTotal,
			Category:   item.Category,
			OfferName:  offerName,
			Discounted: discount.IsOffer,
		})
		total += lineTotal
	}

	// Stock decrements run sequentially after validation, one write per
	// item with its aggregate quantity; a failure here leaves earlier
	// decrements in place, matching the non-transactional write model
	// everywhere else in this service.
	for _, itemID := range itemOrder {
		if _, err := s.repo.SetMenuItemStock(ctx, itemID, items[itemID].Stock-needed[itemID]); err != nil {
			return domain.Order{}, err
		}
	}

	created, err := s.repo.CreateOrder(ctx, domain.Order{
		ID:           xid.New("ord"),
		Location:     req.Location,
		CustomerName: strings.TrimSpace(req.CustomerName),
		Lines:        lines,
		TotalPrice:   total,
		Status:       domain.OrderStatusPlaced,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return domain.Order{}, err
	}
	s.pricer.Invalidate(ctx, req.Location)
	s.logAudit(ctx, req.Location, "order_place", "order", created.ID, fmt.Sprintf("lines=%d,total=%d", len(created.Lines), created.TotalPrice))
	return *created, nil
}

func (s *Service) ListOrders(ctx context.Context, location string, limit int) ([]domain.Order, error) {
	location = strings.TrimSpace(location)
	if location != "" && !domain.IsValidLocation(location) {
		return nil, store.ErrInvalidInput
	}
	if limit < 1 {
		limit = 50
	}
	return s.repo.ListOrders(ctx, location, limit)
}

func (s *Service) DailyRevenue(ctx context.Context, location string, date string) (domain.DailyRevenue, error) {
	location = s.normalizeLocation(location)
	if !domain.IsValidLocation(location) {
		return domain.DailyRevenue{}, store.ErrInvalidInput
	}
	date = strings.TrimSpace(date)
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return domain.DailyRevenue{}, fmt.Errorf("invalid date %q: %w", date, store.ErrInvalidInput)
	}
	return s.repo.GetDailyRevenue(ctx, location, date)
}

func (s *Service) SubmitFeedback(ctx context.Context, req domain.FeedbackCreateRequest) (domain.Feedback, error) {
	req.Message = strings.TrimSpace(req.Message)
	req.Location = strings.TrimSpace(req.Location)
	if req.Message == "" {
		return domain.Feedback{}, fmt.Errorf("message is required: %w", store.ErrInvalidInput)
	}
	if req.Location != "" && !domain.IsValidLocation(req.Location) {
		return domain.Feedback{}, store.ErrInvalidInput
	}

	created, err := s.repo.CreateFeedback(ctx, domain.Feedback{
		ID:        xid.New("fb"),
		Name:      strings.TrimSpace(req.Name),
		Message:   req.Message,
		Location:  req.Location,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return domain.Feedback{}, err
	}
	return *created, nil
}

func (s *Service) ListFeedback(ctx context.Context, limit int) ([]domain.Feedback, error) {
	if limit < 1 {
		limit = 100
	}
	return s.repo.ListFeedback(ctx, limit)
}

func (s *Service) MarkFeedbackRead(ctx context.Context, id string) (domain.Feedback, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Feedback{}, store.ErrInvalidInput
	}
	updated, err := s.repo.MarkFeedbackRead(ctx, id)
	if err != nil {
		return domain.Feedback{}, err
	}
	return *updated, nil
}

func (s *Service) DeleteFeedback(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return store.ErrInvalidInput
	}
	return s.repo.DeleteFeedback(ctx, id)
}

func (s *Service) DeleteAllFeedback(ctx context.Context) (int, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return 0, fmt.Errorf("admin role required")
	}
	deleted, err := s.repo.DeleteAllFeedback(ctx)
	if err != nil {
		return 0, err
	}
	s.logAudit(ctx, "", "feedback_delete_all", "feedback", "", fmt.Sprintf("deleted=%d", deleted))
	return deleted, nil
}

func (s *Service) ListAdvertisements(ctx context.Context, location string) ([]domain.Advertisement, error) {
	location = strings.TrimSpace(location)
	if location != "" && !domain.IsValidLocation(location) {
		return nil, store.ErrInvalidInput
	}
	return s.repo.ListAdvertisements(ctx, location)
}

func (s *Service) CreateAdvertisement(ctx context.Context, req domain.AdvertisementCreateRequest) (domain.Advertisement, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Advertisement{}, fmt.Errorf("admin role required")
	}

	req.Title = strings.TrimSpace(req.Title)
	req.ImageURL = strings.TrimSpace(req.ImageURL)
	req.Location = s.normalizeLocation(req.Location)
	if req.Title == "" || req.ImageURL == "" {
		return domain.Advertisement{}, store.ErrInvalidInput
	}
	if !domain.IsValidLocation(req.Location) {
		return domain.Advertisement{}, store.ErrInvalidInput
	}

	created, err := s.repo.CreateAdvertisement(ctx, domain.Advertisement{
		ID:        xid.New("ad"),
		Title:     req.Title,
		ImageURL:  req.ImageURL,
		Location:  req.Location,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return domain.Advertisement{}, err
	}
	s.logAudit(ctx, created.Location, "advertisement_create", "advertisement", created.ID, fmt.Sprintf("title=%s", created.Title))
	return *created, nil
}

func (s *Service) DeleteAdvertisement(ctx context.Context, id string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return fmt.Errorf("admin role required")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return store.ErrInvalidInput
	}
	if err := s.repo.DeleteAdvertisement(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "", "advertisement_delete", "advertisement", id, "")
	return nil
}

func (s *Service) LocationStatus(ctx context.Context, location string) (domain.LocationStatus, error) {
	location = s.normalizeLocation(location)
	if !domain.IsValidLocation(location) {
		return domain.LocationStatus{}, store.ErrInvalidInput
	}
	return s.repo.GetLocationStatus(ctx, location)
}

func (s *Service) UpdateLocationStatus(ctx context.Context, location string, req domain.LocationStatusUpdateRequest) (domain.LocationStatus, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.LocationStatus{}, fmt.Errorf("admin role required")
	}

	location = s.normalizeLocation(location)
	if !domain.IsValidLocation(location) {
		return domain.LocationStatus{}, store.ErrInvalidInput
	}

	current, err := s.repo.GetLocationStatus(ctx, location)
	if err != nil {
		return domain.LocationStatus{}, err
	}

	if req.Open != nil {
		current.Open = *req.Open
	}
	if req.OpeningTime != nil {
		t := strings.TrimSpace(*req.OpeningTime)
		if t != "" {
			if _, err := time.Parse("15:04:05", t); err != nil {
				return domain.LocationStatus{}, fmt.Errorf("invalid opening time %q: %w", t, store.ErrInvalidInput)
			}
		}
		current.OpeningTime = t
	}
	if req.ClosingTime != nil {
		t := strings.TrimSpace(*req.ClosingTime)
		if t != "" {
			if _, err := time.Parse("15:04:05", t); err != nil {
				return domain.LocationStatus{}, fmt.Errorf("invalid closing time %q: %w", t, store.ErrInvalidInput)
			}
		}
		current.ClosingTime = t
	}

	saved, err := s.repo.SetLocationStatus(ctx, current)
	if err != nil {
		return domain.LocationStatus{}, err
	}
	s.logAudit(ctx, location, "location_status_update", "location", location, fmt.Sprintf("open=%t,hours=%s-%s", saved.Open, saved.OpeningTime, saved.ClosingTime))
	return *saved, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, location string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	location = strings.TrimSpace(location)
	if location != "" && !domain.IsValidLocation(location) {
		return nil, store.ErrInvalidInput
	}
	if limit < 1 {
		limit = 100
	}
	return s.repo.ListAuditLogs(ctx, location, from, to, limit)
}

// ensureNameFree rejects a create or rename that would introduce a second
// item with the same name at one location, since name is the twin-matching
// key.
func (s *Service) ensureNameFree(ctx context.Context, location string, name string) error {
	matches, err := s.repo.FindMenuItemsByName(ctx, location, name)
	if err != nil {
		return err
	}
	if len(matches) > 0 {
		return fmt.Errorf("item %q already exists at %s: %w", name, location, store.ErrDuplicateName)
	}
	return nil
}

func (s *Service) normalizeLocation(location string) string {
	location = strings.ToLower(strings.TrimSpace(location))
	if location == "" {
		return s.defaultLocation
	}
	return location
}

func validateItemFields(name, category, subCategory string, price int64, stock int) error {
	if name == "" {
		return fmt.Errorf("name is required: %w", store.ErrInvalidInput)
	}
	if !domain.IsValidCategory(category) {
		return fmt.Errorf("invalid category %q: %w", category, store.ErrInvalidInput)
	}
	if category == domain.CategorySnacks && subCategory == "" {
		return fmt.Errorf("sub-category is required for %s: %w", domain.CategorySnacks, store.ErrInvalidInput)
	}
	if price < 0 {
		return fmt.Errorf("price must not be negative: %w", store.ErrInvalidInput)
	}
	if stock < 0 {
		return fmt.Errorf("stock must not be negative: %w", store.ErrInvalidInput)
	}
	return nil
}

func (s *Service) logAudit(ctx context.Context, location string, action string, entityType string, entityID string, detail string) {
	actor, _ := ActorFromContext(ctx)
	entry := domain.AuditLog{
		ID:            xid.New("audit"),
		Location:      location,
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		log.Printf("[service] WARN: failed to write audit log action=%s: %v", action, err)
	}
}
