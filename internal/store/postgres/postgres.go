package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"kantinku/backend/internal/domain"
	"kantinku/backend/internal/store"
	"kantinku/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// ensureSchema provisions the tables on startup so a fresh database works
// without an external migration step. Statements are idempotent.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS menu_items (
			id           TEXT PRIMARY KEY,
			name         TEXT NOT NULL,
			price        BIGINT NOT NULL,
			category     TEXT NOT NULL,
			sub_category TEXT NOT NULL DEFAULT '',
			stock        INTEGER NOT NULL,
			location     TEXT NOT NULL,
			image_url    TEXT NOT NULL DEFAULT '',
			created_at   TIMESTAMPTZ NOT NULL,
			updated_at   TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_menu_items_location ON menu_items (location);

		CREATE TABLE IF NOT EXISTS offers (
			id                    TEXT PRIMARY KEY,
			name                  TEXT NOT NULL,
			discount_percentage   DOUBLE PRECISION NOT NULL,
			start_date            TEXT NOT NULL DEFAULT '',
			end_date              TEXT NOT NULL DEFAULT '',
			start_time            TEXT NOT NULL DEFAULT '',
			end_time              TEXT NOT NULL DEFAULT '',
			applicable_categories TEXT NOT NULL DEFAULT '[]',
			applicable_items      TEXT NOT NULL DEFAULT '[]',
			location              TEXT NOT NULL,
			created_at            TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_offers_location ON offers (location);

		CREATE TABLE IF NOT EXISTS orders (
			id            TEXT PRIMARY KEY,
			location      TEXT NOT NULL,
			customer_name TEXT NOT NULL DEFAULT '',
			lines         TEXT NOT NULL,
			total_price   BIGINT NOT NULL,
			status        TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_orders_location_created ON orders (location, created_at);

		CREATE TABLE IF NOT EXISTS feedback (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL DEFAULT '',
			message    TEXT NOT NULL,
			location   TEXT NOT NULL,
			read       BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS advertisements (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			image_url  TEXT NOT NULL DEFAULT '',
			location   TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS location_status (
			location     TEXT PRIMARY KEY,
			open         BOOLEAN NOT NULL,
			opening_time TEXT NOT NULL DEFAULT '',
			closing_time TEXT NOT NULL DEFAULT '',
			updated_at   TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS audit_logs (
			id             TEXT PRIMARY KEY,
			location       TEXT NOT NULL,
			actor_username TEXT NOT NULL,
			actor_role     TEXT NOT NULL,
			action         TEXT NOT NULL,
			entity_type    TEXT NOT NULL,
			entity_id      TEXT NOT NULL,
			detail         TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs (created_at);

		CREATE TABLE IF NOT EXISTS users (
			username   TEXT PRIMARY KEY,
			password   TEXT NOT NULL,
			role       TEXT NOT NULL,
			active     BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL
		);
	`)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListMenuItems(ctx context.Context, location string) ([]domain.MenuItem, error) {
	query := `
		SELECT id, name, price, category, sub_category, stock, location, image_url, created_at, updated_at
		FROM menu_items
		ORDER BY created_at, id
	`
	args := []any{}
	if location != "" {
		query = `
			SELECT id, name, price, category, sub_category, stock, location, image_url, created_at, updated_at
			FROM menu_items
			WHERE location = $1
			ORDER BY created_at, id
		`
		args = append(args, location)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.MenuItem, 0, 64)
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetMenuItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, price, category, sub_category, stock, location, image_url, created_at, updated_at
		FROM menu_items
		WHERE id = $1
	`, id)

	item, err := scanMenuItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (s *Store) CreateMenuItem(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	if item.Name == "" || item.Location == "" || item.Price < 0 || item.Stock < 0 {
		return nil, store.ErrInvalidInput
	}
	if item.ID == "" {
		item.ID = xid.New("mi")
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO menu_items (id, name, price, category, sub_category, stock, location, image_url, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, item.ID, item.Name, item.Price, item.Category, item.SubCategory, item.Stock, item.Location, item.ImageURL, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}

	created := item
	return &created, nil
}

func (s *Store) UpdateMenuItem(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	if item.ID == "" || item.Name == "" || item.Price < 0 || item.Stock < 0 {
		return nil, store.ErrInvalidInput
	}

	item.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE menu_items
		SET name = $2, price = $3, category = $4, sub_category = $5, stock = $6, image_url = $7, updated_at = $8
		WHERE id = $1
	`, item.ID, item.Name, item.Price, item.Category, item.SubCategory, item.Stock, item.ImageURL, item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return s.GetMenuItem(ctx, item.ID)
}

func (s *Store) DeleteMenuItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) FindMenuItemsByName(ctx context.Context, location string, name string) ([]domain.MenuItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, price, category, sub_category, stock, location, image_url, created_at, updated_at
		FROM menu_items
		WHERE location = $1 AND name = $2
		ORDER BY created_at, id
	`, location, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.MenuItem, 0, 1)
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) SetMenuItemStock(ctx context.Context, id string, stock int) (*domain.MenuItem, error) {
	if stock < 0 {
		return nil, store.ErrInvalidInput
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE menu_items SET stock = $2, updated_at = now() WHERE id = $1
	`, id, stock)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetMenuItem(ctx, id)
}

func (s *Store) ListOffers(ctx context.Context, location string) ([]domain.Offer, error) {
	query := `
		SELECT id, name, discount_percentage, start_date, end_date, start_time, end_time,
		       applicable_categories, applicable_items, location, created_at
		FROM offers
		ORDER BY created_at, id
	`
	args := []any{}
	if location != "" {
		query = `
			SELECT id, name, discount_percentage, start_date, end_date, start_time, end_time,
			       applicable_categories, applicable_items, location, created_at
			FROM offers
			WHERE location = $1
			ORDER BY created_at, id
		`
		args = append(args, location)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offers := make([]domain.Offer, 0, 16)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return offers, nil
}

func (s *Store) GetOffer(ctx context.Context, id string) (*domain.Offer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, discount_percentage, start_date, end_date, start_time, end_time,
		       applicable_categories, applicable_items, location, created_at
		FROM offers
		WHERE id = $1
	`, id)

	o, err := scanOffer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (s *Store) CreateOffer(ctx context.Context, offer domain.Offer) (*domain.Offer, error) {
	if offer.Name == "" || offer.Location == "" {
		return nil, store.ErrInvalidInput
	}
	if offer.DiscountPercentage < 0 || offer.DiscountPercentage > 100 {
		return nil, store.ErrInvalidInput
	}
	if offer.ID == "" {
		offer.ID = xid.New("of")
	}
	if offer.CreatedAt.IsZero() {
		offer.CreatedAt = time.Now().UTC()
	}

	categories, err := json.Marshal(offer.ApplicableCategories)
	if err != nil {
		return nil, err
	}
	items, err := json.Marshal(offer.ApplicableItems)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO offers (id, name, discount_percentage, start_date, end_date, start_time, end_time,
		                    applicable_categories, applicable_items, location, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, offer.ID, offer.Name, offer.DiscountPercentage, offer.StartDate, offer.EndDate, offer.StartTime, offer.EndTime,
		string(categories), string(items), offer.Location, offer.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}

	created := offer
	return &created, nil
}

func (s *Store) UpdateOffer(ctx context.Context, offer domain.Offer) (*domain.Offer, error) {
	if offer.ID == "" || offer.Name == "" {
		return nil, store.ErrInvalidInput
	}
	if offer.DiscountPercentage < 0 || offer.DiscountPercentage > 100 {
		return nil, store.ErrInvalidInput
	}

	categories, err := json.Marshal(offer.ApplicableCategories)
	if err != nil {
		return nil, err
	}
	items, err := json.Marshal(offer.ApplicableItems)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE offers
		SET name = $2, discount_percentage = $3, start_date = $4, end_date = $5,
		    start_time = $6, end_time = $7, applicable_categories = $8, applicable_items = $9
		WHERE id = $1
	`, offer.ID, offer.Name, offer.DiscountPercentage, offer.StartDate, offer.EndDate,
		offer.StartTime, offer.EndTime, string(categories), string(items))
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return s.GetOffer(ctx, offer.ID)
}

func (s *Store) DeleteOffer(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM offers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	if order.Location == "" || len(order.Lines) == 0 {
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

	lines, err := json.Marshal(order.Lines)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (id, location, customer_name, lines, total_price, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, order.ID, order.Location, order.CustomerName, string(lines), order.TotalPrice, order.Status, order.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}

	created := order
	return &created, nil
}

func (s *Store) ListOrders(ctx context.Context, location string, limit int) ([]domain.Order, error) {
	if limit < 1 {
		limit = 50
	}

	query := `
		SELECT id, location, customer_name, lines, total_price, status, created_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1
	`
	args := []any{limit}
	if location != "" {
		query = `
			SELECT id, location, customer_name, lines, total_price, status, created_at
			FROM orders
			WHERE location = $1
			ORDER BY created_at DESC
			LIMIT $2
		`
		args = []any{location, limit}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, limit)
	for rows.Next() {
		var order domain.Order
		var linesRaw string
		if err := rows.Scan(&order.ID, &order.Location, &order.CustomerName, &linesRaw, &order.TotalPrice, &order.Status, &order.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(linesRaw), &order.Lines); err != nil {
			return nil, err
		}
		order.CreatedAt = order.CreatedAt.UTC()
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) GetDailyRevenue(ctx context.Context, location string, date string) (domain.DailyRevenue, error) {
	report := domain.DailyRevenue{Location: location, Date: date}

	dayStart, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return domain.DailyRevenue{}, store.ErrInvalidInput
	}
	dayEnd := dayStart.AddDate(0, 0, 1)

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_price), 0)
		FROM orders
		WHERE location = $1 AND created_at >= $2 AND created_at < $3
	`, location, dayStart, dayEnd).Scan(&report.Orders, &report.Revenue)
	if err != nil {
		return domain.DailyRevenue{}, err
	}

	// Line-level aggregation happens in Go: lines live in a JSON text
	// column and per-day volumes stay small for a two-location operation.
	rows, err := s.db.QueryContext(ctx, `
		SELECT lines
		FROM orders
		WHERE location = $1 AND created_at >= $2 AND created_at < $3
	`, location, dayStart, dayEnd)
	if err != nil {
		return domain.DailyRevenue{}, err
	}
	defer rows.Close()

	byCategory := make(map[string]*domain.DailyRevenueCategory)
	for rows.Next() {
		var linesRaw string
		if err := rows.Scan(&linesRaw); err != nil {
			return domain.DailyRevenue{}, err
		}
		var lines []domain.OrderLine
		if err := json.Unmarshal([]byte(linesRaw), &lines); err != nil {
			return domain.DailyRevenue{}, err
		}
		for _, line := range lines {
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
	if err := rows.Err(); err != nil {
		return domain.DailyRevenue{}, err
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	report.ByCategory = make([]domain.DailyRevenueCategory, 0, len(categories))
	for _, category := range categories {
		report.ByCategory = append(report.ByCategory, *byCategory[category])
	}

	return report, nil
}

func (s *Store) CreateFeedback(ctx context.Context, feedback domain.Feedback) (*domain.Feedback, error) {
	if feedback.Message == "" {
		return nil, store.ErrInvalidInput
	}
	if feedback.ID == "" {
		feedback.ID = xid.New("fb")
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (id, name, message, location, read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, feedback.ID, feedback.Name, feedback.Message, feedback.Location, feedback.Read, feedback.CreatedAt)
	if err != nil {
		return nil, err
	}

	created := feedback
	return &created, nil
}

func (s *Store) ListFeedback(ctx context.Context, limit int) ([]domain.Feedback, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, message, location, read, created_at
		FROM feedback
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Feedback, 0, limit)
	for rows.Next() {
		var fb domain.Feedback
		if err := rows.Scan(&fb.ID, &fb.Name, &fb.Message, &fb.Location, &fb.Read, &fb.CreatedAt); err != nil {
			return nil, err
		}
		fb.CreatedAt = fb.CreatedAt.UTC()
		items = append(items, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) MarkFeedbackRead(ctx context.Context, id string) (*domain.Feedback, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE feedback SET read = true WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	var fb domain.Feedback
	err = s.db.QueryRowContext(ctx, `
		SELECT id, name, message, location, read, created_at FROM feedback WHERE id = $1
	`, id).Scan(&fb.ID, &fb.Name, &fb.Message, &fb.Location, &fb.Read, &fb.CreatedAt)
	if err != nil {
		return nil, err
	}
	fb.CreatedAt = fb.CreatedAt.UTC()
	return &fb, nil
}

func (s *Store) DeleteFeedback(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteAllFeedback(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM feedback`)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (s *Store) ListAdvertisements(ctx context.Context, location string) ([]domain.Advertisement, error) {
	query := `
		SELECT id, title, image_url, location, created_at
		FROM advertisements
		ORDER BY created_at DESC
	`
	args := []any{}
	if location != "" {
		query = `
			SELECT id, title, image_url, location, created_at
			FROM advertisements
			WHERE location = $1
			ORDER BY created_at DESC
		`
		args = append(args, location)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ads := make([]domain.Advertisement, 0, 16)
	for rows.Next() {
		var ad domain.Advertisement
		if err := rows.Scan(&ad.ID, &ad.Title, &ad.ImageURL, &ad.Location, &ad.CreatedAt); err != nil {
			return nil, err
		}
		ad.CreatedAt = ad.CreatedAt.UTC()
		ads = append(ads, ad)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ads, nil
}

func (s *Store) CreateAdvertisement(ctx context.Context, ad domain.Advertisement) (*domain.Advertisement, error) {
	if ad.Title == "" || ad.ImageURL == "" || ad.Location == "" {
		return nil, store.ErrInvalidInput
	}
	if ad.ID == "" {
		ad.ID = xid.New("ad")
	}
	if ad.CreatedAt.IsZero() {
		ad.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO advertisements (id, title, image_url, location, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, ad.ID, ad.Title, ad.ImageURL, ad.Location, ad.CreatedAt)
	if err != nil {
		return nil, err
	}

	created := ad
	return &created, nil
}

func (s *Store) DeleteAdvertisement(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM advertisements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetLocationStatus(ctx context.Context, location string) (domain.LocationStatus, error) {
	var status domain.LocationStatus
	err := s.db.QueryRowContext(ctx, `
		SELECT location, open, opening_time, closing_time, updated_at
		FROM location_status
		WHERE location = $1
	`, location).Scan(&status.Location, &status.Open, &status.OpeningTime, &status.ClosingTime, &status.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.LocationStatus{}, store.ErrNotFound
		}
		return domain.LocationStatus{}, err
	}
	status.UpdatedAt = status.UpdatedAt.UTC()
	return status, nil
}

func (s *Store) SetLocationStatus(ctx context.Context, status domain.LocationStatus) (*domain.LocationStatus, error) {
	if status.Location == "" {
		return nil, store.ErrInvalidInput
	}
	status.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO location_status (location, open, opening_time, closing_time, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (location)
		DO UPDATE SET open = $2, opening_time = $3, closing_time = $4, updated_at = $5
	`, status.Location, status.Open, status.OpeningTime, status.ClosingTime, status.UpdatedAt)
	if err != nil {
		return nil, err
	}

	updated := status
	return &updated, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, location, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, entry.ID, entry.Location, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, location string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}
	if to.IsZero() {
		to = time.Now().UTC()
	}

	query := `
		SELECT id, location, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	args := []any{from, to, limit}
	if location != "" {
		query = `
			SELECT id, location, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
			FROM audit_logs
			WHERE location = $1 AND created_at >= $2 AND created_at <= $3
			ORDER BY created_at DESC
			LIMIT $4
		`
		args = []any{location, from, to, limit}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.Location, &entry.ActorUsername, &entry.ActorRole, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.Username == "" {
		return store.ErrInvalidInput
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return store.ErrInvalidInput
	}
	return err
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 8)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password = $2 WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMenuItem(row rowScanner) (domain.MenuItem, error) {
	var item domain.MenuItem
	err := row.Scan(&item.ID, &item.Name, &item.Price, &item.Category, &item.SubCategory,
		&item.Stock, &item.Location, &item.ImageURL, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return domain.MenuItem{}, err
	}
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	return item, nil
}

func scanOffer(row rowScanner) (domain.Offer, error) {
	var o domain.Offer
	var categoriesRaw, itemsRaw string
	err := row.Scan(&o.ID, &o.Name, &o.DiscountPercentage, &o.StartDate, &o.EndDate,
		&o.StartTime, &o.EndTime, &categoriesRaw, &itemsRaw, &o.Location, &o.CreatedAt)
	if err != nil {
		return domain.Offer{}, err
	}
	if categoriesRaw != "" {
		if err := json.Unmarshal([]byte(categoriesRaw), &o.ApplicableCategories); err != nil {
			return domain.Offer{}, err
		}
	}
	if itemsRaw != "" {
		if err := json.Unmarshal([]byte(itemsRaw), &o.ApplicableItems); err != nil {
			return domain.Offer{}, err
		}
	}
	o.CreatedAt = o.CreatedAt.UTC()
	return o, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
