package domain

import "time"

const (
	LocationCanteen   = "canteen"
	LocationCafeteria = "cafeteria"
)

// Locations lists every valid location value. There is no "both" value;
// a MenuItem always belongs to exactly one location.
var Locations = []string{LocationCanteen, LocationCafeteria}

// OtherLocation returns the twin location, or "" for an invalid input.
func OtherLocation(location string) string {
	switch location {
	case LocationCanteen:
		return LocationCafeteria
	case LocationCafeteria:
		return LocationCanteen
	}
	return ""
}

const (
	CategorySnacks     = "Snacks"
	CategoryBreakfast  = "Breakfast"
	CategoryLunch      = "Lunch"
	CategoryDrinks     = "Drinks"
	CategoryStationery = "Stationery"
	CategoryEssentials = "Essentials"
)

var Categories = []string{
	CategorySnacks,
	CategoryBreakfast,
	CategoryLunch,
	CategoryDrinks,
	CategoryStationery,
	CategoryEssentials,
}

// MenuItem is a location-scoped catalog record. Name is the matching key
// for cross-location sync, not an identifier: two items with the same name
// in different locations are twins with independent ids, stock and revenue.
type MenuItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`
	Category    string    `json:"category"`
	SubCategory string    `json:"sub_category,omitempty"`
	Stock       int       `json:"stock"`
	Location    string    `json:"location"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type MenuItemCreateRequest struct {
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	SubCategory string `json:"sub_category,omitempty"`
	Stock       int    `json:"stock"`
	Location    string `json:"location"`
	ImageURL    string `json:"image_url"`
	SyncBoth    bool   `json:"sync_both"`
}

type MenuItemUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Price       *int64  `json:"price,omitempty"`
	Category    *string `json:"category,omitempty"`
	SubCategory *string `json:"sub_category,omitempty"`
	Stock       *int    `json:"stock,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	SyncBoth    bool    `json:"sync_both"`
}

type StockUpdateRequest struct {
	Stock int `json:"stock"`
}

const (
	SyncStatusCreated = "created"
	SyncStatusUpdated = "updated"
	SyncStatusFailed  = "failed"
	SyncStatusSkipped = "skipped"
)

// SyncOutcome is the separately observable result of one location-scoped
// write issued by the sync engine.
type SyncOutcome struct {
	Location string    `json:"location"`
	Status   string    `json:"status"`
	Item     *MenuItem `json:"item,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// SyncResult carries the primary outcome and, when sync_both was requested,
// the secondary outcome. The two writes are sequential and non-transactional:
// a failed secondary never rolls back the primary.
type SyncResult struct {
	Primary   SyncOutcome  `json:"primary"`
	Secondary *SyncOutcome `json:"secondary,omitempty"`
}

// Offer is a time-boxed discount scoped to one location. Eligibility is
// decided solely by ApplicableItems membership; ApplicableCategories is a
// selection convenience kept for the admin UI.
type Offer struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	DiscountPercentage   float64   `json:"discount_percentage"`
	StartDate            string    `json:"start_date,omitempty"`
	EndDate              string    `json:"end_date,omitempty"`
	StartTime            string    `json:"start_time,omitempty"`
	EndTime              string    `json:"end_time,omitempty"`
	ApplicableCategories []string  `json:"applicable_categories,omitempty"`
	ApplicableItems      []string  `json:"applicable_items"`
	Location             string    `json:"location"`
	CreatedAt            time.Time `json:"created_at"`
}

type OfferCreateRequest struct {
	Name                 string   `json:"name"`
	DiscountPercentage   float64  `json:"discount_percentage"`
	StartDate            string   `json:"start_date,omitempty"`
	EndDate              string   `json:"end_date,omitempty"`
	StartTime            string   `json:"start_time,omitempty"`
	EndTime              string   `json:"end_time,omitempty"`
	ApplicableCategories []string `json:"applicable_categories,omitempty"`
	ApplicableItems      []string `json:"applicable_items"`
	Location             string   `json:"location"`
}

type OfferUpdateRequest struct {
	Name                 *string   `json:"name,omitempty"`
	DiscountPercentage   *float64  `json:"discount_percentage,omitempty"`
	StartDate            *string   `json:"start_date,omitempty"`
	EndDate              *string   `json:"end_date,omitempty"`
	StartTime            *string   `json:"start_time,omitempty"`
	EndTime              *string   `json:"end_time,omitempty"`
	ApplicableCategories *[]string `json:"applicable_categories,omitempty"`
	ApplicableItems      *[]string `json:"applicable_items,omitempty"`
}

// OfferSummary is an Offer annotated with its display expiry label.
type OfferSummary struct {
	Offer
	Expired bool `json:"expired"`
}

// DiscountInfo is the resolver output for a single menu item.
type DiscountInfo struct {
	IsOffer       bool    `json:"is_offer"`
	OriginalPrice int64   `json:"original_price,omitempty"`
	OfferPrice    int64   `json:"offer_price,omitempty"`
	Percentage    float64 `json:"percentage,omitempty"`
	OfferName     string  `json:"offer_name,omitempty"`
}

// PricedMenuItem is a MenuItem joined against the location's offers.
type PricedMenuItem struct {
	MenuItem
	Discount  DiscountInfo `json:"discount"`
	Available bool         `json:"available"`
}

type MenuBoard struct {
	Location    string           `json:"location"`
	Items       []PricedMenuItem `json:"items"`
	GeneratedAt string           `json:"generated_at"`
}

type OrderLine struct {
	ItemID     string `json:"item_id"`
	ItemName   string `json:"item_name"`
	Qty        int    `json:"qty"`
	UnitPrice  int64  `json:"unit_price"`
	LineTotal  int64  `json:"line_total"`
	Category   string `json:"category"`
	OfferName  string `json:"offer_name,omitempty"`
	Discounted bool   `json:"discounted"`
}

type Order struct {
	ID           string      `json:"id"`
	Location     string      `json:"location"`
	CustomerName string      `json:"customer_name,omitempty"`
	Lines        []OrderLine `json:"lines"`
	TotalPrice   int64       `json:"total_price"`
	Status       string      `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}

type OrderCreateLine struct {
	ItemID string `json:"item_id"`
	Qty    int    `json:"qty"`
}

type OrderCreateRequest struct {
	Location     string            `json:"location"`
	CustomerName string            `json:"customer_name,omitempty"`
	Lines        []OrderCreateLine `json:"lines"`
}

type OrderResponse struct {
	Order Order `json:"order"`
}

type OrderListResponse struct {
	Orders []Order `json:"orders"`
}

const (
	OrderStatusPlaced    = "placed"
	OrderStatusCompleted = "completed"
)

type DailyRevenueCategory struct {
	Category string `json:"category"`
	Qty      int64  `json:"qty"`
	Revenue  int64  `json:"revenue"`
}

type DailyRevenue struct {
	Location   string                 `json:"location"`
	Date       string                 `json:"date"`
	Orders     int64                  `json:"orders"`
	ItemsSold  int64                  `json:"items_sold"`
	Revenue    int64                  `json:"revenue"`
	Discounted int64                  `json:"discounted_lines"`
	ByCategory []DailyRevenueCategory `json:"by_category"`
}

type Feedback struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Message   string    `json:"message"`
	Location  string    `json:"location,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type FeedbackCreateRequest struct {
	Name     string `json:"name,omitempty"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

type FeedbackDeleteAllRequest struct {
	ManagerPIN string `json:"manager_pin"`
}

type Advertisement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

type AdvertisementCreateRequest struct {
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
	Location string `json:"location"`
}

// LocationStatus holds the open/closed flag and service hours for one
// location. Times are "HH:MM:SS" strings, informational only.
type LocationStatus struct {
	Location    string    `json:"location"`
	Open        bool      `json:"open"`
	OpeningTime string    `json:"opening_time,omitempty"`
	ClosingTime string    `json:"closing_time,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type LocationStatusUpdateRequest struct {
	Open        *bool   `json:"open,omitempty"`
	OpeningTime *string `json:"opening_time,omitempty"`
	ClosingTime *string `json:"closing_time,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type StaffCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type StaffUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type AuditLog struct {
	ID            string    `json:"id"`
	Location      string    `json:"location"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

func IsValidLocation(location string) bool {
	for _, l := range Locations {
		if location == l {
			return true
		}
	}
	return false
}

func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if category == c {
			return true
		}
	}
	return false
}
