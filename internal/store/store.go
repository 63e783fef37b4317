package store

import (
	"context"
	"errors"
	"time"

	"kantinku/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicateName     = errors.New("duplicate item name")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Repository interface {
	ListMenuItems(ctx context.Context, location string) ([]domain.MenuItem, error)
	GetMenuItem(ctx context.Context, id string) (*domain.MenuItem, error)
	CreateMenuItem(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error)
	UpdateMenuItem(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id string) error
	FindMenuItemsByName(ctx context.Context, location string, name string) ([]domain.MenuItem, error)
	SetMenuItemStock(ctx context.Context, id string, stock int) (*domain.MenuItem, error)

	ListOffers(ctx context.Context, location string) ([]domain.Offer, error)
	GetOffer(ctx context.Context, id string) (*domain.Offer, error)
	CreateOffer(ctx context.Context, offer domain.Offer) (*domain.Offer, error)
	UpdateOffer(ctx context.Context, offer domain.Offer) (*domain.Offer, error)
	DeleteOffer(ctx context.Context, id string) error

	CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error)
	ListOrders(ctx context.Context, location string, limit int) ([]domain.Order, error)
	GetDailyRevenue(ctx context.Context, location string, date string) (domain.DailyRevenue, error)

	CreateFeedback(ctx context.Context, feedback domain.Feedback) (*domain.Feedback, error)
	ListFeedback(ctx context.Context, limit int) ([]domain.Feedback, error)
	MarkFeedbackRead(ctx context.Context, id string) (*domain.Feedback, error)
	DeleteFeedback(ctx context.Context, id string) error
	DeleteAllFeedback(ctx context.Context) (int, error)

	ListAdvertisements(ctx context.Context, location string) ([]domain.Advertisement, error)
	CreateAdvertisement(ctx context.Context, ad domain.Advertisement) (*domain.Advertisement, error)
	DeleteAdvertisement(ctx context.Context, id string) error

	GetLocationStatus(ctx context.Context, location string) (domain.LocationStatus, error)
	SetLocationStatus(ctx context.Context, status domain.LocationStatus) (*domain.LocationStatus, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, location string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
