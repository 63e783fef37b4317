package offer

import (
	"fmt"
	"math"
	"time"

	"kantinku/backend/internal/domain"
)

const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04:05"
	dateTimeLayout = dateLayout + " " + timeLayout

	// endOfDay is assumed when an offer carries an end date but no end time.
	endOfDay = "23:59:59"
)

// Resolve returns the discount state for item given the offers of its
// location. Offers are scanned in collection order and the first one whose
// applicable-items set contains the item id wins; a later offer with a
// larger discount does not override an earlier match. The caller must
// pre-filter offers to the item's location.
//
// Expiry is intentionally not checked here: an elapsed date window only
// affects display labeling (see IsExpired), never price resolution.
func Resolve(item domain.MenuItem, offers []domain.Offer) domain.DiscountInfo {
	for _, o := range offers {
		if !appliesTo(o, item.ID) {
			continue
		}
		return domain.DiscountInfo{
			IsOffer:       true,
			OriginalPrice: item.Price,
			OfferPrice:    DiscountedPrice(item.Price, o.DiscountPercentage),
			Percentage:    o.DiscountPercentage,
			OfferName:     o.Name,
		}
	}
	return domain.DiscountInfo{IsOffer: false}
}

// DiscountedPrice applies pct to price and rounds to the nearest whole
// currency unit.
func DiscountedPrice(price int64, pct float64) int64 {
	return int64(math.Round(float64(price) - float64(price)*pct/100))
}

func appliesTo(o domain.Offer, itemID string) bool {
	for _, id := range o.ApplicableItems {
		if id == itemID {
			return true
		}
	}
	return false
}

// IsExpired reports whether the offer's end date/time window has elapsed at
// now. An offer without an end date never expires; a missing end time means
// end of day. Dates and times are composed in UTC.
func IsExpired(o domain.Offer, now time.Time) bool {
	if o.EndDate == "" {
		return false
	}
	end, err := CombineDateTime(o.EndDate, o.EndTime)
	if err != nil {
		return false
	}
	return now.After(end)
}

// CombineDateTime parses a "2006-01-02" date and an optional "15:04:05"
// time-of-day into a single UTC instant.
func CombineDateTime(date string, tod string) (time.Time, error) {
	if tod == "" {
		tod = endOfDay
	}
	at, err := time.ParseInLocation(dateTimeLayout, date+" "+tod, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date/time %q %q: %w", date, tod, err)
	}
	return at, nil
}

// ValidateWindow checks the date and time fields of an offer request.
// Empty fields are allowed; present fields must parse.
func ValidateWindow(startDate, endDate, startTime, endTime string) error {
	for _, d := range []string{startDate, endDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, d); err != nil {
			return fmt.Errorf("invalid date %q", d)
		}
	}
	for _, t := range []string{startTime, endTime} {
		if t == "" {
			continue
		}
		if _, err := time.Parse(timeLayout, t); err != nil {
			return fmt.Errorf("invalid time %q", t)
		}
	}
	return nil
}
