package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"kantinku/backend/internal/domain"
)

func TestMenuItemNameLookupAndStock(t *testing.T) {
	databaseURL := os.Getenv("KANTINKU_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set KANTINKU_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	name := fmt.Sprintf("Samosa IT %d", stamp)
	canteenID := fmt.Sprintf("mi-it-can-%d", stamp)
	cafeteriaID := fmt.Sprintf("mi-it-caf-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id IN ($1, $2)`, canteenID, cafeteriaID)
	})

	for _, item := range []domain.MenuItem{
		{ID: canteenID, Name: name, Price: 20, Category: domain.CategorySnacks, SubCategory: "Fried", Stock: 50, Location: domain.LocationCanteen, ImageURL: "/images/it.jpg"},
		{ID: cafeteriaID, Name: name, Price: 20, Category: domain.CategorySnacks, SubCategory: "Fried", Stock: 30, Location: domain.LocationCafeteria, ImageURL: "/images/it.jpg"},
	} {
		if _, err := s.CreateMenuItem(ctx, item); err != nil {
			t.Fatalf("create menu item %s: %v", item.ID, err)
		}
	}

	// Name lookup is the twin-matching primitive: it must be scoped to one
	// location and never see the other location's record.
	matches, err := s.FindMenuItemsByName(ctx, domain.LocationCafeteria, name)
	if err != nil {
		t.Fatalf("find by name: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 cafeteria match, got %d", len(matches))
	}
	if matches[0].ID != cafeteriaID {
		t.Fatalf("expected cafeteria record, got %s", matches[0].ID)
	}

	if _, err := s.SetMenuItemStock(ctx, canteenID, 10); err != nil {
		t.Fatalf("set stock: %v", err)
	}

	canteen, err := s.GetMenuItem(ctx, canteenID)
	if err != nil {
		t.Fatalf("get canteen item: %v", err)
	}
	cafeteria, err := s.GetMenuItem(ctx, cafeteriaID)
	if err != nil {
		t.Fatalf("get cafeteria item: %v", err)
	}
	if canteen.Stock != 10 {
		t.Fatalf("expected canteen stock 10, got %d", canteen.Stock)
	}
	if cafeteria.Stock != 30 {
		t.Fatalf("expected cafeteria stock untouched at 30, got %d", cafeteria.Stock)
	}
}
