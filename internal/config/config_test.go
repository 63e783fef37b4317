package config

import "testing"

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("MANAGER_PIN", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
	if cfg.ManagerPIN != "" {
		t.Fatalf("expected empty MANAGER_PIN when unset, got %q", cfg.ManagerPIN)
	}
}

func TestLoadDefaultsLocationAndCacheTTL(t *testing.T) {
	t.Setenv("DEFAULT_LOCATION", "")
	t.Setenv("MENU_CACHE_TTL_SECONDS", "not-a-number")

	cfg := Load()
	if cfg.DefaultLocation != "canteen" {
		t.Fatalf("expected default location canteen, got %q", cfg.DefaultLocation)
	}
	if cfg.MenuCacheTTLSeconds != 30 {
		t.Fatalf("expected fallback cache TTL 30, got %d", cfg.MenuCacheTTLSeconds)
	}
}
