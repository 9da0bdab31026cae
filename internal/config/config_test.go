package config

import "testing"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONTENTFUL_SPACE_ID", "space-1")
	t.Setenv("CONTENTFUL_DELIVERY_TOKEN", "cda-token")
	t.Setenv("CONSTRUCTOR_KEY", "shared-key")
	t.Setenv("CONSTRUCTOR_TOKEN", "shared-token")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Contentful.EnvironmentID != "master" {
		t.Errorf("environment = %q, want master", cfg.Contentful.EnvironmentID)
	}
	if cfg.Constructor.EN.Section != "Content" || cfg.Constructor.FR.Section != "Content-FR" {
		t.Errorf("sections = %q / %q", cfg.Constructor.EN.Section, cfg.Constructor.FR.Section)
	}
	if cfg.Indexing.PageSize != 50 {
		t.Errorf("page size = %d, want 50", cfg.Indexing.PageSize)
	}
	if cfg.Indexing.StrictContentTypes || cfg.Indexing.ConcurrentUploads {
		t.Error("strict and concurrent modes must default off")
	}
	if cfg.RedisEnabled() || cfg.PostgresEnabled() {
		t.Error("optional stores enabled without hosts")
	}
}

func TestLoadSharedKeyFallback(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CONSTRUCTOR_KEY_FR", "fr-key")
	t.Setenv("CONSTRUCTOR_TOKEN_FR", "fr-token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Constructor.EN.Key != "shared-key" {
		t.Errorf("EN key = %q, want shared fallback", cfg.Constructor.EN.Key)
	}
	if cfg.Constructor.FR.Key != "fr-key" {
		t.Errorf("FR key = %q, want locale override", cfg.Constructor.FR.Key)
	}
	if cfg.Constructor.FR.Token != "fr-token" {
		t.Errorf("FR token = %q, want locale override", cfg.Constructor.FR.Token)
	}
}

func TestLoadRejectsMissingSpace(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CONTENTFUL_SPACE_ID", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation failure without space id")
	}
}

func TestLoadRejectsMissingLocaleCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CONSTRUCTOR_TOKEN", "")
	t.Setenv("CONSTRUCTOR_TOKEN_EN", "en-token")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation failure when fr token is missing")
	}
}

func TestLoadParsesIndexingFlags(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("INDEX_PAGE_SIZE", "25")
	t.Setenv("STRICT_CONTENT_TYPES", "true")
	t.Setenv("CONCURRENT_UPLOADS", "1")
	t.Setenv("WAIT_FOR_TASKS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Indexing.PageSize != 25 {
		t.Errorf("page size = %d, want 25", cfg.Indexing.PageSize)
	}
	if !cfg.Indexing.StrictContentTypes || !cfg.Indexing.ConcurrentUploads || !cfg.Indexing.WaitForTasks {
		t.Errorf("indexing flags not parsed: %+v", cfg.Indexing)
	}
}
