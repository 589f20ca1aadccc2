package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
geo:
  debounce: 250ms
  region:
    min_lat: 1
media:
  max_images: 12
drafts:
  stale_after: 12h
reference:
  cities:
    - id: hawassa
      name: Hawassa
      sub_cities:
        - id: tabor
          name: Tabor
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Geo.Debounce != 250*time.Millisecond {
		t.Fatalf("unexpected geo debounce: %s", cfg.Geo.Debounce)
	}
	if cfg.Geo.Region.MinLat != 1 {
		t.Fatalf("unexpected geo.region.min_lat: %v", cfg.Geo.Region.MinLat)
	}
	if cfg.Geo.Region.MaxLon != 48 {
		t.Fatalf("geo.region.max_lon default should stay 48, got %v", cfg.Geo.Region.MaxLon)
	}
	if cfg.Media.MaxImages != 12 {
		t.Fatalf("unexpected media.max_images: %d", cfg.Media.MaxImages)
	}
	if cfg.Media.MaxImageBytes != 10<<20 {
		t.Fatalf("media.max_image_bytes default should stay 10MiB, got %d", cfg.Media.MaxImageBytes)
	}
	if cfg.Drafts.StaleAfter != 12*time.Hour {
		t.Fatalf("unexpected drafts.stale_after: %s", cfg.Drafts.StaleAfter)
	}
	if len(cfg.Reference.Cities) != 1 || cfg.Reference.Cities[0].SubCities[0].ID != "tabor" {
		t.Fatalf("unexpected reference cities: %+v", cfg.Reference.Cities)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Geo.Debounce != 1500*time.Millisecond {
		t.Fatalf("unexpected default debounce: %s", cfg.Geo.Debounce)
	}
	if cfg.Geo.Region != (BoundingBox{MinLat: 3, MaxLat: 15, MinLon: 33, MaxLon: 48}) {
		t.Fatalf("unexpected default region: %+v", cfg.Geo.Region)
	}
	if cfg.Drafts.StaleAfter != 24*time.Hour {
		t.Fatalf("unexpected default staleness window: %s", cfg.Drafts.StaleAfter)
	}
	if cfg.Media.MaxVideoBytes != 100<<20 || cfg.Media.MaxDocumentBytes != 20<<20 {
		t.Fatalf("unexpected default media limits: %+v", cfg.Media)
	}
	if cfg.Reference.Source != "static" {
		t.Fatalf("unexpected default reference source: %s", cfg.Reference.Source)
	}
	if cfg.Reference.Cities[0].Name != "Addis Ababa" {
		t.Fatalf("unexpected first default city: %s", cfg.Reference.Cities[0].Name)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("GEO_DEBOUNCE", "2s")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("S3_USE_SSL", "true")
	t.Setenv("S3_REGION", "eu-central-1")
	t.Setenv("JWT_ISSUER", "listings")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Geo.Debounce != 2*time.Second {
		t.Fatalf("unexpected debounce override: %s", cfg.Geo.Debounce)
	}
	if cfg.Redis.DB != 3 {
		t.Fatalf("unexpected redis db override: %d", cfg.Redis.DB)
	}
	if !cfg.S3.UseSSL || cfg.S3.Region != "eu-central-1" {
		t.Fatalf("unexpected s3 overrides: %+v", cfg.S3)
	}
	if cfg.Auth.Issuer != "listings" {
		t.Fatalf("unexpected jwt issuer override: %q", cfg.Auth.Issuer)
	}
}

func TestLoadRejectsInvalidEnvValue(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DRAFTS_STALE_AFTER", "tomorrow")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "prod")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error when jwt secret is left at default in production")
	}
}

func TestLoadRejectsUnknownReferenceSource(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("REFERENCE_SOURCE", "mongo")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for unknown reference source")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"S3_ENDPOINT",
		"S3_ACCESS_KEY",
		"S3_SECRET_KEY",
		"S3_PREVIEW_BUCKET",
		"S3_USE_SSL",
		"S3_REGION",
		"JWT_SECRET",
		"JWT_ISSUER",
		"GEO_DEBOUNCE",
		"GEO_NOMINATIM_URL",
		"MEDIA_PREVIEWER",
		"DRAFTS_STALE_AFTER",
		"DRAFTS_AUTOSAVE_INTERVAL",
		"DRAFTS_MAX_PAYLOAD_BYTES",
		"SUBMISSION_BASE_URL",
		"SUBMISSION_TOKEN",
		"RABBITMQ_URL",
		"REFERENCE_SOURCE",
	} {
		t.Setenv(key, "")
	}
}
