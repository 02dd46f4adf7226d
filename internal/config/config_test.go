package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"LCA_SHEET", "LCA_WAGE_STRATEGY", "LCA_CHUNK_SIZE", "LCA_PATTERN", "RUN_LOG_DB"} {
		t.Setenv(key, "")
	}
	t.Setenv("LCA_SHEET", "0")
	t.Setenv("LCA_WAGE_STRATEGY", "from")
	t.Setenv("LCA_CHUNK_SIZE", "200000")
	t.Setenv("LCA_PATTERN", `.*\.xlsx$`)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sheet != "0" || cfg.WageStrategy != "from" || cfg.ChunkSize != 200000 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.RunLogDB != "" {
		t.Fatalf("run log should be disabled, got %q", cfg.RunLogDB)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LCA_SHEET", "Disclosure")
	t.Setenv("LCA_WAGE_STRATEGY", "max")
	t.Setenv("LCA_CHUNK_SIZE", "5000")
	t.Setenv("RUN_LOG_DB", "/tmp/runs.db")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sheet != "Disclosure" || cfg.WageStrategy != "max" || cfg.ChunkSize != 5000 || cfg.RunLogDB != "/tmp/runs.db" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadBadChunkSizeFallsBack(t *testing.T) {
	t.Setenv("LCA_CHUNK_SIZE", "lots")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ChunkSize != 200000 {
		t.Fatalf("got %d", cfg.ChunkSize)
	}
}

func TestLoadRejectsNegativeChunkSize(t *testing.T) {
	t.Setenv("LCA_CHUNK_SIZE", "-1")

	if _, err := Load(); err == nil {
		t.Fatal("expected error")
	}
}
