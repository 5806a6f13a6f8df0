package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8081 {
		t.Errorf("server port = %d, want 8081", cfg.Server.Port)
	}
	if cfg.Store.Kind != "local" {
		t.Errorf("store kind = %q, want local", cfg.Store.Kind)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("database driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.API.Timeout != 5*time.Minute {
		t.Errorf("api timeout = %v, want 5m", cfg.API.Timeout)
	}
	if cfg.Embedding.BatchSize != 32 {
		t.Errorf("embedding batch size = %d, want 32", cfg.Embedding.BatchSize)
	}
	if cfg.Worker.PoolSize != 4 {
		t.Errorf("worker pool size = %d, want 4", cfg.Worker.PoolSize)
	}
	if len(cfg.Worker.Formats) == 0 {
		t.Error("worker formats default missing")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
  mode: release
store:
  kind: qdrant
qdrant:
  host: vectors.internal
  port: 6334
worker:
  pool_size: 8
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 || cfg.Server.Mode != "release" {
		t.Errorf("server config not applied: %+v", cfg.Server)
	}
	if cfg.Store.Kind != "qdrant" {
		t.Errorf("store kind = %q, want qdrant", cfg.Store.Kind)
	}
	if cfg.Qdrant.Host != "vectors.internal" {
		t.Errorf("qdrant host = %q", cfg.Qdrant.Host)
	}
	if cfg.Worker.PoolSize != 8 {
		t.Errorf("worker pool size = %d, want 8", cfg.Worker.PoolSize)
	}
	// Untouched sections keep their defaults.
	if cfg.API.BaseURL != "http://localhost:7091" {
		t.Errorf("api base url = %q", cfg.API.BaseURL)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("VECTOR_STORE", "qdrant")
	t.Setenv("API_URL", "http://api.internal:7091")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Store.Kind != "qdrant" {
		t.Errorf("store kind = %q, want env override qdrant", cfg.Store.Kind)
	}
	if cfg.API.BaseURL != "http://api.internal:7091" {
		t.Errorf("api base url = %q, want env override", cfg.API.BaseURL)
	}
	if cfg.Embedding.APIKey != "sk-test" {
		t.Errorf("embedding api key not bound from environment")
	}
}

func TestConnString(t *testing.T) {
	testCases := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "sqlite path",
			cfg:  DatabaseConfig{Driver: "sqlite", Path: "./data/app.db"},
			want: "./data/app.db",
		},
		{
			name: "postgres dsn",
			cfg:  DatabaseConfig{Driver: "postgres", DSN: "host=db user=app"},
			want: "host=db user=app",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.ConnString(); got != tc.want {
				t.Errorf("ConnString() = %q, want %q", got, tc.want)
			}
		})
	}
}
