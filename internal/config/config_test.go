package config

import (
	"log/slog"
	"os"
	"testing"
)

// unsetenv clears keys for the duration of the test.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadClientDefaults(t *testing.T) {
	unsetenv(t, "MAU_SERVER", "MAU_USERNAME", "MAU_PASSWORD", "LOG_LEVEL")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("LoadClient: %v", err)
	}
	if cfg.Server != "https://mau.miroq.ru/api/" {
		t.Errorf("Server = %q, want default", cfg.Server)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want INFO", cfg.LogLevel)
	}
	if cfg.HasCredentials() {
		t.Error("HasCredentials = true with no username/password")
	}
}

func TestLoadClientFromEnv(t *testing.T) {
	t.Setenv("MAU_SERVER", "http://localhost:8080/api/")
	t.Setenv("MAU_USERNAME", "milinuri")
	t.Setenv("MAU_PASSWORD", "secret")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("LoadClient: %v", err)
	}
	if cfg.Server != "http://localhost:8080/api/" {
		t.Errorf("Server = %q", cfg.Server)
	}
	if !cfg.HasCredentials() {
		t.Error("HasCredentials = false")
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want DEBUG", cfg.LogLevel)
	}
}

func TestLoadMock(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantAddr string
		wantDB   string
		wantErr  bool
	}{
		{
			name:     "defaults",
			env:      map[string]string{},
			wantAddr: ":8080",
			wantDB:   "data/mau-mock.db",
		},
		{
			name:     "overrides",
			env:      map[string]string{"HTTP_ADDR": ":9000", "DB_PATH": ":memory:", "LOG_LEVEL": "WARN"},
			wantAddr: ":9000",
			wantDB:   ":memory:",
		},
		{
			name:    "bad log level",
			env:     map[string]string{"LOG_LEVEL": "LOUD"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetenv(t, "HTTP_ADDR", "DB_PATH", "LOG_LEVEL")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := LoadMock()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadMock: %v", err)
			}
			if cfg.HTTPAddr != tt.wantAddr {
				t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, tt.wantAddr)
			}
			if cfg.DBPath != tt.wantDB {
				t.Errorf("DBPath = %q, want %q", cfg.DBPath, tt.wantDB)
			}
		})
	}
}
