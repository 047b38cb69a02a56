package config

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.HTTPPort != "8080" || cfg.DatabaseDriver != DriverPostgres || cfg.StockCheckOnStartup != StockCheckVerify {
		t.Errorf("FromEnv() = %+v", cfg)
	}
	if cfg.LowStockThreshold.String() != "10" {
		t.Errorf("LowStockThreshold = %s, want 10", cfg.LowStockThreshold)
	}
	if cfg.MaxUploadSizeBytes != 10<<20 {
		t.Errorf("MaxUploadSizeBytes = %d, want %d", cfg.MaxUploadSizeBytes, 10<<20)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want 24h", cfg.TokenTTL)
	}
	if len(cfg.Warnings()) != 3 {
		t.Errorf("Warnings() = %v, want three default warnings", cfg.Warnings())
	}
}

func TestFromEnv_ParseErrors(t *testing.T) {
	for _, key := range []string{"JWT_TTL", "LOW_STOCK_THRESHOLD", "MAX_UPLOAD_SIZE_BYTES"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "not-a-value")
			if _, err := FromEnv(); err == nil || !strings.Contains(err.Error(), key) {
				t.Errorf("FromEnv() error = %v, want one naming %s", err, key)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "missing secret", env: map[string]string{"JWT_SECRET": ""}, wantErr: "JWT_SECRET is not set"},
		{name: "short secret", env: map[string]string{"JWT_SECRET": "short"}, wantErr: "at least 32"},
		{name: "bad driver", env: map[string]string{"DATABASE_DRIVER": "oracle"}, wantErr: "DATABASE_DRIVER"},
		{name: "bad check mode", env: map[string]string{"STOCK_CHECK_ON_STARTUP": "sometimes"}, wantErr: "STOCK_CHECK_ON_STARTUP"},
		{name: "negative threshold", env: map[string]string{"LOW_STOCK_THRESHOLD": "-1"}, wantErr: "LOW_STOCK_THRESHOLD"},
		{name: "sqlite", env: map[string]string{"DATABASE_DRIVER": "SQLite", "DATABASE_DSN": "inventory.db"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", testSecret)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			cfg, err := FromEnv()
			if err != nil {
				t.Fatalf("FromEnv() error = %v", err)
			}
			err = cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestCORSOriginList(t *testing.T) {
	cfg := &Config{CORSOrigins: " https://a.example , ,https://b.example"}
	if diff := cmp.Diff([]string{"https://a.example", "https://b.example"}, cfg.CORSOriginList()); diff != "" {
		t.Errorf("CORSOriginList() mismatch (-want +got):\n%s", diff)
	}
}
