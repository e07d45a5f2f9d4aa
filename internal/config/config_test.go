package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "DB_HOST", "DB_PORT", "DB_DATABASE", "TOKEN_TTL", "INGEST_MODE", "CORS_ALLOWED_ORIGINS", "OTP_STORE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "xeno_shopify", cfg.Database.Name)
	assert.Equal(t, 360*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, IngestBatched, cfg.IngestMode)
	assert.Len(t, cfg.AllowedOrigins, 4)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_VERBOSE", "false")
	t.Setenv("OTP_TTL", "90s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com, https://ops.example.com ,")
	t.Setenv("INGEST_MODE", "atomic")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 7, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.Database.Verbose)
	assert.Equal(t, 90*time.Second, cfg.Auth.OTPTTL)
	assert.Equal(t, []string{"https://admin.example.com", "https://ops.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, IngestAtomic, cfg.IngestMode)
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	t.Setenv("DB_MAX_IDLE_CONNS", "many")
	t.Setenv("TOKEN_TTL", "forever")

	cfg := Load()
	assert.Equal(t, 25, cfg.Database.MaxIdleConns)
	assert.Equal(t, 360*time.Minute, cfg.Auth.TokenTTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"unknown ingest mode", func(c *Config) { c.IngestMode = "sometimes" }},
		{"unknown otp store", func(c *Config) { c.Auth.OTPStore = "disk" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			cfg.Database.Driver = DriverSQLite
			cfg.IngestMode = IngestBatched
			cfg.Auth.OTPStore = "memory"
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Driver: DriverMySQL, User: "root", Password: "pw", Host: "db", Port: "3306", Name: "shop", Charset: "utf8mb4"}
	assert.Equal(t, "root:pw@tcp(db:3306)/shop?charset=utf8mb4&parseTime=true&loc=UTC", d.DSN())

	d.Driver = DriverPostgres
	d.Port = "5432"
	d.SSLMode = "disable"
	assert.Contains(t, d.DSN(), "host=db user=root password=pw dbname=shop port=5432 sslmode=disable")

	d.Driver = DriverSQLite
	d.SQLitePath = "local.db"
	assert.Equal(t, "local.db", d.DSN())

	d.ForeignKeys = true
	assert.Equal(t, "local.db?_foreign_keys=on", d.DSN())
}
