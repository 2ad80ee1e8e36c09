package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "wishlist-service", cfg.ServiceName)
	assert.Equal(t, "3002", cfg.HTTPPort)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, CacheMemory, cfg.CacheBackend)
	assert.Equal(t, 5*time.Minute, cfg.WishlistTTL)
	assert.Equal(t, 10*time.Second, cfg.RPCTimeout)
	assert.Equal(t, 0, cfg.CacheMaxEntries)
	assert.False(t, cfg.KafkaEnabled())
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.GRPCTrustUserHeader, "x-user-id metadata is not trusted unless enabled")
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("WISHLIST_CACHE_TTL", "30s")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("DB_NAME", "wl")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("GRPC_TRUST_USER_HEADER", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, CacheRedis, cfg.CacheBackend)
	assert.Equal(t, 30*time.Second, cfg.WishlistTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "wl", cfg.Postgres.Database().DBName)
	assert.True(t, cfg.KafkaEnabled())
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.GRPCTrustUserHeader)
	assert.Equal(t, "s3cr3t", cfg.JWTSecret)
}

func TestLoad_DefaultSecretOnlyInDevelopment(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		secret  string
		wantErr bool
	}{
		{"development with default", "development", "", false},
		{"production with default", "production", "", true},
		{"production with explicit default", "production", DevJWTSecret, true},
		{"staging with default", "staging", "", true},
		{"production with secret", "production", "s3cr3t", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENVIRONMENT", tt.env)
			if tt.secret != "" {
				t.Setenv("JWT_SECRET", tt.secret)
			}

			_, err := Load()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "JWT_SECRET")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("STORE_DRIVER", "cassandra")
	t.Setenv("CACHE_MAX_ENTRIES", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
	assert.Contains(t, err.Error(), "CACHE_MAX_ENTRIES")
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("RPC_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
