package config

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "game-media", cfg.StorageBucket)
	assert.Equal(t, 5, cfg.MediaMaxCount)
	assert.Equal(t, 24*time.Hour, cfg.MediaOrphanTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
	assert.Equal(t, 10000, cfg.CartMaxSessions)
	assert.Equal(t, 24*time.Hour, cfg.CartIdleTTL)
}

func TestDefaultMediaBaseIsAbsolute(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	u, err := url.Parse(cfg.MediaPublicBaseURL() + "/1_a.png")
	require.NoError(t, err)
	assert.True(t, u.IsAbs())
	assert.Equal(t, "http://localhost:8080/storage/v1/object/public/game-media/1_a.png", u.String())
}

func TestMediaPublicBaseURL(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"public origin", map[string]string{"PUBLIC_URL": "https://shop.test/"}, "https://shop.test/storage/v1/object/public/game-media"},
		{"explicit base", map[string]string{"STORAGE_PUBLIC_BASE_URL": "https://proj.supabase.co/storage/v1/object/public/game-media/"}, "https://proj.supabase.co/storage/v1/object/public/game-media"},
		{"port from listen address", map[string]string{"HTTP_ADDR": "0.0.0.0:9000", "STORAGE_BUCKET": "covers"}, "http://localhost:9000/storage/v1/object/public/covers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := LoadConfig(t.TempDir())
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.MediaPublicBaseURL())
		})
	}
}

func TestRelativeMediaBaseIsRejected(t *testing.T) {
	t.Setenv("STORAGE_PUBLIC_BASE_URL", "/storage/v1/object/public/game-media")
	_, err := LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "STORAGE_PUBLIC_BASE_URL must be an absolute URL")
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	env := "DATABASE_URL=postgres://file\nSTORAGE_DRIVER=mem\nMEDIA_MAX_COUNT=3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("MEDIA_ORPHAN_TTL", "90m")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.Equal(t, "mem", cfg.StorageDriver)
	assert.Equal(t, 3, cfg.MediaMaxCount)
	assert.Equal(t, 90*time.Minute, cfg.MediaOrphanTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins())
}
