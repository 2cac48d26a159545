package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"storefront/backend/internal/config"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--env-dir", t.TempDir()))
	err := root.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	out, err := run(t, "token", "--creator", "studio-42")
	require.NoError(t, err)

	token, err := gojwt.Parse(strings.TrimSpace(out), func(*gojwt.Token) (interface{}, error) { return []byte("s3cret"), nil })
	require.NoError(t, err)
	sub, err := token.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "studio-42", sub)
}

func TestTokenCommandNeedsSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := run(t, "token", "--creator", "studio-42")
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestSweepCommandOnEmptyLedger(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", ":memory:")
	t.Setenv("STORAGE_DRIVER", "mem")
	t.Setenv("LEDGER_DRIVER", "gorm")

	out, err := run(t, "sweep")
	require.NoError(t, err)
	assert.Equal(t, "removed 0 orphaned objects\n", out)
}

func TestRouterOptionsServeFileDriverMedia(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", ":memory:")
	t.Setenv("STORAGE_DRIVER", "file")
	dir := t.TempDir()
	t.Setenv("STORAGE_BASE_DIR", dir)

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)
	a, err := newApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	opts := a.routerOptions()
	assert.Equal(t, dir, opts.MediaDir)
	assert.Equal(t, "/storage/v1/object/public/game-media", opts.MediaPath)
	assert.Equal(t, "http://localhost:8080/storage/v1/object/public/game-media", a.manager.PublicBaseURL())
}
