package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/williamcotton/gramgraph/pkg/errors"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 800, cfg.Render.Width)
	assert.Equal(t, 600, cfg.Render.Height)
	assert.Equal(t, []string{"svg"}, cfg.Render.Formats)
	assert.Equal(t, "file", cfg.Cache.Backend)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadTOML(t *testing.T) {
	path := write(t, "gramgraph.toml", `
[render]
width = 1024
formats = ["svg", "png"]

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/0"
ttl = "12h"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1024, cfg.Render.Width)
	assert.Equal(t, 600, cfg.Render.Height, "unset fields keep their defaults")
	assert.Equal(t, []string{"svg", "png"}, cfg.Render.Formats)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 12*time.Hour, cfg.Cache.TTL.Duration)
}

func TestLoadYAML(t *testing.T) {
	path := write(t, "gramgraph.yaml", `
render:
  height: 300
  title: Weekly sales
cache:
  backend: mongo
  mongo_uri: mongodb://localhost:27017
  ttl: 30m
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Render.Width)
	assert.Equal(t, 300, cfg.Render.Height)
	assert.Equal(t, "Weekly sales", cfg.Render.Title)
	assert.Equal(t, "mongo", cfg.Cache.Backend)
	assert.Equal(t, "gramgraph", cfg.Cache.MongoDatabase)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL.Duration)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{name: "bad toml", file: "c.toml", body: "[render\nwidth = 1", wantErr: "parse config"},
		{name: "bad yaml", file: "c.yml", body: "render: [", wantErr: "parse config"},
		{name: "bad duration", file: "c.toml", body: "[cache]\nttl = \"soon\"", wantErr: "parse config"},
		{name: "unknown format", file: "c.toml", body: "[render]\nformats = [\"pdf\"]", wantErr: `unknown format "pdf"`},
		{name: "negative width", file: "c.toml", body: "[render]\nwidth = -1", wantErr: "must be positive"},
		{name: "redis without url", file: "c.toml", body: "[cache]\nbackend = \"redis\"", wantErr: "needs redis_url"},
		{name: "unknown backend", file: "c.toml", body: "[cache]\nbackend = \"s3\"", wantErr: `unknown backend "s3"`},
		{name: "unknown level", file: "c.toml", body: "[log]\nlevel = \"loud\"", wantErr: `unknown level "loud"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(t, tt.file, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, gerrors.ErrCodeInvalidInput, gerrors.GetCode(err))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.True(t, gerrors.Is(err, gerrors.ErrCodeInvalidInput))

	_, err = LoadOptional(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err, "an explicit path must exist")
}

func TestLoadOptionalDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadOptional("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path, err := DefaultPath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[server]\naddr = \":9000\"\n"), 0o644))

	cfg, err = LoadOptional("")
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

func TestStringRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Cache.TTL = Duration{90 * time.Minute}

	cfg2, err := Load(write(t, "c.toml", cfg.String()))
	require.NoError(t, err)
	assert.Equal(t, cfg, cfg2)
}
