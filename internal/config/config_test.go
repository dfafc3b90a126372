package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfdtools/solvewatch/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
version: 1
interval: 10m
ssh:
  user: ec2-user
  identity_file: /keys/sim.pem
  dial_timeout: 5s
  strict_host_key: false
instances:
  - id: i-0abc
    name: run42_7ms
    address: 18.231.4.2
    class: c8g.48xlarge
  - id: i-0def
    name: baseline_2ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, cfg.Interval)
	assert.Equal(t, "ec2-user", cfg.SSH.User)
	assert.Equal(t, "/keys/sim.pem", cfg.SSH.IdentityFile)
	assert.Equal(t, 5*time.Second, cfg.SSH.DialTimeout)
	assert.False(t, cfg.SSH.StrictHostKey)

	require.Len(t, cfg.Instances, 2)
	assert.Equal(t, "i-0abc", cfg.Instances[0].ID)
	assert.Equal(t, "run42_7ms", cfg.Instances[0].Name)
	assert.Equal(t, "18.231.4.2", cfg.Instances[0].Address)
	assert.Equal(t, "c8g.48xlarge", cfg.Instances[0].Class)
	assert.Empty(t, cfg.Instances[1].Address, "address is optional")
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
version: 1
instances:
  - name: run42_7ms
    address: 18.231.4.2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultInterval, cfg.Interval)
	assert.Equal(t, "ubuntu", cfg.SSH.User)
	assert.Equal(t, 10*time.Second, cfg.SSH.DialTimeout)
	assert.True(t, cfg.SSH.StrictHostKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "instances: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFindExplicit(t *testing.T) {
	path := writeConfig(t, "version: 1\n")

	found, err := Find(path)
	require.NoError(t, err)
	assert.Equal(t, path, found)

	_, err = Find(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Instances = []Instance{
			{ID: "i-0abc", Name: "run42_7ms", Address: "18.231.4.2"},
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"future version", func(c *Config) { c.Version = CurrentConfigVersion + 1 }, true},
		{"zero interval", func(c *Config) { c.Interval = 0 }, true},
		{"interval too short", func(c *Config) { c.Interval = time.Second }, true},
		{"no instances", func(c *Config) { c.Instances = nil }, true},
		{"unnamed instance", func(c *Config) { c.Instances[0].Name = "" }, true},
		{"duplicate names", func(c *Config) {
			c.Instances = append(c.Instances, Instance{Name: "run42_7ms"})
		}, true},
		{"empty ssh user", func(c *Config) { c.SSH.User = "" }, true},
		{"missing address is fine", func(c *Config) { c.Instances[0].Address = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
