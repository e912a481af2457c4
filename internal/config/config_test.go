package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/tablegrab/pkg/format"
)

func load(t *testing.T, settings map[string]any) (*Config, error) {
	t.Helper()
	v := viper.New()
	for k, val := range settings {
		v.Set(k, val)
	}
	return Load(v)
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %v", err)
	fields := make([]string, len(verrs))
	for i, e := range verrs {
		fields[i] = e.Field
	}
	return fields
}

// --- Load Tests ---

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, map[string]any{"url": "https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, FetchStatic, cfg.FetchMode)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.True(t, cfg.Pretty)
	assert.Equal(t, "https://example.com", cfg.Source())
}

func TestLoad_InputSelectsFileMode(t *testing.T) {
	cfg, err := load(t, map[string]any{"input": "page.html", "fetch_mode": "dynamic"})
	require.NoError(t, err)

	assert.Equal(t, FetchFile, cfg.FetchMode)
	assert.Equal(t, "page.html", cfg.Source())
}

func TestLoad_DecodesDurationStrings(t *testing.T) {
	cfg, err := load(t, map[string]any{"url": "u", "timeout": "1m30s"})
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".tablegrab.yaml")
	content := "url: https://example.com/list\nformat: \"2\"\noutput_dir: out\nsave_html: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.True(t, cfg.SaveHTML)

	f, err := cfg.OutputFormat()
	require.NoError(t, err)
	assert.Equal(t, format.FormatCSV, f)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("TABLEGRAB_URL", "https://env.example.com")
	t.Setenv("TABLEGRAB_FORMAT", "yaml")

	v := viper.New()
	v.SetEnvPrefix("TABLEGRAB")
	v.AutomaticEnv()
	// AutomaticEnv only answers keys viper already knows about.
	require.NoError(t, v.BindEnv("url"))
	require.NoError(t, v.BindEnv("format"))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.URL)
	assert.Equal(t, "yaml", cfg.Format)
}

// --- Validate Tests ---

func TestValidate_MissingSource(t *testing.T) {
	_, err := load(t, nil)
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"url", "input"}, fieldsOf(t, err))
}

func TestValidate_BothSources(t *testing.T) {
	_, err := load(t, map[string]any{"url": "u", "input": "f.html"})
	require.Error(t, err)
	assert.Equal(t, []string{"url"}, fieldsOf(t, err))
	assert.Contains(t, err.Error(), "cannot be combined with Input")
}

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		field    string
	}{
		{"unknown format", map[string]any{"format": "pdf"}, "format"},
		{"empty format", map[string]any{"format": ""}, "format"},
		{"bad fetch mode", map[string]any{"fetch_mode": "ftp"}, "fetch_mode"},
		{"negative timeout", map[string]any{"timeout": -time.Second}, "timeout"},
		{"bad size", map[string]any{"max_size": "lots"}, "max_size"},
		{"size beyond int range", map[string]any{"max_size": "10EB"}, "max_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := map[string]any{"url": "https://example.com"}
			for k, v := range tt.settings {
				settings[k] = v
			}
			_, err := load(t, settings)
			require.Error(t, err)
			assert.Equal(t, []string{tt.field}, fieldsOf(t, err))
		})
	}
}

func TestValidate_MenuNumbersAccepted(t *testing.T) {
	for _, name := range []string{"1", "6", "messagepack", "yml"} {
		_, err := load(t, map[string]any{"url": "u", "format": name})
		assert.NoError(t, err, "format %q", name)
	}
}

// --- Helper Tests ---

func TestMaxBytes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"0", 0},
		{"100KB", 100000},
		{"1MiB", 1 << 20},
		{" 2MB ", 2000000},
	}
	for _, tt := range tests {
		cfg := &Config{MaxSize: tt.in}
		got, err := cfg.MaxBytes()
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestMaxBytes_RejectsOverflow(t *testing.T) {
	cfg := &Config{MaxSize: "10EB"}
	n, err := cfg.MaxBytes()
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestToStdout(t *testing.T) {
	assert.True(t, (&Config{Output: "-"}).ToStdout())
	assert.False(t, (&Config{Output: "out.json"}).ToStdout())
	assert.False(t, (&Config{}).ToStdout())
}

func TestConfig_YAMLKeys(t *testing.T) {
	cfg := Default()
	cfg.URL = "https://example.com"

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, yaml.Unmarshal(out, &m))
	assert.Equal(t, "https://example.com", m["url"])
	assert.Equal(t, "static", m["fetch_mode"])
	assert.NotContains(t, m, "input")
}
