package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLexicon_EmptyPath(t *testing.T) {
	lex, err := LoadLexicon("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLexicon(), lex)
}

func TestLoadLexicon_OverridesOnlyListedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	content := `
cluster_aliases: ["cụm", "ccn", "cluster"]
columns:
  price: ["Đơn giá"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lex, err := LoadLexicon(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"cụm", "ccn", "cluster"}, lex.ClusterAliases)
	assert.Equal(t, []string{"Đơn giá"}, lex.Columns.Price)
	assert.Equal(t, DefaultLexicon().ZoneAliases, lex.ZoneAliases)
	assert.Equal(t, DefaultLexicon().Columns.Name, lex.Columns.Name)
}

func TestLoadLexicon_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadLexicon(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("zone_aliases: [unterminated"), 0o644))
	_, err = LoadLexicon(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("zone_aliases: []\n"), 0o644))
	_, err = LoadLexicon(empty)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Dataset:    DatasetConfig{Source: SourceExcel},
			Extraction: ExtractionConfig{Timeout: 1},
			Chart:      ChartConfig{MaxItems: 15, DualMaxItems: 10, WidthInch: 14, HeightInch: 9},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "Valid", mutate: func(c *Config) {}},
		{name: "SQLite source", mutate: func(c *Config) { c.Dataset.Source = SourceSQLite }},
		{name: "Unknown source", mutate: func(c *Config) { c.Dataset.Source = "csv" }, wantErr: true},
		{name: "Zero item limit", mutate: func(c *Config) { c.Chart.MaxItems = 0 }, wantErr: true},
		{name: "Negative size", mutate: func(c *Config) { c.Chart.HeightInch = -1 }, wantErr: true},
		{name: "Zero timeout", mutate: func(c *Config) { c.Extraction.Timeout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetPostgreSQLDSN(t *testing.T) {
	cfg := &Config{PostgreSQL: PostgreSQLConfig{
		Host: "db", Port: 5432, User: "iip", Password: "secret", Database: "iipmap", SSLMode: "disable",
	}}
	assert.Equal(t, "host=db port=5432 user=iip password=secret dbname=iipmap sslmode=disable", cfg.GetPostgreSQLDSN())

	cfg.PostgreSQL.DSN = "postgres://iip@db/iipmap"
	assert.Equal(t, "postgres://iip@db/iipmap", cfg.GetPostgreSQLDSN())
}
