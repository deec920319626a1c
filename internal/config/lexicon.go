package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Lexicon holds the vocabulary that ties the dataset to the pipeline:
// how the "Loại" column names zones and clusters, and which workbook headers
// carry each field. Every list is matched after diacritic folding.
type Lexicon struct {
	ZoneAliases    []string      `yaml:"zone_aliases"`
	ClusterAliases []string      `yaml:"cluster_aliases"`
	Columns        ColumnAliases `yaml:"columns"`
}

// ColumnAliases lists accepted header texts per field
type ColumnAliases struct {
	Name     []string `yaml:"name"`
	Province []string `yaml:"province"`
	Type     []string `yaml:"type"`
	Price    []string `yaml:"price"`
	Area     []string `yaml:"area"`
}

// DefaultLexicon returns the vocabulary of the IIPMap export
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		ZoneAliases:    []string{"khu", "kcn"},
		ClusterAliases: []string{"cụm", "ccn"},
		Columns: ColumnAliases{
			Name:     []string{"Tên", "Tên khu", "Tên KCN", "Name"},
			Province: []string{"Tỉnh/Thành phố", "Tỉnh", "Tỉnh thành", "Province"},
			Type:     []string{"Loại", "Loại hình", "Type"},
			Price:    []string{"Giá thuê đất", "Giá thuê", "Giá", "Price"},
			Area:     []string{"Tổng diện tích", "Diện tích", "Area"},
		},
	}
}

// LoadLexicon reads a YAML lexicon. Lists present in the file replace the
// defaults; absent ones keep them. An empty path returns DefaultLexicon.
func LoadLexicon(path string) (*Lexicon, error) {
	lex := DefaultLexicon()
	if path == "" {
		return lex, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}
	if err := yaml.Unmarshal(data, lex); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon %s: %w", path, err)
	}
	if err := lex.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lexicon %s: %w", path, err)
	}
	return lex, nil
}

// Validate requires at least one alias per type and per column
func (l *Lexicon) Validate() error {
	if len(l.ZoneAliases) == 0 || len(l.ClusterAliases) == 0 {
		return fmt.Errorf("zone_aliases and cluster_aliases must not be empty")
	}
	cols := map[string][]string{
		"name":     l.Columns.Name,
		"province": l.Columns.Province,
		"type":     l.Columns.Type,
		"price":    l.Columns.Price,
		"area":     l.Columns.Area,
	}
	for field, aliases := range cols {
		if len(aliases) == 0 {
			return fmt.Errorf("columns.%s must not be empty", field)
		}
	}
	return nil
}
