package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"iipviz/internal/config"
	"iipviz/internal/model"
	"iipviz/internal/utils"
)

// Source loads the raw industrial zone records once at startup
type Source interface {
	Load(ctx context.Context) ([]model.Record, error)
	// Describe names the source for logs
	Describe() string
}

// Dataset is the ordered, read-only collection of records every query runs against.
// It is never mutated after construction, so concurrent readers need no locking.
type Dataset struct {
	records     []model.Record
	provinces   []string
	gazetteer   model.Gazetteer
	fingerprint string
}

// NewDataset builds a Dataset from records in source order
func NewDataset(records []model.Record) *Dataset {
	d := &Dataset{records: make([]model.Record, len(records))}
	copy(d.records, records)

	seenProvince := make(map[string]bool)
	seenName := make(map[string]bool)
	names := make([]string, 0, len(records))
	h := sha256.New()

	for _, r := range d.records {
		if p := strings.TrimSpace(r.Province); p != "" {
			if key := utils.Fold(p); !seenProvince[key] {
				seenProvince[key] = true
				d.provinces = append(d.provinces, p)
			}
		}
		if n := strings.TrimSpace(r.Name); n != "" {
			if key := utils.Fold(n); !seenName[key] {
				seenName[key] = true
				names = append(names, n)
			}
		}
		fmt.Fprintf(h, "%s\x1f%s\x1f%s\x1f%s\x1f%s\x1e", r.Name, r.Province, r.Type, r.RawPrice, r.RawArea)
	}

	d.gazetteer = model.Gazetteer{
		Provinces: append([]string(nil), d.provinces...),
		Names:     names,
	}
	d.fingerprint = hex.EncodeToString(h.Sum(nil))[:16]
	return d
}

// Load reads every record from src and builds the Dataset
func Load(ctx context.Context, src Source) (*Dataset, error) {
	records, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset from %s: %w", src.Describe(), err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset from %s is empty", src.Describe())
	}
	return NewDataset(records), nil
}

// NewSource picks the Source configured by DATASET_SOURCE
func NewSource(cfg *config.Config, lex *config.Lexicon) (Source, error) {
	switch cfg.Dataset.Source {
	case config.SourceExcel:
		return NewExcelSource(cfg.Dataset.Path, cfg.Dataset.Sheet, lex.Columns), nil
	case config.SourcePostgres:
		return NewSQLSource(DriverPostgres, cfg.GetPostgreSQLDSN(), cfg.Dataset.Table,
			cfg.PostgreSQL.MaxConnections, cfg.PostgreSQL.MaxIdleConnections)
	case config.SourceSQLite:
		return NewSQLSource(DriverSQLite, cfg.Dataset.Path, cfg.Dataset.Table, 1, 1)
	default:
		return nil, fmt.Errorf("unsupported dataset source: %s", cfg.Dataset.Source)
	}
}

// Records returns a copy of all records in source order
func (d *Dataset) Records() []model.Record {
	out := make([]model.Record, len(d.records))
	copy(out, d.records)
	return out
}

// Len returns the number of records
func (d *Dataset) Len() int {
	return len(d.records)
}

// Provinces returns the distinct provinces in order of first appearance
func (d *Dataset) Provinces() []string {
	return append([]string(nil), d.provinces...)
}

// Gazetteer returns the provinces and site names known to the dataset
func (d *Dataset) Gazetteer() model.Gazetteer {
	return model.Gazetteer{
		Provinces: append([]string(nil), d.gazetteer.Provinces...),
		Names:     append([]string(nil), d.gazetteer.Names...),
	}
}

// Fingerprint identifies the dataset contents; it changes whenever any row does
func (d *Dataset) Fingerprint() string {
	return d.fingerprint
}
