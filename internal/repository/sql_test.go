package repository

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	db.MustExec(`CREATE TABLE industrial_zones (
		id INTEGER PRIMARY KEY,
		name TEXT,
		province TEXT,
		type TEXT,
		raw_price TEXT,
		raw_area REAL
	)`)
	db.MustExec(`INSERT INTO industrial_zones (id, name, province, type, raw_price, raw_area) VALUES
		(2, 'Khu công nghiệp Quế Võ', 'Bắc Ninh', 'Khu công nghiệp', '120 USD', 611),
		(1, 'Khu công nghiệp VSIP II', 'Bình Dương', 'Khu công nghiệp', '85-95 USD/m²/năm', 345.5),
		(3, '  ', 'Bắc Ninh', 'Khu công nghiệp', NULL, NULL),
		(4, 'Cụm công nghiệp Tân Mỹ', 'Bình Dương', 'Cụm công nghiệp', NULL, NULL)`)
	return db
}

func TestSQLSource_Load(t *testing.T) {
	src, err := NewSQLSourceFromDB(openTestDB(t), "industrial_zones")
	require.NoError(t, err)

	records, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	// ORDER BY id, blank names skipped
	assert.Equal(t, "Khu công nghiệp VSIP II", records[0].Name)
	assert.Equal(t, "345.5", records[0].RawArea)
	assert.Equal(t, "Khu công nghiệp Quế Võ", records[1].Name)
	assert.Equal(t, "Cụm công nghiệp Tân Mỹ", records[2].Name)
	assert.Equal(t, "", records[2].RawPrice)
	assert.Equal(t, "sqlite3:industrial_zones", src.Describe())
}

func TestSQLSource_InvalidTable(t *testing.T) {
	db := openTestDB(t)
	for _, table := range []string{"", "zones; DROP TABLE x", "1zones", "a.b.c"} {
		_, err := NewSQLSourceFromDB(db, table)
		assert.Error(t, err, "table %q", table)
	}
	_, err := NewSQLSourceFromDB(db, "public.industrial_zones")
	assert.NoError(t, err)
}

func TestSQLSource_MissingTable(t *testing.T) {
	src, err := NewSQLSourceFromDB(openTestDB(t), "missing")
	require.NoError(t, err)
	_, err = src.Load(context.Background())
	assert.Error(t, err)
}
