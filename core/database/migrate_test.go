package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

var testMigrations = fstest.MapFS{
	"000001_items.up.sql":   {Data: []byte("CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT);")},
	"000001_items.down.sql": {Data: []byte("DROP TABLE items;")},
	"000002_seed.up.sql":    {Data: []byte("INSERT INTO items (id, name) VALUES (1, 'a');")},
	"000002_seed.down.sql":  {Data: []byte("DELETE FROM items;")},
	"README.md":             {Data: []byte("not a migration")},
}

func TestRunMigrationsSQLiteIsRepeatable(t *testing.T) {
	db, err := Connect(Config{Path: filepath.Join(t.TempDir(), "nested", "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(db, DriverSQLite, testMigrations))
	require.NoError(t, RunMigrations(db, DriverSQLite, testMigrations))

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM items"))
	require.Equal(t, 1, count)
}

func TestRunMigrationsRejectsUnknownDriver(t *testing.T) {
	db, err := Connect(Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.Error(t, RunMigrations(db, "mysql", testMigrations))
}

func TestListMigrationFiles(t *testing.T) {
	files := listMigrationFiles(testMigrations)
	require.Equal(t, []string{"000001_items.up.sql", "000002_seed.up.sql"}, files)
	require.Equal(t, []string{"000002_seed.up.sql"}, selectApplied(files, 1, 2))
	require.Empty(t, selectApplied(files, 2, 2))
	require.Equal(t, uint64(2), parseVersion("000002_seed.up.sql"))
}

func TestConfigNormalize(t *testing.T) {
	cfg := Config{}
	require.NoError(t, cfg.Normalize())
	require.Equal(t, DriverSQLite, cfg.Driver)
	require.Equal(t, "postbot.db", cfg.Path)
	require.Equal(t, 1, cfg.MaxConnections)

	pg := Config{Driver: "PostgreSQL", Host: "db", Port: "5432", User: "u", Password: "p", Name: "n"}
	require.NoError(t, pg.Normalize())
	require.Equal(t, DriverPostgres, pg.Driver)
	require.Equal(t, "user=u password=p host=db port=5432 dbname=n sslmode=disable", pg.DSN())

	bad := Config{Driver: "oracle"}
	require.Error(t, bad.Normalize())
}
