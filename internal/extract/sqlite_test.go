package extract

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	db "github.com/KazanKK/mdbextract/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func createSQLiteFile(t *testing.T, path string) {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer sqlDB.Close()

	_, err = sqlDB.Exec(`
		CREATE TABLE Customers (ID INTEGER PRIMARY KEY, Name TEXT);
		CREATE TABLE "Order Details" (OrderID INTEGER, Product TEXT, Price REAL, Note TEXT);
		CREATE VIEW CustomerNames AS SELECT Name FROM Customers;

		INSERT INTO Customers (ID, Name) VALUES (1, 'Alice'), (2, 'Bob');
		INSERT INTO "Order Details" (OrderID, Product, Price, Note) VALUES
			(1, 'Widget', 2.5, NULL),
			(1, 'Gadget', 10, 'gift'),
			(2, 'Widget', 2.5, '');
	`)
	require.NoError(t, err)
}

func TestExtractSQLiteFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "Sales.sqlite")
	createSQLiteFile(t, input)
	outDir := filepath.Join(dir, "out")

	driver, err := db.NewSQLDriver("sqlite", db.Options{}, nullLog())
	require.NoError(t, err)

	files, err := New(driver, nullLog()).Extract(input, outDir)
	require.NoError(t, err)

	var tables []string
	for _, f := range files {
		tables = append(tables, f.Table)
	}
	assert.ElementsMatch(t, []string{"Customers", "Order Details"}, tables)

	customers, err := os.ReadFile(filepath.Join(outDir, "Sales-Customers.tsv"))
	require.NoError(t, err)
	assert.Equal(t, "1\tAlice\n2\tBob\n", string(customers))

	details, err := os.ReadFile(filepath.Join(outDir, "Sales-Order Details.tsv"))
	require.NoError(t, err)
	assert.Equal(t, "1\tWidget\t2.5\t\n1\tGadget\t10\tgift\n2\tWidget\t2.5\t\n", string(details))

	_, err = os.Stat(filepath.Join(outDir, "Sales-CustomerNames.tsv"))
	assert.True(t, os.IsNotExist(err))
}

func TestSQLiteDriverDoesNotCreateMissingFile(t *testing.T) {
	input := filepath.Join(t.TempDir(), "Typo.sqlite")

	driver, err := db.NewSQLDriver("sqlite", db.Options{}, nullLog())
	require.NoError(t, err)

	_, err = driver.Open(input, "")
	require.Error(t, err)

	_, err = os.Stat(input)
	assert.True(t, os.IsNotExist(err))
}
