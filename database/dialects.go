package db

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// DefaultODBCDriver is the Windows name of the Jet ODBC driver. mdbtools
// installs itself as "MDBTools" instead.
const DefaultODBCDriver = "Microsoft Access Driver (*.mdb)"

// Dialect describes how a file format is reached through database/sql.
type Dialect struct {
	Name string

	// SQLDriver is the name the database/sql driver registered itself under.
	SQLDriver string

	DSN func(path, password string) string

	// CatalogQuery lists every catalog entry; ScanCatalog turns one of its
	// rows into a descriptor.
	CatalogQuery string
	ScanCatalog  func(rows *sql.Rows) (TableDescriptor, error)

	// Quote overrides the default [bracket] identifier quoting.
	Quote func(name string) string

	// TableLister names a registered TableLister used when CatalogQuery
	// fails.
	TableLister string
}

// Options carries settings a dialect factory may need.
type Options struct {
	ODBCDriver string
}

// DialectFactory builds a Dialect from Options.
type DialectFactory func(opts Options) Dialect

var (
	dialectsMu sync.RWMutex
	dialects   = make(map[string]DialectFactory)
)

// RegisterDialect makes a dialect available under name.
func RegisterDialect(name string, factory DialectFactory) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[name] = factory
}

// LookupDialect returns the dialect registered under name.
func LookupDialect(name string, opts Options) (Dialect, error) {
	dialectsMu.RLock()
	factory, ok := dialects[name]
	dialectsMu.RUnlock()
	if !ok {
		return Dialect{}, fmt.Errorf("unsupported driver: %s (available: %s)", name, strings.Join(Dialects(), ", "))
	}
	return factory(opts), nil
}

// Dialects returns the registered dialect names, sorted.
func Dialects() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	RegisterDialect("jet", Jet)
	RegisterDialect("sqlite", SQLite)
	RegisterDialect("duckdb", DuckDB)
}

// Jet reaches .mdb files through ODBC.
func Jet(opts Options) Dialect {
	odbcDriver := opts.ODBCDriver
	if odbcDriver == "" {
		odbcDriver = DefaultODBCDriver
	}
	return Dialect{
		Name:      "jet",
		SQLDriver: "odbc",
		DSN: func(path, password string) string {
			dsn := fmt.Sprintf("Driver=%s;Dbq=%s;", odbcValue(odbcDriver), odbcValue(path))
			if password != "" {
				dsn += fmt.Sprintf("Pwd=%s;", odbcValue(password))
			}
			return dsn
		},
		// Most files deny external clients read permission on MSysObjects.
		// The odbc lister falls back to SQLTables for those.
		CatalogQuery: "SELECT Name, Type, Flags FROM MSysObjects",
		ScanCatalog:  scanJetCatalog,
		TableLister:  "odbc",
	}
}

// odbcValue braces a connection string value so ';' and '=' inside it are
// taken literally. A '}' in the value is doubled.
func odbcValue(s string) string {
	return "{" + strings.ReplaceAll(s, "}", "}}") + "}"
}

// MSysObjects type 1 is a local table; system and hidden temporary tables
// carry non-zero flags or a reserved prefix.
func scanJetCatalog(rows *sql.Rows) (TableDescriptor, error) {
	var name string
	var typ, flags sql.NullInt64
	if err := rows.Scan(&name, &typ, &flags); err != nil {
		return TableDescriptor{}, errors.Wrap(err, "scanning MSysObjects row")
	}
	kind := KindOther
	if typ.Int64 == 1 && flags.Int64 == 0 &&
		!strings.HasPrefix(name, "MSys") && !strings.HasPrefix(name, "~") {
		kind = KindTable
	}
	return TableDescriptor{Name: name, Kind: kind}, nil
}

// SQLite files carry no password; it is ignored. The file is opened
// read-only so a missing path fails instead of creating an empty database.
func SQLite(Options) Dialect {
	return Dialect{
		Name:      "sqlite",
		SQLDriver: "sqlite",
		DSN: func(path, _ string) string {
			return "file:" + path + "?mode=ro"
		},
		CatalogQuery: "SELECT name, type FROM sqlite_master WHERE type IN ('table', 'view')",
		ScanCatalog: func(rows *sql.Rows) (TableDescriptor, error) {
			var name, typ string
			if err := rows.Scan(&name, &typ); err != nil {
				return TableDescriptor{}, errors.Wrap(err, "scanning sqlite_master row")
			}
			kind := KindOther
			if typ == "table" && !strings.HasPrefix(name, "sqlite_") {
				kind = KindTable
			}
			return TableDescriptor{Name: name, Kind: kind}, nil
		},
	}
}

// DuckDB files carry no password; the database is opened read-only.
func DuckDB(Options) Dialect {
	return Dialect{
		Name:      "duckdb",
		SQLDriver: "duckdb",
		DSN: func(path, _ string) string {
			return path + "?access_mode=read_only"
		},
		CatalogQuery: "SELECT table_name, table_type FROM information_schema.tables WHERE table_schema = 'main'",
		ScanCatalog: func(rows *sql.Rows) (TableDescriptor, error) {
			var name, typ string
			if err := rows.Scan(&name, &typ); err != nil {
				return TableDescriptor{}, errors.Wrap(err, "scanning information_schema row")
			}
			kind := KindOther
			if typ == "BASE TABLE" {
				kind = KindTable
			}
			return TableDescriptor{Name: name, Kind: kind}, nil
		},
		Quote: func(name string) string {
			return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
		},
	}
}

// TableLister lists the catalog of the database behind dsn without going
// through CatalogQuery.
type TableLister func(dsn string) ([]TableDescriptor, error)

var (
	listersMu sync.RWMutex
	listers   = make(map[string]TableLister)
)

// RegisterTableLister makes lister available to dialects naming it. Listers
// that need cgo register themselves from their own package so that importing
// db alone never links them in.
func RegisterTableLister(name string, lister TableLister) {
	listersMu.Lock()
	defer listersMu.Unlock()
	if lister == nil {
		delete(listers, name)
		return
	}
	listers[name] = lister
}

func lookupTableLister(name string) TableLister {
	if name == "" {
		return nil
	}
	listersMu.RLock()
	defer listersMu.RUnlock()
	return listers[name]
}
