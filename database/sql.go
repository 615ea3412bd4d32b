package db

import (
	"database/sql"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// SQLDriver binds the Driver capability to a database/sql driver through a
// Dialect. The database/sql driver itself must be linked in by the binary
// with a blank import.
type SQLDriver struct {
	Dialect Dialect
	Log     *logrus.Entry
}

// NewSQLDriver looks up the named dialect and returns a driver for it.
func NewSQLDriver(name string, opts Options, log *logrus.Entry) (*SQLDriver, error) {
	dialect, err := LookupDialect(name, opts)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &SQLDriver{
		Dialect: dialect,
		Log:     log.WithField("driver", dialect.Name),
	}, nil
}

// Open connects to the file and verifies the connection.
func (d *SQLDriver) Open(path, password string) (Conn, error) {
	dsn := d.Dialect.DSN(path, password)
	sqlDB, err := sql.Open(d.Dialect.SQLDriver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s with %s driver", path, d.Dialect.SQLDriver)
	}
	// One run holds one connection; tables are read strictly in sequence.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, errors.Wrapf(err, "connecting to %s", path)
	}
	d.Log.Debugf("Connected to %s", path)
	return newConn(sqlDB, d.Dialect, dsn, d.Log), nil
}

// NewConn wraps an already open *sql.DB. Without a DSN the dialect's
// TableLister is never used.
func NewConn(sqlDB *sql.DB, dialect Dialect, log *logrus.Entry) Conn {
	return newConn(sqlDB, dialect, "", log)
}

func newConn(sqlDB *sql.DB, dialect Dialect, dsn string, log *logrus.Entry) Conn {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	c := &sqlConn{DB: sqlDB, dialect: dialect, dsn: dsn, log: log}
	if dialect.Quote != nil {
		return &quotingConn{c}
	}
	return c
}

type sqlConn struct {
	DB      *sql.DB
	dialect Dialect
	dsn     string
	log     *logrus.Entry
}

type quotingConn struct {
	*sqlConn
}

func (c *quotingConn) QuoteIdentifier(name string) string {
	return c.dialect.Quote(name)
}

func (c *sqlConn) logSQL(operation, query string) {
	c.log.WithField("operation", operation).Debug(query)
}

func (c *sqlConn) ListTables() ([]TableDescriptor, error) {
	if c.DB == nil {
		return nil, errors.New("no database connection")
	}
	tables, err := c.queryCatalog()
	if err == nil {
		return tables, nil
	}

	lister := lookupTableLister(c.dialect.TableLister)
	if lister == nil || c.dsn == "" {
		return nil, err
	}
	c.log.WithError(err).Warnf("Catalog query failed, listing tables through %s", c.dialect.TableLister)
	tables, lerr := lister(c.dsn)
	if lerr != nil {
		return nil, errors.Wrapf(lerr, "listing tables through %s after %v", c.dialect.TableLister, err)
	}
	return tables, nil
}

func (c *sqlConn) queryCatalog() ([]TableDescriptor, error) {
	c.logSQL("List Tables", c.dialect.CatalogQuery)

	rows, err := c.DB.Query(c.dialect.CatalogQuery)
	if err != nil {
		return nil, errors.Wrap(err, "querying tables")
	}
	defer rows.Close()

	var tables []TableDescriptor
	for rows.Next() {
		table, err := c.dialect.ScanCatalog(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "reading tables")
	}
	return tables, nil
}

func (c *sqlConn) Query(query string) (Rows, error) {
	if c.DB == nil {
		return nil, errors.New("no database connection")
	}
	c.logSQL("Query", query)

	rows, err := c.DB.Query(query)
	if err != nil {
		return nil, errors.Wrap(err, "querying data")
	}
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, errors.Wrap(err, "reading columns")
	}

	values := make([]interface{}, len(columns))
	valuePtrs := make([]interface{}, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}
	return &sqlRows{rows: rows, values: values, valuePtrs: valuePtrs}, nil
}

func (c *sqlConn) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

type sqlRows struct {
	rows      *sql.Rows
	values    []interface{}
	valuePtrs []interface{}
}

func (r *sqlRows) Next() bool {
	return r.rows.Next()
}

// Values scans the current row. The returned slice is reused by the next
// call.
func (r *sqlRows) Values() ([]interface{}, error) {
	if err := r.rows.Scan(r.valuePtrs...); err != nil {
		return nil, errors.Wrap(err, "scanning row")
	}
	return r.values, nil
}

func (r *sqlRows) Err() error {
	return r.rows.Err()
}

func (r *sqlRows) Close() error {
	return r.rows.Close()
}
