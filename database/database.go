package db

// Driver opens a database file. An empty password means the file is opened
// without one.
type Driver interface {
	Open(path, password string) (Conn, error)
}

// Conn is an open connection to a single database file.
type Conn interface {
	ListTables() ([]TableDescriptor, error)
	Query(query string) (Rows, error)
	Close() error
}

// Rows is a lazy, single-pass cursor over a query result. It cannot be
// rewound; callers must Close it when done.
type Rows interface {
	Next() bool
	Values() ([]interface{}, error)
	Err() error
	Close() error
}

// IdentifierQuoter is implemented by connections whose SQL dialect does not
// accept bracket-quoted identifiers.
type IdentifierQuoter interface {
	QuoteIdentifier(name string) string
}
