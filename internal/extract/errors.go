package extract

import (
	"github.com/pkg/errors"
)

// ErrorKind classifies extraction failures. Every kind aborts the run.
type ErrorKind int

const (
	// KindIO covers the input file header and the output directory or files.
	KindIO ErrorKind = iota + 1
	// KindConnection means the driver could not open the database.
	KindConnection
	// KindSchema means the table catalog could not be read.
	KindSchema
	// KindQuery means a table's rows could not be read.
	KindQuery
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io error"
	case KindConnection:
		return "connection error"
	case KindSchema:
		return "schema error"
	case KindQuery:
		return "query error"
	default:
		return "error"
	}
}

// Error is returned by every Extractor operation.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func newError(kind ErrorKind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}
