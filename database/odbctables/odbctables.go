// Package odbctables lists tables through the ODBC SQLTables catalog
// function. It serves Jet files that refuse to let external clients read
// MSysObjects.
//
// Importing the package registers the lister under the name "odbc".
package odbctables

import (
	"unsafe"

	db "github.com/KazanKK/mdbextract/database"

	"github.com/alexbrainman/odbc"
	"github.com/alexbrainman/odbc/api"
	"github.com/pkg/errors"
)

func init() {
	db.RegisterTableLister("odbc", ListTables)
}

// SQLTables result columns, 1-based.
const (
	colTableName = 3
	colTableType = 4
)

// ListTables connects to dsn on a fresh ODBC environment and returns every
// catalog entry SQLTables reports. Entries of type TABLE are user tables.
func ListTables(dsn string) ([]db.TableDescriptor, error) {
	var env api.SQLHANDLE
	ret := api.SQLAllocHandle(api.SQL_HANDLE_ENV, api.SQLHANDLE(api.SQL_NULL_HANDLE), &env)
	if odbc.IsError(ret) {
		return nil, errors.Wrap(odbc.NewError("SQLAllocHandle", api.SQLHENV(env)), "allocating ODBC environment")
	}
	defer api.SQLFreeHandle(api.SQL_HANDLE_ENV, env)

	ret = api.SQLSetEnvUIntPtrAttr(api.SQLHENV(env), api.SQL_ATTR_ODBC_VERSION, api.SQL_OV_ODBC3, 0)
	if odbc.IsError(ret) {
		return nil, errors.Wrap(odbc.NewError("SQLSetEnvUIntPtrAttr", api.SQLHENV(env)), "setting ODBC version")
	}

	var dbc api.SQLHANDLE
	ret = api.SQLAllocHandle(api.SQL_HANDLE_DBC, env, &dbc)
	if odbc.IsError(ret) {
		return nil, errors.Wrap(odbc.NewError("SQLAllocHandle", api.SQLHENV(env)), "allocating ODBC connection")
	}
	defer api.SQLFreeHandle(api.SQL_HANDLE_DBC, dbc)

	conn := api.StringToUTF16(dsn)
	ret = api.SQLDriverConnect(api.SQLHDBC(dbc), 0,
		(*api.SQLWCHAR)(unsafe.Pointer(&conn[0])), api.SQL_NTS,
		nil, 0, nil, api.SQL_DRIVER_NOPROMPT)
	if odbc.IsError(ret) {
		return nil, errors.Wrap(odbc.NewError("SQLDriverConnect", api.SQLHDBC(dbc)), "connecting")
	}
	defer api.SQLDisconnect(api.SQLHDBC(dbc))

	var stmt api.SQLHANDLE
	ret = api.SQLAllocHandle(api.SQL_HANDLE_STMT, dbc, &stmt)
	if odbc.IsError(ret) {
		return nil, errors.Wrap(odbc.NewError("SQLAllocHandle", api.SQLHDBC(dbc)), "allocating ODBC statement")
	}
	defer api.SQLFreeHandle(api.SQL_HANDLE_STMT, stmt)

	h := api.SQLHSTMT(stmt)
	ret = api.SQLTables(h, nil, 0, nil, 0, nil, 0, nil, 0)
	if odbc.IsError(ret) {
		return nil, errors.Wrap(odbc.NewError("SQLTables", h), "listing tables")
	}

	var tables []db.TableDescriptor
	for {
		ret = api.SQLFetch(h)
		if ret == api.SQL_NO_DATA {
			break
		}
		if odbc.IsError(ret) {
			return nil, errors.Wrap(odbc.NewError("SQLFetch", h), "reading tables")
		}
		name, err := getString(h, colTableName)
		if err != nil {
			return nil, err
		}
		typ, err := getString(h, colTableType)
		if err != nil {
			return nil, err
		}
		tables = append(tables, db.TableDescriptor{Name: name, Kind: db.KindOfTableType(typ)})
	}
	return tables, nil
}

func getString(h api.SQLHSTMT, col int) (string, error) {
	buf := make([]uint16, 512)
	var n api.SQLLEN
	ret := api.SQLGetData(h, api.SQLUSMALLINT(col), api.SQL_C_WCHAR,
		api.SQLPOINTER(unsafe.Pointer(&buf[0])), api.SQLLEN(len(buf)*2), &n)
	if odbc.IsError(ret) {
		return "", errors.Wrap(odbc.NewError("SQLGetData", h), "reading catalog column")
	}
	if n == api.SQL_NULL_DATA || n <= 0 {
		return "", nil
	}
	chars := int(n) / 2
	if chars > len(buf)-1 {
		chars = len(buf) - 1
	}
	return api.UTF16ToString(buf[:chars]), nil
}
