package db

// Kind classifies a catalog entry.
type Kind int

const (
	KindOther Kind = iota
	KindTable
)

func (k Kind) String() string {
	if k == KindTable {
		return "TABLE"
	}
	return "OTHER"
}

// TableDescriptor is one catalog entry as reported by the driver. Only
// entries of KindTable hold user data; system tables, views and linked
// tables are KindOther.
type TableDescriptor struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// KindOfTableType maps the TABLE_TYPE column of the ODBC and OLE DB table
// catalogs. Only "TABLE" is a user table.
func KindOfTableType(tableType string) Kind {
	if tableType == "TABLE" {
		return KindTable
	}
	return KindOther
}
