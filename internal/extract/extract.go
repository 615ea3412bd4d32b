// Package extract dumps the user tables of a database file into one
// tab-separated file per table.
//
// A run opens the file once, lists its tables once and exports them one
// after another over that connection. The first error stops the run; files
// written before it stay on disk.
package extract

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	db "github.com/KazanKK/mdbextract/database"
	"github.com/KazanKK/mdbextract/internal/metrics"
	"github.com/KazanKK/mdbextract/internal/password"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Extractor exports database files to TSV.
type Extractor struct {
	Driver db.Driver

	// Password, when set, is used instead of the one recovered from the
	// file header.
	Password string

	Log     *logrus.Entry
	Metrics *metrics.Recorder
}

// OutputFile describes one written TSV file.
type OutputFile struct {
	Path  string
	Table string
	Lines int64
	Bytes int64
}

// New returns an Extractor using driver.
func New(driver db.Driver, log *logrus.Entry) *Extractor {
	return &Extractor{Driver: driver, Log: log}
}

func (e *Extractor) log() *logrus.Entry {
	if e.Log == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return e.Log
}

// ExtractToTsv writes every user table of the file at inputPath to
// outputDir.
func (e *Extractor) ExtractToTsv(inputPath, outputDir string) error {
	_, err := e.Extract(inputPath, outputDir)
	return err
}

// Extract is ExtractToTsv returning the files written. On failure the files
// completed before the failing table are returned along with the error.
func (e *Extractor) Extract(inputPath, outputDir string) (files []OutputFile, err error) {
	database := DatabaseName(inputPath)
	defer func() { e.Metrics.ObserveRun(database, err) }()

	conn, err := e.Open(inputPath)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	tables, err := ListTables(conn)
	if err != nil {
		return nil, err
	}
	e.log().Infof("Found %d tables in %s", len(tables), inputPath)

	for _, table := range tables {
		out, err := e.ExportTable(conn, inputPath, outputDir, table)
		if err != nil {
			return files, err
		}
		files = append(files, *out)
	}
	return files, nil
}

// Open recovers the file's password and connects to it. The caller must
// close the returned connection.
func (e *Extractor) Open(inputPath string) (db.Conn, error) {
	pw := e.Password
	if pw == "" {
		recovered, err := password.Recover(inputPath)
		switch {
		case errors.Is(err, password.ErrUnrecognized):
			e.log().Warnf("Password header of %s not recognized, opening without a password", inputPath)
		case err != nil:
			return nil, newError(KindIO, "recovering password", err)
		}
		pw = recovered
	} else if _, err := os.Stat(inputPath); err != nil {
		// Some drivers create a missing file on open.
		return nil, newError(KindIO, "opening input", err)
	}
	e.log().WithField("password_protected", pw != "").Debugf("Opening %s", inputPath)

	conn, err := e.Driver.Open(inputPath, pw)
	if err != nil {
		return nil, newError(KindConnection, "opening "+inputPath, err)
	}
	return conn, nil
}

// ListTables returns the names of the user tables, in driver order.
func ListTables(conn db.Conn) ([]string, error) {
	descriptors, err := conn.ListTables()
	if err != nil {
		return nil, newError(KindSchema, "listing tables", err)
	}

	var tables []string
	for _, d := range descriptors {
		if d.Kind == db.KindTable {
			tables = append(tables, d.Name)
		}
	}
	return tables, nil
}

// ExportTable writes every row of table to its TSV file in outputDir,
// replacing any previous content. No header line is written.
func (e *Extractor) ExportTable(conn db.Conn, inputPath, outputDir, table string) (*OutputFile, error) {
	start := time.Now()
	log := e.log().WithField("table", table)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, newError(KindIO, "creating output directory", err)
	}
	outputPath := OutputPath(inputPath, outputDir, table)

	rows, err := conn.Query(fmt.Sprintf("SELECT * FROM %s", quoteIdentifier(conn, table)))
	if err != nil {
		return nil, newError(KindQuery, "exporting table "+table, err)
	}
	defer rows.Close()

	file, err := os.Create(outputPath)
	if err != nil {
		return nil, newError(KindIO, "creating TSV file", err)
	}
	defer file.Close()

	// TODO: emit a header line once a consumer needs column names.
	writer := bufio.NewWriter(file)
	out := &OutputFile{Path: outputPath, Table: table}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, newError(KindQuery, "exporting table "+table, err)
		}
		n, err := writer.WriteString(FormatRow(values) + "\n")
		if err != nil {
			return nil, newError(KindIO, "writing TSV row", err)
		}
		out.Lines++
		out.Bytes += int64(n)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(KindQuery, "exporting table "+table, err)
	}

	if err := writer.Flush(); err != nil {
		return nil, newError(KindIO, "writing TSV file", err)
	}
	if err := file.Close(); err != nil {
		return nil, newError(KindIO, "closing TSV file", err)
	}

	took := time.Since(start)
	e.Metrics.ObserveTable(DatabaseName(inputPath), table, out.Lines, out.Bytes, took)
	log.WithFields(logrus.Fields{
		"rows": out.Lines,
		"size": humanize.Bytes(uint64(out.Bytes)),
		"took": took.Round(time.Millisecond),
	}).Infof("Exported table to %s", outputPath)
	return out, nil
}

// OutputPath returns <outputDir>/<input name without extension>-<table>.tsv.
func OutputPath(inputPath, outputDir, table string) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s-%s.tsv", DatabaseName(inputPath), table))
}

// DatabaseName is the input file's base name without its extension.
func DatabaseName(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FormatRow joins the text form of every value with tabs. Embedded tabs
// and newlines are written as they are.
func FormatRow(values []interface{}) string {
	fields := make([]string, len(values))
	for i, val := range values {
		fields[i] = formatValue(val)
	}
	return strings.Join(fields, "\t")
}

func formatValue(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func quoteIdentifier(conn db.Conn, name string) string {
	if q, ok := conn.(db.IdentifierQuoter); ok {
		return q.QuoteIdentifier(name)
	}
	return "[" + name + "]"
}
