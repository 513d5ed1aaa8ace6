package db

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrNothingToSave is returned when a save is refused because the
	// in-memory collection is empty. The file on disk is left untouched.
	ErrNothingToSave = errors.New("nothing to save")

	// ErrMissingColumn is returned when a row lacks a required column
	ErrMissingColumn = errors.New("missing column")
)

// Files reads and writes the catalog and transaction files
type Files struct {
	catalogPath string
	salesPath   string
	log         *zap.Logger
}

// NewFiles creates a Files bound to the two data file paths
func NewFiles(catalogPath, salesPath string, log *zap.Logger) *Files {
	return &Files{
		catalogPath: catalogPath,
		salesPath:   salesPath,
		log:         log,
	}
}

// CatalogPath returns the catalog file path
func (f *Files) CatalogPath() string {
	return f.catalogPath
}

// SalesPath returns the transaction file path
func (f *Files) SalesPath() string {
	return f.salesPath
}

// record is one data row keyed by header name
type record struct {
	line   int
	fields map[string]string
}

func (r record) get(column string) (string, error) {
	v, ok := r.fields[column]
	if !ok {
		return "", errors.Wrap(ErrMissingColumn, column)
	}
	return v, nil
}

// readRecords reads a header-first CSV file. found is false when the file
// does not exist. Rows the CSV reader cannot tokenize are passed to onBad
// and skipped.
func readRecords(path string, onBad func(line int, err error)) (records []record, found bool, err error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "open %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, true, nil
	}
	if err != nil {
		return nil, true, errors.Wrapf(err, "read header of %s", path)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				onBad(parseErr.StartLine, err)
				continue
			}
			return nil, true, errors.Wrapf(err, "read %s", path)
		}
		line, _ := reader.FieldPos(0)

		fields := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) {
				fields[name] = row[i]
			}
		}
		records = append(records, record{line: line, fields: fields})
	}

	return records, true, nil
}

// writeFileAtomic writes through a temporary file in the destination
// directory and renames it over path once the content is synced.
func writeFileAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "create temp file for %s", path)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return errors.Wrapf(err, "chmod %s", tmp.Name())
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrapf(err, "sync %s", tmp.Name())
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmp.Name())
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "replace %s", path)
	}
	return nil
}
