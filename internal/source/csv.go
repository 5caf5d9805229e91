package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vvka-141/reviewbench/internal/files/filesystem"
	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

// Header names of the required columns. The index column has an empty name.
const (
	ColumnIndex  = ""
	ColumnType   = "type"
	ColumnReview = "review"
	ColumnLabel  = "label"
	ColumnFile   = "file"
)

var requiredColumns = []string{ColumnIndex, ColumnType, ColumnReview, ColumnLabel, ColumnFile}

// Loader reads review CSV files through a FileSystemProvider.
type Loader struct {
	fs     filesystem.FileSystemProvider
	logger reviewbench.Logger
}

// NewLoader creates a Loader. Panics if fs or logger is nil.
func NewLoader(fs filesystem.FileSystemProvider, logger reviewbench.Logger) *Loader {
	if fs == nil {
		panic("fs cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Loader{fs: fs, logger: logger}
}

// Load reads all records of the file at path, decoded with the named encoding.
// All failures wrap reviewbench.ErrSourceLoad.
func (l *Loader) Load(path, encodingName string) ([]reviewbench.ReviewRecord, error) {
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}

	f, err := l.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %v: %w", path, err, reviewbench.ErrSourceLoad)
	}
	defer f.Close()

	records, err := Parse(enc.NewDecoder().Reader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	l.logger.Verbose("Loaded %d records from %s (%s)", len(records), path, encodingName)
	return records, nil
}

// Parse reads UTF-8 CSV from r.
func Parse(r io.Reader) ([]reviewbench.ReviewRecord, error) {
	reader := csv.NewReader(r)
	// Rows may carry extra fields and bare quotes; only a missing
	// required column fails the load.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("file is empty, expected a header row: %w", reviewbench.ErrSourceLoad)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %v: %w", err, reviewbench.ErrSourceLoad)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	idx, err := columnIndexes(header)
	if err != nil {
		return nil, err
	}
	lastRequired := 0
	for _, pos := range idx {
		lastRequired = max(lastRequired, pos)
	}

	var records []reviewbench.ReviewRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d: %v: %w", len(records)+1, err, reviewbench.ErrSourceLoad)
		}
		if len(row) <= lastRequired {
			return nil, fmt.Errorf("record %d has %d fields, expected at least %d: %w",
				len(records)+1, len(row), lastRequired+1, reviewbench.ErrSourceLoad)
		}

		records = append(records, reviewbench.ReviewRecord{
			RowNumber: row[idx[ColumnIndex]],
			Type:      row[idx[ColumnType]],
			Review:    row[idx[ColumnReview]],
			Label:     row[idx[ColumnLabel]],
			File:      row[idx[ColumnFile]],
		})
	}

	return records, nil
}

// columnIndexes maps each required column to its position in header.
// The first occurrence wins when a name repeats.
func columnIndexes(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	idx := make(map[string]int, len(requiredColumns))
	var missing []string
	for _, col := range requiredColumns {
		pos, ok := positions[col]
		if !ok {
			missing = append(missing, fmt.Sprintf("%q", col))
			continue
		}
		idx[col] = pos
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("header is missing required columns %v: %w", missing, reviewbench.ErrSourceLoad)
	}
	return idx, nil
}
