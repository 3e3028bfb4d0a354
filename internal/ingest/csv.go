package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Row is one parsed record, keyed by header column name.
type Row map[string]string

// ParseError indicates a malformed source document. It aborts parsing of
// the whole document: a document with broken quoting or ragged columns
// cannot be trusted past the first defect.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Parse converts headered tabular text into rows.
//
// The first non-empty line is the header; each subsequent non-empty line
// becomes a Row keyed by the header columns. Output order matches input
// row order. Fails with *ParseError on malformed quoting or a column
// count mismatch.
func Parse(raw string) ([]Row, error) {
	raw = strings.TrimPrefix(raw, "\uFEFF") // BOM from spreadsheet exports

	r := csv.NewReader(strings.NewReader(raw))
	// The csv reader skips blank lines itself, so the first record it
	// returns is the first non-empty line. FieldsPerRecord locks to the
	// header width after the first Read.

	header, err := r.Read()
	if err == io.EOF {
		return []Row{}, nil
	}
	if err != nil {
		return nil, asParseError(err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []Row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, asParseError(err)
		}
		row := make(Row, len(header))
		for i, col := range header {
			row[col] = record[i]
		}
		rows = append(rows, row)
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}

// asParseError converts csv reader errors into *ParseError, preserving
// the 1-based line number when the reader reports one.
func asParseError(err error) error {
	var ce *csv.ParseError
	if errors.As(err, &ce) {
		return &ParseError{Line: ce.Line, Message: ce.Err.Error()}
	}
	return &ParseError{Message: err.Error()}
}
