// Package spreadsheet reads contact rows from CSV and XLSX files.
//
// Rows are returned as column name to value maps, with the column names taken
// from the first row. Nothing is validated: rows may miss columns or hold
// empty values.
package spreadsheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var ErrUnsupported = errors.New("spreadsheet: unsupported file type")

// Open reads the rows of the file at path, choosing the format from its extension.
func Open(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return ReadCSV(f)
	case ".xlsx", ".xlsm":
		return ReadXLSX(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
}

// ReadCSV reads comma or semicolon separated values. Input that is not valid
// UTF-8 is decoded as Windows-1252, which spreadsheet exports commonly use.
func ReadCSV(r io.Reader) ([]map[string]any, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimPrefix(b, []byte("\ufeff"))
	if !utf8.Valid(b) {
		b, _, err = transform.Bytes(charmap.Windows1252.NewDecoder(), b)
		if err != nil {
			return nil, err
		}
	}

	cr := csv.NewReader(bytes.NewReader(b))
	cr.Comma = separator(b)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return rows(records), nil
}

// separator guesses the field separator from the header line.
func separator(b []byte) rune {
	header, _ := bufio.NewReader(bytes.NewReader(b)).ReadString('\n')
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}

// ReadXLSX reads the first sheet of a workbook.
func ReadXLSX(r io.Reader) ([]map[string]any, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	return rows(records), nil
}

// rows maps every record after the first to the column names of the first.
// Cells beyond the header are dropped and blank lines are skipped.
func rows(records [][]string) []map[string]any {
	if len(records) == 0 {
		return nil
	}
	header := records[0]
	out := make([]map[string]any, 0, len(records)-1)
	for _, record := range records[1:] {
		if blank(record) {
			continue
		}
		row := make(map[string]any, len(header))
		for i, cell := range record {
			if i < len(header) && header[i] != "" {
				row[header[i]] = cell
			}
		}
		out = append(out, row)
	}
	return out
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
