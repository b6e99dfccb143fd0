// Package importer loads registry data from XLSX or CSV spreadsheets.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptySheet is returned when a file has no header row.
var ErrEmptySheet = errors.New("spreadsheet has no header row")

// Row is one data line keyed by normalized header. Line is the 1-based line
// number in the source file, header included.
type Row struct {
	Line   int
	Values map[string]string
}

// Get returns the first non-empty value among the given column names.
func (r Row) Get(names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(r.Values[NormalizeHeader(n)]); v != "" {
			return v
		}
	}
	return ""
}

// RowError is a rejected row and why.
type RowError struct {
	Line    int    `json:"linha"`
	Message string `json:"mensagem"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("linha %d: %s", e.Line, e.Message)
}

func rowErr(r Row, format string, args ...interface{}) RowError {
	return RowError{Line: r.Line, Message: fmt.Sprintf(format, args...)}
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeHeader lowercases, removes accents and joins words with "_",
// so "Matrícula SGA" and "matricula_sga" match.
func NormalizeHeader(h string) string {
	s, _, err := transform.String(stripMarks, strings.ToLower(strings.TrimSpace(h)))
	if err != nil {
		s = strings.ToLower(strings.TrimSpace(h))
	}
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), "_")
}

// ReadFile reads the first sheet of an .xlsx file or a CSV file.
func ReadFile(path string) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open xlsx: %w", err)
		}
		defer f.Close()
		return readWorkbook(f)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("open csv: %w", err)
		}
		return ReadCSV(bytes.NewReader(data))
	}
}

// ReadXLSX reads the first sheet of a workbook stream.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	return readWorkbook(f)
}

func readWorkbook(f *excelize.File) ([]Row, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return toRows(records)
}

// ReadCSV reads a comma or semicolon separated stream. The separator is
// taken from the header line.
func ReadCSV(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
		cr.Comma = ';'
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return toRows(records)
}

func toRows(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, ErrEmptySheet
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = NormalizeHeader(h)
	}

	rows := make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		values := make(map[string]string, len(headers))
		for j, h := range headers {
			if h == "" || j >= len(rec) {
				continue
			}
			values[h] = strings.TrimSpace(rec[j])
		}
		rows = append(rows, Row{Line: i + 2, Values: values})
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
