package core

// load.go turns CSV text and XLSX sheets into Tables.
//
// CSV sources go through three steps:
//
//  1. A byte-order mark is honored and stripped (UTF-8, or UTF-16 decoded to UTF-8)
//  2. The delimiter is sniffed from the first SniffSampleSize bytes
//  3. encoding/csv parses the whole source with that delimiter
//
// Every failure is a *LoadError. Nothing here touches previously loaded state;
// callers swap the returned Table in only on success.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultMaxSourceSize bounds sources when the caller gives no limit (100MB).
const DefaultMaxSourceSize int64 = 100 * 1024 * 1024

// PastedSource names tables loaded from in-memory text.
const PastedSource = "pasted text"

// Load reads a table from a file path or, when isPath is false, from the
// text itself.
func Load(source string, isPath bool) (*Table, error) {
	if !isPath {
		return LoadReader(strings.NewReader(source), PastedSource, DefaultMaxSourceSize)
	}
	return LoadFile(source, DefaultMaxSourceSize)
}

// LoadFile reads a CSV file. Files with an .xlsx extension are read as
// workbooks (first sheet).
func LoadFile(path string, maxSize int64) (*Table, error) {
	if IsWorkbook(path) {
		return LoadWorkbook(path, "", maxSize)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Kind: LoadUnreadable, Source: path, Err: err}
	}
	defer f.Close()

	return LoadReader(f, path, maxSize)
}

// LoadReader reads a CSV table from r. name is only used in errors and as
// the table's Source.
func LoadReader(r io.Reader, name string, maxSize int64) (*Table, error) {
	raw, err := readLimited(r, name, maxSize)
	if err != nil {
		return nil, err
	}
	return parseCSV(raw, name)
}

// IsWorkbook reports whether name looks like an XLSX workbook.
func IsWorkbook(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

func readLimited(r io.Reader, name string, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSourceSize
	}
	raw, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, &LoadError{Kind: LoadUnreadable, Source: name, Err: err}
	}
	if int64(len(raw)) > maxSize {
		return nil, &LoadError{Kind: LoadTooLarge, Source: name}
	}
	return raw, nil
}

func parseCSV(raw []byte, name string) (*Table, error) {
	data, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), raw)
	if err != nil {
		return nil, &LoadError{Kind: LoadEncoding, Source: name, Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &LoadError{Kind: LoadEncoding, Source: name, Err: errors.New("not valid UTF-8")}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &LoadError{Kind: LoadEmpty, Source: name}
	}

	// One byte past the window shows whether its last line was cut.
	delim := SniffDelimiter(string(data[:min(len(data), SniffSampleSize+1)]))

	rd := csv.NewReader(bytes.NewReader(data))
	rd.Comma = delim
	rd.FieldsPerRecord = 0

	header, err := rd.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Kind: LoadEmpty, Source: name}
		}
		return nil, malformed(name, err)
	}

	t := &Table{
		Columns:   normalizeHeader(header),
		Delimiter: delim,
		Source:    name,
	}
	for {
		row, err := rd.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed(name, err)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func malformed(name string, err error) *LoadError {
	le := &LoadError{Kind: LoadMalformed, Source: name, Err: err}
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		le.Line = pe.Line
		le.Err = pe.Err
	}
	return le
}

// LoadWorkbook reads one sheet of an XLSX workbook. An empty sheet name
// selects the first sheet. The first row is the header; shorter rows are
// padded with empty cells and blank rows are skipped.
func LoadWorkbook(path, sheet string, maxSize int64) (*Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Kind: LoadUnreadable, Source: path, Err: err}
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSourceSize
	}
	if info.Size() > maxSize {
		return nil, &LoadError{Kind: LoadTooLarge, Source: path}
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &LoadError{Kind: LoadUnreadable, Source: path, Err: err}
	}
	defer f.Close()

	return readSheet(f, path, sheet)
}

// LoadWorkbookReader is LoadWorkbook for an uploaded workbook.
func LoadWorkbookReader(r io.Reader, name, sheet string, maxSize int64) (*Table, error) {
	raw, err := readLimited(r, name, maxSize)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &LoadError{Kind: LoadUnreadable, Source: name, Err: err}
	}
	defer f.Close()

	return readSheet(f, name, sheet)
}

func readSheet(f *excelize.File, name, sheet string) (*Table, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &LoadError{Kind: LoadEmpty, Source: name}
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &LoadError{Kind: LoadUnreadable, Source: name, Err: err}
	}

	var header []string
	start := 0
	for ; start < len(rows); start++ {
		if len(rows[start]) > 0 {
			header = rows[start]
			break
		}
	}
	if header == nil {
		return nil, &LoadError{Kind: LoadEmpty, Source: name}
	}

	t := &Table{
		Columns: normalizeHeader(header),
		Source:  name + "#" + sheet,
	}
	width := len(t.Columns)
	for i := start + 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 {
			continue
		}
		if len(row) > width {
			return nil, &LoadError{
				Kind:   LoadMalformed,
				Source: name,
				Line:   i + 1,
				Err:    errors.New("wrong number of fields"),
			}
		}
		cells := make([]string, width)
		copy(cells, row)
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}
