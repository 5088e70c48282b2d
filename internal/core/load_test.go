package core

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
)

func TestLoad_Text(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCols  []string
		wantRows  int
		wantDelim rune
	}{
		{
			name:      "comma separated",
			input:     "a,b\n1,2\n3,4\n",
			wantCols:  []string{"a", "b"},
			wantRows:  2,
			wantDelim: ',',
		},
		{
			name:      "semicolon separated",
			input:     "a;b\n1;2\n",
			wantCols:  []string{"a", "b"},
			wantRows:  1,
			wantDelim: ';',
		},
		{
			name:      "utf-8 byte order mark is stripped",
			input:     "\xef\xbb\xbfitem,score\nx,1\n",
			wantCols:  []string{"item", "score"},
			wantRows:  1,
			wantDelim: ',',
		},
		{
			name:      "header only",
			input:     "a,b\n",
			wantCols:  []string{"a", "b"},
			wantRows:  0,
			wantDelim: ',',
		},
		{
			name:      "blank and duplicate headers",
			input:     "a,a,\n1,2,3\n",
			wantCols:  []string{"a", "a.1", "Unnamed: 2"},
			wantRows:  1,
			wantDelim: ',',
		},
		{
			name:      "quoted fields keep delimiters",
			input:     "name|note\n\"x|y\"|1\n",
			wantCols:  []string{"name", "note"},
			wantRows:  1,
			wantDelim: '|',
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Load(tt.input, false)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !reflect.DeepEqual(tbl.Columns, tt.wantCols) {
				t.Errorf("Columns = %v, want %v", tbl.Columns, tt.wantCols)
			}
			if tbl.Len() != tt.wantRows {
				t.Errorf("Len() = %d, want %d", tbl.Len(), tt.wantRows)
			}
			if tbl.Delimiter != tt.wantDelim {
				t.Errorf("Delimiter = %q, want %q", tbl.Delimiter, tt.wantDelim)
			}
			if tbl.Source != PastedSource {
				t.Errorf("Source = %q, want %q", tbl.Source, PastedSource)
			}
			if err := tbl.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestLoad_UTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	raw, err := enc.String("a;b\n1;2\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	tbl, err := LoadReader(strings.NewReader(raw), "utf16.csv", 0)
	if err != nil {
		t.Fatalf("LoadReader() error = %v", err)
	}
	if !reflect.DeepEqual(tbl.Columns, []string{"a", "b"}) {
		t.Errorf("Columns = %v, want [a b]", tbl.Columns)
	}
	if tbl.Rows[0][1] != "2" {
		t.Errorf("Rows[0][1] = %q, want %q", tbl.Rows[0][1], "2")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxSize  int64
		wantKind LoadErrorKind
		wantLine int
	}{
		{name: "empty", input: "", wantKind: LoadEmpty},
		{name: "whitespace only", input: " \n\n", wantKind: LoadEmpty},
		{name: "row too long", input: "a,b\n1,2\n3,4,5\n", wantKind: LoadMalformed, wantLine: 3},
		{name: "row too short", input: "a,b,c\n1,2,3\n4,5,6\n7\n", wantKind: LoadMalformed, wantLine: 4},
		{name: "broken quote", input: "a,b\n\"x,1\n", wantKind: LoadMalformed},
		{name: "invalid utf-8", input: "a,b\n\xff,1\n", wantKind: LoadEncoding},
		{name: "too large", input: "a,b\n1,2\n", maxSize: 4, wantKind: LoadTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadReader(strings.NewReader(tt.input), "in.csv", tt.maxSize)

			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("LoadReader() error = %v, want *LoadError", err)
			}
			if le.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", le.Kind, tt.wantKind)
			}
			if tt.wantLine > 0 && le.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", le.Line, tt.wantLine)
			}
			if le.Source != "in.csv" {
				t.Errorf("Source = %q, want %q", le.Source, "in.csv")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scores.csv")
	if err := os.WriteFile(path, []byte("item\tvalue\nx\t1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tbl.Source != path {
		t.Errorf("Source = %q, want %q", tbl.Source, path)
	}

	_, err = LoadFile(filepath.Join(dir, "missing.csv"), 0)
	var le *LoadError
	if !errors.As(err, &le) || le.Kind != LoadUnreadable {
		t.Errorf("LoadFile(missing) error = %v, want source unreadable", err)
	}
}

func writeWorkbook(t *testing.T, path string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	cells := map[string]any{
		"A1": "item", "B1": "score", "C1": "group",
		"A2": "speed", "B2": 12, "C2": "red",
		// row 3 left blank
		"A4": "grip", "B4": 7.5,
	}
	for cell, v := range cells {
		if err := f.SetCellValue("Sheet1", cell, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func TestLoadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.xlsx")
	writeWorkbook(t, path)

	tbl, err := LoadFile(path, 0)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if !reflect.DeepEqual(tbl.Columns, []string{"item", "score", "group"}) {
		t.Errorf("Columns = %v", tbl.Columns)
	}
	want := [][]string{
		{"speed", "12", "red"},
		{"grip", "7.5", ""},
	}
	if !reflect.DeepEqual(tbl.Rows, want) {
		t.Errorf("Rows = %v, want %v", tbl.Rows, want)
	}
	if tbl.Source != path+"#Sheet1" {
		t.Errorf("Source = %q, want %q", tbl.Source, path+"#Sheet1")
	}

	t.Run("from reader", func(t *testing.T) {
		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()

		tbl, err := LoadWorkbookReader(f, "upload.xlsx", "", 0)
		if err != nil {
			t.Fatalf("LoadWorkbookReader() error = %v", err)
		}
		if tbl.Len() != 2 {
			t.Errorf("Len() = %d, want 2", tbl.Len())
		}
	})

	t.Run("unknown sheet", func(t *testing.T) {
		_, err := LoadWorkbook(path, "Nope", 0)
		var le *LoadError
		if !errors.As(err, &le) || le.Kind != LoadUnreadable {
			t.Errorf("LoadWorkbook(Nope) error = %v, want source unreadable", err)
		}
	})

	t.Run("too large", func(t *testing.T) {
		_, err := LoadWorkbook(path, "", 10)
		var le *LoadError
		if !errors.As(err, &le) || le.Kind != LoadTooLarge {
			t.Errorf("LoadWorkbook() error = %v, want file too large", err)
		}
	})
}

func TestIsWorkbook(t *testing.T) {
	tests := map[string]bool{
		"a.xlsx":    true,
		"A.XLSX":    true,
		"b.xlsm":    true,
		"c.csv":     false,
		"noext":     false,
		"dir/d.tsv": false,
	}
	for name, want := range tests {
		if got := IsWorkbook(name); got != want {
			t.Errorf("IsWorkbook(%q) = %v, want %v", name, got, want)
		}
	}
}
