package tabular

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "traits.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestDataReader_ReadTraits_CSV(t *testing.T) {
	path := writeTempCSV(t, "species,x,y\nsp01,1.5,10\nsp02,,20\nsp03,abc,30\n")

	table, err := NewDataReader(path).ReadTraits()
	if err != nil {
		t.Fatalf("ReadTraits failed: %v", err)
	}
	if !reflect.DeepEqual(table.Species, []string{"sp01", "sp02", "sp03"}) {
		t.Errorf("species = %v", table.Species)
	}

	x, err := table.Column("x")
	if err != nil {
		t.Fatalf("column x: %v", err)
	}
	if x[0] != 1.5 {
		t.Errorf("x[0] = %v, want 1.5", x[0])
	}
	// Blank and non-numeric cells come through as NaN, not as errors.
	if !math.IsNaN(x[1]) || !math.IsNaN(x[2]) {
		t.Errorf("unparseable cells = %v, %v; want NaN", x[1], x[2])
	}

	y, err := table.Column("y")
	if err != nil {
		t.Fatalf("column y: %v", err)
	}
	if !reflect.DeepEqual(y, []float64{10, 20, 30}) {
		t.Errorf("y = %v", y)
	}
}

func TestDataReader_ReadTraits_SkipsBlankSpecies(t *testing.T) {
	path := writeTempCSV(t, "species,x\nsp01,1\n,2\nsp02,3\n")
	table, err := NewDataReader(path).ReadTraits()
	if err != nil {
		t.Fatalf("ReadTraits failed: %v", err)
	}
	if !reflect.DeepEqual(table.Species, []string{"sp01", "sp02"}) {
		t.Errorf("species = %v, want blank rows skipped", table.Species)
	}
}

func TestDataReader_ReadTraits_Errors(t *testing.T) {
	if _, err := NewDataReader(filepath.Join(t.TempDir(), "missing.csv")).ReadTraits(); err == nil {
		t.Error("expected error for missing file")
	}

	headerOnly := writeTempCSV(t, "species,x\n")
	if _, err := NewDataReader(headerOnly).ReadTraits(); err == nil {
		t.Error("expected error for header-only file")
	}

	noTraits := writeTempCSV(t, "species\nsp01\n")
	if _, err := NewDataReader(noTraits).ReadTraits(); err == nil {
		t.Error("expected error for file without trait columns")
	}
}

func TestWriteTable_CSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	headers := []string{"species", "x", "y"}
	rows := [][]string{
		{"sp01", "1.5", "10"},
		{"sp02", "2.5", "20"},
	}
	if err := WriteTable(path, headers, rows); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}

	table, err := NewDataReader(path).ReadTraits()
	if err != nil {
		t.Fatalf("reading written table: %v", err)
	}
	if !reflect.DeepEqual(table.Species, []string{"sp01", "sp02"}) {
		t.Errorf("species = %v", table.Species)
	}
	x, _ := table.Column("x")
	if !reflect.DeepEqual(x, []float64{1.5, 2.5}) {
		t.Errorf("x = %v", x)
	}
}

func TestWriteTable_ExcelRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	headers := []string{"species", "x"}
	rows := [][]string{{"sp01", "1.25"}}
	if err := WriteTable(path, headers, rows); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}

	table, err := NewDataReader(path).ReadTraits()
	if err != nil {
		t.Fatalf("reading written workbook: %v", err)
	}
	if !reflect.DeepEqual(table.Species, []string{"sp01"}) {
		t.Errorf("species = %v", table.Species)
	}
	x, _ := table.Column("x")
	if len(x) != 1 || x[0] != 1.25 {
		t.Errorf("x = %v, want [1.25]", x)
	}
}

func TestWriteTable_UnsupportedExtension(t *testing.T) {
	if err := WriteTable(filepath.Join(t.TempDir(), "out.txt"), []string{"a"}, nil); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
