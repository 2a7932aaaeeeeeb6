package tabular

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"phylosensi/domain/model"
)

// DataReader loads a trait table from CSV or Excel. The first column holds
// species identifiers; every other column is parsed as numeric, with blanks
// and non-numeric cells carried as NaN so the matcher can drop them.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader that dispatches on the file extension.
func NewDataReader(filePath string) *DataReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadTraits reads the file into a trait table.
func (r *DataReader) ReadTraits() (*model.TraitTable, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("trait file not found: %s", r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	return buildTraitTable(rows)
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func buildTraitTable(rows [][]string) (*model.TraitTable, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("trait file needs a header and at least one row")
	}
	header := rows[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("trait file needs a species column and at least one trait column")
	}

	table := &model.TraitTable{Columns: make(map[string][]float64, len(header)-1)}
	for _, name := range header[1:] {
		table.Columns[strings.TrimSpace(name)] = nil
	}

	for _, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		table.Species = append(table.Species, strings.TrimSpace(row[0]))
		for j, name := range header[1:] {
			col := strings.TrimSpace(name)
			value := math.NaN()
			if j+1 < len(row) {
				if v, err := strconv.ParseFloat(strings.TrimSpace(row[j+1]), 64); err == nil {
					value = v
				}
			}
			table.Columns[col] = append(table.Columns[col], value)
		}
	}

	log.Printf("[DataReader] loaded %d species, %d trait columns", len(table.Species), len(table.Columns))
	return table, nil
}
