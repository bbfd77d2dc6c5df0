package reservoir

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

// WeekRecord is one row of a weekly forcing table.
type WeekRecord struct {
	Week        int     `csv:"week"`
	Inflow      float64 `csv:"inflow"`
	Evaporation float64 `csv:"evaporation"`
	Demand      float64 `csv:"demand"`
}

// Series bundles the three forcing series read from a data file.
type Series struct {
	Inflow      []float64
	Evaporation []float64
	Demand      []float64
}

// LoadSeries reads weekly forcing data, dispatching on the file extension:
// .csv, or .xlsx/.xlsm spreadsheets.
func LoadSeries(path, sheet string) (Series, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return LoadSeriesCSV(path)
	case ".xlsx", ".xlsm":
		return LoadSeriesXLSX(path, sheet)
	default:
		return Series{}, fmt.Errorf("unsupported series file extension %q", ext)
	}
}

// LoadSeriesCSV reads a CSV file with columns week, inflow, evaporation, demand.
func LoadSeriesCSV(path string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return Series{}, fmt.Errorf("opening series file: %w", err)
	}
	defer f.Close()

	var records []WeekRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return Series{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return fromRecords(records, path)
}

// LoadSeriesXLSX reads the same table from a spreadsheet sheet. The first row
// must be a header naming the week, inflow, evaporation and demand columns.
func LoadSeriesXLSX(path, sheet string) (Series, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Series{}, fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Series{}, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return Series{}, fmt.Errorf("sheet %q has no data rows", sheet)
	}

	cols := map[string]int{}
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"inflow", "evaporation", "demand"} {
		if _, ok := cols[required]; !ok {
			return Series{}, fmt.Errorf("sheet %q is missing column %q", sheet, required)
		}
	}

	records := make([]WeekRecord, 0, len(rows)-1)
	for rowIdx, row := range rows[1:] {
		rec := WeekRecord{Week: rowIdx}
		for name, dst := range map[string]*float64{
			"inflow":      &rec.Inflow,
			"evaporation": &rec.Evaporation,
			"demand":      &rec.Demand,
		} {
			col := cols[name]
			if col >= len(row) {
				return Series{}, fmt.Errorf("row %d of sheet %q is missing column %q", rowIdx+2, sheet, name)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil {
				return Series{}, fmt.Errorf("row %d of sheet %q: bad %s value %q", rowIdx+2, sheet, name, row[col])
			}
			*dst = v
		}
		records = append(records, rec)
	}
	return fromRecords(records, path)
}

func fromRecords(records []WeekRecord, path string) (Series, error) {
	if len(records) == 0 {
		return Series{}, fmt.Errorf("%s contains no data rows", path)
	}
	s := Series{
		Inflow:      make([]float64, len(records)),
		Evaporation: make([]float64, len(records)),
		Demand:      make([]float64, len(records)),
	}
	for i, rec := range records {
		if rec.Inflow < 0 || rec.Evaporation < 0 || rec.Demand < 0 {
			return Series{}, fmt.Errorf("%s row %d: negative value", path, i+2)
		}
		s.Inflow[i] = rec.Inflow
		s.Evaporation[i] = rec.Evaporation
		s.Demand[i] = rec.Demand
	}
	return s, nil
}
