package reservoir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoadSeriesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weeks.csv")
	data := "week,inflow,evaporation,demand\n" +
		"0,15,1,13\n" +
		"1,17,1,13\n" +
		"2,19,2,17\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	s, err := LoadSeries(path, "")
	require.NoError(t, err)

	assert.Equal(t, []float64{15, 17, 19}, s.Inflow)
	assert.Equal(t, []float64{1, 1, 2}, s.Evaporation)
	assert.Equal(t, []float64{13, 13, 17}, s.Demand)
}

func TestLoadSeriesCSVRejectsNegative(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weeks.csv")
	data := "week,inflow,evaporation,demand\n0,-15,1,13\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := LoadSeriesCSV(path)
	assert.Error(t, err)
}

func TestLoadSeriesCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weeks.csv")
	require.NoError(t, os.WriteFile(path, []byte("week,inflow,evaporation,demand\n"), 0o644))

	_, err := LoadSeriesCSV(path)
	assert.Error(t, err)
}

func TestLoadSeriesXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weeks.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"week", "inflow", "evaporation", "demand"},
		{0, 15, 1, 13},
		{1, 17, 1, 13},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	s, err := LoadSeries(path, "")
	require.NoError(t, err)

	assert.Equal(t, []float64{15, 17}, s.Inflow)
	assert.Equal(t, []float64{1, 1}, s.Evaporation)
	assert.Equal(t, []float64{13, 13}, s.Demand)
}

func TestLoadSeriesXLSXMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weeks.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := []interface{}{"week", "inflow", "demand"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	row := []interface{}{0, 15, 13}
	require.NoError(t, f.SetSheetRow(sheet, "A2", &row))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := LoadSeriesXLSX(path, "")
	assert.ErrorContains(t, err, "evaporation")
}

func TestLoadSeriesUnsupportedExtension(t *testing.T) {
	_, err := LoadSeries("weeks.parquet", "")
	assert.Error(t, err)
}
