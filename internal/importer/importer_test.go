package importer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/jajaero/internal/logging"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "material,file,regions\nMDF,mdf.csv,Seoul;Busan\n", ','},
		{"semicolon", "material;file;regions\nMDF;mdf.csv;Seoul|Busan\n", ';'},
		{"tab", "material\tfile\tregions\nMDF\tmdf.csv\tSeoul;Busan\n", '\t'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCSVDelimiter([]byte(tt.data)))
		})
	}
}

func TestDetectColumns(t *testing.T) {
	mapping, ok := DetectColumns([]string{"Regions", "Material", "Data File"})
	assert.True(t, ok)
	assert.Equal(t, ColumnMapping{Material: 1, DataFile: 2, Regions: 0}, mapping)

	mapping, ok = DetectColumns([]string{"MDF", "mdf.csv", "Seoul"})
	assert.False(t, ok)
	assert.Equal(t, ColumnMapping{Material: 0, DataFile: 1, Regions: 2}, mapping)
}

func TestImportCSVData(t *testing.T) {
	data := "material,file,regions\n" +
		"MDF,mdf.csv,Seoul;Busan\n" +
		"\n" +
		"Rebar,rebar.csv,Incheon | Daegu\n" +
		",x.csv,Seoul\n" +
		"Glass,glass.csv,\n"

	result := importCSVData(strings.NewReader(data), ',', nil)

	require.Len(t, result.Catalog, 2)
	assert.Equal(t, []string{"Seoul", "Busan"}, result.Catalog.Regions("MDF"))
	assert.Equal(t, []string{"Incheon", "Daegu"}, result.Catalog.Regions("Rebar"))
	assert.Equal(t, "mdf.csv", result.Catalog["MDF"].DataFile)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Missing material name")
	assert.Contains(t, result.Errors[1], "Glass")
}

func TestSplitRegions(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Seoul;Busan", []string{"Seoul", "Busan"}},
		{" Seoul | Busan ;", []string{"Seoul", "Busan"}},
		{"Jung-gu, Seoul; Busan", []string{"Jung-gu, Seoul", "Busan"}},
		{" ; | ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, splitRegions(tt.in))
		})
	}
}

func TestImportCSVQuotedRegionKeepsComma(t *testing.T) {
	data := "material,file,regions\nMDF,mdf.csv,\"Jung-gu, Seoul|Busan\"\n"

	result := importCSVData(strings.NewReader(data), ',', nil)

	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"Jung-gu, Seoul", "Busan"}, result.Catalog.Regions("MDF"))
}

func TestImportCSVMergesDuplicates(t *testing.T) {
	data := "material,regions\nMDF,Seoul\nMDF,Busan;Seoul\n"

	result := importCSVData(strings.NewReader(data), ',', nil)

	assert.Equal(t, []string{"Seoul", "Busan"}, result.Catalog.Regions("MDF"))
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Duplicate")
}

func TestImportCSVMissingRequiredColumn(t *testing.T) {
	result := importCSVData(strings.NewReader("material,file\nMDF,mdf.csv\n"), ',', nil)

	assert.Empty(t, result.Catalog)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Regions")
}

func TestImportCSVFileSemicolon(t *testing.T) {
	path := writeFile(t, "catalog.csv", "material;file;regions\nMDF;mdf.csv;Seoul|Busan\n")

	result := ImportCSV(path)

	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"Seoul", "Busan"}, result.Catalog.Regions("MDF"))
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "semicolon")
}

func TestImportCSVEmptyFile(t *testing.T) {
	result := ImportCSV(writeFile(t, "empty.csv", "  \n"))
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "File is empty", result.Errors[0])
}

func TestImportJSON(t *testing.T) {
	path := writeFile(t, "catalog.json", `{
		"MDF": ["mdf.csv", ["Seoul", "Busan"]],
		"Glass": ["glass.csv", []]
	}`)

	result := Import(path)

	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"MDF"}, result.Catalog.Materials())
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Glass")
}

func TestImportJSONMalformed(t *testing.T) {
	result := ImportJSON(writeFile(t, "bad.json", `{"MDF": 3`))
	require.Len(t, result.Errors, 1)
	assert.Nil(t, result.Catalog)
}

func TestImportExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]string{
		{"Material", "Data File", "Regions"},
		{"MDF", "mdf.csv", "Seoul; Busan"},
		{"Rebar", "rebar.csv", "Daegu"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	result := Import(path)

	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"MDF", "Rebar"}, result.Catalog.Materials())
	assert.Equal(t, []string{"Seoul", "Busan"}, result.Catalog.Regions("MDF"))
}

func TestFileSource(t *testing.T) {
	src := FileSource{Path: writeFile(t, "catalog.csv", "MDF,mdf.csv,Seoul\n")}

	catalog, err := src.GetCatalog(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Seoul"}, catalog.Regions("MDF"))
}

func TestFileSourceLogsSkippedRows(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	t.Cleanup(func() { logging.SetOutput(os.Stderr) })

	src := FileSource{Path: writeFile(t, "catalog.csv", "material,file,regions\nMDF,mdf.csv,Seoul\nGlass,glass.csv,\n")}

	catalog, err := src.GetCatalog(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"MDF"}, catalog.Materials())
	out := buf.String()
	assert.Contains(t, out, "[ERROR]")
	assert.Contains(t, out, `Material "Glass" has no regions`)
	assert.Contains(t, out, "Loaded 1 materials")
}

func TestFileSourceErrors(t *testing.T) {
	_, err := FileSource{Path: filepath.Join(t.TempDir(), "missing.csv")}.GetCatalog(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot open file")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = FileSource{Path: "whatever.csv"}.GetCatalog(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
