// Package importer loads a material catalog from a local CSV, Excel or JSON
// file. It supports automatic delimiter detection, flexible column mapping,
// and case-insensitive header recognition.
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/jajaero/internal/logging"
	"github.com/piwi3910/jajaero/internal/model"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Catalog  model.Catalog
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Material int
	DataFile int
	Regions  int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"material": {"material", "materials", "item", "name", "자재", "자재명"},
	"datafile": {"file", "data file", "data_file", "datafile", "source", "csv"},
	"regions":  {"regions", "region", "areas", "area", "지역"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping (material, file, regions) and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Material: -1, DataFile: -1, Regions: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "material":
					if mapping.Material == -1 {
						mapping.Material = i
					}
				case "datafile":
					if mapping.DataFile == -1 {
						mapping.DataFile = i
					}
				case "regions":
					if mapping.Regions == -1 {
						mapping.Regions = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Material: 0, DataFile: 1, Regions: 2}, false
	}
	return mapping, true
}

// splitRegions splits a regions cell on ';' or '|'. Commas stay part of the
// region name.
func splitRegions(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == '|'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Import loads a catalog file, choosing the format by extension.
func Import(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ImportExcel(path)
	case ".json":
		return ImportJSON(path)
	default:
		return ImportCSV(path)
	}
}

// ImportCSV imports a catalog from a CSV file with one material per row.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	return importCSVData(bytes.NewReader(data), delimiter, warnings)
}

func importCSVData(reader io.Reader, delimiter rune, warnings []string) ImportResult {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return importFromRows(records, "Line", warnings)
}

// ImportExcel imports a catalog from the first sheet of an Excel workbook.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// ImportJSON imports a catalog in the service's own JSON format.
func ImportJSON(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}
	var raw map[string]model.MaterialEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot parse JSON catalog: %v", err))
		return result
	}

	catalog, dropped := model.NewCatalog(raw)
	for _, name := range dropped {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Material %q has no regions, skipped", name))
	}
	result.Catalog = catalog
	return result
}

// importFromRows is the shared import logic for CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		var missing []string
		if mapping.Material == -1 {
			missing = append(missing, "Material")
		}
		if mapping.Regions == -1 {
			missing = append(missing, "Regions")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	}

	entries := make(map[string]model.MaterialEntry)
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)

		material := getCell(row, mapping.Material)
		if material == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Missing material name", rowLabel))
			continue
		}
		regions := splitRegions(getCell(row, mapping.Regions))
		if len(regions) == 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Material %q has no regions", rowLabel, material))
			continue
		}

		entry, exists := entries[material]
		if exists {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: Duplicate material %q, merging regions", rowLabel, material))
			entry.Regions = mergeRegions(entry.Regions, regions)
		} else {
			entry = model.MaterialEntry{DataFile: getCell(row, mapping.DataFile), Regions: regions}
		}
		entries[material] = entry
	}

	result.Catalog, _ = model.NewCatalog(entries)
	return result
}

func mergeRegions(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		seen[r] = true
	}
	for _, r := range extra {
		if !seen[r] {
			existing = append(existing, r)
			seen[r] = true
		}
	}
	return existing
}

// FileSource serves a catalog from a local file.
type FileSource struct {
	Path string
}

// GetCatalog imports the file. Row-level problems are returned as a single
// error only when no material could be loaded at all; otherwise they are
// logged and the partial catalog is served.
func (s FileSource) GetCatalog(ctx context.Context) (model.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := Import(s.Path)
	for _, w := range result.Warnings {
		logging.Warnf("catalog %s: %s", s.Path, w)
	}
	if len(result.Catalog) == 0 {
		if len(result.Errors) == 0 {
			return nil, fmt.Errorf("catalog file %s contains no materials", s.Path)
		}
		return nil, fmt.Errorf("failed to import catalog file %s: %w", s.Path, errors.New(strings.Join(result.Errors, "; ")))
	}
	for _, e := range result.Errors {
		logging.Errorf("catalog %s: skipped %s", s.Path, e)
	}
	logging.Infof("Loaded %d materials from %s", len(result.Catalog), s.Path)
	return result.Catalog, nil
}
